package services

import "sync"

// EstimateTotal approximates the total record count of a filtered listing from a single page.
// It is an approximation, not an exact count: the backend does not report accurate totals
// under combined filters. A full page implies at least one more page; a partial page
// is taken as the last one.
func EstimateTotal(page, pageSize, n int) int {
	if page < 1 {
		page = 1
	}
	if pageSize > 0 && n >= pageSize {
		return (page + 1) * pageSize
	}
	return (page-1)*pageSize + n
}

// PageEstimator applies EstimateTotal across page loads of one filtered listing and
// corrects itself as pages are visited. Once a partial page has pinned the end of the
// listing, that exact total is kept; a full page never shows fewer pages than it proves exist.
// Changing the filter key or page size starts over.
type PageEstimator struct {
	mu    sync.Mutex
	state estimate
}

// estimate is the history of one listing. It is replaced wholesale on reset; the mutex is not.
type estimate struct {
	key      string
	pageSize int
	exact    int
	hasExact bool
	lower    int
}

// Observe records that page returned n records (pageSize per page) for the listing identified by key,
// and returns the effective total and whether it is exact.
func (p *PageEstimator) Observe(key string, page, pageSize, n int) (total int, exact bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if key != p.state.key || pageSize != p.state.pageSize {
		p.state = estimate{key: key, pageSize: pageSize}
	}
	st := &p.state
	if page < 1 {
		page = 1
	}

	full := pageSize > 0 && n >= pageSize
	seen := (page-1)*pageSize + n
	if seen > st.lower {
		st.lower = seen
	}

	if !full {
		st.exact, st.hasExact = seen, true
		return st.exact, true
	}
	// A full page beyond the pinned end means the listing grew; the pin is stale.
	if st.hasExact && st.exact < page*pageSize {
		st.hasExact = false
	}
	if st.hasExact {
		return st.exact, true
	}
	total = EstimateTotal(page, pageSize, n)
	if st.lower > total {
		total = st.lower
	}
	return total, false
}

// Reset forgets everything observed.
func (p *PageEstimator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = estimate{}
}
