package services

import (
	"sort"

	"labbooking/internal/domain"
)

// Reconciler merges the user's filters with role policy and turns a server page into the page the view shows.
type Reconciler struct {
	estimator PageEstimator
}

// NewReconciler returns a Reconciler with no pagination history.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// EffectiveFilters applies the role's mandatory filters. Students only ever see Active events.
func EffectiveFilters(role domain.Role, f domain.EventFilter) domain.EventFilter {
	if role == domain.RoleStudent {
		active := domain.EventStatusActive
		f.Status = &active
	}
	return f
}

// ResolvePage decides the records and counts to display for one server page.
//
// Students: the forced Active filter is re-applied to whatever the server returned.
// Lecturers: page.Records is the full set; filtering, sorting and slicing happen in memory.
// Admins: the server's count is trusted when no filter is active; otherwise the total is estimated.
func (r *Reconciler) ResolvePage(role domain.Role, filters domain.EventFilter, page domain.ServerPage) domain.PageResult {
	filters = EffectiveFilters(role, filters)
	params := domain.PaginationParams{Page: page.Page, PageSize: page.PageSize}.Normalize(len(page.Records))

	if role == domain.RoleLecturer {
		return resolveInMemory(filters, params, page.Records)
	}

	records := page.Records
	if role == domain.RoleStudent {
		records = filterEvents(records, filters)
	}
	records = SortEvents(records)

	result := domain.PageResult{Records: records, Page: params.Page, PageSize: params.PageSize}
	switch {
	case role == domain.RoleAdmin && !filters.IsActive() && page.TotalCount != nil:
		result.EffectiveTotalCount = *page.TotalCount
		result.Exact = true
	default:
		// Server-side counts are unreliable under filters; use the raw page length so
		// records dropped locally do not make a full page look partial.
		result.EffectiveTotalCount, result.Exact = r.estimator.Observe(filters.Key(), params.Page, params.PageSize, len(page.Records))
	}
	result.EffectiveTotalPages = domain.TotalPages(result.EffectiveTotalCount, params.PageSize)
	return result
}

// Reset drops pagination history, e.g. after the underlying data changed.
func (r *Reconciler) Reset() {
	r.estimator.Reset()
}

func resolveInMemory(filters domain.EventFilter, params domain.PaginationParams, all []domain.Event) domain.PageResult {
	matched := SortEvents(filterEvents(all, filters))
	total := len(matched)

	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return domain.PageResult{
		Records:             matched[start:end:end],
		Page:                params.Page,
		PageSize:            params.PageSize,
		EffectiveTotalCount: total,
		EffectiveTotalPages: domain.TotalPages(total, params.PageSize),
		Exact:               true,
	}
}

func filterEvents(events []domain.Event, f domain.EventFilter) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// SortEvents returns a copy ordered by CreatedAt descending, falling back to StartDate for records without CreatedAt.
func SortEvents(events []domain.Event) []domain.Event {
	out := make([]domain.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortTime().After(out[j].SortTime())
	})
	return out
}
