package domain

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Normalize clamps Page to at least 1 and falls back to defaultSize when PageSize is not positive.
func (p PaginationParams) Normalize(defaultSize int) PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	return p
}

// TotalPages computes ceiling(total / pageSize); if pageSize is 0, TotalPages is 0.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ServerPage is what the backend returned for one list request, already normalized.
// For the lecturer listing Records is the complete set and Page/PageSize are the requested window.
type ServerPage struct {
	Records    []Event
	Page       int
	PageSize   int
	TotalCount *int
}

// PageResult is the page the view displays.
// Exact is false when EffectiveTotalCount comes from the full-page estimate.
type PageResult struct {
	Records             []Event
	Page                int
	PageSize            int
	EffectiveTotalCount int
	EffectiveTotalPages int
	Exact               bool
}

// HasNext reports whether a page after the current one may exist.
func (r PageResult) HasNext() bool {
	return r.Page < r.EffectiveTotalPages
}
