package store

// PageRequest selects one page of a listing. Listings never go past MaxPages.
type PageRequest struct {
	Number   int // 1-indexed
	Size     int
	MaxPages int
}

// NewPageRequest clamps number into [1, maxPages].
func NewPageRequest(number, size, maxPages int) PageRequest {
	size = max(size, 1)
	maxPages = max(maxPages, 1)
	return PageRequest{
		Number:   min(max(number, 1), maxPages),
		Size:     size,
		MaxPages: maxPages,
	}
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Number - 1) * p.Size
}

// PaginationResult describes the page that was served.
type PaginationResult struct {
	Total       int64 // rows matching, including those past the last reachable page
	TotalPages  int   // reachable pages
	CurrentPage int
	PageSize    int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
}

// CalculatePagination builds the navigation for req given total matching rows.
func CalculatePagination(total int64, req PageRequest) PaginationResult {
	totalPages := int((total + int64(req.Size) - 1) / int64(req.Size))
	if req.MaxPages > 0 {
		totalPages = min(totalPages, req.MaxPages)
	}

	current := max(req.Number, 1)
	if totalPages > 0 {
		current = min(current, totalPages)
	}

	return PaginationResult{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: current,
		PageSize:    req.Size,
		HasPrev:     current > 1,
		HasNext:     current < totalPages,
		PrevPage:    max(current-1, 1),
		NextPage:    max(min(current+1, totalPages), 1),
	}
}
