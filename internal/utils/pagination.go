package utils

import (
	"math"
)

// Pagination holds the page metadata computed from a total row count,
// the requested page and a fixed page size.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Paginate computes metadata for the given total/page/perPage. Pages
// are 1-based; a page past the end yields an empty page, not an error.
func Paginate(total int64, page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
