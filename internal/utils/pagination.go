package utils

import "math"

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// CalculatePagination calculates pagination metadata. A non-positive limit
// yields zero pages rather than dividing by zero.
func CalculatePagination(total int64, page, limit int) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}

	return PaginationMeta{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}
}
