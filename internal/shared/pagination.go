package shared

import (
	"math"
	"net/http"
	"strconv"
)

// DefaultPerPage applies when the caller does not ask for a page size.
const DefaultPerPage = 20

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PaginationFromRequest reads page and per_page query values. ok is false
// when the request did not ask for a page.
func PaginationFromRequest(r *http.Request, total int) (p Pagination, ok bool) {
	q := r.URL.Query()
	if !q.Has("page") && !q.Has("per_page") {
		return Pagination{}, false
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return NewPagination(page, min(perPage, 100), total), true
}

// Bounds returns the slice bounds of the current page.
func (p Pagination) Bounds() (start, end int) {
	start = min((p.Page-1)*p.PerPage, p.Total)
	end = min(start+p.PerPage, p.Total)
	return start, end
}
