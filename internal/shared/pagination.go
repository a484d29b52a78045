package shared

import (
	"math"
	"net/http"
	"strconv"
)

const (
	// DefaultPage is used when the caller omits or mangles the page parameter.
	DefaultPage = 1
	// DefaultLimit is used when the caller omits or mangles the limit parameter.
	DefaultLimit = 20
	// MaxLimit caps the page size regardless of caller input.
	MaxLimit = 100
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes pagination metadata. Pages is always
// ceil(total/limit) for the effective limit.
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// PageQuery holds the listing parameters common to every entity service.
type PageQuery struct {
	Page   int
	Limit  int
	Search string
}

// Offset returns the row offset for the current page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParsePageQuery reads page/limit/search from the request query string.
// Non-numeric or out-of-range values fall back to defaults rather than
// erroring; search always succeeds, possibly empty.
func ParsePageQuery(r *http.Request) PageQuery {
	q := PageQuery{Page: DefaultPage, Limit: DefaultLimit}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			q.Page = page
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 1 {
			if limit > MaxLimit {
				limit = MaxLimit
			}
			q.Limit = limit
		}
	}
	q.Search = r.URL.Query().Get("search")
	return q
}
