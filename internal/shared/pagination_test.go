package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int
		pages int
	}{
		{"exact fit", 1, 10, 100, 10},
		{"remainder adds a page", 2, 10, 101, 11},
		{"empty result", 1, 10, 0, 0},
		{"single partial page", 1, 20, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.pages, p.Pages)
		})
	}
}

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 50)
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 3, p.Pages)
}

func TestParsePageQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/branches?page=3&limit=50&search=campus", nil)
	q := ParsePageQuery(r)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, "campus", q.Search)
	assert.Equal(t, 100, q.Offset())
}

func TestParsePageQueryFallbacks(t *testing.T) {
	r := httptest.NewRequest("GET", "/branches?page=abc&limit=-1", nil)
	q := ParsePageQuery(r)
	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Empty(t, q.Search)
}

func TestParsePageQueryCapsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/branches?limit=5000", nil)
	q := ParsePageQuery(r)
	assert.Equal(t, MaxLimit, q.Limit)
}
