package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationBounds(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 3, p.TotalPages)
	start, end := p.Bounds()
	assert.Equal(t, 20, start)
	assert.Equal(t, 40, end)

	start, end = NewPagination(3, 20, 45).Bounds()
	assert.Equal(t, 40, start)
	assert.Equal(t, 45, end)

	start, end = NewPagination(9, 20, 45).Bounds()
	assert.Equal(t, 45, start)
	assert.Equal(t, 45, end)
}

func TestPaginationFromRequest(t *testing.T) {
	_, ok := PaginationFromRequest(httptest.NewRequest("GET", "/notifications", nil), 10)
	assert.False(t, ok)

	p, ok := PaginationFromRequest(httptest.NewRequest("GET", "/notifications?page=0&per_page=500", nil), 250)
	require.True(t, ok)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)
}
