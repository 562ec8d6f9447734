package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query    string
		page     int64
		pageSize int64
	}{
		{"", 1, 20},
		{"page=3&pageSize=50", 3, 50},
		{"page=0&pageSize=0", 1, 20},
		{"page=-2&pageSize=1000", 1, 100},
		{"page=abc", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := ParsePagination(contextWithQuery(tt.query))
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]string{"a", "b"}, PageRequest{Page: 1, PageSize: 2}, 5)
	assert.Equal(t, int64(3), resp.TotalPages)
	assert.True(t, resp.HasNext)
	assert.False(t, resp.HasPrev)

	empty := NewPageResponse[string](nil, PageRequest{Page: 1}, 0)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, int64(20), empty.PageSize)
	assert.Equal(t, int64(1), empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestParseFilter(t *testing.T) {
	f := ParseFilter(contextWithQuery("status=posted&partyRef=SUP-1&dateFrom=2024-01-02&dateTo=nope"))

	assert.Equal(t, "posted", f.Status)
	assert.Equal(t, "SUP-1", f.PartyRef)
	require.NotNil(t, f.DateFrom)
	assert.Equal(t, 2024, f.DateFrom.Year())
	assert.Nil(t, f.DateTo)
}
