package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ginContextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "", 1, DefaultPageSize},
		{"explicit", "page=3&pageSize=50", 3, 50},
		{"zero page", "page=0", 1, DefaultPageSize},
		{"negative page", "page=-2", 1, DefaultPageSize},
		{"oversized page size is capped", "pageSize=500", 1, MaxPageSize},
		{"garbage input", "page=abc&pageSize=xyz", 1, DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := pageParams(ginContextWithQuery(tt.query))
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	c := ginContextWithQuery("page=2&pageSize=10")

	resp := NewPaginatedResponse(c, []string{"a", "b"}, 25)

	assert.Equal(t, int64(25), resp.TotalRows)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.CurrentPage)
	assert.Equal(t, 10, resp.PageSize)
}

func TestNewPaginatedResponse_Empty(t *testing.T) {
	c := ginContextWithQuery("")

	resp := NewPaginatedResponse(c, []string{}, 0)

	assert.Equal(t, 0, resp.TotalPages)
	assert.Equal(t, 1, resp.CurrentPage)
}
