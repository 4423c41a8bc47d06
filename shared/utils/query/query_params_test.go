package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, url string) FilterParams {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", url, nil)
	return ParseQueryParams(c)
}

func TestParseQueryParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		params := paramsFor(t, "/api/clients")

		assert.Equal(t, 1, params.Page)
		assert.Equal(t, DefaultPageSize, params.Limit)
		assert.Empty(t, params.Search)
		assert.Empty(t, params.Filters)
	})

	t.Run("explicit values", func(t *testing.T) {
		params := paramsFor(t, "/api/clients?page=3&limit=25&search=acme")

		assert.Equal(t, 3, params.Page)
		assert.Equal(t, 25, params.Limit)
		assert.Equal(t, "acme", params.Search)
	})

	t.Run("bounds enforced", func(t *testing.T) {
		params := paramsFor(t, "/api/clients?page=0&limit=500")

		assert.Equal(t, 1, params.Page)
		assert.Equal(t, 100, params.Limit)
	})

	t.Run("bracketed filters", func(t *testing.T) {
		params := paramsFor(t, "/api/clients?filters[status]=active&filters[category]=Retail&filters[empty]=")

		assert.Equal(t, "active", params.Filters["status"])
		assert.Equal(t, "Retail", params.Filters["category"])
		assert.NotContains(t, params.Filters, "empty")
	})
}

func TestBuildPaginationResponse(t *testing.T) {
	t.Run("partial last page", func(t *testing.T) {
		resp := BuildPaginationResponse(2, 50, 120)

		assert.Equal(t, int64(3), resp.TotalPages)
		assert.Equal(t, int64(120), resp.Total)
		assert.True(t, resp.HasNext)
		assert.True(t, resp.HasPrev)
	})

	t.Run("exact fit", func(t *testing.T) {
		resp := BuildPaginationResponse(1, 50, 100)

		assert.Equal(t, int64(2), resp.TotalPages)
		assert.True(t, resp.HasNext)
		assert.False(t, resp.HasPrev)
	})

	t.Run("last page", func(t *testing.T) {
		resp := BuildPaginationResponse(3, 50, 120)

		assert.False(t, resp.HasNext)
		assert.True(t, resp.HasPrev)
	})

	t.Run("empty collection", func(t *testing.T) {
		resp := BuildPaginationResponse(1, 50, 0)

		assert.Equal(t, int64(0), resp.TotalPages)
		assert.False(t, resp.HasNext)
		assert.False(t, resp.HasPrev)
	})
}
