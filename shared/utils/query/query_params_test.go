package query

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextFor(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParseListParams(t *testing.T) {
	t.Run("no pagination by default", func(t *testing.T) {
		p := ParseListParams(contextFor("/orgs?name=eng"))
		assert.False(t, p.Paginate)
		assert.Equal(t, "eng", p.Filter.Name)
	})

	t.Run("bracketed filters and clamped limit", func(t *testing.T) {
		p := ParseListParams(contextFor("/users?filters[email]=acme&page=0&limit=500"))
		assert.True(t, p.Paginate)
		assert.Equal(t, "acme", p.Filter.Email)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 100, p.Limit)
	})

	t.Run("search falls back to name", func(t *testing.T) {
		p := ParseListParams(contextFor("/roles?search=admin"))
		assert.Equal(t, "admin", p.Filter.Name)
	})
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, int64(3), meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	page, meta = Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, page)
	assert.False(t, meta.HasNext)

	page, _ = Paginate(items, 9, 2)
	assert.Empty(t, page)
}
