package query

import (
	"strconv"
	"strings"

	"tenantconsole-backend/shared/store"

	"github.com/gin-gonic/gin"
)

// ListParams represents the filtering and pagination of a list request
type ListParams struct {
	Filter store.ListFilter
	Page   int
	Limit  int
	// Paginate is set when the caller asked for a page; otherwise the
	// whole filtered list is returned.
	Paginate bool
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// filterValue reads a filter from either "name" or "filters[name]".
func filterValue(c *gin.Context, field string) string {
	if v := strings.TrimSpace(c.Query(field)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query("filters[" + field + "]"))
}

// ParseListParams extracts standardized list parameters from Gin context
func ParseListParams(c *gin.Context) ListParams {
	_, hasPage := c.GetQuery("page")
	_, hasLimit := c.GetQuery("limit")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	name := filterValue(c, "name")
	if name == "" {
		name = strings.TrimSpace(c.Query("search"))
	}

	return ListParams{
		Filter: store.ListFilter{
			Name:  name,
			Email: filterValue(c, "email"),
		},
		Page:     page,
		Limit:    limit,
		Paginate: hasPage || hasLimit,
	}
}

// Paginate returns the requested page of items
func Paginate[T any](items []T, page, limit int) ([]T, PaginationResponse) {
	total := int64(len(items))
	meta := BuildPaginationResponse(page, limit, total)

	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}

// BuildPaginationResponse creates pagination metadata
func BuildPaginationResponse(page, limit int, total int64) PaginationResponse {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	hasNext := page < int(totalPages)
	hasPrev := page > 1

	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    hasNext,
		HasPrev:    hasPrev,
	}
}

// SetPaginationHeaders exposes pagination metadata without changing the body shape
func SetPaginationHeaders(c *gin.Context, meta PaginationResponse) {
	c.Header("X-Total-Count", strconv.FormatInt(meta.Total, 10))
	c.Header("X-Total-Pages", strconv.FormatInt(meta.TotalPages, 10))
	c.Header("X-Page", strconv.Itoa(meta.Page))
	c.Header("X-Limit", strconv.Itoa(meta.Limit))
}
