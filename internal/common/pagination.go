package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination describes one page of a paged list.
type Pagination struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

func NewPagination(totalItems int64, page, pageSize int) *Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	return &Pagination{
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    pageSize,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// Offset is the row offset of page.
func Offset(page, pageSize int) int {
	if page <= 0 {
		page = DefaultPage
	}
	return (page - 1) * pageSize
}

// GetPaginationParams reads page and page_size, falling back to defaults on bad input.
func GetPaginationParams(c *gin.Context) (page, pageSize int) {
	page = intQuery(c, "page", DefaultPage)
	pageSize = intQuery(c, "page_size", DefaultPageSize)
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// GetLimitParam reads a "limit" query parameter clamped to [1, max].
func GetLimitParam(c *gin.Context, def, max int) int {
	limit := intQuery(c, "limit", def)
	if limit > max {
		return max
	}
	return limit
}

func intQuery(c *gin.Context, name string, def int) int {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
