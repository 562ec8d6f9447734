// Package api holds the query-string and envelope conventions shared by the list endpoints.
package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest is the 1-based page requested by the client
type PageRequest struct {
	Page     int64 `form:"page" json:"page"`
	PageSize int64 `form:"pageSize" json:"pageSize"`
}

// PageResponse is the envelope returned by every list endpoint
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int64 `json:"page"`
	PageSize   int64 `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPageResponse renders a nil data slice as [] and never reports fewer than one page
func NewPageResponse[T any](data []T, page PageRequest, totalItems int64) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	size := page.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	totalPages := max((totalItems+size-1)/size, 1)

	return PageResponse[T]{
		Data:       data,
		Page:       page.Page,
		PageSize:   size,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page.Page < totalPages,
		HasPrev:    page.Page > 1,
	}
}

// ParsePagination reads page and pageSize. Missing or invalid values fall back to page 1
// of 20; pageSize is capped at 100.
func ParsePagination(c *gin.Context) PageRequest {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := queryInt(c, "pageSize", defaultPageSize)
	if size < 1 {
		size = defaultPageSize
	}
	return PageRequest{Page: page, PageSize: min(size, maxPageSize)}
}

func queryInt(c *gin.Context, key string, fallback int64) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// FilterRequest holds the filters shared by the document list endpoints
type FilterRequest struct {
	Status    string     `json:"status,omitempty"`
	PartyRef  string     `json:"partyRef,omitempty"`
	BranchRef string     `json:"branchRef,omitempty"`
	DateFrom  *time.Time `json:"dateFrom,omitempty"`
	DateTo    *time.Time `json:"dateTo,omitempty"`
}

// ParseFilter reads the common filters. Dates accept RFC3339 or YYYY-MM-DD; unparseable
// dates are ignored.
func ParseFilter(c *gin.Context) FilterRequest {
	return FilterRequest{
		Status:    c.Query("status"),
		PartyRef:  c.Query("partyRef"),
		BranchRef: c.Query("branchRef"),
		DateFrom:  parseDate(c.Query("dateFrom")),
		DateTo:    parseDate(c.Query("dateTo")),
	}
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
