package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// URL: /products?page=2&limit=30
// → ParsePagination() → Pagination{Limit:30, Page:2, Offset:30}
// → SQL: ... LIMIT 30 OFFSET 30, or a slice of the fallback catalog
// → ComputeMeta(total) → fills TotalPages, HasNext, etc.
type Pagination struct {
	Limit      int  `json:"limit"`       // items per page
	Offset     int  `json:"offset"`      // (page-1)*limit
	Page       int  `json:"page"`        // current page number
	Total      int  `json:"total"`       // matched items before pagination
	TotalPages int  `json:"total_pages"` // pages available
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// New clamps page and limit to sane values and computes the offset.
func New(page, limit int) Pagination {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	if page <= 0 {
		page = 1
	}
	return Pagination{Limit: limit, Page: page, Offset: (page - 1) * limit}
}

// ParsePagination parses ?limit=...&page=... safely. Keys are case sensitive;
// unparsable values fall back to the defaults.
func ParsePagination(q url.Values) Pagination {
	page, limit := 1, DefaultLimit

	if limitStr := strings.TrimSpace(q.Get("limit")); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}
	if pageStr := strings.TrimSpace(q.Get("page")); pageStr != "" {
		if v, err := strconv.Atoi(pageStr); err == nil {
			page = v
		}
	}

	return New(page, limit)
}

// ComputeMeta updates pagination after fetching total count.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}
