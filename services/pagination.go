package services

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage * MaxPageSize must fit in an int32
	MaxPage = 100000
)

// Page is a normalized page request
type Page struct {
	Page  int
	Limit int
}

// ParsePage reads page/limit query values, falling back to defaults on bad input
func ParsePage(pageParam, limitParam string) Page {
	p := Page{Page: 1, Limit: DefaultPageSize}
	if n, err := strconv.Atoi(pageParam); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limitParam); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

// Offset is the number of rows to skip
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata returned next to list results
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Meta builds the pagination metadata for a total row count
func (p Page) Meta(total int64) Pagination {
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}

// Sort is a whitelisted ORDER BY clause
type Sort struct {
	Column string
	Desc   bool
}

// ParseSort maps a sortBy value through the whitelist. Unknown columns use the fallback.
func ParseSort(sortBy, sortOrder string, whitelist map[string]string, fallback Sort) Sort {
	s := fallback
	if col, ok := whitelist[sortBy]; ok {
		s.Column = col
		s.Desc = false
	}
	switch strings.ToLower(sortOrder) {
	case "asc":
		s.Desc = false
	case "desc":
		s.Desc = true
	}
	return s
}

// Clause renders the ORDER BY expression
func (s Sort) Clause() string {
	if s.Desc {
		return s.Column + " DESC"
	}
	return s.Column + " ASC"
}

// likePattern wraps a search term for a case-insensitive LIKE
func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
