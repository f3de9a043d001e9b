// Package pagination implements page/limit pagination shared by the list
// endpoints on both client channels.
package pagination

import "strings"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	SortAsc  = "asc"
	SortDesc = "desc"
)

type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"limit,default=10"`
}

type PageInfo struct {
	Page     int   `json:"page"`
	PageSize int   `json:"limit"`
	Total    int64 `json:"total"`
}

// Normalize clamps page and page size into their allowed ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NormalizeSort maps arbitrary input onto asc/desc, defaulting to asc.
func NormalizeSort(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), SortDesc) {
		return SortDesc
	}
	return SortAsc
}
