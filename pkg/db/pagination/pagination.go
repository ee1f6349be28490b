// Package pagination implements the shared list-endpoint paging shape.
package pagination

// Pagination carries the list query parameters bound from a request.
type Pagination struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Normalize clamps page and limit into their supported ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.SortOrder != "asc" && p.SortOrder != "desc" {
		p.SortOrder = "desc"
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// PageInfo describes one page of a list response.
type PageInfo struct {
	Total   int64 `json:"total"`
	Skip    int   `json:"skip"`
	Limit   int   `json:"limit"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// NewPageInfo computes page metadata from a total row count.
func NewPageInfo(p Pagination, total int64) PageInfo {
	n := p.Normalize()
	skip := n.Offset()
	return PageInfo{
		Total:   total,
		Skip:    skip,
		Limit:   n.Limit,
		HasNext: int64(skip+n.Limit) < total,
		HasPrev: skip > 0,
	}
}
