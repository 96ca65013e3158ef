package listutil

import (
	"net/url"
	"strconv"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // requested page (1-indexed), may be past the last page
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage), at least 1
}

// PageParam is the query parameter carrying the page number.
const PageParam = "page"

// ParsePageParams extracts the page number from URL query values.
// The page size is fixed by the caller.
// PRE: perPage > 0
// POST: Page >= 1; malformed values fall back to 1
func ParsePageParams(q url.Values, perPage int) PageParams {
	page, _ := strconv.Atoi(q.Get(PageParam))
	if page < 1 {
		page = 1
	}
	return PageParams{Page: page, PerPage: perPage}
}

// NewPageInfo computes pagination metadata.
// A page past the end is kept as requested so the caller's query returns zero rows.
// PRE: total >= 0, perPage > 0
// POST: Page >= 1, TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// OutOfRange reports whether the page lies past the last row.
func (p PageInfo) OutOfRange() bool {
	return p.Total > 0 && p.Offset() >= p.Total || p.Total == 0 && p.Page > 1
}

// StartRow returns the 1-indexed first row number on the current page.
// POST: Returns 0 if the page holds no rows, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 || p.Offset() >= p.Total {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// POST: Returns 0 if the page holds no rows, otherwise min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	if p.StartRow() == 0 {
		return 0
	}
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// HasPrev reports whether a previous page link should be shown.
func (p PageInfo) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page link should be shown.
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}

// PrevPage returns the previous page number, clamped into range.
func (p PageInfo) PrevPage() int {
	if p.Page-1 > p.TotalPages {
		return p.TotalPages
	}
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

// NextPage returns the next page number.
func (p PageInfo) NextPage() int {
	return p.Page + 1
}

// PageNumbers returns the page numbers to display in pagination controls.
// Shows at most 5 pages centered around the current page.
// POST: Returns slice of at most 5 page numbers within 1..TotalPages
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	current := p.Page
	if current > p.TotalPages {
		current = p.TotalPages
	}
	start := current - maxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination returns true if pagination controls should be displayed.
// POST: Returns true if Total > PerPage
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// WithPage returns the encoded query q with the page parameter replaced,
// so pagination links keep the active filters.
// POST: q is not modified
func WithPage(q url.Values, page int) string {
	out := make(url.Values, len(q)+1)
	for k, v := range q {
		if k == PageParam {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	if page > 1 {
		out.Set(PageParam, strconv.Itoa(page))
	}
	return out.Encode()
}
