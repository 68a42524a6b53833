package models

import "math"

// PageRequest is a normalized page selection
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest applies defaults and clamps per-page to max. The page is
// capped so the row offset always fits in a 32-bit signed integer; any page
// that far out is past the end of every result set anyway.
func NewPageRequest(page, perPage, defaultPerPage, maxPerPage int) PageRequest {
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt32/perPage + 1; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset is the number of rows skipped before this page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination is the metadata envelope sent with every list response
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPagination computes the envelope for a page of a result set of size total
func NewPagination(req PageRequest, total int64) Pagination {
	pages := 0
	if req.PerPage > 0 && total > 0 {
		pages = int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	}
	return Pagination{
		Page:    req.Page,
		PerPage: req.PerPage,
		Total:   total,
		Pages:   pages,
		HasNext: req.Page < pages,
		HasPrev: req.Page > 1,
	}
}
