package helpers

import (
	"net/url"
	"strconv"
)

type Page[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

type PageRequest struct {
	Page     int
	PageSize int
}

// ParsePageRequest reads page and page_size, falling back to defaultSize and
// capping at maxSize.
func ParsePageRequest(q url.Values, defaultSize, maxSize int) PageRequest {
	req := PageRequest{Page: 1, PageSize: defaultSize}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		req.Page = p
	}
	if s, err := strconv.Atoi(q.Get("page_size")); err == nil && s > 0 {
		req.PageSize = s
	}
	if maxSize > 0 && req.PageSize > maxSize {
		req.PageSize = maxSize
	}
	return req
}

func NewPage[T any](results []T, total int64, req PageRequest) *Page[T] {
	if results == nil {
		results = []T{}
	}
	return &Page[T]{Count: total, Page: req.Page, PageSize: req.PageSize, Results: results}
}
