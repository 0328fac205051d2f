package utils

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage keeps (page-1)*limit far from int64 overflow.
	MaxPage = 1_000_000
)

type PageParams struct {
	Page  int
	Limit int
}

// Pagination is the block returned next to every paginated list.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
}

func NewPageParams(page, limit int) PageParams {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageParams{Page: page, Limit: limit}
}

func (p PageParams) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

func (p PageParams) Paginate(total int64) Pagination {
	pages := int(total / int64(p.Limit))
	if total%int64(p.Limit) > 0 {
		pages++
	}
	return Pagination{
		Current: p.Page,
		Pages:   pages,
		Total:   total,
		Limit:   p.Limit,
	}
}

// ParsePageParams reads raw page/limit query values. Non-numeric values fall back to the
// defaults; a page past MaxPage is rejected.
func ParsePageParams(rawPage, rawLimit string) (PageParams, error) {
	page := 1
	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		switch {
		case errors.Is(err, strconv.ErrRange), err == nil && n > MaxPage:
			return PageParams{}, ValidationError("Validation error", fmt.Sprintf("page cannot exceed %d", MaxPage))
		case err == nil:
			page = n
		}
	}
	return NewPageParams(page, ParseIntDefault(rawLimit, DefaultPageLimit)), nil
}
