package params

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 15
	MaxLimit     = 100
)

// Pagination holds the requested page and, after ComputeMeta, the totals.
//
//	/products?page=2&limit=30 → Pagination{Limit:30, Page:2, Offset:30}
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination reads ?limit= and ?page=. The bool is false when neither
// key is present, meaning the caller asked for everything. Keys are case
// sensitive.
func ParsePagination(q url.Values) (Pagination, bool) {
	p := Pagination{
		Limit: DefaultLimit,
		Page:  1,
	}
	limitStr := strings.TrimSpace(q.Get("limit"))
	pageStr := strings.TrimSpace(q.Get("page"))
	if limitStr == "" && pageStr == "" {
		return p, false
	}

	if limit, err := strconv.Atoi(limitStr); err == nil {
		switch {
		case limit <= 0:
			p.Limit = DefaultLimit
		case limit > MaxLimit:
			p.Limit = MaxLimit
		default:
			p.Limit = limit
		}
	}

	if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
		p.Page = page
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p, true
}

// ComputeMeta fills the totals once the row count is known.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}

// Link builds an RFC 8288 Link header value with next and prev relations.
func (p Pagination) Link(u *url.URL) string {
	links := []string{}
	rel := func(page int, name string) {
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(p.Limit))
		links = append(links, fmt.Sprintf(`<%s?%s>; rel="%s"`, u.Path, q.Encode(), name))
	}
	if p.HasNext {
		rel(p.Page+1, "next")
	}
	if p.HasPrev {
		rel(p.Page-1, "prev")
	}
	return strings.Join(links, ", ")
}
