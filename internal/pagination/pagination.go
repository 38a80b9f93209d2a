// Package pagination runs a filtered, sorted query one page at a time and
// builds the navigation links for the response envelope.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/query"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

var ErrPaginationFailed = errors.New("pagination failed")

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type Params struct {
	Page    int
	PerPage int
	// Source names the relation or join being paged; only logged.
	Source  string
	BaseURL string
	Path    string
	Filters query.Filters
	Sort    string
	// Total, when set, is used instead of counting the query.
	Total *int64
	// PreLimited marks a query already limited to the page before a join
	// fanned rows out; it is executed as is.
	PreLimited bool
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

type Page[T any] struct {
	Page        int     `json:"page"`
	PerPage     int     `json:"per_page"`
	TotalItems  int64   `json:"totalItems"`
	NextPageURL *string `json:"nextPageUrl"`
	PrevPageURL *string `json:"prevPageUrl"`
	Results     []T     `json:"results"`
}

// Paginate executes one page of q into []T. q must carry its filters and
// order; it is not modified.
func Paginate[T any](ctx context.Context, q *gorm.DB, p Params) (*Page[T], error) {
	l := logging.FromContext(ctx).With("component", "paginate", "source", p.Source)

	base := q.WithContext(ctx).Session(&gorm.Session{})
	offset := p.Offset()

	pageQ := base
	if !p.PreLimited {
		pageQ = base.Limit(p.PerPage).Offset(offset)
	}

	results := make([]T, 0, p.PerPage)
	if err := pageQ.Find(&results).Error; err != nil {
		l.Error("paginate_error", "stage", "fetch", "error", err)
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrPaginationFailed, p.Source, err)
	}

	var total int64
	if p.Total != nil {
		total = *p.Total
	} else {
		err := base.Session(&gorm.Session{NewDB: true}).
			Table("(?) AS filtered", base).
			Count(&total).Error
		if err != nil {
			l.Error("paginate_error", "stage", "count", "error", err)
			return nil, fmt.Errorf("%w: count %s: %v", ErrPaginationFailed, p.Source, err)
		}
	}

	next, prev := Links(p, total)
	l.Debug("paginate_success", "page", p.Page, "per_page", p.PerPage, "total", total, "rows", len(results))

	return &Page[T]{
		Page:        p.Page,
		PerPage:     p.PerPage,
		TotalItems:  total,
		NextPageURL: next,
		PrevPageURL: prev,
		Results:     results,
	}, nil
}

// Links returns the next and previous page URLs, nil when there is none.
func Links(p Params, total int64) (next, prev *string) {
	offset := p.Offset()
	if int64(offset+p.PerPage) < total {
		s := pageURL(p, p.Page+1)
		next = &s
	}
	if p.Page > 1 {
		s := pageURL(p, p.Page-1)
		prev = &s
	}
	return next, prev
}

func pageURL(p Params, page int) string {
	var b strings.Builder
	b.WriteString(p.BaseURL)
	b.WriteString(p.Path)
	b.WriteString("?page=")
	b.WriteString(strconv.Itoa(page))
	b.WriteString("&per_page=")
	b.WriteString(strconv.Itoa(p.PerPage))
	for _, f := range p.Filters {
		b.WriteString("&")
		b.WriteString(url.QueryEscape(f.Field))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(formatValue(f.Value)))
	}
	if p.Sort != "" {
		b.WriteString("&sort=")
		b.WriteString(url.QueryEscape(p.Sort))
	}
	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
