package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortSet maps sortable field names of a resource to columns. PK is the
// tie-breaker and the default order.
type SortSet struct {
	PK     clause.Column
	Fields map[string]clause.Column
}

// ApplySort orders q by token ("name", "-price"...). The primary key breaks
// ties in the same direction.
func ApplySort(q *gorm.DB, sorts SortSet, token string) (*gorm.DB, error) {
	if token == "" {
		return q.Order(clause.OrderByColumn{Column: sorts.PK}), nil
	}

	desc := strings.HasPrefix(token, "-")
	name := strings.TrimPrefix(token, "-")

	col, ok := sorts.Fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSortField, token)
	}

	return q.
		Order(clause.OrderByColumn{Column: col, Desc: desc}).
		Order(clause.OrderByColumn{Column: sorts.PK, Desc: desc}), nil
}
