// Package query composes allow-listed filters and sort orders onto gorm queries.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidFilterField = errors.New("invalid filter field")
	ErrInvalidSortField   = errors.New("invalid sort field")
)

type Kind int

const (
	Text Kind = iota
	Numeric
)

type Field struct {
	Name   string
	Column clause.Column
	Kind   Kind
}

// FieldSet is the closed list of filterable fields of one resource.
type FieldSet []Field

func (fs FieldSet) lookup(name string) (Field, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Filter is one applied filter. Value is a string for text fields and a
// decimal.Decimal for numeric ones.
type Filter struct {
	Field string
	Value any
}

type Filters []Filter

// Raw carries the filter values exactly as received, keyed by field name.
// A present key with an empty value still counts as supplied.
type Raw map[string]string

// ApplyFilters narrows q by every supplied filter. Supplied-but-empty values
// match no rows; omitted fields add nothing.
func ApplyFilters(q *gorm.DB, fields FieldSet, raw Raw) (*gorm.DB, Filters, error) {
	for name := range raw {
		if _, ok := fields.lookup(name); !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrInvalidFilterField, name)
		}
	}

	applied := make(Filters, 0, len(raw))
	for _, f := range fields {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}

		switch f.Kind {
		case Numeric:
			v = strings.TrimSpace(v)
			if v == "" {
				q = q.Where("1 = 0")
				applied = append(applied, Filter{Field: f.Name, Value: v})
				continue
			}
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s is not a number", ErrInvalidFilterField, f.Name)
			}
			if d.IsZero() {
				q = q.Where("1 = 0")
			} else {
				q = q.Where(clause.Eq{Column: f.Column, Value: d.String()})
			}
			applied = append(applied, Filter{Field: f.Name, Value: d})
		default:
			if v == "" {
				q = q.Where("1 = 0")
			} else {
				q = q.Where(clause.Expr{SQL: "LOWER(?) = LOWER(?)", Vars: []any{f.Column, v}})
			}
			applied = append(applied, Filter{Field: f.Name, Value: v})
		}
	}
	return q, applied, nil
}
