package domain

import (
	"time"
)

// FilterOperator identifies the comparison a filter applies.
type FilterOperator string

const (
	// Text operators
	FilterEquals     FilterOperator = "equals"
	FilterContains   FilterOperator = "contains"
	FilterStartsWith FilterOperator = "startsWith"
	FilterEndsWith   FilterOperator = "endsWith"

	// Number operators (equals is shared with text)
	FilterGreaterThan FilterOperator = "greaterThan"
	FilterLessThan    FilterOperator = "lessThan"
	FilterBetween     FilterOperator = "between"

	// Category operator
	FilterIn FilterOperator = "in"

	// Date operator
	FilterDateRange FilterOperator = "dateRange"
)

// Filter is a tagged union keyed by ColumnType: text filters use Value,
// number filters use Number/NumberTo, category filters use Values, and
// date filters use From/To. ColumnType must match the referenced column's
// inferred type. An inactive filter is retained in UI state and evaluated
// as pass-through rather than removed.
type Filter struct {
	ColumnName string         `json:"column_name" validate:"required"`
	ColumnType ColumnType     `json:"column_type" validate:"required,oneof=text number date category"`
	Operator   FilterOperator `json:"operator" validate:"required"`
	IsActive   bool           `json:"is_active"`

	// Text
	Value string `json:"value,omitempty"`

	// Number. NumberTo is only consulted by the between operator; when nil
	// it defaults to Number.
	Number   float64  `json:"number,omitempty"`
	NumberTo *float64 `json:"number_to,omitempty"`

	// Category
	Values []string `json:"values,omitempty"`

	// Date. Either bound may be nil; bounds are applied independently and
	// inclusively when present.
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}
