// Package filter evaluates user-defined filter predicates against table
// rows. Evaluation is pure and order-preserving: the output is a
// subsequence of the input, and a row passes only when it satisfies every
// active filter.
package filter

import (
	"strings"

	"tabledash/internal/infer"
	"tabledash/pkg/contracts/domain"
)

// Apply returns the rows that satisfy all active filters. With no active
// filters the input slice is returned unchanged; callers must not rely on
// reference identity. Malformed filter shapes evaluate as pass-through,
// prioritizing availability over strictness.
func Apply(rows []domain.Row, filters []domain.Filter) []domain.Row {
	active := make([]domain.Filter, 0, len(filters))
	for _, f := range filters {
		if f.IsActive {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return rows
	}

	out := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		if rowMatches(row, active) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches(row domain.Row, filters []domain.Filter) bool {
	for _, f := range filters {
		if !matches(row[f.ColumnName], f) {
			return false
		}
	}
	return true
}

func matches(cell any, f domain.Filter) bool {
	switch f.ColumnType {
	case domain.ColumnTypeText:
		return matchText(cell, f)
	case domain.ColumnTypeNumber:
		return matchNumber(cell, f)
	case domain.ColumnTypeCategory:
		return matchCategory(cell, f)
	case domain.ColumnTypeDate:
		return matchDate(cell, f)
	default:
		return true
	}
}

// matchText compares case-insensitively over the string form of the
// cell; nil is treated as the empty string.
func matchText(cell any, f domain.Filter) bool {
	value := strings.ToLower(infer.StringCell(cell))
	target := strings.ToLower(f.Value)
	switch f.Operator {
	case domain.FilterEquals:
		return value == target
	case domain.FilterContains:
		return strings.Contains(value, target)
	case domain.FilterStartsWith:
		return strings.HasPrefix(value, target)
	case domain.FilterEndsWith:
		return strings.HasSuffix(value, target)
	default:
		return true
	}
}

// matchNumber fails the row whenever the cell does not coerce to a
// number: a missing or non-numeric cell never matches a numeric filter.
// The between operator is inclusive on both ends and degenerates to
// equality when no upper bound is set.
func matchNumber(cell any, f domain.Filter) bool {
	n, ok := infer.NumericCell(cell)
	if !ok {
		return false
	}
	switch f.Operator {
	case domain.FilterEquals:
		return n == f.Number
	case domain.FilterGreaterThan:
		return n > f.Number
	case domain.FilterLessThan:
		return n < f.Number
	case domain.FilterBetween:
		upper := f.Number
		if f.NumberTo != nil {
			upper = *f.NumberTo
		}
		return n >= f.Number && n <= upper
	default:
		return true
	}
}

// matchCategory tests exact string-form membership. An empty values list
// is pass-through, matching the "no filters active" identity rule.
func matchCategory(cell any, f domain.Filter) bool {
	if f.Operator != domain.FilterIn || len(f.Values) == 0 {
		return true
	}
	value := infer.StringCell(cell)
	for _, v := range f.Values {
		if value == v {
			return true
		}
	}
	return false
}

// matchDate fails the row when the cell holds no parseable date. Bounds
// are optional and applied independently, inclusive on both ends.
func matchDate(cell any, f domain.Filter) bool {
	if f.Operator != domain.FilterDateRange {
		return true
	}
	t, ok := domain.CellDate(cell)
	if !ok {
		parsed, parsedOK := infer.ParseDate(infer.StringCell(cell))
		if !parsedOK {
			return false
		}
		t = parsed
	}
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}
