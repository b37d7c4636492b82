package infer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"tabledash/pkg/contracts/domain"
)

// Options holds the classification heuristics as explicit data, so tests
// and callers can substitute their own tables.
type Options struct {
	// SampleSize is how many non-empty values the classifier examines.
	SampleSize int
	// CategoryMaxUnique is the distinct-count ceiling for the non-name-like
	// category rule.
	CategoryMaxUnique int
	// NameKeywords marks identity-like columns (matched case-insensitively
	// as substrings of the column name) that classify as category
	// regardless of cardinality.
	NameKeywords []string
}

// DefaultOptions returns the standard heuristics.
func DefaultOptions() Options {
	return Options{
		SampleSize:        100,
		CategoryMaxUnique: 30,
		NameKeywords: []string{
			"customer", "client", "name", "user", "buyer", "seller",
			"vendor", "supplier", "person", "employee", "staff", "agent",
		},
	}
}

// sampleValueCount is how many non-empty raw values a Column carries for
// UI preview.
const sampleValueCount = 5

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), // YYYY-MM-DD
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), // MM/DD/YYYY
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`), // DD-MM-YYYY
	regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`), // YYYY/MM/DD
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006",
}

// Classify determines the column type from an ordered sequence of raw
// values. Empty strings count as null. Tests run in the fixed order
// date, number, category, text: the order is a deliberate priority, so a
// column of year-like integers that would pass the date test never
// reaches the number test.
func Classify(columnName string, values []string, opt Options) domain.ColumnType {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return domain.ColumnTypeText
	}

	sample := nonEmpty
	if opt.SampleSize > 0 && len(sample) > opt.SampleSize {
		sample = sample[:opt.SampleSize]
	}

	if allDates(sample) {
		return domain.ColumnTypeDate
	}
	if allNumbers(sample) {
		return domain.ColumnTypeNumber
	}

	distinct := make(map[string]struct{}, len(sample))
	for _, v := range sample {
		distinct[v] = struct{}{}
	}

	if isNameLike(columnName, opt.NameKeywords) && len(nonEmpty) >= 2 {
		return domain.ColumnTypeCategory
	}
	if len(distinct) <= opt.CategoryMaxUnique && len(nonEmpty) > 2*len(distinct) {
		return domain.ColumnTypeCategory
	}
	return domain.ColumnTypeText
}

// BuildColumn classifies a column and computes its derived stats: sample
// values for preview, sorted unique values for category columns (over the
// full column, not just the classification sample), and min/max for
// number columns.
func BuildColumn(columnName string, values []string, opt Options) domain.Column {
	col := domain.Column{
		Name: columnName,
		Type: Classify(columnName, values, opt),
	}

	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		col.SampleValues = append(col.SampleValues, v)
		if len(col.SampleValues) == sampleValueCount {
			break
		}
	}

	switch col.Type {
	case domain.ColumnTypeCategory:
		col.UniqueValues = distinctSorted(values)
	case domain.ColumnTypeNumber:
		// Values that fail to parse are excluded, not treated as errors.
		for _, v := range values {
			n, ok := ParseNumber(v)
			if !ok {
				continue
			}
			if col.Min == nil || n < *col.Min {
				col.Min = ptr(n)
			}
			if col.Max == nil || n > *col.Max {
				col.Max = ptr(n)
			}
		}
	}
	return col
}

// UniqueValues recomputes the sorted distinct string forms of a column
// over the current rows. Consumers call this after edits to keep category
// filters valid; it is a read-derived projection, not a mutation.
func UniqueValues(rows []domain.Row, column string) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, StringCell(row[column]))
	}
	return distinctSorted(values)
}

// ParseNumber parses a raw cell as a float after stripping thousands
// separators and currency markers.
func ParseNumber(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDate parses a raw cell against the supported date layouts.
func ParseDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StringCell returns the canonical string form of a typed cell. A nil
// cell is the empty string; dates render as ISO YYYY-MM-DD.
func StringCell(v any) string {
	switch cell := v.(type) {
	case nil:
		return ""
	case time.Time:
		return cell.Format("2006-01-02")
	default:
		return cast.ToString(cell)
	}
}

// NumericCell coerces a typed cell to a float. Strings go through
// ParseNumber so currency-formatted values still count; anything that
// does not coerce reports false.
func NumericCell(v any) (float64, bool) {
	switch cell := v.(type) {
	case nil:
		return 0, false
	case float64:
		return cell, true
	case string:
		return ParseNumber(cell)
	default:
		n, err := cast.ToFloat64E(cell)
		if err != nil {
			return 0, false
		}
		return n, true
	}
}

func allDates(sample []string) bool {
	for _, v := range sample {
		if !dateLike(v) {
			return false
		}
	}
	return true
}

// dateLike accepts a value matching one of the fixed patterns, or one
// that parses as a date and is longer than 6 characters. The length guard
// rejects bare small integers ("2024") that happen to parse as dates.
func dateLike(v string) bool {
	trimmed := strings.TrimSpace(v)
	for _, p := range datePatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	if len(trimmed) > 6 {
		if _, ok := ParseDate(trimmed); ok {
			return true
		}
	}
	return false
}

func allNumbers(sample []string) bool {
	for _, v := range sample {
		if _, ok := ParseNumber(v); !ok {
			return false
		}
	}
	return true
}

func isNameLike(columnName string, keywords []string) bool {
	lower := strings.ToLower(columnName)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func ptr(f float64) *float64 { return &f }
