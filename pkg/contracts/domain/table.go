package domain

import (
	"time"
)

// ColumnType classifies the values of a column. It is a heuristic label,
// not an enforced schema: individual cells may still fail to match.
type ColumnType string

const (
	ColumnTypeText     ColumnType = "text"
	ColumnTypeNumber   ColumnType = "number"
	ColumnTypeDate     ColumnType = "date"
	ColumnTypeCategory ColumnType = "category"
)

// Column describes one field of a parsed dataset.
type Column struct {
	Name         string     `json:"name" db:"name" validate:"required"`
	Type         ColumnType `json:"type" db:"type" validate:"required,oneof=text number date category"`
	SampleValues []string   `json:"sample_values,omitempty" db:"sample_values"`
	// UniqueValues is populated only for category columns: sorted distinct
	// string forms of all non-empty values at classification time.
	UniqueValues []string `json:"unique_values,omitempty" db:"unique_values"`
	// Min and Max are populated only for number columns.
	Min *float64 `json:"min,omitempty" db:"min"`
	Max *float64 `json:"max,omitempty" db:"max"`
}

// Row maps column names to typed cell values. Cell values are one of
// string, float64, time.Time or nil. Every row carries an entry (possibly
// nil) for every column in the table's column list.
type Row map[string]any

// Table is the canonical parsed dataset handed to the filter, KPI and
// cleaning engines. Row identity for persistence is assigned downstream;
// the engines treat rows as position-indexed only.
type Table struct {
	DatasetID  string   `json:"dataset_id" db:"dataset_id" validate:"required,uuid"`
	SourceFile string   `json:"source_file" db:"source_file"`
	Columns    []Column `json:"columns" db:"columns"`
	// RawHeaders preserves the original header order before any renaming,
	// for round-trip export.
	RawHeaders []string `json:"raw_headers" db:"raw_headers"`
	Rows       []Row    `json:"rows" db:"rows"`
	TotalRows  int      `json:"total_rows" db:"total_rows"`
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnByName returns the column with the given name, or nil.
func (t *Table) ColumnByName(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// CellDate reports the cell as a date when it holds a native time.Time.
func CellDate(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}
