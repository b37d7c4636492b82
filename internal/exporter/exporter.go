// Package exporter serializes parsed tables back to CSV. The output is
// designed to round-trip: re-parsing an exported table reproduces the
// same column names, inferred types and typed cell values.
package exporter

import (
	"encoding/csv"
	"strings"

	"tabledash/pkg/contracts/domain"
)

// Format renders a table as CSV text. Headers come from the original
// raw headers when they still align with the column list, so an
// untouched table exports with the exact headers it was imported with;
// otherwise the deduplicated column names are used.
func Format(table *domain.Table) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write(headersFor(table)); err != nil {
		return "", err
	}
	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			record[i] = formatCell(row[col.Name])
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// FormatRows renders an arbitrary row subset against a column list,
// using the column names as headers. This is the path for exporting
// filtered or cleaned data that no longer matches the source file.
func FormatRows(rows []domain.Row, columns []domain.Column) (string, error) {
	table := &domain.Table{Columns: columns, Rows: rows}
	return Format(table)
}

func headersFor(table *domain.Table) []string {
	if len(table.RawHeaders) == len(table.Columns) {
		return table.RawHeaders
	}
	return table.ColumnNames()
}
