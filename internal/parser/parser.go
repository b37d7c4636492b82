// Package parser turns raw delimited or spreadsheet bytes into the
// canonical in-memory table, running every column through the type
// inference engine and converting cells to their typed forms. All parse
// failures are returned as tagged results with a stable error code,
// never thrown; callers must check Success before touching Data.
package parser

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"tabledash/internal/errors"
	"tabledash/internal/infer"
	"tabledash/pkg/contracts/domain"
)

// Options bounds what the parser accepts and how columns are classified.
type Options struct {
	MaxFileSize int64
	Infer       infer.Options
}

// DefaultOptions returns the standard parser limits.
func DefaultOptions() Options {
	return Options{
		MaxFileSize: 10 << 20,
		Infer:       infer.DefaultOptions(),
	}
}

// Parser converts uploaded file bytes into tables. It never touches the
// filesystem or network itself; the file-handling layer hands it bytes
// plus the declared file name.
type Parser struct {
	logger *slog.Logger
	opts   Options
}

// New creates a parser. A nil logger falls back to slog.Default; a zero
// Options falls back to DefaultOptions.
func New(logger *slog.Logger, opts Options) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxFileSize == 0 {
		opts = DefaultOptions()
	}
	return &Parser{logger: logger, opts: opts}
}

// Result is the tagged outcome of a parse call. On failure Data is nil
// and ErrorCode carries the stable code callers branch on; Err is the
// developer-facing message.
type Result struct {
	Success   bool          `json:"success"`
	Data      *domain.Table `json:"data,omitempty"`
	Err       string        `json:"error,omitempty"`
	ErrorCode errors.Code   `json:"error_code,omitempty"`
}

func failure(code errors.Code, message string) Result {
	return Result{Success: false, Err: message, ErrorCode: code}
}

// Parse converts raw bytes into a Table. The format is chosen from the
// declared file name: .xlsx/.xlsm/.xls are read as spreadsheets, anything
// else as delimited text.
func (p *Parser) Parse(fileName string, data []byte) Result {
	if int64(len(data)) > p.opts.MaxFileSize {
		p.logger.Warn("rejecting oversized upload",
			slog.String("file", fileName),
			slog.Int("size", len(data)),
			slog.Int64("limit", p.opts.MaxFileSize))
		return failure(errors.CodeFileTooLarge,
			fmt.Sprintf("file is %d bytes, limit is %d", len(data), p.opts.MaxFileSize))
	}

	var header []string
	var records [][]string
	var result Result

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm", ".xls":
		header, records, result = p.readWorkbook(data)
	default:
		header, records, result = p.readDelimited(data)
	}
	if result.ErrorCode != "" {
		return result
	}

	table := p.buildTable(fileName, header, records)
	p.logger.Info("parsed table",
		slog.String("file", fileName),
		slog.String("dataset_id", table.DatasetID),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.TotalRows))
	return Result{Success: true, Data: table}
}

// readDelimited structurally parses CSV bytes into a header plus data
// rows, with empty rows skipped.
func (p *Parser) readDelimited(data []byte) ([]string, [][]string, Result) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if stderrors.As(err, &parseErr) {
			return nil, nil, failure(errors.CodeCSVInvalid,
				fmt.Sprintf("malformed CSV at line %d: %v", parseErr.Line, parseErr.Err))
		}
		return nil, nil, failure(errors.CodeParseError, fmt.Sprintf("failed to parse CSV: %v", err))
	}
	return p.splitHeader(records)
}

// readWorkbook structurally parses spreadsheet bytes. Only the first
// sheet is read; cells holding a native date value are normalized to an
// ISO YYYY-MM-DD string so the typed-conversion step stays
// format-agnostic.
func (p *Parser) readWorkbook(data []byte) ([]string, [][]string, Result) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, failure(errors.CodeParseError, fmt.Sprintf("failed to open workbook: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, failure(errors.CodeParseError, "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, failure(errors.CodeParseError,
			fmt.Sprintf("failed to read sheet %q: %v", sheets[0], err))
	}
	for _, row := range rows {
		for j, cell := range row {
			row[j] = normalizeSheetDate(cell)
		}
	}
	return p.splitHeader(rows)
}

// splitHeader applies the shared structural rules: header row mandatory,
// data rows skip-empty, zero data rows after a successful parse is
// CSV_EMPTY.
func (p *Parser) splitHeader(records [][]string) ([]string, [][]string, Result) {
	if len(records) == 0 {
		return nil, nil, failure(errors.CodeNoHeader, "input has no header row")
	}
	header := records[0]
	if isEmptyRecord(header) {
		return nil, nil, failure(errors.CodeNoHeader, "header row is empty")
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isEmptyRecord(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil, failure(errors.CodeCSVEmpty, "no data rows after header")
	}
	return header, rows, Result{}
}

// buildTable runs inference per column, converts every cell to its typed
// form and assembles the canonical table.
func (p *Parser) buildTable(fileName string, header []string, records [][]string) *domain.Table {
	rawHeaders := append([]string(nil), header...)
	names := uniqueColumnNames(header)

	columns := make([]domain.Column, len(names))
	for i, name := range names {
		values := make([]string, len(records))
		for r, rec := range records {
			if i < len(rec) {
				values[r] = rec[i]
			}
		}
		columns[i] = infer.BuildColumn(name, values, p.opts.Infer)
	}

	rows := make([]domain.Row, len(records))
	for r, rec := range records {
		row := make(domain.Row, len(names))
		for i, col := range columns {
			raw := ""
			if i < len(rec) {
				raw = rec[i]
			}
			row[col.Name] = convertCell(raw, col.Type)
		}
		rows[r] = row
	}

	return &domain.Table{
		DatasetID:  uuid.NewString(),
		SourceFile: filepath.Base(fileName),
		Columns:    columns,
		RawHeaders: rawHeaders,
		Rows:       rows,
		TotalRows:  len(rows),
	}
}

// convertCell converts a raw cell according to the column's inferred
// type. A cell of a number or date column that fails to parse silently
// becomes nil: spreadsheet input is assumed dirty by design, and the
// cleaner exists to address it.
func convertCell(raw string, colType domain.ColumnType) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	switch colType {
	case domain.ColumnTypeNumber:
		if n, ok := infer.ParseNumber(raw); ok {
			return n
		}
		return nil
	case domain.ColumnTypeDate:
		if t, ok := infer.ParseDate(raw); ok {
			return t
		}
		return nil
	default:
		return raw
	}
}

// uniqueColumnNames trims header names, fills unnamed positions, and
// suffixes duplicates (_2, _3, ...) so column names stay unique within
// the table.
func uniqueColumnNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if _, ok := taken[name]; ok {
			base := name
			n := seen[base]
			for {
				n++
				name = fmt.Sprintf("%s_%d", base, n+1)
				if _, clash := taken[name]; !clash {
					break
				}
			}
			seen[base] = n
		}
		taken[name] = struct{}{}
		names[i] = name
	}
	return names
}

func isEmptyRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sheetDateLayouts are the display forms excelize renders for cells
// carrying a native date serial under the default number formats.
var sheetDateLayouts = []string{"01-02-06", "1-2-06", "01/02/06", "1/2/06"}

// normalizeSheetDate rewrites a workbook cell rendered in a short date
// display format to ISO YYYY-MM-DD. Other cells pass through unchanged.
func normalizeSheetDate(cell string) string {
	trimmed := strings.TrimSpace(cell)
	if len(trimmed) < 6 || len(trimmed) > 8 {
		return cell
	}
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return cell
}
