package quality

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "tabledash/internal/errors"
	"tabledash/internal/infer"
	"tabledash/pkg/contracts/domain"
)

// Cleaner applies the configured transformations to a row set. The five
// steps always run in a fixed order when enabled, because later steps
// operate on the output of earlier ones: duplicates, empty rows, missing
// values, whitespace, case. When duplicate removal is enabled a closing
// sweep also drops rows the value transforms made identical, so
// re-running the cleaner with the same options on its own output
// produces zero further changes.
type Cleaner struct {
	logger   *slog.Logger
	vocab    vocabSet
	validate *validator.Validate
}

// NewCleaner creates a cleaner. A nil logger falls back to slog.Default;
// an empty vocabulary falls back to the default placeholder list.
func NewCleaner(logger *slog.Logger, vocabulary []string) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger:   logger,
		vocab:    newVocabSet(vocabulary),
		validate: validator.New(),
	}
}

// workRow pairs a mutable row copy with its original index, so change
// records always reference positions in the caller's input.
type workRow struct {
	index int
	row   domain.Row
}

// Clean runs the enabled transformations and returns the cleaned rows
// plus the audit result. The input rows are never mutated. RemovedRows
// and ModifiedCells in the result are tallied from the change log.
func (c *Cleaner) Clean(rows []domain.Row, columns []domain.Column, opts domain.CleaningOptions) ([]domain.Row, *domain.CleaningResult, error) {
	if err := c.validate.Struct(opts); err != nil {
		return nil, nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid cleaning options", err)
	}

	scope := scopeColumns(columns, opts.ColumnsToClean)
	working := make([]workRow, len(rows))
	for i, row := range rows {
		copied := make(domain.Row, len(row))
		for k, v := range row {
			copied[k] = v
		}
		working[i] = workRow{index: i, row: copied}
	}

	var changes []domain.CleaningChange

	if opts.RemoveDuplicates {
		working = c.removeDuplicates(working, columns, &changes)
	}
	if opts.RemoveEmptyRows {
		working = c.removeEmptyRows(working, columns, &changes)
	}
	switch opts.MissingStrategy {
	case "", domain.MissingNone:
	case domain.MissingRemoveRow:
		working = c.removeRowsWithMissing(working, scope, &changes)
	default:
		// Fill values come from the original, pre-cleaning data so the
		// change log stays reproducible from (rows, options).
		fills := c.fillValues(rows, scope, opts)
		c.fillMissing(working, scope, opts.MissingStrategy, fills, &changes)
	}
	if opts.TrimWhitespace {
		c.trimWhitespace(working, scope, &changes)
	}
	if opts.NormalizeCase != "" && opts.NormalizeCase != domain.CaseNone {
		c.normalizeCase(working, scope, opts.NormalizeCase, &changes)
	}
	if opts.RemoveDuplicates {
		// Fills, trimming and case normalization can make previously
		// distinct rows identical; a second sweep keeps the output
		// duplicate-free, so re-running the cleaner is a no-op.
		working = c.removeDuplicates(working, columns, &changes)
	}

	cleaned := make([]domain.Row, len(working))
	for i, wr := range working {
		cleaned[i] = wr.row
	}

	result := &domain.CleaningResult{Changes: changes}
	for _, ch := range changes {
		switch ch.Kind {
		case domain.ChangeRowRemoved:
			result.RemovedRows++
		case domain.ChangeCellModified:
			result.ModifiedCells++
		}
	}

	c.logger.Info("cleaning run complete",
		slog.Int("input_rows", len(rows)),
		slog.Int("output_rows", len(cleaned)),
		slog.Int("removed_rows", result.RemovedRows),
		slog.Int("modified_cells", result.ModifiedCells))
	return cleaned, result, nil
}

// removeDuplicates keeps the first occurrence of each serialization, in
// original order.
func (c *Cleaner) removeDuplicates(working []workRow, columns []domain.Column, changes *[]domain.CleaningChange) []workRow {
	seen := make(map[string]int, len(working))
	kept := working[:0]
	for _, wr := range working {
		key := serializeRow(wr.row, columns)
		if first, ok := seen[key]; ok {
			*changes = append(*changes, domain.CleaningChange{
				Kind:     domain.ChangeRowRemoved,
				RowIndex: wr.index,
				Reason:   fmt.Sprintf("duplicate of row %d", first),
			})
			continue
		}
		seen[key] = wr.index
		kept = append(kept, wr)
	}
	return kept
}

func (c *Cleaner) removeEmptyRows(working []workRow, columns []domain.Column, changes *[]domain.CleaningChange) []workRow {
	kept := working[:0]
	for _, wr := range working {
		empty := true
		for _, col := range columns {
			if !c.vocab.isMissing(wr.row[col.Name]) {
				empty = false
				break
			}
		}
		if empty {
			*changes = append(*changes, domain.CleaningChange{
				Kind:     domain.ChangeRowRemoved,
				RowIndex: wr.index,
				Reason:   "row has no values in any column",
			})
			continue
		}
		kept = append(kept, wr)
	}
	return kept
}

func (c *Cleaner) removeRowsWithMissing(working []workRow, scope []domain.Column, changes *[]domain.CleaningChange) []workRow {
	kept := working[:0]
	for _, wr := range working {
		removed := false
		for _, col := range scope {
			if c.vocab.isMissing(wr.row[col.Name]) {
				*changes = append(*changes, domain.CleaningChange{
					Kind:     domain.ChangeRowRemoved,
					RowIndex: wr.index,
					Column:   col.Name,
					Reason:   fmt.Sprintf("missing value in column %q", col.Name),
				})
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, wr)
		}
	}
	return kept
}

// fillValues computes one fill value per scoped column from the original
// data. Averaging or median over a non-number column degrades to an
// empty string rather than failing the run.
func (c *Cleaner) fillValues(original []domain.Row, scope []domain.Column, opts domain.CleaningOptions) map[string]any {
	fills := make(map[string]any, len(scope))
	for _, col := range scope {
		switch opts.MissingStrategy {
		case domain.MissingFillEmpty:
			fills[col.Name] = ""
		case domain.MissingFillZero:
			fills[col.Name] = float64(0)
		case domain.MissingFillCustom:
			fills[col.Name] = opts.CustomFillValue
		case domain.MissingFillAverage:
			fills[col.Name] = c.numericFill(original, col, meanOf)
		case domain.MissingFillMedian:
			fills[col.Name] = c.numericFill(original, col, medianOf)
		case domain.MissingFillMode:
			fills[col.Name] = c.modeFill(original, col)
		}
	}
	return fills
}

func (c *Cleaner) numericFill(original []domain.Row, col domain.Column, reduce func([]float64) float64) any {
	if col.Type != domain.ColumnTypeNumber {
		return ""
	}
	values := make([]float64, 0, len(original))
	for _, row := range original {
		cell := row[col.Name]
		if c.vocab.isMissing(cell) {
			continue
		}
		if n, ok := infer.NumericCell(cell); ok {
			values = append(values, n)
		}
	}
	if len(values) == 0 {
		return float64(0)
	}
	return reduce(values)
}

// modeFill picks the most frequent non-missing value, ties broken by
// first-seen order during the scan.
func (c *Cleaner) modeFill(original []domain.Row, col domain.Column) any {
	counts := make(map[string]int)
	first := make(map[string]int)
	byKey := make(map[string]any)
	order := 0
	for _, row := range original {
		cell := row[col.Name]
		if c.vocab.isMissing(cell) {
			continue
		}
		key := serializeCell(cell)
		if _, ok := counts[key]; !ok {
			first[key] = order
			byKey[key] = cell
			order++
		}
		counts[key]++
	}
	if len(counts) == 0 {
		return ""
	}
	best := ""
	for key := range counts {
		if best == "" ||
			counts[key] > counts[best] ||
			(counts[key] == counts[best] && first[key] < first[best]) {
			best = key
		}
	}
	return byKey[best]
}

func (c *Cleaner) fillMissing(working []workRow, scope []domain.Column, strategy domain.MissingStrategy, fills map[string]any, changes *[]domain.CleaningChange) {
	for _, wr := range working {
		for _, col := range scope {
			cell := wr.row[col.Name]
			if !c.vocab.isMissing(cell) {
				continue
			}
			fill, ok := fills[col.Name]
			if !ok || serializeCell(cell) == serializeCell(fill) {
				continue
			}
			*changes = append(*changes, domain.CleaningChange{
				Kind:     domain.ChangeCellModified,
				RowIndex: wr.index,
				Column:   col.Name,
				Before:   cell,
				After:    fill,
				Reason:   fmt.Sprintf("filled missing value (%s)", strategy),
			})
			wr.row[col.Name] = fill
		}
	}
}

func (c *Cleaner) trimWhitespace(working []workRow, scope []domain.Column, changes *[]domain.CleaningChange) {
	for _, wr := range working {
		for _, col := range scope {
			s, ok := wr.row[col.Name].(string)
			if !ok {
				continue
			}
			collapsed := collapseWhitespace(s)
			if collapsed == s {
				continue
			}
			*changes = append(*changes, domain.CleaningChange{
				Kind:     domain.ChangeCellModified,
				RowIndex: wr.index,
				Column:   col.Name,
				Before:   s,
				After:    collapsed,
				Reason:   "normalized whitespace",
			})
			wr.row[col.Name] = collapsed
		}
	}
}

func (c *Cleaner) normalizeCase(working []workRow, scope []domain.Column, mode domain.CaseMode, changes *[]domain.CleaningChange) {
	for _, wr := range working {
		for _, col := range scope {
			if !textual(col.Type) {
				continue
			}
			s, ok := wr.row[col.Name].(string)
			if !ok {
				continue
			}
			normalized := applyCase(s, mode)
			if normalized == s {
				continue
			}
			*changes = append(*changes, domain.CleaningChange{
				Kind:     domain.ChangeCellModified,
				RowIndex: wr.index,
				Column:   col.Name,
				Before:   s,
				After:    normalized,
				Reason:   fmt.Sprintf("normalized case (%s)", mode),
			})
			wr.row[col.Name] = normalized
		}
	}
}

func applyCase(s string, mode domain.CaseMode) string {
	switch mode {
	case domain.CaseLowercase:
		return strings.ToLower(s)
	case domain.CaseUppercase:
		return strings.ToUpper(s)
	case domain.CaseTitlecase:
		return titleCase(s)
	default:
		return s
	}
}

func scopeColumns(columns []domain.Column, names []string) []domain.Column {
	if len(names) == 0 {
		return columns
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	scoped := make([]domain.Column, 0, len(names))
	for _, col := range columns {
		if _, ok := wanted[col.Name]; ok {
			scoped = append(scoped, col)
		}
	}
	return scoped
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
