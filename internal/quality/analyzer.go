package quality

import (
	"log/slog"
	"strings"

	"tabledash/pkg/contracts/domain"
)

// Analyzer scans a table for quality issues without mutating it. Issue
// categories are not mutually exclusive: one cell can contribute to the
// missing, whitespace and case findings at once.
type Analyzer struct {
	logger           *slog.Logger
	vocab            vocabSet
	highMissingRatio float64
}

// NewAnalyzer creates an analyzer. A nil logger falls back to
// slog.Default; an empty vocabulary falls back to the default placeholder
// list; a zero ratio falls back to 10%.
func NewAnalyzer(logger *slog.Logger, vocabulary []string, highMissingRatio float64) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if highMissingRatio <= 0 {
		highMissingRatio = 0.1
	}
	return &Analyzer{
		logger:           logger,
		vocab:            newVocabSet(vocabulary),
		highMissingRatio: highMissingRatio,
	}
}

// Analyze produces the full quality summary for a row set.
func (a *Analyzer) Analyze(rows []domain.Row, columns []domain.Column) domain.QualitySummary {
	summary := domain.QualitySummary{TotalRows: len(rows)}

	summary.DuplicateRows = a.findDuplicates(rows, columns)
	if len(summary.DuplicateRows) > 0 {
		summary.Issues = append(summary.Issues, domain.CleaningIssue{
			Type:       domain.IssueDuplicateRows,
			RowIndices: summary.DuplicateRows,
			Count:      len(summary.DuplicateRows),
			Severity:   domain.SeverityHigh,
		})
	}

	for _, col := range columns {
		if issue, ok := a.missingIssue(rows, col); ok {
			summary.Issues = append(summary.Issues, issue)
		}
		if issue, ok := a.whitespaceIssue(rows, col); ok {
			summary.Issues = append(summary.Issues, issue)
		}
		if textual(col.Type) {
			variants := a.caseVariants(rows, col)
			if len(variants) > 0 {
				summary.CaseVariants = append(summary.CaseVariants, variants...)
				affected := make([]int, 0)
				for _, v := range variants {
					affected = append(affected, v.RowIndices...)
				}
				summary.Issues = append(summary.Issues, domain.CleaningIssue{
					Type:       domain.IssueCaseInconsistency,
					Column:     col.Name,
					RowIndices: affected,
					Count:      len(affected),
					Severity:   domain.SeverityMedium,
				})
			}
		}
	}

	a.logger.Debug("analyzed table quality",
		slog.Int("rows", len(rows)),
		slog.Int("duplicates", len(summary.DuplicateRows)),
		slog.Int("issues", len(summary.Issues)))
	return summary
}

// findDuplicates flags every occurrence after the first of each
// identical row serialization, in original row order.
func (a *Analyzer) findDuplicates(rows []domain.Row, columns []domain.Column) []int {
	seen := make(map[string]struct{}, len(rows))
	dupes := make([]int, 0)
	for i, row := range rows {
		key := serializeRow(row, columns)
		if _, ok := seen[key]; ok {
			dupes = append(dupes, i)
			continue
		}
		seen[key] = struct{}{}
	}
	return dupes
}

func (a *Analyzer) missingIssue(rows []domain.Row, col domain.Column) (domain.CleaningIssue, bool) {
	indices := make([]int, 0)
	for i, row := range rows {
		if a.vocab.isMissing(row[col.Name]) {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return domain.CleaningIssue{}, false
	}
	severity := domain.SeverityMedium
	if len(rows) > 0 && float64(len(indices)) > a.highMissingRatio*float64(len(rows)) {
		severity = domain.SeverityHigh
	}
	return domain.CleaningIssue{
		Type:       domain.IssueMissingValues,
		Column:     col.Name,
		RowIndices: indices,
		Count:      len(indices),
		Severity:   severity,
	}, true
}

func (a *Analyzer) whitespaceIssue(rows []domain.Row, col domain.Column) (domain.CleaningIssue, bool) {
	indices := make([]int, 0)
	for i, row := range rows {
		s, ok := row[col.Name].(string)
		if !ok {
			continue
		}
		if strings.TrimSpace(s) != s || strings.Contains(strings.TrimSpace(s), "  ") {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return domain.CleaningIssue{}, false
	}
	return domain.CleaningIssue{
		Type:       domain.IssueWhitespace,
		Column:     col.Name,
		RowIndices: indices,
		Count:      len(indices),
		Severity:   domain.SeverityLow,
	}, true
}

// caseVariants groups string cells by their lowercased-trimmed form and
// reports every raw casing in groups with more than one variant.
func (a *Analyzer) caseVariants(rows []domain.Row, col domain.Column) []domain.CaseVariant {
	type variant struct {
		count int
		rows  []int
	}
	groups := make(map[string]map[string]*variant)
	order := make([]string, 0)
	variantOrder := make(map[string][]string)

	for i, row := range rows {
		s, ok := row[col.Name].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(s))
		if groups[key] == nil {
			groups[key] = make(map[string]*variant)
			order = append(order, key)
		}
		if groups[key][s] == nil {
			groups[key][s] = &variant{}
			variantOrder[key] = append(variantOrder[key], s)
		}
		groups[key][s].count++
		groups[key][s].rows = append(groups[key][s].rows, i)
	}

	out := make([]domain.CaseVariant, 0)
	for _, key := range order {
		if len(groups[key]) < 2 {
			continue
		}
		for _, raw := range variantOrder[key] {
			v := groups[key][raw]
			out = append(out, domain.CaseVariant{
				Column:     col.Name,
				Value:      raw,
				Count:      v.count,
				RowIndices: v.rows,
			})
		}
	}
	return out
}
