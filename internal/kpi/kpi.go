// Package kpi computes dashboard summary metrics and chart aggregates
// over any row subset, typically the filter evaluator's output. Both the
// KPI set and the grouped aggregation are pure functions of their inputs,
// so table, KPIs and charts computed from the same filtered row set
// always agree.
package kpi

import (
	"log/slog"
	"sort"
	"strings"

	"tabledash/internal/infer"
	"tabledash/pkg/contracts/domain"
)

// HintTable maps dashboard roles to the column-name keywords that
// suggest them, matched case-insensitively as substrings in list order.
type HintTable struct {
	Sales    []string
	Quantity []string
	Customer []string
	Date     []string
	Cost     []string
}

// DefaultHints returns the standard role keywords.
func DefaultHints() HintTable {
	return HintTable{
		Sales:    []string{"total", "amount", "revenue", "sales", "price", "value", "income"},
		Quantity: []string{"quantity", "qty", "count", "units", "items"},
		Customer: []string{"customer", "client", "buyer", "name", "user"},
		Date:     []string{"date", "time", "day", "created", "ordered"},
		Cost:     []string{"cost", "expense", "cogs", "spend"},
	}
}

// Engine computes KPIs with a fixed hint table.
type Engine struct {
	logger *slog.Logger
	hints  HintTable
}

// NewEngine creates a KPI engine. A nil logger falls back to
// slog.Default; a zero hint table falls back to DefaultHints.
func NewEngine(logger *slog.Logger, hints HintTable) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if len(hints.Sales) == 0 {
		hints = DefaultHints()
	}
	return &Engine{logger: logger, hints: hints}
}

// DetectRoles assigns dashboard roles to columns by keyword hints,
// checked against the inferred column types: sales, quantity and cost
// must be number columns, date must be a date column. First hint match
// wins. The sales role falls back to the first numeric column, so a
// sales column exists whenever any numeric column does.
func (e *Engine) DetectRoles(columns []domain.Column) domain.ColumnRoles {
	roles := domain.ColumnRoles{
		SalesColumn:    matchHint(columns, e.hints.Sales, domain.ColumnTypeNumber),
		QuantityColumn: matchHint(columns, e.hints.Quantity, domain.ColumnTypeNumber),
		CustomerColumn: matchHint(columns, e.hints.Customer, ""),
		DateColumn:     matchHint(columns, e.hints.Date, domain.ColumnTypeDate),
		CostColumn:     matchHint(columns, e.hints.Cost, domain.ColumnTypeNumber),
	}
	if roles.SalesColumn == "" {
		for _, col := range columns {
			if col.Type == domain.ColumnTypeNumber {
				roles.SalesColumn = col.Name
				break
			}
		}
	}
	e.logger.Debug("detected column roles",
		slog.String("sales", roles.SalesColumn),
		slog.String("quantity", roles.QuantityColumn),
		slog.String("customer", roles.CustomerColumn),
		slog.String("date", roles.DateColumn),
		slog.String("cost", roles.CostColumn))
	return roles
}

// matchHint returns the first column whose name contains a hint, walking
// hints in priority order. An empty wantType accepts any column type.
func matchHint(columns []domain.Column, hints []string, wantType domain.ColumnType) string {
	for _, hint := range hints {
		for _, col := range columns {
			if wantType != "" && col.Type != wantType {
				continue
			}
			if strings.Contains(strings.ToLower(col.Name), hint) {
				return col.Name
			}
		}
	}
	return ""
}

// Compute calculates the KPI set for a row subset. Non-numeric and
// missing cells contribute zero to the sums; the average order value is
// zero unless both total sales and total orders are positive.
func (e *Engine) Compute(rows []domain.Row, roles domain.ColumnRoles) domain.KPISet {
	set := domain.KPISet{TotalOrders: len(rows)}

	set.TotalSales = sumColumn(rows, roles.SalesColumn)
	set.TotalQuantity = sumColumn(rows, roles.QuantityColumn)

	if set.TotalOrders > 0 && set.TotalSales > 0 {
		set.AverageOrderValue = set.TotalSales / float64(set.TotalOrders)
	}

	if roles.CustomerColumn != "" {
		distinct := make(map[string]struct{})
		for _, row := range rows {
			s := infer.StringCell(row[roles.CustomerColumn])
			if s == "" {
				continue
			}
			distinct[s] = struct{}{}
		}
		set.UniqueCustomers = len(distinct)
	}

	if roles.CostColumn != "" {
		set.HasCostMetrics = true
		set.TotalCost = sumColumn(rows, roles.CostColumn)
		set.TotalProfit = set.TotalSales - set.TotalCost
		if set.TotalSales != 0 {
			set.ProfitMargin = set.TotalProfit / set.TotalSales * 100
		}
	}
	return set
}

func sumColumn(rows []domain.Row, column string) float64 {
	if column == "" {
		return 0
	}
	var sum float64
	for _, row := range rows {
		if n, ok := infer.NumericCell(row[column]); ok {
			sum += n
		}
	}
	return sum
}

// AggregateByColumn buckets rows by the string form of groupCol (missing
// cells land in the literal "Unknown" bucket), reduces valueCol per
// bucket by mode, and returns the buckets sorted descending by value.
// Ties keep bucket-creation order, so chart ordering is deterministic.
func AggregateByColumn(rows []domain.Row, groupCol, valueCol string, mode domain.AggregateMode) []domain.Bucket {
	index := make(map[string]int)
	buckets := make([]domain.Bucket, 0)
	sums := make([]float64, 0)

	for _, row := range rows {
		key := infer.StringCell(row[groupCol])
		if key == "" {
			key = "Unknown"
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, domain.Bucket{Key: key})
			sums = append(sums, 0)
		}
		buckets[i].Count++
		if n, numOK := infer.NumericCell(row[valueCol]); numOK {
			sums[i] += n
		}
	}

	for i := range buckets {
		switch mode {
		case domain.AggregateCount:
			buckets[i].Value = float64(buckets[i].Count)
		case domain.AggregateAverage:
			if buckets[i].Count > 0 {
				buckets[i].Value = sums[i] / float64(buckets[i].Count)
			}
		default:
			buckets[i].Value = sums[i]
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Value > buckets[j].Value
	})
	return buckets
}
