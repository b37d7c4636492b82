// Command tabledash analyzes tabular files from the command line: it
// parses each input, infers the schema, detects dashboard roles, computes
// KPIs and reports data-quality findings. With -clean it also writes a
// cleaned copy of each file plus a change log.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"tabledash/internal/config"
	"tabledash/internal/exporter"
	"tabledash/internal/infer"
	"tabledash/internal/infrastructure"
	"tabledash/internal/kpi"
	"tabledash/internal/parser"
	"tabledash/internal/quality"
	"tabledash/pkg/contracts/domain"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file (env vars apply first)")
	outDir := flag.String("out", "out", "output directory for cleaned files and change logs")
	clean := flag.Bool("clean", false, "write a cleaned copy of each input plus a change log")
	missing := flag.String("missing", "none", "missing-value strategy: none | remove_row | fill_empty | fill_zero | fill_custom | fill_average | fill_median | fill_mode")
	fillValue := flag.String("fill-value", "", "fill value for -missing fill_custom")
	caseMode := flag.String("case", "none", "case normalization: none | lowercase | uppercase | titlecase")
	groupBy := flag.String("group-by", "", "optional column to aggregate by (defaults off)")
	aggMode := flag.String("agg", "sum", "aggregation mode for -group-by: sum | count | average")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tabledash [flags] file.csv [file2.xlsx ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := infrastructure.InitializeLogger(cfg.Logging)

	p := parser.New(logger, parser.Options{
		MaxFileSize: cfg.Parser.MaxFileSize,
		Infer: infer.Options{
			SampleSize:        cfg.Inference.SampleSize,
			CategoryMaxUnique: cfg.Inference.CategoryMaxUnique,
			NameKeywords:      cfg.Inference.NameKeywords,
		},
	})
	engine := kpi.NewEngine(logger, kpi.HintTable{
		Sales:    cfg.Roles.SalesHints,
		Quantity: cfg.Roles.QuantityHints,
		Customer: cfg.Roles.CustomerHints,
		Date:     cfg.Roles.DateHints,
		Cost:     cfg.Roles.CostHints,
	})
	analyzer := quality.NewAnalyzer(logger, cfg.Quality.MissingVocabulary, cfg.Quality.HighMissingRatio)
	cleaner := quality.NewCleaner(logger, cfg.Quality.MissingVocabulary)
	writer := exporter.NewCSVWriter(logger)

	cleanOpts := domain.CleaningOptions{
		RemoveDuplicates: true,
		RemoveEmptyRows:  true,
		MissingStrategy:  domain.MissingStrategy(*missing),
		CustomFillValue:  *fillValue,
		TrimWhitespace:   true,
		NormalizeCase:    domain.CaseMode(*caseMode),
	}

	reports := make([]string, flag.NArg())
	var g errgroup.Group
	for i, path := range flag.Args() {
		g.Go(func() error {
			report, err := analyzeFile(logger, p, engine, analyzer, cleaner, writer, fileJob{
				path:    path,
				clean:   *clean,
				opts:    cleanOpts,
				outDir:  *outDir,
				groupBy: *groupBy,
				aggMode: domain.AggregateMode(*aggMode),
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, report := range reports {
		fmt.Print(report)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

type fileJob struct {
	path    string
	clean   bool
	opts    domain.CleaningOptions
	outDir  string
	groupBy string
	aggMode domain.AggregateMode
}

func analyzeFile(logger *slog.Logger, p *parser.Parser, engine *kpi.Engine, analyzer *quality.Analyzer, cleaner *quality.Cleaner, writer *exporter.CSVWriter, job fileJob) (string, error) {
	data, err := os.ReadFile(job.path)
	if err != nil {
		return "", err
	}
	result := p.Parse(filepath.Base(job.path), data)
	if !result.Success {
		return "", fmt.Errorf("parse failed (%s): %s", result.ErrorCode, result.Err)
	}
	table := result.Data

	roles := engine.DetectRoles(table.Columns)
	kpis := engine.Compute(table.Rows, roles)
	summary := analyzer.Analyze(table.Rows, table.Columns)

	var b strings.Builder
	fmt.Fprintf(&b, "== %s (%d rows) ==\n", job.path, table.TotalRows)
	fmt.Fprintln(&b, "columns:")
	for _, col := range table.Columns {
		extra := ""
		switch {
		case col.Type == domain.ColumnTypeNumber && col.Min != nil && col.Max != nil:
			extra = fmt.Sprintf(" [%g .. %g]", *col.Min, *col.Max)
		case col.Type == domain.ColumnTypeCategory:
			extra = fmt.Sprintf(" (%d values)", len(col.UniqueValues))
		}
		fmt.Fprintf(&b, "  %-24s %s%s\n", col.Name, col.Type, extra)
	}

	fmt.Fprintf(&b, "kpis: orders=%d sales=%.2f quantity=%.2f avg_order=%.2f customers=%d\n",
		kpis.TotalOrders, kpis.TotalSales, kpis.TotalQuantity, kpis.AverageOrderValue, kpis.UniqueCustomers)
	if kpis.HasCostMetrics {
		fmt.Fprintf(&b, "cost: total=%.2f profit=%.2f margin=%.1f%%\n",
			kpis.TotalCost, kpis.TotalProfit, kpis.ProfitMargin)
	}

	if job.groupBy != "" {
		buckets := kpi.AggregateByColumn(table.Rows, job.groupBy, roles.SalesColumn, job.aggMode)
		fmt.Fprintf(&b, "%s of %s by %s:\n", job.aggMode, roles.SalesColumn, job.groupBy)
		for _, bucket := range buckets {
			fmt.Fprintf(&b, "  %-24s %.2f (%d rows)\n", bucket.Key, bucket.Value, bucket.Count)
		}
	}

	fmt.Fprintf(&b, "quality: %d duplicate rows, %d issues\n", len(summary.DuplicateRows), len(summary.Issues))
	for _, issue := range summary.Issues {
		col := issue.Column
		if col == "" {
			col = "(all)"
		}
		fmt.Fprintf(&b, "  [%s] %-20s %-24s %d cells\n", issue.Severity, issue.Type, col, issue.Count)
	}

	if job.clean {
		cleaned, cleanResult, err := cleaner.Clean(table.Rows, table.Columns, job.opts)
		if err != nil {
			return "", err
		}
		base := strings.TrimSuffix(filepath.Base(job.path), filepath.Ext(job.path))
		cleanedPath := filepath.Join(job.outDir, base+"_cleaned.csv")
		changesPath := filepath.Join(job.outDir, base+"_changes.csv")

		cleanedTable := &domain.Table{
			SourceFile: table.SourceFile,
			Columns:    table.Columns,
			RawHeaders: table.RawHeaders,
			Rows:       cleaned,
			TotalRows:  len(cleaned),
		}
		if err := writer.WriteTable(cleanedPath, cleanedTable, exporter.WriteOptions{BOMPrefix: true}); err != nil {
			return "", err
		}
		if err := writer.WriteChangeLog(changesPath, cleanResult); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "cleaned: removed %d rows, modified %d cells -> %s\n",
			cleanResult.RemovedRows, cleanResult.ModifiedCells, cleanedPath)
		logger.Info("wrote cleaned output",
			slog.String("file", cleanedPath),
			slog.Int("rows", len(cleaned)))
	}

	b.WriteString("\n")
	return b.String(), nil
}
