package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	apperrors "tabledash/internal/errors"
	"tabledash/pkg/contracts/domain"
)

// CSVWriter writes tables and cleaning change logs to disk.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer. A nil logger falls back to
// slog.Default.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures file output.
type WriteOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel opens the file correctly.
	BOMPrefix bool
}

// WriteTable writes a table to filePath as CSV, creating parent
// directories as needed.
func (w *CSVWriter) WriteTable(filePath string, table *domain.Table, options WriteOptions) error {
	w.logger.Info("writing table CSV",
		slog.String("file_path", filePath),
		slog.Int("rows", len(table.Rows)))

	sw, err := w.CreateStreamWriter(filePath, headersFor(table), options)
	if err != nil {
		return err
	}
	for i, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			record[j] = formatCell(row[col.Name])
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return apperrors.NewExportError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}
	return sw.Close()
}

// WriteChangeLog writes a cleaning result's change records to filePath
// as CSV, one row per change.
func (w *CSVWriter) WriteChangeLog(filePath string, result *domain.CleaningResult) error {
	w.logger.Info("writing cleaning change log",
		slog.String("file_path", filePath),
		slog.Int("changes", len(result.Changes)))

	sw, err := w.CreateStreamWriter(filePath, []string{"kind", "row", "column", "before", "after", "reason"}, WriteOptions{})
	if err != nil {
		return err
	}
	for i, ch := range result.Changes {
		record := []string{
			string(ch.Kind),
			strconv.Itoa(ch.RowIndex),
			ch.Column,
			formatCell(ch.Before),
			formatCell(ch.After),
			ch.Reason,
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return apperrors.NewExportError(fmt.Sprintf("failed to write change %d", i), err)
		}
	}
	return sw.Close()
}

// StreamWriter writes CSV records incrementally, for exports too large
// to buffer.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter opens filePath, writes the optional BOM and the
// header row, and returns a writer for the records.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, options WriteOptions) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, apperrors.NewExportError("failed to create directory", err)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return nil, apperrors.NewExportError("failed to create file", err)
	}
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			file.Close()
			return nil, apperrors.NewExportError("failed to write BOM", err)
		}
	}
	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, apperrors.NewExportError("failed to write headers", err)
		}
	}
	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream.
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the underlying file.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
