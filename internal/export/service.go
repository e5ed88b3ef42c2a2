// Package export renders the permanent quality audit log into report files
// for operators. Exports read the log; they never modify it.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/secfsds/bronze/internal/domain"
	"github.com/secfsds/bronze/internal/repository"
)

// Service exports audit-log reports.
type Service struct {
	logRepo repository.QualityLogRepository
	log     *zap.Logger
}

// NewService creates an export service over the audit log.
func NewService(logRepo repository.QualityLogRepository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{logRepo: logRepo, log: log}
}

// WriteCSV streams the filtered audit log as CSV.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, filter repository.QualityLogFilter) (int, error) {
	entries, err := s.logRepo.List(ctx, filter)
	if err != nil {
		return 0, err
	}

	payload, err := csvutil.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("marshal audit log to csv: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return 0, fmt.Errorf("write csv report: %w", err)
	}
	return len(entries), nil
}

// ExportCSV writes the filtered audit log to a timestamped CSV file in dir
// and returns its path.
func (s *Service) ExportCSV(ctx context.Context, dir string, filter repository.QualityLogFilter) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, reportName(filter, "csv"))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv report: %w", err)
	}
	defer f.Close()

	count, err := s.WriteCSV(ctx, f, filter)
	if err != nil {
		return "", err
	}
	s.log.Info("exported audit report", zap.String("path", path), zap.Int("entries", count))
	return path, nil
}

var xlsxHeader = []string{
	"log_id", "table_name", "data_quarter", "load_timestamp",
	"check_category", "check_type", "field_name",
	"issue_count", "total_records", "issue_percentage",
	"check_passed", "severity", "error_details", "created_at",
}

// ExportXLSX writes the filtered audit log to a timestamped XLSX workbook in
// dir and returns its path.
func (s *Service) ExportXLSX(ctx context.Context, dir string, filter repository.QualityLogFilter) (string, error) {
	entries, err := s.logRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, reportName(filter, "xlsx"))

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "quality_log"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("create report sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("drop default sheet: %w", err)
	}

	if err := writeXLSXRow(f, sheet, 1, headerCells()); err != nil {
		return "", err
	}
	for i, entry := range entries {
		if err := writeXLSXRow(f, sheet, i+2, entryCells(entry)); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save xlsx report: %w", err)
	}
	s.log.Info("exported audit report", zap.String("path", path), zap.Int("entries", len(entries)))
	return path, nil
}

func headerCells() []any {
	cells := make([]any, len(xlsxHeader))
	for i, h := range xlsxHeader {
		cells[i] = h
	}
	return cells
}

func entryCells(entry domain.QualityLogEntry) []any {
	return []any{
		entry.LogID,
		entry.TableName,
		entry.Quarter,
		entry.LoadTimestamp.Format("2006-01-02 15:04:05"),
		entry.CheckCategory,
		entry.CheckType,
		entry.FieldName,
		entry.IssueCount,
		entry.TotalRecords,
		entry.IssuePercentage,
		entry.CheckPassed,
		entry.Severity,
		entry.ErrorDetails,
		entry.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func writeXLSXRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve report cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write report row: %w", err)
	}
	return nil
}

func reportName(filter repository.QualityLogFilter, ext string) string {
	scope := "all"
	if filter.Quarter != "" {
		scope = filter.Quarter
	}
	return fmt.Sprintf("quality_log_%s_%s.%s", scope, time.Now().Format("20060102_150405"), ext)
}
