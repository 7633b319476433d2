// Package export produces XLSX run reports for batch executions.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/kra-data-tools/notice-tracker/internal/pipeline"
	"github.com/kra-data-tools/notice-tracker/internal/store"
)

// Service turns a batch report plus store statistics into XLSX bytes.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

func NewService(s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, logger: logger}
}

// BuildReportXLSX returns a workbook (as bytes) with a Results sheet listing
// per-document outcomes and a Summary sheet rolling up the run and the store.
func (s *Service) BuildReportXLSX(ctx context.Context, report *pipeline.BatchReport) ([]byte, error) {
	start := time.Now()
	runID := uuid.New()

	f := excelize.NewFile()
	const resultsSheet = "Results"
	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Document",
		"Status",
		"Merge Outcome",
		"Method",
		"Fields Present",
		"Failure Cause",
		"Duration (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(resultsSheet, cell, h)
	}

	row := 2
	for _, out := range report.Outcomes {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(resultsSheet, cell, v)
		}
		write(1, out.Path)
		write(2, string(out.Status))
		write(3, string(out.Merge))
		write(4, out.Method)
		write(5, out.FieldsPresent)
		write(6, out.Cause)
		write(7, out.Duration.Milliseconds())
		row++
	}

	_ = f.SetColWidth(resultsSheet, "A", "A", 60) // path
	_ = f.SetColWidth(resultsSheet, "B", "D", 18)
	_ = f.SetColWidth(resultsSheet, "E", "G", 14)

	if err := s.writeSummary(ctx, f, runID, report); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.report.ok",
		"run_id", runID.String(),
		"rows", len(report.Outcomes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// SaveReport writes the report workbook to path.
func (s *Service) SaveReport(ctx context.Context, report *pipeline.BatchReport, path string) error {
	data, err := s.BuildReportXLSX(ctx, report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	s.logger.Info("export.report.saved", "path", path)
	return nil
}

func (s *Service) writeSummary(ctx context.Context, f *excelize.File, runID uuid.UUID, report *pipeline.BatchReport) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	stats, err := store.ComputeStats(ctx, s.store)
	if err != nil {
		return err
	}

	lines := [][2]any{
		{"Run ID", runID.String()},
		{"Started", report.StartedAt.Format(time.RFC3339)},
		{"Finished", report.FinishedAt.Format(time.RFC3339)},
		{"Documents Processed", report.Processed},
		{"Succeeded", report.Succeeded},
		{"Partial", report.Partial},
		{"Failed", report.Failed},
		{"Inserted", report.Inserted},
		{"Skipped (duplicate)", report.Skipped},
		{"Updated", report.Updated},
		{"Store Records", stats.TotalRecords},
		{"Unique Taxpayers", stats.UniqueTaxpayers},
		{"Unique Stations", stats.UniqueStations},
		{"Earliest Notice Date", stats.EarliestDate},
		{"Latest Notice Date", stats.LatestDate},
	}
	for i, line := range lines {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, labelCell, line[0])
		_ = f.SetCellValue(sheet, valueCell, line[1])
	}
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 40)
	return nil
}
