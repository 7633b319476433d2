package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kra-data-tools/notice-tracker/internal/common"
	"github.com/kra-data-tools/notice-tracker/internal/record"
)

const (
	noticesSheet = "Notices"
	summarySheet = "Summary"
)

// headerTitles is the workbook column layout: identity key, the eight fields
// in canonical order, then provenance columns.
var headerTitles = []string{
	"Identity Key",
	"Date", "PIN", "Taxpayer Name", "Notice Title",
	"Total Tax", "Year", "KRA Station", "Officer Name",
	"Source Filename", "Method", "Extracted At",
}

// XLSXStore persists records in a master workbook. The whole sheet is held in
// memory between Save calls; the Merger serializes all access.
type XLSXStore struct {
	path   string
	backup bool
	logger *slog.Logger

	rows  []Stored
	index map[string]int // identity key -> rows position
}

// OpenXLSX opens or initializes the master workbook at path. A missing file
// is an empty store, not an error.
func OpenXLSX(path string, backup bool, logger *slog.Logger) (*XLSXStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &XLSXStore{
		path:   path,
		backup: backup,
		logger: logger,
		index:  map[string]int{},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *XLSXStore) load() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		s.logger.Info("store.xlsx.new", "path", s.path)
		return nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return storeError("open workbook", err)
	}
	defer f.Close()

	rows, err := f.GetRows(noticesSheet)
	if err != nil {
		return storeError("read notices sheet", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) == 0 || row[0] == "" {
			continue // header or padding
		}
		key := row[0]
		rec := recordFromRow(row)
		s.index[key] = len(s.rows)
		s.rows = append(s.rows, Stored{Key: key, Record: rec})
	}
	s.logger.Info("store.xlsx.loaded", "path", s.path, "records", len(s.rows))
	return nil
}

func (s *XLSXStore) Get(_ context.Context, key string) (*record.ExtractionRecord, bool, error) {
	i, ok := s.index[key]
	if !ok {
		return nil, false, nil
	}
	return s.rows[i].Record, true, nil
}

// Put inserts or replaces in place: an update keeps the record's original row
// position so re-runs never reshuffle the workbook.
func (s *XLSXStore) Put(_ context.Context, key string, rec *record.ExtractionRecord) error {
	if i, ok := s.index[key]; ok {
		s.rows[i].Record = rec
		return nil
	}
	s.index[key] = len(s.rows)
	s.rows = append(s.rows, Stored{Key: key, Record: rec})
	return nil
}

func (s *XLSXStore) Records(_ context.Context) ([]Stored, error) {
	out := make([]Stored, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

// Save writes the workbook back, taking a backup copy of the previous file
// first so a crash mid-write cannot lose the master database.
func (s *XLSXStore) Save(ctx context.Context) error {
	if s.backup {
		if err := s.writeBackup(); err != nil {
			return err
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", noticesSheet); err != nil {
		return storeError("init notices sheet", err)
	}
	for col, title := range headerTitles {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(noticesSheet, cell, title); err != nil {
			return storeError("write header", err)
		}
	}
	for i, row := range s.rows {
		values := rowValues(row)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(noticesSheet, cell, v); err != nil {
				return storeError("write row", err)
			}
		}
	}
	_ = f.SetColWidth(noticesSheet, "A", "A", 34)
	_ = f.SetColWidth(noticesSheet, "B", "I", 22)
	_ = f.SetColWidth(noticesSheet, "J", "L", 28)

	if err := s.writeSummary(ctx, f); err != nil {
		return err
	}

	if err := f.SaveAs(s.path); err != nil {
		return storeError("save workbook", err)
	}
	s.logger.Info("store.xlsx.saved", "path", s.path, "records", len(s.rows))
	return nil
}

func (s *XLSXStore) writeSummary(ctx context.Context, f *excelize.File) error {
	stats, err := ComputeStats(ctx, s)
	if err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return storeError("init summary sheet", err)
	}
	lines := [][2]any{
		{"Total Records", stats.TotalRecords},
		{"Unique Taxpayers", stats.UniqueTaxpayers},
		{"Unique Stations", stats.UniqueStations},
		{"Earliest Notice Date", stats.EarliestDate},
		{"Latest Notice Date", stats.LatestDate},
		{"Last Updated", stats.LastUpdated},
	}
	for i, line := range lines {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(summarySheet, labelCell, line[0]); err != nil {
			return storeError("write summary", err)
		}
		if err := f.SetCellValue(summarySheet, valueCell, line[1]); err != nil {
			return storeError("write summary", err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "B", 26)
	return nil
}

func (s *XLSXStore) writeBackup() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return storeError("read for backup", err)
	}
	backupPath := s.path + ".backup"
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return storeError("write backup", err)
	}
	s.logger.Debug("store.xlsx.backup", "path", backupPath)
	return nil
}

func (s *XLSXStore) Close() error { return nil }

func rowValues(row Stored) []string {
	rec := row.Record
	values := make([]string, 0, len(headerTitles))
	values = append(values, row.Key)
	values = append(values, rec.Values()...)
	extractedAt := ""
	if !rec.ExtractedAt.IsZero() {
		extractedAt = rec.ExtractedAt.UTC().Format(time.RFC3339)
	}
	return append(values, rec.SourceFilename, rec.Method, extractedAt)
}

func recordFromRow(row []string) *record.ExtractionRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	rec := record.New(cell(9))
	for i, name := range record.FieldOrder {
		v := cell(i + 1)
		if v == "" {
			continue
		}
		rec.Set(name, record.FieldValue{Raw: v, Normalized: v, Present: true, Parsed: true})
	}
	rec.Method = cell(10)
	if ts, err := time.Parse(time.RFC3339, cell(11)); err == nil {
		rec.ExtractedAt = ts
	}
	return rec
}

func storeError(message string, err error) error {
	return common.NewAppError("STORE_ERROR", message, fmt.Errorf("%w: %w", common.ErrStoreIO, err))
}
