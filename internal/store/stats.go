package store

import (
	"context"

	"github.com/kra-data-tools/notice-tracker/internal/record"
)

// Stats summarizes a store for the report's summary sheet.
type Stats struct {
	TotalRecords    int
	UniqueTaxpayers int
	UniqueStations  int
	EarliestDate    string
	LatestDate      string
	LastUpdated     string
}

// ComputeStats derives summary statistics from the store's records.
func ComputeStats(ctx context.Context, s Store) (Stats, error) {
	rows, err := s.Records(ctx)
	if err != nil {
		return Stats{}, err
	}

	taxpayers := map[string]struct{}{}
	stations := map[string]struct{}{}
	var stats Stats
	stats.TotalRecords = len(rows)

	for _, row := range rows {
		if pin := row.Record.Get(record.FieldPIN).Value(); pin != "" {
			taxpayers[pin] = struct{}{}
		}
		if station := row.Record.Get(record.FieldKRAStation).Value(); station != "" {
			stations[station] = struct{}{}
		}
		if date := row.Record.Get(record.FieldDate).Value(); date != "" {
			if stats.EarliestDate == "" || date < stats.EarliestDate {
				stats.EarliestDate = date
			}
			if date > stats.LatestDate {
				stats.LatestDate = date
			}
		}
		if !row.Record.ExtractedAt.IsZero() {
			ts := row.Record.ExtractedAt.UTC().Format("2006-01-02 15:04:05")
			if ts > stats.LastUpdated {
				stats.LastUpdated = ts
			}
		}
	}

	stats.UniqueTaxpayers = len(taxpayers)
	stats.UniqueStations = len(stations)
	return stats, nil
}
