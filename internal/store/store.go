// Package store owns the deduplicated persistent collection of extraction
// records and the merge contract against it. All mutation is funneled through
// the Merger, which serializes the lookup-then-insert sequence so two
// concurrently processed duplicates cannot both insert.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kra-data-tools/notice-tracker/constants"
	"github.com/kra-data-tools/notice-tracker/internal/record"
)

// Stored pairs a record with its identity key as persisted.
type Stored struct {
	Key    string
	Record *record.ExtractionRecord
}

// Store is an ordered collection of extraction records, unique per identity
// key. Loading an existing store, merging into it, and writing it back must
// not reorder or drop rows whose keys are untouched by the current batch.
type Store interface {
	Get(ctx context.Context, key string) (*record.ExtractionRecord, bool, error)
	Put(ctx context.Context, key string, rec *record.ExtractionRecord) error
	Records(ctx context.Context) ([]Stored, error)
	Save(ctx context.Context) error
	Close() error
}

// Merger applies the deduplication policy on top of a Store. It is the sole
// synchronization point of the pipeline: merges are atomic with respect to
// each other.
type Merger struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger
}

func NewMerger(s Store, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{store: s, logger: logger}
}

// Merge computes the record's identity key and decides insert, update or
// skip. Policy: prefer the version with fewer absent fields; on equal
// completeness prefer the existing stored record (stability over churn).
func (m *Merger) Merge(ctx context.Context, rec *record.ExtractionRecord) (constants.MergeOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rec.IdentityKey()
	existing, found, err := m.store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	if !found {
		if err := m.store.Put(ctx, key, rec); err != nil {
			return "", err
		}
		m.logger.Debug("merge.inserted", "key", key, "source", rec.SourceFilename)
		return constants.MergeInserted, nil
	}

	if rec.PresentCount() > existing.PresentCount() {
		if err := m.store.Put(ctx, key, rec); err != nil {
			return "", err
		}
		m.logger.Info("merge.updated", "key", key,
			"fields_before", existing.PresentCount(), "fields_after", rec.PresentCount())
		return constants.MergeUpdated, nil
	}

	m.logger.Debug("merge.skipped", "key", key, "source", rec.SourceFilename)
	return constants.MergeSkipped, nil
}

// Save flushes the underlying store.
func (m *Merger) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Save(ctx)
}
