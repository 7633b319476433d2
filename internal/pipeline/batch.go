package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kra-data-tools/notice-tracker/constants"
	"github.com/kra-data-tools/notice-tracker/internal/common"
)

// BatchReport aggregates a batch run: per-document outcomes in input order
// plus rolled-up counters.
type BatchReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome

	Processed int
	Succeeded int
	Partial   int
	Failed    int
	Inserted  int
	Skipped   int
	Updated   int
}

// Batch fans documents out across a bounded worker pool. Acquisition and
// extraction run concurrently; merging is serialized inside the Merger.
type Batch struct {
	processor  *Processor
	workers    int
	docTimeout time.Duration
	logger     *slog.Logger
}

func NewBatch(processor *Processor, workers int, docTimeout time.Duration, logger *slog.Logger) *Batch {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{processor: processor, workers: workers, docTimeout: docTimeout, logger: logger}
}

// Run processes every path and returns a report covering everything that
// ran: document failures are recorded, not propagated. Two things abort the
// run early — parent-context cancellation, and a store I/O failure, which is
// fatal because every remaining merge would hit the same broken store. The
// partial report accompanies the error either way.
func (b *Batch) Run(ctx context.Context, paths []string) (*BatchReport, error) {
	report := &BatchReport{StartedAt: time.Now().UTC()}
	outcomes := make([]Outcome, len(paths))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			docCtx := ctx
			var cancel context.CancelFunc
			if b.docTimeout > 0 {
				docCtx, cancel = context.WithTimeout(ctx, b.docTimeout)
				defer cancel()
			}
			out := b.processor.ProcessFile(docCtx, path)
			mu.Lock()
			outcomes[i] = out
			mu.Unlock()
			if errors.Is(out.Err, common.ErrStoreIO) {
				return out.Err
			}
			return nil
		})
	}
	runErr := g.Wait()

	for _, out := range outcomes {
		if out.Path == "" {
			continue // never scheduled (run aborted)
		}
		report.Outcomes = append(report.Outcomes, out)
	}
	report.FinishedAt = time.Now().UTC()
	b.tally(report)

	b.logger.Info("batch.done",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"partial", report.Partial,
		"failed", report.Failed,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"updated", report.Updated,
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)
	return report, runErr
}

func (b *Batch) tally(report *BatchReport) {
	report.Processed = len(report.Outcomes)
	for _, out := range report.Outcomes {
		switch out.Status {
		case constants.DocStatusSuccess:
			report.Succeeded++
		case constants.DocStatusPartial:
			report.Partial++
		case constants.DocStatusFailed:
			report.Failed++
		}
		switch out.Merge {
		case constants.MergeInserted:
			report.Inserted++
		case constants.MergeSkipped:
			report.Skipped++
		case constants.MergeUpdated:
			report.Updated++
		}
	}
}

// FailedPaths lists the documents that did not produce a record, sorted for
// stable operator output.
func (r *BatchReport) FailedPaths() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == constants.DocStatusFailed {
			out = append(out, o.Path)
		}
	}
	sort.Strings(out)
	return out
}
