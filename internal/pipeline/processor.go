// Package pipeline chains the stages for one document (acquire -> extract ->
// merge) and fans a directory of documents out across a bounded worker pool.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kra-data-tools/notice-tracker/constants"
	"github.com/kra-data-tools/notice-tracker/internal/acquire"
	"github.com/kra-data-tools/notice-tracker/internal/common"
	"github.com/kra-data-tools/notice-tracker/internal/fields"
	"github.com/kra-data-tools/notice-tracker/internal/store"
)

// Outcome is the per-document result row of a batch. A failed document
// carries its cause; a processed one carries its merge disposition.
type Outcome struct {
	Path          string
	Status        constants.DocStatus
	Merge         constants.MergeOutcome
	Method        string
	FieldsPresent int
	Cause         string // acquisition cause kind on failure: io | decode | ocr-timeout
	Err           error
	Duration      time.Duration
}

// Processor runs one document through the full pipeline.
type Processor struct {
	acquirer  acquire.TextAcquirer
	extractor *fields.Extractor
	merger    *store.Merger
	logger    *slog.Logger
}

func NewProcessor(acquirer acquire.TextAcquirer, extractor *fields.Extractor, merger *store.Merger, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{acquirer: acquirer, extractor: extractor, merger: merger, logger: logger}
}

// ProcessFile never propagates an error: every path is converted into an
// Outcome so one broken document cannot stop the batch.
func (p *Processor) ProcessFile(ctx context.Context, path string) Outcome {
	start := time.Now()
	out := Outcome{Path: path}

	doc := acquire.NewDocument(path)
	text, err := p.acquirer.Acquire(ctx, doc)
	if err != nil {
		out.Status = constants.DocStatusFailed
		out.Err = err
		out.Cause = acquisitionCause(err)
		out.Duration = time.Since(start)
		p.logger.Error("processor.failed", "path", path, "cause", out.Cause, "error", err)
		return out
	}

	rec := p.extractor.Extract(text)
	out.Method = rec.Method
	out.FieldsPresent = rec.PresentCount()
	if rec.Complete() {
		out.Status = constants.DocStatusSuccess
	} else {
		out.Status = constants.DocStatusPartial
	}

	merge, err := p.merger.Merge(ctx, rec)
	if err != nil {
		out.Status = constants.DocStatusFailed
		out.Err = err
		out.Duration = time.Since(start)
		p.logger.Error("processor.merge_failed", "path", path, "error", err)
		return out
	}
	out.Merge = merge
	out.Duration = time.Since(start)

	p.logger.Info("processor.done",
		"path", path,
		"status", out.Status,
		"merge", merge,
		"fields", out.FieldsPresent,
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out
}

func acquisitionCause(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Code == "ACQUISITION_ERROR" {
		return appErr.Message
	}
	if errors.Is(err, common.ErrUnsupportedFormat) {
		return "unsupported-format"
	}
	return "unknown"
}
