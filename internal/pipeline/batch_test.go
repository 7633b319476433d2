package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kra-data-tools/notice-tracker/constants"
	"github.com/kra-data-tools/notice-tracker/internal/acquire"
	"github.com/kra-data-tools/notice-tracker/internal/common"
	"github.com/kra-data-tools/notice-tracker/internal/fields"
	"github.com/kra-data-tools/notice-tracker/internal/record"
	"github.com/kra-data-tools/notice-tracker/internal/store"
)

// stubAcquirer serves canned text per path and fails paths in the broken set.
type stubAcquirer struct {
	texts  map[string]string
	broken map[string]bool
}

func (s stubAcquirer) Acquire(_ context.Context, doc acquire.Document) (acquire.ExtractedText, error) {
	if s.broken[doc.Path] {
		return acquire.ExtractedText{}, common.NewAcquisitionError(common.CauseDecode, errors.New("unreadable"))
	}
	return acquire.ExtractedText{
		SourcePath: doc.Path,
		Segments:   []acquire.Segment{{Index: 0, Text: s.texts[doc.Path], Method: "pdf-text"}},
	}, nil
}

func noticeText(pin, day string) string {
	return fmt.Sprintf(`PIN: %s
JOHN KAMAU MWANGI,
P.O. BOX 1234, ELDORET

%s AUGUST, 2025

RE: NOTICE OF ASSESSMENT UNDER SECTION 31 OF THE TAX PROCEDURES ACT, 2015

Total Tax: 45,000 for the year 2024
ELDORET STATION
contact Mr. Peter Otieno or call us`, pin, day)
}

func newTestProcessor(t *testing.T, acq acquire.TextAcquirer) (*Processor, store.Store) {
	t.Helper()
	st, err := store.OpenXLSX(filepath.Join(t.TempDir(), "master.xlsx"), false, nil)
	require.NoError(t, err)
	merger := store.NewMerger(st, nil)
	return NewProcessor(acq, fields.NewExtractor(nil, nil), merger, nil), st
}

func TestBatchRunCountsAndIsolation(t *testing.T) {
	ctx := context.Background()
	paths := []string{"a.pdf", "b.pdf", "c.pdf", "broken.pdf"}
	acq := stubAcquirer{
		texts: map[string]string{
			"a.pdf": noticeText("A011111111B", "10TH"),
			"b.pdf": noticeText("C022222222D", "11TH"),
			"c.pdf": noticeText("A011111111B", "10TH"), // duplicate of a.pdf
		},
		broken: map[string]bool{"broken.pdf": true},
	}
	proc, st := newTestProcessor(t, acq)
	batch := NewBatch(proc, 3, time.Minute, nil)

	report, err := batch.Run(ctx, paths)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"broken.pdf"}, report.FailedPaths())

	rows, err := st.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "duplicate and failure must not add rows")
}

func TestBatchOutcomesKeepInputOrder(t *testing.T) {
	acq := stubAcquirer{texts: map[string]string{
		"x.pdf": noticeText("A011111111B", "10TH"),
		"y.pdf": noticeText("C022222222D", "11TH"),
	}}
	proc, _ := newTestProcessor(t, acq)
	batch := NewBatch(proc, 2, 0, nil)

	report, err := batch.Run(context.Background(), []string{"x.pdf", "y.pdf"})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "x.pdf", report.Outcomes[0].Path)
	assert.Equal(t, "y.pdf", report.Outcomes[1].Path)
}

func TestProcessFileStatusPartial(t *testing.T) {
	acq := stubAcquirer{texts: map[string]string{
		"thin.pdf": "PIN: A011111111B and nothing else useful",
	}}
	proc, _ := newTestProcessor(t, acq)

	out := proc.ProcessFile(context.Background(), "thin.pdf")
	assert.Equal(t, constants.DocStatusPartial, out.Status)
	assert.Equal(t, constants.MergeInserted, out.Merge)
	assert.Greater(t, out.FieldsPresent, 0)
}

func TestProcessFileFailureCause(t *testing.T) {
	acq := stubAcquirer{broken: map[string]bool{"bad.pdf": true}}
	proc, _ := newTestProcessor(t, acq)

	out := proc.ProcessFile(context.Background(), "bad.pdf")
	assert.Equal(t, constants.DocStatusFailed, out.Status)
	assert.Equal(t, common.CauseDecode, out.Cause)
	assert.Error(t, out.Err)
}

// brokenStore fails every access the way a backend with an unreadable file
// does: an AppError wrapping the store I/O sentinel.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*record.ExtractionRecord, bool, error) {
	return nil, false, common.NewAppError("STORE_ERROR", "read identity key", common.ErrStoreIO)
}

func (brokenStore) Put(context.Context, string, *record.ExtractionRecord) error {
	return common.NewAppError("STORE_ERROR", "write row", common.ErrStoreIO)
}

func (brokenStore) Records(context.Context) ([]store.Stored, error) {
	return nil, common.NewAppError("STORE_ERROR", "list rows", common.ErrStoreIO)
}

func (brokenStore) Save(context.Context) error {
	return common.NewAppError("STORE_ERROR", "save workbook", common.ErrStoreIO)
}

func (brokenStore) Close() error { return nil }

func TestBatchAbortsOnStoreFailure(t *testing.T) {
	acq := stubAcquirer{texts: map[string]string{
		"s1.pdf": noticeText("A011111111B", "10TH"),
		"s2.pdf": noticeText("C022222222D", "11TH"),
		"s3.pdf": noticeText("E033333333F", "12TH"),
	}}
	merger := store.NewMerger(brokenStore{}, nil)
	proc := NewProcessor(acq, fields.NewExtractor(nil, nil), merger, nil)
	batch := NewBatch(proc, 1, time.Minute, nil)

	report, err := batch.Run(context.Background(), []string{"s1.pdf", "s2.pdf", "s3.pdf"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStoreIO), "store failures must surface the I/O sentinel")
	assert.Less(t, report.Processed, 3, "a dead store must stop the remaining documents")
}

func TestQueueProcessesAndDrains(t *testing.T) {
	acq := stubAcquirer{texts: map[string]string{
		"q1.pdf": noticeText("A011111111B", "10TH"),
		"q2.pdf": noticeText("C022222222D", "11TH"),
	}}
	proc, st := newTestProcessor(t, acq)

	q := NewQueue(proc, nil, WithWorkers(2), WithQueueSize(8))
	q.Enqueue("q1.pdf")
	q.Enqueue("q2.pdf")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	rows, err := st.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// enqueue after shutdown is a no-op
	q.Enqueue("q1.pdf")
}
