package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kra-data-tools/notice-tracker/constants"
	"github.com/kra-data-tools/notice-tracker/internal/pipeline"
	"github.com/kra-data-tools/notice-tracker/internal/store"
)

func TestBuildReportXLSX(t *testing.T) {
	ctx := context.Background()
	st, err := store.OpenXLSX(filepath.Join(t.TempDir(), "master.xlsx"), false, nil)
	require.NoError(t, err)

	report := &pipeline.BatchReport{
		StartedAt:  time.Now().UTC().Add(-time.Minute),
		FinishedAt: time.Now().UTC(),
		Outcomes: []pipeline.Outcome{
			{Path: "a.pdf", Status: constants.DocStatusSuccess, Merge: constants.MergeInserted, Method: "pdf-text", FieldsPresent: 8},
			{Path: "b.pdf", Status: constants.DocStatusFailed, Cause: "decode"},
		},
		Processed: 2, Succeeded: 1, Failed: 1, Inserted: 1,
	}

	svc := NewService(st, nil)
	data, err := svc.BuildReportXLSX(ctx, report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Document", rows[0][0])
	assert.Equal(t, "a.pdf", rows[1][0])
	assert.Equal(t, "SUCCESS", rows[1][1])
	assert.Equal(t, "b.pdf", rows[2][0])
	assert.Equal(t, "decode", rows[2][5])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}

func TestSaveReport(t *testing.T) {
	ctx := context.Background()
	st, err := store.OpenXLSX(filepath.Join(t.TempDir(), "master.xlsx"), false, nil)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "report.xlsx")
	svc := NewService(st, nil)
	require.NoError(t, svc.SaveReport(ctx, &pipeline.BatchReport{
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
	}, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.NotNil(t, f)
}
