package acquire

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kra-data-tools/notice-tracker/internal/common"
)

type stubRunner struct {
	run func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
}

func (s stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return s.run(ctx, name, args...)
}

func writeDocx(t *testing.T, parts map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range parts {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "notice.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

const documentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>PIN: P052148271F</w:t></w:r></w:p>
    <w:p><w:r><w:t>First</w:t><w:tab/><w:t>page text</w:t></w:r></w:p>
    <w:p><w:r><w:br w:type="page"/><w:t>Second page text</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestAcquireDocxPrimaryParser(t *testing.T) {
	path := writeDocx(t, map[string]string{"word/document.xml": documentXML})
	a := NewAcquirer(Config{}, nil)

	out, err := a.Acquire(context.Background(), NewDocument(path))
	require.NoError(t, err)
	require.Len(t, out.Segments, 2, "page break must split segments")
	assert.Equal(t, "docx", out.Method())
	assert.Contains(t, out.Segments[0].Text, "PIN: P052148271F")
	assert.Contains(t, out.Segments[0].Text, "First page text")
	assert.Contains(t, out.Segments[1].Text, "Second page text")
	assert.Empty(t, out.Warnings)
}

func TestAcquireDocxFallsBackToAllParts(t *testing.T) {
	// main document part missing; text survives only in a header part
	path := writeDocx(t, map[string]string{
		"word/header1.xml": `<hdr><t>Header notice text for fallback</t></hdr>`,
	})
	a := NewAcquirer(Config{}, nil)

	out, err := a.Acquire(context.Background(), NewDocument(path))
	require.NoError(t, err)
	assert.Equal(t, "docx-zip", out.Method())
	assert.Contains(t, out.Text(), "Header notice text for fallback")
	assert.NotEmpty(t, out.Warnings)
}

func TestAcquireDocAntiwordFallback(t *testing.T) {
	// not a compound file, so the primary parser fails and antiword runs
	path := filepath.Join(t.TempDir(), "legacy.doc")
	require.NoError(t, os.WriteFile(path, []byte("not an OLE2 container"), 0o644))

	a := NewAcquirer(Config{}, nil)
	a.runner = stubRunner{run: func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		assert.Equal(t, "antiword", name)
		assert.Equal(t, []string{"-w", "0", path}, args)
		return []byte("Recovered legacy notice text\fsecond section"), nil, nil
	}}

	out, err := a.Acquire(context.Background(), NewDocument(path))
	require.NoError(t, err)
	assert.Equal(t, "doc-antiword", out.Method())
	require.Len(t, out.Segments, 2)
	assert.Contains(t, out.Segments[0].Text, "Recovered legacy notice text")
	assert.NotEmpty(t, out.Warnings)
}

func TestAcquireDocAllStrategiesFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.doc")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	a := NewAcquirer(Config{}, nil)
	a.runner = stubRunner{run: func(context.Context, string, ...string) ([]byte, []byte, error) {
		return nil, []byte("antiword: not a word document"), errors.New("exit status 1")
	}}

	_, err := a.Acquire(context.Background(), NewDocument(path))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrAcquisition))

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.CauseDecode, appErr.Message)
}

func TestAcquireUnsupportedFormat(t *testing.T) {
	a := NewAcquirer(Config{}, nil)
	_, err := a.Acquire(context.Background(), NewDocument("notes.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnsupportedFormat))
}

func TestWordSegmentsSplitOnPageBreaks(t *testing.T) {
	segs := wordSegments("one\ftwo\fthree", "docx")
	require.Len(t, segs, 3)
	assert.Equal(t, 0, segs[0].Index)
	assert.Equal(t, "two", segs[1].Text)
	assert.Equal(t, "docx", segs[2].Method)
}
