package acquire

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
)

// docCompoundFile is the primary parser for legacy .doc files: it opens the
// OLE2 compound-file container and scrapes the text runs out of the
// WordDocument stream. The binary format interleaves text with formatting
// tables, so this recovers paragraph text without honoring layout.
func (a *Acquirer) docCompoundFile(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open doc: %w", err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return "", fmt.Errorf("compound file: %w", err)
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != "WordDocument" {
			continue
		}
		var buf bytes.Buffer
		chunk := make([]byte, 32<<10)
		for {
			n, rerr := doc.Read(chunk)
			if n > 0 {
				buf.Write(chunk[:n])
			}
			if rerr != nil {
				break
			}
		}
		text := scrapeWordStream(buf.Bytes())
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("WordDocument stream yielded no text")
		}
		return text, nil
	}
	return "", fmt.Errorf("WordDocument stream not found")
}

// scrapeWordStream pulls printable text runs out of a WordDocument stream,
// preferring UTF-16LE runs (modern Word) over single-byte runs (Word 6/95).
// Paragraph marks (\r) become newlines; page breaks (\f) are preserved.
const minDocRun = 8

func scrapeWordStream(data []byte) string {
	utf16Text := scrapeUTF16Runs(data)
	asciiText := scrapeASCIIRuns(data)
	if len(utf16Text) >= len(asciiText) {
		return utf16Text
	}
	return asciiText
}

func scrapeUTF16Runs(data []byte) string {
	var b strings.Builder
	var run []byte
	flush := func() {
		if len(run) >= minDocRun {
			b.Write(run)
			b.WriteByte('\n')
		}
		run = run[:0]
	}
	for i := 0; i+1 < len(data); i += 2 {
		c, hi := data[i], data[i+1]
		if hi == 0 && docPrintable(c) {
			run = append(run, normalizeDocByte(c))
			continue
		}
		flush()
	}
	flush()
	return b.String()
}

func scrapeASCIIRuns(data []byte) string {
	var b strings.Builder
	var run []byte
	flush := func() {
		if len(run) >= minDocRun {
			b.Write(run)
			b.WriteByte('\n')
		}
		run = run[:0]
	}
	for _, c := range data {
		if docPrintable(c) {
			run = append(run, normalizeDocByte(c))
			continue
		}
		flush()
	}
	flush()
	return b.String()
}

func docPrintable(c byte) bool {
	return (c >= 0x20 && c < 0x7F) || c == '\r' || c == '\n' || c == '\t' || c == '\f'
}

func normalizeDocByte(c byte) byte {
	switch c {
	case '\r':
		return '\n'
	case '\t':
		return ' '
	default:
		return c
	}
}
