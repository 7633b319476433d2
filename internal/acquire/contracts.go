// Package acquire turns notice documents (digital PDFs, scanned PDFs, Word
// documents) into ordered plain-text segments. Strategy selection follows the
// declared format; pages whose digital text is too thin are retried through
// OCR individually, and Word documents fall back from the native parser to a
// secondary one before the document is declared unprocessable.
package acquire

import (
	"context"
	"path/filepath"
	"time"

	"github.com/kra-data-tools/notice-tracker/constants"
)

// Document is an immutable handle to one ingested file plus its declared
// format. Consumed once by the acquirer, then discarded.
type Document struct {
	Path   string
	Format constants.Format
}

// NewDocument sniffs the format from the file extension.
func NewDocument(path string) Document {
	return Document{
		Path:   path,
		Format: constants.MapExtToFormat(filepath.Ext(path)),
	}
}

// Segment is one page (PDF) or section (Word) of extracted text, tagged with
// the method that produced it. Order is load-bearing: field extraction uses
// positional heuristics such as "officer name is on the last page".
type Segment struct {
	Index  int
	Text   string
	Method string // "pdf-text" | "pdf-ocr" | "docx" | "docx-zip" | "doc-cfb" | "doc-antiword"
}

// ExtractedText is the ordered segment sequence for one document.
type ExtractedText struct {
	SourcePath string
	Segments   []Segment
	Duration   time.Duration
	Warnings   []string
}

// Text returns all segments concatenated in order, separated by form feeds.
func (t ExtractedText) Text() string {
	switch len(t.Segments) {
	case 0:
		return ""
	case 1:
		return t.Segments[0].Text
	}
	out := t.Segments[0].Text
	for _, seg := range t.Segments[1:] {
		out += "\n\f\n" + seg.Text
	}
	return out
}

// LastSegment returns the final non-empty segment's text, or "" when the
// document yielded nothing.
func (t ExtractedText) LastSegment() string {
	for i := len(t.Segments) - 1; i >= 0; i-- {
		if t.Segments[i].Text != "" {
			return t.Segments[i].Text
		}
	}
	return ""
}

// Method returns the dominant acquisition method across segments.
func (t ExtractedText) Method() string {
	counts := map[string]int{}
	best := ""
	for _, seg := range t.Segments {
		counts[seg.Method]++
		if best == "" || counts[seg.Method] > counts[best] {
			best = seg.Method
		}
	}
	return best
}

// TextAcquirer is stage 1 of the pipeline: document -> ordered text segments.
type TextAcquirer interface {
	Acquire(ctx context.Context, doc Document) (ExtractedText, error)
}
