package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kra-data-tools/notice-tracker/internal/common"
)

// wordStrategy is one text-acquisition attempt for a Word document.
// Strategies are tried in order until one yields non-empty text; a document
// is unprocessable only when every strategy fails.
type wordStrategy struct {
	name string
	run  func(a *Acquirer, ctx context.Context, path string) (string, error)
}

var docxStrategies = []wordStrategy{
	{"docx", (*Acquirer).docxDocumentXML},
	{"docx-zip", (*Acquirer).docxAllParts},
}

var docStrategies = []wordStrategy{
	{"doc-cfb", (*Acquirer).docCompoundFile},
	{"doc-antiword", (*Acquirer).docAntiword},
}

func (a *Acquirer) acquireWord(ctx context.Context, path string, strategies []wordStrategy) (ExtractedText, error) {
	var out ExtractedText
	var failures []error

	for _, strat := range strategies {
		text, err := strat.run(a, ctx, path)
		if err != nil {
			a.logger.Debug("word strategy failed", "path", path, "strategy", strat.name, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", strat.name, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			failures = append(failures, fmt.Errorf("%s: no text", strat.name))
			continue
		}
		out.Segments = wordSegments(text, strat.name)
		if len(failures) > 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf("fell back to %s", strat.name))
		}
		return out, nil
	}

	return out, common.NewAcquisitionError(common.CauseDecode, errors.Join(failures...))
}

// wordSegments splits extracted Word text into sections on explicit page
// breaks, preserving paragraph order within each section.
func wordSegments(text, method string) []Segment {
	parts := strings.Split(text, "\f")
	segments := make([]Segment, 0, len(parts))
	for i, part := range parts {
		segments = append(segments, Segment{
			Index:  i,
			Text:   CleanText(part),
			Method: method,
		})
	}
	return segments
}

// docAntiword shells out to antiword as the secondary parser for legacy
// .doc files.
func (a *Acquirer) docAntiword(ctx context.Context, path string) (string, error) {
	// antiword -w 0 <path>
	out, errb, err := a.runner.Run(ctx, a.cfg.Antiword, "-w", "0", path)
	if err != nil {
		return "", fmt.Errorf("antiword: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
