package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kra-data-tools/notice-tracker/internal/common"
)

// acquirePDF extracts embedded text page by page in document order. A page
// whose text falls below the minimum length or printable-character ratio is
// treated as scanned and redirected through OCR — per page, not per document.
func (a *Acquirer) acquirePDF(ctx context.Context, path string) (ExtractedText, error) {
	if _, err := os.Stat(path); err != nil {
		return ExtractedText{}, common.NewAcquisitionError(common.CauseIO, err)
	}
	if err := api.ValidateFile(path, nil); err != nil {
		return ExtractedText{}, common.NewAcquisitionError(common.CauseDecode, fmt.Errorf("pdf validate: %w", err))
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return ExtractedText{}, common.NewAcquisitionError(common.CauseDecode, fmt.Errorf("pdf open: %w", err))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			a.logger.Warn("pdf close failed", "path", path, "error", cerr)
		}
	}()

	pages := reader.NumPage()
	if a.cfg.MaxPages > 0 && pages > a.cfg.MaxPages {
		pages = a.cfg.MaxPages
	}

	var out ExtractedText
	for n := 1; n <= pages; n++ {
		text := a.pageText(reader, n)
		method := "pdf-text"

		if a.looksScanned(text) {
			a.logger.Debug("page below digital threshold, retrying with ocr",
				"path", path, "page", n, "chars", len(text))
			ocrText, err := a.ocrPage(ctx, path, n)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
					return out, common.NewAcquisitionError(common.CauseOCRTimeout, err)
				}
				// OCR failure on one page does not abort the document
				out.Warnings = append(out.Warnings, fmt.Sprintf("page %d: %v", n, err))
				ocrText = ""
			}
			text = ocrText
			method = "pdf-ocr"
		}

		out.Segments = append(out.Segments, Segment{
			Index:  n - 1,
			Text:   CleanText(text),
			Method: method,
		})
	}
	return out, nil
}

// pageText returns the embedded text of one page, or "" when the page
// cannot be decoded (it then flows through the OCR fallback).
func (a *Acquirer) pageText(reader *pdf.Reader, n int) string {
	page := reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		a.logger.Debug("digital page text failed", "page", n, "error", err)
		return ""
	}
	return text
}

func (a *Acquirer) looksScanned(text string) bool {
	cleaned := CleanText(text)
	return len(cleaned) < a.cfg.MinPageChars || printableRatio(cleaned) < a.cfg.MinPrintableRatio
}

// ocrPage rasterizes a single page at the configured DPI and runs OCR on it.
func (a *Acquirer) ocrPage(ctx context.Context, path string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "nt-pp-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			a.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rerr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f N -l N -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := a.runner.Run(ctx, a.cfg.Pdftoppm,
		"-f", fmt.Sprintf("%d", page), "-l", fmt.Sprintf("%d", page),
		"-r", fmt.Sprintf("%d", a.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	return a.tesseractOCR(ctx, matches[0])
}

// tesseractOCR runs the OCR engine on one page image.
func (a *Acquirer) tesseractOCR(ctx context.Context, imgPath string) (string, error) {
	// tesseract <img> stdout -l <lang>
	out, errb, err := a.runner.Run(ctx, a.cfg.Tesseract, imgPath, "stdout", "-l", a.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
