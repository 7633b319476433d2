package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kra-data-tools/notice-tracker/constants"
	"github.com/kra-data-tools/notice-tracker/internal/common"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Antiword  string // binary name or absolute path; if empty -> "antiword"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned pages, default 300
	MaxPages      int    // 0 = no limit

	// MinPageChars and MinPrintableRatio decide when a digitally extracted
	// page is treated as scanned and redirected through OCR.
	MinPageChars      int     // default 100
	MinPrintableRatio float64 // default 0.5
}

// Acquirer implements TextAcquirer over the configured strategies.
type Acquirer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewAcquirer(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Antiword == "" {
		cfg.Antiword = "antiword"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinPageChars <= 0 {
		cfg.MinPageChars = 100
	}
	if cfg.MinPrintableRatio <= 0 {
		cfg.MinPrintableRatio = 0.5
	}
	return &Acquirer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Acquire picks an extraction strategy based on the document's format.
func (a *Acquirer) Acquire(ctx context.Context, doc Document) (ExtractedText, error) {
	start := time.Now()
	a.logger.Debug("acquire.start", "path", doc.Path, "format", doc.Format)

	var (
		res ExtractedText
		err error
	)
	switch doc.Format {
	case constants.FormatPDF:
		res, err = a.acquirePDF(ctx, doc.Path)
	case constants.FormatDOCX:
		res, err = a.acquireWord(ctx, doc.Path, docxStrategies)
	case constants.FormatDOC:
		res, err = a.acquireWord(ctx, doc.Path, docStrategies)
	default:
		return ExtractedText{}, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("format %q", doc.Format), common.ErrUnsupportedFormat)
	}

	res.SourcePath = doc.Path
	res.Duration = time.Since(start)
	if err != nil {
		a.logger.Error("acquire.failed", "path", doc.Path, "error", err)
		return res, err
	}
	a.logger.Info("acquire.ok",
		"path", doc.Path,
		"segments", len(res.Segments),
		"method", res.Method(),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
