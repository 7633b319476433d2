package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kra-data-tools/notice-tracker/internal/acquire"
	"github.com/kra-data-tools/notice-tracker/internal/common"
	"github.com/kra-data-tools/notice-tracker/internal/export"
	"github.com/kra-data-tools/notice-tracker/internal/fields"
	"github.com/kra-data-tools/notice-tracker/internal/ingest"
	"github.com/kra-data-tools/notice-tracker/internal/pipeline"
	"github.com/kra-data-tools/notice-tracker/internal/store"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir        = flag.String("dir", "", "directory of notice documents to process (required)")
		storePath  = flag.String("store", "", "master database path (default from STORE_PATH)")
		out        = flag.String("out", "", "run report XLSX path (optional, defaults next to --dir)")
		workers    = flag.Int("workers", 0, "concurrent documents (default from BATCH_WORKERS)")
		timeoutStr = flag.String("timeout", "", "per-document timeout, e.g. 90s (default from DOC_TIMEOUT)")
		ruleFile   = flag.String("rules", "", "JSON rule file overriding built-in patterns")
	)
	flag.Parse()

	// Validate required flags
	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	// If report file not specified, use parent directory with default filename
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "notice_batch_report.xlsx")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Load configuration, let flags override environment
	cfg := common.LoadConfig()
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *timeoutStr != "" {
		d, err := time.ParseDuration(*timeoutStr)
		if err != nil {
			printError("Error: invalid --timeout: %v\n", err)
			os.Exit(1)
		}
		cfg.Batch.DocTimeout = d
	}
	if *ruleFile != "" {
		cfg.Batch.RuleFile = *ruleFile
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Load extraction rules
	var rules []fields.Rule
	if cfg.Batch.RuleFile != "" {
		loaded, err := fields.LoadRules(cfg.Batch.RuleFile)
		if err != nil {
			logger.Error("failed to load rule file", "path", cfg.Batch.RuleFile, "error", err)
			os.Exit(1)
		}
		rules = loaded
		logger.Info("loaded rule file", "path", cfg.Batch.RuleFile, "rules", len(rules))
	}

	// Open the master store
	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Wire the pipeline
	acquirer := acquire.NewAcquirer(acquire.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		Antiword:      cfg.OCR.Antiword,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MinPageChars:  cfg.OCR.MinPageChars,
	}, logger)
	extractor := fields.NewExtractor(rules, logger)
	merger := store.NewMerger(st, logger)
	processor := pipeline.NewProcessor(acquirer, extractor, merger, logger)
	batch := pipeline.NewBatch(processor, cfg.Batch.Workers, cfg.Batch.DocTimeout, logger)

	// Discover documents
	paths, err := ingest.ScanDirectory(*dir)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		logger.Warn("no supported documents found", "dir", *dir)
	}
	logger.Info("starting batch", "dir", *dir, "documents", len(paths), "workers", cfg.Batch.Workers)

	// Run
	report, err := batch.Run(ctx, paths)
	if err != nil {
		logger.Error("batch aborted", "processed", report.Processed, "error", err)
		os.Exit(1)
	}

	// Persist the master database
	if err := merger.Save(ctx); err != nil {
		logger.Error("failed to save store", "error", err)
		os.Exit(1)
	}

	// Write the run report
	exportService := export.NewService(st, logger)
	if err := exportService.SaveReport(ctx, report, *out); err != nil {
		logger.Error("failed to write report", "path", *out, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Documents processed: %d\n", report.Processed)
	fmt.Printf("- Succeeded: %d (partial: %d, failed: %d)\n", report.Succeeded, report.Partial, report.Failed)
	fmt.Printf("- Inserted: %d, skipped duplicates: %d, updated: %d\n", report.Inserted, report.Skipped, report.Updated)
	fmt.Printf("- Master database: %s\n", cfg.Store.Path)
	fmt.Printf("- Report: %s\n", *out)

	if report.Failed > 0 {
		fmt.Printf("Failed documents:\n")
		for _, p := range report.FailedPaths() {
			fmt.Printf("  - %s\n", p)
		}
	}
}
