package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kra-data-tools/notice-tracker/internal/acquire"
	"github.com/kra-data-tools/notice-tracker/internal/common"
	"github.com/kra-data-tools/notice-tracker/internal/fields"
	"github.com/kra-data-tools/notice-tracker/internal/ingest"
	"github.com/kra-data-tools/notice-tracker/internal/pipeline"
	"github.com/kra-data-tools/notice-tracker/internal/store"
)

func main() {
	var (
		roots       = flag.String("roots", "", "comma-separated directories to watch (required)")
		storePath   = flag.String("store", "", "master database path (default from STORE_PATH)")
		workers     = flag.Int("workers", 0, "concurrent documents (default from BATCH_WORKERS)")
		initialScan = flag.Bool("scan", true, "process existing files on startup")
		saveEvery   = flag.Duration("save-every", 30*time.Second, "store flush interval")
	)
	flag.Parse()

	if *roots == "" {
		fmt.Fprintln(os.Stderr, "Error: --roots is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var rules []fields.Rule
	if cfg.Batch.RuleFile != "" {
		loaded, err := fields.LoadRules(cfg.Batch.RuleFile)
		if err != nil {
			logger.Error("failed to load rule file", "path", cfg.Batch.RuleFile, "error", err)
			os.Exit(1)
		}
		rules = loaded
	}

	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

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

	queue := pipeline.NewQueue(processor, logger,
		pipeline.WithWorkers(cfg.Batch.Workers),
		pipeline.WithProcessTimeout(cfg.Batch.DocTimeout),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       strings.Split(*roots, ","),
		InitialScan: *initialScan,
		Debounce:    cfg.Batch.WatchDebounce,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	logger.Info("watching for notices", "roots", *roots, "workers", cfg.Batch.Workers)

	ticker := time.NewTicker(*saveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			queue.Shutdown(shutdownCtx)
			cancel()
			if err := merger.Save(context.Background()); err != nil {
				logger.Error("final save failed", "error", err)
				os.Exit(1)
			}
			logger.Info("watcher stopped")
			return
		case path, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			queue.Enqueue(path)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error("watch error", "error", err)
		case <-ticker.C:
			if err := merger.Save(ctx); err != nil {
				logger.Error("periodic save failed", "error", err)
			}
		}
	}
}
