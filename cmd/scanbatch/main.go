package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mgaillard/scandoc/constants"
	"github.com/mgaillard/scandoc/internal/async"
	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/common"
	"github.com/mgaillard/scandoc/internal/export"
	"github.com/mgaillard/scandoc/internal/ocr"
	"github.com/mgaillard/scandoc/internal/pipeline"
	"github.com/mgaillard/scandoc/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "scanbatch <directory>")
		os.Exit(2)
	}
	dir := os.Args[1]

	cfg := common.LoadConfig()
	fields, err := catalog.Load(cfg.Catalog.OverridePath)
	if err != nil {
		logger.Error("load catalog", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool := ocr.NewPool(
		func() (ocr.Engine, error) {
			return ocr.NewTesseractEngine(ocr.EngineConfig{
				Tesseract:   cfg.OCR.Tesseract,
				Lang:        cfg.OCR.TesseractLang,
				TessdataDir: cfg.OCR.TessdataDir,
			}, logger), nil
		},
		logger,
		ocr.WithMaxWorkers(cfg.OCR.MaxWorkers),
		ocr.WithRetryAttempts(cfg.OCR.RetryAttempts),
		ocr.WithRetryBaseWait(cfg.OCR.RetryBaseWait),
	)
	defer pool.Shutdown()

	proc := pipeline.NewProcessor(fields, pool, logger)

	opts := []async.Option{async.WithWorkers(cfg.OCR.MaxWorkers)}
	var store *repository.Store
	if cfg.Database.DSN != "" {
		store, err = repository.Open(ctx, cfg.Database.DSN, logger)
		if err != nil {
			logger.Error("open store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, async.WithStore(store))
	}
	queue := async.NewProcessorQueue(proc, logger, opts...)

	queued := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		queued++
		return queue.Enqueue(ctx, async.Job{
			ID:          uuid.New(),
			Path:        path,
			Debug:       cfg.Debug,
			SubmittedAt: time.Now(),
		})
	})
	if err != nil {
		logger.Error("walk directory", "dir", dir, "error", err)
	}
	logger.Info("batch enqueued", "dir", dir, "files", queued)

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	queue.Shutdown(drainCtx)

	if store != nil && cfg.Export.Path != "" {
		data, err := export.NewService(store, logger).ExportXLSX(ctx, cfg.Export.Limit)
		if err != nil {
			logger.Error("export failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(cfg.Export.Path, data, 0o644); err != nil {
			logger.Error("write export", "path", cfg.Export.Path, "error", err)
			os.Exit(1)
		}
		logger.Info("export written", "path", cfg.Export.Path, "rows_limit", cfg.Export.Limit)
	}
}
