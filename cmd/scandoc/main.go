package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mgaillard/scandoc/constants"
	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/common"
	"github.com/mgaillard/scandoc/internal/ocr"
	"github.com/mgaillard/scandoc/internal/pdfext"
	"github.com/mgaillard/scandoc/internal/pipeline"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "scandoc <image-or-pdf-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	fields, err := catalog.Load(cfg.Catalog.OverridePath)
	if err != nil {
		logger.Error("load catalog", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")

	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read pdf", "path", path, "error", err)
			os.Exit(1)
		}
		res, err := pdfext.NewExtractor(logger).Extract(raw, filepath.Base(path))
		if err != nil {
			logger.Error("pdf extraction failed", "path", path, "error", err)
			os.Exit(1)
		}
		if err := out.Encode(res); err != nil {
			logger.Error("encode result", "error", err)
			os.Exit(1)
		}

	case constants.IMAGE:
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
		res := proc.Process(ctx, path, pipeline.Options{Debug: cfg.Debug})
		if err := out.Encode(res); err != nil {
			logger.Error("encode result", "error", err)
			os.Exit(1)
		}
		if !res.Success {
			os.Exit(1)
		}

	default:
		logger.Error("unsupported file type", "path", path)
		os.Exit(2)
	}
}
