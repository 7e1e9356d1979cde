package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mgaillard/scandoc/internal/common"
)

// Result is one raw recognition outcome: text plus engine-reported confidence.
type Result struct {
	Text       string
	Confidence float64 // 0..1
}

// Engine recognizes text from an image file. Implementations must be safe
// for concurrent Recognize calls: the pool hands the same instance to
// overlapping document-processing calls.
type Engine interface {
	Recognize(ctx context.Context, path string) (Result, error)
	Close() error
}

// Factory creates a fresh Engine for the pool.
type Factory func() (Engine, error)

// EngineConfig configures the tesseract-backed engine.
type EngineConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "fra+eng"
	TessdataDir string
}

// TesseractEngine shells out to tesseract through a stubbable Runner.
// Each Recognize spawns its own process, so instances are concurrency-safe.
type TesseractEngine struct {
	cfg    EngineConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg EngineConfig, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "fra+eng"
	}
	return &TesseractEngine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize runs tesseract for text, then a TSV pass for the mean word
// confidence. Engine failures carry the retryable engine code.
func (e *TesseractEngine) Recognize(ctx context.Context, path string) (Result, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Result{}, common.NewEngineError(
			fmt.Sprintf("tesseract: %s", truncate(string(errb), 1<<10)), err)
	}

	conf, err := e.tsvConfidence(ctx, path)
	if err != nil {
		// text already recognized; a failed confidence pass degrades, not fails
		e.logger.Warn("tsv confidence pass failed", "path", path, "error", err)
		conf = 0
	}

	return Result{Text: string(out), Confidence: conf}, nil
}

// Close terminates the engine. Exec engines hold no state, so this is a no-op
// kept for pool symmetry with heavier engine implementations.
func (e *TesseractEngine) Close() error { return nil }

// tsvConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (e *TesseractEngine) tsvConfidence(ctx context.Context, path string) (float64, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}

	lines := strings.Split(string(out), "\n")
	// TSV columns: level..height, conf, text; conf sits at index 10
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n / 100.0, nil
}
