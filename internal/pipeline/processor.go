package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/entity"
	"github.com/mgaillard/scandoc/internal/ocr"
	"github.com/mgaillard/scandoc/internal/recognize"
	"github.com/mgaillard/scandoc/internal/structurer"
	"github.com/mgaillard/scandoc/internal/textproc"
)

const lowConfidenceThreshold = 70

// TextSource yields raw text plus engine confidence for a file. The OCR
// worker pool is the production implementation; tests stub it.
type TextSource interface {
	Recognize(ctx context.Context, path string) (ocr.Result, error)
}

// Options tune one document-processing call.
type Options struct {
	Debug bool
}

// Processor coordinates the extraction pipeline: OCR -> normalize -> correct
// synonyms -> recognize fields -> structure -> post-process -> aggregate.
// Stateless across calls; the shared pool lives in the TextSource.
type Processor struct {
	fields     []catalog.FieldConfig
	source     TextSource
	corrector  *textproc.Corrector
	recognizer *recognize.Recognizer
	structurer *structurer.Structurer
	post       *structurer.PostProcessor
	logger     *slog.Logger
}

func NewProcessor(fields []catalog.FieldConfig, source TextSource, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		fields:     fields,
		source:     source,
		corrector:  textproc.NewCorrector(fields),
		recognizer: recognize.NewRecognizer(fields),
		structurer: structurer.NewStructurer(fields),
		post:       structurer.NewPostProcessor(fields),
		logger:     logger,
	}
}

// Process runs the full pipeline for the file at path. It never panics past
// its boundary: unexpected failures become success:false results.
func (p *Processor) Process(ctx context.Context, path string, opts Options) (res *entity.DocumentResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic", "path", path, "panic", r)
			res = failure(fmt.Sprintf("unexpected processing failure: %v", r), start)
		}
	}()

	raw, err := p.source.Recognize(ctx, path)
	if err != nil {
		p.logger.Error("ocr recognize failed", "path", path, "error", err)
		return failure(err.Error(), start)
	}
	p.logger.Debug("ocr recognize ok",
		"path", path, "bytes", len(raw.Text), "engine_confidence", raw.Confidence)

	res = p.ProcessText(raw.Text, opts)
	res.ProcessingTimeMs = time.Since(start).Milliseconds()
	if opts.Debug && res.Debug != nil {
		res.Debug.RawText = raw.Text
	}
	return res
}

// ProcessText runs the engine-free tail of the pipeline over raw text.
// Used directly by callers that already hold document text.
func (p *Processor) ProcessText(raw string, opts Options) *entity.DocumentResult {
	start := time.Now()

	normalized := textproc.Normalize(raw)
	corrected, corrections := p.corrector.Correct(normalized)
	recog := p.recognizer.Recognize(corrected)
	data := p.structurer.Structure(corrected, recog)
	p.post.Apply(data, corrected)
	confidence := recognize.Aggregate(recog, p.fields)

	res := &entity.DocumentResult{
		Success:          true,
		Data:             data,
		Confidence:       confidence,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Message:          "document processed",
	}
	if opts.Debug {
		res.RecognitionDetails = recog
		res.Corrections = corrections
		res.Debug = &entity.DebugInfo{
			RawText:        raw,
			NormalizedText: normalized,
			CorrectedText:  corrected,
		}
		if confidence < lowConfidenceThreshold {
			res.Warnings = append(res.Warnings, "Low confidence score")
		}
	}
	p.logger.Info("document processed",
		"fields", len(data), "confidence", confidence, "corrections", len(corrections))
	return res
}

func failure(message string, start time.Time) *entity.DocumentResult {
	return &entity.DocumentResult{
		Success:          false,
		Data:             map[string]entity.ExtractedField{},
		Confidence:       0,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Message:          message,
	}
}
