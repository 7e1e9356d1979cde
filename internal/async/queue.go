package async

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgaillard/scandoc/constants"
	"github.com/mgaillard/scandoc/internal/entity"
	"github.com/mgaillard/scandoc/internal/pdfext"
	"github.com/mgaillard/scandoc/internal/pipeline"
	"github.com/mgaillard/scandoc/internal/repository"
)

// Job is one file to process. Extend as needed later (trace, retry, etc).
type Job struct {
	ID          uuid.UUID
	Path        string
	Debug       bool
	SubmittedAt time.Time
}

// PDFExtractor is the structured, engine-free path for text-bearing PDFs.
type PDFExtractor interface {
	Extract(pdfBytes []byte, filename string) (*entity.PDFResult, error)
}

// ProcessorQueue fans jobs out to a fixed set of workers. Images run through
// the OCR extraction pipeline; PDFs take the structured extractor, since the
// OCR engine cannot read PDF input. Results are optionally persisted.
type ProcessorQueue struct {
	proc    *pipeline.Processor
	pdf     PDFExtractor
	store   *repository.Store // nil disables persistence
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithStore(s *repository.Store) Option {
	return func(q *ProcessorQueue) { q.store = s }
}

// WithPDFExtractor replaces the structured PDF path, mainly for tests.
func WithPDFExtractor(x PDFExtractor) Option {
	return func(q *ProcessorQueue) {
		if x != nil {
			q.pdf = x
		}
	}
}

func NewProcessorQueue(proc *pipeline.Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	for _, o := range opts {
		o(q)
	}
	if q.pdf == nil {
		q.pdf = pdfext.NewExtractor(q.logger)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					q.process(ctx, workerID, job)
					cancel()
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) process(ctx context.Context, workerID int, job Job) {
	var res *entity.DocumentResult
	if constants.MapExtToFormat(filepath.Ext(job.Path)) == constants.PDF {
		res = q.processPDF(job)
	} else {
		res = q.proc.Process(ctx, job.Path, pipeline.Options{Debug: job.Debug})
	}
	if res.Success {
		q.logger.Info("processed file",
			"worker_id", workerID, "job_id", job.ID, "path", job.Path,
			"confidence", res.Confidence)
	} else {
		q.logger.Error("processing failed",
			"worker_id", workerID, "job_id", job.ID, "path", job.Path,
			"message", res.Message)
	}

	if q.store == nil {
		return
	}
	ext := entity.NewExtraction(res,
		filepath.Base(job.Path), job.Path,
		constants.MapExtToFormat(filepath.Ext(job.Path)))
	if err := q.store.Save(ctx, ext); err != nil {
		q.logger.Error("persist extraction failed",
			"worker_id", workerID, "job_id", job.ID, "error", err)
	}
}

// processPDF runs the structured extractor for a PDF job and flattens the
// per-page result into a persistable document outcome.
func (q *ProcessorQueue) processPDF(job Job) *entity.DocumentResult {
	start := time.Now()
	raw, err := os.ReadFile(job.Path)
	if err != nil {
		return pdfFailure("read pdf: "+err.Error(), start)
	}
	res, err := q.pdf.Extract(raw, filepath.Base(job.Path))
	if err != nil {
		return pdfFailure(err.Error(), start)
	}
	doc := res.Flatten()
	doc.ProcessingTimeMs = time.Since(start).Milliseconds()
	return doc
}

func pdfFailure(message string, start time.Time) *entity.DocumentResult {
	return &entity.DocumentResult{
		Success:          false,
		Data:             map[string]entity.ExtractedField{},
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Message:          message,
	}
}

func (q *ProcessorQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued file for processing", "job_id", job.ID, "path", job.Path)
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		q.ch <- job
	}
	return nil
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
