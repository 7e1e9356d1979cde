package async

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgaillard/scandoc/constants"
	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/entity"
	"github.com/mgaillard/scandoc/internal/ocr"
	"github.com/mgaillard/scandoc/internal/pipeline"
	"github.com/mgaillard/scandoc/internal/repository"
)

type stubSource struct {
	text  string
	err   error
	calls atomic.Int64
}

func (s *stubSource) Recognize(context.Context, string) (ocr.Result, error) {
	s.calls.Add(1)
	if s.err != nil {
		return ocr.Result{}, s.err
	}
	return ocr.Result{Text: s.text, Confidence: 0.9}, nil
}

type stubPDF struct {
	res *entity.PDFResult
	err error
}

func (s *stubPDF) Extract(_ []byte, filename string) (*entity.PDFResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.res
	r.FileName = filename
	return &r, nil
}

func newJob(path string) Job {
	return Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now()}
}

func TestQueueProcessesAndPersists(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "extractions.db")
	store, err := repository.Open(context.Background(), dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	src := &stubSource{text: "Référence: PROD-2024-789 Prix: 89,99"}
	proc := pipeline.NewProcessor(catalog.Default(), src, nil)
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithStore(store))

	paths := []string{"/docs/a.png", "/docs/b.jpg", "/docs/c.tiff"}
	for _, p := range paths {
		require.NoError(t, q.Enqueue(context.Background(), newJob(p)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	rows, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	names := make(map[string]bool)
	for _, r := range rows {
		names[r.FileName] = true
		assert.Equal(t, constants.JobStatusDone, r.Status)
		assert.Equal(t, "PROD-2024-789", r.Reference)
		assert.Equal(t, "89.99", r.Price)
	}
	assert.True(t, names["a.png"] && names["b.jpg"] && names["c.tiff"])
}

func TestQueueRoutesPDFToStructuredPath(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "extractions.db")
	store, err := repository.Open(context.Background(), dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	pdfPath := filepath.Join(t.TempDir(), "catalogue.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 stub"), 0o644))

	src := &stubSource{text: "jamais utilisé"}
	pdf := &stubPDF{res: &entity.PDFResult{
		Success:    true,
		TotalPages: 2,
		Pages: []entity.PageResult{
			{ID: 1, ExtractedData: map[string]entity.ExtractedField{
				catalog.FieldTitle:     {Value: "Chaise de bureau", Confidence: 90},
				catalog.FieldReference: {Value: "PROD-2024-789", Confidence: 95},
			}},
			{ID: 2, ExtractedData: map[string]entity.ExtractedField{
				catalog.FieldPrice: {Value: "89.99", Confidence: 85},
			}},
		},
	}}
	proc := pipeline.NewProcessor(catalog.Default(), src, nil)
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithStore(store), WithPDFExtractor(pdf))

	require.NoError(t, q.Enqueue(context.Background(), newJob(pdfPath)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, int64(0), src.calls.Load(), "PDF jobs never reach the OCR engine")

	rows, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "catalogue.pdf", rows[0].FileName)
	assert.Equal(t, constants.PDF, rows[0].Format)
	assert.Equal(t, constants.JobStatusDone, rows[0].Status)
	assert.Equal(t, "Chaise de bureau", rows[0].Title)
	assert.Equal(t, "PROD-2024-789", rows[0].Reference)
	assert.Equal(t, "89.99", rows[0].Price)
	// rounded mean of 90, 95 and 85
	assert.Equal(t, 90, rows[0].Confidence)
}

func TestQueueRecordsPDFExtractionFailure(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "extractions.db")
	store, err := repository.Open(context.Background(), dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	pdfPath := filepath.Join(t.TempDir(), "corrompu.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF garbage"), 0o644))

	src := &stubSource{text: "jamais utilisé"}
	pdf := &stubPDF{err: errors.New("unreadable PDF")}
	proc := pipeline.NewProcessor(catalog.Default(), src, nil)
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithStore(store), WithPDFExtractor(pdf))

	require.NoError(t, q.Enqueue(context.Background(), newJob(pdfPath)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	rows, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, constants.JobStatusFailed, rows[0].Status)
	assert.Contains(t, rows[0].Message, "unreadable PDF")
	assert.Equal(t, int64(0), src.calls.Load())
}

func TestQueueRecordsFailures(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "extractions.db")
	store, err := repository.Open(context.Background(), dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	src := &stubSource{err: errors.New("tesseract unavailable")}
	proc := pipeline.NewProcessor(catalog.Default(), src, nil)
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithStore(store))

	require.NoError(t, q.Enqueue(context.Background(), newJob("/docs/broken.png")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	rows, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, constants.JobStatusFailed, rows[0].Status)
	assert.Contains(t, rows[0].Message, "tesseract unavailable")
}

func TestQueueWithoutStore(t *testing.T) {
	src := &stubSource{text: "Titre: Lampe"}
	proc := pipeline.NewProcessor(catalog.Default(), src, nil)
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(4))

	for i := 0; i < 8; i++ {
		require.NoError(t, q.Enqueue(context.Background(), newJob("/docs/a.png")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)
}

func TestQueueEnqueueAfterShutdown(t *testing.T) {
	src := &stubSource{text: "Titre: Lampe"}
	proc := pipeline.NewProcessor(catalog.Default(), src, nil)
	q := NewProcessorQueue(proc, nil, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	// dropped with a warning, never blocks or panics
	require.NoError(t, q.Enqueue(context.Background(), newJob("/docs/late.png")))
}
