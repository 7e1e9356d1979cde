package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/ocr"
)

const sampleText = "Désignation: Chaise de bureau ergonomique Référence: PROD-2024-789 " +
	"Prix: 89,99 EUR Quantité: 5 Remarque: Livraison sous 15 jours"

type stubSource struct {
	text string
	err  error
}

func (s *stubSource) Recognize(context.Context, string) (ocr.Result, error) {
	if s.err != nil {
		return ocr.Result{}, s.err
	}
	return ocr.Result{Text: s.text, Confidence: 0.93}, nil
}

func TestProcessFullDocument(t *testing.T) {
	p := NewProcessor(catalog.Default(), &stubSource{text: sampleText}, nil)

	res := p.Process(context.Background(), "facture.png", Options{Debug: true})

	require.True(t, res.Success)
	assert.Equal(t, 67, res.Confidence)
	assert.GreaterOrEqual(t, res.ProcessingTimeMs, int64(0))

	want := map[string]struct {
		value string
		conf  float64
	}{
		catalog.FieldTitle:       {"Chaise de bureau ergonomique", 95},
		catalog.FieldReference:   {"PROD-2024-789", 100},
		catalog.FieldDescription: {"Chaise de bureau ergonomique", 100},
		catalog.FieldPrice:       {"89.99", 100},
		catalog.FieldQuantity:    {"5", 100},
		catalog.FieldNotes:       {"Livraison sous 15 jours", 100},
	}
	require.Len(t, res.Data, len(want))
	for field, exp := range want {
		got, ok := res.Data[field]
		require.True(t, ok, "field %s missing", field)
		assert.Equal(t, exp.value, got.Value, "field %s", field)
		assert.Equal(t, exp.conf, got.Confidence, "field %s", field)
	}
}

func TestProcessDebugDiagnostics(t *testing.T) {
	p := NewProcessor(catalog.Default(), &stubSource{text: sampleText}, nil)

	res := p.Process(context.Background(), "facture.png", Options{Debug: true})

	require.NotNil(t, res.Debug)
	assert.Equal(t, sampleText, res.Debug.RawText)
	assert.Contains(t, res.Debug.CorrectedText, "reference: PROD-2024-789")
	assert.Contains(t, res.Debug.CorrectedText, "price: 89,99")
	assert.Contains(t, res.Debug.CorrectedText, "Désignation:")

	// synonym rewrites run rightmost-first
	require.Len(t, res.Corrections, 4)
	assert.Equal(t, "remarque", res.Corrections[0].SourceField)
	assert.Equal(t, "quantité", res.Corrections[1].SourceField)
	assert.Equal(t, "prix", res.Corrections[2].SourceField)
	assert.Equal(t, "référence", res.Corrections[3].SourceField)

	assert.NotEmpty(t, res.RecognitionDetails)
	assert.Contains(t, res.Warnings, "Low confidence score")
}

func TestProcessWithoutDebug(t *testing.T) {
	p := NewProcessor(catalog.Default(), &stubSource{text: sampleText}, nil)

	res := p.Process(context.Background(), "facture.png", Options{})

	require.True(t, res.Success)
	assert.Nil(t, res.Debug)
	assert.Empty(t, res.Corrections)
	assert.Empty(t, res.RecognitionDetails)
	assert.Empty(t, res.Warnings)
}

func TestProcessSourceFailure(t *testing.T) {
	p := NewProcessor(catalog.Default(), &stubSource{err: errors.New("tesseract unavailable")}, nil)

	res := p.Process(context.Background(), "facture.png", Options{Debug: true})

	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Confidence)
	assert.Empty(t, res.Data)
	assert.Contains(t, res.Message, "tesseract unavailable")
}

func TestProcessTextUnrecognizableInput(t *testing.T) {
	p := NewProcessor(catalog.Default(), &stubSource{}, nil)

	res := p.ProcessText("zzz zz zzzz", Options{})

	require.True(t, res.Success)
	assert.Equal(t, 0, res.Confidence)
	title, ok := res.Data[catalog.FieldTitle]
	require.True(t, ok)
	assert.Equal(t, catalog.TitleNotDetected, title.Value)
}
