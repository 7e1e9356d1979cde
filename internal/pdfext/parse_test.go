package pdfext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgaillard/scandoc/internal/catalog"
)

func TestParsePagePerField(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
		value string
		conf  float64
	}{
		{"title", "Titre: Chaise de bureau ergonomique", catalog.FieldTitle, "Chaise de bureau ergonomique", 90},
		{"title via designation", "Désignation: Lampe de chevet", catalog.FieldTitle, "Lampe de chevet", 90},
		{"bare reference", "en stock PROD-2024-789 disponible", catalog.FieldReference, "PROD-2024-789", 95},
		{"description", "Description: chaise en tissu bleu", catalog.FieldDescription, "chaise en tissu bleu", 90},
		{"price comma", "Prix: 45,00", catalog.FieldPrice, "45.00", 85},
		{"quantity", "Quantité: 12", catalog.FieldQuantity, "12", 80},
		{"notes", "Notes: fragile, manipuler avec soin", catalog.FieldNotes, "fragile, manipuler avec soin", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := parsePage(tt.text)
			got, ok := data[tt.field]
			require.True(t, ok, "field %s missing", tt.field)
			assert.Equal(t, tt.value, got.Value)
			assert.Equal(t, tt.conf, got.Confidence)
		})
	}
}

func TestParsePageCombined(t *testing.T) {
	data := parsePage("Reference: PROD-2024-789 Prix: 89,99 Titre: Chaise ergonomique")

	assert.Equal(t, "PROD-2024-789", data[catalog.FieldReference].Value)
	assert.Equal(t, "89.99", data[catalog.FieldPrice].Value)
	assert.Equal(t, "Chaise ergonomique", data[catalog.FieldTitle].Value)
	_, hasQty := data[catalog.FieldQuantity]
	assert.False(t, hasQty)
}

func TestParsePageRejectsInvalidValues(t *testing.T) {
	data := parsePage("Quantité: 0 Prix: 99")

	_, hasQty := data[catalog.FieldQuantity]
	assert.False(t, hasQty)
	_, hasPrice := data[catalog.FieldPrice]
	assert.False(t, hasPrice)
}

func TestParsePageEmpty(t *testing.T) {
	assert.Empty(t, parsePage(""))
}
