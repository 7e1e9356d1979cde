package entity

import (
	"math"
	"strconv"
)

// ExtractedField is one structured output value with its own 0-100 confidence.
// Value is the literal extracted string; numeric fields expose coercions.
type ExtractedField struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Float coerces the value to a float64 (price-style fields).
func (f ExtractedField) Float() (float64, bool) {
	v, err := strconv.ParseFloat(f.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int coerces the value to an int (quantity-style fields).
func (f ExtractedField) Int() (int, bool) {
	v, err := strconv.Atoi(f.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Correction records one synonym rewrite performed on the recognized text.
// Purely diagnostic; the same span is never rewritten twice.
type Correction struct {
	OriginalText   string   `json:"original_text"`
	CorrectedField string   `json:"corrected_field"`
	SourceField    string   `json:"source_field"`
	Confidence     float64  `json:"confidence"`
	ContextTags    []string `json:"context_tags,omitempty"`
}

// PatternMatch describes one catalog pattern's outcome for a field.
type PatternMatch struct {
	Matched         bool    `json:"matched"`
	Priority        int     `json:"priority"`
	MatchedText     string  `json:"matched_text,omitempty"`
	ConfidenceBoost float64 `json:"confidence_boost"`
}

// RecognitionResult is the per-field diagnostic produced fresh per document.
type RecognitionResult struct {
	FieldName       string         `json:"field_name"`
	Confidence      float64        `json:"confidence"` // 0..1
	MatchedSynonyms []string       `json:"matched_synonyms,omitempty"`
	PatternMatches  []PatternMatch `json:"pattern_matches,omitempty"`
}

// DebugInfo carries intermediate pipeline text, attached only in debug mode.
type DebugInfo struct {
	RawText        string `json:"raw_text"`
	NormalizedText string `json:"normalized_text"`
	CorrectedText  string `json:"corrected_text"`
}

// DocumentResult is the response for one document-processing call.
type DocumentResult struct {
	Success            bool                      `json:"success"`
	Data               map[string]ExtractedField `json:"data"`
	RecognitionDetails []RecognitionResult       `json:"recognition_details,omitempty"`
	Corrections        []Correction              `json:"corrections,omitempty"`
	Confidence         int                       `json:"confidence"` // 0..100
	ProcessingTimeMs   int64                     `json:"processing_time_ms"`
	Message            string                    `json:"message,omitempty"`
	Warnings           []string                  `json:"warnings,omitempty"`
	Debug              *DebugInfo                `json:"debug,omitempty"`
}

// PageResult is one page of the structured PDF extraction path.
type PageResult struct {
	ID            int                       `json:"id"`
	Name          string                    `json:"name"`
	ContentLength int                       `json:"content_length"`
	Preview       string                    `json:"preview"`
	ExtractedData map[string]ExtractedField `json:"extracted_data"`
}

// PDFResult is the envelope for the structured PDF extraction path.
type PDFResult struct {
	Success    bool         `json:"success"`
	FileName   string       `json:"file_name"`
	TotalPages int          `json:"total_pages"`
	Pages      []PageResult `json:"pages"`
	Metadata   PDFMetadata  `json:"metadata"`
}

// PDFMetadata describes where and when a structured PDF extraction ran.
type PDFMetadata struct {
	ExtractionDate string `json:"extraction_date"`
	Source         string `json:"source"`
}

// Flatten merges the per-page extraction into one document-level result so
// PDF outcomes can be persisted like any other document. The earliest page
// wins per field; the document confidence is the rounded mean of the merged
// fields' confidences.
func (r *PDFResult) Flatten() *DocumentResult {
	data := make(map[string]ExtractedField)
	for _, p := range r.Pages {
		for name, ef := range p.ExtractedData {
			if _, ok := data[name]; !ok {
				data[name] = ef
			}
		}
	}
	confidence := 0
	if len(data) > 0 {
		var sum float64
		for _, ef := range data {
			sum += ef.Confidence
		}
		confidence = int(math.Round(sum / float64(len(data))))
	}
	return &DocumentResult{
		Success:    r.Success,
		Data:       data,
		Confidence: confidence,
		Message:    "pdf processed",
	}
}
