package structurer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/entity"
)

var (
	reBestReference = regexp.MustCompile(`PROD-\d{4}-\d{3,}`)
	reBestPrice     = regexp.MustCompile(`^\d+\.\d{2}$`)
	reBestQuantity  = regexp.MustCompile(`^\d+$`)
)

// Structurer extracts literal field values from corrected text by applying
// catalog patterns in priority order. Safe for concurrent use.
type Structurer struct {
	fields []catalog.FieldConfig
}

func NewStructurer(fields []catalog.FieldConfig) *Structurer {
	return &Structurer{fields: fields}
}

// Structure runs required fields before optional ones, collects every
// validated candidate per field, and keeps a single best value. Fields with
// no surviving candidate are omitted, except title, which is always present
// (sentinel with zero confidence when nothing was recoverable).
func (s *Structurer) Structure(text string, recog []entity.RecognitionResult) map[string]entity.ExtractedField {
	confByField := make(map[string]float64, len(recog))
	for _, r := range recog {
		confByField[r.FieldName] = r.Confidence
	}

	data := make(map[string]entity.ExtractedField)
	for _, required := range []bool{true, false} {
		for i := range s.fields {
			f := &s.fields[i]
			if f.Required != required {
				continue
			}
			if _, done := data[f.Name]; done {
				continue
			}
			candidates := s.collectCandidates(f, text)
			best := selectBestValue(f.Name, candidates)
			if best == "" {
				continue
			}
			data[f.Name] = entity.ExtractedField{
				Value:      best,
				Confidence: confByField[f.Name] * 100,
			}
		}
	}

	if _, ok := data[catalog.FieldTitle]; !ok {
		data[catalog.FieldTitle] = entity.ExtractedField{
			Value:      catalog.TitleNotDetected,
			Confidence: 0,
		}
	}
	return data
}

// collectCandidates walks the field's patterns in descending priority and,
// per pattern, every line of the corrected text, keeping each transformed
// candidate that passes the field validator. Order is preserved so the
// selector can prefer higher-priority matches.
func (s *Structurer) collectCandidates(f *catalog.FieldConfig, text string) []string {
	patterns := make([]catalog.FieldPattern, len(f.Patterns))
	copy(patterns, f.Patterns)
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Priority > patterns[j].Priority
	})

	lines := strings.Split(text, "\n")
	var candidates []string
	for _, p := range patterns {
		for _, line := range lines {
			for _, m := range p.Regexp.FindAllStringSubmatch(line, -1) {
				if p.ValueGroup >= len(m) {
					continue
				}
				val := m[p.ValueGroup]
				if p.Transform != nil {
					val = p.Transform(val)
				}
				if f.Validate != nil && !f.Validate(val) {
					continue
				}
				candidates = append(candidates, val)
			}
		}
	}
	return candidates
}

// selectBestValue applies the field-specific tie-break: code-shaped fields
// take the first candidate matching their canonical shape, everything else
// takes the longest candidate (first occurrence wins ties).
func selectBestValue(field string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	switch field {
	case catalog.FieldReference:
		for _, c := range candidates {
			if reBestReference.MatchString(c) {
				return c
			}
		}
		return ""
	case catalog.FieldPrice:
		for _, c := range candidates {
			if reBestPrice.MatchString(c) {
				return c
			}
		}
		return ""
	case catalog.FieldQuantity:
		for _, c := range candidates {
			if reBestQuantity.MatchString(c) {
				return c
			}
		}
		return ""
	default:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if len(c) > len(best) {
				best = c
			}
		}
		return best
	}
}
