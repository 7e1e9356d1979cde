package pdfext

import (
	"regexp"
	"strings"

	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/entity"
)

type pageRule struct {
	field      string
	re         *regexp.Regexp
	confidence float64
	transform  func(string) string
}

// Reduced single-pass parse, simpler than the catalog engine: one label
// regex per field, first match wins, validated before insertion.
var pageRules = []pageRule{
	{
		field:      catalog.FieldTitle,
		re:         regexp.MustCompile(`(?i)\b(?:titre|title|d[ée]signation)\s*[:=-]?\s*([^:=]{3,80})`),
		confidence: 90,
		transform:  strings.TrimSpace,
	},
	{
		field:      catalog.FieldReference,
		re:         regexp.MustCompile(`(?i)\b(PROD-\d{4}-\d{3,})\b`),
		confidence: 95,
		transform:  func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) },
	},
	{
		field:      catalog.FieldDescription,
		re:         regexp.MustCompile(`(?i)\bdescription\s*[:=-]?\s*([^:=]{3,200})`),
		confidence: 90,
		transform:  strings.TrimSpace,
	},
	{
		field:      catalog.FieldPrice,
		re:         regexp.MustCompile(`(?i)\b(?:prix|price|tarif|montant)\s*[:=-]?\s*(\d+[.,]\d{2})`),
		confidence: 85,
		transform:  func(s string) string { return strings.ReplaceAll(strings.TrimSpace(s), ",", ".") },
	},
	{
		field:      catalog.FieldQuantity,
		re:         regexp.MustCompile(`(?i)\b(?:quantit[ée]|quantity|qt[ée]|qty)\s*[:=-]?\s*(\d+)\b`),
		confidence: 80,
		transform:  strings.TrimSpace,
	},
	{
		field:      catalog.FieldNotes,
		re:         regexp.MustCompile(`(?i)\b(?:notes?|remarques?)\s*[:=-]?\s*([^:=]{3,200})`),
		confidence: 60,
		transform:  strings.TrimSpace,
	},
}

var pageValidators = map[string]func(string) bool{
	catalog.FieldTitle:       catalog.ValidTitle,
	catalog.FieldReference:   catalog.ValidReference,
	catalog.FieldDescription: catalog.ValidDescription,
	catalog.FieldPrice:       catalog.ValidPrice,
	catalog.FieldQuantity:    catalog.ValidQuantity,
	catalog.FieldNotes:       catalog.ValidNotes,
}

// parsePage extracts the reduced field set from one page of text.
func parsePage(text string) map[string]entity.ExtractedField {
	data := make(map[string]entity.ExtractedField)
	for _, rule := range pageRules {
		if _, done := data[rule.field]; done {
			continue
		}
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		val := m[1]
		if rule.transform != nil {
			val = rule.transform(val)
		}
		if v, ok := pageValidators[rule.field]; ok && !v(val) {
			continue
		}
		data[rule.field] = entity.ExtractedField{Value: val, Confidence: rule.confidence}
	}
	return data
}
