package catalog

import (
	"regexp"
	"strings"
)

// TitleNotDetected is the sentinel value placed in the structured output when
// no title candidate survives validation. It is the one field the structurer
// always populates.
const TitleNotDetected = "Titre non détecté"

// Transform rewrites a raw captured value before validation.
type Transform func(string) string

// FieldPattern is one extraction pattern for a field. Higher Priority wins.
// Example documents the label shape this pattern targets; the recognizer
// compares its label token (text before ':') against matched spans.
type FieldPattern struct {
	Regexp     *regexp.Regexp
	Example    string
	Priority   int
	ValueGroup int
	Transform  Transform
}

// FieldConfig is the immutable per-field extraction configuration.
type FieldConfig struct {
	Name     string
	Synonyms []string
	Patterns []FieldPattern
	Required bool
	Weight   float64
	Validate func(string) bool
}

// Canonical field names.
const (
	FieldTitle       = "title"
	FieldReference   = "reference"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldQuantity    = "quantity"
	FieldNotes       = "notes"
)

func trim(s string) string { return strings.TrimSpace(s) }

func dotDecimal(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Default returns the built-in catalog: six fields, synonyms in French and
// English, prioritized patterns over the synonym-corrected text. Patterns
// reference canonical labels because the corrector rewrites synonyms first.
func Default() []FieldConfig {
	return []FieldConfig{
		{
			Name: FieldTitle,
			Synonyms: []string{
				"title", "titre", "libellé", "libelle",
				"intitulé", "intitule", "article", "produit",
			},
			Patterns: []FieldPattern{
				{
					Regexp:     regexp.MustCompile(`(?i)\btitle\s*[:=]\s*([^:=]+)`),
					Example:    "title: Chaise de bureau",
					Priority:   3,
					ValueGroup: 1,
					Transform:  trim,
				},
				{
					Regexp:     regexp.MustCompile(`(?i)\btitle\s+([^:=]{3,80})`),
					Example:    "title Chaise de bureau",
					Priority:   2,
					ValueGroup: 1,
					Transform:  trim,
				},
				{
					Regexp:     regexp.MustCompile(`^(\p{Lu}[^:=]{2,79})$`),
					Example:    "Chaise de bureau ergonomique",
					Priority:   1,
					ValueGroup: 1,
					Transform:  trim,
				},
			},
			Required: true,
			Weight:   0.8,
			Validate: ValidTitle,
		},
		{
			Name:     FieldReference,
			Synonyms: []string{"reference", "référence", "ref", "réf"},
			Patterns: []FieldPattern{
				{
					Regexp:     regexp.MustCompile(`(?i)\breference\s*[:=]?\s*(PROD-\d{4}-\d{3,})`),
					Example:    "reference: PROD-2024-789",
					Priority:   3,
					ValueGroup: 1,
					Transform:  upper,
				},
				{
					Regexp:     regexp.MustCompile(`(?i)\b(PROD-\d{4}-\d{3,})\b`),
					Example:    "PROD-2024-789",
					Priority:   2,
					ValueGroup: 1,
					Transform:  upper,
				},
				{
					Regexp:     regexp.MustCompile(`(?i)\breference\s*[:=]?\s*([A-Z]{2,}-?\d{2,}[A-Z0-9-]*)`),
					Example:    "reference: REF-12345",
					Priority:   1,
					ValueGroup: 1,
					Transform:  upper,
				},
			},
			Required: true,
			Weight:   0.9,
			Validate: ValidReference,
		},
		{
			Name: FieldDescription,
			Synonyms: []string{
				"description", "descriptif", "détail", "detail",
				"détails", "details",
			},
			Patterns: []FieldPattern{
				{
					Regexp:     regexp.MustCompile(`(?i)\bdescription\s*[:=]\s*([^:=]+)`),
					Example:    "description: Chaise ergonomique en tissu",
					Priority:   3,
					ValueGroup: 1,
					Transform:  trim,
				},
				{
					Regexp:     regexp.MustCompile(`(?i)\bdescription\s+([^:=]{3,200})`),
					Example:    "description Chaise ergonomique",
					Priority:   2,
					ValueGroup: 1,
					Transform:  trim,
				},
			},
			Required: false,
			Weight:   0.6,
			Validate: ValidDescription,
		},
		{
			Name:     FieldPrice,
			Synonyms: []string{"price", "prix", "tarif", "montant"},
			Patterns: []FieldPattern{
				{
					Regexp:     regexp.MustCompile(`(?i)\bprice\s*[:=]?\s*(\d+[.,]\d{2})`),
					Example:    "price: 89.99",
					Priority:   3,
					ValueGroup: 1,
					Transform:  dotDecimal,
				},
				{
					Regexp:     regexp.MustCompile(`(?i)(\d+[.,]\d{2})\s*(?:€|eur|euros?)\b`),
					Example:    "89.99 EUR",
					Priority:   2,
					ValueGroup: 1,
					Transform:  dotDecimal,
				},
				{
					Regexp:     regexp.MustCompile(`(\d+[.,]\d{2})`),
					Example:    "89.99",
					Priority:   1,
					ValueGroup: 1,
					Transform:  dotDecimal,
				},
			},
			Required: true,
			Weight:   0.9,
			Validate: ValidPrice,
		},
		{
			Name: FieldQuantity,
			Synonyms: []string{
				"quantity", "quantité", "quantite", "qté", "qte", "qty",
			},
			Patterns: []FieldPattern{
				{
					Regexp:     regexp.MustCompile(`(?i)\bquantity\s*[:=]?\s*(\d+)\b`),
					Example:    "quantity: 5",
					Priority:   3,
					ValueGroup: 1,
					Transform:  trim,
				},
				{
					Regexp:     regexp.MustCompile(`(?i)\b(\d+)\s*(?:pcs|pi[eè]ces?|unit[ée]s?)\b`),
					Example:    "5 pcs",
					Priority:   2,
					ValueGroup: 1,
					Transform:  trim,
				},
			},
			Required: false,
			Weight:   0.7,
			Validate: ValidQuantity,
		},
		{
			Name: FieldNotes,
			Synonyms: []string{
				"notes", "note", "remarque", "remarques",
				"commentaire", "commentaires", "observation", "observations",
			},
			Patterns: []FieldPattern{
				{
					Regexp:     regexp.MustCompile(`(?i)\bnotes?\s*[:=]\s*([^:=]+)`),
					Example:    "notes: Livraison sous 15 jours",
					Priority:   3,
					ValueGroup: 1,
					Transform:  trim,
				},
				{
					Regexp:     regexp.MustCompile(`(?i)\bnotes?\s*-\s*([^:=]{3,200})`),
					Example:    "notes - livraison sous 15 jours",
					Priority:   2,
					ValueGroup: 1,
					Transform:  trim,
				},
			},
			Required: false,
			Weight:   0.3,
			Validate: ValidNotes,
		},
	}
}

// ByName finds a field config by canonical name.
func ByName(fields []FieldConfig, name string) (*FieldConfig, bool) {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i], true
		}
	}
	return nil, false
}

// Names returns the canonical field names in catalog order.
func Names(fields []FieldConfig) []string {
	out := make([]string, 0, len(fields))
	for i := range fields {
		out = append(out, fields[i].Name)
	}
	return out
}
