package structurer

import (
	"regexp"
	"strings"

	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/entity"
)

// Fallback trust levels are empirically chosen per heuristic; they are fixed
// configuration, deliberately not uniform.
const (
	fallbackTitleConfidence       = 95
	fallbackDescriptionConfidence = 100
	fallbackReferenceConfidence   = 60
	fallbackPriceConfidence       = 85
	fallbackQuantityConfidence    = 80
	fallbackNotesConfidence       = 60
)

type fallbackRule struct {
	field      string
	re         *regexp.Regexp
	confidence float64
	transform  func(string) string
}

// Direct label-based secondary heuristics, run only for fields still missing
// after structuring. The "designation" label is not a catalog synonym, so it
// survives correction and remains matchable here.
var fallbackRules = []fallbackRule{
	{
		field:      catalog.FieldTitle,
		re:         regexp.MustCompile(`(?i)d[ée]signation\s*[:=-]?\s*([^:=]{3,80})`),
		confidence: fallbackTitleConfidence,
		transform:  strings.TrimSpace,
	},
	{
		field:      catalog.FieldDescription,
		re:         regexp.MustCompile(`(?i)d[ée]signation\s*[:=-]?\s*([^:=]{3,200})`),
		confidence: fallbackDescriptionConfidence,
		transform:  strings.TrimSpace,
	},
	{
		field:      catalog.FieldReference,
		re:         regexp.MustCompile(`(?i)(?:article|produit|code)\s*[:=-]?\s*(PROD-\d{4}-\d{3,})`),
		confidence: fallbackReferenceConfidence,
		transform:  func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) },
	},
	{
		field:      catalog.FieldPrice,
		re:         regexp.MustCompile(`(?i)\b(?:price|prix|tarif|montant)\s*[:=-]?\s*(\d+[.,]\d{2})`),
		confidence: fallbackPriceConfidence,
		transform:  func(s string) string { return strings.ReplaceAll(strings.TrimSpace(s), ",", ".") },
	},
	{
		field:      catalog.FieldQuantity,
		re:         regexp.MustCompile(`(?i)\b(?:quantity|quantit[ée]|qt[ée]|qty)\s*[:=-]?\s*(\d+)\b`),
		confidence: fallbackQuantityConfidence,
		transform:  strings.TrimSpace,
	},
	{
		field:      catalog.FieldNotes,
		re:         regexp.MustCompile(`(?i)\b(?:notes?|remarques?)\s*[:=-]?\s*([^:=]{3,200})`),
		confidence: fallbackNotesConfidence,
		transform:  strings.TrimSpace,
	},
}

// PostProcessor backfills missing fields with lower-trust label heuristics
// and strips cross-field contamination from already-extracted values.
type PostProcessor struct {
	fields   []catalog.FieldConfig
	cleaners map[string][]cleanRule      // field name -> foreign-field strippers
	labels   map[string][]*regexp.Regexp // field name -> foreign label strippers only
}

type cleanRule struct {
	re   *regexp.Regexp
	repl string
}

func NewPostProcessor(fields []catalog.FieldConfig) *PostProcessor {
	p := &PostProcessor{
		fields:   fields,
		cleaners: make(map[string][]cleanRule, len(fields)),
		labels:   make(map[string][]*regexp.Regexp, len(fields)),
	}
	for i := range fields {
		target := &fields[i]
		for j := range fields {
			other := &fields[j]
			if other.Name == target.Name {
				continue
			}
			for _, pat := range other.Patterns {
				p.cleaners[target.Name] = append(p.cleaners[target.Name],
					cleanRule{re: pat.Regexp, repl: ""})
			}
			ls := labelStripper(other)
			p.cleaners[target.Name] = append(p.cleaners[target.Name],
				cleanRule{re: ls, repl: "$1"})
			p.labels[target.Name] = append(p.labels[target.Name], ls)
		}
	}
	return p
}

// labelStripper removes a field's label words (canonical name and synonyms)
// together with a trailing separator. Boundaries are expressed as captured
// context because \b is unusable with accented synonyms.
func labelStripper(f *catalog.FieldConfig) *regexp.Regexp {
	words := append([]string{f.Name}, f.Synonyms...)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(
		`(?i)(^|[^\p{L}\p{N}])(?:` + strings.Join(quoted, "|") + `)\s*[:=-]?\s*`,
	)
}

// Apply mutates data in place: fallback insertion first, then value cleanup.
// The sentinel title counts as missing for fallback purposes.
func (p *PostProcessor) Apply(data map[string]entity.ExtractedField, text string) {
	for _, rule := range fallbackRules {
		if present(data, rule.field) {
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
		val = p.stripForeignLabels(rule.field, val)
		fc, ok := catalog.ByName(p.fields, rule.field)
		if ok && fc.Validate != nil && !fc.Validate(val) {
			continue
		}
		data[rule.field] = entity.ExtractedField{Value: val, Confidence: rule.confidence}
	}

	for name, ef := range data {
		if name == catalog.FieldTitle && ef.Value == catalog.TitleNotDetected {
			continue
		}
		cleaned := p.cleanValue(name, ef.Value)
		if cleaned == ef.Value {
			continue
		}
		fc, ok := catalog.ByName(p.fields, name)
		if ok && fc.Validate != nil && !fc.Validate(cleaned) {
			continue
		}
		ef.Value = cleaned
		data[name] = ef
	}
}

func present(data map[string]entity.ExtractedField, field string) bool {
	ef, ok := data[field]
	if !ok {
		return false
	}
	if field == catalog.FieldTitle && ef.Value == catalog.TitleNotDetected {
		return false
	}
	return true
}

// stripForeignLabels removes other fields' label words from a fallback
// candidate (a greedy label capture often runs into the next field's label).
func (p *PostProcessor) stripForeignLabels(field, value string) string {
	cleaned := value
	for _, re := range p.labels[field] {
		cleaned = re.ReplaceAllString(cleaned, "$1")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.Trim(cleaned, " :=-")
}

// cleanValue strips substrings belonging to other fields' patterns and
// labels, then collapses the leftover whitespace.
func (p *PostProcessor) cleanValue(field, value string) string {
	cleaned := value
	for _, c := range p.cleaners[field] {
		cleaned = c.re.ReplaceAllString(cleaned, c.repl)
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.Trim(cleaned, " :=-")
}
