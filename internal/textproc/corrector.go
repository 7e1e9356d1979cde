package textproc

import (
	"sort"
	"strings"

	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/entity"
)

// synonym match trust recorded on each correction entry.
const correctionConfidence = 0.9

// Corrector rewrites recognized synonyms to their canonical field names.
// Built once from the catalog, safe for concurrent use.
type Corrector struct {
	rules []rule
}

type rule struct {
	matcher   *WordMatcher
	synonym   string
	canonical string
}

func NewCorrector(fields []catalog.FieldConfig) *Corrector {
	c := &Corrector{}
	for _, f := range fields {
		for _, syn := range f.Synonyms {
			if syn == f.Name {
				// canonical name standing for itself is not a correction
				continue
			}
			c.rules = append(c.rules, rule{
				matcher:   CompileWord(syn),
				synonym:   syn,
				canonical: f.Name,
			})
		}
	}
	return c
}

type span struct {
	start, end int
	original   string
	rule       rule
}

// Correct scans the whole text for every synonym, then rewrites the collected
// spans rightmost-first so earlier offsets stay valid while splicing. One
// correction entry is appended per rewrite; a span is never rewritten twice.
func (c *Corrector) Correct(text string) (string, []entity.Correction) {
	var spans []span
	for _, r := range c.rules {
		for _, loc := range r.matcher.Find(text) {
			spans = append(spans, span{
				start:    loc[0],
				end:      loc[1],
				original: text[loc[0]:loc[1]],
				rule:     r,
			})
		}
	}
	if len(spans) == 0 {
		return text, nil
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start > spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var corrections []entity.Correction
	lastStart := len(text) + 1
	for _, sp := range spans {
		if sp.end > lastStart {
			// overlaps a span already rewritten to its right
			continue
		}
		if sp.original == sp.rule.canonical {
			continue
		}
		tags := []string{"whole-word"}
		if rest := strings.TrimLeft(text[sp.end:], " "); strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "=") {
			tags = append(tags, "label")
		}
		text = text[:sp.start] + sp.rule.canonical + text[sp.end:]
		lastStart = sp.start
		corrections = append(corrections, entity.Correction{
			OriginalText:   sp.original,
			CorrectedField: sp.rule.canonical,
			SourceField:    sp.rule.synonym,
			Confidence:     correctionConfidence,
			ContextTags:    tags,
		})
	}
	return text, corrections
}
