package recognize

import (
	"sort"
	"strings"

	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/entity"
	"github.com/mgaillard/scandoc/internal/textproc"
)

// Scoring model: synonym presence and pattern presence are independent
// signals; label-aligned pattern matches earn an extra boost per pattern.
const (
	synonymScore    = 0.4
	patternScore    = 0.6
	labelMatchBoost = 0.3
)

// Recognizer computes per-field recognition confidence over corrected text.
// Built once from the catalog, safe for concurrent use.
type Recognizer struct {
	fields   []catalog.FieldConfig
	synonyms map[string][]synMatcher // field name -> matchers
}

type synMatcher struct {
	word    string
	matcher *textproc.WordMatcher
}

// NewRecognizer compiles whole-word matchers for every synonym and for the
// canonical name itself (corrected text carries canonical labels).
func NewRecognizer(fields []catalog.FieldConfig) *Recognizer {
	r := &Recognizer{fields: fields, synonyms: make(map[string][]synMatcher)}
	for _, f := range fields {
		words := append([]string{f.Name}, f.Synonyms...)
		seen := make(map[string]struct{}, len(words))
		for _, w := range words {
			lw := strings.ToLower(w)
			if _, dup := seen[lw]; dup {
				continue
			}
			seen[lw] = struct{}{}
			r.synonyms[f.Name] = append(r.synonyms[f.Name], synMatcher{
				word:    w,
				matcher: textproc.CompileWord(w),
			})
		}
	}
	return r
}

// Recognize produces one RecognitionResult per catalog field, sorted by
// descending confidence. Results are diagnostic and feed the aggregator.
func (r *Recognizer) Recognize(text string) []entity.RecognitionResult {
	results := make([]entity.RecognitionResult, 0, len(r.fields))
	for _, f := range r.fields {
		res := entity.RecognitionResult{FieldName: f.Name}

		for _, m := range r.synonyms[f.Name] {
			if m.matcher.Match(text) {
				res.MatchedSynonyms = append(res.MatchedSynonyms, m.word)
			}
		}

		conf := 0.0
		if len(res.MatchedSynonyms) > 0 {
			conf += synonymScore
		}

		anyPattern := false
		for _, p := range f.Patterns {
			pm := entity.PatternMatch{Priority: p.Priority}
			if loc := p.Regexp.FindString(text); loc != "" {
				pm.Matched = true
				pm.MatchedText = loc
				anyPattern = true
				if labelAligned(loc, p.Example) {
					pm.ConfidenceBoost = labelMatchBoost
					conf += labelMatchBoost
				}
			}
			res.PatternMatches = append(res.PatternMatches, pm)
		}
		if anyPattern {
			conf += patternScore
		}
		if conf > 1.0 {
			conf = 1.0
		}
		res.Confidence = conf
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

// labelAligned reports whether the matched span's label token (text before
// the first ':') is a substring of the pattern example's label token.
// Examples without a ':' yield no boost.
func labelAligned(matched, example string) bool {
	mt := labelToken(matched)
	et := labelToken(example)
	if mt == "" || et == "" {
		return false
	}
	return strings.Contains(et, mt)
}

func labelToken(s string) string {
	i := strings.Index(s, ":")
	if i < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s[:i]))
}
