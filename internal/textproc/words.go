package textproc

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// WordMatcher finds case-insensitive whole-word occurrences. \b in Go
// regexps is ASCII-only, so boundaries are checked manually on the runes
// around each hit; accented synonyms match correctly and adjacent
// occurrences are never skipped.
type WordMatcher struct {
	word string
	re   *regexp.Regexp
}

func CompileWord(word string) *WordMatcher {
	return &WordMatcher{
		word: word,
		re:   regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word)),
	}
}

// Find returns [start,end) byte offsets of every whole-word occurrence.
func (m *WordMatcher) Find(text string) [][2]int {
	var out [][2]int
	for _, loc := range m.re.FindAllStringIndex(text, -1) {
		if wordCharBefore(text, loc[0]) || wordCharAfter(text, loc[1]) {
			continue
		}
		out = append(out, [2]int{loc[0], loc[1]})
	}
	return out
}

// Match reports whether text contains the word as a whole word.
func (m *WordMatcher) Match(text string) bool {
	return len(m.Find(text)) > 0
}

func wordCharBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordChar(r)
}

func wordCharAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordChar(r)
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
