package textproc

import (
	"regexp"
	"strings"
)

var (
	reCR         = regexp.MustCompile(`\r\n?`)
	reWhitespace = regexp.MustCompile(`[\s\x{00A0}]+`)
)

// Normalize folds line-break variants and collapses every whitespace run
// (including newlines) to a single space, trimming the ends. Idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCR.ReplaceAllString(s, "\n")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
