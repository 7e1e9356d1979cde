package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reReference = regexp.MustCompile(`^(?i:PROD)-\d{4}-\d{3,}$`)
	reQuantity  = regexp.MustCompile(`^\d+$`)
	rePrice     = regexp.MustCompile(`^\d+[.,]\d{2}$`)
)

const maxNumericValue = 1_000_000

// ValidTitle accepts titles of at least 3 characters that are not the
// sentinel and carry no spill-over from neighboring fields.
func ValidTitle(s string) bool {
	if len(s) < 3 || s == TitleNotDetected {
		return false
	}
	if strings.Contains(s, "=") {
		return false
	}
	if strings.Contains(s, "reference") ||
		strings.Contains(s, "description") ||
		strings.Contains(s, "PROD-") {
		return false
	}
	return true
}

// ValidReference accepts exactly PROD-NNNN-NNN+ codes, case-insensitively.
func ValidReference(s string) bool {
	return reReference.MatchString(s)
}

// ValidDescription accepts free text that is not a product code.
func ValidDescription(s string) bool {
	return len(s) >= 3 && !strings.HasPrefix(s, "PROD-")
}

// ValidQuantity accepts all-digit integers in (0, 1_000_000].
func ValidQuantity(s string) bool {
	if !reQuantity.MatchString(s) {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n > 0 && n <= maxNumericValue
}

// ValidPrice accepts decimal amounts with exactly two fraction digits,
// dot or comma separated, in (0, 1_000_000].
func ValidPrice(s string) bool {
	if !rePrice.MatchString(s) {
		return false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return false
	}
	return v > 0 && v <= maxNumericValue
}

// ValidNotes accepts any text of at least 3 characters.
func ValidNotes(s string) bool {
	return len(s) >= 3
}
