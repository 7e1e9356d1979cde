package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already clean", "reference: PROD-2024-789", "reference: PROD-2024-789"},
		{"collapses spaces", "a   b\t\tc", "a b c"},
		{"crlf and newlines", "ligne1\r\nligne2\rligne3\nligne4", "ligne1 ligne2 ligne3 ligne4"},
		{"non-breaking space", "prix : 89,99", "prix : 89,99"},
		{"trims ends", "  Titre: Chaise \n", "Titre: Chaise"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Désignation:  Chaise\r\nRéférence: PROD-2024-789",
		"  a b  ",
		"déjà propre",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}
