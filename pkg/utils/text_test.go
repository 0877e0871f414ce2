package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain ascii untouched", input: "Romi wins contract", want: "Romi wins contract"},
		{name: "smart quotes", input: "“Romi” ‘wins’", want: `"Romi" 'wins'`},
		{name: "dashes and ellipsis", input: "US–Mexico — deal…", want: "US-Mexico - deal..."},
		{name: "control characters stripped", input: "line\x00one\x1ftwo", want: "lineonetwo"},
		{name: "non-breaking space", input: "R$ 500M", want: "R$ 500M"},
		{name: "non-ascii dropped", input: "Indústrias Romi", want: "Indstrias Romi"},
		{name: "surrounding whitespace trimmed", input: "  padded  ", want: "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.input))
		})
	}
}

func TestSanitizeText_Idempotent(t *testing.T) {
	input := "“Fagor” — new\x02 plant…"
	once := SanitizeText(input)
	assert.Equal(t, once, SanitizeText(once))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abcd", 2))
	assert.Equal(t, "abcd", Truncate("abcd", 0))
}
