package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var parenSuffix = regexp.MustCompile(`\s*\(.*?\)`)

// NormalizeSearchName strips parenthesized qualifiers from a competitor name
// so searches use the form the press actually writes.
func NormalizeSearchName(name string) string {
	return strings.TrimSpace(parenSuffix.ReplaceAllString(name, ""))
}

var punctReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
	"…", "...",
	" ", " ",
)

// SanitizeText strips control characters and normalizes smart punctuation to
// plain ASCII equivalents. Non-ASCII runes that survive normalization are
// dropped so the result is safe for the durable store and the status file.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	text = punctReplacer.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsControl(r) {
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
