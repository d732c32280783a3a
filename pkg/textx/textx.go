// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeTerms trims every term, drops empty ones and removes
// case-insensitive duplicates. The first spelling seen is kept, and order is
// preserved. The result is never nil.
func NormalizeTerms(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.Join(strings.Fields(SanitizeText(t)), " ")
		if t == "" {
			continue
		}
		k := Fold(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Fold returns the comparison key used for skills, interests and locations.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Snippet truncates s to at most n bytes on a rune boundary, appending "..."
// when something was cut.
func Snippet(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
