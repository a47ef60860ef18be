// Package normalize provides lossy text canonicalization used to compare
// transcript fragments. Normalized text is never displayed; display text
// keeps the engine's original casing and punctuation.
package normalize

import "strings"

// Normalize lowercases s, replaces every character outside [a-z0-9] with a
// space, collapses whitespace runs, and trims. Idempotent.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// EndsWith reports whether base ends with suffix once both are normalized.
// A suffix that normalizes to nothing is vacuously contained.
func EndsWith(base, suffix string) bool {
	tail := Normalize(suffix)
	if tail == "" {
		return true
	}
	return strings.HasSuffix(Normalize(base), tail)
}
