package postcode

import (
	"strings"
	"unicode"
)

// NormalizeCompact returns the space-insensitive comparison key:
// uppercased with all whitespace removed. Idempotent.
func NormalizeCompact(raw string) string {
	b := strings.Builder{}
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// NormalizeSpaced returns the single-space comparison key: uppercased,
// trimmed, interior whitespace runs collapsed to one space. Reference
// alias columns that expect "SW1A 1AA" rather than "SW1A1AA" are probed
// with this form. Idempotent.
func NormalizeSpaced(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), " "))
}
