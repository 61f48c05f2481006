package postcode

import (
	"regexp"
)

// UK postcode grammar: one or two area letters, a digit, an optional
// district letter or digit, then the inward part of digit + two letters.
// Source data is inconsistently formatted, so up to two interior spaces
// are accepted. GIR 0AA is the non-geographic sentinel kept as a fixed
// exception.
var rePostcode = regexp.MustCompile(`(?i)\b(GIR[ ]{0,2}0AA|[A-Z]{1,2}[0-9][A-Z0-9]?[ ]{0,2}[0-9][A-Z]{2})\b`)

// Candidate is a postcode-shaped substring pulled out of a source field.
// The zero value means no postcode was found, which is a normal outcome
// for free text, not an error.
type Candidate struct {
	Raw     string // substring as it appeared in the source text
	Compact string // uppercased, all whitespace removed
	Spaced  string // uppercased, interior whitespace collapsed to one space
}

// Empty reports whether extraction found nothing.
func (c Candidate) Empty() bool {
	return c.Raw == ""
}

// Extract scans text for the leftmost substring matching the postcode
// grammar and returns it as a Candidate. Text with no postcode-shaped
// substring yields an empty Candidate.
func Extract(text string) Candidate {
	m := rePostcode.FindString(text)
	if m == "" {
		return Candidate{}
	}
	return newCandidate(m)
}

// ExtractAll returns every non-overlapping grammar match in text, left to
// right. Callers that need more than the first postcode in a field
// iterate over this instead of calling Extract.
func ExtractAll(text string) []Candidate {
	matches := rePostcode.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, newCandidate(m))
	}
	return candidates
}

// Valid reports whether the whole of s is a single grammar-conforming
// postcode, ignoring case and interior spacing.
func Valid(s string) bool {
	c := Extract(s)
	return !c.Empty() && NormalizeCompact(s) == c.Compact
}

func newCandidate(raw string) Candidate {
	return Candidate{
		Raw:     raw,
		Compact: NormalizeCompact(raw),
		Spaced:  NormalizeSpaced(raw),
	}
}
