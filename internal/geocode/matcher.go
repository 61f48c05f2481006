package geocode

import (
	"github.com/postcode-geocoder/internal/postcode"
	"github.com/postcode-geocoder/internal/refdata"
)

// KeyForm records which normal form of the key produced a match, for
// diagnostic reproducibility.
type KeyForm string

const (
	KeyFormCompact KeyForm = "compact"
	KeyFormSpaced  KeyForm = "spaced"
)

// Row-level outcomes. These are recorded on the result and counted in
// the summary, never raised as errors.
const (
	ReasonNoExtract     = "no postcode extracted"
	ReasonNoMatch       = "no reference match"
	ReasonMissingSource = "missing source value"
)

// MatchResult is the outcome attached to one input row.
type MatchResult struct {
	Matched bool
	X       float64
	Y       float64
	Key     string  // normalized key that hit the index
	Form    KeyForm // which normal form the hit came through
	Reason  string  // set when Matched is false
}

// Match resolves a raw postcode string against the reference index. The
// space-insensitive compact form is probed first, the single-space form
// second; aliasing was flattened at index-build time so each probe is a
// single lookup. A miss is a terminal, reportable outcome, not an error.
func Match(raw string, idx *refdata.Index) MatchResult {
	compact := postcode.NormalizeCompact(raw)
	if rec, ok := idx.Lookup(compact); ok {
		return MatchResult{Matched: true, X: rec.X, Y: rec.Y, Key: compact, Form: KeyFormCompact}
	}

	spaced := postcode.NormalizeSpaced(raw)
	if spaced != compact {
		if rec, ok := idx.Lookup(spaced); ok {
			return MatchResult{Matched: true, X: rec.X, Y: rec.Y, Key: spaced, Form: KeyFormSpaced}
		}
	}

	return MatchResult{Reason: ReasonNoMatch}
}

// MatchCandidate resolves an extracted candidate. An empty candidate
// means no postcode was present in the source text.
func MatchCandidate(c postcode.Candidate, idx *refdata.Index) MatchResult {
	if c.Empty() {
		return MatchResult{Reason: ReasonNoExtract}
	}
	return Match(c.Raw, idx)
}
