package refdata

import (
	"strings"

	"github.com/postcode-geocoder/internal/postcode"
)

// Record is one row of the reference table: a primary postcode spelling,
// up to two legacy alias spellings, and a coordinate pair. All alias
// keys on one record denote the same physical location. Records are
// immutable once loaded.
type Record struct {
	Primary string
	Aliases []string
	X       float64 // easting or longitude
	Y       float64 // northing or latitude
}

// Keys returns the primary spelling and every alias, in load order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, 1+len(r.Aliases))
	keys = append(keys, r.Primary)
	keys = append(keys, r.Aliases...)
	return keys
}

// Index is the flattened alias-to-record mapping. Every alias spelling
// of every record is inserted under both its compact and single-space
// normal forms, so a query is a single probe regardless of which
// reference column the caller's spelling came from. Built once before
// any row processing starts and never mutated afterward, so concurrent
// readers need no locking.
type Index struct {
	byKey     map[string]*Record
	records   []*Record
	conflicts int
	skipped   int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byKey: make(map[string]*Record)}
}

// Add inserts a record under all normal forms of all its alias keys.
// Keys are trimmed before normalization; the source reference data is
// known to contain padding inconsistencies. Duplicate policy: the
// first-seen record wins, later conflicting aliases are counted and
// never override.
func (idx *Index) Add(rec *Record) {
	idx.records = append(idx.records, rec)
	for _, key := range rec.Keys() {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		idx.insert(postcode.NormalizeCompact(key), rec)
		idx.insert(postcode.NormalizeSpaced(key), rec)
	}
}

func (idx *Index) insert(normalized string, rec *Record) {
	if normalized == "" {
		return
	}
	if existing, ok := idx.byKey[normalized]; ok {
		if existing != rec {
			idx.conflicts++
		}
		return
	}
	idx.byKey[normalized] = rec
}

// Lookup probes the index with an already-normalized key. Exact match
// only: no fuzzy matching, no prefix matching.
func (idx *Index) Lookup(normalizedKey string) (*Record, bool) {
	rec, ok := idx.byKey[normalizedKey]
	return rec, ok
}

// Records returns every loaded record in load order.
func (idx *Index) Records() []*Record {
	return idx.records
}

// Len returns the number of loaded records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// AliasCount returns the number of distinct normalized keys in the index.
func (idx *Index) AliasCount() int {
	return len(idx.byKey)
}

// Conflicts returns how many alias keys collided with an earlier record
// during the build. Collisions are rare but possible across
// differently-sourced alias columns.
func (idx *Index) Conflicts() int {
	return idx.conflicts
}

// Skipped returns how many source rows were dropped during the load for
// unparsable coordinates or a blank primary key.
func (idx *Index) Skipped() int {
	return idx.skipped
}
