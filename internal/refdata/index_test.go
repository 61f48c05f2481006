package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postcode-geocoder/internal/postcode"
)

func TestIndexRoundTrip(t *testing.T) {
	idx := NewIndex()
	rec := &Record{Primary: "SW1A 1AA", Aliases: []string{"SW1A1AA"}, X: 100, Y: 200}
	idx.Add(rec)

	// Every alias spelling resolves through its normalized form to the
	// exact record it was inserted under.
	for _, key := range []string{"SW1A 1AA", "SW1A1AA", "sw1a 1aa", "sw1a  1aa"} {
		got, ok := idx.Lookup(postcode.NormalizeCompact(key))
		require.True(t, ok, "compact lookup of %q", key)
		assert.Same(t, rec, got)
	}

	got, ok := idx.Lookup(postcode.NormalizeSpaced("sw1a 1aa"))
	require.True(t, ok)
	assert.Same(t, rec, got)

	_, ok = idx.Lookup("EC1A1BB")
	assert.False(t, ok)
}

func TestIndexTrimsKeys(t *testing.T) {
	idx := NewIndex()
	idx.Add(&Record{Primary: "  PO8 0AB  ", X: 1, Y: 2})

	_, ok := idx.Lookup("PO80AB")
	assert.True(t, ok)
}

func TestIndexDuplicatePolicy(t *testing.T) {
	idx := NewIndex()
	first := &Record{Primary: "GU32 3AD", X: 1, Y: 1}
	second := &Record{Primary: "GU32 3AD", X: 9, Y: 9}
	idx.Add(first)
	idx.Add(second)

	// First-seen record wins; the conflicting alias is counted.
	got, ok := idx.Lookup("GU323AD")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Greater(t, idx.Conflicts(), 0)
	assert.Equal(t, 2, idx.Len())
}

func TestIndexSameRecordBothFormsNoConflict(t *testing.T) {
	idx := NewIndex()
	idx.Add(&Record{Primary: "SW1A 1AA", Aliases: []string{"SW1A1AA", "SW1A  1AA"}, X: 1, Y: 1})

	// Three spellings of one record collapse onto the same normal forms
	// without being treated as conflicts.
	assert.Equal(t, 0, idx.Conflicts())
	assert.Equal(t, 2, idx.AliasCount()) // SW1A1AA and SW1A 1AA
}

func TestRecordKeys(t *testing.T) {
	rec := &Record{Primary: "PO8 0AB", Aliases: []string{"PO80AB", "PO8  0AB"}}
	assert.Equal(t, []string{"PO8 0AB", "PO80AB", "PO8  0AB"}, rec.Keys())
}
