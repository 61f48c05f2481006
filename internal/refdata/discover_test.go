package refdata

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalRef = "pcds,oseast1m,osnrth1m\nSW1A 1AA,100,200\n"

func TestDiscoverPicksMostRecentDate(t *testing.T) {
	dir := t.TempDir()
	writeRefFile(t, dir, "postcodes_2023-01-15.csv", minimalRef)
	want := writeRefFile(t, dir, "postcodes_2024-06-30.csv", minimalRef)
	writeRefFile(t, dir, "postcodes_2022-12-01.csv", minimalRef)

	got, err := Discover(dir, "postcodes_*.csv")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiscoverUndatedSortsLast(t *testing.T) {
	dir := t.TempDir()
	writeRefFile(t, dir, "postcodes_zzz.csv", minimalRef)
	want := writeRefFile(t, dir, "postcodes_2020-01-01.csv", minimalRef)

	got, err := Discover(dir, "postcodes_*.csv")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiscoverTieBreaksLexicographically(t *testing.T) {
	dir := t.TempDir()
	writeRefFile(t, dir, "a_postcodes_2024-01-01.csv", minimalRef)
	want := writeRefFile(t, dir, "b_postcodes_2024-01-01.csv", minimalRef)

	got, err := Discover(dir, "*postcodes_*.csv")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiscoverNoMatch(t *testing.T) {
	_, err := Discover(t.TempDir(), "*.csv")

	var loadErr *ReferenceLoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestLoadExplicitPathSkipsDiscovery(t *testing.T) {
	path := writeRefFile(t, t.TempDir(), "anything.csv", minimalRef)

	cols := Columns{Primary: "pcds", X: "oseast1m", Y: "osnrth1m"}
	idx, err := Load(LoadOptions{Path: path, Columns: cols})
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestLoadFallbackInvokedOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeRefFile(t, dir, "manual.csv", minimalRef)

	calls := 0
	cols := Columns{Primary: "pcds", X: "oseast1m", Y: "osnrth1m"}
	idx, err := Load(LoadOptions{
		Dir:     dir,
		Pattern: "nothing_matches_*.csv",
		Columns: cols,
		Fallback: func() (string, error) {
			calls++
			return path, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, idx.Len())
}

func TestLoadWithoutFallbackFails(t *testing.T) {
	_, err := Load(LoadOptions{
		Dir:     t.TempDir(),
		Pattern: "ref_*.csv",
		Columns: DefaultColumns(),
	})

	var loadErr *ReferenceLoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestLoadFallbackAfterUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	good := writeRefFile(t, dir, "manual.csv", minimalRef)

	calls := 0
	cols := Columns{Primary: "pcds", X: "oseast1m", Y: "osnrth1m"}
	idx, err := Load(LoadOptions{
		Path:    filepath.Join(dir, "absent.csv"),
		Columns: cols,
		Fallback: func() (string, error) {
			calls++
			return good, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, idx.Len())
}

func TestLoadSchemaMismatchNotRetried(t *testing.T) {
	dir := t.TempDir()
	bad := writeRefFile(t, dir, "bad.csv", "wrong,cols\n1,2\n")

	cols := Columns{Primary: "pcds", X: "oseast1m", Y: "osnrth1m"}
	_, err := Load(LoadOptions{
		Path:    bad,
		Columns: cols,
		Fallback: func() (string, error) {
			t.Fatal("fallback must not run for schema mismatches")
			return "", nil
		},
	})

	var schemaErr *SchemaMismatchError
	require.True(t, errors.As(err, &schemaErr))
}

func TestLoadFallbackErrorSurfacesDiscoveryError(t *testing.T) {
	_, err := Load(LoadOptions{
		Dir:     t.TempDir(),
		Pattern: "ref_*.csv",
		Columns: DefaultColumns(),
		Fallback: func() (string, error) {
			return "", errors.New("user cancelled")
		},
	})

	var loadErr *ReferenceLoadError
	require.True(t, errors.As(err, &loadErr))
}
