package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postcode-geocoder/internal/refdata"
)

func buildGridIndex() *Index {
	ref := refdata.NewIndex()
	ref.Add(&refdata.Record{Primary: "PO8 0AB", X: 0, Y: 0})
	ref.Add(&refdata.Record{Primary: "GU32 3AD", X: 300, Y: 400})
	ref.Add(&refdata.Record{Primary: "SW1A 1AA", X: 5000, Y: 5000})
	return Build(ref, false)
}

func TestNearestPlanar(t *testing.T) {
	idx := buildGridIndex()
	require.Equal(t, 3, idx.Len())

	results := idx.Nearest(10, 10, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "PO8 0AB", results[0].Record.Primary)
	assert.Equal(t, "GU32 3AD", results[1].Record.Primary)
	assert.InDelta(t, 14.14, results[0].Distance, 0.1)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestNearestZeroK(t *testing.T) {
	idx := buildGridIndex()
	assert.Nil(t, idx.Nearest(0, 0, 0))
}

func TestWithinPlanar(t *testing.T) {
	idx := buildGridIndex()

	// 300,400 is exactly 500 units from the origin; 5000,5000 is far
	// outside the radius.
	results := idx.Within(0, 0, 600)
	require.Len(t, results, 2)
	assert.Equal(t, "PO8 0AB", results[0].Record.Primary)
	assert.Equal(t, "GU32 3AD", results[1].Record.Primary)
	assert.InDelta(t, 500, results[1].Distance, 0.01)

	near := idx.Within(0, 0, 100)
	require.Len(t, near, 1)
	assert.Equal(t, "PO8 0AB", near[0].Record.Primary)

	assert.Nil(t, idx.Within(0, 0, 0))
}

func TestWithinLatLon(t *testing.T) {
	ref := refdata.NewIndex()
	// Westminster and the City, roughly 4 km apart.
	ref.Add(&refdata.Record{Primary: "SW1A 1AA", X: -0.1419, Y: 51.5010})
	ref.Add(&refdata.Record{Primary: "EC1A 1BB", X: -0.0977, Y: 51.5200})
	idx := Build(ref, true)

	// From Westminster, a 1 km circle holds only Westminster.
	results := idx.Within(-0.1419, 51.5010, 1000)
	require.Len(t, results, 1)
	assert.Equal(t, "SW1A 1AA", results[0].Record.Primary)

	// A 10 km circle holds both, nearest first.
	results = idx.Within(-0.1419, 51.5010, 10000)
	require.Len(t, results, 2)
	assert.Equal(t, "SW1A 1AA", results[0].Record.Primary)
	assert.Greater(t, results[1].Distance, 3000.0)
	assert.Less(t, results[1].Distance, 5000.0)
}

func TestNearestLatLonDistanceInMetres(t *testing.T) {
	ref := refdata.NewIndex()
	ref.Add(&refdata.Record{Primary: "SW1A 1AA", X: -0.1419, Y: 51.5010})
	idx := Build(ref, true)

	results := idx.Nearest(-0.1419, 51.5010, 1)
	require.Len(t, results, 1)
	assert.InDelta(t, 0, results[0].Distance, 1)
}
