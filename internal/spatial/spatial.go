package spatial

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/umahmood/haversine"

	"github.com/postcode-geocoder/internal/refdata"
)

// Point rects need a non-zero extent for the r-tree.
const pointExtent = 1e-6

// metres per degree of latitude
const metresPerDegree = 111320.0

// Result is one reference record returned by a spatial query, with its
// distance from the query point in metres.
type Result struct {
	Record   *refdata.Record
	Distance float64
}

type item struct {
	rect rtreego.Rect
	rec  *refdata.Record
}

func (i *item) Bounds() rtreego.Rect {
	return i.rect
}

// Index is an r-tree over the reference records' coordinates. LatLon
// selects great-circle distance (X = longitude, Y = latitude); grid data
// such as OS easting/northing uses planar distance in coordinate units.
type Index struct {
	tree   *rtreego.Rtree
	latlon bool
}

// Build constructs the spatial index from a fully built reference index.
// Like the alias index, it is immutable after build.
func Build(ref *refdata.Index, latlon bool) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for _, rec := range ref.Records() {
		rect, err := rtreego.NewRect(rtreego.Point{rec.X, rec.Y}, []float64{pointExtent, pointExtent})
		if err != nil {
			continue
		}
		tree.Insert(&item{rect: rect, rec: rec})
	}
	return &Index{tree: tree, latlon: latlon}
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	return idx.tree.Size()
}

// Nearest returns the k reference records closest to (x, y), nearest
// first.
func (idx *Index) Nearest(x, y float64, k int) []Result {
	if k <= 0 {
		return nil
	}
	neighbors := idx.tree.NearestNeighbors(k, rtreego.Point{x, y})

	results := make([]Result, 0, len(neighbors))
	for _, n := range neighbors {
		if n == nil {
			continue
		}
		it := n.(*item)
		results = append(results, Result{Record: it.rec, Distance: idx.distance(x, y, it.rec)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	return results
}

// Within returns every reference record within radius metres of (x, y),
// nearest first. The r-tree narrows to a bounding box, then the exact
// distance filters it to a circle, as in the radius search this index is
// modelled on.
func (idx *Index) Within(x, y, radius float64) []Result {
	if radius <= 0 {
		return nil
	}

	dx, dy := radius, radius
	if idx.latlon {
		dy = radius / metresPerDegree
		dx = dy
		if c := math.Cos(y * math.Pi / 180); c > 0.01 {
			dx = dy / c
		}
	}

	rect, err := rtreego.NewRect(rtreego.Point{x - dx, y - dy}, []float64{2 * dx, 2 * dy})
	if err != nil {
		return nil
	}

	var results []Result
	for _, n := range idx.tree.SearchIntersect(rect) {
		it := n.(*item)
		d := idx.distance(x, y, it.rec)
		if d <= radius {
			results = append(results, Result{Record: it.rec, Distance: d})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	return results
}

func (idx *Index) distance(x, y float64, rec *refdata.Record) float64 {
	if idx.latlon {
		_, km := haversine.Distance(
			haversine.Coord{Lat: y, Lon: x},
			haversine.Coord{Lat: rec.Y, Lon: rec.X},
		)
		return km * 1000
	}
	return math.Hypot(rec.X-x, rec.Y-y)
}
