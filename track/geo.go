package track

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/twpayne/go-polyline"
)

// LatLon is a geographic coordinate in degrees.
type LatLon struct {
	Lat, Lon float64
}

// Point is a planar coordinate in metres, local to a Georeference's origin.
type Point struct {
	X, Y float64
}

// Georeference projects geographic coordinates onto a local plane about a
// fixed origin with an equirectangular approximation (latitude and
// longitude offsets scaled by the Earth's radius, longitude also by the
// cosine of the mean latitude); S2 is used for the antipodal check. This
// is accurate for the extents a single road network spans, and cheap to
// invert, unlike a full UTM pipeline.
type Georeference struct {
	origin          s2.LatLng
	originPt        s2.Point
	metersPerRadian float64
}

const earthRadiusMeters = 6371008.8

// NewGeoreference builds a projection centered at origin. Fails with
// NotGeoreferencedError if origin is degenerate (NaN, or latitude outside
// [-90, 90]).
func NewGeoreference(origin LatLon) (*Georeference, error) {
	if math.IsNaN(origin.Lat) || math.IsNaN(origin.Lon) ||
		origin.Lat < -90 || origin.Lat > 90 {
		return nil, &NotGeoreferencedError{Reason: "degenerate projection origin"}
	}
	ll := s2.LatLngFromDegrees(origin.Lat, origin.Lon)
	return &Georeference{
		origin:          ll,
		originPt:        s2.PointFromLatLng(ll),
		metersPerRadian: earthRadiusMeters,
	}, nil
}

// Project converts a geographic coordinate into local planar metres, x
// pointing east and y pointing north at the origin.
func (g *Georeference) Project(ll LatLon) (Point, error) {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lon) {
		return Point{}, &NotGeoreferencedError{Reason: "NaN coordinate"}
	}
	target := s2.LatLngFromDegrees(ll.Lat, ll.Lon)
	if g.origin.Distance(target).Radians() > math.Pi-1e-9 {
		return Point{}, &NotGeoreferencedError{Reason: "antipodal to projection origin"}
	}

	dLat := (target.Lat.Radians() - g.origin.Lat.Radians())
	midLat := (target.Lat.Radians() + g.origin.Lat.Radians()) / 2
	dLon := (target.Lng.Radians() - g.origin.Lng.Radians())

	y := dLat * g.metersPerRadian
	x := dLon * g.metersPerRadian * math.Cos(midLat)
	return Point{X: x, Y: y}, nil
}

// Unproject is the approximate inverse of Project, used only for diagnostics
// and test fixtures — the filter itself operates entirely in local metres.
func (g *Georeference) Unproject(p Point) LatLon {
	midLat := g.origin.Lat.Radians()
	lat := g.origin.Lat.Radians() + p.Y/g.metersPerRadian
	lon := g.origin.Lng.Radians() + p.X/(g.metersPerRadian*math.Cos(midLat))
	return LatLon{Lat: lat * 180 / math.Pi, Lon: lon * 180 / math.Pi}
}

// EncodePolyline encodes a sequence of local points as a Google polyline
// string, matching how road geometry is serialized elsewhere in this
// ecosystem.
func EncodePolyline(pts []Point) string {
	coords := make([][]float64, len(pts))
	for i, p := range pts {
		coords[i] = []float64{p.Y, p.X}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline decodes a Google polyline string into local points.
func DecodePolyline(s string) ([]Point, error) {
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}
	pts := make([]Point, len(coords))
	for i, c := range coords {
		pts[i] = Point{X: c[1], Y: c[0]}
	}
	return pts, nil
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// projectPointToSegment returns the foot of the perpendicular from p onto
// the segment [a, b], clamped to the segment, along with the fractional
// position t in [0, 1] and the distance from p to the foot.
func projectPointToSegment(p, a, b Point) (foot Point, t, d float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	segLenSq := dx*dx + dy*dy
	if segLenSq < 1e-18 {
		return a, 0, dist(p, a)
	}
	t = ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	foot = Point{X: a.X + t*dx, Y: a.Y + t*dy}
	return foot, t, dist(p, foot)
}
