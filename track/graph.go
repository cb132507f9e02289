package track

import (
	"math"
	"sort"
)

// Edge is a read-only view onto an edge of the road network, or the
// EmptyEdge sentinel denoting "off-road". Equality is by identity: compare
// by ID (as edgeIsIn and PathEdge.sameEdge do), never with ==, since two
// *RoadEdge values could in principle share field values.
type Edge interface {
	// ID is a stable numeric identifier, unique among non-empty edges.
	ID() int64
	// Length is the edge's total length in metres.
	Length() float64
	// Start, End are the edge's endpoints in local planar metres.
	Start() Point
	End() Point
	// PointAt returns the point at along-edge distance d from Start,
	// clamped to [0, Length()].
	PointAt(d float64) Point
	// Tangent returns the unit tangent vector at along-edge distance d.
	Tangent(d float64) (x, y float64)
	// Project returns the foot of the perpendicular from p onto the edge's
	// geometry, expressed as an along-edge distance, plus the perpendicular
	// distance from p to that foot.
	Project(p Point) (along, perpDist float64)
	// IsEmpty reports whether this is the EmptyEdge sentinel.
	IsEmpty() bool
}

// emptyEdge is the sole implementation of the EmptyEdge sentinel.
type emptyEdge struct{}

func (emptyEdge) ID() int64                            { return -1 }
func (emptyEdge) Length() float64                      { return 0 }
func (emptyEdge) Start() Point                          { return Point{} }
func (emptyEdge) End() Point                            { return Point{} }
func (emptyEdge) PointAt(float64) Point                 { return Point{} }
func (emptyEdge) Tangent(float64) (float64, float64)    { return 0, 0 }
func (emptyEdge) Project(Point) (float64, float64)      { return 0, 0 }
func (emptyEdge) IsEmpty() bool                         { return true }

// EmptyEdge is the shared singleton denoting off-road motion.
var EmptyEdge Edge = emptyEdge{}

// RoadEdge is a concrete edge backed by a polyline. Geometry is stored as
// a point list and exchanged as an encoded polyline via Encode and
// NewEdgeFromPolyline (matching the convention the rest of this ecosystem
// uses for road geometry); PointAt/Tangent/Project
// interpolate linearly within each polyline segment.
type RoadEdge struct {
	id     int64
	pts    []Point
	segLen []float64 // cumulative length from pts[0] to pts[i], i.e. to the start of segment i
	length float64
}

// NewRoadEdge builds an edge from an ordered polyline of at least two
// points.
func NewRoadEdge(id int64, pts []Point) *RoadEdge {
	if len(pts) < 2 {
		panic("track: RoadEdge requires at least two points")
	}
	segLen := make([]float64, len(pts))
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += dist(pts[i-1], pts[i])
		segLen[i] = total
	}
	return &RoadEdge{id: id, pts: append([]Point(nil), pts...), segLen: segLen, length: total}
}

// NewEdgeFromPolyline decodes an encoded polyline string into a RoadEdge.
func NewEdgeFromPolyline(id int64, encoded string) (*RoadEdge, error) {
	pts, err := DecodePolyline(encoded)
	if err != nil {
		return nil, err
	}
	return NewRoadEdge(id, pts), nil
}

// Encode returns the edge's geometry as an encoded polyline string.
func (e *RoadEdge) Encode() string { return EncodePolyline(e.pts) }

func (e *RoadEdge) ID() int64       { return e.id }
func (e *RoadEdge) Length() float64 { return e.length }
func (e *RoadEdge) Start() Point    { return e.pts[0] }
func (e *RoadEdge) End() Point      { return e.pts[len(e.pts)-1] }
func (e *RoadEdge) IsEmpty() bool   { return false }

// segmentAt returns the index of the segment containing along-edge
// distance d, clamped to the valid range.
func (e *RoadEdge) segmentAt(d float64) int {
	if d <= 0 {
		return 0
	}
	if d >= e.length {
		return len(e.pts) - 2
	}
	i := sort.SearchFloat64s(e.segLen, d)
	if i == 0 {
		return 0
	}
	if i >= len(e.pts) {
		i = len(e.pts) - 1
	}
	return i - 1
}

func (e *RoadEdge) PointAt(d float64) Point {
	d = clamp(d, 0, e.length)
	i := e.segmentAt(d)
	segStart := e.segLen[i]
	a, b := e.pts[i], e.pts[i+1]
	segLen := dist(a, b)
	if segLen < 1e-12 {
		return a
	}
	t := (d - segStart) / segLen
	return Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
}

func (e *RoadEdge) Tangent(d float64) (float64, float64) {
	d = clamp(d, 0, e.length)
	i := e.segmentAt(d)
	a, b := e.pts[i], e.pts[i+1]
	dx, dy := b.X-a.X, b.Y-a.Y
	n := dist(a, b)
	if n < 1e-12 {
		return 1, 0
	}
	return dx / n, dy / n
}

func (e *RoadEdge) Project(p Point) (along, perpDist float64) {
	best := math.MaxFloat64
	bestAlong := 0.0
	for i := 0; i < len(e.pts)-1; i++ {
		a, b := e.pts[i], e.pts[i+1]
		foot, t, d := projectPointToSegment(p, a, b)
		_ = foot
		if d < best {
			best = d
			segLen := dist(a, b)
			bestAlong = e.segLen[i] + t*segLen
		}
	}
	return bestAlong, best
}

// Graph is read-only access to the road network's adjacency structure.
// Implementations are expected to be safely shareable across vehicles
// (spec §5): no operation here mutates the graph.
type Graph interface {
	// Outgoing returns the edges reachable by continuing forward from e's
	// end. May be empty (dead end).
	Outgoing(e Edge) []Edge
	// Incoming returns the edges that lead into e's start. May be empty.
	Incoming(e Edge) []Edge
}

// AdjacencyGraph is a simple in-memory Graph backed by explicit adjacency
// lists, suitable for tests and the demo CLI.
type AdjacencyGraph struct {
	out map[int64][]Edge
	in  map[int64][]Edge
}

// NewAdjacencyGraph builds an empty graph.
func NewAdjacencyGraph() *AdjacencyGraph {
	return &AdjacencyGraph{out: map[int64][]Edge{}, in: map[int64][]Edge{}}
}

// Connect records that to is reachable by continuing forward from from.
func (g *AdjacencyGraph) Connect(from, to Edge) {
	g.out[from.ID()] = append(g.out[from.ID()], to)
	g.in[to.ID()] = append(g.in[to.ID()], from)
}

func (g *AdjacencyGraph) Outgoing(e Edge) []Edge { return g.out[e.ID()] }
func (g *AdjacencyGraph) Incoming(e Edge) []Edge { return g.in[e.ID()] }

// edgeIsIn reports whether needle appears in haystack by ID.
func edgeIsIn(needle Edge, haystack []Edge) bool {
	for _, e := range haystack {
		if e.ID() == needle.ID() {
			return true
		}
	}
	return false
}
