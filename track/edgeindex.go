package track

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// NearbyEdgeIndex answers "which edges are near this point", the spatial
// query the sampler needs to pick a transfer set when a vehicle is off-road
// (spec §4.7). This is an external collaborator the core does not specify;
// RTreeEdgeIndex below is a concrete reference implementation so the
// contract has at least one real, exercised implementation in this repo.
type NearbyEdgeIndex interface {
	// NearbyEdges returns up to k edges near p, nearest first. May return
	// fewer than k, including none.
	NearbyEdges(p Point, k int) []Edge
}

const rtreeTolerance = 25.0 // metres; half-width of each indexed edge's bounding box pad

type edgeLeaf struct {
	edge Edge
	rect rtreego.Rect
}

func (l *edgeLeaf) Bounds() rtreego.Rect { return l.rect }

// RTreeEdgeIndex indexes edges by their endpoint-to-endpoint bounding box,
// padded by rtreeTolerance, using an R-tree for nearest-neighbour queries —
// the same snap-to-road pattern used elsewhere in this ecosystem
// (nearest-neighbours then project).
type RTreeEdgeIndex struct {
	tree *rtreego.Rtree
}

// NewRTreeEdgeIndex builds an index over edges. Edges with degenerate
// (zero-length) geometry are skipped.
func NewRTreeEdgeIndex(edges []Edge) *RTreeEdgeIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, e := range edges {
		rect := edgeBoundingRect(e)
		if rect == nil {
			continue
		}
		tree.Insert(&edgeLeaf{edge: e, rect: *rect})
	}
	return &RTreeEdgeIndex{tree: tree}
}

func edgeBoundingRect(e Edge) *rtreego.Rect {
	if e.Length() < 1e-9 {
		return nil
	}
	a, b := e.Start(), e.End()
	minX, maxX := math.Min(a.X, b.X)-rtreeTolerance, math.Max(a.X, b.X)+rtreeTolerance
	minY, maxY := math.Min(a.Y, b.Y)-rtreeTolerance, math.Max(a.Y, b.Y)+rtreeTolerance
	widthX := maxX - minX
	widthY := maxY - minY
	if widthX < 1e-9 || widthY < 1e-9 {
		return nil
	}
	rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{widthX, widthY})
	if err != nil {
		return nil
	}
	return &rect
}

func (idx *RTreeEdgeIndex) NearbyEdges(p Point, k int) []Edge {
	if k <= 0 {
		return nil
	}
	query := rtreego.Point{p.X, p.Y}
	results := idx.tree.NearestNeighbors(k, query)
	out := make([]Edge, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, r.(*edgeLeaf).edge)
	}
	return out
}
