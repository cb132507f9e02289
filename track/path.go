package track

// Path is an immutable ordered sequence of contiguous PathEdges with
// cumulative travelled distance (spec §3, §4.3). An empty path represents
// off-road motion.
type Path struct {
	edges         []*PathEdge
	totalDistance float64
}

// NewPath validates contiguity and direction invariants and builds a Path.
// edges must be ordered in travel order; edges[0].D0 must be 0 and
// subsequent D0 values must equal the signed cumulative length in a single
// direction.
func NewPath(g Graph, edges []*PathEdge, totalDistance float64) (*Path, error) {
	if len(edges) == 0 {
		return &Path{}, nil
	}
	if edges[0].D0 != 0 {
		return nil, &GraphInconsistencyError{Reason: "path does not start at d0=0"}
	}

	var direction float64
	for i := 1; i < len(edges); i++ {
		prev, cur := edges[i-1], edges[i]
		if !prev.E.IsEmpty() && !cur.E.IsEmpty() {
			if !edgeIsIn(cur.E, g.Outgoing(prev.E)) && !edgeIsIn(cur.E, g.Incoming(prev.E)) && prev.E.ID() != cur.E.ID() {
				return nil, &GraphInconsistencyError{Reason: "consecutive path edges are not adjacent"}
			}
		}
		delta := cur.D0 - prev.D0
		if delta == 0 {
			continue
		}
		sgn := sign(delta)
		if direction == 0 {
			direction = sgn
		} else if sgn != direction {
			return nil, &GraphInconsistencyError{Reason: "path changes travel direction"}
		}
	}

	return &Path{edges: append([]*PathEdge(nil), edges...), totalDistance: totalDistance}, nil
}

// Edges returns the path's edges in travel order. Callers must not mutate
// the returned slice.
func (p *Path) Edges() []*PathEdge { return p.edges }

// IsEmpty reports whether the path has no edges (off-road).
func (p *Path) IsEmpty() bool { return len(p.edges) == 0 }

// TotalDistance returns the signed cumulative travelled distance.
func (p *Path) TotalDistance() float64 { return p.totalDistance }

// Last returns the final PathEdge, or EmptyPathEdge if the path is empty.
func (p *Path) Last() *PathEdge {
	if len(p.edges) == 0 {
		return EmptyPathEdge
	}
	return p.edges[len(p.edges)-1]
}

// EdgeContaining returns the PathEdge whose interval [D0, D0+length]
// covers along-path distance s, or nil if none does.
func (p *Path) EdgeContaining(s float64) *PathEdge {
	for _, pe := range p.edges {
		if pe.withinExtent(s) {
			return pe
		}
	}
	return nil
}

// Equal reports whether p and other have identical edge-id sequences and
// D0 values.
func (p *Path) Equal(other *Path) bool {
	if len(p.edges) != len(other.edges) {
		return false
	}
	for i := range p.edges {
		if p.edges[i].E.ID() != other.edges[i].E.ID() || p.edges[i].D0 != other.edges[i].D0 {
			return false
		}
	}
	return true
}
