package track

// Belief is a multivariate Gaussian over either the 4-D ground state
// (x, ẋ, y, ẏ) or the 2-D road state (s, ṡ). The two shapes are modeled as
// distinct variants rather than a single struct discriminated by a
// dimension flag, so code branches on the variant with a type switch. The
// pairing of a belief with an edge (spec §3) is not fixed by the type:
// operations check it with type assertions and return
// GraphInconsistencyError on a mismatch.
type Belief interface {
	// Dim returns 4 for a ground belief, 2 for a road belief.
	Dim() int
	// Mean returns the belief's mean vector. Callers must not mutate the
	// returned slice in place except through the filter operations, which
	// own the belief.
	Mean() []float64
	Cov() [][]float64
	isBelief()
}

// GroundBelief is a 4-D Gaussian over (x, ẋ, y, ẏ).
type GroundBelief struct {
	M []float64   // len 4
	P [][]float64 // 4x4
}

func (b *GroundBelief) Dim() int          { return 4 }
func (b *GroundBelief) Mean() []float64   { return b.M }
func (b *GroundBelief) Cov() [][]float64  { return b.P }
func (b *GroundBelief) isBelief()         {}

// RoadBelief is a 2-D Gaussian over (s, ṡ), s measured from the start of
// the current PathEdge's edge.
type RoadBelief struct {
	M []float64   // len 2
	P [][]float64 // 2x2
}

func (b *RoadBelief) Dim() int         { return 2 }
func (b *RoadBelief) Mean() []float64  { return b.M }
func (b *RoadBelief) Cov() [][]float64 { return b.P }
func (b *RoadBelief) isBelief()        {}

func newGroundBelief(mean []float64, cov [][]float64) *GroundBelief {
	return &GroundBelief{M: cloneVec(mean), P: cloneMat(cov)}
}

func newRoadBelief(mean []float64, cov [][]float64) *RoadBelief {
	return &RoadBelief{M: cloneVec(mean), P: cloneMat(cov)}
}

func cloneVec(v []float64) []float64 {
	return append([]float64(nil), v...)
}

// cloneBelief returns a deep copy of b, preserving its variant.
func cloneBelief(b Belief) Belief {
	switch v := b.(type) {
	case *GroundBelief:
		return newGroundBelief(v.M, v.P)
	case *RoadBelief:
		return newRoadBelief(v.M, v.P)
	default:
		panic("track: unknown belief variant")
	}
}
