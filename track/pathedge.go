package track

import "math"

// PathEdge pairs an edge with the signed distance from the path's origin
// to the edge's start-of-edge in the along-path coordinate (spec §3). For
// EmptyEdge, D0 is undefined and EmptyPathEdge should be used instead.
type PathEdge struct {
	E  Edge
	D0 float64
}

// EmptyPathEdge is the shared singleton PathEdge for off-road motion.
var EmptyPathEdge = &PathEdge{E: EmptyEdge, D0: 0}

// NewPathEdge builds a PathEdge over e starting at along-path offset d0.
func NewPathEdge(e Edge, d0 float64) *PathEdge {
	if e.IsEmpty() {
		return EmptyPathEdge
	}
	return &PathEdge{E: e, D0: d0}
}

const uniformVarianceDivisor = 12.0 // Var[Uniform(0, L)] = L^2/12

// Truncate conditions a road belief on the coarse observation "s lies
// approximately within this edge's extent", via rank-1 conditioning on a
// uniform-on-[D0, D0+length] prior. This is the PathEdge.java algebra
// (S = HΣH^T + (length/√12)^2, W = ΣH^T/S, e = midpoint - Hμ), preserved
// for parity with the original rather than a true truncated-Gaussian
// moment match (spec §4.2, §9: this does not clip mass outside the
// interval — a principled but undone replacement).
func (pe *PathEdge) Truncate(b *RoadBelief) (*RoadBelief, error) {
	if pe.E.IsEmpty() {
		return nil, &GraphInconsistencyError{Reason: "Truncate called on EmptyPathEdge"}
	}
	length := pe.E.Length()
	mean, cov := b.M, b.P

	Hmu := mean[0]
	sigma := length / math.Sqrt(uniformVarianceDivisor)
	S := cov[0][0] + sigma*sigma
	if S < 1e-15 {
		return nil, &NumericFailureError{Op: "Truncate", Reason: "degenerate innovation variance"}
	}
	W := []float64{cov[0][0] / S, cov[1][0] / S}
	e := (pe.D0 + length/2) - Hmu

	newMean := []float64{mean[0] + W[0]*e, mean[1] + W[1]*e}

	newCov := zeroMat(2, 2)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			newCov[i][j] = cov[i][j] - W[i]*W[j]*S
		}
	}
	newCov = symmetrize(newCov)

	if !allFinite(newMean) || !allFiniteMat(newCov) {
		return nil, &NumericFailureError{Op: "Truncate", Reason: "non-finite result"}
	}
	return &RoadBelief{M: newMean, P: newCov}, nil
}

// withinExtent reports whether s lies in [D0-eps, D0+length+eps], the
// tolerance path traversal uses to decide when to advance edges (spec
// §4.1: out-of-range projection is not itself an error at the filter
// layer).
func (pe *PathEdge) withinExtent(s float64) bool {
	return s >= pe.D0-pathEdgeEpsilon && s <= pe.D0+pe.E.Length()+pathEdgeEpsilon
}

// sameEdge reports whether pe and other reference the same edge (both
// EmptyPathEdge counts as the same edge).
func (pe *PathEdge) sameEdge(other *PathEdge) bool {
	if pe == nil || other == nil {
		return pe == other
	}
	if pe.E.IsEmpty() || other.E.IsEmpty() {
		return pe.E.IsEmpty() == other.E.IsEmpty()
	}
	return pe.E.ID() == other.E.ID()
}
