package track

import (
	"math"
	"math/rand/v2"
)

// TransitionDistribution is the categorical prior over
// {stay off-road, move off->on, stay on-road, move on->off, choose
// neighbour} (spec §4.4). It holds two independent Dirichlet posteriors,
// each of dimension 2, over {off, on} regime choices; the specific
// neighbour is chosen uniformly from the admissible transfer set.
//
// Compat gates whether LogEvaluate includes the -log|transferSet| uniform
// neighbour term. The original implementation omits it (spec §9); Compat
// reproduces that omission bit-for-bit, while the default (false) keeps
// the distribution normalized over the full discrete space.
type TransitionDistribution struct {
	AlphaOff [2]float64 // {stayOff, moveOn}
	AlphaOn  [2]float64 // {stayOn, moveOff}
	Compat   bool
}

// NewTransitionDistribution builds a distribution from Dirichlet
// pseudo-counts (spec §6 InitialParameters offTransitionProbs /
// onTransitionProbs).
func NewTransitionDistribution(offCounts, onCounts [2]float64) *TransitionDistribution {
	return &TransitionDistribution{AlphaOff: offCounts, AlphaOn: onCounts}
}

const (
	offStayOff = 0
	offMoveOn  = 1
	onStayOn   = 0
	onMoveOff  = 1
)

func (t *TransitionDistribution) offProb(i int) float64 {
	return t.AlphaOff[i] / (t.AlphaOff[0] + t.AlphaOff[1])
}

func (t *TransitionDistribution) onProb(i int) float64 {
	return t.AlphaOn[i] / (t.AlphaOn[0] + t.AlphaOn[1])
}

// LogEvaluate scores a transition from prevEdge to newEdge. nearbyCount is
// the size of the off-road transfer set (|nearby(prev-location)|),
// required only when prevEdge is Empty and newEdge is not; transferCount
// is |transferSet(prevEdge, direction)|, required only when both edges are
// on-road.
func (t *TransitionDistribution) LogEvaluate(prevEdge, newEdge Edge, nearbyCount, transferCount int) (float64, error) {
	switch {
	case prevEdge.IsEmpty() && newEdge.IsEmpty():
		return math.Log(t.offProb(offStayOff)), nil

	case prevEdge.IsEmpty() && !newEdge.IsEmpty():
		if nearbyCount <= 0 {
			return 0, &GraphInconsistencyError{Reason: "LogEvaluate: empty nearby set for off->on transition"}
		}
		return math.Log(t.offProb(offMoveOn)) - math.Log(float64(nearbyCount)), nil

	case !prevEdge.IsEmpty() && newEdge.IsEmpty():
		return math.Log(t.onProb(onMoveOff)), nil

	default: // both on-road
		if transferCount <= 0 {
			return 0, &GraphInconsistencyError{Reason: "LogEvaluate: empty transfer set for on->on transition"}
		}
		logP := math.Log(t.onProb(onStayOn))
		if !t.Compat {
			logP -= math.Log(float64(transferCount))
		}
		return logP, nil
	}
}

// Sample draws the regime from the appropriate Bernoulli, then picks
// uniformly among transferEdges when staying on-road or among nearbyEdges
// when moving on-road; it returns EmptyEdge when the draw is to stay or
// move off-road, or when the candidate set is empty. currentEdge is Empty
// to request an off-road draw.
func (t *TransitionDistribution) Sample(rng *rand.Rand, transferEdges, nearbyEdges []Edge, currentEdge Edge) Edge {
	if currentEdge.IsEmpty() {
		if rng.Float64() < t.offProb(offMoveOn) && len(nearbyEdges) > 0 {
			return nearbyEdges[rng.IntN(len(nearbyEdges))]
		}
		return EmptyEdge
	}
	if rng.Float64() < t.onProb(onMoveOff) || len(transferEdges) == 0 {
		return EmptyEdge
	}
	return transferEdges[rng.IntN(len(transferEdges))]
}

// Observe records a realized transition as a Bayesian online update: the
// corresponding component of the relevant Dirichlet posterior is
// incremented by one.
func (t *TransitionDistribution) Observe(prevEdge, newEdge Edge) {
	switch {
	case prevEdge.IsEmpty() && newEdge.IsEmpty():
		t.AlphaOff[offStayOff]++
	case prevEdge.IsEmpty() && !newEdge.IsEmpty():
		t.AlphaOff[offMoveOn]++
	case !prevEdge.IsEmpty() && newEdge.IsEmpty():
		t.AlphaOn[onMoveOff]++
	default:
		t.AlphaOn[onStayOn]++
	}
}
