package track

import (
	"math"
	"math/rand/v2"
)

// Sampler is the generative forward step used both by the simulator and,
// in a future particle filter, by a proposal step (spec §4.6). It has no
// mutable state of its own; callers supply the RNG, graph, and spatial
// index explicitly rather than reaching for process-wide singletons (spec
// §9).
type Sampler struct {
	Graph Graph
	Index NearbyEdgeIndex
	RNG   *rand.Rand
}

// NewSampler builds a Sampler over g using index for off-road nearest-edge
// queries and rng as its deterministic random source.
func NewSampler(g Graph, index NearbyEdgeIndex, rng *rand.Rand) *Sampler {
	return &Sampler{Graph: g, Index: index, RNG: rng}
}

const defaultTransferK = 8 // candidates requested from NearbyEdgeIndex per off-road query
const maxTraverseIterations = 10000 // guards against a malformed graph cycling forever

// TraverseEdge walks the graph edge by edge starting from startPE, given a
// belief whose mean encodes intended travel distance, and returns the
// resulting InferredPath. Mirrors Simulation.java's traverseEdge: the
// first iteration commits the total travel distance by projecting a ground
// belief onto the sampled edge (ProjectToRoad), predicting, drawing noise
// through the covariance factor, then walking
// forward/backward from there (spec §4.6).
func (s *Sampler) TraverseEdge(t *TransitionDistribution, belief Belief, startPE *PathEdge, f *Filter, dt float64) (*Path, Belief, error) {
	currentPE := startPE
	var path []*PathEdge
	if !startPE.E.IsEmpty() {
		path = append(path, NewPathEdge(startPE.E, 0))
	}
	distTraveled := 0.0
	haveCommitted := false
	totalDistToTravel := 0.0
	b := belief
	deadEnd := false
	var deadEndDir float64

	for iter := 0; ; iter++ {
		if iter > maxTraverseIterations {
			return nil, nil, &GraphInconsistencyError{Reason: "TraverseEdge exceeded iteration bound"}
		}
		if haveCommitted {
			if math.Abs(totalDistToTravel) < math.Abs(currentPE.D0)+currentPE.E.Length() {
				break
			}
		}

		transferSet, nearbySet := s.transferSet(currentPE, b, haveCommitted)
		if haveCommitted && len(transferSet) == 0 && len(nearbySet) == 0 && !currentPE.E.IsEmpty() {
			deadEnd = true
			deadEndDir = sign(b.Mean()[0])
			break
		}

		sampled := t.Sample(s.RNG, transferSet, nearbySet, currentPE.E)

		if sampled.IsEmpty() {
			gb, err := s.offRoadBranch(f, b, currentPE, dt)
			if err != nil {
				return nil, nil, err
			}
			if len(path) == 0 {
				p, _ := NewPath(s.Graph, nil, 0)
				return p, gb, nil
			}
			path = append(path, EmptyPathEdge)
			p, err := NewPath(s.Graph, path, distTraveled)
			if err != nil {
				return nil, nil, err
			}
			return p, gb, nil
		}

		sampledPE := NewPathEdge(sampled, distTraveled)

		if !haveCommitted {
			if gb, ok := b.(*GroundBelief); ok {
				rb, err := f.ProjectToRoad(gb, sampledPE)
				if err != nil {
					return nil, nil, err
				}
				b = rb
			}
			rb := b.(*RoadBelief)
			currentLoc := rb.M[0]

			predicted, err := f.Predict(b, dt, sampledPE, sampledPE)
			if err != nil {
				return nil, nil, err
			}
			prb := predicted.(*RoadBelief)
			prb.M[0] += currentLoc

			noisy, err := s.sampleMovementBelief(prb, f, true, dt)
			if err != nil {
				return nil, nil, err
			}
			b = noisy
			totalDistToTravel = b.Mean()[0]
			haveCommitted = true
		}

		dir := sign(b.Mean()[0])
		distTraveled += dir * sampled.Length()
		currentPE = sampledPE
		if last := len(path) - 1; last < 0 || !path[last].sameEdge(sampledPE) || path[last].D0 != sampledPE.D0 {
			path = append(path, sampledPE)
		}
	}

	if deadEnd {
		mean := b.Mean()
		if deadEndDir > 0 {
			mean[0] = currentPE.E.Length()
		} else {
			mean[0] = 0
		}
		mean[1] = 0
	}

	p, err := NewPath(s.Graph, path, distTraveled)
	if err != nil {
		return nil, nil, err
	}
	return p, b, nil
}

// transferSet computes the candidate edge set for the current iteration
// (spec §4.6 step 2): nearby edges when off-road, the singleton current
// edge before a direction is committed, else incoming/outgoing by sign of
// velocity (both when exactly zero).
func (s *Sampler) transferSet(currentPE *PathEdge, b Belief, committed bool) (transfer, nearby []Edge) {
	if currentPE.E.IsEmpty() {
		gb, ok := b.(*GroundBelief)
		if !ok {
			return nil, nil
		}
		p := Point{X: gb.M[0], Y: gb.M[2]}
		return nil, s.Index.NearbyEdges(p, defaultTransferK)
	}
	if !committed {
		return []Edge{currentPE.E}, nil
	}
	sVal := b.Mean()[0]
	switch {
	case sVal < 0:
		return s.Graph.Incoming(currentPE.E), nil
	case sVal > 0:
		return s.Graph.Outgoing(currentPE.E), nil
	default:
		return append(append([]Edge{}, s.Graph.Incoming(currentPE.E)...), s.Graph.Outgoing(currentPE.E)...), nil
	}
}

func (s *Sampler) offRoadBranch(f *Filter, b Belief, currentPE *PathEdge, dt float64) (Belief, error) {
	var ground Belief
	if rb, ok := b.(*RoadBelief); ok {
		gb, err := f.InvertProjection(rb, currentPE)
		if err != nil {
			return nil, err
		}
		ground = gb
	} else {
		ground = b
	}
	return f.Predict(ground, dt, EmptyPathEdge, nil)
}

// sampleMovementBelief draws an acceleration-noise vector from N(0, σ²)
// (OnRoadStateVariance, or diag(OffRoadStateVariance) off-road) via its
// Cholesky factor, multiplies by the covariance factor Γ, and adds it to
// the mean, so the added noise has covariance Q = Γσ²Γ^T (spec §4.6).
// isRoad selects Γ_r vs. Γ_g.
func (s *Sampler) sampleMovementBelief(b Belief, f *Filter, isRoad bool, dt float64) (Belief, error) {
	gamma := f.GetCovarianceFactor(isRoad, dt)
	qDim := len(gamma[0])

	var qVar [][]float64
	if isRoad {
		qVar = [][]float64{{f.OnRoadStateVariance}}
	} else {
		qVar = [][]float64{{f.OffRoadStateVariance[0], 0}, {0, f.OffRoadStateVariance[1]}}
	}
	L, ok := choleskyLower(qVar)
	if !ok {
		return nil, &NumericFailureError{Op: "sampleMovementBelief", Reason: "Cholesky factorization failed"}
	}
	z := sampleStandardNormal(s.RNG, qDim)
	noise := matVec(L, z)
	delta := matVec(gamma, noise)

	mean := vecAdd(b.Mean(), delta)
	if !allFinite(mean) {
		return nil, &NumericFailureError{Op: "sampleMovementBelief", Reason: "non-finite sample"}
	}
	if isRoad {
		return &RoadBelief{M: mean, P: cloneMat(b.Cov())}, nil
	}
	return &GroundBelief{M: mean, P: cloneMat(b.Cov())}, nil
}

// SampleObservation projects belief to ground via pe, multiplies by O_g,
// and adds zero-mean noise with covariance R, drawn through R's Cholesky
// factor (spec §4.6).
func (s *Sampler) SampleObservation(f *Filter, belief Belief, pe *PathEdge) ([]float64, error) {
	var gb *GroundBelief
	if rb, ok := belief.(*RoadBelief); ok {
		ground, err := f.InvertProjection(rb, pe)
		if err != nil {
			return nil, err
		}
		gb = ground
	} else {
		gb = belief.(*GroundBelief)
	}

	H := groundObservation()
	mean := matVec(H, gb.M)

	R := [][]float64{{f.ObsVariance[0], 0}, {0, f.ObsVariance[1]}}
	L, ok := choleskyLower(R)
	if !ok {
		return nil, &NumericFailureError{Op: "SampleObservation", Reason: "Cholesky factorization failed"}
	}
	z := sampleStandardNormal(s.RNG, 2)
	noise := matVec(L, z)
	return vecAdd(mean, noise), nil
}
