package track

// VehicleState bundles a belief with the current edge, inferred path,
// per-vehicle transition distribution, observation, and a back-reference
// to the parent state (spec §3). Parent is kept only for trace
// reconstruction; it is an ordinary pointer, so a state keeps its whole
// parent chain reachable.
type VehicleState struct {
	Filter     *Filter
	Belief     Belief
	Edge       Edge
	Path       *Path
	Transition *TransitionDistribution
	Obs        *Observation
	Parent     *VehicleState
	DFromPrev  float64
}

// NewInitialVehicleState builds the first state in a chain from an
// observation and an initial edge (possibly EmptyEdge). The belief is
// centred on the observation in ground coordinates, or on the projected
// point-on-edge in road coordinates, with zero velocity and
// identity-scaled covariance from params.
func NewInitialVehicleState(f *Filter, params *InitialParameters, obs *Observation, edge Edge, d0 float64) (*VehicleState, error) {
	transition := NewTransitionDistribution(params.OffTransitionProbs, params.OnTransitionProbs)

	if edge.IsEmpty() {
		mean := []float64{obs.XProj.X, 0, obs.XProj.Y, 0}
		cov := identity(4)
		cov[0][0] = params.ObsVariance[0]
		cov[2][2] = params.ObsVariance[1]
		belief := &GroundBelief{M: mean, P: cov}
		path := &Path{}
		return &VehicleState{
			Filter: f, Belief: belief, Edge: EmptyEdge, Path: path,
			Transition: transition, Obs: obs, DFromPrev: 0,
		}, nil
	}

	along, _ := edge.Project(obs.XProj)
	pe := NewPathEdge(edge, d0)
	s := along - d0
	mean := []float64{s, 0}
	cov := identity(2)
	cov[0][0] = params.ObsVariance[0]
	belief := &RoadBelief{M: mean, P: cov}
	path, err := NewPath(nil, []*PathEdge{pe}, 0)
	if err != nil {
		return nil, err
	}
	return &VehicleState{
		Filter: f, Belief: belief, Edge: edge, Path: path,
		Transition: transition, Obs: obs, DFromPrev: pe.D0,
	}, nil
}

// NewTransitionVehicleState builds a child state from a parent plus a new
// belief, path, and current path edge. The mean's 0th element (s) is
// re-zeroed by subtracting pathEdge.D0 so that s is local to the current
// edge; DFromPrev records the subtracted offset (spec §4.5).
func NewTransitionVehicleState(parent *VehicleState, belief Belief, path *Path, pathEdge *PathEdge, obs *Observation) (*VehicleState, error) {
	var edge Edge = EmptyEdge
	var localBelief Belief = belief

	if pathEdge != nil && !pathEdge.E.IsEmpty() {
		rb, ok := belief.(*RoadBelief)
		if !ok {
			return nil, &GraphInconsistencyError{Reason: "transition state: road path edge given non-road belief"}
		}
		shifted := &RoadBelief{M: cloneVec(rb.M), P: cloneMat(rb.P)}
		shifted.M[0] -= pathEdge.D0
		localBelief = shifted
		edge = pathEdge.E
	}

	return &VehicleState{
		Filter:     parent.Filter,
		Belief:     localBelief,
		Edge:       edge,
		Path:       path,
		Transition: parent.Transition,
		Obs:        obs,
		Parent:     parent,
		DFromPrev:  pathEdgeD0(pathEdge),
	}, nil
}

func pathEdgeD0(pe *PathEdge) float64 {
	if pe == nil {
		return 0
	}
	return pe.D0
}

// LogDensity returns log p(obs, path | parent) = log T.LogEvaluate(prev
// edge, this edge) + log filter.LogLikelihood(obs, belief, current path
// edge) — edge-transition prior times measurement likelihood (spec §4.5).
// The caller must supply v already predicted; the motion prior is absorbed
// into the predicted belief before scoring.
func (v *VehicleState) LogDensity(prevEdge Edge, nearbyCount, transferCount int) (float64, error) {
	var curPE *PathEdge
	if !v.Edge.IsEmpty() {
		curPE = v.Path.Last()
	}

	transitionLog, err := v.Transition.LogEvaluate(prevEdge, v.Edge, nearbyCount, transferCount)
	if err != nil {
		return 0, err
	}

	z := []float64{v.Obs.XProj.X, v.Obs.XProj.Y}
	measurementLog, err := v.Filter.LogLikelihood(z, v.Belief, curPE)
	if err != nil {
		return 0, err
	}
	return transitionLog + measurementLog, nil
}

// Sample is intentionally unimplemented: sampling directly from a
// VehicleState's conditional density is not supported (spec §4.5); use
// Sampler.TraverseEdge for generation instead.
func (v *VehicleState) Sample() error {
	return &NotImplementedError{Op: "VehicleState.Sample"}
}
