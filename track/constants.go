package track

const (
	// DefaultObsVarianceX, DefaultObsVarianceY are the diagonal of R, m^2.
	DefaultObsVarianceX = 10.0
	DefaultObsVarianceY = 10.0

	// DefaultOnRoadStateVariance is the along-edge acceleration variance, (m/s^2)^2.
	DefaultOnRoadStateVariance = 0.000625

	// DefaultOffRoadStateVarianceX/Y are the per-axis acceleration variance, (m/s^2)^2.
	DefaultOffRoadStateVarianceX = 0.000625
	DefaultOffRoadStateVarianceY = 0.000625

	// DefaultOffTransitionStayOff, DefaultOffTransitionMoveOn are Dirichlet
	// pseudo-counts for {stay off, move on}.
	DefaultOffTransitionStayOff = 70.0
	DefaultOffTransitionMoveOn  = 30.0

	// DefaultOnTransitionStayOn, DefaultOnTransitionMoveOff are Dirichlet
	// pseudo-counts for {stay on, move off}.
	DefaultOnTransitionStayOn  = 95.0
	DefaultOnTransitionMoveOff = 5.0

	// DefaultDt is the fallback time step, seconds, when a state has no
	// previous observation to difference against (spec.md §9, "magic number").
	DefaultDt = 30.0

	// minCovarianceEigenvalue is the floor below which a covariance is
	// treated as having collapsed to numerical noise.
	minCovarianceEigenvalue = 1e-12

	// confidenceEllipseScale is the 1.98-sigma scaling for a 95% confidence
	// ellipse on a 2-D Gaussian (original_source InferenceResultRecord.java).
	confidenceEllipseScale = 1.98

	// pathEdgeEpsilon is the slack allowed when testing whether an along-edge
	// offset s lies within [0, length].
	pathEdgeEpsilon = 1e-6
)

// clamp returns x constrained to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// pow2 returns x squared.
func pow2(x float64) float64 { return x * x }

// sign returns +1 for x >= 0 and -1 for x < 0, matching the direction
// convention used throughout the path-traversal generative model (ties
// break toward +1, spec.md §4.6).
func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
