package track

import "math"

// Filter holds the two embedded linear-Gaussian models — ground (4-D) and
// road (2-D) — plus the projection operators between them (spec §4.1). It
// carries no mutable state of its own; all state lives in the Belief the
// caller passes in, mirroring the teacher's predict/update split in
// ekf.go's KfUpdate but generalized from a single 6-D radio-fusion state to
// the two road-tracking regimes.
type Filter struct {
	ObsVariance          [2]float64 // diag(R), m^2
	OnRoadStateVariance  float64    // along-edge acceleration variance, (m/s^2)^2
	OffRoadStateVariance [2]float64 // per-axis acceleration variance, (m/s^2)^2
}

// NewFilter builds a Filter from configuration.
func NewFilter(obsVariance [2]float64, onRoadVar float64, offRoadVar [2]float64) *Filter {
	return &Filter{ObsVariance: obsVariance, OnRoadStateVariance: onRoadVar, OffRoadStateVariance: offRoadVar}
}

// groundTransition returns F_g(dt) = I ⊕ dt·J, block diagonal per axis.
func groundTransition(dt float64) [][]float64 {
	f := identity(4)
	f[0][1] = dt
	f[2][3] = dt
	return f
}

// groundCovarianceFactor returns Γ_g, 4x2: per-axis (dt²/2, dt).
func groundCovarianceFactor(dt float64) [][]float64 {
	g := zeroMat(4, 2)
	g[0][0] = dt * dt / 2
	g[1][0] = dt
	g[2][1] = dt * dt / 2
	g[3][1] = dt
	return g
}

// groundObservation returns O_g = [1 0 0 0; 0 0 1 0].
func groundObservation() [][]float64 {
	o := zeroMat(2, 4)
	o[0][0] = 1
	o[1][2] = 1
	return o
}

// roadTransition returns F_r(dt) = [[1,dt],[0,1]].
func roadTransition(dt float64) [][]float64 {
	return [][]float64{{1, dt}, {0, 1}}
}

// roadCovarianceFactor returns Γ_r = (dt²/2, dt)^T, 2x1.
func roadCovarianceFactor(dt float64) [][]float64 {
	return [][]float64{{dt * dt / 2}, {dt}}
}

// roadObservation returns O_r = [1, 0].
func roadObservation() [][]float64 {
	return [][]float64{{1, 0}}
}

// GetCovarianceFactor returns Γ_r or Γ_g so the sampler can draw state
// noise through the same factor the filter uses internally (spec §4.7).
func (f *Filter) GetCovarianceFactor(isRoad bool, dt float64) [][]float64 {
	if isRoad {
		return roadCovarianceFactor(dt)
	}
	return groundCovarianceFactor(dt)
}

// groundProcessNoise returns Q_g = Γ_g Σ_g Γ_g^T with per-axis variance
// from OffRoadStateVariance.
func (f *Filter) groundProcessNoise(dt float64) [][]float64 {
	g := groundCovarianceFactor(dt)
	sigma := [][]float64{{f.OffRoadStateVariance[0], 0}, {0, f.OffRoadStateVariance[1]}}
	return matMul(g, matMul(sigma, transpose(g)))
}

// roadProcessNoise returns Q_r = Γ_r σ²_r Γ_r^T.
func (f *Filter) roadProcessNoise(dt float64) [][]float64 {
	g := roadCovarianceFactor(dt)
	return matMul(g, matMul([][]float64{{f.OnRoadStateVariance}}, transpose(g)))
}

// Predict runs one filter step of dt seconds. If both the old and new path
// edges are empty, the ground filter is used. If both are on a road and the
// edge changes, the along-path origin is shifted by oldPE.Length() first so
// s stays zeroed at the new edge. A regime crossing triggers projection:
// on→off calls InvertProjection then predicts on the ground filter; off→on
// projects the ground state onto the new edge's line first.
func (f *Filter) Predict(b Belief, dt float64, newPE, oldPE *PathEdge) (Belief, error) {
	if dt <= 0 {
		return nil, &NumericFailureError{Op: "Predict", Reason: "non-positive dt"}
	}

	newOnRoad := newPE != nil && !newPE.E.IsEmpty()
	oldOnRoad := oldPE != nil && !oldPE.E.IsEmpty()

	switch {
	case !newOnRoad && !oldOnRoad:
		return f.predictGround(b, dt)

	case newOnRoad && oldOnRoad:
		rb, ok := b.(*RoadBelief)
		if !ok {
			return nil, &GraphInconsistencyError{Reason: "road predict given non-road belief"}
		}
		if !newPE.sameEdge(oldPE) {
			shifted := &RoadBelief{M: cloneVec(rb.M), P: cloneMat(rb.P)}
			shifted.M[0] += oldPE.E.Length()
			rb = shifted
		}
		return f.predictRoad(rb, dt)

	case !newOnRoad && oldOnRoad:
		rb, ok := b.(*RoadBelief)
		if !ok {
			return nil, &GraphInconsistencyError{Reason: "on->off predict given non-road belief"}
		}
		ground, err := f.InvertProjection(rb, oldPE)
		if err != nil {
			return nil, err
		}
		return f.predictGround(ground, dt)

	default: // !oldOnRoad && newOnRoad
		gb, ok := b.(*GroundBelief)
		if !ok {
			return nil, &GraphInconsistencyError{Reason: "off->on predict given non-ground belief"}
		}
		road, err := f.ProjectToRoad(gb, newPE)
		if err != nil {
			return nil, err
		}
		return f.predictRoad(road, dt)
	}
}

func (f *Filter) predictGround(b Belief, dt float64) (Belief, error) {
	gb, ok := b.(*GroundBelief)
	if !ok {
		return nil, &GraphInconsistencyError{Reason: "predictGround given non-ground belief"}
	}
	F := groundTransition(dt)
	Q := f.groundProcessNoise(dt)
	mean := matVec(F, gb.M)
	cov := matAdd(matMul(F, matMul(gb.P, transpose(F))), Q)
	if !allFinite(mean) || !allFiniteMat(cov) {
		return nil, &NumericFailureError{Op: "predictGround", Reason: "non-finite result"}
	}
	return &GroundBelief{M: mean, P: cov}, nil
}

func (f *Filter) predictRoad(b Belief, dt float64) (Belief, error) {
	rb, ok := b.(*RoadBelief)
	if !ok {
		return nil, &GraphInconsistencyError{Reason: "predictRoad given non-road belief"}
	}
	F := roadTransition(dt)
	Q := f.roadProcessNoise(dt)
	mean := matVec(F, rb.M)
	cov := matAdd(matMul(F, matMul(rb.P, transpose(F))), Q)
	if !allFinite(mean) || !allFiniteMat(cov) {
		return nil, &NumericFailureError{Op: "predictRoad", Reason: "non-finite result"}
	}
	return &RoadBelief{M: mean, P: cov}, nil
}

// Update runs the standard Kalman innovation: y = z - Hμ, S = HΣH^T + R,
// K = ΣH^T S^-1, μ ← μ + Ky, Σ ← (I - KH)Σ.
func (f *Filter) Update(b Belief, z []float64) (Belief, error) {
	switch v := b.(type) {
	case *GroundBelief:
		H := groundObservation()
		R := [][]float64{{f.ObsVariance[0], 0}, {0, f.ObsVariance[1]}}
		return f.update(v, H, R, z, func(m []float64, p [][]float64) Belief {
			return &GroundBelief{M: m, P: p}
		})
	case *RoadBelief:
		H := roadObservation()
		R := [][]float64{{f.ObsVariance[0]}}
		return f.update(v, H, R, z, func(m []float64, p [][]float64) Belief {
			return &RoadBelief{M: m, P: p}
		})
	default:
		return nil, &GraphInconsistencyError{Reason: "Update given unknown belief variant"}
	}
}

func (f *Filter) update(b Belief, H, R [][]float64, z []float64, wrap func([]float64, [][]float64) Belief) (Belief, error) {
	mean, cov := b.Mean(), b.Cov()
	Hmu := matVec(H, mean)
	y := vecSub(z, Hmu)
	S := matAdd(matMul(H, matMul(cov, transpose(H))), R)

	minEig := minEigenvalue(S)
	var Sinv [][]float64
	if minEig < 1e-9 {
		Sinv = pinv(S)
	} else {
		Sinv = invertSmall(S)
	}
	if Sinv == nil {
		return nil, &NumericFailureError{Op: "Update", Reason: "singular innovation covariance"}
	}

	K := matMul(matMul(cov, transpose(H)), Sinv)
	newMean := vecAdd(mean, matVec(K, y))
	KH := matMul(K, H)
	newCov := matMul(matSub(identity(len(mean)), KH), cov)
	newCov = symmetrize(newCov)

	if !allFinite(newMean) || !allFiniteMat(newCov) {
		return nil, &NumericFailureError{Op: "Update", Reason: "non-finite result"}
	}
	if minEigenvalue(newCov) < -1e-9 {
		return nil, &NumericFailureError{Op: "Update", Reason: "covariance not positive semi-definite"}
	}
	return wrap(newMean, newCov), nil
}

// invertSmall inverts a 1x1 or 2x2 matrix directly; returns nil if singular.
func invertSmall(m [][]float64) [][]float64 {
	switch len(m) {
	case 1:
		if math.Abs(m[0][0]) < 1e-15 {
			return nil
		}
		return [][]float64{{1 / m[0][0]}}
	case 2:
		det := m[0][0]*m[1][1] - m[0][1]*m[1][0]
		if math.Abs(det) < 1e-15 {
			return nil
		}
		return [][]float64{{m[1][1] / det, -m[0][1] / det}, {-m[1][0] / det, m[0][0] / det}}
	default:
		return nil
	}
}

// LogLikelihood returns the Gaussian log-density of z under the predicted
// observation of b. If pe is on-road, b is first converted to ground form
// via ConvertToGroundBelief so the likelihood is always evaluated in
// observation (ground) coordinates.
func (f *Filter) LogLikelihood(z []float64, b Belief, pe *PathEdge) (float64, error) {
	var mean []float64
	var cov [][]float64
	var H [][]float64
	var R [][]float64

	if pe != nil && !pe.E.IsEmpty() {
		rb, ok := b.(*RoadBelief)
		if !ok {
			return 0, &GraphInconsistencyError{Reason: "LogLikelihood: road pe given non-road belief"}
		}
		ground := f.ConvertToGroundBelief(rb, pe)
		mean, cov = ground.M, ground.P
		H = groundObservation()
		R = [][]float64{{f.ObsVariance[0], 0}, {0, f.ObsVariance[1]}}
	} else {
		gb, ok := b.(*GroundBelief)
		if !ok {
			return 0, &GraphInconsistencyError{Reason: "LogLikelihood: empty pe given non-ground belief"}
		}
		mean, cov = gb.M, gb.P
		H = groundObservation()
		R = [][]float64{{f.ObsVariance[0], 0}, {0, f.ObsVariance[1]}}
	}

	Hmu := matVec(H, mean)
	y := vecSub(z, Hmu)
	S := matAdd(matMul(H, matMul(cov, transpose(H))), R)
	return gaussianLogDensity(y, S)
}

// gaussianLogDensity returns log N(y; 0, S).
func gaussianLogDensity(y []float64, S [][]float64) (float64, error) {
	n := len(y)
	Sinv := invertSmall(S)
	if Sinv == nil {
		Sinv = pinv(S)
	}
	det := detSmall(S)
	if det <= 0 {
		return 0, &NumericFailureError{Op: "gaussianLogDensity", Reason: "non-positive determinant"}
	}
	quad := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			quad += y[i] * Sinv[i][j] * y[j]
		}
	}
	logDet := math.Log(det)
	return -0.5 * (float64(n)*math.Log(2*math.Pi) + logDet + quad), nil
}

func detSmall(m [][]float64) float64 {
	switch len(m) {
	case 1:
		return m[0][0]
	case 2:
		return m[0][0]*m[1][1] - m[0][1]*m[1][0]
	default:
		panic("track: detSmall only supports 1x1/2x2")
	}
}

// InvertProjection maps a 2-D road belief back to a 4-D ground belief. It
// takes the edge's unit tangent τ at position pe.D0+s and forms the 4x2
// covariance factor Γ that spreads (s, ṡ) onto (x, ẋ, y, ẏ): position at
// Start(E) + (d0+s)·τ and velocity ṡ·τ. Mean and covariance transform as
// μ' = g(μ), Σ' = J Σ J^T with J the Jacobian at μ.
func (f *Filter) InvertProjection(b *RoadBelief, pe *PathEdge) (*GroundBelief, error) {
	if pe == nil || pe.E.IsEmpty() {
		return nil, &GraphInconsistencyError{Reason: "InvertProjection given empty path edge"}
	}
	s, sdot := b.M[0], b.M[1]
	along := pe.D0 + s
	tx, ty := pe.E.Tangent(along)
	pt := pe.E.PointAt(along)

	mean := []float64{pt.X, sdot * tx, pt.Y, sdot * ty}

	J := zeroMat(4, 2)
	J[0][0] = tx
	J[1][1] = tx
	J[2][0] = ty
	J[3][1] = ty

	cov := matMul(J, matMul(b.P, transpose(J)))
	if !allFinite(mean) || !allFiniteMat(cov) {
		return nil, &NumericFailureError{Op: "InvertProjection", Reason: "non-finite result"}
	}
	return &GroundBelief{M: mean, P: cov}, nil
}

// ConvertToGroundBelief is InvertProjection without the requirement that
// the result replace b; both are pure (no in-place mutation is needed since
// Belief values are treated as immutable snapshots here).
func (f *Filter) ConvertToGroundBelief(b *RoadBelief, pe *PathEdge) *GroundBelief {
	gb, err := f.InvertProjection(b, pe)
	if err != nil {
		// Mirrors the teacher's defensive resetState-on-failure idiom:
		// degrade to a zero belief rather than propagate a panic from a
		// pure conversion helper; callers that need the error call
		// InvertProjection directly.
		return &GroundBelief{M: zerosVec(4), P: identity(4)}
	}
	return gb
}

// ProjectToRoad projects a 4-D ground belief onto pe's edge line, producing
// a 2-D road belief with s measured from pe.D0.
func (f *Filter) ProjectToRoad(b *GroundBelief, pe *PathEdge) (*RoadBelief, error) {
	if pe == nil || pe.E.IsEmpty() {
		return nil, &GraphInconsistencyError{Reason: "ProjectToRoad given empty path edge"}
	}
	p := Point{X: b.M[0], Y: b.M[2]}
	along, _ := pe.E.Project(p)
	tx, ty := pe.E.Tangent(along)
	sdot := b.M[1]*tx + b.M[3]*ty

	s := along - pe.D0

	J := zeroMat(2, 4)
	J[0][0] = tx
	J[0][2] = ty
	J[1][1] = tx
	J[1][3] = ty

	cov := matMul(J, matMul(b.P, transpose(J)))
	mean := []float64{s, sdot}
	if !allFinite(mean) || !allFiniteMat(cov) {
		return nil, &NumericFailureError{Op: "ProjectToRoad", Reason: "non-finite result"}
	}
	return &RoadBelief{M: mean, P: cov}, nil
}

func zerosVec(n int) []float64 { return make([]float64, n) }

// OutputEllipse reconstructs the best-state ground-frame output for a
// belief (spec §6): the mean (x, y) and the endpoints of the major and
// minor axes of its 95% confidence ellipse, scaled by confidenceEllipseScale
// (1.98σ). Road beliefs are converted to ground via pe first; pe is unused
// for a ground belief.
func (f *Filter) OutputEllipse(b Belief, pe *PathEdge) (mean, majorAxis, minorAxis Point, err error) {
	var gb *GroundBelief
	switch belief := b.(type) {
	case *RoadBelief:
		gb, err = f.InvertProjection(belief, pe)
		if err != nil {
			return Point{}, Point{}, Point{}, err
		}
	case *GroundBelief:
		gb = belief
	default:
		return Point{}, Point{}, Point{}, &GraphInconsistencyError{Reason: "OutputEllipse given unknown belief type"}
	}

	H := groundObservation()
	m := matVec(H, gb.M)
	posCov := matMul(H, matMul(gb.P, transpose(H)))
	mean = Point{X: m[0], Y: m[1]}

	lambda1, lambda2, v1, v2 := eigen2x2(posCov)
	if lambda1 < 0 {
		lambda1 = 0
	}
	if lambda2 < 0 {
		lambda2 = 0
	}
	scale1 := confidenceEllipseScale * math.Sqrt(lambda1)
	scale2 := confidenceEllipseScale * math.Sqrt(lambda2)

	majorAxis = Point{X: mean.X + v1[0]*scale1, Y: mean.Y + v1[1]*scale1}
	minorAxis = Point{X: mean.X + v2[0]*scale2, Y: mean.Y + v2[1]*scale2}
	if !allFinite([]float64{mean.X, mean.Y, majorAxis.X, majorAxis.Y, minorAxis.X, minorAxis.Y}) {
		return Point{}, Point{}, Point{}, &NumericFailureError{Op: "OutputEllipse", Reason: "non-finite result"}
	}
	return mean, majorAxis, minorAxis, nil
}

// eigen2x2 returns the eigenvalues of symmetric 2x2 matrix m, largest
// first, with their corresponding unit eigenvectors.
func eigen2x2(m [][]float64) (lambda1, lambda2 float64, v1, v2 [2]float64) {
	a, b, d := m[0][0], m[0][1], m[1][1]
	tr := a + d
	disc := math.Sqrt(math.Max(0, pow2(a-d)/4+b*b))
	lambda1 = tr/2 + disc
	lambda2 = tr/2 - disc

	v1 = eigenvector2x2(a, b, d, lambda1)
	v2 = [2]float64{-v1[1], v1[0]} // orthogonal complement
	return lambda1, lambda2, v1, v2
}

func eigenvector2x2(a, b, d, lambda float64) [2]float64 {
	if b != 0 {
		v := [2]float64{lambda - d, b}
		n := math.Hypot(v[0], v[1])
		if n > 1e-15 {
			return [2]float64{v[0] / n, v[1] / n}
		}
	}
	if a >= d {
		return [2]float64{1, 0}
	}
	return [2]float64{0, 1}
}
