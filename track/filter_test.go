package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFilter() *Filter {
	return NewFilter([2]float64{1, 1}, 0.01, [2]float64{0, 0})
}

// S1: off-road linear drift.
func TestFilter_OffRoadLinearDrift(t *testing.T) {
	f := testFilter()
	initCov := identity(4)
	belief := &GroundBelief{
		M: []float64{0, 1, 0, 0},
		P: initCov,
	}

	predicted, err := f.Predict(belief, 1.0, EmptyPathEdge, EmptyPathEdge)
	require.NoError(t, err)

	mean := predicted.Mean()
	assert.InDelta(t, 1.0, mean[0], 1e-9)
	assert.InDelta(t, 1.0, mean[1], 1e-9)
	assert.InDelta(t, 0.0, mean[2], 1e-9)
	assert.InDelta(t, 0.0, mean[3], 1e-9)

	traceBefore := traceOf(predicted.Cov())
	updated, err := f.Update(predicted, []float64{1.0, 0.0})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, updated.Mean()[0], 1e-6)
	assert.InDelta(t, 0.0, updated.Mean()[2], 1e-6)
	assert.Less(t, traceOf(updated.Cov()), traceBefore)
}

// S2: on-road single-edge advance.
func TestFilter_OnRoadSingleEdgeAdvance(t *testing.T) {
	f := testFilter()
	edge := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	pe := NewPathEdge(edge, 0)

	belief := &RoadBelief{M: []float64{0, 10}, P: [][]float64{{1, 0}, {0, 1}}}
	predicted, err := f.Predict(belief, 2.0, pe, pe)
	require.NoError(t, err)

	rb := predicted.(*RoadBelief)
	assert.InDelta(t, 20.0, rb.M[0], 1e-9)

	truncated, err := pe.Truncate(rb)
	require.NoError(t, err)
	assert.Less(t, truncated.P[0][0], rb.P[0][0])
}

// Invariant 5: Kalman consistency.
func TestFilter_KalmanConsistency(t *testing.T) {
	f := testFilter()
	belief := &GroundBelief{M: []float64{5, 1, -3, 0.5}, P: [][]float64{
		{4, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 4, 0}, {0, 0, 0, 1},
	}}
	H := groundObservation()
	ownObs := matVec(H, belief.M)

	updated, err := f.Update(belief, ownObs)
	require.NoError(t, err)

	assert.InDelta(t, belief.M[0], updated.Mean()[0], 1e-9)
	assert.InDelta(t, belief.M[2], updated.Mean()[2], 1e-9)
	assert.Less(t, traceOf(updated.Cov()), traceOf(belief.Cov()))
}

// Invariant 4: projection round-trip.
func TestFilter_ProjectionRoundTrip(t *testing.T) {
	f := testFilter()
	edge := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	pe := NewPathEdge(edge, 0)

	original := &RoadBelief{M: []float64{30, 5}, P: [][]float64{{2, 0.1}, {0.1, 0.5}}}

	ground, err := f.InvertProjection(original, pe)
	require.NoError(t, err)

	back, err := f.ProjectToRoad(ground, pe)
	require.NoError(t, err)

	assert.InDelta(t, original.M[0], back.M[0], 1e-9)
	assert.InDelta(t, original.M[1], back.M[1], 1e-9)
	for i := range original.P {
		for j := range original.P[i] {
			assert.InDelta(t, original.P[i][j], back.P[i][j], 1e-9)
		}
	}
}

func TestFilter_PredictRejectsNonPositiveDt(t *testing.T) {
	f := testFilter()
	_, err := f.Predict(&GroundBelief{M: make([]float64, 4), P: zeroMat(4, 4)}, 0, EmptyPathEdge, EmptyPathEdge)
	assert.Error(t, err)
}

// §6 output: mean plus the 1.98σ confidence ellipse axes for a ground belief.
func TestFilter_OutputEllipseForGroundBelief(t *testing.T) {
	f := testFilter()
	belief := &GroundBelief{
		M: []float64{10, 0, -5, 0},
		P: [][]float64{
			{4, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 9, 0},
			{0, 0, 0, 1},
		},
	}

	mean, major, minor, err := f.OutputEllipse(belief, EmptyPathEdge)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, mean.X, 1e-9)
	assert.InDelta(t, -5.0, mean.Y, 1e-9)

	// position covariance is diag(4, 9); the major axis aligns with the
	// larger-variance (y) eigenvector, scaled by 1.98*sqrt(9) = 5.94.
	majorLen := dist(mean, major)
	minorLen := dist(mean, minor)
	assert.InDelta(t, confidenceEllipseScale*3.0, majorLen, 1e-9)
	assert.InDelta(t, confidenceEllipseScale*2.0, minorLen, 1e-9)
}

// §6 output, on-road case: the belief is converted to ground via pe first.
func TestFilter_OutputEllipseForRoadBelief(t *testing.T) {
	f := testFilter()
	edge := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	pe := NewPathEdge(edge, 0)
	belief := &RoadBelief{M: []float64{30, 0}, P: [][]float64{{4, 0}, {0, 1}}}

	mean, _, _, err := f.OutputEllipse(belief, pe)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, mean.X, 1e-9)
	assert.InDelta(t, 0.0, mean.Y, 1e-9)
}
