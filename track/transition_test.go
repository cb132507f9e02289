package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant 6: discrete density normalization.
func TestTransitionDistribution_Normalizes(t *testing.T) {
	td := NewTransitionDistribution([2]float64{70, 30}, [2]float64{95, 5})
	edge := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	outgoing := []Edge{
		NewRoadEdge(2, []Point{{X: 10, Y: 0}, {X: 20, Y: 0}}),
		NewRoadEdge(3, []Point{{X: 10, Y: 0}, {X: 10, Y: 10}}),
	}

	sum := 0.0
	logOff, err := td.LogEvaluate(edge, EmptyEdge, 0, 0)
	require.NoError(t, err)
	sum += math.Exp(logOff)

	for _, e := range outgoing {
		logOn, err := td.LogEvaluate(edge, e, 0, len(outgoing))
		require.NoError(t, err)
		sum += math.Exp(logOn)
	}

	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestTransitionDistribution_Observe(t *testing.T) {
	td := NewTransitionDistribution([2]float64{1, 1}, [2]float64{1, 1})
	edge := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 10, Y: 0}})

	// each observation adds one to the prior pseudo-count of 1
	td.Observe(EmptyEdge, edge)
	assert.Equal(t, 2.0, td.AlphaOff[offMoveOn])

	td.Observe(edge, EmptyEdge)
	assert.Equal(t, 2.0, td.AlphaOn[onMoveOff])
}

func TestTransitionDistribution_LogEvaluateErrorsOnEmptyTransferSet(t *testing.T) {
	td := NewTransitionDistribution([2]float64{70, 30}, [2]float64{95, 5})
	edge := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	other := NewRoadEdge(2, []Point{{X: 10, Y: 0}, {X: 20, Y: 0}})

	_, err := td.LogEvaluate(edge, other, 0, 0)
	assert.Error(t, err)

	_, err = td.LogEvaluate(EmptyEdge, edge, 0, 0)
	assert.Error(t, err)
}
