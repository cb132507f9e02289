package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBelief_DimDiscriminatesRegime(t *testing.T) {
	ground := newGroundBelief([]float64{1, 2, 3, 4}, identity(4))
	road := newRoadBelief([]float64{1, 2}, identity(2))

	assert.Equal(t, 4, ground.Dim())
	assert.Equal(t, 2, road.Dim())
}

func TestCloneBelief_DeepCopies(t *testing.T) {
	original := newRoadBelief([]float64{1, 2}, [][]float64{{1, 0}, {0, 1}})
	clone := cloneBelief(original).(*RoadBelief)
	clone.M[0] = 99
	clone.P[0][0] = 99

	assert.Equal(t, 1.0, original.M[0])
	assert.Equal(t, 1.0, original.P[0][0])
}
