package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S3: edge transition, path contiguity + monotone distance (invariants 1, 2).
func TestPath_ContiguityAndMonotoneDistance(t *testing.T) {
	g := NewAdjacencyGraph()
	e1 := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 50, Y: 0}})
	e2 := NewRoadEdge(2, []Point{{X: 50, Y: 0}, {X: 100, Y: 0}})
	g.Connect(e1, e2)

	edges := []*PathEdge{NewPathEdge(e1, 0), NewPathEdge(e2, 50)}
	p, err := NewPath(g, edges, 60)
	require.NoError(t, err)

	assert.Equal(t, 60.0, p.TotalDistance())

	prevD0 := edges[0].D0
	for _, pe := range edges[1:] {
		assert.GreaterOrEqual(t, pe.D0, prevD0)
		prevD0 = pe.D0
	}
}

func TestPath_RejectsNonAdjacentEdges(t *testing.T) {
	g := NewAdjacencyGraph()
	e1 := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 50, Y: 0}})
	e2 := NewRoadEdge(2, []Point{{X: 500, Y: 500}, {X: 600, Y: 500}})

	edges := []*PathEdge{NewPathEdge(e1, 0), NewPathEdge(e2, 50)}
	_, err := NewPath(g, edges, 50)
	assert.Error(t, err)
}

func TestPath_EdgeContaining(t *testing.T) {
	g := NewAdjacencyGraph()
	e1 := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 50, Y: 0}})
	e2 := NewRoadEdge(2, []Point{{X: 50, Y: 0}, {X: 100, Y: 0}})
	g.Connect(e1, e2)

	edges := []*PathEdge{NewPathEdge(e1, 0), NewPathEdge(e2, 50)}
	p, err := NewPath(g, edges, 60)
	require.NoError(t, err)

	pe := p.EdgeContaining(55)
	require.NotNil(t, pe)
	assert.Equal(t, int64(2), pe.E.ID())

	assert.Nil(t, p.EdgeContaining(1000))
}

func TestPathEdge_Truncate(t *testing.T) {
	edge := NewRoadEdge(1, []Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	pe := NewPathEdge(edge, 0)
	belief := &RoadBelief{M: []float64{10, 2}, P: [][]float64{{400, 0}, {0, 4}}}

	truncated, err := pe.Truncate(belief)
	require.NoError(t, err)

	assert.Less(t, truncated.P[0][0], belief.P[0][0])
}
