package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultInitialParameters_MatchesConstants(t *testing.T) {
	params := DefaultInitialParameters()
	assert.Equal(t, [2]float64{DefaultObsVarianceX, DefaultObsVarianceY}, params.ObsVariance)
	assert.Equal(t, DefaultOnRoadStateVariance, params.OnRoadStateVariance)
	assert.Equal(t, DefaultDt, params.DefaultDt)
	assert.Equal(t, uint64(0), params.Seed)
}

func TestLoadInitialParameters_MissingFile(t *testing.T) {
	_, err := LoadInitialParameters("/nonexistent/path/does/not/exist.xml")
	assert.Error(t, err)
}
