package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatMul_IdentityIsNoOp(t *testing.T) {
	a := [][]float64{{1, 2}, {3, 4}}
	assert.Equal(t, a, matMul(identity(2), a))
}

func TestPinv_RecoversInverseForSquareInvertible(t *testing.T) {
	a := [][]float64{{4, 0}, {0, 9}}
	inv := pinv(a)
	assert.InDelta(t, 0.25, inv[0][0], 1e-9)
	assert.InDelta(t, 1.0/9.0, inv[1][1], 1e-9)
}

func TestCholeskyLower_ReproducesCovariance(t *testing.T) {
	a := [][]float64{{4, 2}, {2, 3}}
	L, ok := choleskyLower(a)
	require.True(t, ok)
	recomposed := matMul(L, transpose(L))
	for i := range a {
		for j := range a[i] {
			assert.InDelta(t, a[i][j], recomposed[i][j], 1e-9)
		}
	}
}

func TestMinEigenvalue_DetectsNonPSD(t *testing.T) {
	psd := identity(2)
	assert.Greater(t, minEigenvalue(psd), 0.0)

	nonPSD := [][]float64{{1, 0}, {0, -1}}
	assert.Less(t, minEigenvalue(nonPSD), 0.0)
}
