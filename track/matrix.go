package track

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Small dense-matrix helpers used throughout the filter. The Gaussian
// beliefs here are at most 4-dimensional, so a hand-rolled [][]float64
// representation stays cheap and readable; gonum is reserved for the two
// operations that genuinely need a real decomposition (pinv, Cholesky).

func zeroMat(r, c int) [][]float64 {
	m := make([][]float64, r)
	for i := 0; i < r; i++ {
		m[i] = make([]float64, c)
	}
	return m
}

func identity(n int) [][]float64 {
	m := zeroMat(n, n)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}

func matAdd(a, b [][]float64) [][]float64 {
	r, c := len(a), len(a[0])
	out := zeroMat(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return out
}

func matSub(a, b [][]float64) [][]float64 {
	r, c := len(a), len(a[0])
	out := zeroMat(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i][j] = a[i][j] - b[i][j]
		}
	}
	return out
}

func matMul(a, b [][]float64) [][]float64 {
	r, c, k := len(a), len(b[0]), len(a[0])
	out := zeroMat(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum := 0.0
			for t := 0; t < k; t++ {
				sum += a[i][t] * b[t][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func matVec(a [][]float64, v []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		sum := 0.0
		for j := range v {
			sum += a[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

func vecAdd(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func vecSub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func transpose(a [][]float64) [][]float64 {
	r, c := len(a), len(a[0])
	out := zeroMat(c, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[j][i] = a[i][j]
		}
	}
	return out
}

func symmetrize(a [][]float64) [][]float64 {
	r, c := len(a), len(a[0])
	out := zeroMat(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i][j] = 0.5 * (a[i][j] + a[j][i])
		}
	}
	return out
}

func cloneMat(a [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for i := range a {
		out[i] = append([]float64(nil), a[i]...)
	}
	return out
}

func traceOf(a [][]float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i][i]
	}
	return sum
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func allFiniteMat(m [][]float64) bool {
	for _, row := range m {
		if !allFinite(row) {
			return false
		}
	}
	return true
}

func toDense(a [][]float64) *mat.Dense {
	r := len(a)
	if r == 0 {
		return mat.NewDense(0, 0, nil)
	}
	c := len(a[0])
	data := make([]float64, 0, r*c)
	for _, row := range a {
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data)
}

func fromDense(d *mat.Dense) [][]float64 {
	r, c := d.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		copy(out[i], d.RawRowView(i))
	}
	return out
}

// pinv computes the Moore-Penrose pseudo-inverse of a via SVD. Used as the
// numerically robust fallback for the innovation-covariance solve in
// filter.go when S is ill-conditioned.
func pinv(a [][]float64) [][]float64 {
	r := len(a)
	if r == 0 {
		return [][]float64{}
	}
	c := len(a[0])
	A := toDense(a)

	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDThin) {
		return zeroMat(c, r)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	maxS := 0.0
	if len(s) > 0 {
		maxS = s[0]
	}
	tol := 1e-15 * float64(maxInt(r, c)) * maxS

	sigInv := mat.NewDense(len(s), len(s), nil)
	for i, val := range s {
		if val > tol {
			sigInv.Set(i, i, 1.0/val)
		}
	}

	var tmp, res mat.Dense
	tmp.Mul(&v, sigInv)
	res.Mul(&tmp, u.T())
	return fromDense(&res)
}

// choleskyLower returns the lower-triangular Cholesky factor L such that
// L L^T = a. Used to draw correlated Gaussian noise: if z ~ N(0, I) then
// L*z ~ N(0, a) (spec.md §4.6, §8 determinism).
func choleskyLower(a [][]float64) ([][]float64, bool) {
	n := len(a)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, a[i][j])
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, false
	}
	var lMat mat.TriDense
	chol.LTo(&lMat)
	out := zeroMat(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			out[i][j] = lMat.At(i, j)
		}
	}
	return out, true
}

// minEigenvalue estimates the smallest eigenvalue of a symmetric matrix via
// power iteration on the largest eigenvalue plus a Gershgorin lower bound.
func minEigenvalue(a [][]float64) float64 {
	n := len(a)
	if n == 0 {
		return 0
	}
	v := make([]float64, n)
	for i := range v {
		v[i] = 1.0 / float64(n)
	}
	for it := 0; it < 25; it++ {
		v = matVec(a, v)
		norm := 0.0
		for _, x := range v {
			norm += x * x
		}
		norm = math.Sqrt(norm)
		if norm < 1e-12 {
			break
		}
		for i := range v {
			v[i] /= norm
		}
	}
	num := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			num += v[i] * a[i][j] * v[j]
		}
	}
	minDisc := num
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			if i != j {
				sum += math.Abs(a[i][j])
			}
		}
		if disc := a[i][i] - sum; disc < minDisc {
			minDisc = disc
		}
	}
	return minDisc
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
