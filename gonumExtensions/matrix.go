package gonumExtensions

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Ones returns a (m by n) matrix filled with ones
func Ones(m, n int) *mat.Dense {
	return Full(m, n, 1.)
}

// Full returns a (m by n) matrix filled with value
func Full(m, n int, value float64) *mat.Dense {
	data := make([]float64, m*n)
	for index := range data {
		data[index] = value
	}
	return mat.NewDense(m, n, data)
}

// Eye returns a (m by n) matrix with ones on the k-th diagonal. k = 0 is the
// main diagonal, k > 0 above and k < 0 below.
func Eye(m, n, k int) *mat.Dense {
	res := mat.NewDense(m, n, nil)
	for row := 0; row < m; row++ {
		col := row + k
		if col >= 0 && col < n {
			res.Set(row, col, 1.)
		}
	}
	return res
}

// Identity returns the (n by n) identity matrix
func Identity(n int) *mat.Dense {
	return Eye(n, n, 0)
}

// NANORINF checks if there are any NAN or INF in matrix
func NANORINF(matrix mat.Matrix) bool {
	m, n := matrix.Dims()
	for row := 0; row < m; row++ {
		for col := 0; col < n; col++ {
			if math.IsNaN(matrix.At(row, col)) || math.IsInf(matrix.At(row, col), 0) {
				return true
			}
		}
	}
	return false
}
