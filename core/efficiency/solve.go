package efficiency

import (
	"errors"
	"math"
)

var errSingular = errors.New("normal equations are singular")

// invert returns the inverse of a square matrix by Gauss-Jordan elimination with
// partial pivoting. The input is not modified.
func invert(a [][]float64) ([][]float64, error) {
	n := len(a)
	aug := make([][]float64, n)
	for i := range n {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], a[i])
		aug[i][n+i] = 1
	}

	for col := range n {
		// find pivot
		pivot := col
		maxAbs := math.Abs(aug[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r][col]); v > maxAbs {
				maxAbs = v
				pivot = r
			}
		}
		if maxAbs == 0 || math.IsNaN(maxAbs) {
			return nil, errSingular
		}
		if pivot != col {
			aug[col], aug[pivot] = aug[pivot], aug[col]
		}

		inv := 1 / aug[col][col]
		for c := range 2 * n {
			aug[col][c] *= inv
		}
		for r := range n {
			if r == col || aug[r][col] == 0 {
				continue
			}
			factor := aug[r][col]
			for c := range 2 * n {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	out := make([][]float64, n)
	for i := range n {
		out[i] = aug[i][n:]
	}
	return out, nil
}
