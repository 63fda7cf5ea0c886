package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// FromDense copies a square gonum matrix into a Matrix.
func FromDense(d mat.Matrix) (Matrix, error) {
	r, c := d.Dims()
	if r == 0 || r != c {
		return nil, ErrShapeMismatch
	}
	m := New(r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m, nil
}

// Dims, At and T let a Matrix be passed wherever gonum expects a
// mat.Matrix, as datasource.WriteMatrix does. Absent cells read as NaN.
var _ mat.Matrix = Matrix(nil)

func (m Matrix) Dims() (r, c int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// At returns the cell at row i, column j.
func (m Matrix) At(i, j int) float64 {
	return m[i][j]
}

// T returns the transpose view of m.
func (m Matrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}
