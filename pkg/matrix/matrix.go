// Package matrix holds the square weighted matrices the rest of netview works
// on, together with the "absent" sentinel that marks a cell as carrying no edge.
//
// A Matrix is a plain [][]float64 so that data loaded from text files, SQLite
// tables or test fixtures can be passed around without conversion. Squareness
// is checked by Validate rather than enforced by the type; symmetry is a
// convention only.
package matrix

import (
	"fmt"
	"math"
)

// Matrix is a row-major weight matrix. m[i][j] is the signed weight of the
// edge between node i and node j. A filtered matrix has the same shape as its
// source and carries Absent() in every cell that is not an edge.
type Matrix [][]float64

// Absent returns the sentinel stored in cells that carry no edge.
func Absent() float64 {
	return math.NaN()
}

// IsAbsent reports whether v is the absent sentinel.
func IsAbsent(v float64) bool {
	return math.IsNaN(v)
}

// New allocates an n x n matrix filled with zeros.
func New(n int) Matrix {
	m := make(Matrix, n)
	backing := make([]float64, n*n)
	for i := range m {
		m[i] = backing[i*n : (i+1)*n : (i+1)*n]
	}
	return m
}

// FromRows copies rows into a new Matrix. It does not validate the shape.
func FromRows(rows [][]float64) Matrix {
	m := make(Matrix, len(rows))
	for i, r := range rows {
		m[i] = append([]float64(nil), r...)
	}
	return m
}

// Dim returns the number of rows.
func (m Matrix) Dim() int {
	return len(m)
}

// Validate checks that m is non-empty and square.
func (m Matrix) Validate() error {
	n := len(m)
	if n == 0 {
		return fmt.Errorf("%w: matrix is empty", ErrShapeMismatch)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), n)
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	return FromRows(m)
}

// SameShape reports whether m and o have identical row and column counts.
func (m Matrix) SameShape(o Matrix) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(o[i]) {
			return false
		}
	}
	return true
}

// IsSymmetric reports whether m[i][j] and m[j][i] agree within eps for every
// pair. Absent cells only match other absent cells.
func (m Matrix) IsSymmetric(eps float64) bool {
	if m.Validate() != nil {
		return false
	}
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			a, b := m[i][j], m[j][i]
			if IsAbsent(a) || IsAbsent(b) {
				if IsAbsent(a) != IsAbsent(b) {
					return false
				}
				continue
			}
			if math.Abs(a-b) > eps {
				return false
			}
		}
	}
	return true
}

// CountPresent returns the number of cells that are not absent.
func (m Matrix) CountPresent() int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if !IsAbsent(v) {
				n++
			}
		}
	}
	return n
}

// MaxAbs returns the largest off-diagonal magnitude, ignoring absent cells.
// It returns 0 for matrices with no such cell.
func (m Matrix) MaxAbs() float64 {
	best := 0.0
	for i, row := range m {
		for j, v := range row {
			if i == j || IsAbsent(v) {
				continue
			}
			if a := math.Abs(v); a > best {
				best = a
			}
		}
	}
	return best
}
