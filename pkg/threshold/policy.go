// Package threshold turns a raw weight matrix into a filtered matrix by
// deciding which cells survive as edges.
//
// A Policy is a strategy: every implementation shares the signature
// Apply(matrix, controlValues) and is selected by name from configuration.
// Policies are pure. They never modify their input, keep no state between
// calls and are safe to use from several goroutines at once.
//
// All magnitude-style policies treat the cutoff as inclusive: a cell whose
// magnitude equals the cutoff is kept, a cell strictly below it is dropped.
package threshold

import (
	"errors"
	"fmt"
	"math"

	"github.com/vanderheijden86/netview/pkg/matrix"
)

// ErrInvalidControl is returned when the control vector is empty or holds a
// value the policy cannot interpret.
var ErrInvalidControl = errors.New("threshold: invalid control values")

// Policy maps a matrix and a control vector to a filtered matrix of the same
// shape. Cells that do not survive are set to matrix.Absent().
type Policy interface {
	Apply(m matrix.Matrix, control []float64) (matrix.Matrix, error)
}

// PolicyFunc adapts a plain function to the Policy interface.
type PolicyFunc func(m matrix.Matrix, control []float64) (matrix.Matrix, error)

// Apply calls f(m, control).
func (f PolicyFunc) Apply(m matrix.Matrix, control []float64) (matrix.Matrix, error) {
	return f(m, control)
}

// checkInputs validates the arguments every policy shares and returns the
// first control value.
func checkInputs(m matrix.Matrix, control []float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if len(control) == 0 {
		return 0, fmt.Errorf("%w: no control values", ErrInvalidControl)
	}
	c := control[0]
	if math.IsNaN(c) {
		return 0, fmt.Errorf("%w: control value is NaN", ErrInvalidControl)
	}
	return c, nil
}

// filter copies m, replacing every cell for which keep returns false with
// the absent sentinel. Cells that are already absent stay absent.
func filter(m matrix.Matrix, keep func(i, j int, v float64) bool) matrix.Matrix {
	out := matrix.New(len(m))
	for i, row := range m {
		for j, v := range row {
			if matrix.IsAbsent(v) || !keep(i, j, v) {
				out[i][j] = matrix.Absent()
				continue
			}
			out[i][j] = v
		}
	}
	return out
}

// Magnitude is the default policy. control[0] is an absolute-magnitude
// cutoff; cells with |w| < cutoff become absent, all others keep their signed
// value. The diagonal is not special-cased.
type Magnitude struct{}

// Apply implements Policy.
func (Magnitude) Apply(m matrix.Matrix, control []float64) (matrix.Matrix, error) {
	cutoff, err := checkInputs(m, control)
	if err != nil {
		return nil, err
	}
	return filter(m, func(_, _ int, v float64) bool {
		return math.Abs(v) >= cutoff
	}), nil
}

// Signed keeps only edges of one sign whose magnitude reaches control[0].
type Signed struct {
	// Negative selects anti-correlations (w <= -cutoff) instead of
	// correlations (w >= cutoff).
	Negative bool
}

// Apply implements Policy.
func (s Signed) Apply(m matrix.Matrix, control []float64) (matrix.Matrix, error) {
	cutoff, err := checkInputs(m, control)
	if err != nil {
		return nil, err
	}
	cutoff = math.Abs(cutoff)
	return filter(m, func(_, _ int, v float64) bool {
		if s.Negative {
			return v <= -cutoff
		}
		return v >= cutoff
	}), nil
}
