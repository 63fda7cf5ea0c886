package matrix

import "errors"

// ErrShapeMismatch is returned when a matrix is empty or not square.
// Callers match it with errors.Is; context is added with %w.
var ErrShapeMismatch = errors.New("matrix: shape mismatch")
