// Package store holds the raw matrices of one visualisation session together
// with the node metadata and clustering tree they share.
//
// A Store is filled once after loading and is replaced wholesale when the
// underlying data files change. It never holds filtered matrices.
package store

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/network"
)

var (
	// ErrUnknownLabel is returned when no matrix has the requested label.
	ErrUnknownLabel = errors.New("store: unknown matrix label")

	// ErrDuplicateLabel is returned when a label is added twice or is empty.
	ErrDuplicateLabel = errors.New("store: duplicate or empty matrix label")
)

// Store is a label-addressed collection of square matrices of one dimension.
type Store struct {
	labels   []string
	matrices map[string]matrix.Matrix
	meta     network.NodeMetadata
	linkage  *network.Linkage
}

// New returns an empty store. The metadata and linkage are copied and are
// checked against the matrix dimension when the first matrix is added.
func New(meta network.NodeMetadata, linkage *network.Linkage) *Store {
	return &Store{
		matrices: make(map[string]matrix.Matrix),
		meta:     meta.Clone(),
		linkage:  linkage.Clone(),
	}
}

// Add stores a copy of m under label.
func (s *Store) Add(label string, m matrix.Matrix) error {
	if label == "" {
		return fmt.Errorf("%w: empty label", ErrDuplicateLabel)
	}
	if _, ok := s.matrices[label]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("matrix %q: %w", label, err)
	}
	n := m.Dim()
	if len(s.labels) > 0 {
		if want := s.Dim(); n != want {
			return fmt.Errorf("%w: matrix %q is %dx%d, store holds %dx%d", network.ErrDimensionMismatch, label, n, n, want, want)
		}
	} else {
		if err := s.meta.Validate(n); err != nil {
			return fmt.Errorf("matrix %q: %w", label, err)
		}
		if s.linkage != nil && s.linkage.Leaves() != n {
			return fmt.Errorf("%w: linkage has %d leaves, matrix %q has %d rows", network.ErrDimensionMismatch, s.linkage.Leaves(), label, n)
		}
	}
	s.labels = append(s.labels, label)
	s.matrices[label] = m.Clone()
	return nil
}

// ActiveMatrix returns a copy of the raw matrix stored under label.
func (s *Store) ActiveMatrix(label string) (matrix.Matrix, error) {
	m, ok := s.matrices[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return m.Clone(), nil
}

// Labels returns the matrix labels in insertion order.
func (s *Store) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Len returns the number of matrices.
func (s *Store) Len() int {
	return len(s.labels)
}

// Dim returns the shared matrix dimension, or 0 for an empty store.
func (s *Store) Dim() int {
	if len(s.labels) == 0 {
		return 0
	}
	return s.matrices[s.labels[0]].Dim()
}

// Meta returns a copy of the node metadata.
func (s *Store) Meta() network.NodeMetadata {
	return s.meta.Clone()
}

// Linkage returns a copy of the clustering tree, or nil.
func (s *Store) Linkage() *network.Linkage {
	return s.linkage.Clone()
}

// Each calls fn for every matrix in insertion order and stops at the first
// error. The matrix passed to fn is shared and must not be modified.
func (s *Store) Each(fn func(label string, m matrix.Matrix) error) error {
	for _, label := range s.labels {
		if err := fn(label, s.matrices[label]); err != nil {
			return err
		}
	}
	return nil
}
