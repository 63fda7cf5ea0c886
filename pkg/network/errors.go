package network

import "errors"

var (
	// ErrDimensionMismatch is returned when matrices, node metadata or the
	// linkage disagree on the number of nodes, or a matrix is not square.
	ErrDimensionMismatch = errors.New("network: dimension mismatch")

	// ErrEmptyNetwork is returned when the assembled network would have no
	// nodes.
	ErrEmptyNetwork = errors.New("network: empty network")

	// ErrLabelMismatch is returned when a requested label order does not
	// name exactly the labels of the supplied matrices.
	ErrLabelMismatch = errors.New("network: label mismatch")

	// ErrInvalidLinkage is returned when merge rows reference unknown or
	// already merged clusters.
	ErrInvalidLinkage = errors.New("network: invalid linkage")
)
