package network

import (
	"fmt"
	"sort"
	"time"

	"github.com/vanderheijden86/netview/pkg/debug"
	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/metrics"
	"github.com/vanderheijden86/netview/pkg/threshold"
)

// Option configures Assemble.
type Option func(*assembleOptions)

type assembleOptions struct {
	labels      []string
	threshold   threshold.Spec
	numClusters int
	revision    uint64
}

// WithLabels fixes the label order. It must name exactly the keys of the
// filtered-matrix mapping. Without it labels are sorted.
func WithLabels(labels []string) Option {
	return func(o *assembleOptions) {
		o.labels = append([]string(nil), labels...)
	}
}

// WithThreshold records the control state the matrices were filtered with.
func WithThreshold(spec threshold.Spec) Option {
	return func(o *assembleOptions) {
		o.threshold = spec.Clone()
	}
}

// WithClusters flattens the linkage into k clusters. Ignored without a linkage.
func WithClusters(k int) Option {
	return func(o *assembleOptions) {
		o.numClusters = k
	}
}

// WithRevision stamps the snapshot with a revision number.
func WithRevision(rev uint64) Option {
	return func(o *assembleOptions) {
		o.revision = rev
	}
}

// Assemble combines filtered matrices, node metadata and an optional linkage
// into a new Network. Inputs are copied; the result shares no memory with
// them. For every label the edge list holds the upper-triangle cells that
// are not absent, in row-major order; the diagonal is skipped.
func Assemble(filtered map[string]matrix.Matrix, meta NodeMetadata, linkage *Linkage, opts ...Option) (*Network, error) {
	defer metrics.Timer(metrics.NetworkAssemble)()
	start := time.Now()

	var o assembleOptions
	for _, opt := range opts {
		opt(&o)
	}

	labels, err := resolveLabels(filtered, o.labels)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no matrices", ErrEmptyNetwork)
	}

	n := len(filtered[labels[0]])
	if n == 0 {
		return nil, fmt.Errorf("%w: matrix %q has no rows", ErrEmptyNetwork, labels[0])
	}
	for _, label := range labels {
		m := filtered[label]
		if len(m) != n {
			return nil, fmt.Errorf("%w: matrix %q has %d rows, want %d", ErrDimensionMismatch, label, len(m), n)
		}
		for i, row := range m {
			if len(row) != n {
				return nil, fmt.Errorf("%w: matrix %q row %d has %d columns, want %d", ErrDimensionMismatch, label, i, len(row), n)
			}
		}
	}
	if err := meta.Validate(n); err != nil {
		return nil, err
	}
	if linkage != nil {
		if linkage.Leaves() != n {
			return nil, fmt.Errorf("%w: linkage has %d leaves, want %d", ErrDimensionMismatch, linkage.Leaves(), n)
		}
		if err := linkage.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
		}
	}

	net := &Network{
		n:         n,
		labels:    labels,
		matrices:  make(map[string]matrix.Matrix, len(labels)),
		edges:     make(map[string][]Edge, len(labels)),
		meta:      meta.Clone(),
		linkage:   linkage.Clone(),
		threshold: o.threshold.Clone(),
		revision:  o.revision,
	}
	for _, label := range labels {
		m := filtered[label].Clone()
		net.matrices[label] = m
		net.edges[label] = edgeList(m)
	}
	if linkage != nil && o.numClusters > 0 {
		net.clusters = linkage.Flatten(o.numClusters)
	}

	debug.Log("assembled network rev=%d n=%d labels=%d in %v", net.revision, n, len(labels), time.Since(start))
	return net, nil
}

func resolveLabels(filtered map[string]matrix.Matrix, order []string) ([]string, error) {
	if order == nil {
		labels := make([]string, 0, len(filtered))
		for label := range filtered {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		return labels, nil
	}
	if len(order) != len(filtered) {
		return nil, fmt.Errorf("%w: %d labels for %d matrices", ErrLabelMismatch, len(order), len(filtered))
	}
	seen := make(map[string]bool, len(order))
	for _, label := range order {
		if _, ok := filtered[label]; !ok {
			return nil, fmt.Errorf("%w: no matrix for label %q", ErrLabelMismatch, label)
		}
		if seen[label] {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrLabelMismatch, label)
		}
		seen[label] = true
	}
	return append([]string(nil), order...), nil
}

func edgeList(m matrix.Matrix) []Edge {
	var edges []Edge
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if v := m[i][j]; !matrix.IsAbsent(v) {
				edges = append(edges, Edge{Source: i, Target: j, Weight: v})
			}
		}
	}
	return edges
}
