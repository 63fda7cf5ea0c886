// Package network assembles thresholded matrices, node metadata and an
// optional clustering tree into one immutable Network snapshot.
//
// A Network is never edited in place. Every control change produces a new
// snapshot through Assemble, so views can keep the previous one around to
// diff against while animating a transition.
package network

import (
	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/threshold"
)

// Edge is an undirected edge between two node indices, Source < Target.
type Edge struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
}

// Network is the assembled, read-only view of one session state.
type Network struct {
	n         int
	labels    []string
	matrices  map[string]matrix.Matrix
	edges     map[string][]Edge
	meta      NodeMetadata
	linkage   *Linkage
	clusters  []int
	threshold threshold.Spec
	revision  uint64
}

// N returns the number of nodes.
func (net *Network) N() int {
	return net.n
}

// Labels returns the matrix labels in display order.
func (net *Network) Labels() []string {
	return append([]string(nil), net.labels...)
}

// Has reports whether a matrix with the given label exists.
func (net *Network) Has(label string) bool {
	_, ok := net.matrices[label]
	return ok
}

// Matrix returns a copy of the filtered matrix for label.
func (net *Network) Matrix(label string) (matrix.Matrix, bool) {
	m, ok := net.matrices[label]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// Edges returns a copy of the surviving edges for label.
func (net *Network) Edges(label string) []Edge {
	return append([]Edge(nil), net.edges[label]...)
}

// EdgeCount returns the number of surviving edges for label.
func (net *Network) EdgeCount(label string) int {
	return len(net.edges[label])
}

// Meta returns a copy of the node metadata.
func (net *Network) Meta() NodeMetadata {
	return net.meta.Clone()
}

// NodeName returns the primary display name of node i.
func (net *Network) NodeName(i int) string {
	return net.meta.Name(i)
}

// Linkage returns a copy of the clustering tree, or nil.
func (net *Network) Linkage() *Linkage {
	return net.linkage.Clone()
}

// Clusters returns the flattened cluster id of every node (1-based), or nil
// when the network was assembled without a linkage or cluster count.
func (net *Network) Clusters() []int {
	return append([]int(nil), net.clusters...)
}

// ClusterCount returns the number of distinct flattened clusters.
func (net *Network) ClusterCount() int {
	max := 0
	for _, c := range net.clusters {
		if c > max {
			max = c
		}
	}
	return max
}

// ClusterMembers returns the ascending node indices of cluster id.
func (net *Network) ClusterMembers(id int) []int {
	var out []int
	for i, c := range net.clusters {
		if c == id {
			out = append(out, i)
		}
	}
	return out
}

// LeafOrder returns node indices in dendrogram order, or 0..N-1 without a
// linkage.
func (net *Network) LeafOrder() []int {
	if net.linkage != nil {
		return net.linkage.LeafOrder()
	}
	order := make([]int, net.n)
	for i := range order {
		order[i] = i
	}
	return order
}

// Threshold returns the control state the network was built with.
func (net *Network) Threshold() threshold.Spec {
	return net.threshold.Clone()
}

// Revision returns the snapshot counter assigned by the caller.
func (net *Network) Revision() uint64 {
	return net.revision
}
