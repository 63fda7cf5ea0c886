// Package selection derives the sub-network induced by a set of selected
// nodes. Results are recomputed from scratch on every call; the source
// Network is never modified.
package selection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vanderheijden86/netview/pkg/debug"
	"github.com/vanderheijden86/netview/pkg/metrics"
	"github.com/vanderheijden86/netview/pkg/network"
)

var (
	ErrNilNetwork     = errors.New("selection: nil network")
	ErrUnknownLabel   = errors.New("selection: unknown matrix label")
	ErrNodeOutOfRange = errors.New("selection: node index out of range")
)

// SubNetwork is the induced sub-graph of one matrix label. Node indices in
// Edges are local, i.e. positions in Nodes.
type SubNetwork struct {
	Label string         `json:"label"`
	Nodes []int          `json:"nodes"` // local -> global, ascending
	Edges []network.Edge `json:"edges"`
}

// Local maps a global node index to its local index.
func (s *SubNetwork) Local(global int) (int, bool) {
	i := sort.SearchInts(s.Nodes, global)
	if i < len(s.Nodes) && s.Nodes[i] == global {
		return i, true
	}
	return 0, false
}

// Global maps a local node index back to the network.
func (s *SubNetwork) Global(local int) int {
	return s.Nodes[local]
}

// Len returns the number of selected nodes.
func (s *SubNetwork) Len() int {
	return len(s.Nodes)
}

// InducedSubnetwork returns the edges of label whose endpoints are both in
// nodes, remapped to a dense local index space.
func InducedSubnetwork(net *network.Network, label string, nodes map[int]struct{}) (*SubNetwork, error) {
	defer metrics.Timer(metrics.SubnetworkDerive)()
	if net == nil {
		return nil, ErrNilNetwork
	}
	if !net.Has(label) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}

	global := make([]int, 0, len(nodes))
	for idx := range nodes {
		if idx < 0 || idx >= net.N() {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrNodeOutOfRange, idx, net.N())
		}
		global = append(global, idx)
	}
	sort.Ints(global)

	local := make(map[int]int, len(global))
	for i, g := range global {
		local[g] = i
	}

	sub := &SubNetwork{Label: label, Nodes: global}
	for _, e := range net.Edges(label) {
		s, ok := local[e.Source]
		if !ok {
			continue
		}
		t, ok := local[e.Target]
		if !ok {
			continue
		}
		sub.Edges = append(sub.Edges, network.Edge{Source: s, Target: t, Weight: e.Weight})
	}
	debug.Log("subnetwork %q: %d nodes, %d edges", label, len(sub.Nodes), len(sub.Edges))
	return sub, nil
}

// NodeSet builds a selection from node indices.
func NodeSet(indices ...int) map[int]struct{} {
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	return set
}

// AllNodes selects every node of net.
func AllNodes(net *network.Network) map[int]struct{} {
	set := make(map[int]struct{}, net.N())
	for i := 0; i < net.N(); i++ {
		set[i] = struct{}{}
	}
	return set
}

// ClusterSelection selects the members of a flattened cluster. It is empty
// when the network carries no clusters or id is unknown.
func ClusterSelection(net *network.Network, id int) map[int]struct{} {
	return NodeSet(net.ClusterMembers(id)...)
}

// NeighbourhoodSelection selects node and every node it shares an edge with
// under label.
func NeighbourhoodSelection(net *network.Network, label string, node int) (map[int]struct{}, error) {
	if net == nil {
		return nil, ErrNilNetwork
	}
	if !net.Has(label) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	if node < 0 || node >= net.N() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrNodeOutOfRange, node, net.N())
	}
	set := NodeSet(node)
	for _, e := range net.Edges(label) {
		switch node {
		case e.Source:
			set[e.Target] = struct{}{}
		case e.Target:
			set[e.Source] = struct{}{}
		}
	}
	return set, nil
}
