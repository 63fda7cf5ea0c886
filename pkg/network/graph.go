package network

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	gnetwork "gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph builds a gonum weighted undirected graph for label. Node IDs are the
// matrix indices; every node is present even when it has no edges.
func (net *Network) Graph(label string) (*simple.WeightedUndirectedGraph, bool) {
	edges, ok := net.edges[label]
	if !ok {
		return nil, false
	}
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < net.n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.Source), simple.Node(e.Target), e.Weight))
	}
	return g, true
}

// Stats summarises the structure of one thresholded matrix.
type Stats struct {
	Label       string    `json:"label"`
	NodeCount   int       `json:"node_count"`
	EdgeCount   int       `json:"edge_count"`
	Density     float64   `json:"density"`
	Positive    int       `json:"positive_edges"`
	Negative    int       `json:"negative_edges"`
	Degree      []int     `json:"degree"`
	Strength    []float64 `json:"strength"` // sum of |w| per node
	Betweenness []float64 `json:"betweenness"`
	Components  [][]int   `json:"components"` // sorted by size, largest first
	Isolated    int       `json:"isolated"`
}

// Hub returns the node with the highest betweenness, breaking ties by
// degree and then index. It returns -1 for a network without nodes.
func (s Stats) Hub() int {
	best := -1
	for i := range s.Betweenness {
		if best < 0 ||
			s.Betweenness[i] > s.Betweenness[best] ||
			(s.Betweenness[i] == s.Betweenness[best] && s.Degree[i] > s.Degree[best]) {
			best = i
		}
	}
	return best
}

// Stats computes degree, strength, betweenness and connected components
// for label.
func (net *Network) Stats(label string) (Stats, bool) {
	g, ok := net.Graph(label)
	if !ok {
		return Stats{}, false
	}
	edges := net.edges[label]
	s := Stats{
		Label:       label,
		NodeCount:   net.n,
		EdgeCount:   len(edges),
		Degree:      make([]int, net.n),
		Strength:    make([]float64, net.n),
		Betweenness: make([]float64, net.n),
	}
	if net.n > 1 {
		s.Density = 2 * float64(len(edges)) / float64(net.n*(net.n-1))
	}
	for _, e := range edges {
		s.Degree[e.Source]++
		s.Degree[e.Target]++
		s.Strength[e.Source] += math.Abs(e.Weight)
		s.Strength[e.Target] += math.Abs(e.Weight)
		if e.Weight < 0 {
			s.Negative++
		} else {
			s.Positive++
		}
	}
	for id, b := range gnetwork.Betweenness(g) {
		s.Betweenness[id] = b
	}
	for _, cc := range topo.ConnectedComponents(g) {
		s.Components = append(s.Components, nodeIDs(cc))
		if len(cc) == 1 {
			s.Isolated++
		}
	}
	sort.SliceStable(s.Components, func(i, j int) bool {
		if len(s.Components[i]) != len(s.Components[j]) {
			return len(s.Components[i]) > len(s.Components[j])
		}
		return s.Components[i][0] < s.Components[j][0]
	})
	return s, true
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	sort.Ints(ids)
	return ids
}
