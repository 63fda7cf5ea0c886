package selection

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/network"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func buildNetwork(t fataler, m matrix.Matrix, link *network.Linkage, k int) *network.Network {
	t.Helper()
	var opts []network.Option
	if link != nil {
		opts = append(opts, network.WithClusters(k))
	}
	net, err := network.Assemble(map[string]matrix.Matrix{"Full": m}, network.NodeMetadata{}, link, opts...)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return net
}

// square: 0-1-2-3-0 cycle plus the 0-2 diagonal.
func square(t fataler) *network.Network {
	nan := matrix.Absent()
	return buildNetwork(t, matrix.Matrix{
		{0, 1, 2, 4},
		{1, 0, 3, nan},
		{2, 3, 0, -5},
		{4, nan, -5, 0},
	}, nil, 0)
}

func TestInducedSubnetwork_Remaps(t *testing.T) {
	sub, err := InducedSubnetwork(square(t), "Full", NodeSet(3, 0, 2))
	if err != nil {
		t.Fatalf("InducedSubnetwork: %v", err)
	}
	if !reflect.DeepEqual(sub.Nodes, []int{0, 2, 3}) {
		t.Errorf("nodes = %v", sub.Nodes)
	}
	want := []network.Edge{{Source: 0, Target: 1, Weight: 2}, {Source: 0, Target: 2, Weight: 4}, {Source: 1, Target: 2, Weight: -5}}
	if !reflect.DeepEqual(sub.Edges, want) {
		t.Errorf("edges = %v, want %v", sub.Edges, want)
	}
	if l, ok := sub.Local(3); !ok || l != 2 {
		t.Errorf("Local(3) = %d, %v", l, ok)
	}
	if _, ok := sub.Local(1); ok {
		t.Error("node 1 is not selected")
	}
	if sub.Global(1) != 2 || sub.Len() != 3 {
		t.Errorf("Global/Len wrong")
	}
}

func TestInducedSubnetwork_EmptySelection(t *testing.T) {
	sub, err := InducedSubnetwork(square(t), "Full", nil)
	if err != nil {
		t.Fatalf("InducedSubnetwork: %v", err)
	}
	if len(sub.Nodes) != 0 || len(sub.Edges) != 0 {
		t.Errorf("empty selection produced %v", sub)
	}
}

func TestInducedSubnetwork_Errors(t *testing.T) {
	net := square(t)
	if _, err := InducedSubnetwork(nil, "Full", nil); !errors.Is(err, ErrNilNetwork) {
		t.Errorf("expected ErrNilNetwork, got %v", err)
	}
	if _, err := InducedSubnetwork(net, "Partial", nil); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("expected ErrUnknownLabel, got %v", err)
	}
	for _, idx := range []int{-1, 4} {
		if _, err := InducedSubnetwork(net, "Full", NodeSet(0, idx)); !errors.Is(err, ErrNodeOutOfRange) {
			t.Errorf("node %d: expected ErrNodeOutOfRange, got %v", idx, err)
		}
	}
}

func TestNeighbourhoodSelection(t *testing.T) {
	net := square(t)
	got, err := NeighbourhoodSelection(net, "Full", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, NodeSet(0, 1, 2)) {
		t.Errorf("neighbourhood of 1 = %v", got)
	}
	if _, err := NeighbourhoodSelection(net, "Full", 9); !errors.Is(err, ErrNodeOutOfRange) {
		t.Errorf("expected ErrNodeOutOfRange, got %v", err)
	}
	if _, err := NeighbourhoodSelection(net, "x", 0); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("expected ErrUnknownLabel, got %v", err)
	}
}

func TestClusterSelection(t *testing.T) {
	link := &network.Linkage{Merges: []network.Merge{
		{A: 0, B: 3, Height: 0.2},
		{A: 1, B: 2, Height: 0.4},
		{A: 4, B: 5, Height: 0.9},
	}}
	nan := matrix.Absent()
	net := buildNetwork(t, matrix.Matrix{
		{0, nan, nan, 1},
		{nan, 0, 1, nan},
		{nan, 1, 0, nan},
		{1, nan, nan, 0},
	}, link, 2)

	if got := ClusterSelection(net, 1); !reflect.DeepEqual(got, NodeSet(0, 3)) {
		t.Errorf("cluster 1 = %v", got)
	}
	if got := ClusterSelection(net, 5); len(got) != 0 {
		t.Errorf("unknown cluster should be empty, got %v", got)
	}
}

// genNetwork draws a random symmetric matrix with some absent cells.
func genNetwork(t *rapid.T) *network.Network {
	n := rapid.IntRange(1, 8).Draw(t, "n")
	m := matrix.New(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := rapid.Float64Range(-1, 1).Draw(t, "w")
			if rapid.Bool().Draw(t, "absent") {
				v = matrix.Absent()
			}
			m[i][j], m[j][i] = v, v
		}
	}
	return buildNetwork(t, m, nil, 0)
}

func TestInducedSubnetwork_FullSelectionIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		net := genNetwork(t)
		sub, err := InducedSubnetwork(net, "Full", AllNodes(net))
		if err != nil {
			t.Fatalf("InducedSubnetwork: %v", err)
		}
		if !reflect.DeepEqual(sub.Edges, net.Edges("Full")) {
			t.Fatalf("full selection changed edges: %v vs %v", sub.Edges, net.Edges("Full"))
		}
		for i, g := range sub.Nodes {
			if i != g {
				t.Fatalf("full selection should map local %d to global %d", i, g)
			}
		}
	})
}

func TestInducedSubnetwork_EdgesAreInduced(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		net := genNetwork(t)
		picked := rapid.SliceOfDistinct(rapid.IntRange(0, net.N()-1), rapid.ID[int]).Draw(t, "nodes")
		sub, err := InducedSubnetwork(net, "Full", NodeSet(picked...))
		if err != nil {
			t.Fatalf("InducedSubnetwork: %v", err)
		}
		if len(sub.Nodes) != len(picked) {
			t.Fatalf("got %d nodes for %d picked", len(sub.Nodes), len(picked))
		}
		want := 0
		sel := NodeSet(picked...)
		for _, e := range net.Edges("Full") {
			_, a := sel[e.Source]
			_, b := sel[e.Target]
			if a && b {
				want++
			}
		}
		if len(sub.Edges) != want {
			t.Fatalf("got %d edges, want %d", len(sub.Edges), want)
		}
		for _, e := range sub.Edges {
			if e.Source >= e.Target || e.Target >= len(sub.Nodes) {
				t.Fatalf("bad local edge %v", e)
			}
		}
	})
}
