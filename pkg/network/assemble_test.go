package network

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/threshold"
)

var example = matrix.Matrix{
	{0, 5, 1},
	{5, 0, 9},
	{1, 9, 0},
}

func filtered(t *testing.T, cutoff float64) matrix.Matrix {
	t.Helper()
	out, err := threshold.Magnitude{}.Apply(example, []float64{cutoff})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return out
}

func TestAssemble_ExampleEdges(t *testing.T) {
	net, err := Assemble(map[string]matrix.Matrix{"Full": filtered(t, 3)}, NodeMetadata{}, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []Edge{{0, 1, 5}, {1, 2, 9}}
	if got := net.Edges("Full"); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	if net.N() != 3 || net.EdgeCount("Full") != 2 {
		t.Errorf("unexpected N=%d edges=%d", net.N(), net.EdgeCount("Full"))
	}
}

func TestAssemble_ZeroEdgeNetworkIsValid(t *testing.T) {
	net, err := Assemble(map[string]matrix.Matrix{"Full": filtered(t, 10)}, NodeMetadata{}, nil)
	if err != nil {
		t.Fatalf("a fully filtered matrix must still assemble, got %v", err)
	}
	if len(net.Edges("Full")) != 0 {
		t.Errorf("expected no edges, got %v", net.Edges("Full"))
	}
	if net.N() != 3 {
		t.Errorf("nodes must survive without edges, N=%d", net.N())
	}
}

func TestAssemble_DimensionMismatch(t *testing.T) {
	names := NodeMetadata{Names: []NameSet{{Label: "Names", Values: []string{"a", "b"}}}}
	if _, err := Assemble(map[string]matrix.Matrix{"Full": example}, names, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("3x3 matrix with 2 names: expected ErrDimensionMismatch, got %v", err)
	}

	data := NodeMetadata{Data: []Attribute{{Label: "Cluster", Values: []float64{1, 2, 3, 4}}}}
	if _, err := Assemble(map[string]matrix.Matrix{"Full": example}, data, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("4 attribute values: expected ErrDimensionMismatch, got %v", err)
	}

	mixed := map[string]matrix.Matrix{
		"Full":    example,
		"Partial": {{0, 1}, {1, 0}},
	}
	if _, err := Assemble(mixed, NodeMetadata{}, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("mixed dimensions: expected ErrDimensionMismatch, got %v", err)
	}

	ragged := map[string]matrix.Matrix{"Full": {{0, 1, 2}, {1, 0}, {2, 0, 0}}}
	if _, err := Assemble(ragged, NodeMetadata{}, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("ragged: expected ErrDimensionMismatch, got %v", err)
	}

	link := &Linkage{Merges: []Merge{{0, 1, 1}}}
	if _, err := Assemble(map[string]matrix.Matrix{"Full": example}, NodeMetadata{}, link); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("2-leaf linkage: expected ErrDimensionMismatch, got %v", err)
	}

	bad := &Linkage{Merges: []Merge{{0, 1, 1}, {0, 2, 2}}}
	if _, err := Assemble(map[string]matrix.Matrix{"Full": example}, NodeMetadata{}, bad); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("reused leaf: expected ErrDimensionMismatch, got %v", err)
	}

	nameIdx := NodeMetadata{
		Names:     []NameSet{{Label: "Names", Values: []string{"a", "b", "c"}}},
		NameIndex: 3,
	}
	if _, err := Assemble(map[string]matrix.Matrix{"Full": example}, nameIdx, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("name index out of range: expected ErrDimensionMismatch, got %v", err)
	}
}

func TestAssemble_EmptyNetwork(t *testing.T) {
	if _, err := Assemble(nil, NodeMetadata{}, nil); !errors.Is(err, ErrEmptyNetwork) {
		t.Errorf("nil mapping: expected ErrEmptyNetwork, got %v", err)
	}
	if _, err := Assemble(map[string]matrix.Matrix{"Full": {}}, NodeMetadata{}, nil); !errors.Is(err, ErrEmptyNetwork) {
		t.Errorf("0x0 matrix: expected ErrEmptyNetwork, got %v", err)
	}
}

func TestAssemble_Labels(t *testing.T) {
	in := map[string]matrix.Matrix{
		"Partial Correlation": filtered(t, 3),
		"Full Correlation":    filtered(t, 0),
	}
	net, err := Assemble(in, NodeMetadata{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := net.Labels(); !reflect.DeepEqual(got, []string{"Full Correlation", "Partial Correlation"}) {
		t.Errorf("default label order should be sorted, got %v", got)
	}

	order := []string{"Partial Correlation", "Full Correlation"}
	net, err = Assemble(in, NodeMetadata{}, nil, WithLabels(order))
	if err != nil {
		t.Fatal(err)
	}
	if got := net.Labels(); !reflect.DeepEqual(got, order) {
		t.Errorf("labels = %v, want %v", got, order)
	}
	if net.EdgeCount("Full Correlation") != 3 || net.EdgeCount("Partial Correlation") != 2 {
		t.Errorf("per-label edge lists are wrong")
	}

	for _, bad := range [][]string{{"Full Correlation"}, {"Full Correlation", "Other"}, {"Full Correlation", "Full Correlation"}} {
		if _, err := Assemble(in, NodeMetadata{}, nil, WithLabels(bad)); !errors.Is(err, ErrLabelMismatch) {
			t.Errorf("WithLabels(%v): expected ErrLabelMismatch, got %v", bad, err)
		}
	}
}

func TestAssemble_InputsAreCopied(t *testing.T) {
	m := filtered(t, 0)
	meta := NodeMetadata{Names: []NameSet{{Label: "Names", Values: []string{"a", "b", "c"}}}}
	net, err := Assemble(map[string]matrix.Matrix{"Full": m}, meta, nil)
	if err != nil {
		t.Fatal(err)
	}
	m[0][1] = 1000
	meta.Names[0].Values[0] = "changed"

	got, _ := net.Matrix("Full")
	if got[0][1] != 5 {
		t.Errorf("network shares matrix storage with caller")
	}
	if net.NodeName(0) != "a" {
		t.Errorf("network shares metadata with caller, name=%q", net.NodeName(0))
	}

	edges := net.Edges("Full")
	edges[0].Weight = -1
	if net.Edges("Full")[0].Weight != 5 {
		t.Errorf("Edges must return a copy")
	}
}

func TestAssemble_SkipsDiagonalAndUsesUpperTriangle(t *testing.T) {
	nan := matrix.Absent()
	m := matrix.Matrix{
		{7, nan},
		{4, 7},
	}
	net, err := Assemble(map[string]matrix.Matrix{"Full": m}, NodeMetadata{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if net.EdgeCount("Full") != 0 {
		t.Errorf("expected diagonal and lower triangle to be ignored, got %v", net.Edges("Full"))
	}
}

func TestAssemble_ThresholdRevisionClusters(t *testing.T) {
	spec := threshold.NewSpec([]float64{3}, []string{"Threshold"}, 0)
	link := &Linkage{Merges: []Merge{{0, 1, 0.5}, {3, 2, 1.5}}}
	net, err := Assemble(map[string]matrix.Matrix{"Full": filtered(t, 3)}, NodeMetadata{}, link,
		WithThreshold(spec), WithRevision(7), WithClusters(2))
	if err != nil {
		t.Fatal(err)
	}
	if net.Revision() != 7 {
		t.Errorf("revision = %d", net.Revision())
	}
	if net.Threshold().Active() != 3 {
		t.Errorf("threshold not recorded")
	}
	if got := net.Clusters(); !reflect.DeepEqual(got, []int{1, 1, 2}) {
		t.Errorf("clusters = %v, want [1 1 2]", got)
	}
	if net.ClusterCount() != 2 {
		t.Errorf("cluster count = %d", net.ClusterCount())
	}
	if got := net.ClusterMembers(1); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("cluster 1 members = %v", got)
	}
	if got := net.LeafOrder(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("leaf order = %v", got)
	}
}

func TestNodeMetadata(t *testing.T) {
	meta := NodeMetadata{
		Names: []NameSet{
			{Label: "Short", Values: []string{"a", "", "c"}},
			{Label: "Long", Values: []string{"alpha", "beta", "gamma"}},
		},
		NameIndex: 0,
		Data:      []Attribute{{Label: "Cluster number", Values: []float64{1, 1, 2}}},
	}
	if meta.Name(0) != "a" || meta.Name(1) != "2" {
		t.Errorf("unexpected names %q %q", meta.Name(0), meta.Name(1))
	}
	meta.NameIndex = 1
	if meta.Name(1) != "beta" {
		t.Errorf("expected secondary name set, got %q", meta.Name(1))
	}
	vals, ok := meta.Attribute("Cluster number")
	if !ok || !reflect.DeepEqual(vals, []float64{1, 1, 2}) {
		t.Errorf("Attribute lookup failed: %v %v", vals, ok)
	}
	if _, ok := meta.Attribute("missing"); ok {
		t.Error("unexpected attribute")
	}
	if (NodeMetadata{}).Name(4) != "5" {
		t.Error("fallback name should be the 1-based index")
	}
}
