package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/netview/internal/datasource"
	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/network"
	"github.com/vanderheijden86/netview/pkg/selection"
	"github.com/vanderheijden86/netview/pkg/testutil"
	"github.com/vanderheijden86/netview/pkg/threshold"
)

// fixture is the three-node example thresholded at 3, with two clusters.
func fixture(t *testing.T) *network.Network {
	t.Helper()
	raw := testutil.Example()
	full, err := threshold.Magnitude{}.Apply(raw, []float64{3})
	if err != nil {
		t.Fatal(err)
	}
	neg := raw.Clone()
	neg[0][1], neg[1][0] = -5, -5
	signed, err := threshold.Magnitude{}.Apply(neg, []float64{3})
	if err != nil {
		t.Fatal(err)
	}
	meta := network.NodeMetadata{
		Names: []network.NameSet{{Label: "Names", Values: []string{"alpha", "beta", "gamma"}}},
		Data:  []network.Attribute{{Label: "Cluster number", Values: []float64{1, 1, matrix.Absent()}}},
	}
	link := &network.Linkage{Merges: []network.Merge{{A: 0, B: 1, Height: 0.5}, {A: 3, B: 2, Height: 1.5}}}
	net, err := network.Assemble(map[string]matrix.Matrix{"Full": full, "Signed": signed}, meta, link,
		network.WithLabels([]string{"Full", "Signed"}),
		network.WithThreshold(threshold.NewSpec([]float64{3}, []string{"Threshold"}, 0)),
		network.WithClusters(2),
		network.WithRevision(4),
	)
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func subOf(t *testing.T, net *network.Network, nodes ...int) *selection.SubNetwork {
	t.Helper()
	sub, err := selection.InducedSubnetwork(net, "Full", selection.NodeSet(nodes...))
	if err != nil {
		t.Fatal(err)
	}
	return sub
}

func TestSaveSnapshot_SVGAndPNG(t *testing.T) {
	net := fixture(t)
	tmp := t.TempDir()
	cases := []struct {
		name string
		file string
	}{
		{"svg", "net.svg"},
		{"png", "net.png"},
		{"no extension defaults to svg", "net"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(tmp, "nested", tc.file)
			err := SaveSnapshot(SnapshotOptions{
				Path:    out,
				Network: net,
				Sub:     subOf(t, net, 1, 2),
				Display: config.DefaultDisplay(),
			})
			if err != nil {
				t.Fatalf("SaveSnapshot error: %v", err)
			}
			if filepath.Ext(out) == "" {
				out += ".svg"
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("output not created: %v", err)
			}
			if info.Size() == 0 {
				t.Fatalf("output file is empty")
			}
		})
	}
}

func TestSaveSnapshot_Errors(t *testing.T) {
	net := fixture(t)
	tmp := t.TempDir()

	if err := SaveSnapshot(SnapshotOptions{Path: filepath.Join(tmp, "x.svg"), Format: "gif", Network: net, Display: config.DefaultDisplay()}); err == nil {
		t.Error("expected unsupported format error")
	}
	if err := SaveSnapshot(SnapshotOptions{Format: "svg", Network: net, Display: config.DefaultDisplay()}); err == nil {
		t.Error("expected missing path error")
	}
	if err := SaveSnapshot(SnapshotOptions{Path: filepath.Join(tmp, "x.svg"), Display: config.DefaultDisplay()}); !errors.Is(err, ErrNoNetwork) {
		t.Errorf("nil network: expected ErrNoNetwork, got %v", err)
	}
	if err := SaveSnapshot(SnapshotOptions{Path: filepath.Join(tmp, "x.svg"), Network: net, Label: "Nope", Display: config.DefaultDisplay()}); !errors.Is(err, ErrNoNetwork) {
		t.Errorf("unknown label: expected ErrNoNetwork, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "x.svg")); !os.IsNotExist(err) {
		t.Errorf("a failed render must not leave a file behind, stat err = %v", err)
	}
}

func TestWriteSVG_Content(t *testing.T) {
	net := fixture(t)
	var buf bytes.Buffer
	err := WriteSVG(&buf, SnapshotOptions{
		Title:   "Example",
		Network: net,
		Label:   "Signed",
		Sub:     subOf(t, net, 1, 2),
		Display: config.DefaultDisplay(),
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"<svg", "Example", `id="fullNetwork"`, `id="subNetwork"`,
		"alpha", "beta", "gamma",
		css(colorPositive), css(colorNegative), css(colorHighlight),
		"selection: 2 nodes", "Threshold: 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg output missing %q", want)
		}
	}
}

func TestWriteSVG_HighlightOff(t *testing.T) {
	net := fixture(t)
	display := config.DefaultDisplay()
	display.HighlightOn = false

	var buf bytes.Buffer
	if err := WriteSVG(&buf, SnapshotOptions{Network: net, Sub: subOf(t, net, 0, 1), Display: display}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), css(colorHighlight)) {
		t.Error("selected nodes highlighted although HighlightOn is false")
	}
}

func TestWritePNG_Signature(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, SnapshotOptions{Network: fixture(t), Display: config.DefaultDisplay()}); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output is not a PNG")
	}
}

func TestBuildLayout(t *testing.T) {
	net := fixture(t)
	d := config.DefaultDisplay()
	layout, err := buildLayout(SnapshotOptions{Network: net, Sub: subOf(t, net, 0, 2), Display: d})
	if err != nil {
		t.Fatal(err)
	}
	if len(layout.Panels) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(layout.Panels))
	}
	full, sub := layout.Panels[0], layout.Panels[1]

	if len(full.Nodes) != 3 || len(full.Edges) != 2 {
		t.Errorf("full panel has %d nodes, %d edges", len(full.Nodes), len(full.Edges))
	}
	// Leaf order of the fixture linkage is 0, 1, 2.
	for i, n := range full.Nodes {
		if n.Index != i {
			t.Errorf("node %d placed at ring position %d", n.Index, i)
		}
		if n.X < full.X || n.X > full.X+full.W || n.Y < full.Y || n.Y > full.Y+full.H {
			t.Errorf("node %d at (%.0f,%.0f) outside its panel", n.Index, n.X, n.Y)
		}
	}
	if got := []int{full.Nodes[0].Cluster, full.Nodes[1].Cluster, full.Nodes[2].Cluster}; got[0] != 1 || got[1] != 1 || got[2] != 2 {
		t.Errorf("clusters = %v, want [1 1 2]", got)
	}
	if !full.Nodes[0].Highlight || full.Nodes[1].Highlight || !full.Nodes[2].Highlight {
		t.Error("only selected nodes should be highlighted")
	}

	// Nodes 0 and 2 share no edge at cutoff 3.
	if len(sub.Nodes) != 2 || len(sub.Edges) != 0 {
		t.Errorf("sub panel has %d nodes, %d edges", len(sub.Nodes), len(sub.Edges))
	}

	// The stronger edge (9) is drawn wider than the weaker one (5).
	if full.Edges[1].Width <= full.Edges[0].Width {
		t.Errorf("edge widths %v do not follow |w|", full.Edges)
	}

	wantW := int(padding*3 + controlWidth + float64(d.NetworkWidth) + padding + float64(d.SubnetWidth))
	if layout.Width != wantW {
		t.Errorf("width = %d, want %d", layout.Width, wantW)
	}
}

func TestEdgeWidth(t *testing.T) {
	if got := edgeWidth(3, 0); got != 0.5 {
		t.Errorf("edgeWidth with zero max = %v", got)
	}
	if got := edgeWidth(-4, 4); got != 4.5 {
		t.Errorf("edgeWidth(-4, 4) = %v, want 4.5", got)
	}
}

func TestExportJSON(t *testing.T) {
	net := fixture(t)
	var buf bytes.Buffer
	if err := ExportJSON(&buf, net, subOf(t, net, 1, 2), config.DefaultDisplay()); err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if doc.Revision != 4 || doc.Display.NetworkDiv != "#fullNetwork" || !doc.Display.HighlightOn {
		t.Errorf("unexpected header: %+v", doc)
	}
	if len(doc.Nodes) != 3 || doc.Nodes[0].Name != "alpha" || doc.Nodes[2].Cluster != 2 {
		t.Errorf("unexpected nodes: %+v", doc.Nodes)
	}
	if doc.Nodes[0].Selected || !doc.Nodes[1].Selected {
		t.Error("selection flags wrong")
	}
	if v := doc.Nodes[2].Data["Cluster number"]; v != nil {
		t.Errorf("absent attribute should be null, got %v", *v)
	}
	testutil.AssertEdges(t, []network.Edge{{Source: 0, Target: 1, Weight: 5}, {Source: 1, Target: 2, Weight: 9}}, doc.Networks["Full"].Edges)
	if doc.Networks["Signed"].Stats.Negative != 1 {
		t.Errorf("signed stats = %+v", doc.Networks["Signed"].Stats)
	}
	if len(doc.Linkage) != 2 || doc.Linkage[1].A != 3 {
		t.Errorf("linkage = %v", doc.Linkage)
	}
	if doc.SubNetwork == nil || doc.SubNetwork.Len() != 2 {
		t.Errorf("subnetwork = %+v", doc.SubNetwork)
	}
}

func TestExportJSON_ZeroEdges(t *testing.T) {
	empty, err := threshold.Magnitude{}.Apply(testutil.Example(), []float64{10})
	if err != nil {
		t.Fatal(err)
	}
	net, err := network.Assemble(map[string]matrix.Matrix{"Full": empty}, network.NodeMetadata{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := ExportJSON(&buf, net, nil, config.DefaultDisplay()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"edges": []`) {
		t.Errorf("zero-edge network should serialise an empty edge list:\n%s", buf.String())
	}
	if err := ExportJSON(&buf, nil, nil, config.DefaultDisplay()); !errors.Is(err, ErrNoNetwork) {
		t.Errorf("expected ErrNoNetwork, got %v", err)
	}
}

func TestExportDOT(t *testing.T) {
	net := fixture(t)
	var buf bytes.Buffer
	if err := ExportDOT(&buf, net, "Signed"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`graph "Signed" {`,
		`n0 [label="alpha", fillcolor=1];`,
		`n2 [label="gamma", fillcolor=2];`,
		`n0 -- n1 [weight=5, color="` + css(colorNegative) + `"`,
		`n1 -- n2 [weight=9, color="` + css(colorPositive) + `"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("dot output not terminated")
	}
	if err := ExportDOT(&buf, net, "Nope"); !errors.Is(err, ErrNoNetwork) {
		t.Errorf("expected ErrNoNetwork, got %v", err)
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		label, want string
	}{
		{"Full", "full"},
		{"Partial correlation", "partial_correlation"},
		{"  Matrix 1 ", "matrix_1"},
		{"2nd", "m_2nd"},
		{"???", "m_"},
	}
	for _, tt := range tests {
		if got := TableName(tt.label); got != tt.want {
			t.Errorf("TableName(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestExportSQLite_RoundTrip(t *testing.T) {
	net := fixture(t)
	path := filepath.Join(t.TempDir(), "net.db")

	ids, err := ExportSQLite(context.Background(), path, net)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 source ids, got %v", ids)
	}

	for i, label := range net.Labels() {
		src, err := datasource.Parse(ids[i])
		if err != nil {
			t.Fatal(err)
		}
		got, err := datasource.LoadMatrix(context.Background(), src)
		if err != nil {
			t.Fatalf("reload %s: %v", ids[i], err)
		}
		want, _ := net.Matrix(label)
		testutil.AssertMatrixEqual(t, want, got)
	}
}
