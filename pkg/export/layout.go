package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/vanderheijden86/netview/pkg/network"
	"github.com/vanderheijden86/netview/pkg/selection"
)

// --- layout computation ----------------------------------------------------

const (
	padding      = 24.0
	headerHeight = 96.0
	controlWidth = 200.0
	maxLabels    = 60 // node names are dropped on denser rings
)

type layoutNode struct {
	Index     int // global node index
	Name      string
	Cluster   int
	Highlight bool
	X, Y      float64
	LabelX    float64
	LabelY    float64
	AnchorX   float64 // 0 = text starts at LabelX, 1 = text ends there
}

type layoutEdge struct {
	From   int // positions in panel.Nodes
	To     int
	Weight float64
	Width  float64
}

type panel struct {
	ID         string
	Caption    string
	X, Y, W, H float64
	Radius     float64
	Labels     bool
	Nodes      []layoutNode
	Edges      []layoutEdge
}

type controlBlock struct {
	X, Y, W, H float64
	Lines      []string
}

type layoutResult struct {
	Width    int
	Height   int
	Header   float64
	Title    string
	Subtitle string
	Control  controlBlock
	Panels   []panel
}

func buildLayout(opts SnapshotOptions) (layoutResult, error) {
	net := opts.Network
	if net == nil {
		return layoutResult{}, ErrNoNetwork
	}
	label := opts.Label
	if label == "" {
		if labels := net.Labels(); len(labels) > 0 {
			label = labels[0]
		}
	}
	if !net.Has(label) {
		return layoutResult{}, fmt.Errorf("%w: unknown label %q", ErrNoNetwork, label)
	}
	d := opts.Display

	top := padding + headerHeight
	fullX := padding*2 + controlWidth
	subX := fullX + float64(d.NetworkWidth) + padding

	width := int(subX + float64(d.SubnetWidth) + padding)
	height := int(top + math.Max(float64(d.NetworkHeight), float64(d.SubnetHeight)) + padding)

	selected := make(map[int]bool)
	if opts.Sub != nil {
		for _, g := range opts.Sub.Nodes {
			selected[g] = true
		}
	}

	order := net.LeafOrder()
	clusters := net.Clusters()
	clusterOf := func(i int) int {
		if i < len(clusters) {
			return clusters[i]
		}
		return 0
	}

	// Full network: every node on the ring in dendrogram order.
	full := panel{
		ID:      strings.TrimPrefix(d.NetworkDiv, "#"),
		Caption: truncate(label, 40),
		X:       fullX, Y: top,
		W: float64(d.NetworkWidth), H: float64(d.NetworkHeight),
	}
	pos := make(map[int]int, len(order))
	for _, g := range order {
		pos[g] = len(full.Nodes)
		full.Nodes = append(full.Nodes, layoutNode{
			Index:     g,
			Name:      net.NodeName(g),
			Cluster:   clusterOf(g),
			Highlight: d.HighlightOn && selected[g],
		})
	}
	edges := net.Edges(label)
	maxW := maxAbs(edges)
	for _, e := range edges {
		full.Edges = append(full.Edges, layoutEdge{
			From: pos[e.Source], To: pos[e.Target],
			Weight: e.Weight, Width: edgeWidth(e.Weight, maxW),
		})
	}
	placeRing(&full)

	// Sub-network: selected nodes in the same relative order.
	sub := panel{
		ID:      strings.TrimPrefix(d.SubnetDiv, "#"),
		Caption: "selection",
		X:       subX, Y: top,
		W: float64(d.SubnetWidth), H: float64(d.SubnetHeight),
	}
	if opts.Sub != nil {
		sub.Caption = fmt.Sprintf("selection: %d nodes", opts.Sub.Len())
		local := make(map[int]int, opts.Sub.Len())
		for _, g := range order {
			l, ok := opts.Sub.Local(g)
			if !ok {
				continue
			}
			local[l] = len(sub.Nodes)
			sub.Nodes = append(sub.Nodes, layoutNode{
				Index:   g,
				Name:    net.NodeName(g),
				Cluster: clusterOf(g),
			})
		}
		for _, e := range opts.Sub.Edges {
			sub.Edges = append(sub.Edges, layoutEdge{
				From: local[e.Source], To: local[e.Target],
				Weight: e.Weight, Width: edgeWidth(e.Weight, maxW),
			})
		}
	}
	placeRing(&sub)

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Network Snapshot"
	}

	return layoutResult{
		Width:    width,
		Height:   height,
		Header:   headerHeight,
		Title:    title,
		Subtitle: fmt.Sprintf("nodes: %d  edges: %d  revision: %d", net.N(), len(edges), net.Revision()),
		Control: controlBlock{
			X: padding, Y: top, W: controlWidth, H: float64(min(d.NetworkHeight, 360)),
			Lines: controlLines(net, label, opts.Sub),
		},
		Panels: []panel{full, sub},
	}, nil
}

// placeRing spreads the panel's nodes evenly on a circle, starting at twelve
// o'clock and running clockwise.
func placeRing(p *panel) {
	n := len(p.Nodes)
	if n == 0 {
		return
	}
	cx, cy := p.X+p.W/2, p.Y+p.H/2+8
	p.Labels = n <= maxLabels
	margin := 24.0
	if p.Labels {
		margin = 64
	}
	r := math.Min(p.W, p.H)/2 - margin
	if r < 10 {
		r = 10
	}
	p.Radius = math.Max(2, math.Min(8, math.Pi*r/float64(n)*0.6))

	for i := range p.Nodes {
		theta := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		cos, sin := math.Cos(theta), math.Sin(theta)
		node := &p.Nodes[i]
		node.X = cx + r*cos
		node.Y = cy + r*sin
		node.LabelX = cx + (r+p.Radius+4)*cos
		node.LabelY = cy + (r+p.Radius+4)*sin
		if cos < 0 {
			node.AnchorX = 1
		}
	}
}

func controlLines(net *network.Network, label string, sub *selection.SubNetwork) []string {
	spec := net.Threshold()
	lines := []string{"Controls", "matrix: " + truncate(label, 18)}
	for i, v := range spec.Values {
		marker := " "
		if i == spec.Index {
			marker = ">"
		}
		lines = append(lines, fmt.Sprintf("%s%s: %.3g", marker, truncate(spec.Label(i), 14), v))
	}
	if k := net.ClusterCount(); k > 0 {
		lines = append(lines, fmt.Sprintf("clusters: %d", k))
	}
	if sub != nil {
		lines = append(lines, fmt.Sprintf("selected: %d/%d", sub.Len(), net.N()))
	}
	if st, ok := net.Stats(label); ok {
		lines = append(lines, fmt.Sprintf("density: %.3f", st.Density))
		if hub := st.Hub(); hub >= 0 && st.EdgeCount > 0 {
			lines = append(lines, "hub: "+truncate(net.NodeName(hub), 20))
		}
	}
	return lines
}

func maxAbs(edges []network.Edge) float64 {
	m := 0.0
	for _, e := range edges {
		m = math.Max(m, math.Abs(e.Weight))
	}
	return m
}

// edgeWidth scales |w| into [0.5, 4.5] relative to the strongest edge.
func edgeWidth(w, max float64) float64 {
	if max == 0 {
		return 0.5
	}
	return 0.5 + 4*math.Abs(w)/max
}
