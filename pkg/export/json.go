package export

import (
	"fmt"
	"io"
	"math"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/network"
	"github.com/vanderheijden86/netview/pkg/selection"
)

// Document is the JSON form of one session state, consumed by browser-side
// renderers that only know how to draw.
type Document struct {
	Display    DisplayJSON            `json:"display"`
	Threshold  ThresholdJSON          `json:"threshold"`
	Revision   uint64                 `json:"revision"`
	Labels     []string               `json:"labels"`
	Nodes      []NodeJSON             `json:"nodes"`
	LeafOrder  []int                  `json:"leaf_order"`
	Linkage    []network.Merge        `json:"linkage,omitempty"`
	Networks   map[string]NetworkJSON `json:"networks"`
	SubNetwork *selection.SubNetwork  `json:"subnetwork,omitempty"`
}

// DisplayJSON mirrors config.Display.
type DisplayJSON struct {
	NetworkDiv    string `json:"network_div"`
	SubnetDiv     string `json:"subnet_div"`
	ControlDiv    string `json:"control_div"`
	NetworkWidth  int    `json:"network_width"`
	NetworkHeight int    `json:"network_height"`
	SubnetWidth   int    `json:"subnet_width"`
	SubnetHeight  int    `json:"subnet_height"`
	HighlightOn   bool   `json:"highlight_on"`
}

// ThresholdJSON is the control vector.
type ThresholdJSON struct {
	Values []float64 `json:"values"`
	Labels []string  `json:"labels"`
	Index  int       `json:"index"`
}

// NodeJSON describes one node. Absent attribute values are null.
type NodeJSON struct {
	Index    int                 `json:"index"`
	Name     string              `json:"name"`
	Names    map[string]string   `json:"names,omitempty"`
	Data     map[string]*float64 `json:"data,omitempty"`
	Cluster  int                 `json:"cluster,omitempty"`
	Selected bool                `json:"selected"`
}

// NetworkJSON holds the surviving edges and summary stats of one label.
type NetworkJSON struct {
	Edges []network.Edge `json:"edges"`
	Stats network.Stats  `json:"stats"`
}

// NewDocument builds the JSON document for net. sub may be nil.
func NewDocument(net *network.Network, sub *selection.SubNetwork, display config.Display) (*Document, error) {
	if net == nil {
		return nil, ErrNoNetwork
	}
	spec := net.Threshold()
	doc := &Document{
		Display: DisplayJSON{
			NetworkDiv:    display.NetworkDiv,
			SubnetDiv:     display.SubnetDiv,
			ControlDiv:    display.ControlDiv,
			NetworkWidth:  display.NetworkWidth,
			NetworkHeight: display.NetworkHeight,
			SubnetWidth:   display.SubnetWidth,
			SubnetHeight:  display.SubnetHeight,
			HighlightOn:   display.HighlightOn,
		},
		Threshold:  ThresholdJSON{Values: spec.Values, Labels: spec.Labels, Index: spec.Index},
		Revision:   net.Revision(),
		Labels:     net.Labels(),
		LeafOrder:  net.LeafOrder(),
		Networks:   make(map[string]NetworkJSON),
		SubNetwork: sub,
	}
	if l := net.Linkage(); l != nil {
		doc.Linkage = l.Merges
	}

	selected := make(map[int]bool)
	if sub != nil {
		for _, g := range sub.Nodes {
			selected[g] = true
		}
	}
	meta := net.Meta()
	clusters := net.Clusters()
	for i := 0; i < net.N(); i++ {
		node := NodeJSON{Index: i, Name: net.NodeName(i), Selected: selected[i]}
		if i < len(clusters) {
			node.Cluster = clusters[i]
		}
		if len(meta.Names) > 1 {
			node.Names = make(map[string]string, len(meta.Names))
			for _, ns := range meta.Names {
				node.Names[ns.Label] = ns.Values[i]
			}
		}
		if len(meta.Data) > 0 {
			node.Data = make(map[string]*float64, len(meta.Data))
			for _, a := range meta.Data {
				node.Data[a.Label] = finite(a.Values[i])
			}
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	for _, label := range doc.Labels {
		st, _ := net.Stats(label)
		edges := net.Edges(label)
		if edges == nil {
			edges = []network.Edge{}
		}
		doc.Networks[label] = NetworkJSON{Edges: edges, Stats: st}
	}
	return doc, nil
}

// ExportJSON writes the indented JSON document for net to w.
func ExportJSON(w io.Writer, net *network.Network, sub *selection.SubNetwork, display config.Display) error {
	doc, err := NewDocument(net, sub, display)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode network: %w", err)
	}
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
