package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/vanderheijden86/netview/pkg/network"
)

// ExportDOT writes the thresholded network of label as an undirected
// Graphviz graph. Nodes carry their cluster as a colour index and edges
// their weight, sign colour and a penwidth scaled by |w|.
func ExportDOT(w io.Writer, net *network.Network, label string) error {
	if net == nil {
		return ErrNoNetwork
	}
	if !net.Has(label) {
		return fmt.Errorf("%w: unknown label %q", ErrNoNetwork, label)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "graph %s {\n", strconv.Quote(label))
	bw.WriteString("  graph [layout=circo];\n")
	bw.WriteString("  node [shape=circle, style=filled, colorscheme=set310];\n")

	clusters := net.Clusters()
	for _, i := range net.LeafOrder() {
		fill := `"#cfd8dc"`
		if i < len(clusters) && clusters[i] > 0 {
			fill = strconv.Itoa((clusters[i]-1)%len(clusterPalette) + 1)
		}
		fmt.Fprintf(bw, "  n%d [label=%s, fillcolor=%s];\n", i, strconv.Quote(net.NodeName(i)), fill)
	}

	edges := net.Edges(label)
	maxW := maxAbs(edges)
	for _, e := range edges {
		fmt.Fprintf(bw, "  n%d -- n%d [weight=%s, color=%q, penwidth=%.2f];\n",
			e.Source, e.Target,
			strconv.FormatFloat(math.Abs(e.Weight), 'g', -1, 64),
			css(edgeColor(e.Weight)), edgeWidth(e.Weight, maxW))
	}
	bw.WriteString("}\n")
	return bw.Flush()
}
