package ui

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/netview/pkg/network"
	"github.com/vanderheijden86/netview/pkg/selection"
)

// FormatEdgeList renders the edges of sub as tab separated
// "source target weight" lines with node names, headed by a column row.
func FormatEdgeList(net *network.Network, sub *selection.SubNetwork) string {
	var b strings.Builder
	b.WriteString("source\ttarget\tweight\n")
	for _, e := range sub.Edges {
		b.WriteString(net.NodeName(sub.Global(e.Source)))
		b.WriteByte('\t')
		b.WriteString(net.NodeName(sub.Global(e.Target)))
		b.WriteByte('\t')
		b.WriteString(strconv.FormatFloat(e.Weight, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}

// strongestEdges returns up to n edges ordered by |w| descending, ties
// keeping their original order.
func strongestEdges(edges []network.Edge, n int) []network.Edge {
	out := append([]network.Edge(nil), edges...)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Weight) > math.Abs(out[j].Weight)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// truncateWidth cuts s to at most width display cells, ending in "…" when
// anything was dropped.
func truncateWidth(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case runewidth.StringWidth(s) <= width:
		return s
	case width == 1:
		return "…"
	}
	return runewidth.Truncate(s, width-1, "") + "…"
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
