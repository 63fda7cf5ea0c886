package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/netview/pkg/metrics"
	"github.com/vanderheijden86/netview/pkg/network"
)

const controlPanelWidth = 34

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	if m.showHelp {
		return m.helpView.View() + "\n" + MutedStyle.Render("? / esc to close")
	}

	header := m.renderHeader()
	footer := m.renderStatus() + "\n" + m.help.View(m.keys)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 6 {
		bodyHeight = 6
	}
	innerHeight := bodyHeight - 2 // panel borders

	left := FocusedPanelStyle.
		Width(controlPanelWidth).
		Height(innerHeight).
		Render(m.renderControls(controlPanelWidth - 2))

	rightWidth := m.width - lipgloss.Width(left) - 4
	if rightWidth < 30 {
		rightWidth = 30
	}
	right := PanelStyle.
		Width(rightWidth).
		Height(innerHeight).
		Render(m.renderNetwork(rightWidth-2, innerHeight))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	net := m.sess.Network()
	labels := net.Labels()
	pos := 0
	for i, l := range labels {
		if l == m.sess.ActiveLabel() {
			pos = i + 1
		}
	}
	title := TitleStyle.Render("netview")
	info := MutedStyle.Render(fmt.Sprintf("  %s (%d/%d)  ·  %d nodes  ·  revision %d",
		truncateWidth(m.sess.ActiveLabel(), 30), pos, len(labels), net.N(), net.Revision()))
	return title + info
}

func (m Model) renderControls(width int) string {
	var b strings.Builder
	spec := m.sess.Spec()

	b.WriteString(TitleStyle.Render("Thresholds"))
	b.WriteString("\n")
	for i, v := range spec.Values {
		if i == spec.Index && m.hasPending {
			v = m.pending
		}
		name := truncateWidth(spec.Label(i), width-10)
		line := padRight(name, width-10) + " " + formatValue(v)
		if i == spec.Index {
			b.WriteString(ActiveStyle.Render("› " + line))
		} else {
			b.WriteString(LabelStyle.Render("  " + line))
		}
		b.WriteString("\n  ")
		pos := 0.0
		if m.scale > 0 {
			pos = math.Abs(v) / m.scale
		}
		b.WriteString(RenderSlider(pos, width-4))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  step %s", formatValue(m.activeStep()))))
	b.WriteString("\n\n")

	b.WriteString(TitleStyle.Render("Matrices"))
	b.WriteString("\n")
	for _, l := range m.sess.Network().Labels() {
		name := truncateWidth(l, width-2)
		if l == m.sess.ActiveLabel() {
			b.WriteString(ActiveStyle.Render("› " + name))
		} else {
			b.WriteString(LabelStyle.Render("  " + name))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(TitleStyle.Render("Clusters"))
	b.WriteString("\n")
	net := m.sess.Network()
	if net.ClusterCount() == 0 {
		b.WriteString(MutedStyle.Render("  no linkage"))
		b.WriteString("\n")
		return b.String()
	}
	for id := 1; id <= net.ClusterCount() && id <= 9; id++ {
		members := net.ClusterMembers(id)
		fmt.Fprintf(&b, "  %s %s %s\n", RenderClusterBadge(id), LabelStyle.Render("["+strconv.Itoa(id)+"]"),
			MutedStyle.Render(fmt.Sprintf("%d nodes", len(members))))
	}
	if net.ClusterCount() > 9 {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("  +%d more", net.ClusterCount()-9)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderNetwork(width, height int) string {
	var b strings.Builder
	net := m.sess.Network()
	label := m.sess.ActiveLabel()

	b.WriteString(TitleStyle.Render("Network"))
	b.WriteString("\n")
	if st, ok := net.Stats(label); ok {
		fmt.Fprintf(&b, "%s\n", LabelStyle.Render(fmt.Sprintf("edges %d (%d+ %d-)  density %.3f", st.EdgeCount, st.Positive, st.Negative, st.Density)))
		fmt.Fprintf(&b, "%s\n", LabelStyle.Render(fmt.Sprintf("components %d  isolated %d", len(st.Components), st.Isolated)))
		if hub := st.Hub(); hub >= 0 && st.EdgeCount > 0 {
			fmt.Fprintf(&b, "%s\n", LabelStyle.Render("hub "+truncateWidth(net.NodeName(hub), width-4)+fmt.Sprintf(" (degree %d)", st.Degree[hub])))
		}
	}
	b.WriteString("\n")

	sub := m.sess.Selection()
	b.WriteString(TitleStyle.Render("Selection"))
	b.WriteString("\n")
	if sub.Len() == 0 {
		b.WriteString(MutedStyle.Render("nothing selected (1-9 for a cluster, a for all)"))
		return b.String()
	}
	fmt.Fprintf(&b, "%s\n", LabelStyle.Render(fmt.Sprintf("%d nodes  %d edges", sub.Len(), len(sub.Edges))))

	used := lipgloss.Height(b.String())
	rows := height - used - 1
	if rows < 1 {
		rows = 1
	}
	nameWidth := (width - 14) / 2
	for _, e := range strongestEdges(sub.Edges, rows) {
		b.WriteString(m.renderEdge(net, sub.Global(e.Source), sub.Global(e.Target), e, nameWidth))
		b.WriteString("\n")
	}
	if hidden := len(sub.Edges) - rows; hidden > 0 {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("… %d weaker edges (y copies all)", hidden)))
	}
	return b.String()
}

func (m Model) renderEdge(net *network.Network, src, dst int, e network.Edge, nameWidth int) string {
	clusters := net.Clusters()
	badge := func(i int) string {
		if i < len(clusters) {
			return RenderClusterBadge(clusters[i])
		}
		return RenderClusterBadge(0)
	}
	return fmt.Sprintf("%s %s ↔ %s %s %s",
		badge(src), padRight(truncateWidth(net.NodeName(src), nameWidth), nameWidth),
		badge(dst), padRight(truncateWidth(net.NodeName(dst), nameWidth), nameWidth),
		RenderWeight(e.Weight, fmt.Sprintf("%8.3g", e.Weight)))
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return MutedStyle.Render(fmt.Sprintf("selection: %d nodes", m.sess.Selection().Len()))
	}
	text := truncateWidth(m.status, max(m.width, 20))
	if m.statusErr {
		return ErrorStyle.Render(text)
	}
	return StatusStyle.Render(text)
}
