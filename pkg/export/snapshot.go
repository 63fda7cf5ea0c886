package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/metrics"
	"github.com/vanderheijden86/netview/pkg/network"
	"github.com/vanderheijden86/netview/pkg/selection"
)

// ErrNoNetwork is returned when an export is asked to render nothing.
var ErrNoNetwork = errors.New("export: no network")

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path    string                // Output path; format inferred from extension when Format empty
	Format  string                // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title   string                // Optional title rendered in the header
	Network *network.Network      // Network to draw
	Label   string                // Matrix label; empty selects the first label
	Sub     *selection.SubNetwork // Optional selection drawn in the second panel
	Display config.Display        // Canvas sizes and highlighting
}

// SaveSnapshot renders the full network, the selected sub-network and a
// control summary side by side into an SVG or PNG file. A failed render
// leaves no file behind.
func SaveSnapshot(opts SnapshotOptions) (err error) {
	format, path, err := resolveFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	if opts.Network == nil {
		return ErrNoNetwork
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if format == "png" {
		return WritePNG(file, opts)
	}
	return WriteSVG(file, opts)
}

// WriteSVG renders the snapshot as SVG to w.
func WriteSVG(w io.Writer, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()
	layout, err := buildLayout(opts)
	if err != nil {
		return err
	}
	return renderSVG(w, layout)
}

// WritePNG renders the snapshot as PNG to w.
func WritePNG(w io.Writer, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()
	layout, err := buildLayout(opts)
	if err != nil {
		return err
	}
	return renderPNG(layout).EncodePNG(w)
}

func resolveFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// --- rendering -------------------------------------------------------------

var (
	colorPositive  = color.RGBA{0xd3, 0x2f, 0x2f, 0xff}
	colorNegative  = color.RGBA{0x19, 0x76, 0xd2, 0xff}
	colorNode      = color.RGBA{0xcf, 0xd8, 0xdc, 0xff}
	colorHighlight = color.RGBA{0xff, 0xa0, 0x00, 0xff}
	colorStroke    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText      = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle    = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop  = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorPanelBG   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorControlBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

// clusterPalette colours nodes by flattened cluster id, cycling when there
// are more clusters than colours.
var clusterPalette = []color.RGBA{
	{0x8d, 0xd3, 0xc7, 0xff},
	{0xff, 0xff, 0xb3, 0xff},
	{0xbe, 0xba, 0xda, 0xff},
	{0xfb, 0x80, 0x72, 0xff},
	{0x80, 0xb1, 0xd3, 0xff},
	{0xfd, 0xb4, 0x62, 0xff},
	{0xb3, 0xde, 0x69, 0xff},
	{0xfc, 0xcd, 0xe5, 0xff},
	{0xbc, 0x80, 0xbd, 0xff},
	{0xcc, 0xeb, 0xc5, 0xff},
}

func clusterColor(id int) color.RGBA {
	if id <= 0 {
		return colorNode
	}
	return clusterPalette[(id-1)%len(clusterPalette)]
}

func edgeColor(w float64) color.RGBA {
	if w < 0 {
		return colorNegative
	}
	return colorPositive
}

func renderPNG(layout layoutResult) *gg.Context {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(layout.Subtitle, 32, 64, 0, 0.5)

	drawControl(dc, layout.Control)
	for _, p := range layout.Panels {
		drawPanel(dc, p)
	}
	return dc
}

func drawPanel(dc *gg.Context, p panel) {
	dc.SetColor(colorPanelBG)
	dc.DrawRectangle(p.X, p.Y, p.W, p.H)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	dc.DrawRectangle(p.X, p.Y, p.W, p.H)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(p.Caption, p.X+8, p.Y+14, 0, 0.5)

	for _, e := range p.Edges {
		from, to := p.Nodes[e.From], p.Nodes[e.To]
		dc.SetColor(edgeColor(e.Weight))
		dc.SetLineWidth(e.Width)
		dc.DrawLine(from.X, from.Y, to.X, to.Y)
		dc.Stroke()
	}

	for _, n := range p.Nodes {
		dc.SetColor(clusterColor(n.Cluster))
		dc.DrawCircle(n.X, n.Y, p.Radius)
		dc.Fill()
		if n.Highlight {
			dc.SetColor(colorHighlight)
			dc.SetLineWidth(3)
		} else {
			dc.SetColor(colorStroke)
			dc.SetLineWidth(1)
		}
		dc.DrawCircle(n.X, n.Y, p.Radius)
		dc.Stroke()
		if p.Labels {
			dc.SetColor(colorSubtle)
			dc.DrawStringAnchored(n.Name, n.LabelX, n.LabelY, n.AnchorX, 0.5)
		}
	}
}

func drawControl(dc *gg.Context, c controlBlock) {
	dc.SetColor(colorControlBG)
	dc.DrawRoundedRectangle(c.X, c.Y, c.W, c.H, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(c.X, c.Y, c.W, c.H, 10)
	dc.Stroke()

	y := c.Y + 18
	for i, line := range c.Lines {
		if i == 0 {
			dc.SetColor(colorText)
		} else {
			dc.SetColor(colorSubtle)
		}
		dc.DrawStringAnchored(line, c.X+12, y, 0, 0.5)
		y += 18
	}
}

func renderSVG(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 44, layout.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, layout.Subtitle, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	c := layout.Control
	canvas.Roundrect(int(c.X), int(c.Y), int(c.W), int(c.H), 10, 10,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorControlBG), css(colorStroke)))
	for i, line := range c.Lines {
		style := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle))
		if i == 0 {
			style = fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText))
		}
		canvas.Text(int(c.X)+12, int(c.Y)+22+18*i, line, style)
	}

	for _, p := range layout.Panels {
		canvas.Gid(p.ID)
		canvas.Rect(int(p.X), int(p.Y), int(p.W), int(p.H),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorPanelBG), css(colorStroke)))
		canvas.Text(int(p.X)+8, int(p.Y)+18, p.Caption,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;font-weight:bold", css(colorText)))
		for _, e := range p.Edges {
			from, to := p.Nodes[e.From], p.Nodes[e.To]
			canvas.Line(int(from.X), int(from.Y), int(to.X), int(to.Y),
				fmt.Sprintf("stroke:%s;stroke-width:%.2f;stroke-opacity:0.8", css(edgeColor(e.Weight)), e.Width))
		}
		for _, n := range p.Nodes {
			stroke, width := colorStroke, 1.0
			if n.Highlight {
				stroke, width = colorHighlight, 3
			}
			canvas.Circle(int(n.X), int(n.Y), int(math.Round(p.Radius)),
				fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.0f", css(clusterColor(n.Cluster)), css(stroke), width))
			if p.Labels {
				anchor := "start"
				if n.AnchorX == 1 {
					anchor = "end"
				}
				canvas.Text(int(n.LabelX), int(n.LabelY)+4, n.Name,
					fmt.Sprintf("fill:%s;font-size:10px;font-family:monospace;text-anchor:%s", css(colorSubtle), anchor))
			}
		}
		canvas.Gend()
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
