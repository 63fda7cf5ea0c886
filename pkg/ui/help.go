package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# netview

The left panel holds the threshold controls, the right panel the network
under the active matrix and the current selection.

## Threshold

| Key | Action |
|-----|--------|
| ` + "`+` / `-`" + ` | raise / lower the active threshold |
| ` + "`[` / `]`" + ` | switch the active threshold |

Presses are coalesced; the network is recomputed once you pause.

## Matrices and clusters

| Key | Action |
|-----|--------|
| ` + "`tab`" + ` | next matrix |
| ` + "`1`-`9`" + ` | select cluster |
| ` + "`n` / `N`" + ` | more / fewer clusters |
| ` + "`o` / `O`" + ` | select the next / previous node and its neighbours |
| ` + "`a`" + ` | select every node |
| ` + "`x`" + ` | clear the selection |

## Output

| Key | Action |
|-----|--------|
| ` + "`y`" + ` | copy the selected edges as TSV |
| ` + "`s`" + ` | save an SVG snapshot |
| ` + "`?`" + ` | toggle this help |
| ` + "`q`" + ` | quit |

Data files are watched. When they change the network is reloaded; if the new
data is invalid the previous network stays on screen.
`

// renderHelp renders the help page for the given width, falling back to the
// raw markdown when glamour cannot.
func renderHelp(width int) string {
	wrap := width - 4
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n ")
}
