// Package ui is the terminal control panel: threshold sliders, matrix and
// cluster selection, and a live summary of the network and the selected
// sub-network. All pipeline work happens on the bubbletea event loop through
// a session.Session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/debug"
	"github.com/vanderheijden86/netview/pkg/export"
	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/session"
	"github.com/vanderheijden86/netview/pkg/store"
	"github.com/vanderheijden86/netview/pkg/threshold"
	"github.com/vanderheijden86/netview/pkg/watcher"
)

// DefaultThresholdDebounce is how long the panel waits after the last
// +/- press before recomputing the network.
const DefaultThresholdDebounce = 150 * time.Millisecond

// Reloader reads the data sources again and returns a fresh store.
type Reloader func(ctx context.Context) (*store.Store, error)

// FileChangedMsg is sent when a watched data file changes on disk
type FileChangedMsg struct{}

// StoreReloadedMsg carries the result of a reload.
type StoreReloadedMsg struct {
	Store *store.Store
	Err   error
}

// SnapshotSavedMsg reports a finished snapshot export.
type SnapshotSavedMsg struct {
	Path string
	Err  error
}

// thresholdTickMsg fires after the debounce delay; stale ticks are ignored.
type thresholdTickMsg struct {
	seq int
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadCmd runs reload off the event loop.
func ReloadCmd(reload Reloader) tea.Cmd {
	return func() tea.Msg {
		defer debug.Since("reload", time.Now())
		st, err := reload(context.Background())
		return StoreReloadedMsg{Store: st, Err: err}
	}
}

// SnapshotCmd renders opts to disk off the event loop.
func SnapshotCmd(opts export.SnapshotOptions) tea.Cmd {
	return func() tea.Msg {
		return SnapshotSavedMsg{Path: opts.Path, Err: export.SaveSnapshot(opts)}
	}
}

func thresholdTickCmd(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return thresholdTickMsg{seq: seq}
	})
}

// Option configures NewModel.
type Option func(*Model)

// WithWatcher reloads the store whenever w reports a change. A Reloader
// must be set as well.
func WithWatcher(w *watcher.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithReloader sets how fresh data is loaded after a file change.
func WithReloader(r Reloader) Option {
	return func(m *Model) { m.reload = r }
}

// WithDisplay sets the canvas configuration used for snapshots.
func WithDisplay(d config.Display) Option {
	return func(m *Model) { m.display = d }
}

// WithSnapshotDir sets where `s` writes snapshots.
func WithSnapshotDir(dir string) Option {
	return func(m *Model) { m.snapshotDir = dir }
}

// WithStep fixes the threshold increment for every dimension. Non-positive
// values keep the default, which follows the policy and the data.
func WithStep(step float64) Option {
	return func(m *Model) {
		if step > 0 {
			m.step = step
		}
	}
}

// WithDebounce sets the threshold debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = d }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// Model is the bubbletea model of the control panel.
type Model struct {
	sess        *session.Session
	keys        KeyMap
	help        help.Model
	helpView    viewport.Model
	showHelp    bool
	watcher     *watcher.Watcher
	reload      Reloader
	display     config.Display
	snapshotDir string
	copy        func(string) error

	step     float64 // fixed by WithStep; 0 follows the policy
	scale    float64 // largest |w| in the store, the slider's full range
	debounce time.Duration

	// Pending threshold value while +/- presses are being coalesced.
	pending    float64
	hasPending bool
	seq        int

	focus int // node whose neighbourhood o/O last selected, -1 for none

	width, height int
	status        string
	statusErr     bool
	reloading     bool
}

// NewModel creates the control panel for sess.
func NewModel(sess *session.Session, opts ...Option) Model {
	m := Model{
		sess:        sess,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		display:     config.DefaultDisplay(),
		snapshotDir: config.SnapshotDir(),
		copy:        clipboard.WriteAll,
		debounce:    DefaultThresholdDebounce,
		focus:       -1,
		width:       100,
		height:      30,
	}
	m.scale = storeScale(sess.Store())
	for _, opt := range opts {
		opt(&m)
	}
	m.helpView = viewport.New(m.width, m.height-2)
	return m
}

// storeScale returns the largest |w| over every matrix.
func storeScale(st *store.Store) float64 {
	scale := 0.0
	_ = st.Each(func(_ string, m matrix.Matrix) error {
		scale = math.Max(scale, m.MaxAbs())
		return nil
	})
	return scale
}

// activeStep is the +/- increment for the active dimension. The built-in
// policies only read the first control value, so only that one follows the
// policy's own step.
func (m Model) activeStep() float64 {
	if m.step > 0 {
		return m.step
	}
	if m.sess.Spec().Index == 0 {
		return threshold.StepFor(m.sess.Policy(), m.scale)
	}
	return threshold.ScaleStep(m.scale)
}

// Session returns the session driven by the panel.
func (m Model) Session() *session.Session {
	return m.sess
}

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// Step returns the increment of the active dimension.
func (m Model) Step() float64 {
	return m.activeStep()
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.helpView.Width = msg.Width
		m.helpView.Height = max(msg.Height-2, 1)
		if m.showHelp {
			m.helpView.SetContent(renderHelp(m.width))
		}
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			return m.updateHelp(msg)
		}
		return m.handleKey(msg)

	case thresholdTickMsg:
		if msg.seq != m.seq || !m.hasPending {
			return m, nil
		}
		m.hasPending = false
		m.report(m.sess.SetThreshold(m.pending), fmt.Sprintf("%s = %s", m.sess.Spec().ActiveLabel(), formatValue(m.pending)))
		return m, nil

	case FileChangedMsg:
		var cmds []tea.Cmd
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		if m.reload != nil && !m.reloading {
			m.reloading = true
			m.setStatus("Data changed, reloading…", false)
			cmds = append(cmds, ReloadCmd(m.reload))
		}
		if len(cmds) == 0 {
			return m, nil
		}
		return m, tea.Batch(cmds...)

	case StoreReloadedMsg:
		m.reloading = false
		if msg.Err != nil {
			m.setStatus("Reload failed: "+msg.Err.Error(), true)
			return m, nil
		}
		if err := m.sess.ReplaceStore(msg.Store); err != nil {
			m.setStatus("Reload failed: "+err.Error(), true)
			return m, nil
		}
		m.scale = storeScale(msg.Store)
		m.setStatus(fmt.Sprintf("Reloaded (revision %d)", m.sess.Network().Revision()), false)
		return m, nil

	case SnapshotSavedMsg:
		if msg.Err != nil {
			m.setStatus("Snapshot failed: "+msg.Err.Error(), true)
		} else {
			m.setStatus("Saved "+msg.Path, false)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help), msg.String() == "esc":
		m.showHelp = false
		return m, nil
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Raise):
		return m.nudge(1)

	case key.Matches(msg, m.keys.Lower):
		return m.nudge(-1)

	case key.Matches(msg, m.keys.PrevControl), key.Matches(msg, m.keys.NextControl):
		spec := m.sess.Spec()
		n := len(spec.Values)
		idx := spec.Index + 1
		if key.Matches(msg, m.keys.PrevControl) {
			idx = spec.Index - 1
		}
		idx = (idx%n + n) % n
		m = m.flush()
		m.report(m.sess.SetThresholdIndex(idx), "Adjusting "+m.sess.Spec().ActiveLabel())

	case key.Matches(msg, m.keys.NextLabel):
		label, err := m.sess.NextLabel()
		m.report(err, "Matrix: "+label)

	case key.Matches(msg, m.keys.Cluster):
		id, _ := strconv.Atoi(msg.String())
		err := m.sess.SelectCluster(id)
		m.report(err, fmt.Sprintf("Cluster %d: %d nodes", id, m.sess.Selection().Len()))

	case key.Matches(msg, m.keys.MoreCluster), key.Matches(msg, m.keys.LessCluster):
		k := m.sess.NumClusters() + 1
		if key.Matches(msg, m.keys.LessCluster) {
			k = m.sess.NumClusters() - 1
		}
		if m.sess.Store().Linkage() == nil {
			m.setStatus("No linkage loaded", true)
			break
		}
		err := m.sess.SetNumClusters(k)
		m.report(err, fmt.Sprintf("%d clusters", m.sess.NumClusters()))

	case key.Matches(msg, m.keys.NextNode), key.Matches(msg, m.keys.PrevNode):
		net := m.sess.Network()
		n := net.N()
		focus := m.focus + 1
		if key.Matches(msg, m.keys.PrevNode) {
			focus = m.focus - 1
			if m.focus < 0 {
				focus = n - 1
			}
		}
		focus = (focus%n + n) % n
		err := m.sess.SelectNeighbourhood(focus)
		if err == nil {
			m.focus = focus
		}
		m.report(err, fmt.Sprintf("Neighbours of %s: %d nodes", net.NodeName(focus), m.sess.Selection().Len()))

	case key.Matches(msg, m.keys.SelectAll):
		m.report(m.sess.SelectAll(), "Selected all nodes")

	case key.Matches(msg, m.keys.Clear):
		m.report(m.sess.ClearSelection(), "Selection cleared")

	case key.Matches(msg, m.keys.Copy):
		sub := m.sess.Selection()
		if sub.Len() == 0 {
			m.setStatus("Nothing selected", true)
			break
		}
		err := m.copy(FormatEdgeList(m.sess.Network(), sub))
		m.report(err, fmt.Sprintf("Copied %d edges to clipboard", len(sub.Edges)))

	case key.Matches(msg, m.keys.Snapshot):
		net := m.sess.Network()
		path := filepath.Join(m.snapshotDir, fmt.Sprintf("netview-r%d-%s.svg", net.Revision(), time.Now().Format("20060102-150405")))
		m.setStatus("Saving snapshot…", false)
		return m, SnapshotCmd(export.SnapshotOptions{
			Path:    path,
			Network: net,
			Label:   m.sess.ActiveLabel(),
			Sub:     m.sess.Selection(),
			Display: m.display,
		})

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.helpView.SetContent(renderHelp(m.width))
		m.helpView.GotoTop()
	}
	return m, nil
}

// nudge moves the pending threshold one step in direction dir and
// restarts the debounce.
func (m Model) nudge(dir float64) (tea.Model, tea.Cmd) {
	spec := m.sess.Spec()
	base := spec.Active()
	if m.hasPending {
		base = m.pending
	}
	step := m.activeStep()
	next := roundTo(base+dir*step, step)
	if spec.Index == 0 {
		next = threshold.SnapFor(m.sess.Policy(), next)
	}
	m.pending = next
	m.hasPending = true
	m.seq++
	m.setStatus(fmt.Sprintf("%s → %s", m.sess.Spec().ActiveLabel(), formatValue(m.pending)), false)
	return m, thresholdTickCmd(m.debounce, m.seq)
}

// flush applies a pending threshold immediately.
func (m Model) flush() Model {
	if m.hasPending {
		m.hasPending = false
		m.report(m.sess.SetThreshold(m.pending), "")
	}
	return m
}

// report shows err in the status bar, or ok when err is nil and ok is set.
func (m *Model) report(err error, ok string) {
	switch {
	case err != nil:
		debug.Log("ui: %v", err)
		m.setStatus(errorText(err), true)
	case ok != "":
		m.setStatus(ok, false)
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func errorText(err error) string {
	if errors.Is(err, session.ErrNoSelection) {
		return "No such cluster"
	}
	return "Error: " + err.Error()
}

// roundTo removes float drift from repeated increments by keeping two
// more decimals than step has.
func roundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	p := math.Pow(10, math.Ceil(-math.Log10(step))+2)
	return math.Round(v*p) / p
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
