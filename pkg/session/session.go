// Package session owns the state of one visualisation: the raw matrix store,
// the threshold controls, the current Network snapshot and the node
// selection. Every control change runs the threshold/assemble/select pipeline
// to completion before returning.
//
// A Session is not safe for concurrent use. It is driven from a single event
// loop; the last call wins.
package session

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/netview/pkg/debug"
	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/metrics"
	"github.com/vanderheijden86/netview/pkg/network"
	"github.com/vanderheijden86/netview/pkg/selection"
	"github.com/vanderheijden86/netview/pkg/store"
	"github.com/vanderheijden86/netview/pkg/threshold"
)

var (
	// ErrNoSelection is returned when a selection request matches no nodes.
	ErrNoSelection = errors.New("session: selection is empty")

	// ErrInvalidClusterCount is returned for cluster counts below one.
	ErrInvalidClusterCount = errors.New("session: invalid cluster count")
)

// Option configures New.
type Option func(*Session)

// WithPolicy sets the threshold policy. The default is threshold.Magnitude.
func WithPolicy(p threshold.Policy) Option {
	return func(s *Session) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithThreshold sets the initial control values. Missing labels are
// generated.
func WithThreshold(spec threshold.Spec) Option {
	return func(s *Session) {
		if len(spec.Labels) == 0 {
			s.spec = threshold.NewSpec(spec.Values, nil, spec.Index)
			return
		}
		s.spec = spec.Clone()
	}
}

// WithNumClusters sets how many clusters the linkage is flattened into.
func WithNumClusters(k int) Option {
	return func(s *Session) {
		s.numClusters = k
	}
}

// WithLogger routes recompute failures to logger. Without it they are
// only returned.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnChange registers a callback invoked after every successful
// recompute with the new Network.
func WithOnChange(fn func(*network.Network)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// Session is the explicit replacement for process-wide viewer state.
type Session struct {
	store       *store.Store
	policy      threshold.Policy
	spec        threshold.Spec
	numClusters int
	label       string
	logger      *log.Logger
	onChange    func(*network.Network)

	net      *network.Network
	selected map[int]struct{}
	sub      *selection.SubNetwork
	revision uint64
}

// New builds the first Network from st. The active label is the first
// label of the store.
func New(st *store.Store, opts ...Option) (*Session, error) {
	s := &Session{
		policy:      threshold.Magnitude{},
		spec:        threshold.NewSpec([]float64{0}, nil, 0),
		numClusters: 1,
		logger:      log.New(io.Discard),
		selected:    map[int]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if st == nil || st.Len() == 0 {
		return nil, fmt.Errorf("session: %w", network.ErrEmptyNetwork)
	}
	if s.numClusters < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClusterCount, s.numClusters)
	}
	s.store = st
	s.label = st.Labels()[0]
	if err := s.commit("init", st, s.spec, s.numClusters, s.label, s.selected); err != nil {
		return nil, err
	}
	return s, nil
}

// Network returns the current snapshot.
func (s *Session) Network() *network.Network {
	return s.net
}

// Store returns the store the current snapshot was built from.
func (s *Session) Store() *store.Store {
	return s.store
}

// Spec returns a copy of the current control values.
func (s *Session) Spec() threshold.Spec {
	return s.spec.Clone()
}

// Policy returns the threshold policy.
func (s *Session) Policy() threshold.Policy {
	return s.policy
}

// ActiveLabel returns the matrix label the selection is derived from.
func (s *Session) ActiveLabel() string {
	return s.label
}

// NumClusters returns the current cluster count.
func (s *Session) NumClusters() int {
	return s.numClusters
}

// Selection returns the current sub-network.
func (s *Session) Selection() *selection.SubNetwork {
	return s.sub
}

// Selected returns a copy of the selected global node indices.
func (s *Session) Selected() map[int]struct{} {
	return copySet(s.selected)
}

// SetThreshold sets the value of the active control dimension.
func (s *Session) SetThreshold(v float64) error {
	return s.SetThresholdAt(s.spec.Index, v)
}

// SetThresholdAt sets control dimension idx to v.
func (s *Session) SetThresholdAt(idx int, v float64) error {
	spec, err := s.spec.WithValue(idx, v)
	if err != nil {
		return s.fail("threshold", err)
	}
	return s.commit("threshold", s.store, spec, s.numClusters, s.label, s.selected)
}

// SetThresholdIndex switches the active control dimension.
func (s *Session) SetThresholdIndex(idx int) error {
	spec, err := s.spec.WithIndex(idx)
	if err != nil {
		return s.fail("threshold index", err)
	}
	return s.commit("threshold index", s.store, spec, s.numClusters, s.label, s.selected)
}

// SetActiveLabel switches the matrix the selection is derived from.
func (s *Session) SetActiveLabel(label string) error {
	if !s.net.Has(label) {
		return s.fail("label", fmt.Errorf("%w: %q", store.ErrUnknownLabel, label))
	}
	return s.reselect("label", label, s.selected)
}

// NextLabel cycles the active label and returns the new one.
func (s *Session) NextLabel() (string, error) {
	labels := s.net.Labels()
	next := labels[0]
	for i, l := range labels {
		if l == s.label {
			next = labels[(i+1)%len(labels)]
			break
		}
	}
	return next, s.SetActiveLabel(next)
}

// SetNumClusters re-flattens the linkage into k clusters.
func (s *Session) SetNumClusters(k int) error {
	if k < 1 {
		return s.fail("clusters", fmt.Errorf("%w: %d", ErrInvalidClusterCount, k))
	}
	if n := s.net.N(); k > n {
		k = n
	}
	return s.commit("clusters", s.store, s.spec, k, s.label, s.selected)
}

// Select replaces the selection with nodes.
func (s *Session) Select(nodes map[int]struct{}) error {
	return s.reselect("select", s.label, nodes)
}

// SelectCluster selects the members of flattened cluster id.
func (s *Session) SelectCluster(id int) error {
	nodes := selection.ClusterSelection(s.net, id)
	if len(nodes) == 0 {
		return s.fail("select cluster", fmt.Errorf("%w: no cluster %d", ErrNoSelection, id))
	}
	return s.reselect("select cluster", s.label, nodes)
}

// SelectNeighbourhood selects node and its neighbours under the active label.
func (s *Session) SelectNeighbourhood(node int) error {
	nodes, err := selection.NeighbourhoodSelection(s.net, s.label, node)
	if err != nil {
		return s.fail("select neighbourhood", err)
	}
	return s.reselect("select neighbourhood", s.label, nodes)
}

// SelectAll selects every node.
func (s *Session) SelectAll() error {
	return s.reselect("select all", s.label, selection.AllNodes(s.net))
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() error {
	return s.reselect("clear", s.label, nil)
}

// ReplaceStore swaps in freshly loaded data and rebuilds everything. The
// active label survives when the new store still has it; selected nodes that
// no longer exist are dropped.
func (s *Session) ReplaceStore(st *store.Store) error {
	if st == nil || st.Len() == 0 {
		return s.fail("reload", fmt.Errorf("session: %w", network.ErrEmptyNetwork))
	}
	label := s.label
	if _, err := st.ActiveMatrix(label); err != nil {
		label = st.Labels()[0]
	}
	nodes := make(map[int]struct{}, len(s.selected))
	for i := range s.selected {
		if i < st.Dim() {
			nodes[i] = struct{}{}
		}
	}
	k := s.numClusters
	if k > st.Dim() {
		k = st.Dim()
	}
	return s.commit("reload", st, s.spec, k, label, nodes)
}

// commit runs the full pipeline and swaps in the results only when every
// stage succeeded.
func (s *Session) commit(op string, st *store.Store, spec threshold.Spec, k int, label string, nodes map[int]struct{}) error {
	defer metrics.Timer(metrics.SessionRecompute)()
	start := time.Now()

	net, err := s.build(st, spec, k)
	if err != nil {
		return s.fail(op, err)
	}
	sub, err := selection.InducedSubnetwork(net, label, nodes)
	if err != nil {
		return s.fail(op, err)
	}

	s.store = st
	s.spec = spec.Clone()
	s.numClusters = k
	s.label = label
	s.selected = copySet(nodes)
	s.net = net
	s.sub = sub
	s.revision = net.Revision()
	debug.LogTiming("session "+op, time.Since(start))
	if s.onChange != nil {
		s.onChange(net)
	}
	return nil
}

func (s *Session) build(st *store.Store, spec threshold.Spec, k int) (*network.Network, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	filtered := make(map[string]matrix.Matrix, st.Len())
	err := st.Each(func(label string, m matrix.Matrix) error {
		stop := metrics.Timer(metrics.ThresholdApply)
		f, err := s.policy.Apply(m, spec.Values)
		stop()
		if err != nil {
			return fmt.Errorf("threshold %q: %w", label, err)
		}
		filtered[label] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return network.Assemble(filtered, st.Meta(), st.Linkage(),
		network.WithLabels(st.Labels()),
		network.WithThreshold(spec),
		network.WithClusters(k),
		network.WithRevision(s.revision+1),
	)
}

// reselect recomputes only the sub-network; the Network is unchanged.
func (s *Session) reselect(op, label string, nodes map[int]struct{}) error {
	sub, err := selection.InducedSubnetwork(s.net, label, nodes)
	if err != nil {
		return s.fail(op, err)
	}
	s.label = label
	s.selected = copySet(nodes)
	s.sub = sub
	return nil
}

func (s *Session) fail(op string, err error) error {
	s.logger.Error("recompute failed, keeping previous network", "op", op, "revision", s.revision, "err", err)
	return err
}

func copySet(in map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(in))
	for i := range in {
		out[i] = struct{}{}
	}
	return out
}
