package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/netview/pkg/threshold"
)

// SQLiteScheme prefixes matrix sources read from a SQLite table.
const SQLiteScheme = "sqlite://"

// LoadArgs describes where the data lives and how the session starts.
// Matrix, node data and node name sources are parallel to their label lists;
// a missing label list gets generated labels.
type LoadArgs struct {
	Matrices         []string  `yaml:"matrices" validate:"required,min=1,dive,required"`
	MatrixLabels     []string  `yaml:"matrix_labels,omitempty" validate:"dive,required"`
	NodeData         []string  `yaml:"node_data,omitempty" validate:"dive,required"`
	NodeDataLabels   []string  `yaml:"node_data_labels,omitempty" validate:"dive,required"`
	NodeNames        []string  `yaml:"node_names,omitempty" validate:"dive,required"`
	NodeNameLabels   []string  `yaml:"node_name_labels,omitempty" validate:"dive,required"`
	NodeNameIdx      int       `yaml:"node_name_idx" validate:"min=0"`
	Linkage          string    `yaml:"linkage,omitempty"`
	LinkageZeroBased bool      `yaml:"linkage_zero_based,omitempty"`
	ThresFunc        string    `yaml:"thres_func,omitempty"`
	ThresVals        []float64 `yaml:"thres_vals" validate:"required,min=1"`
	ThresLabels      []string  `yaml:"thres_labels,omitempty"`
	ThresholdIdx     int       `yaml:"threshold_idx" validate:"min=0"`
	NumClusters      int       `yaml:"num_clusters" validate:"min=1"`
}

// DefaultLoadArgs returns load arguments with no sources, a zero magnitude
// cutoff and a single cluster.
func DefaultLoadArgs() LoadArgs {
	return LoadArgs{
		ThresFunc:   threshold.DefaultPolicy,
		ThresVals:   []float64{0},
		ThresLabels: []string{"Threshold"},
		NumClusters: 1,
	}
}

// Validate checks field constraints and the relations between fields.
func (a LoadArgs) Validate() error {
	if err := validate.Struct(a); err != nil {
		return structError(err)
	}
	if err := parallel("matrix_labels", a.MatrixLabels, "matrices", a.Matrices); err != nil {
		return err
	}
	if err := parallel("node_data_labels", a.NodeDataLabels, "node_data", a.NodeData); err != nil {
		return err
	}
	if err := parallel("node_name_labels", a.NodeNameLabels, "node_names", a.NodeNames); err != nil {
		return err
	}
	if len(a.NodeNames) > 0 && a.NodeNameIdx >= len(a.NodeNames) {
		return fmt.Errorf("%w: node_name_idx %d outside [0, %d)", ErrInvalidConfig, a.NodeNameIdx, len(a.NodeNames))
	}
	if a.ThresholdIdx >= len(a.ThresVals) {
		return fmt.Errorf("%w: threshold_idx %d outside [0, %d)", ErrInvalidConfig, a.ThresholdIdx, len(a.ThresVals))
	}
	if len(a.ThresLabels) > len(a.ThresVals) {
		return fmt.Errorf("%w: %d thres_labels for %d thres_vals", ErrInvalidConfig, len(a.ThresLabels), len(a.ThresVals))
	}
	for i, v := range a.ThresVals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: thres_vals[%d] is %v", ErrInvalidConfig, i, v)
		}
	}
	if _, err := threshold.Lookup(a.ThresFunc); err != nil {
		return fmt.Errorf("%w: thres_func: %w", ErrInvalidConfig, err)
	}
	seen := make(map[string]bool, len(a.Matrices))
	for _, l := range a.Labels() {
		if seen[l] {
			return fmt.Errorf("%w: duplicate matrix label %q", ErrInvalidConfig, l)
		}
		seen[l] = true
	}
	return nil
}

func parallel(labelsName string, labels []string, srcName string, sources []string) error {
	if len(labels) != 0 && len(labels) != len(sources) {
		return fmt.Errorf("%w: %d %s for %d %s", ErrInvalidConfig, len(labels), labelsName, len(sources), srcName)
	}
	return nil
}

// Labels returns the matrix labels, generating "Matrix N" when absent.
func (a LoadArgs) Labels() []string {
	return labelsFor(a.MatrixLabels, len(a.Matrices), "Matrix")
}

// DataLabels returns the node data labels, generating "Data N" when absent.
func (a LoadArgs) DataLabels() []string {
	return labelsFor(a.NodeDataLabels, len(a.NodeData), "Data")
}

// NameLabels returns the node name labels, generating "Names N" when absent.
func (a LoadArgs) NameLabels() []string {
	return labelsFor(a.NodeNameLabels, len(a.NodeNames), "Names")
}

func labelsFor(labels []string, n int, prefix string) []string {
	if len(labels) == n {
		return append([]string(nil), labels...)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}

// ThresholdSpec returns the initial control state.
func (a LoadArgs) ThresholdSpec() threshold.Spec {
	return threshold.NewSpec(a.ThresVals, a.ThresLabels, a.ThresholdIdx)
}

// Policy resolves ThresFunc through the threshold registry.
func (a LoadArgs) Policy() (threshold.Policy, error) {
	return threshold.Lookup(a.ThresFunc)
}

// ResolvePaths returns a copy of a with relative file sources joined to
// base. SQLite URIs resolve only their database path.
func (a LoadArgs) ResolvePaths(base string) LoadArgs {
	out := a
	out.Matrices = resolveAll(base, a.Matrices)
	out.NodeData = resolveAll(base, a.NodeData)
	out.NodeNames = resolveAll(base, a.NodeNames)
	if a.Linkage != "" {
		out.Linkage = resolve(base, a.Linkage)
	}
	return out
}

func resolveAll(base string, paths []string) []string {
	if paths == nil {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolve(base, p)
	}
	return out
}

func resolve(base, p string) string {
	if rest, ok := strings.CutPrefix(p, SQLiteScheme); ok {
		return SQLiteScheme + resolve(base, rest)
	}
	p = expandHome(p)
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// Sources returns every file the arguments read from, without SQLite URI
// decoration. The watcher uses it to know what to watch.
func (a LoadArgs) Sources() []string {
	var out []string
	add := func(p string) {
		if p == "" {
			return
		}
		if rest, ok := strings.CutPrefix(p, SQLiteScheme); ok {
			p, _, _ = strings.Cut(rest, "?")
		}
		out = append(out, p)
	}
	for _, p := range a.Matrices {
		add(p)
	}
	for _, p := range a.NodeData {
		add(p)
	}
	for _, p := range a.NodeNames {
		add(p)
	}
	add(a.Linkage)
	return out
}
