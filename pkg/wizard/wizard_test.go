package wizard

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/threshold"
)

func TestFromConfig_Defaults(t *testing.T) {
	a := FromConfig(config.DefaultConfig())
	if a.Policy != threshold.DefaultPolicy {
		t.Errorf("expected default policy, got %q", a.Policy)
	}
	if a.Threshold != "0" || a.Clusters != "1" {
		t.Errorf("expected threshold 0 and 1 cluster, got %q / %q", a.Threshold, a.Clusters)
	}
	if a.HighlightOff {
		t.Error("highlighting is on by default")
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	a := Answers{
		Matrices:  "Znet1.txt, /abs/Znet2.txt",
		Labels:    "Full, Partial",
		Names:     "names.txt",
		Linkage:   "linkage.txt",
		ZeroBased: true,
		Policy:    "topk",
		Threshold: "3",
		Clusters:  "4",
	}
	cfg, err := a.Apply(config.DefaultConfig(), dir)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	load := cfg.Load
	wantMats := []string{filepath.Join(dir, "Znet1.txt"), "/abs/Znet2.txt"}
	if !reflect.DeepEqual(load.Matrices, wantMats) {
		t.Errorf("matrices: expected %v, got %v", wantMats, load.Matrices)
	}
	if !reflect.DeepEqual(load.MatrixLabels, []string{"Full", "Partial"}) {
		t.Errorf("unexpected labels %v", load.MatrixLabels)
	}
	if !reflect.DeepEqual(load.NodeNames, []string{filepath.Join(dir, "names.txt")}) {
		t.Errorf("unexpected node names %v", load.NodeNames)
	}
	if load.Linkage != filepath.Join(dir, "linkage.txt") || !load.LinkageZeroBased {
		t.Errorf("unexpected linkage %q zero=%v", load.Linkage, load.LinkageZeroBased)
	}
	if load.ThresFunc != "topk" || load.ThresVals[load.ThresholdIdx] != 3 {
		t.Errorf("unexpected threshold %q %v", load.ThresFunc, load.ThresVals)
	}
	if load.NumClusters != 4 {
		t.Errorf("expected 4 clusters, got %d", load.NumClusters)
	}
	if !cfg.Display.HighlightOn {
		t.Error("highlighting should stay on")
	}
}

func TestApply_KeepsUnchangedNames(t *testing.T) {
	base := config.DefaultConfig()
	base.Load.Matrices = []string{"/m.txt"}
	base.Load.NodeNames = []string{"/a.txt", "/b.txt"}
	base.Load.NodeNameLabels = []string{"A", "B"}
	base.Load.NodeNameIdx = 1

	a := FromConfig(base)
	cfg, err := a.Apply(base, t.TempDir())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(cfg.Load.NodeNames, base.Load.NodeNames) || cfg.Load.NodeNameIdx != 1 {
		t.Errorf("untouched names should survive, got %v idx %d", cfg.Load.NodeNames, cfg.Load.NodeNameIdx)
	}
}

func TestApply_Rejects(t *testing.T) {
	valid := Answers{Matrices: "/m.txt", Policy: "magnitude", Threshold: "1", Clusters: "1"}
	tests := []struct {
		name   string
		modify func(*Answers)
	}{
		{"no matrices", func(a *Answers) { a.Matrices = " , " }},
		{"bad threshold", func(a *Answers) { a.Threshold = "high" }},
		{"zero clusters", func(a *Answers) { a.Clusters = "0" }},
		{"label count", func(a *Answers) { a.Labels = "A, B" }},
		{"unknown policy", func(a *Answers) { a.Policy = "bogus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.modify(&a)
			base := config.DefaultConfig()
			got, err := a.Apply(base, "/")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !reflect.DeepEqual(got, base) {
				t.Error("a rejected answer must return the base config")
			}
		})
	}

	a := valid
	a.Labels = "A, B"
	if _, err := a.Apply(config.DefaultConfig(), "/"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidators(t *testing.T) {
	if validateMatrices("a.txt") != nil || validateMatrices(" ") == nil {
		t.Error("validateMatrices")
	}
	if validateFloat("-0.5") != nil || validateFloat("1e3") != nil || validateFloat("x") == nil {
		t.Error("validateFloat")
	}
	if validateClusters("3") != nil || validateClusters("0") == nil || validateClusters("2.5") == nil {
		t.Error("validateClusters")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a ,, b,c ")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected %v", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}
