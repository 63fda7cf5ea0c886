package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/network"
)

// AssertMatrixEqual fails unless want and got have the same shape and equal
// cells, treating two absent cells as equal.
func AssertMatrixEqual(t *testing.T, want, got matrix.Matrix) {
	t.Helper()
	if !want.SameShape(got) {
		t.Fatalf("shape mismatch: want %dx%d, got %dx%d", want.Dim(), want.Dim(), got.Dim(), got.Dim())
	}
	for i := range want {
		for j := range want[i] {
			w, g := want[i][j], got[i][j]
			if matrix.IsAbsent(w) && matrix.IsAbsent(g) {
				continue
			}
			if w != g {
				t.Errorf("cell (%d,%d): want %v, got %v", i, j, w, g)
			}
		}
	}
}

// AssertEdges fails unless got lists exactly want, in order.
func AssertEdges(t *testing.T, want, got []network.Edge) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("edge count: want %d %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("edge %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

// AssertEdgesWellFormed checks every edge has Source < Target < n and a
// present weight.
func AssertEdgesWellFormed(t *testing.T, n int, edges []network.Edge) {
	t.Helper()
	for _, e := range edges {
		if e.Source < 0 || e.Source >= e.Target || e.Target >= n {
			t.Errorf("malformed edge %v for %d nodes", e, n)
		}
		if matrix.IsAbsent(e.Weight) {
			t.Errorf("edge %v carries the absent sentinel", e)
		}
	}
}

// Dataset is an on-disk set of source files in the loader formats.
type Dataset struct {
	Dir      string
	Matrices map[string]matrix.Matrix
	Args     config.LoadArgs
}

// WriteDataset writes one matrix file per label, a names file, a cluster
// data file and, when linkage is non-nil, a 1-based linkage file into a temp
// directory and returns load arguments pointing at them.
func WriteDataset(t *testing.T, labels []string, mats []matrix.Matrix, linkage *network.Linkage) Dataset {
	t.Helper()
	if len(labels) != len(mats) || len(mats) == 0 {
		t.Fatalf("WriteDataset: %d labels for %d matrices", len(labels), len(mats))
	}
	dir := t.TempDir()
	n := mats[0].Dim()

	ds := Dataset{Dir: dir, Matrices: make(map[string]matrix.Matrix, len(mats)), Args: config.DefaultLoadArgs()}
	for i, m := range mats {
		path := filepath.Join(dir, "matrix"+strconv.Itoa(i+1)+".txt")
		writeFile(t, path, ToText(m))
		ds.Args.Matrices = append(ds.Args.Matrices, path)
		ds.Matrices[labels[i]] = m
	}
	ds.Args.MatrixLabels = append([]string(nil), labels...)

	names := filepath.Join(dir, "names.txt")
	writeFile(t, names, strings.Join(Names(n, "node"), "\n")+"\n")
	ds.Args.NodeNames = []string{names}
	ds.Args.NodeNameLabels = []string{"Names"}

	var clusters strings.Builder
	for i := 0; i < n; i++ {
		clusters.WriteString(strconv.Itoa(i%3 + 1))
		clusters.WriteByte('\n')
	}
	data := filepath.Join(dir, "clusters.txt")
	writeFile(t, data, clusters.String())
	ds.Args.NodeData = []string{data}
	ds.Args.NodeDataLabels = []string{"Cluster number"}

	if linkage != nil {
		path := filepath.Join(dir, "linkages.txt")
		writeFile(t, path, LinkageToText(linkage, true))
		ds.Args.Linkage = path
	}
	return ds
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
