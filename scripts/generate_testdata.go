//go:build ignore

// generate_testdata.go writes reproducible datasets for manual testing and
// profiling the viewer.
// Usage: go run scripts/generate_testdata.go [-out testdata/datasets]
//
// Each dataset directory holds two matrices (a block-structured "Blocks"
// and a sparse "Random"), a names file, a 1-based linkage file and a
// config.yaml that points at them, so `netview -config <dir>/config.yaml`
// opens it directly.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/testutil"
)

type datasetSpec struct {
	name    string
	blocks  int
	size    int
	density float64
}

var datasets = []datasetSpec{
	{"small", 3, 10, 0.2},
	{"medium", 5, 40, 0.05},
	{"large", 10, 100, 0.01},
}

func main() {
	out := flag.String("out", "testdata/datasets", "Output directory")
	flag.Parse()

	for _, ds := range datasets {
		n := ds.blocks * ds.size
		fmt.Printf("Generating %s dataset (%d nodes)...\n", ds.name, n)
		if err := write(filepath.Join(*out, ds.name), ds); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", ds.name, err)
			os.Exit(1)
		}
	}
	fmt.Println("Done.")
}

func write(dir string, ds datasetSpec) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	n := ds.blocks * ds.size
	gen := testutil.New(testutil.GeneratorConfig{Seed: int64(n), MaxWeight: 10, Negative: 0.3})

	files := map[string]string{
		"blocks.txt":   testutil.ToText(gen.Blocks(ds.blocks, ds.size)),
		"random.txt":   testutil.ToText(gen.Random(n, ds.density)),
		"names.txt":    strings.Join(testutil.Names(n, ds.name), "\n") + "\n",
		"linkages.txt": testutil.LinkageToText(gen.Linkage(n), true),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}

	cfg := config.DefaultConfig()
	cfg.Load.Matrices = []string{"blocks.txt", "random.txt"}
	cfg.Load.MatrixLabels = []string{"Blocks", "Random"}
	cfg.Load.NodeNames = []string{"names.txt"}
	cfg.Load.Linkage = "linkages.txt"
	cfg.Load.ThresVals = []float64{5}
	cfg.Load.NumClusters = ds.blocks
	return config.SaveTo(cfg, filepath.Join(dir, "config.yaml"))
}
