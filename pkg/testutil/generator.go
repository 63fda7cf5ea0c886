// Package testutil provides deterministic matrix, linkage and dataset
// fixtures for tests across the module.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/network"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed      int64   // Random seed for determinism (0 = fixed default seed)
	MaxWeight float64 // Largest absolute edge weight (default 10)
	Negative  float64 // Fraction of edges with a negative sign (0..1)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42,
		MaxWeight: 10,
		Negative:  0.3,
	}
}

// Generator creates symmetric weight matrices with various structures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.MaxWeight <= 0 {
		cfg.MaxWeight = 10
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Example is the 3-node matrix used throughout the docs:
// cutoff 3 keeps edges 0-1 (5) and 1-2 (9).
func Example() matrix.Matrix {
	return matrix.Matrix{
		{0, 5, 1},
		{5, 0, 9},
		{1, 9, 0},
	}
}

func (g *Generator) weight(scale float64) float64 {
	w := (0.1 + 0.9*g.rng.Float64()) * g.cfg.MaxWeight * scale
	if g.rng.Float64() < g.cfg.Negative {
		w = -w
	}
	return math.Round(w*1000) / 1000
}

// Random returns an n x n symmetric matrix with a zero diagonal. Each pair
// gets a non-zero weight with probability density.
func (g *Generator) Random(n int, density float64) matrix.Matrix {
	m := matrix.New(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.rng.Float64() < density {
				w := g.weight(1)
				m[i][j], m[j][i] = w, w
			}
		}
	}
	return m
}

// Blocks returns a modular matrix of k clusters of size nodes each.
// Weights inside a cluster are strong, weights between clusters are at most
// a tenth of MaxWeight, so a magnitude cutoff of MaxWeight/10 separates them.
func (g *Generator) Blocks(k, size int) matrix.Matrix {
	n := k * size
	m := matrix.New(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var w float64
			if i/size == j/size {
				w = math.Abs(g.weight(1))
				if w < g.cfg.MaxWeight/10 {
					w = g.cfg.MaxWeight / 10
				}
			} else {
				w = g.weight(0.09)
			}
			m[i][j], m[j][i] = w, w
		}
	}
	return m
}

// Linkage returns a complete linkage over n leaves that repeatedly merges
// the two oldest clusters, with increasing heights.
func (g *Generator) Linkage(n int) *network.Linkage {
	if n < 1 {
		return nil
	}
	queue := make([]int, n)
	for i := range queue {
		queue[i] = i
	}
	l := &network.Linkage{}
	for next := n; len(queue) > 1; next++ {
		a, b := queue[0], queue[1]
		queue = append(queue[2:], next)
		l.Merges = append(l.Merges, network.Merge{A: a, B: b, Height: float64(next-n+1) / float64(n)})
	}
	return l
}

// Names returns "<prefix>1".."<prefix>n".
func Names(n int, prefix string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i+1)
	}
	return out
}

// ToText renders m in the whitespace-separated matrix file format.
// Absent cells are written as "nan".
func ToText(m matrix.Matrix) string {
	var sb strings.Builder
	for _, row := range m {
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			if matrix.IsAbsent(v) {
				sb.WriteString("nan")
				continue
			}
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// LinkageToText renders l as "a b height" rows. With oneBased the ids are
// shifted the way MATLAB and FSLNets write them.
func LinkageToText(l *network.Linkage, oneBased bool) string {
	shift := 0
	if oneBased {
		shift = 1
	}
	var sb strings.Builder
	for _, mg := range l.Merges {
		fmt.Fprintf(&sb, "%d %d %s\n", mg.A+shift, mg.B+shift, strconv.FormatFloat(mg.Height, 'g', -1, 64))
	}
	return sb.String()
}

// QuickRandom is shorthand for NewDefault().Random(n, density).
func QuickRandom(n int, density float64) matrix.Matrix {
	return NewDefault().Random(n, density)
}

// QuickBlocks is shorthand for NewDefault().Blocks(k, size).
func QuickBlocks(k, size int) matrix.Matrix {
	return NewDefault().Blocks(k, size)
}
