package threshold

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/netview/pkg/matrix"
)

// Percentile keeps the strongest control[0] percent of edges. The cutoff is
// the empirical quantile of the upper-triangle magnitudes, after which the
// Magnitude rule is applied to every cell.
type Percentile struct{}

// Apply implements Policy.
func (Percentile) Apply(m matrix.Matrix, control []float64) (matrix.Matrix, error) {
	p, err := checkInputs(m, control)
	if err != nil {
		return nil, err
	}
	if p < 0 || p > 100 {
		return nil, fmt.Errorf("%w: percentage %v outside [0, 100]", ErrInvalidControl, p)
	}
	cutoff := percentileCutoff(m, p)
	return filter(m, func(_, _ int, v float64) bool {
		return math.Abs(v) >= cutoff
	}), nil
}

func percentileCutoff(m matrix.Matrix, p float64) float64 {
	if p == 0 {
		return math.Inf(1)
	}
	// Negated magnitudes sorted ascending put the strongest edges first, so
	// the empirical p-quantile is the weakest magnitude still inside the top p%.
	var neg []float64
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if v := m[i][j]; !matrix.IsAbsent(v) {
				neg = append(neg, -math.Abs(v))
			}
		}
	}
	if len(neg) == 0 {
		return math.Inf(1)
	}
	sort.Float64s(neg)
	return -stat.Quantile(p/100, stat.Empirical, neg, nil)
}

// TopK keeps, for every node, its control[0] strongest off-diagonal edges.
// An edge survives when either endpoint ranks it in its top k, so the result
// stays symmetric for symmetric input. Ties are broken by column index. The
// diagonal passes through unchanged.
type TopK struct{}

// Apply implements Policy.
func (TopK) Apply(m matrix.Matrix, control []float64) (matrix.Matrix, error) {
	kf, err := checkInputs(m, control)
	if err != nil {
		return nil, err
	}
	if kf < 0 || kf != math.Trunc(kf) || math.IsInf(kf, 0) {
		return nil, fmt.Errorf("%w: k must be a non-negative integer, got %v", ErrInvalidControl, kf)
	}
	k := int(kf)
	n := len(m)

	keep := make([][]bool, n)
	for i := range keep {
		keep[i] = make([]bool, n)
		keep[i][i] = true
	}

	cols := make([]int, 0, n)
	for i, row := range m {
		cols = cols[:0]
		for j, v := range row {
			if j != i && !matrix.IsAbsent(v) {
				cols = append(cols, j)
			}
		}
		sort.SliceStable(cols, func(a, b int) bool {
			return math.Abs(row[cols[a]]) > math.Abs(row[cols[b]])
		})
		limit := k
		if limit > len(cols) {
			limit = len(cols)
		}
		for _, j := range cols[:limit] {
			keep[i][j] = true
			keep[j][i] = true
		}
	}

	return filter(m, func(i, j int, _ float64) bool {
		return keep[i][j]
	}), nil
}
