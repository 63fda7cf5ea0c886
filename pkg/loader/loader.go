// Package loader resolves load arguments into matrices, node metadata and a
// linkage. Every source is read concurrently; the first failure cancels the
// rest and nothing partial is returned.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/netview/internal/datasource"
	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/debug"
	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/metrics"
	"github.com/vanderheijden86/netview/pkg/network"
	"github.com/vanderheijden86/netview/pkg/session"
	"github.com/vanderheijden86/netview/pkg/store"
	"github.com/vanderheijden86/netview/pkg/threshold"
)

// maxConcurrentReads bounds how many source files are open at once.
const maxConcurrentReads = 8

// symmetryEps is how far m[i][j] and m[j][i] may differ before a matrix is
// reported as asymmetric.
const symmetryEps = 1e-9

// Bundle is everything one load produced, ready to be turned into a Store
// and a Session.
type Bundle struct {
	Labels      []string
	Matrices    map[string]matrix.Matrix
	Meta        network.NodeMetadata
	Linkage     *network.Linkage
	Threshold   threshold.Spec
	Policy      threshold.Policy
	NumClusters int

	// Asymmetric lists the labels whose matrix is not symmetric. Only the
	// upper triangle of those is drawn.
	Asymmetric []string
}

// Load validates args and reads every source they name.
func Load(ctx context.Context, args config.LoadArgs) (*Bundle, error) {
	defer metrics.Timer(metrics.DataLoad)()
	start := time.Now()

	if err := args.Validate(); err != nil {
		return nil, err
	}
	policy, err := args.Policy()
	if err != nil {
		return nil, err
	}

	labels := args.Labels()
	mats := make([]matrix.Matrix, len(args.Matrices))
	data := make([][]float64, len(args.NodeData))
	names := make([][]string, len(args.NodeNames))
	var linkage *network.Linkage

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for i, src := range args.Matrices {
		g.Go(func() error {
			m, err := loadMatrix(ctx, src)
			if err != nil {
				return fmt.Errorf("matrix %q: %w", labels[i], err)
			}
			mats[i] = m
			return nil
		})
	}
	for i, src := range args.NodeData {
		g.Go(func() error {
			vals, err := readFile(ctx, src, ParseNodeData)
			if err != nil {
				return fmt.Errorf("node data: %w", err)
			}
			data[i] = vals
			return nil
		})
	}
	for i, src := range args.NodeNames {
		g.Go(func() error {
			vals, err := readFile(ctx, src, ParseNames)
			if err != nil {
				return fmt.Errorf("node names: %w", err)
			}
			names[i] = vals
			return nil
		})
	}
	if args.Linkage != "" {
		g.Go(func() error {
			l, err := readFile(ctx, args.Linkage, func(r io.Reader) (*network.Linkage, error) {
				return ParseLinkage(r, args.LinkageZeroBased)
			})
			if err != nil {
				return fmt.Errorf("linkage: %w", err)
			}
			linkage = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Bundle{
		Labels:      labels,
		Matrices:    make(map[string]matrix.Matrix, len(labels)),
		Linkage:     linkage,
		Threshold:   args.ThresholdSpec(),
		Policy:      policy,
		NumClusters: args.NumClusters,
	}
	for i, label := range labels {
		b.Matrices[label] = mats[i]
		if !mats[i].IsSymmetric(symmetryEps) {
			b.Asymmetric = append(b.Asymmetric, label)
		}
	}
	for i, label := range args.NameLabels() {
		b.Meta.Names = append(b.Meta.Names, network.NameSet{Label: label, Values: names[i]})
	}
	b.Meta.NameIndex = args.NodeNameIdx
	for i, label := range args.DataLabels() {
		b.Meta.Data = append(b.Meta.Data, network.Attribute{Label: label, Values: data[i]})
	}

	debug.Log("loaded %d matrices, %d name sets, %d data columns in %v", len(labels), len(names), len(data), time.Since(start))
	return b, nil
}

// LoadNetwork runs Load in the background and calls fn exactly once with
// the result.
func LoadNetwork(ctx context.Context, args config.LoadArgs, fn func(*Bundle, error)) {
	go func() {
		fn(Load(ctx, args))
	}()
}

// Store builds a MatrixStore from the bundle. Dimension problems between
// matrices, metadata and linkage surface here.
func (b *Bundle) Store() (*store.Store, error) {
	st := store.New(b.Meta, b.Linkage)
	for _, label := range b.Labels {
		if err := st.Add(label, b.Matrices[label]); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// NewSession builds the store and a session using the bundle's policy,
// threshold and cluster count. Extra options are applied last.
func (b *Bundle) NewSession(opts ...session.Option) (*session.Session, error) {
	st, err := b.Store()
	if err != nil {
		return nil, err
	}
	base := []session.Option{
		session.WithPolicy(b.Policy),
		session.WithThreshold(b.Threshold),
		session.WithNumClusters(b.NumClusters),
	}
	return session.New(st, append(base, opts...)...)
}

func loadMatrix(ctx context.Context, id string) (matrix.Matrix, error) {
	src, err := datasource.Parse(id)
	if err != nil {
		return nil, err
	}
	if src.Type == datasource.SourceTypeSQLite {
		return datasource.LoadMatrix(ctx, src)
	}
	return readFile(ctx, src.Path, ParseMatrix)
}

func readFile[T any](ctx context.Context, path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
