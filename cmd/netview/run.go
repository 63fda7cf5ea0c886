package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/export"
	"github.com/vanderheijden86/netview/pkg/loader"
	"github.com/vanderheijden86/netview/pkg/metrics"
	"github.com/vanderheijden86/netview/pkg/session"
	"github.com/vanderheijden86/netview/pkg/store"
	"github.com/vanderheijden86/netview/pkg/ui"
)

// Terminal cells are converted to canvas pixels with this nominal cell size.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

type options struct {
	configPath    string
	matrices      listFlag
	labels        listFlag
	names         string
	linkage       string
	policy        string
	threshold     *float64
	clusters      int
	selectCluster int
	selectAll     bool
	snapshot      string
	jsonOut       string
	dotOut        string
	sqliteOut     string
	fit           bool
	saveConfig    bool
	init          bool
	metricsOut    string
}

func (o options) exporting() bool {
	return o.snapshot != "" || o.jsonOut != "" || o.dotOut != "" || o.sqliteOut != ""
}

// buildConfig reads the config file and applies command line overrides on
// top. It returns the config and the path it belongs to.
func buildConfig(opts options) (config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return cfg, path, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return cfg, path, err
	}
	var cli config.LoadArgs
	if len(opts.matrices) > 0 {
		cli.Matrices = opts.matrices
		cli.MatrixLabels = opts.labels
		// Sources named on the command line replace the configured ones;
		// metadata files only survive when they still fit.
		cfg.Load.Matrices = nil
		cfg.Load.MatrixLabels = nil
	}
	if opts.names != "" {
		cli.NodeNames = []string{opts.names}
		cfg.Load.NodeNames = nil
		cfg.Load.NodeNameLabels = nil
		cfg.Load.NodeNameIdx = 0
	}
	if opts.linkage != "" {
		cli.Linkage = opts.linkage
	}
	cli = cli.ResolvePaths(wd)

	if cli.Matrices != nil {
		cfg.Load.Matrices = cli.Matrices
		cfg.Load.MatrixLabels = cli.MatrixLabels
	}
	if cli.NodeNames != nil {
		cfg.Load.NodeNames = cli.NodeNames
	}
	if cli.Linkage != "" {
		cfg.Load.Linkage = cli.Linkage
	}
	if opts.policy != "" {
		cfg.Load.ThresFunc = opts.policy
	}
	if opts.threshold != nil {
		idx := cfg.Load.ThresholdIdx
		if idx >= len(cfg.Load.ThresVals) {
			idx = 0
		}
		vals := append([]float64(nil), cfg.Load.ThresVals...)
		if len(vals) == 0 {
			vals = []float64{0}
		}
		vals[idx] = *opts.threshold
		cfg.Load.ThresVals = vals
	}
	if opts.clusters > 0 {
		cfg.Load.NumClusters = opts.clusters
	}

	if opts.saveConfig {
		// An incomplete config is fine to save; it is checked on load.
		return cfg, path, nil
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

func openSession(ctx context.Context, args config.LoadArgs, logger *log.Logger) (*session.Session, error) {
	bundle, err := loader.Load(ctx, args)
	if err != nil {
		return nil, err
	}
	for _, label := range bundle.Asymmetric {
		logger.Warn("matrix is not symmetric", "label", label)
	}
	return bundle.NewSession(session.WithLogger(logger))
}

// reloader reads args again for live reload.
func reloader(args config.LoadArgs) ui.Reloader {
	return func(ctx context.Context) (*store.Store, error) {
		bundle, err := loader.Load(ctx, args)
		if err != nil {
			return nil, err
		}
		return bundle.Store()
	}
}

func runExports(ctx context.Context, opts options, cfg config.Config, sess *session.Session, stdout io.Writer) error {
	switch {
	case opts.selectCluster > 0:
		if err := sess.SelectCluster(opts.selectCluster); err != nil {
			return err
		}
	case opts.selectAll:
		if err := sess.SelectAll(); err != nil {
			return err
		}
	}
	net := sess.Network()

	if opts.snapshot != "" {
		err := export.SaveSnapshot(export.SnapshotOptions{
			Path:    opts.snapshot,
			Title:   "netview " + sess.ActiveLabel(),
			Network: net,
			Label:   sess.ActiveLabel(),
			Sub:     sess.Selection(),
			Display: cfg.Display,
		})
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if opts.jsonOut != "" {
		err := withOutput(opts.jsonOut, stdout, func(w io.Writer) error {
			return export.ExportJSON(w, net, sess.Selection(), cfg.Display)
		})
		if err != nil {
			return fmt.Errorf("json: %w", err)
		}
	}
	if opts.dotOut != "" {
		err := withOutput(opts.dotOut, stdout, func(w io.Writer) error {
			return export.ExportDOT(w, net, sess.ActiveLabel())
		})
		if err != nil {
			return fmt.Errorf("dot: %w", err)
		}
	}
	if opts.sqliteOut != "" {
		ids, err := export.ExportSQLite(ctx, opts.sqliteOut, net)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		for _, id := range ids {
			fmt.Fprintln(stdout, id)
		}
	}
	return nil
}

// withOutput runs fn against stdout for "-" and against a created file
// otherwise.
func withOutput(path string, stdout io.Writer, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fitTerminal sizes the canvases from the terminal window, leaving d alone
// when stdout is not a terminal.
func fitTerminal(d config.Display, logger *log.Logger) config.Display {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		logger.Warn("-fit ignored, stdout is not a terminal")
		return d
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		logger.Warn("-fit ignored", "err", err)
		return d
	}
	return d.FitTerminal(cols*cellWidthPx, rows*cellHeightPx)
}

func openLogFile() (*os.File, error) {
	dir := config.StateDir()
	if dir == "" {
		return nil, fmt.Errorf("no state directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "netview.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// writeMetrics dumps the timing metrics as JSON to path, or stderr for "-".
func writeMetrics(path string) error {
	return withOutput(path, os.Stderr, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metrics.AllTimingStats())
	})
}
