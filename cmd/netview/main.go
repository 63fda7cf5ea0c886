// Command netview loads one or more connectivity matrices and shows them as
// an interactive thresholded network in the terminal, or renders the
// network to SVG, PNG, JSON, DOT or SQLite without a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/debug"
	"github.com/vanderheijden86/netview/pkg/session"
	"github.com/vanderheijden86/netview/pkg/ui"
	"github.com/vanderheijden86/netview/pkg/version"
	"github.com/vanderheijden86/netview/pkg/watcher"
	"github.com/vanderheijden86/netview/pkg/wizard"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Config file (default: "+config.ConfigPath()+")")
	flag.Var(&opts.matrices, "matrix", "Matrix source, file or sqlite://db?table=t (repeatable)")
	flag.Var(&opts.labels, "label", "Label of the matching -matrix (repeatable)")
	flag.StringVar(&opts.names, "names", "", "Node names file")
	flag.StringVar(&opts.linkage, "linkage", "", "Linkage file")
	flag.StringVar(&opts.policy, "policy", "", "Threshold policy (magnitude, percentile, topk, positive, negative)")
	flag.Func("threshold", "Initial value of the active threshold", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		opts.threshold = &v
		return nil
	})
	flag.IntVar(&opts.clusters, "clusters", 0, "Number of clusters to cut the linkage into")
	flag.IntVar(&opts.selectCluster, "select", 0, "Select cluster N before exporting")
	flag.BoolVar(&opts.selectAll, "select-all", false, "Select every node before exporting")
	flag.StringVar(&opts.snapshot, "snapshot", "", "Write an SVG or PNG snapshot and exit")
	flag.StringVar(&opts.jsonOut, "json", "", "Write the network as JSON (- for stdout) and exit")
	flag.StringVar(&opts.dotOut, "dot", "", "Write the active matrix as Graphviz DOT (- for stdout) and exit")
	flag.StringVar(&opts.sqliteOut, "sqlite", "", "Write the thresholded matrices to a SQLite database and exit")
	flag.BoolVar(&opts.fit, "fit", false, "Size snapshot canvases to the terminal window")
	flag.BoolVar(&opts.saveConfig, "save-config", false, "Write the effective config to -config and exit")
	flag.BoolVar(&opts.init, "init", false, "Ask for the load arguments and write them to -config")
	flag.StringVar(&opts.metricsOut, "metrics", "", "Write timing metrics as JSON on exit (- for stderr)")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: netview [options]")
		fmt.Println("\nInteractive thresholded network viewer for connectivity matrices.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("netview %s\n", version.Version)
		os.Exit(0)
	}

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "netview",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	if err := run(opts, logger); err != nil {
		logger.Error("netview failed", "err", err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(opts options, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.metricsOut != "" {
		defer func() {
			if err := writeMetrics(opts.metricsOut); err != nil {
				logger.Warn("could not write metrics", "err", err)
			}
		}()
	}

	if opts.init {
		path := opts.configPath
		if path == "" {
			path = config.ConfigPath()
		}
		if _, err := wizard.Run(path); err != nil {
			if errors.Is(err, wizard.ErrAborted) {
				return nil
			}
			return err
		}
		logger.Info("config written", "path", path)
		return nil
	}

	cfg, cfgPath, err := buildConfig(opts)
	if err != nil {
		return err
	}
	if opts.saveConfig {
		if err := config.SaveTo(cfg, cfgPath); err != nil {
			return err
		}
		logger.Info("config written", "path", cfgPath)
		return nil
	}
	if opts.fit {
		cfg.Display = fitTerminal(cfg.Display, logger)
	}
	if !opts.exporting() {
		// The TUI owns the terminal; session warnings go to a log file.
		if f, err := openLogFile(); err == nil {
			defer f.Close()
			logger.SetOutput(f)
			debug.SetOutput(f)
		} else {
			logger.SetOutput(io.Discard)
			debug.SetEnabled(false)
		}
	}

	sess, err := openSession(ctx, cfg.Load, logger)
	if err != nil {
		return err
	}

	if opts.exporting() {
		return runExports(ctx, opts, cfg, sess, os.Stdout)
	}
	return runTUI(cfg, sess, logger)
}

func runTUI(cfg config.Config, sess *session.Session, logger *log.Logger) error {
	uiOpts := []ui.Option{
		ui.WithDisplay(cfg.Display),
		ui.WithReloader(reloader(cfg.Load)),
	}
	w, err := watcher.NewWatcher(cfg.Load.Sources(),
		watcher.WithOnError(func(err error) {
			logger.Debug("watcher", "err", err)
		}),
	)
	if err == nil {
		if err := w.Start(); err != nil {
			logger.Warn("live reload disabled", "err", err)
		} else {
			defer w.Stop()
			uiOpts = append(uiOpts, ui.WithWatcher(w))
		}
	}

	return runTUIProgram(ui.NewModel(sess, uiOpts...))
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set NETVIEW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("NETVIEW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
