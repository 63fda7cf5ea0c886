// Package wizard asks for the load arguments interactively and turns the
// answers into a config file, for `netview -init`.
package wizard

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/netview/pkg/config"
	"github.com/vanderheijden86/netview/pkg/threshold"
)

// ErrAborted is returned when the user cancels the form.
var ErrAborted = errors.New("wizard: aborted")

// Answers holds the form fields. Lists are comma separated because huh
// inputs bind to single strings.
type Answers struct {
	Matrices     string
	Labels       string
	Names        string
	Linkage      string
	ZeroBased    bool
	Policy       string
	Threshold    string
	Clusters     string
	HighlightOff bool
}

// FromConfig prefills the answers from an existing config.
func FromConfig(cfg config.Config) Answers {
	a := cfg.Load
	out := Answers{
		Matrices:     strings.Join(a.Matrices, ", "),
		Labels:       strings.Join(a.MatrixLabels, ", "),
		Linkage:      a.Linkage,
		ZeroBased:    a.LinkageZeroBased,
		Policy:       a.ThresFunc,
		Clusters:     strconv.Itoa(a.NumClusters),
		HighlightOff: !cfg.Display.HighlightOn,
	}
	if len(a.NodeNames) > 0 && a.NodeNameIdx < len(a.NodeNames) {
		out.Names = a.NodeNames[a.NodeNameIdx]
	}
	if a.ThresholdIdx < len(a.ThresVals) {
		out.Threshold = strconv.FormatFloat(a.ThresVals[a.ThresholdIdx], 'g', -1, 64)
	}
	if out.Policy == "" {
		out.Policy = threshold.DefaultPolicy
	}
	return out
}

// Apply writes the answers over base. Relative paths are resolved against
// dir, normally the working directory the user typed them in. The result
// is validated.
func (a Answers) Apply(base config.Config, dir string) (config.Config, error) {
	cfg := base
	load := cfg.Load

	load.Matrices = splitList(a.Matrices)
	load.MatrixLabels = splitList(a.Labels)
	if n := strings.TrimSpace(a.Names); n != FromConfig(base).Names {
		load.NodeNames, load.NodeNameLabels, load.NodeNameIdx = nil, nil, 0
		if n != "" {
			load.NodeNames = []string{n}
		}
	}
	load.Linkage = strings.TrimSpace(a.Linkage)
	load.LinkageZeroBased = a.ZeroBased
	load.ThresFunc = a.Policy

	v, err := parseFloat(a.Threshold)
	if err != nil {
		return base, err
	}
	if load.ThresholdIdx >= len(load.ThresVals) {
		load.ThresholdIdx = 0
	}
	load.ThresVals = append([]float64(nil), load.ThresVals...)
	if len(load.ThresVals) == 0 {
		load.ThresVals = []float64{0}
	}
	load.ThresVals[load.ThresholdIdx] = v

	k, err := parseClusters(a.Clusters)
	if err != nil {
		return base, err
	}
	load.NumClusters = k

	cfg.Load = load.ResolvePaths(dir)
	cfg.Display.HighlightOn = !a.HighlightOff
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("threshold %q is not a number", s)
	}
	return v, nil
}

func parseClusters(s string) (int, error) {
	k, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || k < 1 {
		return 0, fmt.Errorf("cluster count %q must be a positive integer", s)
	}
	return k, nil
}

func validateMatrices(s string) error {
	if len(splitList(s)) == 0 {
		return errors.New("at least one matrix is required")
	}
	return nil
}

func validateFloat(s string) error {
	_, err := parseFloat(s)
	return err
}

func validateClusters(s string) error {
	_, err := parseClusters(s)
	return err
}

// NewForm builds the form bound to a. Non-terminal input switches huh to
// its accessible line mode.
func NewForm(a *Answers) *huh.Form {
	policies := make([]huh.Option[string], 0, len(threshold.Names()))
	for _, name := range threshold.Names() {
		policies = append(policies, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Matrix files").
				Description("Comma separated; text files or sqlite://db?table=t").
				Value(&a.Matrices).
				Validate(validateMatrices),
			huh.NewInput().
				Title("Matrix labels (optional)").
				Description("One per matrix, comma separated").
				Value(&a.Labels),
			huh.NewInput().
				Title("Node names file (optional)").
				Value(&a.Names),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Linkage file (optional)").
				Value(&a.Linkage),
			huh.NewConfirm().
				Title("Linkage ids are 0-based?").
				Description("Yes for scipy output, No for FSLNets/MATLAB").
				Value(&a.ZeroBased),
			huh.NewInput().
				Title("Number of clusters").
				Value(&a.Clusters).
				Validate(validateClusters),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Threshold policy").
				Options(policies...).
				Value(&a.Policy),
			huh.NewInput().
				Title("Initial threshold").
				Value(&a.Threshold).
				Validate(validateFloat),
			huh.NewConfirm().
				Title("Turn off selection highlighting?").
				Value(&a.HighlightOff),
		),
	).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}

// Run asks for the load arguments, starting from the config at path, and
// saves the result there. It returns the saved config.
func Run(path string) (config.Config, error) {
	base, err := config.LoadFrom(path)
	if err != nil {
		return base, err
	}
	answers := FromConfig(base)
	if err := NewForm(&answers).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return base, ErrAborted
		}
		return base, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return base, err
	}
	cfg, err := answers.Apply(base, wd)
	if err != nil {
		return base, err
	}
	if err := config.SaveTo(cfg, path); err != nil {
		return base, err
	}
	return cfg, nil
}
