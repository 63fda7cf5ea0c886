package config

// Display configures where and how big the network views are drawn.
type Display struct {
	NetworkDiv    string `yaml:"network_div" validate:"required"`
	SubnetDiv     string `yaml:"subnet_div" validate:"required"`
	ControlDiv    string `yaml:"control_div" validate:"required"`
	NetworkWidth  int    `yaml:"network_width" validate:"gt=0"`
	NetworkHeight int    `yaml:"network_height" validate:"gt=0"`
	SubnetWidth   int    `yaml:"subnet_width" validate:"gt=0"`
	SubnetHeight  int    `yaml:"subnet_height" validate:"gt=0"`
	HighlightOn   bool   `yaml:"highlight_on"`
}

// minCanvas keeps FitTerminal usable on tiny windows.
const minCanvas = 100

// DefaultDisplay returns the stock container ids and 600x600 canvases with
// highlighting on.
func DefaultDisplay() Display {
	return Display{
		NetworkDiv:    "#fullNetwork",
		SubnetDiv:     "#subNetwork",
		ControlDiv:    "#networkCtrl",
		NetworkWidth:  600,
		NetworkHeight: 600,
		SubnetWidth:   600,
		SubnetHeight:  600,
		HighlightOn:   true,
	}
}

// Validate checks that every container is named and every canvas has a size.
func (d Display) Validate() error {
	if err := validate.Struct(d); err != nil {
		return structError(err)
	}
	return nil
}

// FitTerminal returns a copy of d with square canvases sized for a window of
// w x h pixels: two canvases side by side next to a 200 pixel control column,
// leaving 50 pixels for the status line.
func (d Display) FitTerminal(w, h int) Display {
	sz := min((w-200)/2, h-50)
	if sz < minCanvas {
		sz = minCanvas
	}
	d.NetworkWidth, d.NetworkHeight = sz, sz
	d.SubnetWidth, d.SubnetHeight = sz, sz
	return d
}
