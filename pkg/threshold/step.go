package threshold

import "math"

// Stepper is implemented by policies whose first control value has its own
// natural increment or domain. The control panel asks for it when the user
// nudges that value.
type Stepper interface {
	// Step is the increment for control[0] when the largest |w| is scale.
	Step(scale float64) float64
	// Snap maps v onto the nearest value Apply accepts.
	Snap(v float64) float64
}

// ScaleStep splits [0, scale] into 20 steps, rounded down to one
// significant digit. A zero or unusable scale gives 0.1.
func ScaleStep(scale float64) float64 {
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return 0.1
	}
	raw := scale / 20
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	return math.Floor(raw/mag) * mag
}

// StepFor returns p's increment for control[0], or ScaleStep(scale) when p
// does not implement Stepper.
func StepFor(p Policy, scale float64) float64 {
	if s, ok := p.(Stepper); ok {
		return s.Step(scale)
	}
	return ScaleStep(scale)
}

// SnapFor returns v snapped by p, or v unchanged when p does not implement
// Stepper.
func SnapFor(p Policy, v float64) float64 {
	if s, ok := p.(Stepper); ok {
		return s.Snap(v)
	}
	return v
}

func (Magnitude) Step(scale float64) float64 { return ScaleStep(scale) }

// Snap clamps negative cutoffs to 0; they keep every cell anyway.
func (Magnitude) Snap(v float64) float64 { return math.Max(v, 0) }

func (Signed) Step(scale float64) float64 { return ScaleStep(scale) }

// Snap works on the magnitude; the sign comes from Negative.
func (Signed) Snap(v float64) float64 { return math.Max(v, 0) }

// Step moves five percentage points regardless of the weights.
func (Percentile) Step(float64) float64 { return 5 }

func (Percentile) Snap(v float64) float64 { return math.Min(math.Max(v, 0), 100) }

// Step moves k by one.
func (TopK) Step(float64) float64 { return 1 }

// Snap rounds to a non-negative integer.
func (TopK) Snap(v float64) float64 { return math.Max(math.Round(v), 0) }
