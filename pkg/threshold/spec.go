package threshold

import (
	"fmt"
	"math"
)

// Spec is the threshold control state: an ordered vector of control values,
// one label per value, and the index of the dimension the user is currently
// adjusting. Spec is a value type; the With* methods return modified copies.
type Spec struct {
	Values []float64
	Labels []string
	Index  int
}

// NewSpec builds a Spec. Missing labels are filled with "Threshold N".
func NewSpec(values []float64, labels []string, index int) Spec {
	s := Spec{
		Values: append([]float64(nil), values...),
		Labels: make([]string, len(values)),
		Index:  index,
	}
	for i := range s.Labels {
		if i < len(labels) && labels[i] != "" {
			s.Labels[i] = labels[i]
		} else {
			s.Labels[i] = fmt.Sprintf("Threshold %d", i+1)
		}
	}
	return s
}

// Validate checks the control vector can be handed to a Policy.
func (s Spec) Validate() error {
	if len(s.Values) == 0 {
		return fmt.Errorf("%w: no control values", ErrInvalidControl)
	}
	if len(s.Labels) != 0 && len(s.Labels) != len(s.Values) {
		return fmt.Errorf("%w: %d labels for %d values", ErrInvalidControl, len(s.Labels), len(s.Values))
	}
	if s.Index < 0 || s.Index >= len(s.Values) {
		return fmt.Errorf("%w: index %d outside [0, %d)", ErrInvalidControl, s.Index, len(s.Values))
	}
	for i, v := range s.Values {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: value %d is NaN", ErrInvalidControl, i)
		}
	}
	return nil
}

// Active returns the value of the active dimension, or NaN when the Spec is
// invalid.
func (s Spec) Active() float64 {
	if s.Index < 0 || s.Index >= len(s.Values) {
		return math.NaN()
	}
	return s.Values[s.Index]
}

// Label returns the label of dimension i, or the generated "Threshold N"
// when the Spec carries none for it.
func (s Spec) Label(i int) string {
	if i >= 0 && i < len(s.Labels) && s.Labels[i] != "" {
		return s.Labels[i]
	}
	return fmt.Sprintf("Threshold %d", i+1)
}

// ActiveLabel returns the label of the active dimension.
func (s Spec) ActiveLabel() string {
	if s.Index < 0 || s.Index >= len(s.Values) {
		return ""
	}
	return s.Label(s.Index)
}

// WithValue returns a copy of s with dimension idx set to v.
func (s Spec) WithValue(idx int, v float64) (Spec, error) {
	if idx < 0 || idx >= len(s.Values) {
		return s, fmt.Errorf("%w: index %d outside [0, %d)", ErrInvalidControl, idx, len(s.Values))
	}
	out := s.Clone()
	out.Values[idx] = v
	return out, out.Validate()
}

// WithIndex returns a copy of s with a different active dimension.
func (s Spec) WithIndex(idx int) (Spec, error) {
	out := s.Clone()
	out.Index = idx
	return out, out.Validate()
}

// Clone returns a deep copy of s.
func (s Spec) Clone() Spec {
	return Spec{
		Values: append([]float64(nil), s.Values...),
		Labels: append([]string(nil), s.Labels...),
		Index:  s.Index,
	}
}
