package network

import (
	"fmt"
	"strconv"
)

// NameSet is one source of display names, e.g. short names vs. full names.
type NameSet struct {
	Label  string
	Values []string
}

// Attribute is one named per-node numeric column, e.g. "Cluster number".
type Attribute struct {
	Label  string
	Values []float64
}

// NodeMetadata holds everything known about nodes besides their edges.
// Every slice is positionally aligned with the matrix rows.
type NodeMetadata struct {
	Names     []NameSet
	NameIndex int // which NameSet is primary
	Data      []Attribute
}

// Validate checks that every array has exactly n entries.
func (m NodeMetadata) Validate(n int) error {
	for _, ns := range m.Names {
		if len(ns.Values) != n {
			return fmt.Errorf("%w: name set %q has %d entries, want %d", ErrDimensionMismatch, ns.Label, len(ns.Values), n)
		}
	}
	for _, a := range m.Data {
		if len(a.Values) != n {
			return fmt.Errorf("%w: node data %q has %d entries, want %d", ErrDimensionMismatch, a.Label, len(a.Values), n)
		}
	}
	if len(m.Names) > 0 && (m.NameIndex < 0 || m.NameIndex >= len(m.Names)) {
		return fmt.Errorf("%w: name index %d outside [0, %d)", ErrDimensionMismatch, m.NameIndex, len(m.Names))
	}
	return nil
}

// Name returns the primary display name of node i, falling back to its
// 1-based number when no names were loaded.
func (m NodeMetadata) Name(i int) string {
	if m.NameIndex >= 0 && m.NameIndex < len(m.Names) {
		if vals := m.Names[m.NameIndex].Values; i >= 0 && i < len(vals) && vals[i] != "" {
			return vals[i]
		}
	}
	return strconv.Itoa(i + 1)
}

// Attribute returns the values of the node data column with the given label.
func (m NodeMetadata) Attribute(label string) ([]float64, bool) {
	for _, a := range m.Data {
		if a.Label == label {
			return append([]float64(nil), a.Values...), true
		}
	}
	return nil, false
}

// Clone returns a deep copy of m.
func (m NodeMetadata) Clone() NodeMetadata {
	out := NodeMetadata{NameIndex: m.NameIndex}
	for _, ns := range m.Names {
		out.Names = append(out.Names, NameSet{Label: ns.Label, Values: append([]string(nil), ns.Values...)})
	}
	for _, a := range m.Data {
		out.Data = append(out.Data, Attribute{Label: a.Label, Values: append([]float64(nil), a.Values...)})
	}
	return out
}
