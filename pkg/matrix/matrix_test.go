package matrix

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Matrix
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty", Matrix{}, true},
		{"ragged", Matrix{{1, 2}, {3}}, true},
		{"wide", Matrix{{1, 2, 3}, {4, 5, 6}}, true},
		{"single", Matrix{{7}}, false},
		{"square", Matrix{{0, 1}, {1, 0}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrShapeMismatch) {
					t.Fatalf("expected ErrShapeMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewIsZeroedAndIndependentRows(t *testing.T) {
	m := New(3)
	if m.Dim() != 3 {
		t.Fatalf("expected dim 3, got %d", m.Dim())
	}
	m[0] = append(m[0], 99)
	if len(m[1]) != 3 {
		t.Errorf("appending to row 0 must not grow row 1, got len %d", len(m[1]))
	}
	for i := range m {
		for j := range m[i][:3] {
			if m[i][j] != 0 {
				t.Errorf("cell (%d,%d) = %v, want 0", i, j, m[i][j])
			}
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	src := Matrix{{0, 1}, {1, 0}}
	cp := src.Clone()
	cp[0][1] = 42
	if src[0][1] != 1 {
		t.Errorf("clone shares storage with source")
	}
	if Matrix(nil).Clone() != nil {
		t.Errorf("clone of nil should be nil")
	}
}

func TestAbsentSentinel(t *testing.T) {
	if !IsAbsent(Absent()) {
		t.Fatal("Absent() must satisfy IsAbsent")
	}
	if IsAbsent(0) || IsAbsent(math.Inf(1)) {
		t.Error("finite values and Inf are not absent")
	}
}

func TestIsSymmetric(t *testing.T) {
	nan := Absent()
	if !(Matrix{{0, 2}, {2, 0}}).IsSymmetric(0) {
		t.Error("expected symmetric")
	}
	if (Matrix{{0, 2}, {2.5, 0}}).IsSymmetric(0.1) {
		t.Error("expected asymmetric")
	}
	if !(Matrix{{0, nan}, {nan, 0}}).IsSymmetric(0) {
		t.Error("matching absent cells are symmetric")
	}
	if (Matrix{{0, nan}, {1, 0}}).IsSymmetric(0) {
		t.Error("absent vs present is asymmetric")
	}
}

func TestCountPresentAndMaxAbs(t *testing.T) {
	nan := Absent()
	m := Matrix{{100, -7, nan}, {-7, 0, 3}, {nan, 3, 0}}
	if got := m.CountPresent(); got != 7 {
		t.Errorf("CountPresent = %d, want 7", got)
	}
	if got := m.MaxAbs(); got != 7 {
		t.Errorf("MaxAbs = %v, want 7 (diagonal ignored)", got)
	}
}

func TestFromDense(t *testing.T) {
	d := mat.NewDense(2, 2, []float64{0, 5, math.NaN(), 0})
	m, err := FromDense(d)
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}
	if m[0][1] != 5 || !IsAbsent(m[1][0]) {
		t.Errorf("unexpected copy %v", m)
	}
	if _, err := FromDense(mat.NewDense(2, 3, nil)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for 2x3, got %v", err)
	}
}

func TestMatrixAsGonum(t *testing.T) {
	nan := Absent()
	var g mat.Matrix = Matrix{{0, 1}, {nan, 0}}
	if r, c := g.Dims(); r != 2 || c != 2 {
		t.Errorf("Dims = %d, %d", r, c)
	}
	if g.T().At(0, 1) != g.At(1, 0) || !math.IsNaN(g.T().At(0, 1)) {
		t.Error("transpose should swap (0, 1) and (1, 0)")
	}
	if r, c := (Matrix{}).Dims(); r != 0 || c != 0 {
		t.Errorf("empty Dims = %d, %d", r, c)
	}
}
