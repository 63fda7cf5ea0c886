package loader_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/netview/pkg/loader"
	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/network"
	"github.com/vanderheijden86/netview/pkg/testutil"
)

func TestParseMatrix(t *testing.T) {
	input := "\xEF\xBB\xBF# partial correlation\n0 5 1\n\n5,0,9\n1\t9  0\n"
	m, err := loader.ParseMatrix(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseMatrix: %v", err)
	}
	testutil.AssertMatrixEqual(t, testutil.Example(), m)
}

func TestParseMatrix_NaN(t *testing.T) {
	m, err := loader.ParseMatrix(strings.NewReader("0 nan\nNaN 0\n"))
	if err != nil {
		t.Fatalf("ParseMatrix: %v", err)
	}
	if !matrix.IsAbsent(m[0][1]) || !matrix.IsAbsent(m[1][0]) {
		t.Errorf("nan cells should be absent: %v", m)
	}
}

func TestParseMatrix_Errors(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"empty", "", "shape"},
		{"comments only", "# nothing\n", "shape"},
		{"not a number", "0 x\n1 0\n", "line 1"},
		{"ragged", "0 1\n1 0 2\n", "line 2"},
		{"not square", "0 1 2\n1 0 2\n", "shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.ParseMatrix(strings.NewReader(tt.input))
			if !errors.Is(err, loader.ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestParseNodeData(t *testing.T) {
	vals, err := loader.ParseNodeData(strings.NewReader("1 1\n2\n# trailing\n3,3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(vals, []float64{1, 1, 2, 3, 3}) {
		t.Errorf("values = %v", vals)
	}
	if _, err := loader.ParseNodeData(strings.NewReader("1 two\n")); !errors.Is(err, loader.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestParseNames(t *testing.T) {
	names, err := loader.ParseNames(strings.NewReader("Left V1\n\n  Right V1  \nMotor\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"Left V1", "Right V1", "Motor"}) {
		t.Errorf("names = %v", names)
	}
}

func TestParseLinkage(t *testing.T) {
	oneBased := "1 4 0.2 2\n2 3 0.4 2\n5 6 0.9 4\n"
	l, err := loader.ParseLinkage(strings.NewReader(oneBased), false)
	if err != nil {
		t.Fatalf("ParseLinkage: %v", err)
	}
	want := []network.Merge{{A: 0, B: 3, Height: 0.2}, {A: 1, B: 2, Height: 0.4}, {A: 4, B: 5, Height: 0.9}}
	if !reflect.DeepEqual(l.Merges, want) {
		t.Errorf("merges = %v, want %v", l.Merges, want)
	}

	zeroBased := "0 3 0.2\n1 2 0.4\n4 5 0.9\n"
	l, err = loader.ParseLinkage(strings.NewReader(zeroBased), true)
	if err != nil {
		t.Fatalf("ParseLinkage zero-based: %v", err)
	}
	if !reflect.DeepEqual(l.Merges, want) {
		t.Errorf("zero-based merges = %v", l.Merges)
	}
}

func TestParseLinkage_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":        "",
		"short row":    "1 2\n",
		"long row":     "1 2 0.5 2 9\n",
		"fractional":   "1.5 2 0.5\n",
		"bad id":       "1 7 0.5\n",
		"zero as base": "0 1 0.5\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := loader.ParseLinkage(strings.NewReader(input), false); !errors.Is(err, loader.ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

// FuzzParseMatrix checks the matrix parser never panics and only returns
// square matrices.
func FuzzParseMatrix(f *testing.F) {
	seeds := []string{
		"0 5 1\n5 0 9\n1 9 0\n",
		"",
		"#\n",
		"1,2\n3,4\n",
		"nan inf\n-inf 0\n",
		"1 2\n3\n",
		"\xEF\xBB\xBF1\n",
		strings.Repeat("1 ", 100),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		m, err := loader.ParseMatrix(strings.NewReader(input))
		if err != nil {
			return
		}
		n := m.Dim()
		for _, row := range m {
			if len(row) != n {
				t.Fatalf("non-square result %v", m)
			}
		}
	})
}
