package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vanderheijden86/netview/pkg/matrix"
	"github.com/vanderheijden86/netview/pkg/network"
)

// ErrParse is wrapped by every format error, together with the line number.
var ErrParse = errors.New("loader: parse error")

// DefaultMaxBufferSize is the default buffer size for the scanner (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// scanLines calls fn with every non-blank, non-comment line of r, trimmed,
// together with its 1-based line number.
func scanLines(r io.Reader, fn func(lineNum int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), DefaultMaxBufferSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		b := scanner.Bytes()
		if lineNum == 1 {
			b = stripBOM(b)
		}
		line := strings.TrimSpace(string(b))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(lineNum, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream at line %d: %w", lineNum+1, err)
	}
	return nil
}

// fields splits a line on whitespace and commas.
func fields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func parseFloats(lineNum int, line string) ([]float64, error) {
	toks := fields(line)
	out := make([]float64, len(toks))
	for i, tok := range toks {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: value %d %q is not a number", ErrParse, lineNum, i+1, tok)
		}
		out[i] = v
	}
	return out, nil
}

// ParseMatrix reads a square matrix, one row per line. Values are separated
// by whitespace or commas; "nan" marks an absent cell.
func ParseMatrix(r io.Reader) (matrix.Matrix, error) {
	var rows [][]float64
	err := scanLines(r, func(lineNum int, line string) error {
		row, err := parseFloats(lineNum, line)
		if err != nil {
			return err
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return fmt.Errorf("%w: line %d has %d values, previous rows have %d", ErrParse, lineNum, len(row), len(rows[0]))
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m := matrix.FromRows(rows)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return m, nil
}

// ParseNodeData reads every number in r, in order.
func ParseNodeData(r io.Reader) ([]float64, error) {
	var out []float64
	err := scanLines(r, func(lineNum int, line string) error {
		vals, err := parseFloats(lineNum, line)
		if err != nil {
			return err
		}
		out = append(out, vals...)
		return nil
	})
	return out, err
}

// ParseNames reads one name per non-empty line.
func ParseNames(r io.Reader) ([]string, error) {
	var out []string
	err := scanLines(r, func(_ int, line string) error {
		out = append(out, line)
		return nil
	})
	return out, err
}

// ParseLinkage reads rows of "a b height [count]". Ids are 1-based unless
// zeroBased is set.
func ParseLinkage(r io.Reader, zeroBased bool) (*network.Linkage, error) {
	shift := 1
	if zeroBased {
		shift = 0
	}
	l := &network.Linkage{}
	err := scanLines(r, func(lineNum int, line string) error {
		vals, err := parseFloats(lineNum, line)
		if err != nil {
			return err
		}
		if len(vals) < 3 || len(vals) > 4 {
			return fmt.Errorf("%w: line %d: want \"a b height [count]\", got %d values", ErrParse, lineNum, len(vals))
		}
		a, b := vals[0], vals[1]
		if a != math.Trunc(a) || b != math.Trunc(b) {
			return fmt.Errorf("%w: line %d: cluster ids must be integers", ErrParse, lineNum)
		}
		l.Merges = append(l.Merges, network.Merge{A: int(a) - shift, B: int(b) - shift, Height: vals[2]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(l.Merges) == 0 {
		return nil, fmt.Errorf("%w: linkage has no rows", ErrParse)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return l, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
