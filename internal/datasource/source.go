// Package datasource resolves matrix source identifiers and reads matrices
// stored in SQLite tables.
//
// A source is either a plain file path or a URI of the form
// sqlite://<database path>?table=<table name>.
package datasource

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeFile is a plain text file
	SourceTypeFile SourceType = "file"
	// SourceTypeSQLite is a table in a SQLite database
	SourceTypeSQLite SourceType = "sqlite"
)

// Scheme prefixes SQLite source identifiers.
const Scheme = "sqlite://"

var (
	// ErrInvalidSource is returned for identifiers that cannot be parsed.
	ErrInvalidSource = errors.New("datasource: invalid source")

	// ErrEmptyTable is returned when a matrix table holds no cells.
	ErrEmptyTable = errors.New("datasource: empty matrix table")
)

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DataSource describes where one matrix or metadata array lives.
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the file or database path
	Path string `json:"path"`
	// Table is the SQLite table holding the matrix cells
	Table string `json:"table,omitempty"`
	// ModTime is the last modification time of Path, set by Stat
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes, set by Stat
	Size int64 `json:"size"`
}

// Parse turns a source identifier into a DataSource.
func Parse(id string) (DataSource, error) {
	rest, ok := strings.CutPrefix(id, Scheme)
	if !ok {
		if strings.TrimSpace(id) == "" {
			return DataSource{}, fmt.Errorf("%w: empty path", ErrInvalidSource)
		}
		return DataSource{Type: SourceTypeFile, Path: id}, nil
	}

	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return DataSource{}, fmt.Errorf("%w: %q has no database path", ErrInvalidSource, id)
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return DataSource{}, fmt.Errorf("%w: %q: %w", ErrInvalidSource, id, err)
	}
	table := values.Get("table")
	if !tablePattern.MatchString(table) {
		return DataSource{}, fmt.Errorf("%w: %q needs ?table=<identifier>", ErrInvalidSource, id)
	}
	return DataSource{Type: SourceTypeSQLite, Path: path, Table: table}, nil
}

// Stat fills ModTime and Size from the file system.
func (s *DataSource) Stat() error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return err
	}
	s.ModTime = info.ModTime()
	s.Size = info.Size()
	return nil
}

// String returns the identifier the source was parsed from.
func (s DataSource) String() string {
	if s.Type == SourceTypeSQLite {
		return fmt.Sprintf("%s%s?table=%s", Scheme, s.Path, s.Table)
	}
	return s.Path
}
