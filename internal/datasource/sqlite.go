package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/netview/pkg/debug"
)

// SQLiteReader provides read access to matrix tables in a SQLite database.
// A matrix table has the columns (row INTEGER, col INTEGER, value REAL)
// with 0-based indices. NULL values are absent cells.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}
	if _, err := os.Stat(source.Path); err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Tables lists the tables in the database.
func (r *SQLiteReader) Tables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// MaxDim bounds the dimension of a matrix read from SQLite; larger tables
// are rejected before anything is allocated.
const MaxDim = 8192

// ReadMatrix reads table into a square dense matrix. The dimension is the
// largest row or column index plus one; cells without a row are zero and
// NULL values become NaN.
func (r *SQLiteReader) ReadMatrix(ctx context.Context, table string) (*mat.Dense, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: table name %q", ErrInvalidSource, table)
	}

	var minIdx, maxIdx sql.NullInt64
	query := fmt.Sprintf(`SELECT MIN(MIN("row"), MIN("col")), MAX(MAX("row"), MAX("col")) FROM %q`, table)
	if err := r.db.QueryRowContext(ctx, query).Scan(&minIdx, &maxIdx); err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", r.path, table, err)
	}
	if !minIdx.Valid || !maxIdx.Valid {
		return nil, fmt.Errorf("%w: %s.%s", ErrEmptyTable, r.path, table)
	}
	if minIdx.Int64 < 0 {
		return nil, fmt.Errorf("%w: %s.%s has negative index %d", ErrInvalidSource, r.path, table, minIdx.Int64)
	}
	if maxIdx.Int64 >= MaxDim {
		return nil, fmt.Errorf("%w: %s.%s index %d exceeds the %d node limit", ErrInvalidSource, r.path, table, maxIdx.Int64, MaxDim)
	}
	n := int(maxIdx.Int64) + 1

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT "row", "col", "value" FROM %q`, table))
	if err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", r.path, table, err)
	}
	defer rows.Close()

	d := mat.NewDense(n, n, nil)
	cells := 0
	for rows.Next() {
		var i, j int
		var v sql.NullFloat64
		if err := rows.Scan(&i, &j, &v); err != nil {
			return nil, fmt.Errorf("read %s.%s: %w", r.path, table, err)
		}
		if i < 0 || j < 0 {
			return nil, fmt.Errorf("%w: %s.%s has negative index (%d, %d)", ErrInvalidSource, r.path, table, i, j)
		}
		if v.Valid {
			d.Set(i, j, v.Float64)
		} else {
			d.Set(i, j, math.NaN())
		}
		cells++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", r.path, table, err)
	}
	debug.Log("sqlite %s.%s: %dx%d matrix from %d cells", r.path, table, n, n, cells)
	return d, nil
}

// WriteMatrix replaces table in the database at path with the cells of m.
// NaN cells are stored as NULL. The database is created when missing.
func WriteMatrix(ctx context.Context, path, table string, m mat.Matrix) error {
	if !tablePattern.MatchString(table) {
		return fmt.Errorf("%w: table name %q", ErrInvalidSource, table)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %q`, table),
		fmt.Sprintf(`CREATE TABLE %q ("row" INTEGER NOT NULL, "col" INTEGER NOT NULL, "value" REAL, PRIMARY KEY ("row", "col"))`, table),
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q ("row", "col", "value") VALUES (?, ?, ?)`, table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var v any
			if x := m.At(i, j); !math.IsNaN(x) {
				v = x
			}
			if _, err := stmt.ExecContext(ctx, i, j, v); err != nil {
				return fmt.Errorf("insert cell (%d, %d): %w", i, j, err)
			}
		}
	}

	return tx.Commit()
}
