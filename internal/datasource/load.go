package datasource

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/netview/pkg/matrix"
)

// LoadMatrix reads a SQLite matrix source.
func LoadMatrix(ctx context.Context, source DataSource) (matrix.Matrix, error) {
	reader, err := NewSQLiteReader(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
	}
	defer reader.Close()

	d, err := reader.ReadMatrix(ctx, source.Table)
	if err != nil {
		return nil, err
	}
	return matrix.FromDense(d)
}
