package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vanderheijden86/netview/internal/datasource"
	"github.com/vanderheijden86/netview/pkg/network"
)

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// TableName turns a matrix label into a SQLite table identifier.
func TableName(label string) string {
	t := strings.Trim(nonIdent.ReplaceAllString(strings.ToLower(label), "_"), "_")
	if t == "" || (t[0] >= '0' && t[0] <= '9') {
		t = "m_" + t
	}
	return t
}

// ExportSQLite writes every filtered matrix of net into the database at
// path, one table per label, and returns the source identifiers that load
// them back. Absent cells are stored as NULL.
func ExportSQLite(ctx context.Context, path string, net *network.Network) ([]string, error) {
	if net == nil {
		return nil, ErrNoNetwork
	}
	used := make(map[string]bool)
	var ids []string
	for _, label := range net.Labels() {
		table := TableName(label)
		for base, n := table, 2; used[table]; n++ {
			table = fmt.Sprintf("%s_%d", base, n)
		}
		used[table] = true

		m, _ := net.Matrix(label)
		if err := datasource.WriteMatrix(ctx, path, table, m); err != nil {
			return nil, fmt.Errorf("export %q: %w", label, err)
		}
		ids = append(ids, datasource.DataSource{Type: datasource.SourceTypeSQLite, Path: path, Table: table}.String())
	}
	return ids, nil
}
