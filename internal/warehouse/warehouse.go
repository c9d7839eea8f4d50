// Package warehouse submits tables to an analytical warehouse with
// full-replace semantics.
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/adaptive-ads/imdb-ingest/internal/table"
)

// Client is the narrow warehouse surface the load step depends on.
type Client interface {
	// ReplaceTable writes tbl to the table named by tableID
	// ("{project}.{dataset}.{table}"), discarding any prior contents, and
	// blocks until the warehouse confirms completion. Callers must not run
	// two replaces against the same tableID concurrently; last write wins
	// and is undefined under races.
	ReplaceTable(ctx context.Context, tableID string, tbl *table.Table) error

	// Close releases warehouse resources.
	Close() error
}

// ParseTableID splits a fully qualified "{project}.{dataset}.{table}" name.
func ParseTableID(tableID string) (project, dataset, name string, err error) {
	parts := strings.Split(tableID, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("invalid table id %q: want project.dataset.table", tableID)
	}
	return parts[0], parts[1], parts[2], nil
}
