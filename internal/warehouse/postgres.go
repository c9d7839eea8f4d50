package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adaptive-ads/imdb-ingest/internal/table"
)

// PostgresClient is a warehouse backend for local development, where no
// BigQuery project is available. The dataset segment of a table id maps to
// a schema; the project segment is ignored.
type PostgresClient struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database at dsn.
func NewPostgres(ctx context.Context, dsn string) (*PostgresClient, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &PostgresClient{pool: pool}, nil
}

// ReplaceTable recreates {dataset}.{table} inside a single transaction and
// bulk-copies the rows in, so readers never observe a half-replaced table.
func (c *PostgresClient) ReplaceTable(ctx context.Context, tableID string, tbl *table.Table) error {
	_, dataset, name, err := ParseTableID(tableID)
	if err != nil {
		return err
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{dataset, name}
	if _, err := tx.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{dataset}.Sanitize()); err != nil {
		return fmt.Errorf("ensure schema %s: %w", dataset, err)
	}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("drop table %s: %w", tableID, err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(ident, tbl.Columns)); err != nil {
		return fmt.Errorf("create table %s: %w", tableID, err)
	}

	if len(tbl.Rows) > 0 {
		if _, err := tx.CopyFrom(ctx, ident, tbl.ColumnNames(), pgx.CopyFromRows(tbl.Rows)); err != nil {
			return fmt.Errorf("copy rows into %s: %w", tableID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace of %s: %w", tableID, err)
	}
	return nil
}

// Close releases the connection pool.
func (c *PostgresClient) Close() error {
	c.pool.Close()
	return nil
}

func createTableSQL(ident pgx.Identifier, columns []table.Column) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, pgx.Identifier{col.Name}.Sanitize()+" "+sqlType(col.Type))
	}
	return "CREATE TABLE " + ident.Sanitize() + " (" + strings.Join(defs, ", ") + ")"
}

func sqlType(typ table.Type) string {
	switch typ {
	case table.TypeInt64:
		return "bigint"
	case table.TypeDouble:
		return "double precision"
	case table.TypeBool:
		return "boolean"
	default:
		return "text"
	}
}
