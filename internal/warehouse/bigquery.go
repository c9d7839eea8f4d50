package warehouse

import (
	"bytes"
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/adaptive-ads/imdb-ingest/internal/table"
)

// BigQueryClient loads tables into BigQuery from in-memory Parquet payloads.
// Credentials come from application default credentials.
type BigQueryClient struct {
	client *bigquery.Client
}

// NewBigQuery creates a BigQuery-backed warehouse client for projectID.
func NewBigQuery(ctx context.Context, projectID string) (*BigQueryClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &BigQueryClient{client: client}, nil
}

// ReplaceTable serializes tbl to Parquet and submits a truncating load job,
// waiting for the job to finish. Column names must already be
// warehouse-safe.
func (c *BigQueryClient) ReplaceTable(ctx context.Context, tableID string, tbl *table.Table) error {
	project, dataset, name, err := ParseTableID(tableID)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if err := tbl.WriteParquetTo(buf); err != nil {
		return fmt.Errorf("serialize table %s: %w", tableID, err)
	}

	src := bigquery.NewReaderSource(buf)
	src.SourceFormat = bigquery.Parquet

	loader := c.client.DatasetInProject(project, dataset).Table(name).LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteTruncate

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("start load job for %s: %w", tableID, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for load job for %s: %w", tableID, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load job for %s failed: %w", tableID, err)
	}
	return nil
}

// Close releases the underlying client.
func (c *BigQueryClient) Close() error {
	return c.client.Close()
}
