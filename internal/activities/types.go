// Package activities implements the Temporal activities for genre ingestion.
package activities

import "github.com/adaptive-ads/imdb-ingest/internal/identifier"

// CheckRequest asks whether the CSV for a genre is published upstream.
type CheckRequest struct {
	Genre string `json:"genre"`
	URL   string `json:"url"`
}

// CheckResult reports availability. Unavailability is a value, not an
// error: the activity never fails on a missing or unreachable resource.
type CheckResult struct {
	Available  bool `json:"available"`
	StatusCode int  `json:"statusCode,omitempty"`
}

// BuildRequest drives the extract-transform step for one genre.
type BuildRequest struct {
	Genre string `json:"genre"`
	URL   string `json:"url"`
}

// BuildResult describes the staged artifact.
type BuildResult struct {
	Path    string   `json:"path"`
	Rows    int64    `json:"rows"`
	Columns []string `json:"columns,omitempty"`
}

// LoadRequest drives the warehouse load for one staged artifact.
type LoadRequest struct {
	Genre   string `json:"genre"`
	Path    string `json:"path"`
	TableID string `json:"tableId"`
}

// LoadResult reports the completed load, including any column renames the
// sanitizer applied (informational only).
type LoadResult struct {
	Rows    int64               `json:"rows"`
	Renames []identifier.Rename `json:"renames,omitempty"`
}
