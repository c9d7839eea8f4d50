// Package workflows provides the Temporal workflow definitions for genre
// ingestion.
package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/adaptive-ads/imdb-ingest/internal/activities"
	"github.com/adaptive-ads/imdb-ingest/internal/identifier"
)

// =============================================================================
// WORKFLOW NAMES
// =============================================================================

const (
	IngestCatalogWorkflowName = "ingestCatalogWorkflow"
	IngestGenreWorkflowName   = "ingestGenreWorkflow"
)

// =============================================================================
// ACTIVITY OPTIONS
// =============================================================================

// genreActivityOptions builds the options for one chain step. Retries match
// the original schedule definition: one retry after the first failure.
func genreActivityOptions(activityID string, timeout time.Duration) workflow.ActivityOptions {
	return workflow.ActivityOptions{
		ActivityID:          activityID,
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    2,
		},
	}
}

// =============================================================================
// WORKFLOW INPUTS/OUTPUTS
// =============================================================================

// GenreRunInput is the input for IngestGenreWorkflow.
type GenreRunInput struct {
	Genre       string `json:"genre"`
	BaseURL     string `json:"baseUrl"`
	TableID     string `json:"tableId,omitempty"`
	LoadEnabled bool   `json:"loadEnabled"`
}

// GenreRunResult is the outcome of one genre chain.
type GenreRunResult struct {
	Genre        string              `json:"genre"`
	Skipped      bool                `json:"skipped"`
	StatusCode   int                 `json:"statusCode,omitempty"`
	ArtifactPath string              `json:"artifactPath,omitempty"`
	RowsStaged   int64               `json:"rowsStaged"`
	RowsLoaded   int64               `json:"rowsLoaded"`
	Renames      []identifier.Rename `json:"renames,omitempty"`
}

// CatalogRunInput is the input for IngestCatalogWorkflow.
type CatalogRunInput struct {
	Genres      []string `json:"genres"`
	BaseURL     string   `json:"baseUrl"`
	ProjectID   string   `json:"projectId,omitempty"`
	Dataset     string   `json:"dataset,omitempty"`
	LoadEnabled bool     `json:"loadEnabled"`
}

// CatalogRunResult aggregates the per-genre outcomes of a run.
type CatalogRunResult struct {
	Results  []GenreRunResult  `json:"results"`
	Failures map[string]string `json:"failures,omitempty"`
}

// =============================================================================
// GENRE WORKFLOW
// =============================================================================

// IngestGenreWorkflow runs one genre's chain: availability check, then
// extract-transform, then (when enabled) warehouse load. An unavailable
// source short-circuits the chain as a skip, not a failure.
func IngestGenreWorkflow(ctx workflow.Context, input GenreRunInput) (*GenreRunResult, error) {
	if input.Genre == "" {
		return nil, temporal.NewApplicationError("genre is required", "INVALID_INPUT")
	}
	if input.LoadEnabled && input.TableID == "" {
		return nil, temporal.NewApplicationError("tableId required when load is enabled", "INVALID_INPUT")
	}
	logger := workflow.GetLogger(ctx)

	url := fmt.Sprintf("%s/%s.csv", strings.TrimSuffix(input.BaseURL, "/"), input.Genre)
	result := &GenreRunResult{Genre: input.Genre}

	// Step 1: availability gate
	checkCtx := workflow.WithActivityOptions(ctx,
		genreActivityOptions(fmt.Sprintf("check_%s_exists", input.Genre), time.Minute))
	var check activities.CheckResult
	err := workflow.ExecuteActivity(checkCtx, "CheckGenreExists", activities.CheckRequest{
		Genre: input.Genre,
		URL:   url,
	}).Get(ctx, &check)
	if err != nil {
		return nil, err
	}
	result.StatusCode = check.StatusCode
	if !check.Available {
		logger.Info("genre skipped, source unavailable", "genre", input.Genre, "status", check.StatusCode)
		result.Skipped = true
		return result, nil
	}

	// Step 2: extract-transform to staged parquet
	buildCtx := workflow.WithActivityOptions(ctx,
		genreActivityOptions(fmt.Sprintf("build_%s_parquet", input.Genre), 10*time.Minute))
	var build activities.BuildResult
	err = workflow.ExecuteActivity(buildCtx, "BuildGenreParquet", activities.BuildRequest{
		Genre: input.Genre,
		URL:   url,
	}).Get(ctx, &build)
	if err != nil {
		return nil, err
	}
	result.ArtifactPath = build.Path
	result.RowsStaged = build.Rows

	// Step 3: warehouse load, only when enabled at definition time
	if input.LoadEnabled {
		loadCtx := workflow.WithActivityOptions(ctx,
			genreActivityOptions(fmt.Sprintf("load_%s_parquet_to_bigquery", input.Genre), 30*time.Minute))
		var load activities.LoadResult
		err = workflow.ExecuteActivity(loadCtx, "LoadGenreParquet", activities.LoadRequest{
			Genre:   input.Genre,
			Path:    build.Path,
			TableID: input.TableID,
		}).Get(ctx, &load)
		if err != nil {
			return nil, err
		}
		result.RowsLoaded = load.Rows
		result.Renames = load.Renames
	}

	return result, nil
}

// =============================================================================
// CATALOG WORKFLOW
// =============================================================================

// IngestCatalogWorkflow fans out one child IngestGenreWorkflow per
// configured genre. Chains are independent: children run in parallel and one
// genre's failure is recorded without aborting its siblings.
func IngestCatalogWorkflow(ctx workflow.Context, input CatalogRunInput) (*CatalogRunResult, error) {
	if len(input.Genres) == 0 {
		return nil, temporal.NewApplicationError("at least one genre is required", "INVALID_INPUT")
	}
	logger := workflow.GetLogger(ctx)
	info := workflow.GetInfo(ctx)

	type pending struct {
		genre  string
		future workflow.ChildWorkflowFuture
	}

	futures := make([]pending, 0, len(input.Genres))
	for _, genre := range input.Genres {
		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID: fmt.Sprintf("%s/ingest-%s", info.WorkflowExecution.ID, genre),
		})
		futures = append(futures, pending{
			genre: genre,
			future: workflow.ExecuteChildWorkflow(childCtx, IngestGenreWorkflowName, GenreRunInput{
				Genre:       genre,
				BaseURL:     input.BaseURL,
				TableID:     tableID(input.ProjectID, input.Dataset, genre),
				LoadEnabled: input.LoadEnabled,
			}),
		})
	}

	out := &CatalogRunResult{}
	for _, p := range futures {
		var res GenreRunResult
		if err := p.future.Get(ctx, &res); err != nil {
			logger.Error("genre chain failed", "genre", p.genre, "error", err)
			if out.Failures == nil {
				out.Failures = make(map[string]string)
			}
			out.Failures[p.genre] = err.Error()
			continue
		}
		out.Results = append(out.Results, res)
	}

	logger.Info("catalog run complete",
		"genres", len(input.Genres), "succeeded", len(out.Results), "failed", len(out.Failures))
	return out, nil
}

func tableID(project, dataset, genre string) string {
	if project == "" || dataset == "" {
		return ""
	}
	return fmt.Sprintf("%s.%s.%s", project, dataset, genre)
}
