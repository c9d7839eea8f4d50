// Package main starts a catalog ingestion run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/adaptive-ads/imdb-ingest/internal/config"
	"github.com/adaptive-ads/imdb-ingest/internal/workflows"
)

func main() {
	wait := flag.Bool("wait", false, "block until the run finishes and print the result")
	flag.Parse()

	cfg := config.Load()
	genres, err := cfg.Genres()
	if err != nil {
		log.Fatalf("Failed to load genre list: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("imdb-ingest-%s", uuid.New().String()),
		TaskQueue: cfg.TaskQueue,
	}, workflows.IngestCatalogWorkflowName, workflows.CatalogRunInput{
		Genres:      genres,
		BaseURL:     cfg.BaseURL,
		ProjectID:   cfg.ProjectID,
		Dataset:     cfg.Dataset,
		LoadEnabled: cfg.EnableLoad,
	})
	if err != nil {
		log.Fatalf("Failed to start workflow: %v", err)
	}

	log.Printf("Started catalog run: workflowId=%s runId=%s genres=%d loadEnabled=%v",
		run.GetID(), run.GetRunID(), len(genres), cfg.EnableLoad)

	if !*wait {
		return
	}

	var result workflows.CatalogRunResult
	if err := run.Get(ctx, &result); err != nil {
		log.Fatalf("Catalog run failed: %v", err)
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
