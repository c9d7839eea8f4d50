// Package main runs the genre ingestion Temporal worker.
package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/adaptive-ads/imdb-ingest/internal/activities"
	"github.com/adaptive-ads/imdb-ingest/internal/config"
	"github.com/adaptive-ads/imdb-ingest/internal/objectstore"
	"github.com/adaptive-ads/imdb-ingest/internal/source"
	"github.com/adaptive-ads/imdb-ingest/internal/staging"
	"github.com/adaptive-ads/imdb-ingest/internal/warehouse"
	"github.com/adaptive-ads/imdb-ingest/internal/workflows"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	log.Printf("Starting ingest worker: address=%s namespace=%s queue=%s",
		cfg.TemporalAddress, cfg.TemporalNamespace, cfg.TaskQueue)

	stager := staging.NewStager(cfg.StagingRoot)
	if cfg.MirrorEndpoint != "" {
		store, err := objectstore.New(&objectstore.Config{
			EndpointURL:     cfg.MirrorEndpoint,
			AccessKeyID:     cfg.MirrorAccessKey,
			SecretAccessKey: cfg.MirrorSecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to create staging mirror: %v", err)
		}
		stager = stager.WithMirror(store, cfg.MirrorBucket)
		log.Printf("Staging mirror enabled: endpoint=%s bucket=%s", cfg.MirrorEndpoint, cfg.MirrorBucket)
	}

	var wh warehouse.Client
	if cfg.EnableLoad {
		var err error
		switch cfg.WarehouseDriver {
		case "postgres":
			wh, err = warehouse.NewPostgres(ctx, cfg.PostgresDSN)
		default:
			wh, err = warehouse.NewBigQuery(ctx, cfg.ProjectID)
		}
		if err != nil {
			log.Fatalf("Failed to create warehouse client: %v", err)
		}
		defer wh.Close()
		log.Printf("Warehouse load enabled: driver=%s dataset=%s", cfg.WarehouseDriver, cfg.Dataset)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.MaxConcurrentActivities,
	})

	w.RegisterWorkflowWithOptions(workflows.IngestCatalogWorkflow,
		workflow.RegisterOptions{Name: workflows.IngestCatalogWorkflowName})
	w.RegisterWorkflowWithOptions(workflows.IngestGenreWorkflow,
		workflow.RegisterOptions{Name: workflows.IngestGenreWorkflowName})

	acts := activities.New(source.NewClient(source.DefaultClientConfig()), stager, wh)
	w.RegisterActivity(acts.CheckGenreExists)
	w.RegisterActivity(acts.BuildGenreParquet)
	w.RegisterActivity(acts.LoadGenreParquet)

	log.Printf("Registered 2 workflows and 3 activities")

	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
