package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/selhani/achats-analytics/internal/config"
	"github.com/selhani/achats-analytics/internal/gcs"
	"github.com/selhani/achats-analytics/internal/infra/postgres"
	"github.com/selhani/achats-analytics/internal/jobs"
	"github.com/selhani/achats-analytics/internal/jobs/inmemory"
	"github.com/selhani/achats-analytics/internal/logger"
	"github.com/selhani/achats-analytics/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (env-only when empty)")
	flag.Parse()

	log := logger.New()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	store, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure schema")
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)
	fetcher := gcs.NewFetcher()

	log.Info().Msg("Starting ingestion worker")

	handler := func(ctx context.Context, job jobs.Job) error {
		ingestJob, ok := job.(*jobs.IngestExportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", ingestJob.JobID).
			Str("source_uri", ingestJob.SourceURI).
			Msg("Processing ingest job")

		opts := pipeline.Options{Latin1: ingestJob.Latin1}
		res, err := pipeline.IngestCSV(ctx, fetcher, ingestJob.SourceURI, opts, store)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", ingestJob.JobID).
				Msg("Ingestion failed")
			return err
		}

		log.Info().
			Str("job_id", ingestJob.JobID).
			Str("run_id", res.RunID).
			Int("clean_rows", res.CleanRows).
			Msg("Ingestion completed")
		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
}
