package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/selhani/achats-analytics/internal/config"
	"github.com/selhani/achats-analytics/internal/gcs"
	infraBQ "github.com/selhani/achats-analytics/internal/infra/bigquery"
	"github.com/selhani/achats-analytics/internal/infra/postgres"
	"github.com/selhani/achats-analytics/internal/logger"
	"github.com/selhani/achats-analytics/internal/pipeline"
)

func main() {
	var (
		input      = flag.String("input", "", "Purchase export: local path or gs:// URI")
		configPath = flag.String("config", "", "YAML config file (env-only when empty)")
		outDir     = flag.String("out-dir", "", "Also write Achats/Fournisseurs/Produits CSVs here")
		latin1     = flag.Bool("latin1", false, "Decode the export as Windows-1252")
		warehouse  = flag.Bool("warehouse", false, "Also export the tables to BigQuery")
	)
	flag.Parse()

	log := logger.New()
	if *input == "" {
		log.Fatal().Msg("-input is required")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
	}

	ctx := logger.WithContext(context.Background(), log)

	store, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure schema")
	}

	sinks := []pipeline.Sink{store}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", *outDir).Msg("Failed to create output directory")
		}
		sinks = append(sinks, pipeline.CSVSink{Dir: *outDir})
	}
	if *warehouse {
		if cfg.BigQuery.Project == "" {
			log.Fatal().Msg("-warehouse requires bigquery.project in config")
		}
		exporter, err := infraBQ.NewExporter(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create warehouse exporter")
		}
		defer exporter.Close()
		sinks = append(sinks, exporter)
	}

	opts := pipeline.Options{Latin1: *latin1}

	var res *pipeline.Result
	if strings.HasPrefix(*input, "gs://") {
		res, err = pipeline.IngestCSV(ctx, gcs.NewFetcher(), *input, opts, sinks...)
	} else {
		f, openErr := os.Open(*input)
		if openErr != nil {
			log.Fatal().Err(openErr).Str("input", *input).Msg("Failed to open export")
		}
		defer f.Close()
		res, err = pipeline.IngestReader(ctx, f, opts, sinks...)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	log.Info().
		Str("run_id", res.RunID).
		Int("source_rows", res.SourceRows).
		Int("clean_rows", res.CleanRows).
		Msg("Ingestion completed")
}
