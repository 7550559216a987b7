package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/selhani/achats-analytics/internal/api/handlers"
	"github.com/selhani/achats-analytics/internal/api/middleware"
	"github.com/selhani/achats-analytics/internal/config"
	"github.com/selhani/achats-analytics/internal/gcs"
	"github.com/selhani/achats-analytics/internal/infra/postgres"
	"github.com/selhani/achats-analytics/internal/jobs"
	"github.com/selhani/achats-analytics/internal/jobs/inmemory"
	"github.com/selhani/achats-analytics/internal/logger"
	"github.com/selhani/achats-analytics/internal/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (env-only when empty)")
		port       = flag.String("port", "", "HTTP server port (overrides config)")
	)
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
	if *port != "" {
		cfg.HTTP.Port = *port
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

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)
	fetcher := gcs.NewFetcher()

	// The API runs its own consumer so single-instance deployments need no
	// separate worker process.
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		ingestJob, ok := job.(*jobs.IngestExportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}
		opts := pipeline.Options{Latin1: ingestJob.Latin1}
		_, err := pipeline.IngestCSV(ctx, fetcher, ingestJob.SourceURI, opts, store)
		return err
	}
	if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	dashboardHandler := handlers.NewDashboardHandler(store, log)
	ingestHandler := handlers.NewIngestHandler(jobQueue, jobStore, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		dashboardHandler.GetDashboard(w, r)
	})
	mux.HandleFunc("/api/ingest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		ingestHandler.CreateIngest(w, r)
	})
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		ingestHandler.GetJob(w, r, jobID)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	handler := middleware.RequestID(middleware.CORS(middleware.Recovery(log)(middleware.Logger(log)(mux))))

	server := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: handler,
	}

	go func() {
		log.Info().Str("port", cfg.HTTP.Port).Msg("Dashboard API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	cancelWorker()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Queue shutdown failed")
	}
}
