package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/selhani/achats-analytics/internal/config"
	"github.com/selhani/achats-analytics/internal/infra/postgres"
	"github.com/selhani/achats-analytics/internal/logger"
	"github.com/selhani/achats-analytics/internal/report"
	"github.com/selhani/achats-analytics/internal/schedule"
)

// jsonRenderer emits the summary as JSON. The PDF renderer lives outside
// this repo and consumes the same figures.
type jsonRenderer struct{}

func (jsonRenderer) Render(ctx context.Context, s report.Summary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (env-only when empty)")
		once       = flag.Bool("once", false, "Run a single report cycle and exit")
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

	hour, min, err := parseAt(cfg.Report.At)
	if err != nil {
		log.Fatal().Err(err).Str("at", cfg.Report.At).Msg("Invalid report schedule")
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	store, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer store.Close()

	task := func(ctx context.Context) error {
		return report.Run(ctx, store, jsonRenderer{}, report.LogDeliverer{Log: log})
	}

	if *once {
		if err := task(ctx); err != nil {
			log.Fatal().Err(err).Msg("Report run failed")
		}
		return
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down report worker...")
		cancel()
	}()

	schedule.RunWeekly(ctx, log, time.Weekday(cfg.Report.Weekday), hour, min, task)
}

// parseAt splits "HH:MM" into its parts.
func parseAt(at string) (hour, min int, err error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", at)
	}
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &min); err != nil {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", at)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("out of range: %q", at)
	}
	return hour, min, nil
}
