// Package config loads application settings from a YAML file with
// environment overrides for the secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/selhani/achats-analytics/internal/infra/postgres"
)

// GCSConfig locates the bucket raw exports are dropped in.
type GCSConfig struct {
	Bucket string `yaml:"bucket"`
}

// BigQueryConfig locates the warehouse dataset. Empty project disables the
// warehouse export.
type BigQueryConfig struct {
	Project string `yaml:"project"`
	Dataset string `yaml:"dataset"`
}

// ReportConfig drives the weekly report schedule. Weekday is 0 (Sunday)
// through 6; At is "HH:MM".
type ReportConfig struct {
	Weekday   int    `yaml:"weekday"`
	At        string `yaml:"at"`
	Recipient string `yaml:"recipient"`
}

// HTTPConfig configures the dashboard API server.
type HTTPConfig struct {
	Port string `yaml:"port"`
}

// AppConfig is the root configuration document.
type AppConfig struct {
	Postgres postgres.Config `yaml:"postgres"`
	GCS      GCSConfig       `yaml:"gcs"`
	BigQuery BigQueryConfig  `yaml:"bigquery"`
	Report   ReportConfig    `yaml:"report"`
	HTTP     HTTPConfig      `yaml:"http"`
}

// Load reads the YAML file and applies environment overrides.
func Load(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	cfg := &AppConfig{}
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a config built from environment variables only, for
// deployments without a config file.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func (c *AppConfig) applyEnv() {
	c.Postgres.Host = getEnv("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Port = getEnv("POSTGRES_PORT", c.Postgres.Port)
	c.Postgres.User = getEnv("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.DBName = getEnv("POSTGRES_NAME", c.Postgres.DBName)
	c.GCS.Bucket = getEnv("GCS_BUCKET", c.GCS.Bucket)
	c.BigQuery.Project = getEnv("BIGQUERY_PROJECT", c.BigQuery.Project)
	c.BigQuery.Dataset = getEnv("BIGQUERY_DATASET", c.BigQuery.Dataset)
}

func (c *AppConfig) applyDefaults() {
	if c.Postgres.Host == "" {
		c.Postgres.Host = "localhost"
	}
	if c.Postgres.Port == "" {
		c.Postgres.Port = "5432"
	}
	if c.Postgres.User == "" {
		c.Postgres.User = "postgres"
	}
	if c.Postgres.DBName == "" {
		c.Postgres.DBName = "achats"
	}
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8080"
	}
	if c.Report.Weekday == 0 && c.Report.At == "" {
		c.Report.Weekday = 1 // Monday
		c.Report.At = "09:00"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
