// Package config provides centralized configuration for the cleaning
// pipeline. Settings come from environment variables with sensible defaults
// and are validated on startup so a misconfigured run fails fast.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/cleaner"
)

// Config holds all pipeline configuration.
type Config struct {
	Clean     CleanConfig
	Logging   LoggingConfig
	Storage   StorageConfig
	Warehouse WarehouseConfig
	Worker    WorkerConfig
}

// CleanConfig holds settings for the batch transform itself.
type CleanConfig struct {
	// InputPath is the raw transactions CSV, a local path or a gs:// URI.
	InputPath string `env:"CLEAN_INPUT"`

	// LookupPath is the state-code lookup CSV. Empty means the built-in
	// US state table.
	LookupPath string `env:"CLEAN_LOOKUP"`

	// OutputPath is where the cleaned CSV is written (default: cleaned.csv)
	OutputPath string `env:"CLEAN_OUTPUT" default:"cleaned.csv"`

	// ImputePolicy selects how missing non-quantity amounts are filled:
	// median, zero, or drop (default: median)
	ImputePolicy string `env:"CLEAN_IMPUTE_POLICY" default:"median"`

	// OutlierFactor is the IQR multiplier for the sales outlier bounds
	// (default: 1.5)
	OutlierFactor float64 `env:"CLEAN_OUTLIER_FACTOR" default:"1.5"`

	// RejectedPath overrides where rejected rows are written. Empty derives
	// "<output> - rejected.csv" next to the output file.
	RejectedPath string `env:"CLEAN_REJECTED"`

	// RunLogPath is the local SQLite run-history database
	// (default: cleaning_runs.db)
	RunLogPath string `env:"CLEAN_RUNLOG" default:"cleaning_runs.db"`

	// Timeout bounds a single cleaning run (default: 5m)
	Timeout time.Duration `env:"CLEAN_TIMEOUT" default:"5m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: console or json (default: console)
	Format string `env:"LOG_FORMAT" default:"console"`
}

// StorageConfig holds GCS settings for remote inputs and artifact uploads.
type StorageConfig struct {
	// Bucket is the destination for `cli upload`. Optional.
	Bucket string `env:"GCS_BUCKET"`
}

// WarehouseConfig holds BigQuery sink settings. All optional: a run without
// them never touches the network.
type WarehouseConfig struct {
	// ProjectID is the GCP project hosting the warehouse.
	ProjectID string `env:"BQ_PROJECT"`

	// DatasetID is the BigQuery dataset (default: ecommerce)
	DatasetID string `env:"BQ_DATASET" default:"ecommerce"`
}

// WorkerConfig holds job-queue settings for cmd/worker.
type WorkerConfig struct {
	// QueueSize is the job channel buffer (default: 100)
	QueueSize int `env:"WORKER_QUEUE_SIZE" default:"100"`

	// Concurrency is the number of concurrent cleaning workers (default: 4)
	Concurrency int `env:"WORKER_CONCURRENCY" default:"4"`

	// MaxRetries is how often a failed job is retried (default: 3)
	MaxRetries int `env:"WORKER_MAX_RETRIES" default:"3"`
}

// ImputePolicy values accepted by CleanConfig.
const (
	ImputeMedian = cleaner.ImputeMedian
	ImputeZero   = cleaner.ImputeZero
	ImputeDrop   = cleaner.ImputeDrop
)

// Validate checks that the configuration is coherent. It returns one error
// describing every failure found.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Clean.ImputePolicy) {
	case ImputeMedian, ImputeZero, ImputeDrop:
	default:
		errs = append(errs, fmt.Sprintf("CLEAN_IMPUTE_POLICY (%q) must be one of: median, zero, drop", c.Clean.ImputePolicy))
	}

	if c.Clean.OutlierFactor <= 0 {
		errs = append(errs, "CLEAN_OUTLIER_FACTOR must be positive")
	}
	if c.Clean.Timeout <= 0 {
		errs = append(errs, "CLEAN_TIMEOUT must be positive")
	}

	if c.Worker.QueueSize <= 0 {
		errs = append(errs, "WORKER_QUEUE_SIZE must be positive")
	}
	if c.Worker.Concurrency <= 0 {
		errs = append(errs, "WORKER_CONCURRENCY must be positive")
	}
	if c.Worker.MaxRetries < 0 {
		errs = append(errs, "WORKER_MAX_RETRIES must be non-negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: console, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a loggable representation of the config.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Clean: {Input: %q, Output: %q, ImputePolicy: %q, OutlierFactor: %g}, ",
		c.Clean.InputPath, c.Clean.OutputPath, c.Clean.ImputePolicy, c.Clean.OutlierFactor))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ", c.Logging.Level, c.Logging.Format))
	b.WriteString(fmt.Sprintf("Storage: {Bucket: %q}, ", c.Storage.Bucket))
	b.WriteString(fmt.Sprintf("Warehouse: {Project: %q, Dataset: %q}, ", c.Warehouse.ProjectID, c.Warehouse.DatasetID))
	b.WriteString(fmt.Sprintf("Worker: {QueueSize: %d, Concurrency: %d}", c.Worker.QueueSize, c.Worker.Concurrency))
	b.WriteString("}")
	return b.String()
}
