// Command worker consumes cleaning jobs from the queue until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/cleaner"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/config"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/gcs"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/jobs"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/jobs/inmemory"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/logger"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/runlog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, cfg.Worker.Concurrency, jobStore)

	store, err := runlog.Open(cfg.Clean.RunLogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open run log")
	}
	defer store.Close()

	log.Info().
		Int("queue_size", cfg.Worker.QueueSize).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("Starting worker service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	handler := func(ctx context.Context, job jobs.Job) error {
		cleanJob, ok := job.(*jobs.CleanFileJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", cleanJob.JobID).
			Str("input", cleanJob.InputPath).
			Msg("Processing cleaning job")

		outputPath := cleanJob.OutputPath
		if outputPath == "" {
			outputPath = deriveOutputPath(cleanJob.InputPath)
		}

		report, err := cleaner.Run(ctx, cleaner.Options{
			InputPath:     cleanJob.InputPath,
			LookupPath:    cleanJob.LookupPath,
			OutputPath:    outputPath,
			ImputePolicy:  cfg.Clean.ImputePolicy,
			OutlierFactor: cfg.Clean.OutlierFactor,
			Fetcher:       gcs.NewService(),
		})
		if report != nil {
			cleanJob.RunID = report.RunID
			if logErr := store.Record(ctx, report.RunID, report.InputPath, report.StartedAt); logErr == nil {
				_ = store.Finish(ctx, report)
			}
		}
		if err != nil {
			log.Error().Err(err).Str("job_id", cleanJob.JobID).Msg("Cleaning run failed")
			return err
		}

		log.Info().
			Str("job_id", cleanJob.JobID).
			Str("run_id", cleanJob.RunID).
			Int("rows_out", report.RowsOut).
			Msg("Cleaning job completed")
		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

// deriveOutputPath turns "orders.csv" into "orders cleaned.csv", next to the
// input for local paths and in the working directory for gs:// inputs.
func deriveOutputPath(inputPath string) string {
	name := inputPath
	dir := ""
	if strings.HasPrefix(inputPath, "gs://") {
		name = gcs.Filename(inputPath)
	} else {
		dir = filepath.Dir(inputPath)
		name = filepath.Base(inputPath)
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	out := base + " cleaned.csv"
	if dir != "" && dir != "." {
		return filepath.Join(dir, out)
	}
	return out
}
