// Command clean runs the cleaning pipeline once over a single input file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/cleaner"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/config"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/gcs"
	infraBQ "github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/infra/bigquery"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/logger"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/runlog"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clean: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	input := flag.String("input", cfg.Clean.InputPath, "Input CSV, a local path or gs:// URI")
	lookupPath := flag.String("lookup", cfg.Clean.LookupPath, "State lookup CSV (empty uses the built-in US table)")
	output := flag.String("output", cfg.Clean.OutputPath, "Output CSV path")
	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("Error: -input (or CLEAN_INPUT) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Clean.Timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	opts := cleaner.Options{
		InputPath:     *input,
		LookupPath:    *lookupPath,
		OutputPath:    *output,
		RejectedPath:  cfg.Clean.RejectedPath,
		ImputePolicy:  cfg.Clean.ImputePolicy,
		OutlierFactor: cfg.Clean.OutlierFactor,
		Fetcher:       gcs.NewService(),
	}

	if cfg.Warehouse.ProjectID != "" {
		repo, err := infraBQ.NewRepository(ctx, cfg.Warehouse.ProjectID, cfg.Warehouse.DatasetID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to warehouse")
		}
		defer repo.Close()
		opts.Registry = repo
	}

	store, err := runlog.Open(cfg.Clean.RunLogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open run log")
	}
	defer store.Close()

	log.Info().Str("input", *input).Str("output", *output).Msg("Starting cleaning run")

	report, err := cleaner.Run(ctx, opts)
	if report != nil {
		if logErr := store.Record(ctx, report.RunID, report.InputPath, report.StartedAt); logErr != nil {
			log.Warn().Err(logErr).Msg("Failed to record run")
		} else if logErr := store.Finish(ctx, report); logErr != nil {
			log.Warn().Err(logErr).Msg("Failed to finish run record")
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Cleaning run failed")
	}

	fmt.Print(report.Summary())
}
