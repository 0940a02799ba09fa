// Command cli bundles the operational tools around the cleaner: run it,
// push artifacts to GCS, load cleaned data into the warehouse, inspect run
// history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/cleaner"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/config"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/dataset"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/gcs"
	infraBQ "github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/infra/bigquery"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/logger"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/runlog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cli: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "clean":
		runClean(log, cfg)
	case "upload":
		runUpload(log, cfg)
	case "load":
		runLoad(log, cfg)
	case "runs":
		runRuns(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Transaction Cleaner CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  clean     Run the cleaning pipeline over an input file")
	fmt.Println("  upload    Upload an artifact to GCS")
	fmt.Println("  load      Load a cleaned CSV into the warehouse")
	fmt.Println("  runs      Show recent cleaning runs")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runClean(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	input := fs.String("input", cfg.Clean.InputPath, "Input CSV, a local path or gs:// URI")
	lookupPath := fs.String("lookup", cfg.Clean.LookupPath, "State lookup CSV (empty uses the built-in US table)")
	output := fs.String("output", cfg.Clean.OutputPath, "Output CSV path")
	fs.Parse(os.Args[2:])

	if *input == "" {
		log.Fatal().Msg("Error: -input is required")
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

	report, err := cleaner.Run(ctx, opts)
	if report != nil {
		if logErr := store.Record(ctx, report.RunID, report.InputPath, report.StartedAt); logErr == nil {
			_ = store.Finish(ctx, report)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Cleaning run failed")
	}

	fmt.Print(report.Summary())
}

func runUpload(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucket := fs.String("bucket", cfg.Storage.Bucket, "GCS bucket name")
	object := fs.String("object", "", "GCS object name (defaults to filename)")
	file := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	if *bucket == "" || *file == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}
	if *object == "" {
		*object = filepath.Base(*file)
	}

	ctx := logger.WithContext(context.Background(), log)

	log.Info().
		Str("bucket", *bucket).
		Str("object", *object).
		Str("file", *file).
		Msg("Uploading artifact to GCS")

	if err := gcs.NewService().UploadFile(ctx, *bucket, *object, *file); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *file, *bucket, *object)
}

func runLoad(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	file := fs.String("file", "", "Cleaned CSV to load")
	runID := fs.String("run-id", "", "Run ID to tag rows with (defaults to a new ID)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: -file is required")
	}
	if cfg.Warehouse.ProjectID == "" {
		log.Fatal().Msg("Error: BQ_PROJECT must be set for load")
	}
	if *runID == "" {
		*runID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Clean.Timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	tbl, err := dataset.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read cleaned file")
	}

	rows, err := infraBQ.RowsFromTable(tbl, *runID, time.Now().UTC())
	if err != nil {
		log.Fatal().Err(err).Msg("Cleaned file does not match the expected layout")
	}

	repo, err := infraBQ.NewRepository(ctx, cfg.Warehouse.ProjectID, cfg.Warehouse.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to warehouse")
	}
	defer repo.Close()

	if err := repo.StartCleaningRun(ctx, *runID, *file); err != nil {
		log.Fatal().Err(err).Msg("Failed to register run")
	}

	if err := repo.InsertCleanedRows(ctx, rows); err != nil {
		repo.MarkCleaningRunFailed(ctx, *runID, err)
		log.Fatal().Err(err).Msg("Load failed")
	}

	if err := repo.MarkCleaningRunSucceeded(ctx, *runID, len(rows), len(rows)); err != nil {
		log.Fatal().Err(err).Msg("Failed to close run")
	}

	fmt.Printf("Loaded %d rows from %s as run %s\n", len(rows), *file, *runID)
}

func runRuns(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Number of runs to show")
	fs.Parse(os.Args[2:])

	store, err := runlog.Open(cfg.Clean.RunLogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open run log")
	}
	defer store.Close()

	ctx := logger.WithContext(context.Background(), log)

	entries, err := store.Recent(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list runs")
	}

	if len(entries) == 0 {
		fmt.Println("No cleaning runs recorded yet.")
		return
	}

	for _, e := range entries {
		fmt.Printf("%s  %-7s  %6d in  %6d out  %s\n",
			e.StartedAt.Format(time.RFC3339), e.Status, e.RowsIn, e.RowsOut, e.InputPath)
		if e.Error != "" {
			fmt.Printf("    error: %s\n", e.Error)
		}
	}
}
