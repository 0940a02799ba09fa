package cleaner

import (
	"context"
	"fmt"
	"strings"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/dataset"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/logger"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/lookup"
)

// Fetcher retrieves raw input bytes for gs:// URIs.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// RunRegistry records cleaning runs in the warehouse. MarkCleaningRunFailed
// is best-effort: the run is already failing and the original error must
// surface, not the bookkeeping one.
type RunRegistry interface {
	StartCleaningRun(ctx context.Context, runID, inputPath string) error
	MarkCleaningRunFailed(ctx context.Context, runID string, runErr error)
	MarkCleaningRunSucceeded(ctx context.Context, runID string, rowsIn, rowsOut int) error
}

// Options configures one cleaning run. Registry and Fetcher are optional;
// without them the run is purely local.
type Options struct {
	InputPath    string
	LookupPath   string
	OutputPath   string
	RejectedPath string

	ImputePolicy  string
	OutlierFactor float64

	Registry RunRegistry
	Fetcher  Fetcher
}

// Run executes one cleaning run end to end: load, transform, persist. The
// returned report is non-nil whenever the run got far enough to start, even
// on failure.
func Run(ctx context.Context, opts Options) (*RunReport, error) {
	log := logger.FromContext(ctx)

	if opts.InputPath == "" {
		return nil, fmt.Errorf("cleaner: input path is required")
	}
	if opts.OutputPath == "" {
		opts.OutputPath = "cleaned.csv"
	}
	if opts.RejectedPath == "" {
		opts.RejectedPath = RejectedArtifactPath(opts.OutputPath)
	}

	report := NewRunReport(opts.InputPath)
	report.OutputPath = opts.OutputPath
	report.RejectedPath = opts.RejectedPath

	if opts.Registry != nil {
		if err := opts.Registry.StartCleaningRun(ctx, report.RunID, opts.InputPath); err != nil {
			return report, fmt.Errorf("cleaner: registering run: %w", err)
		}
	}

	err := run(ctx, opts, report)
	report.Finish(err)

	if err != nil {
		if opts.Registry != nil {
			opts.Registry.MarkCleaningRunFailed(ctx, report.RunID, err)
		}
		return report, err
	}

	if opts.Registry != nil {
		if err := opts.Registry.MarkCleaningRunSucceeded(ctx, report.RunID, report.RowsIn, report.RowsOut); err != nil {
			return report, fmt.Errorf("cleaner: closing run: %w", err)
		}
	}

	report.LogSummary(log)
	return report, nil
}

func run(ctx context.Context, opts Options, report *RunReport) error {
	tbl, err := loadInput(ctx, opts)
	if err != nil {
		return err
	}

	lk, err := loadLookup(opts.LookupPath)
	if err != nil {
		return err
	}

	state := &State{
		Input:         tbl,
		Lookup:        lk,
		ImputePolicy:  opts.ImputePolicy,
		OutlierFactor: opts.OutlierFactor,
		Report:        report,
	}

	if err := NewCleaningPipeline().Execute(ctx, state); err != nil {
		return err
	}

	if err := state.Output.WriteFile(opts.OutputPath); err != nil {
		return fmt.Errorf("cleaner: writing output: %w", err)
	}
	if len(state.Rejected) > 0 {
		if err := WriteRejected(opts.RejectedPath, state.Rejected); err != nil {
			return err
		}
	}
	return nil
}

func loadInput(ctx context.Context, opts Options) (*dataset.Table, error) {
	if strings.HasPrefix(opts.InputPath, "gs://") {
		if opts.Fetcher == nil {
			return nil, fmt.Errorf("cleaner: input %q is remote but no fetcher is configured", opts.InputPath)
		}
		data, err := opts.Fetcher.Fetch(ctx, opts.InputPath)
		if err != nil {
			return nil, fmt.Errorf("cleaner: fetching input: %w", err)
		}
		return dataset.Read(data)
	}
	return dataset.ReadFile(opts.InputPath)
}

func loadLookup(path string) (*lookup.Table, error) {
	if path == "" {
		return lookup.BuiltinUS(), nil
	}
	return lookup.Load(path)
}
