package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/logger"
)

const (
	cleaningRunsTable = "cleaning_runs"

	statusRunning = "RUNNING"
	statusSuccess = "SUCCESS"
	statusFailed  = "FAILED"
)

// StartCleaningRunWithClient inserts a cleaning_runs row with status=RUNNING.
func StartCleaningRunWithClient(ctx context.Context, client *bigquery.Client, datasetID, runID, inputPath string) error {
	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_id,
			input_path,
			started_ts,
			status
		)
		VALUES (
			@run_id,
			@input_path,
			@started_ts,
			@status
		)
	`, datasetID, cleaningRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "input_path", Value: inputPath},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: statusRunning},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("StartCleaningRun: running insert query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("StartCleaningRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("StartCleaningRun: job error: %w", err)
	}
	return nil
}

// MarkCleaningRunFailedWithClient sets status=FAILED with the error message.
// Best-effort: failures are logged, not returned, so the original run error
// stays the one the caller sees.
func MarkCleaningRunFailedWithClient(ctx context.Context, client *bigquery.Client, datasetID, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, datasetID, cleaningRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: statusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkCleaningRunFailed: running update query")
		return
	}
	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkCleaningRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkCleaningRunFailed: job completed with error")
	}
}

// MarkCleaningRunSucceededWithClient sets status=SUCCESS with the final row
// counts and clears the error message.
func MarkCleaningRunSucceededWithClient(ctx context.Context, client *bigquery.Client, datasetID, runID string, rowsIn, rowsOut int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    rows_in = @rows_in,
		    rows_out = @rows_out,
		    error_message = ""
		WHERE run_id = @run_id
	`, datasetID, cleaningRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: statusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "rows_in", Value: rowsIn},
		{Name: "rows_out", Value: rowsOut},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkCleaningRunSucceeded: running update query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkCleaningRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkCleaningRunSucceeded: job error: %w", err)
	}
	return nil
}
