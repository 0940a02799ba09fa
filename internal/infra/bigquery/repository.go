package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// WarehouseRepository is what the load path needs from the warehouse.
// cleaner.RunRegistry covers the registry half; this adds the data half.
type WarehouseRepository interface {
	StartCleaningRun(ctx context.Context, runID, inputPath string) error
	MarkCleaningRunFailed(ctx context.Context, runID string, runErr error)
	MarkCleaningRunSucceeded(ctx context.Context, runID string, rowsIn, rowsOut int) error
	InsertCleanedRows(ctx context.Context, rows []*CleanedTransactionRow) error
	QueryCleanedByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*CleanedTransactionRow, error)
}

// Repository is the BigQuery-backed implementation of WarehouseRepository.
// It holds one shared client so a run does not open a connection per
// operation.
type Repository struct {
	client    *bigquery.Client
	datasetID string
}

// NewRepository creates a repository with a shared BigQuery client.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewRepository: project ID is required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, datasetID: datasetID}, nil
}

// Close releases the BigQuery client.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// StartCleaningRun delegates to StartCleaningRunWithClient with the shared client.
func (r *Repository) StartCleaningRun(ctx context.Context, runID, inputPath string) error {
	return StartCleaningRunWithClient(ctx, r.client, r.datasetID, runID, inputPath)
}

// MarkCleaningRunFailed delegates to MarkCleaningRunFailedWithClient with the shared client.
func (r *Repository) MarkCleaningRunFailed(ctx context.Context, runID string, runErr error) {
	MarkCleaningRunFailedWithClient(ctx, r.client, r.datasetID, runID, runErr)
}

// MarkCleaningRunSucceeded delegates to MarkCleaningRunSucceededWithClient with the shared client.
func (r *Repository) MarkCleaningRunSucceeded(ctx context.Context, runID string, rowsIn, rowsOut int) error {
	return MarkCleaningRunSucceededWithClient(ctx, r.client, r.datasetID, runID, rowsIn, rowsOut)
}

// InsertCleanedRows delegates to InsertCleanedRowsWithClient with the shared client.
func (r *Repository) InsertCleanedRows(ctx context.Context, rows []*CleanedTransactionRow) error {
	return InsertCleanedRowsWithClient(ctx, r.client, r.datasetID, rows)
}

// QueryCleanedByDateRange delegates to QueryCleanedByDateRangeWithClient with the shared client.
func (r *Repository) QueryCleanedByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*CleanedTransactionRow, error) {
	return QueryCleanedByDateRangeWithClient(ctx, r.client, r.datasetID, startDate, endDate)
}
