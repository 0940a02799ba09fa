package cleaner

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/dataset"
)

// ColumnCoercion tracks what happened to one numeric column: how many values
// failed to parse and how many were filled, with the fill value used.
type ColumnCoercion struct {
	Failures  int
	Imputed   int
	FillValue string
}

// RunReport is the operational summary of one cleaning run. It never feeds
// back into the output data, so the run ID and timestamps do not break
// output idempotence.
type RunReport struct {
	RunID        string
	InputPath    string
	OutputPath   string
	RejectedPath string

	RowsIn  int
	RowsOut int

	DuplicatesRemoved       int
	MissingOrderDateDropped int
	DroppedUnparseable      int
	UnmatchedStates         int
	NegativeShippingDays    int
	SalesOutliers           int

	Columns map[string]*ColumnCoercion

	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Error      string
}

// Run statuses recorded in the report and the run log.
const (
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCESS"
	StatusFailed    = "FAILED"
)

// NewRunReport starts a report for one run with a fresh run ID.
func NewRunReport(inputPath string) *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		InputPath: inputPath,
		Columns:   make(map[string]*ColumnCoercion),
		StartedAt: time.Now().UTC(),
		Status:    StatusRunning,
	}
}

// Column returns the coercion counters for a column, creating them on first
// use.
func (r *RunReport) Column(name string) *ColumnCoercion {
	cc, ok := r.Columns[name]
	if !ok {
		cc = &ColumnCoercion{}
		r.Columns[name] = cc
	}
	return cc
}

// RowsRejected is the total number of input rows that did not reach the
// output.
func (r *RunReport) RowsRejected() int {
	return r.DuplicatesRemoved + r.MissingOrderDateDropped + r.DroppedUnparseable
}

// Finish marks the report done, recording the failure if there was one.
func (r *RunReport) Finish(runErr error) {
	r.FinishedAt = time.Now().UTC()
	if runErr != nil {
		r.Status = StatusFailed
		r.Error = runErr.Error()
		return
	}
	r.Status = StatusSucceeded
}

// LogSummary emits the report as one structured log line per concern.
func (r *RunReport) LogSummary(log zerolog.Logger) {
	log.Info().
		Str("run_id", r.RunID).
		Str("input", r.InputPath).
		Str("output", r.OutputPath).
		Int("rows_in", r.RowsIn).
		Int("rows_out", r.RowsOut).
		Int("duplicates_removed", r.DuplicatesRemoved).
		Int("missing_order_date_dropped", r.MissingOrderDateDropped).
		Int("unmatched_states", r.UnmatchedStates).
		Int("negative_shipping_days", r.NegativeShippingDays).
		Int("sales_outliers", r.SalesOutliers).
		Dur("took", r.FinishedAt.Sub(r.StartedAt)).
		Msg("cleaning run complete")

	for _, col := range NumericColumns {
		cc, ok := r.Columns[col]
		if !ok || (cc.Failures == 0 && cc.Imputed == 0) {
			continue
		}
		log.Info().
			Str("run_id", r.RunID).
			Str("column", col).
			Int("parse_failures", cc.Failures).
			Int("imputed", cc.Imputed).
			Str("fill_value", cc.FillValue).
			Msg("column coercion")
	}
}

// Summary renders a short human-readable report for CLI output.
func (r *RunReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d rows in, %d rows out\n", r.RunID, r.RowsIn, r.RowsOut)
	fmt.Fprintf(&b, "  duplicates removed:      %d\n", r.DuplicatesRemoved)
	fmt.Fprintf(&b, "  missing order date:      %d\n", r.MissingOrderDateDropped)
	if r.DroppedUnparseable > 0 {
		fmt.Fprintf(&b, "  unparseable amounts:     %d\n", r.DroppedUnparseable)
	}
	fmt.Fprintf(&b, "  unmatched states:        %d\n", r.UnmatchedStates)
	fmt.Fprintf(&b, "  negative shipping days:  %d\n", r.NegativeShippingDays)
	fmt.Fprintf(&b, "  sales outliers:          %d\n", r.SalesOutliers)
	for _, col := range NumericColumns {
		cc, ok := r.Columns[col]
		if !ok || cc.Imputed == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s imputed:  %d rows filled with %s\n", strings.ToLower(col), cc.Imputed, cc.FillValue)
	}
	return b.String()
}

// RejectedArtifactPath derives where rejected rows are written for a given
// output path: "cleaned.csv" becomes "cleaned - rejected.csv".
func RejectedArtifactPath(outputPath string) string {
	base := strings.TrimSuffix(outputPath, ".csv")
	return base + " - rejected.csv"
}

// WriteRejected persists removed rows with a leading Reason column, in the
// order they were removed.
func WriteRejected(path string, rejected []RejectedRow) error {
	headers := append([]string{"Reason"}, InputColumns...)
	rows := make([][]string, 0, len(rejected))
	for _, rej := range rejected {
		rows = append(rows, append([]string{rej.Reason}, rej.Raw...))
	}

	tbl := &dataset.Table{Headers: headers, Rows: rows}
	if err := tbl.WriteFile(path); err != nil {
		return fmt.Errorf("WriteRejected: %w", err)
	}
	return nil
}
