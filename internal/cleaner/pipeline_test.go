package cleaner_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/cleaner"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/dataset"
)

// MockRunRegistry is a test double for the warehouse run registry.
type MockRunRegistry struct {
	StartCleaningRunFunc         func(ctx context.Context, runID, inputPath string) error
	MarkCleaningRunFailedFunc    func(ctx context.Context, runID string, runErr error)
	MarkCleaningRunSucceededFunc func(ctx context.Context, runID string, rowsIn, rowsOut int) error
}

func (m *MockRunRegistry) StartCleaningRun(ctx context.Context, runID, inputPath string) error {
	if m.StartCleaningRunFunc != nil {
		return m.StartCleaningRunFunc(ctx, runID, inputPath)
	}
	return nil
}

func (m *MockRunRegistry) MarkCleaningRunFailed(ctx context.Context, runID string, runErr error) {
	if m.MarkCleaningRunFailedFunc != nil {
		m.MarkCleaningRunFailedFunc(ctx, runID, runErr)
	}
}

func (m *MockRunRegistry) MarkCleaningRunSucceeded(ctx context.Context, runID string, rowsIn, rowsOut int) error {
	if m.MarkCleaningRunSucceededFunc != nil {
		return m.MarkCleaningRunSucceededFunc(ctx, runID, rowsIn, rowsOut)
	}
	return nil
}

// MockFetcher is a test double for remote input retrieval.
type MockFetcher struct {
	FetchFunc func(ctx context.Context, uri string) ([]byte, error)
}

func (m *MockFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return m.FetchFunc(ctx, uri)
}

const testHeader = "Order ID,Order Date,Ship Date,Customer ID,Customer Name,Segment,City,State,Postal Code,Region,Product ID,Product Name,Category,Sub-Category,Sales,Quantity,Discount,Profit"

var testRows = []string{
	`CA-1001,2023-01-05,2023-01-08,C1,Alice Ray,Consumer,Austin,Texas,73301,Central,P1,Stapler,Office Supplies,Fasteners,100,2,0,10`,
	`CA-1001,2023-01-05,2023-01-08,C1,Alice Ray,Consumer,Austin,Texas,73301,Central,P1,Stapler,Office Supplies,Fasteners,100,2,0,10`,
	`CA-1002,2023-02-30,2023-03-02,C2,Bo Lund,Corporate,Dayton,Ohio,45401,East,P2,Desk,Furniture,Tables,500,1,0,50`,
	`CA-1003,01/10/2023,01/08/2023,C3,Cy Park,Consumer,Fresno,Calfornia,93650,West,P3,Pens,Office Supplies,Art,abc,,0.2,5`,
	`CA-1004,2023-03-15,,C4,Di Wong,Home Office,Akron,Ohio,44301,East,P4,Chair,Furniture,Chairs,50,1,0,5`,
	`CA-1005,2023-04-01,2023-04-03,C5,Ed Reyes,Consumer,San Jose,California,95101,West,P5,Copier,Technology,Copiers,2000,1,0,600`,
}

func writeTestInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "orders.csv")
	data := testHeader + "\n" + strings.Join(testRows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := writeTestInput(t, dir)
	output := filepath.Join(dir, "cleaned.csv")

	report, err := cleaner.Run(context.Background(), cleaner.Options{
		InputPath:  input,
		OutputPath: output,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.RowsIn != 6 {
		t.Errorf("RowsIn = %d, want 6", report.RowsIn)
	}
	if report.RowsOut != 4 {
		t.Errorf("RowsOut = %d, want 4", report.RowsOut)
	}
	if report.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", report.DuplicatesRemoved)
	}
	if report.MissingOrderDateDropped != 1 {
		t.Errorf("MissingOrderDateDropped = %d, want 1", report.MissingOrderDateDropped)
	}
	if report.UnmatchedStates != 1 {
		t.Errorf("UnmatchedStates = %d, want 1", report.UnmatchedStates)
	}
	if report.NegativeShippingDays != 1 {
		t.Errorf("NegativeShippingDays = %d, want 1", report.NegativeShippingDays)
	}
	if report.SalesOutliers != 1 {
		t.Errorf("SalesOutliers = %d, want 1", report.SalesOutliers)
	}

	tbl, err := dataset.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	idx := tbl.Index()

	wantCols := []string{"State Code", "Order Year", "Order Month", "Month Name", "Year Month", "Order Weekday", "Shipping Days", "Sales Outlier"}
	for _, col := range wantCols {
		if !idx.Has(col) {
			t.Errorf("output missing column %q", col)
		}
	}

	// every output row has an order date and a quantity
	for i, row := range tbl.Rows {
		if idx.Cell(row, "Order Date") == "" {
			t.Errorf("row %d has empty order date", i)
		}
		if idx.Cell(row, "Quantity") == "" {
			t.Errorf("row %d has empty quantity", i)
		}
	}

	byID := make(map[string][]string, len(tbl.Rows))
	for _, row := range tbl.Rows {
		byID[idx.Cell(row, "Order ID")] = row
	}

	if _, ok := byID["CA-1002"]; ok {
		t.Error("row with impossible order date survived")
	}

	first := byID["CA-1001"]
	if got := idx.Cell(first, "State Code"); got != "TX" {
		t.Errorf("State Code = %q, want TX", got)
	}
	if got := idx.Cell(first, "Order Year"); got != "2023" {
		t.Errorf("Order Year = %q, want 2023", got)
	}
	if got := idx.Cell(first, "Month Name"); got != "January" {
		t.Errorf("Month Name = %q, want January", got)
	}
	if got := idx.Cell(first, "Year Month"); got != "2023-01" {
		t.Errorf("Year Month = %q, want 2023-01", got)
	}
	if got := idx.Cell(first, "Order Weekday"); got != "Thursday" {
		t.Errorf("Order Weekday = %q, want Thursday", got)
	}
	if got := idx.Cell(first, "Shipping Days"); got != "3" {
		t.Errorf("Shipping Days = %q, want 3", got)
	}

	// misspelled state retained with empty code, sales imputed with the
	// column median, quantity filled with 0
	misspelled := byID["CA-1003"]
	if misspelled == nil {
		t.Fatal("misspelled-state row missing from output")
	}
	if got := idx.Cell(misspelled, "State Code"); got != "" {
		t.Errorf("misspelled state got code %q, want empty", got)
	}
	if got := idx.Cell(misspelled, "Sales"); got != "100" {
		t.Errorf("imputed Sales = %q, want median 100", got)
	}
	if got := idx.Cell(misspelled, "Quantity"); got != "0" {
		t.Errorf("imputed Quantity = %q, want 0", got)
	}
	if got := idx.Cell(misspelled, "Order Date"); got != "2023-01-10" {
		t.Errorf("Order Date = %q, want 2023-01-10", got)
	}
	if got := idx.Cell(misspelled, "Shipping Days"); got != "-2" {
		t.Errorf("Shipping Days = %q, want -2", got)
	}

	noShip := byID["CA-1004"]
	if got := idx.Cell(noShip, "Shipping Days"); got != "" {
		t.Errorf("Shipping Days without ship date = %q, want empty", got)
	}

	extreme := byID["CA-1005"]
	if got := idx.Cell(extreme, "Sales Outlier"); got != "true" {
		t.Errorf("Sales Outlier = %q, want true", got)
	}
	if got := idx.Cell(first, "Sales Outlier"); got != "false" {
		t.Errorf("Sales Outlier = %q, want false", got)
	}
}

func TestRun_RejectedArtifact(t *testing.T) {
	dir := t.TempDir()
	input := writeTestInput(t, dir)
	output := filepath.Join(dir, "cleaned.csv")

	if _, err := cleaner.Run(context.Background(), cleaner.Options{
		InputPath:  input,
		OutputPath: output,
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rejected, err := dataset.ReadFile(filepath.Join(dir, "cleaned - rejected.csv"))
	if err != nil {
		t.Fatalf("reading rejected artifact: %v", err)
	}
	if len(rejected.Rows) != 2 {
		t.Fatalf("got %d rejected rows, want 2", len(rejected.Rows))
	}

	idx := rejected.Index()
	reasons := map[string]bool{}
	for _, row := range rejected.Rows {
		reasons[idx.Cell(row, "Reason")] = true
	}
	if !reasons["exact duplicate"] || !reasons["missing or unparseable order date"] {
		t.Errorf("reasons = %v, want duplicate and missing-date", reasons)
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	input := writeTestInput(t, dir)

	out1 := filepath.Join(dir, "first.csv")
	out2 := filepath.Join(dir, "second.csv")

	if _, err := cleaner.Run(context.Background(), cleaner.Options{InputPath: input, OutputPath: out1}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := cleaner.Run(context.Background(), cleaner.Options{InputPath: input, OutputPath: out2}); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	a, err := os.ReadFile(out1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two runs over the same input produced different bytes")
	}
}

func TestRun_RegistryLifecycle(t *testing.T) {
	dir := t.TempDir()
	input := writeTestInput(t, dir)

	var started, succeeded bool
	registry := &MockRunRegistry{
		StartCleaningRunFunc: func(ctx context.Context, runID, inputPath string) error {
			if runID == "" {
				t.Error("empty run ID")
			}
			started = true
			return nil
		},
		MarkCleaningRunSucceededFunc: func(ctx context.Context, runID string, rowsIn, rowsOut int) error {
			if rowsIn != 6 || rowsOut != 4 {
				t.Errorf("counts = %d/%d, want 6/4", rowsIn, rowsOut)
			}
			succeeded = true
			return nil
		},
	}

	if _, err := cleaner.Run(context.Background(), cleaner.Options{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "cleaned.csv"),
		Registry:   registry,
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !started || !succeeded {
		t.Errorf("registry lifecycle: started=%v succeeded=%v", started, succeeded)
	}
}

func TestRun_FailureMarksRunFailed(t *testing.T) {
	var failedWith error
	registry := &MockRunRegistry{
		MarkCleaningRunFailedFunc: func(ctx context.Context, runID string, runErr error) {
			failedWith = runErr
		},
	}

	_, err := cleaner.Run(context.Background(), cleaner.Options{
		InputPath:  filepath.Join(t.TempDir(), "does-not-exist.csv"),
		OutputPath: filepath.Join(t.TempDir(), "cleaned.csv"),
		Registry:   registry,
	})
	if err == nil {
		t.Fatal("Run succeeded with missing input, want error")
	}
	if failedWith == nil {
		t.Error("registry was not told about the failure")
	}
}

func TestRun_RemoteInputUsesFetcher(t *testing.T) {
	dir := t.TempDir()

	fetcher := &MockFetcher{
		FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
			if uri != "gs://raw-exports/orders.csv" {
				return nil, errors.New("unexpected uri")
			}
			data := testHeader + "\n" + strings.Join(testRows, "\n") + "\n"
			return []byte(data), nil
		},
	}

	report, err := cleaner.Run(context.Background(), cleaner.Options{
		InputPath:  "gs://raw-exports/orders.csv",
		OutputPath: filepath.Join(dir, "cleaned.csv"),
		Fetcher:    fetcher,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.RowsOut != 4 {
		t.Errorf("RowsOut = %d, want 4", report.RowsOut)
	}
}

func TestRun_RemoteInputWithoutFetcher(t *testing.T) {
	_, err := cleaner.Run(context.Background(), cleaner.Options{
		InputPath:  "gs://raw-exports/orders.csv",
		OutputPath: filepath.Join(t.TempDir(), "cleaned.csv"),
	})
	if err == nil {
		t.Fatal("Run succeeded without a fetcher for a gs:// input, want error")
	}
}
