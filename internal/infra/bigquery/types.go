// Package bigquery is the warehouse sink: a cleaning-run registry plus batch
// loads of cleaned transactions, so BI tools can query runs without touching
// the CSV artifacts.
package bigquery

import (
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/cleaner"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/dataset"
)

// CleaningRunRow mirrors the ecommerce.cleaning_runs table.
type CleaningRunRow struct {
	RunID     string `bigquery:"run_id"`
	InputPath string `bigquery:"input_path"`

	StartedAt  time.Time              `bigquery:"started_ts"`
	FinishedAt bigquery.NullTimestamp `bigquery:"finished_ts"`

	Status       string `bigquery:"status"`
	ErrorMessage string `bigquery:"error_message"`

	RowsIn  bigquery.NullInt64 `bigquery:"rows_in"`
	RowsOut bigquery.NullInt64 `bigquery:"rows_out"`
}

// CleanedTransactionRow mirrors the ecommerce.cleaned_transactions table.
type CleanedTransactionRow struct {
	RunID   string `bigquery:"run_id"` // REQUIRED
	OrderID string `bigquery:"order_id"`

	OrderDate civil.Date        `bigquery:"order_date"` // REQUIRED
	ShipDate  bigquery.NullDate `bigquery:"ship_date"`  // NULLABLE

	CustomerID   string `bigquery:"customer_id"`
	CustomerName string `bigquery:"customer_name"`
	Segment      string `bigquery:"segment"`

	City       string              `bigquery:"city"`
	State      string              `bigquery:"state"`
	StateCode  bigquery.NullString `bigquery:"state_code"` // NULLABLE
	PostalCode string              `bigquery:"postal_code"`
	Region     string              `bigquery:"region"`

	ProductID   string `bigquery:"product_id"`
	ProductName string `bigquery:"product_name"`
	Category    string `bigquery:"category"`
	SubCategory string `bigquery:"sub_category"`

	Sales    float64 `bigquery:"sales"`
	Quantity int64   `bigquery:"quantity"`
	Discount float64 `bigquery:"discount"`
	Profit   float64 `bigquery:"profit"`

	OrderYear    int64  `bigquery:"order_year"`
	OrderMonth   int64  `bigquery:"order_month"`
	MonthName    string `bigquery:"month_name"`
	YearMonth    string `bigquery:"year_month"`
	OrderWeekday string `bigquery:"order_weekday"`

	ShippingDays bigquery.NullInt64 `bigquery:"shipping_days"` // NULLABLE
	SalesOutlier bool               `bigquery:"sales_outlier"`

	LoadedTS time.Time `bigquery:"loaded_ts"`
}

// RowsFromTable converts a cleaned output table into warehouse rows tagged
// with the run that produced them. It expects the cleaner's output layout;
// a table that does not round-trip is a load error, not a data-plane one.
func RowsFromTable(tbl *dataset.Table, runID string, loadedAt time.Time) ([]*CleanedTransactionRow, error) {
	idx := tbl.Index()
	for _, col := range []string{cleaner.ColOrderID, cleaner.ColOrderDate, cleaner.ColSales} {
		if !idx.Has(col) {
			return nil, fmt.Errorf("RowsFromTable: missing column %q", col)
		}
	}

	rows := make([]*CleanedTransactionRow, 0, len(tbl.Rows))
	for i, raw := range tbl.Rows {
		r := &CleanedTransactionRow{
			RunID:   runID,
			OrderID: idx.Cell(raw, cleaner.ColOrderID),

			CustomerID:   idx.Cell(raw, cleaner.ColCustomerID),
			CustomerName: idx.Cell(raw, cleaner.ColCustomerName),
			Segment:      idx.Cell(raw, cleaner.ColSegment),

			City:       idx.Cell(raw, cleaner.ColCity),
			State:      idx.Cell(raw, cleaner.ColState),
			PostalCode: idx.Cell(raw, cleaner.ColPostalCode),
			Region:     idx.Cell(raw, cleaner.ColRegion),

			ProductID:   idx.Cell(raw, cleaner.ColProductID),
			ProductName: idx.Cell(raw, cleaner.ColProductName),
			Category:    idx.Cell(raw, cleaner.ColCategory),
			SubCategory: idx.Cell(raw, cleaner.ColSubCategory),

			MonthName:    idx.Cell(raw, cleaner.ColMonthName),
			YearMonth:    idx.Cell(raw, cleaner.ColYearMonth),
			OrderWeekday: idx.Cell(raw, cleaner.ColOrderWeekday),

			LoadedTS: loadedAt,
		}

		od, err := civil.ParseDate(idx.Cell(raw, cleaner.ColOrderDate))
		if err != nil {
			return nil, fmt.Errorf("RowsFromTable: row %d: order date: %w", i, err)
		}
		r.OrderDate = od

		if s := idx.Cell(raw, cleaner.ColShipDate); s != "" {
			sd, err := civil.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("RowsFromTable: row %d: ship date: %w", i, err)
			}
			r.ShipDate = bigquery.NullDate{Date: sd, Valid: true}
		}

		if code := idx.Cell(raw, cleaner.ColStateCode); code != "" {
			r.StateCode = bigquery.NullString{StringVal: code, Valid: true}
		}

		if r.Sales, err = parseFloatCell(idx.Cell(raw, cleaner.ColSales), i, cleaner.ColSales); err != nil {
			return nil, err
		}
		if r.Discount, err = parseFloatCell(idx.Cell(raw, cleaner.ColDiscount), i, cleaner.ColDiscount); err != nil {
			return nil, err
		}
		if r.Profit, err = parseFloatCell(idx.Cell(raw, cleaner.ColProfit), i, cleaner.ColProfit); err != nil {
			return nil, err
		}

		qty, err := parseFloatCell(idx.Cell(raw, cleaner.ColQuantity), i, cleaner.ColQuantity)
		if err != nil {
			return nil, err
		}
		r.Quantity = int64(qty)

		year, err := strconv.ParseInt(idx.Cell(raw, cleaner.ColOrderYear), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("RowsFromTable: row %d: order year: %w", i, err)
		}
		r.OrderYear = year
		month, err := strconv.ParseInt(idx.Cell(raw, cleaner.ColOrderMonth), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("RowsFromTable: row %d: order month: %w", i, err)
		}
		r.OrderMonth = month

		if s := idx.Cell(raw, cleaner.ColShippingDays); s != "" {
			days, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("RowsFromTable: row %d: shipping days: %w", i, err)
			}
			r.ShippingDays = bigquery.NullInt64{Int64: days, Valid: true}
		}

		r.SalesOutlier = idx.Cell(raw, cleaner.ColSalesOutlier) == "true"

		rows = append(rows, r)
	}
	return rows, nil
}

func parseFloatCell(s string, row int, col string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("RowsFromTable: row %d: %s: %w", row, col, err)
	}
	return f, nil
}
