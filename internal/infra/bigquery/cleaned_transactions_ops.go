package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	cleanedTransactionsTable = "cleaned_transactions"
	dateFormat               = "2006-01-02"
)

// InsertCleanedRowsWithClient batch-inserts cleaned transactions.
func InsertCleanedRowsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, rows []*CleanedTransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(cleanedTransactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertCleanedRows: inserting rows: %w", err)
	}
	return nil
}

// QueryCleanedByDateRangeWithClient returns cleaned transactions whose order
// date falls in [startDate, endDate]. Only rows from successful cleaning runs
// are included, so a failed load never leaks into reporting.
func QueryCleanedByDateRangeWithClient(ctx context.Context, client *bigquery.Client, datasetID string, startDate, endDate time.Time) ([]*CleanedTransactionRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			t.run_id,
			t.order_id,
			t.order_date,
			t.ship_date,
			t.customer_id,
			t.customer_name,
			t.segment,
			t.city,
			t.state,
			t.state_code,
			t.postal_code,
			t.region,
			t.product_id,
			t.product_name,
			t.category,
			t.sub_category,
			t.sales,
			t.quantity,
			t.discount,
			t.profit,
			t.order_year,
			t.order_month,
			t.month_name,
			t.year_month,
			t.order_weekday,
			t.shipping_days,
			t.sales_outlier,
			t.loaded_ts
		FROM %s.%s t
		INNER JOIN %s.%s r
		  ON t.run_id = r.run_id
		WHERE t.order_date >= @start_date
		  AND t.order_date <= @end_date
		  AND r.status = 'SUCCESS'
		ORDER BY t.order_date, t.order_id
	`, datasetID, cleanedTransactionsTable, datasetID, cleaningRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate.Format(dateFormat)},
		{Name: "end_date", Value: endDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryCleanedByDateRange: query read: %w", err)
	}

	var rows []*CleanedTransactionRow
	for {
		var r CleanedTransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryCleanedByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
