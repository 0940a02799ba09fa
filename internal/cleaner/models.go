package cleaner

import "time"

// Record is one transaction row in flight through the pipeline. Raw holds the
// cleaned input cells in InputColumns order; typed fields are filled by the
// parsing and coercion steps and are nil while still missing.
type Record struct {
	Raw []string

	OrderDate *time.Time
	ShipDate  *time.Time

	Sales    *float64
	Quantity *float64
	Discount *float64
	Profit   *float64

	StateCode    string
	ShippingDays *int
	SalesOutlier *bool
}

// Cell returns the raw cell for a canonical input column, "" when missing.
func (r *Record) Cell(col string) string {
	for i, name := range InputColumns {
		if name == col {
			if i < len(r.Raw) {
				return r.Raw[i]
			}
			return ""
		}
	}
	return ""
}

// numeric returns a pointer to the typed field backing a numeric column.
func (r *Record) numeric(col string) **float64 {
	switch col {
	case ColSales:
		return &r.Sales
	case ColQuantity:
		return &r.Quantity
	case ColDiscount:
		return &r.Discount
	case ColProfit:
		return &r.Profit
	}
	return nil
}

// RejectedRow is an input row the pipeline removed, kept for the rejected
// artifact with the reason it was removed.
type RejectedRow struct {
	Reason string
	Raw    []string
}

// Rejection reasons written to the rejected-rows artifact.
const (
	ReasonDuplicate        = "exact duplicate"
	ReasonMissingOrderDate = "missing or unparseable order date"
	ReasonUnparseableValue = "unparseable numeric value"
)
