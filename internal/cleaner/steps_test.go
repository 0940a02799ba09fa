package cleaner

import (
	"context"
	"testing"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/lookup"
)

// rec builds a Record with the given cells, keyed by canonical column name.
func rec(cells map[string]string) *Record {
	raw := make([]string, len(InputColumns))
	for i, col := range InputColumns {
		raw[i] = cells[col]
	}
	return &Record{Raw: raw}
}

func newTestState(records ...*Record) *State {
	return &State{
		Lookup:  lookup.BuiltinUS(),
		Records: records,
		Report:  NewRunReport("test.csv"),
	}
}

func TestDedupeStep(t *testing.T) {
	a := rec(map[string]string{ColOrderID: "A", ColSales: "10"})
	b := rec(map[string]string{ColOrderID: "B", ColSales: "20"})
	dup := rec(map[string]string{ColOrderID: "A", ColSales: "10"})
	state := newTestState(a, dup, b)

	if err := (&DedupeStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	if len(state.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(state.Records))
	}
	// first occurrence wins, order preserved
	if state.Records[0] != a || state.Records[1] != b {
		t.Error("dedupe changed record order")
	}
	if state.Report.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", state.Report.DuplicatesRemoved)
	}
	if len(state.Rejected) != 1 || state.Rejected[0].Reason != ReasonDuplicate {
		t.Errorf("rejected = %+v, want one duplicate", state.Rejected)
	}
}

func TestDropMissingOrderDateStep(t *testing.T) {
	good := rec(map[string]string{ColOrderID: "A", ColOrderDate: "2023-01-05"})
	bad := rec(map[string]string{ColOrderID: "B", ColOrderDate: "2023-02-30"})
	state := newTestState(good, bad)

	if err := (&ParseDatesStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if err := (&DropMissingOrderDateStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	if len(state.Records) != 1 || state.Records[0] != good {
		t.Fatalf("got %d records, want only the dated one", len(state.Records))
	}
	if state.Report.MissingOrderDateDropped != 1 {
		t.Errorf("MissingOrderDateDropped = %d, want 1", state.Report.MissingOrderDateDropped)
	}
	if len(state.Rejected) != 1 || state.Rejected[0].Reason != ReasonMissingOrderDate {
		t.Errorf("rejected = %+v, want one missing-date row", state.Rejected)
	}
}

func TestCoerceNumericsStep(t *testing.T) {
	r := rec(map[string]string{ColSales: "$1,200.50", ColQuantity: "3", ColDiscount: "junk", ColProfit: ""})
	state := newTestState(r)

	if err := (&CoerceNumericsStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	if r.Sales == nil || *r.Sales != 1200.50 {
		t.Errorf("Sales = %v, want 1200.50", r.Sales)
	}
	if r.Quantity == nil || *r.Quantity != 3 {
		t.Errorf("Quantity = %v, want 3", r.Quantity)
	}
	if r.Discount != nil {
		t.Error("unparseable Discount should stay missing")
	}
	if state.Report.Column(ColDiscount).Failures != 1 {
		t.Errorf("Discount failures = %d, want 1", state.Report.Column(ColDiscount).Failures)
	}
	// empty cell is missing, not a failure
	if state.Report.Column(ColProfit).Failures != 0 {
		t.Errorf("Profit failures = %d, want 0", state.Report.Column(ColProfit).Failures)
	}
}

func TestImputeStep_MedianPolicy(t *testing.T) {
	present := func(v float64) *Record {
		r := rec(map[string]string{})
		r.Sales = &v
		return r
	}
	missing := rec(map[string]string{})

	state := newTestState(present(10), present(30), present(20), missing)
	state.ImputePolicy = ImputeMedian

	if err := (&ImputeStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	if missing.Sales == nil || *missing.Sales != 20 {
		t.Errorf("imputed Sales = %v, want median 20", missing.Sales)
	}
	if missing.Quantity == nil || *missing.Quantity != 0 {
		t.Errorf("imputed Quantity = %v, want 0", missing.Quantity)
	}
	cc := state.Report.Column(ColSales)
	if cc.Imputed != 1 || cc.FillValue != "20" {
		t.Errorf("Sales coercion = %+v, want 1 imputed with 20", cc)
	}
}

func TestImputeStep_MedianEvenCount(t *testing.T) {
	present := func(v float64) *Record {
		r := rec(map[string]string{})
		r.Profit = &v
		return r
	}
	missing := rec(map[string]string{})

	state := newTestState(present(10), present(20), missing)
	state.ImputePolicy = ImputeMedian

	if err := (&ImputeStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if missing.Profit == nil || *missing.Profit != 15 {
		t.Errorf("imputed Profit = %v, want 15", missing.Profit)
	}
}

func TestImputeStep_ZeroPolicy(t *testing.T) {
	v := 99.0
	present := rec(map[string]string{})
	present.Sales = &v
	missing := rec(map[string]string{})

	state := newTestState(present, missing)
	state.ImputePolicy = ImputeZero

	if err := (&ImputeStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if missing.Sales == nil || *missing.Sales != 0 {
		t.Errorf("imputed Sales = %v, want 0", missing.Sales)
	}
}

func TestImputeStep_DropPolicy(t *testing.T) {
	v := 99.0
	complete := rec(map[string]string{ColOrderID: "A"})
	complete.Sales, complete.Discount, complete.Profit = &v, &v, &v
	incomplete := rec(map[string]string{ColOrderID: "B"})

	state := newTestState(complete, incomplete)
	state.ImputePolicy = ImputeDrop

	if err := (&ImputeStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	if len(state.Records) != 1 || state.Records[0] != complete {
		t.Fatalf("got %d records, want only the complete one", len(state.Records))
	}
	if state.Report.DroppedUnparseable != 1 {
		t.Errorf("DroppedUnparseable = %d, want 1", state.Report.DroppedUnparseable)
	}
	if len(state.Rejected) != 1 || state.Rejected[0].Reason != ReasonUnparseableValue {
		t.Errorf("rejected = %+v, want one unparseable row", state.Rejected)
	}
	// quantity is filled before the drop check, never a drop reason
	if incomplete.Quantity == nil {
		t.Error("Quantity not filled before drop")
	}
}

func TestJoinStateStep(t *testing.T) {
	hit := rec(map[string]string{ColState: "Texas"})
	miss := rec(map[string]string{ColState: "Calfornia"})
	state := newTestState(hit, miss)

	if err := (&JoinStateStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	if hit.StateCode != "TX" {
		t.Errorf("StateCode = %q, want TX", hit.StateCode)
	}
	if miss.StateCode != "" {
		t.Errorf("misspelled state got code %q, want empty", miss.StateCode)
	}
	if state.Report.UnmatchedStates != 1 {
		t.Errorf("UnmatchedStates = %d, want 1", state.Report.UnmatchedStates)
	}
}

func TestShippingDaysStep(t *testing.T) {
	normal := rec(map[string]string{ColOrderDate: "2023-01-05", ColShipDate: "2023-01-08"})
	swapped := rec(map[string]string{ColOrderDate: "2023-01-10", ColShipDate: "2023-01-08"})
	noShip := rec(map[string]string{ColOrderDate: "2023-01-05"})
	state := newTestState(normal, swapped, noShip)

	if err := (&ParseDatesStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if err := (&ShippingDaysStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	if normal.ShippingDays == nil || *normal.ShippingDays != 3 {
		t.Errorf("ShippingDays = %v, want 3", normal.ShippingDays)
	}
	if swapped.ShippingDays == nil || *swapped.ShippingDays != -2 {
		t.Errorf("swapped ShippingDays = %v, want -2", swapped.ShippingDays)
	}
	if noShip.ShippingDays != nil {
		t.Error("ShippingDays set without a ship date")
	}
	if state.Report.NegativeShippingDays != 1 {
		t.Errorf("NegativeShippingDays = %d, want 1", state.Report.NegativeShippingDays)
	}
}

func TestFlagOutliersStep(t *testing.T) {
	mk := func(v float64) *Record {
		r := rec(map[string]string{})
		r.Sales = &v
		return r
	}
	records := []*Record{mk(1), mk(2), mk(3), mk(4), mk(100)}
	state := newTestState(records...)

	if err := (&FlagOutliersStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	for i, r := range records[:4] {
		if r.SalesOutlier == nil || *r.SalesOutlier {
			t.Errorf("record %d flagged, want false", i)
		}
	}
	if records[4].SalesOutlier == nil || !*records[4].SalesOutlier {
		t.Error("extreme value not flagged")
	}
	if state.Report.SalesOutliers != 1 {
		t.Errorf("SalesOutliers = %d, want 1", state.Report.SalesOutliers)
	}
}

func TestFlagOutliersStep_TooFewValues(t *testing.T) {
	mk := func(v float64) *Record {
		r := rec(map[string]string{})
		r.Sales = &v
		return r
	}
	records := []*Record{mk(1), mk(2), mk(1000)}
	state := newTestState(records...)

	if err := (&FlagOutliersStep{}).Execute(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	for i, r := range records {
		if r.SalesOutlier == nil || *r.SalesOutlier {
			t.Errorf("record %d flagged with fewer than 4 values", i)
		}
	}
	if state.Report.SalesOutliers != 0 {
		t.Errorf("SalesOutliers = %d, want 0", state.Report.SalesOutliers)
	}
}
