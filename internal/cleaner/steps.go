package cleaner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/dataset"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/logger"
	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/lookup"
)

// Step is a single stage of the cleaning pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the shared state all steps read and mutate.
type State struct {
	Input         *dataset.Table
	Lookup        *lookup.Table
	ImputePolicy  string
	OutlierFactor float64

	Records  []*Record
	Rejected []RejectedRow
	Report   *RunReport
	Output   *dataset.Table
}

// ExtractStep projects the raw table onto the canonical input columns.
// Unknown extra columns are dropped here; expected columns missing from the
// header come through as all-missing.
type ExtractStep struct{}

func (s *ExtractStep) Execute(ctx context.Context, state *State) error {
	idx := state.Input.Index()
	state.Records = make([]*Record, 0, len(state.Input.Rows))
	for _, row := range state.Input.Rows {
		raw := make([]string, len(InputColumns))
		for i, col := range InputColumns {
			raw[i] = dataset.CleanCell(idx.Cell(row, col))
		}
		state.Records = append(state.Records, &Record{Raw: raw})
	}
	state.Report.RowsIn = len(state.Records)
	return nil
}

// ParseDatesStep parses order and ship dates. Unparseable values become
// missing; the row stays.
type ParseDatesStep struct{}

func (s *ParseDatesStep) Execute(ctx context.Context, state *State) error {
	for _, r := range state.Records {
		if t, ok := ParseDate(r.Cell(ColOrderDate)); ok {
			r.OrderDate = &t
		}
		if t, ok := ParseDate(r.Cell(ColShipDate)); ok {
			r.ShipDate = &t
		}
	}
	return nil
}

// DedupeStep removes exact duplicates across all input columns. The first
// occurrence wins and input order is preserved.
type DedupeStep struct{}

func (s *DedupeStep) Execute(ctx context.Context, state *State) error {
	seen := make(map[string]bool, len(state.Records))
	kept := state.Records[:0]
	for _, r := range state.Records {
		key := strings.Join(r.Raw, "\x1f")
		if seen[key] {
			state.Report.DuplicatesRemoved++
			state.Rejected = append(state.Rejected, RejectedRow{Reason: ReasonDuplicate, Raw: r.Raw})
			continue
		}
		seen[key] = true
		kept = append(kept, r)
	}
	state.Records = kept
	return nil
}

// DropMissingOrderDateStep removes rows without a parseable order date.
// Every later derivation hangs off that date, so the row is unusable.
type DropMissingOrderDateStep struct{}

func (s *DropMissingOrderDateStep) Execute(ctx context.Context, state *State) error {
	kept := state.Records[:0]
	for _, r := range state.Records {
		if r.OrderDate == nil {
			state.Report.MissingOrderDateDropped++
			state.Rejected = append(state.Rejected, RejectedRow{Reason: ReasonMissingOrderDate, Raw: r.Raw})
			continue
		}
		kept = append(kept, r)
	}
	state.Records = kept
	return nil
}

// CoerceNumericsStep parses the numeric columns. A present but unparseable
// value counts as a coercion failure; either way the field stays missing
// until imputation.
type CoerceNumericsStep struct{}

func (s *CoerceNumericsStep) Execute(ctx context.Context, state *State) error {
	for _, col := range NumericColumns {
		cc := state.Report.Column(col)
		for _, r := range state.Records {
			cell := r.Cell(col)
			if cell == "" {
				continue
			}
			v, ok := ParseNumber(cell)
			if !ok {
				cc.Failures++
				continue
			}
			*r.numeric(col) = &v
		}
	}
	return nil
}

// ImputeStep fills remaining missing numerics. Quantity is always 0: a
// transaction row implies at least an order happened, and 0 keeps sums
// honest. Other columns follow the configured policy: column median over the
// surviving rows (default), zero, or drop the row.
type ImputeStep struct{}

func (s *ImputeStep) Execute(ctx context.Context, state *State) error {
	qc := state.Report.Column(ColQuantity)
	for _, r := range state.Records {
		if r.Quantity == nil {
			zero := 0.0
			r.Quantity = &zero
			qc.Imputed++
			qc.FillValue = "0"
		}
	}

	policy := state.ImputePolicy
	if policy == "" {
		policy = ImputeMedian
	}

	if policy == ImputeDrop {
		kept := state.Records[:0]
		for _, r := range state.Records {
			if r.Sales == nil || r.Discount == nil || r.Profit == nil {
				state.Report.DroppedUnparseable++
				state.Rejected = append(state.Rejected, RejectedRow{Reason: ReasonUnparseableValue, Raw: r.Raw})
				continue
			}
			kept = append(kept, r)
		}
		state.Records = kept
		return nil
	}

	for _, col := range []string{ColSales, ColDiscount, ColProfit} {
		fill := 0.0
		if policy == ImputeMedian {
			var present []float64
			for _, r := range state.Records {
				if v := *r.numeric(col); v != nil {
					present = append(present, *v)
				}
			}
			if med, ok := Median(present); ok {
				fill = med
			}
		}

		cc := state.Report.Column(col)
		for _, r := range state.Records {
			field := r.numeric(col)
			if *field == nil {
				v := fill
				*field = &v
				cc.Imputed++
				cc.FillValue = FormatNumber(fill)
			}
		}
	}
	return nil
}

// JoinStateStep resolves the two-letter state code by exact lookup on the
// state name. A miss leaves the code empty; the row stays.
type JoinStateStep struct{}

func (s *JoinStateStep) Execute(ctx context.Context, state *State) error {
	for _, r := range state.Records {
		if st, ok := state.Lookup.Match(r.Cell(ColState)); ok {
			r.StateCode = st.Code
		} else {
			state.Report.UnmatchedStates++
		}
	}
	return nil
}

// ShippingDaysStep computes shipDate - orderDate in whole days when both are
// present. Negative durations are kept as-is and counted; they usually mean
// a data-entry swap upstream and the report surfaces them.
type ShippingDaysStep struct{}

func (s *ShippingDaysStep) Execute(ctx context.Context, state *State) error {
	for _, r := range state.Records {
		if r.OrderDate == nil || r.ShipDate == nil {
			continue
		}
		days := int(r.ShipDate.Sub(*r.OrderDate).Hours() / 24)
		r.ShippingDays = &days
		if days < 0 {
			state.Report.NegativeShippingDays++
		}
	}
	return nil
}

// FlagOutliersStep flags sales outside the IQR fences computed once over the
// final sales column. With fewer than 4 sales values there is no meaningful
// spread and every row is flagged false.
type FlagOutliersStep struct{}

func (s *FlagOutliersStep) Execute(ctx context.Context, state *State) error {
	factor := state.OutlierFactor
	if factor <= 0 {
		factor = DefaultOutlierFactor
	}

	var sales []float64
	for _, r := range state.Records {
		if r.Sales != nil {
			sales = append(sales, *r.Sales)
		}
	}

	lo, hi, ok := IQRBounds(sales, factor)
	for _, r := range state.Records {
		flag := false
		if ok && r.Sales != nil {
			flag = *r.Sales < lo || *r.Sales > hi
		}
		r.SalesOutlier = &flag
		if flag {
			state.Report.SalesOutliers++
		}
	}
	return nil
}

// BuildOutputStep renders the final table: canonical input columns with
// parsed values re-serialized, then the derived columns. Calendar fields are
// recomputed from the parsed order date, never trusted from the input.
type BuildOutputStep struct{}

func (s *BuildOutputStep) Execute(ctx context.Context, state *State) error {
	headers := make([]string, 0, len(InputColumns)+len(DerivedColumns))
	headers = append(headers, InputColumns...)
	headers = append(headers, DerivedColumns...)

	rows := make([][]string, 0, len(state.Records))
	for _, r := range state.Records {
		row := make([]string, 0, len(headers))
		for _, col := range InputColumns {
			row = append(row, renderInputCell(r, col))
		}
		row = append(row, renderDerived(r)...)
		rows = append(rows, row)
	}

	state.Output = &dataset.Table{Headers: headers, Rows: rows}
	state.Report.RowsOut = len(rows)
	return nil
}

func renderInputCell(r *Record, col string) string {
	switch col {
	case ColOrderDate:
		if r.OrderDate != nil {
			return FormatDate(*r.OrderDate)
		}
		return ""
	case ColShipDate:
		if r.ShipDate != nil {
			return FormatDate(*r.ShipDate)
		}
		return ""
	case ColSales, ColQuantity, ColDiscount, ColProfit:
		if v := *r.numeric(col); v != nil {
			return FormatNumber(*v)
		}
		return ""
	}
	return r.Cell(col)
}

func renderDerived(r *Record) []string {
	out := make([]string, 0, len(DerivedColumns))
	out = append(out, r.StateCode)

	od := *r.OrderDate
	out = append(out,
		strconv.Itoa(od.Year()),
		strconv.Itoa(int(od.Month())),
		od.Month().String(),
		od.Format("2006-01"),
		od.Weekday().String(),
	)

	if r.ShippingDays != nil {
		out = append(out, strconv.Itoa(*r.ShippingDays))
	} else {
		out = append(out, "")
	}

	if r.SalesOutlier != nil {
		out = append(out, strconv.FormatBool(*r.SalesOutlier))
	} else {
		out = append(out, "false")
	}
	return out
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d (%T) failed: %w", i+1, step, err)
		}
		log.Debug().Int("step", i+1).Str("type", fmt.Sprintf("%T", step)).
			Int("records", len(state.Records)).Msg("step complete")
	}
	return nil
}

// NewCleaningPipeline creates the standard step sequence for one cleaning run.
func NewCleaningPipeline() *Pipeline {
	return NewPipeline(
		&ExtractStep{},
		&ParseDatesStep{},
		&DedupeStep{},
		&DropMissingOrderDateStep{},
		&CoerceNumericsStep{},
		&ImputeStep{},
		&JoinStateStep{},
		&ShippingDaysStep{},
		&FlagOutliersStep{},
		&BuildOutputStep{},
	)
}
