package renderer

import (
	"cmp"
	"slices"

	"github.com/etnz/allocation"
)

// Report is the data of the markdown report: the valuation together with
// the FX table it was computed with.
type Report struct {
	Base      string
	Threshold allocation.Value
	Totals    allocation.Totals
	Rows      []allocation.Row
	FX        []Rate
	Stats     allocation.Stats
}

// Rate is one line of the FX table.
type Rate struct {
	Currency string
	Rate     allocation.Value
}

// NewReport gathers everything the report needs.
func NewReport(r *allocation.Report, fx *allocation.FXTable, stats allocation.Stats) *Report {
	rep := &Report{
		Base:      r.Base,
		Threshold: r.Threshold,
		Totals:    r.Totals,
		Rows:      r.Rows,
		Stats:     stats,
	}
	for _, cur := range fx.Currencies() {
		rate, _ := fx.Rate(cur)
		rep.FX = append(rep.FX, Rate{Currency: cur, Rate: rate})
	}
	return rep
}

// Deviations returns the rows with a known deviation, largest first.
func (r *Report) Deviations() []allocation.Row {
	var rows []allocation.Row
	for _, row := range r.Rows {
		if row.Deviation.Known() {
			rows = append(rows, row)
		}
	}
	slices.SortStableFunc(rows, func(a, b allocation.Row) int {
		da, _ := a.Deviation.Float64()
		db, _ := b.Deviation.Float64()
		return cmp.Compare(abs(db), abs(da))
	})
	return rows
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
