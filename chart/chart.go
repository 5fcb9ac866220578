// Package chart draws portfolio reports as PNG charts.
package chart

import (
	"errors"
	"fmt"

	"github.com/etnz/allocation"
	charts "github.com/vicanso/go-charts/v2"
)

// ErrNoData is returned when a report has nothing to draw.
var ErrNoData = errors.New("nothing to draw")

const (
	width  = 800
	height = 600
)

// slice is one labeled value of a chart.
type slice struct {
	label string
	value float64
}

// weights sums the known positive actual weights per ticker, in report order.
func weights(r *allocation.Report) []slice {
	var list []slice
	index := make(map[string]int)
	for _, row := range r.Rows {
		w, ok := row.ActualWeight.Float64()
		if !ok || w <= 0 {
			continue
		}
		t := row.Holding.Ticker
		if i, seen := index[t]; seen {
			list[i].value += w
			continue
		}
		index[t] = len(list)
		list = append(list, slice{label: t, value: w})
	}
	return list
}

// deviations returns the known deviations, one per holding.
func deviations(r *allocation.Report) []slice {
	var list []slice
	for _, row := range r.Rows {
		d, ok := row.Deviation.Float64()
		if !ok {
			continue
		}
		label := row.Holding.Ticker
		if row.Holding.Account != "" {
			label = row.Holding.Account + " " + label
		}
		list = append(list, slice{label: label, value: d})
	}
	return list
}

// Allocation renders the actual weights as a pie chart.
func Allocation(r *allocation.Report) ([]byte, error) {
	list := weights(r)
	if len(list) == 0 {
		return nil, ErrNoData
	}
	values := make([]float64, len(list))
	labels := make([]string, len(list))
	for i, s := range list {
		values[i] = s.value
		labels[i] = fmt.Sprintf("%s (%.1f%%)", s.label, s.value)
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(fmt.Sprintf("Allocation (%s)", r.Base)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate allocation chart bytes: %w", err)
	}
	return buf, nil
}

// Deviation renders the deviations from target as a bar chart, in
// percentage points.
func Deviation(r *allocation.Report) ([]byte, error) {
	list := deviations(r)
	if len(list) == 0 {
		return nil, ErrNoData
	}
	values := make([]float64, len(list))
	labels := make([]string, len(list))
	for i, s := range list {
		values[i] = s.value
		labels[i] = s.label
	}

	threshold, _ := r.Threshold.Float64()
	p, err := charts.BarRender(
		[][]float64{values},
		charts.TitleTextOptionFunc("Deviation from target", fmt.Sprintf("threshold ±%.2f%%", threshold)),
		charts.XAxisDataOptionFunc(labels),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render deviation chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate deviation chart bytes: %w", err)
	}
	return buf, nil
}
