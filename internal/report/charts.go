//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	barBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	barRed  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// monthNames is calendar order, matching the database's month names.
var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthAbbrev = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// barSpec describes a categorical bar chart.
type barSpec struct {
	Title  string
	XLabel string
	YLabel string
	Names  []string
	Values []float64
	Color  color.Color

	// Labels draws each bar's value above it.
	Labels bool
}

// saveBarChart renders a bar chart to path at 10x4 inches.
func saveBarChart(path string, chart barSpec) error {
	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel

	values := make(plotter.Values, len(chart.Values))
	for i, v := range chart.Values {
		if math.IsNaN(v) {
			v = 0
		}
		values[i] = v
	}

	// An empty result still produces the titled, labelled frame.
	if len(values) > 0 {
		if err := addBars(p, chart, values); err != nil {
			return err
		}
	}

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// addBars adds the bars, optional value labels and category ticks.
func addBars(p *plot.Plot, chart barSpec, values plotter.Values) error {
	width := 8 * vg.Inch / vg.Length(len(values))
	bars, err := plotter.NewBarChart(values, width)
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = chart.Color
	bars.LineStyle.Width = 0
	p.Add(bars)

	if chart.Labels {
		xys := make(plotter.XYs, len(values))
		labels := make([]string, len(values))
		for i, v := range values {
			xys[i] = plotter.XY{X: float64(i), Y: v}
			labels[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return fmt.Errorf("failed to build bar labels: %w", err)
		}
		for i := range l.TextStyle {
			l.TextStyle[i].XAlign = draw.XCenter
		}
		l.Offset = vg.Point{Y: vg.Points(2)}
		p.Add(l)
	}

	p.NominalX(chart.Names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return nil
}

// yearSeries is one year's cumulative sales by month number.
type yearSeries struct {
	Year   int64
	Points plotter.XYs
}

// saveCumulativeChart renders one line per year over Jan..Dec at 12x5
// inches.
func saveCumulativeChart(path string, series []yearSeries) error {
	p := plot.New()
	p.Title.Text = "Cumulative Sales per Month by Year"
	p.X.Label.Text = "Months"
	p.Y.Label.Text = "Cumulative Sales"
	p.Legend.Top = true

	ticks := make([]plot.Tick, len(monthAbbrev))
	for i, m := range monthAbbrev {
		ticks[i] = plot.Tick{Value: float64(i + 1), Label: m}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Min = 1
	p.X.Max = 12

	sort.Slice(series, func(a, b int) bool { return series[a].Year < series[b].Year })
	lines := make([]any, 0, 2*len(series))
	for _, s := range series {
		pts := make(plotter.XYs, len(s.Points))
		copy(pts, s.Points)
		sort.Slice(pts, func(a, b int) bool { return pts[a].X < pts[b].X })
		lines = append(lines, strconv.FormatInt(s.Year, 10), pts)
	}
	if len(lines) > 0 {
		if err := plotutil.AddLinePoints(p, lines...); err != nil {
			return fmt.Errorf("failed to build line chart: %w", err)
		}
	}

	if err := p.Save(12*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}
