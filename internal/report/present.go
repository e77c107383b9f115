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
	"math"
	"path/filepath"

	"github.com/spf13/cast"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"

	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
	"github.com/pgEdge/pgedge-ecomstats/internal/termui"
)

// presenter prints or charts one query's frame.
type presenter func(r *Reporter, q Query, f *Frame) error

func printHead(n int) presenter {
	return func(r *Reporter, q Query, f *Frame) error {
		r.title(q)
		f.Head(n).Render(r.out)
		return nil
	}
}

func printAll() presenter {
	return printHead(-1)
}

func printScalar(label string) presenter {
	return func(r *Reporter, q Query, f *Frame) error {
		fmt.Fprintln(r.out, label, FormatValue(f.Value()))
		return nil
	}
}

func presentCustomersByState(r *Reporter, q Query, f *Frame) error {
	sorted, err := f.SortBy("Customer_Count", true)
	if err != nil {
		return err
	}
	if !r.opts.Charts {
		return printAll()(r, q, sorted)
	}

	names, err := sorted.Strings("State")
	if err != nil {
		return err
	}
	values, err := sorted.Floats("Customer_Count")
	if err != nil {
		return err
	}
	return r.chart(q, func(path string) error {
		return saveBarChart(path, barSpec{
			Title:  "Count of Customers by States",
			XLabel: "States",
			YLabel: "Customer Count",
			Names:  names,
			Values: values,
			Color:  barBlue,
		})
	})
}

// MonthlyCounts arranges month/count rows in calendar order with zero for
// months that have no rows.
func MonthlyCounts(f *Frame) ([]float64, error) {
	months, err := f.Strings("Months")
	if err != nil {
		return nil, err
	}
	counts, err := f.Floats("Order_Count")
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]float64, len(months))
	for i, m := range months {
		byMonth[m] = counts[i]
	}
	out := make([]float64, len(monthNames))
	for i, m := range monthNames {
		out[i] = byMonth[m]
	}
	return out, nil
}

func presentMonthlyOrders(r *Reporter, q Query, f *Frame) error {
	counts, err := MonthlyCounts(f)
	if err != nil {
		return err
	}
	if !r.opts.Charts {
		rows := make([][]any, len(monthNames))
		for i, m := range monthNames {
			rows[i] = []any{m, int64(counts[i])}
		}
		return printAll()(r, q, &Frame{Columns: f.Columns, Rows: rows})
	}

	return r.chart(q, func(path string) error {
		return saveBarChart(path, barSpec{
			Title:  "Count of Orders by Month in 2018",
			XLabel: "Months",
			YLabel: "Order_Count",
			Names:  monthNames,
			Values: counts,
			Color:  barRed,
			Labels: true,
		})
	})
}

// Correlation returns the Pearson correlation of order count and price,
// or NaN with fewer than two categories.
func Correlation(f *Frame) (float64, error) {
	counts, err := f.Floats("Order_Count")
	if err != nil {
		return 0, err
	}
	prices, err := f.Floats("Price")
	if err != nil {
		return 0, err
	}
	if len(counts) < 2 {
		return math.NaN(), nil
	}
	return stat.Correlation(counts, prices, nil), nil
}

func presentCorrelation(r *Reporter, q Query, f *Frame) error {
	corr, err := Correlation(f)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Correlation between order count and price:", FormatValue(corr))
	return nil
}

func presentTopSellers(r *Reporter, q Query, f *Frame) error {
	top := f.Head(10)
	if !r.opts.Charts {
		return printAll()(r, q, top)
	}

	names, err := top.Strings("Seller_ID")
	if err != nil {
		return err
	}
	values, err := top.Floats("Revenue")
	if err != nil {
		return err
	}
	return r.chart(q, func(path string) error {
		return saveBarChart(path, barSpec{
			Title:  "Top Sellers by Revenue",
			XLabel: "Seller_ID",
			YLabel: "Revenue",
			Names:  names,
			Values: values,
			Color:  barBlue,
		})
	})
}

// CumulativeSeries groups cumulative sales rows into one series per year.
func CumulativeSeries(f *Frame) ([]yearSeries, error) {
	yi, err := f.Index("Year")
	if err != nil {
		return nil, err
	}
	months, err := f.Floats("Month_Num")
	if err != nil {
		return nil, err
	}
	sales, err := f.Floats("Cumulative_Sales")
	if err != nil {
		return nil, err
	}

	var series []yearSeries
	index := make(map[int64]int)
	for i, row := range f.Rows {
		year, err := cast.ToInt64E(row[yi])
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", "Year", i+1, err)
		}
		pos, ok := index[year]
		if !ok {
			pos = len(series)
			index[year] = pos
			series = append(series, yearSeries{Year: year})
		}
		series[pos].Points = append(series[pos].Points, plotter.XY{X: months[i], Y: sales[i]})
	}
	return series, nil
}

func presentCumulativeSales(r *Reporter, q Query, f *Frame) error {
	if err := printHead(12)(r, q, f); err != nil {
		return err
	}
	if !r.opts.Charts {
		return nil
	}

	series, err := CumulativeSeries(f)
	if err != nil {
		return err
	}
	return r.chart(q, func(path string) error {
		return saveCumulativeChart(path, series)
	})
}

func (r *Reporter) title(q Query) {
	fmt.Fprintln(r.out, termui.TitleStyle.Render(q.Description))
}

func (r *Reporter) chart(q Query, save func(path string) error) error {
	path := filepath.Join(r.opts.OutputDir, q.Chart)
	if err := save(path); err != nil {
		return err
	}
	logging.Info().
		Str("query", q.Name).
		Str("path", path).
		Msg("Chart written")
	fmt.Fprintln(r.out, termui.SubtitleStyle.Render(fmt.Sprintf("%s: wrote %s", q.Description, path)))
	return nil
}
