// Package vrpplot renders rollout diagnostics as HTML
// charts.
package vrpplot

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CostHistory writes a line chart of the mean and minimum
// episode cost at each step.
//
// history[t][i] is the cost of episode i after step t,
// as in anyvrp.RolloutResult.History.
// Histories from consecutive windows can simply be
// concatenated.
func CostHistory(w io.Writer, title string, history [][]float64) (err error) {
	defer essentials.AddCtxTo("plot cost history", &err)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)

	steps := make([]string, len(history))
	meanItems := make([]opts.LineData, len(history))
	minItems := make([]opts.LineData, len(history))
	for t, costs := range history {
		steps[t] = strconv.Itoa(t)
		mean, lowest := summarize(costs)
		meanItems[t] = opts.LineData{Value: mean}
		minItems[t] = opts.LineData{Value: lowest}
	}

	line.SetXAxis(steps).
		AddSeries("mean cost", meanItems).
		AddSeries("min cost", minItems)

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

func summarize(costs []float64) (mean, lowest float64) {
	if len(costs) == 0 {
		return 0, 0
	}
	return stat.Mean(costs, nil), floats.Min(costs)
}
