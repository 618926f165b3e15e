package graphing

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func baseOptions(title, unit string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: unit}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	}
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

// createLineChart plots a single series without a legend.
func createLineChart(s *Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions(s.Name, s.Unit),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)...)
	line.SetXAxis(s.Labels).AddSeries(s.Name, lineData(s.Values),
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}),
	)
	return line
}

// createMultiLineChart plots raw values of several series on one axis.
func createMultiLineChart(title, unit string, labels []string, series []*Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions(title, unit),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(series) > 1), Top: "30px"}),
	)...)
	line.SetXAxis(labels)
	for _, s := range series {
		line.AddSeries(s.Name, lineData(s.Values),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
	}
	return line
}

// createRateChart plots the per-second deltas of cumulative series.
func createRateChart(title, unit string, labels []string, series []*Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions(title, unit),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
	)...)
	line.SetXAxis(labels)
	for _, s := range series {
		line.AddSeries(s.Name, lineData(s.Deltas),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.2)}),
		)
	}
	return line
}
