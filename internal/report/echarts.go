package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/groundshift-data/terrain.report/internal/dod"
	"github.com/groundshift-data/terrain.report/internal/transect"
)

// RenderChangeScatterHTML renders the significant cells of a change surface
// as a standalone HTML scatter chart, coloured by change value. Cells masked
// by the significance filter are simply absent, which is the point of the
// picture: what survives the threshold.
func RenderChangeScatterHTML(w io.Writer, title string, cg *dod.ChangeGrid) error {
	g := cg.Change
	data := make([]opts.ScatterData, 0, g.ValidCount())
	var maxAbs float64
	for j := 0; j < g.Height(); j++ {
		for i := 0; i < g.Width(); i++ {
			v, ok := g.Value(i, j)
			if !ok {
				continue
			}
			if a := abs(v); a > maxAbs {
				maxAbs = a
			}
			x, y := g.CellCenter(i, j)
			data = append(data, opts.ScatterData{Value: []interface{}{x, y, v}})
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("significant cells=%d threshold=%g", len(data), cg.Threshold),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(-maxAbs),
			Max:        float32(maxAbs),
			Dimension:  "2",
			// Blue for cut, through white, to red for fill.
			InRange: &opts.VisualMapInRange{Color: []string{"#313695", "#74add1", "#e0f3f8", "#ffffff", "#fdae61", "#f46d43", "#a50026"}},
		}),
	)
	scatter.AddSeries("change", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	return scatter.Render(w)
}

// RenderProfileHTML renders a cross-section as a standalone HTML line chart
// with elevation and change series. Invalid samples become nulls so the
// chart shows gaps rather than interpolating across them.
func RenderProfileHTML(w io.Writer, name string, p transect.Profile) error {
	stations := make([]string, len(p))
	older := make([]opts.LineData, len(p))
	newer := make([]opts.LineData, len(p))
	change := make([]opts.LineData, len(p))
	for k, s := range p {
		stations[k] = fmt.Sprintf("%.2f", s.Station)
		older[k] = lineValue(s.ElevationOlder, s.OlderValid)
		newer[k] = lineValue(s.ElevationNewer, s.NewerValid)
		change[k] = lineValue(s.Change, s.ChangeValid)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: name, Width: "1100px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: fmt.Sprintf("stations=%d", len(p))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Station (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "m"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(stations).
		AddSeries("older", older).
		AddSeries("newer", newer).
		AddSeries("change", change)

	return line.Render(w)
}

func lineValue(v float64, ok bool) opts.LineData {
	if !ok {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: v}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
