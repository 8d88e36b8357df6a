package monitor

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHeatmap renders the accumulated match-density grid as a colored
// scatter (one point per cell, value = frames in which that cell was
// marked) into an HTML file at path. Returns an error if no heat data has
// been accumulated.
func (r *Recorder) WriteHeatmap(path string) error {
	w, h, heat, frames := r.heatSnapshot()
	if frames == 0 || w == 0 || h == 0 {
		return fmt.Errorf("no match heat data accumulated")
	}

	data := make([]opts.ScatterData, 0, w*h)
	maxHits := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hits := heat[y][x]
			if hits > maxHits {
				maxHits = hits
			}
			// Flip y so row 0 renders at the top, matching console output.
			data = append(data, opts.ScatterData{Value: []interface{}{x, h - 1 - y, hits}})
		}
	}
	if maxHits == 0 {
		maxHits = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Match Density", Theme: "dark", Width: "800px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pattern Match Density", Subtitle: fmt.Sprintf("%dx%d grid over %d frames", w, h, frames)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -1, Max: w, Name: "X"}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: h, Name: "Y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxHits),
		}),
	)
	scatter.AddSeries("marked", data)

	page := components.NewPage()
	page.AddCharts(scatter)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heatmap file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
