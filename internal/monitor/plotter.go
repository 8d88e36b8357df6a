package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// GeneratePlots writes PNG time-series plots of queue depth, cumulative
// drops/matches and foreground density into outputDir, creating it if
// needed. Returns the number of plots written.
func (r *Recorder) GeneratePlots(outputDir string) (int, error) {
	samples := r.Samples()
	if len(samples) == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	depthPts := make(plotter.XYs, 0, len(samples))
	dropPts := make(plotter.XYs, 0, len(samples))
	matchPts := make(plotter.XYs, 0, len(samples))
	densityPts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		x := float64(s.FrameIdx)
		depthPts = append(depthPts, plotter.XY{X: x, Y: float64(s.QueueDepth)})
		dropPts = append(dropPts, plotter.XY{X: x, Y: float64(s.Dropped)})
		matchPts = append(matchPts, plotter.XY{X: x, Y: float64(s.Matches)})
		densityPts = append(densityPts, plotter.XY{X: x, Y: s.Density})
	}

	plots := []struct {
		title string
		yaxis string
		file  string
		pts   plotter.XYs
	}{
		{"Relay Queue Depth", "Frames queued", "queue_depth.png", depthPts},
		{"Cumulative Dropped Frames", "Dropped", "dropped.png", dropPts},
		{"Cumulative Pattern Matches", "Matches", "matches.png", matchPts},
		{"Foreground Density", "Density", "density.png", densityPts},
	}

	count := 0
	for _, spec := range plots {
		p := plot.New()
		p.Title.Text = spec.title
		p.X.Label.Text = "Frame"
		p.Y.Label.Text = spec.yaxis

		line, err := plotter.NewLine(spec.pts)
		if err != nil {
			return count, fmt.Errorf("%s: %w", spec.file, err)
		}
		line.Width = vg.Points(1)
		p.Add(line)

		out := filepath.Join(outputDir, spec.file)
		if err := p.Save(10*vg.Inch, 4*vg.Inch, out); err != nil {
			return count, fmt.Errorf("save %s: %w", spec.file, err)
		}
		count++
	}

	return count, nil
}
