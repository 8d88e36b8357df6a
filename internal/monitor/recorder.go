// Package monitor records per-frame pipeline telemetry during a run and
// turns it into summary statistics, PNG time-series plots and an HTML
// match-density heatmap.
package monitor

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motion.report/internal/frame"
)

// Sample is one per-frame snapshot of pipeline state, captured on the
// driver goroutine as each frame leaves the source.
type Sample struct {
	FrameIdx   int
	Timestamp  time.Time
	QueueDepth int     // relay queue depth at sample time
	Dropped    uint64  // cumulative relay drops
	Matches    uint64  // cumulative matcher hits
	Density    float64 // foreground density of the sampled frame
}

// Summary aggregates a run's samples.
type Summary struct {
	Frames         int
	Dropped        uint64
	Matches        uint64
	MeanQueueDepth float64
	StdQueueDepth  float64
	MeanDensity    float64
	StdDensity     float64
}

// Recorder accumulates samples and a match-density heat grid. All methods
// are safe for concurrent use; sampling typically happens on the driver
// goroutine while heat accumulation happens on a relay worker.
type Recorder struct {
	mu        sync.Mutex
	enabled   bool
	startTime time.Time
	frameIdx  int
	samples   []Sample

	// heat counts, per cell, how many frames had that cell marked
	heatW, heatH int
	heat         [][]int
	heatFrames   int
}

// NewRecorder creates an enabled recorder.
func NewRecorder() *Recorder {
	return &Recorder{enabled: true}
}

// Stop disables further sampling. Existing samples are retained for
// Summary, GeneratePlots and WriteHeatmap.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = false
}

// Sample records one per-frame snapshot.
func (r *Recorder) Sample(queueDepth int, dropped, matches uint64, density float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		return
	}
	now := time.Now()
	if r.startTime.IsZero() {
		r.startTime = now
	}
	r.frameIdx++
	r.samples = append(r.samples, Sample{
		FrameIdx:   r.frameIdx,
		Timestamp:  now,
		QueueDepth: queueDepth,
		Dropped:    dropped,
		Matches:    matches,
		Density:    density,
	})
}

// AccumulateHeat folds a processed frame's marked cells into the heat grid.
// The grid dimensions are taken from the first frame seen; frames of a
// different size are ignored.
func (r *Recorder) AccumulateHeat(f *frame.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled || f == nil {
		return
	}
	if r.heat == nil {
		r.heatW, r.heatH = f.Width, f.Height
		r.heat = make([][]int, f.Height)
		for y := range r.heat {
			r.heat[y] = make([]int, f.Width)
		}
	}
	if f.Width != r.heatW || f.Height != r.heatH {
		return
	}
	r.heatFrames++
	for y, row := range f.Cells {
		for x, v := range row {
			if v == frame.CellMarked {
				r.heat[y][x]++
			}
		}
	}
}

// Summary computes aggregate statistics over the recorded samples.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{Frames: len(r.samples)}
	if len(r.samples) == 0 {
		return s
	}

	last := r.samples[len(r.samples)-1]
	s.Dropped = last.Dropped
	s.Matches = last.Matches

	depths := make([]float64, len(r.samples))
	densities := make([]float64, len(r.samples))
	for i, smp := range r.samples {
		depths[i] = float64(smp.QueueDepth)
		densities[i] = smp.Density
	}
	s.MeanQueueDepth = stat.Mean(depths, nil)
	s.MeanDensity = stat.Mean(densities, nil)
	if len(r.samples) > 1 {
		s.StdQueueDepth = stat.StdDev(depths, nil)
		s.StdDensity = stat.StdDev(densities, nil)
	}
	return s
}

// Samples returns a copy of the recorded samples in order.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// heatSnapshot returns the heat grid dimensions, a deep copy of the counts
// and the number of frames folded in.
func (r *Recorder) heatSnapshot() (w, h int, heat [][]int, frames int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	heat = make([][]int, len(r.heat))
	for y, row := range r.heat {
		heat[y] = make([]int, len(row))
		copy(heat[y], row)
	}
	return r.heatW, r.heatH, heat, r.heatFrames
}
