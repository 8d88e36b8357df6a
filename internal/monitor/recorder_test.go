package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/motion.report/internal/frame"
	"github.com/banshee-data/motion.report/internal/testutil"
)

func TestSummaryStatistics(t *testing.T) {
	r := NewRecorder()
	r.Sample(0, 0, 0, 0.2)
	r.Sample(2, 1, 1, 0.4)
	r.Sample(4, 3, 2, 0.6)

	s := r.Summary()
	if s.Frames != 3 {
		t.Fatalf("frames = %d, want 3", s.Frames)
	}
	if s.Dropped != 3 || s.Matches != 2 {
		t.Fatalf("cumulative counters = dropped %d matches %d, want 3 and 2", s.Dropped, s.Matches)
	}
	if s.MeanQueueDepth != 2.0 {
		t.Fatalf("mean queue depth = %v, want 2.0", s.MeanQueueDepth)
	}
	if s.MeanDensity < 0.399 || s.MeanDensity > 0.401 {
		t.Fatalf("mean density = %v, want 0.4", s.MeanDensity)
	}
	if s.StdQueueDepth != 2.0 {
		t.Fatalf("queue depth stddev = %v, want 2.0", s.StdQueueDepth)
	}
}

func TestSummaryEmpty(t *testing.T) {
	r := NewRecorder()
	s := r.Summary()
	if s.Frames != 0 || s.MeanQueueDepth != 0 {
		t.Fatalf("empty summary = %+v", s)
	}
}

func TestStopHaltsSampling(t *testing.T) {
	r := NewRecorder()
	r.Sample(1, 0, 0, 0.1)
	r.Stop()
	r.Sample(2, 0, 0, 0.2)
	if got := r.Summary().Frames; got != 1 {
		t.Fatalf("frames after stop = %d, want 1", got)
	}
}

func TestAccumulateHeat(t *testing.T) {
	r := NewRecorder()

	f := frame.New(4, 3)
	f.Cells[1][2] = frame.CellMarked
	r.AccumulateHeat(f)
	r.AccumulateHeat(f)

	// A frame of a different size is ignored.
	r.AccumulateHeat(frame.New(2, 2))

	w, h, heat, frames := r.heatSnapshot()
	if w != 4 || h != 3 || frames != 2 {
		t.Fatalf("heat = %dx%d over %d frames, want 4x3 over 2", w, h, frames)
	}
	if heat[1][2] != 2 {
		t.Fatalf("heat[1][2] = %d, want 2", heat[1][2])
	}
	if heat[0][0] != 0 {
		t.Fatalf("heat[0][0] = %d, want 0", heat[0][0])
	}
}

func TestGeneratePlotsWritesFiles(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 10; i++ {
		r.Sample(i%3, uint64(i), uint64(i/2), float64(i)/10)
	}

	dir := t.TempDir()
	n, err := r.GeneratePlots(filepath.Join(dir, "plots"))
	testutil.AssertNoError(t, err)
	if n != 4 {
		t.Fatalf("generated %d plots, want 4", n)
	}
	for _, name := range []string{"queue_depth.png", "dropped.png", "matches.png", "density.png"} {
		if _, err := os.Stat(filepath.Join(dir, "plots", name)); err != nil {
			t.Errorf("missing plot %s: %v", name, err)
		}
	}
}

func TestGeneratePlotsNoSamples(t *testing.T) {
	r := NewRecorder()
	n, err := r.GeneratePlots(t.TempDir())
	testutil.AssertNoError(t, err)
	if n != 0 {
		t.Fatalf("generated %d plots from no samples, want 0", n)
	}
}

func TestWriteHeatmap(t *testing.T) {
	r := NewRecorder()
	f := frame.New(5, 5)
	f.Cells[2][2] = frame.CellMarked
	r.AccumulateHeat(f)

	path := filepath.Join(t.TempDir(), "heatmap.html")
	testutil.AssertNoError(t, r.WriteHeatmap(path))

	info, err := os.Stat(path)
	testutil.AssertNoError(t, err)
	if info.Size() == 0 {
		t.Fatal("heatmap file is empty")
	}
}

func TestWriteHeatmapNoData(t *testing.T) {
	r := NewRecorder()
	err := r.WriteHeatmap(filepath.Join(t.TempDir(), "heatmap.html"))
	testutil.AssertError(t, err)
}
