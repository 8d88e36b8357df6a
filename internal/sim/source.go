// Package sim provides the pipeline's external collaborators: a synthetic
// frame source that generates random two-colour frames on a fixed cadence,
// and a console display sink.
package sim

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/banshee-data/motion.report/internal/frame"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/pipeline"
	"github.com/banshee-data/motion.report/internal/timeutil"
)

// SourceConfig configures a synthetic frame source.
type SourceConfig struct {
	Width     int            // frame width (default 20)
	Height    int            // frame height (default 25)
	FrameRate int            // frames per second (default 1)
	Seed      int64          // RNG seed; 0 seeds from the clock
	Clock     timeutil.Clock // cadence clock; nil means timeutil.RealClock
}

// Source generates random frames of {0,1} cells and forwards each to its
// downstream stages. The RNG is instance-seeded so the pipeline stays
// deterministic under a fixed seed and independently testable.
type Source struct {
	pipeline.BaseStage
	width    int
	height   int
	interval time.Duration
	clock    timeutil.Clock
	rng      *rand.Rand

	seq       atomic.Int64
	generated atomic.Uint64
}

// NewSource creates a source with defaults filled in for zero-value fields.
func NewSource(cfg SourceConfig) *Source {
	if cfg.Width == 0 {
		cfg.Width = 20
	}
	if cfg.Height == 0 {
		cfg.Height = 25
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Source{
		width:    cfg.Width,
		height:   cfg.Height,
		interval: time.Second / time.Duration(cfg.FrameRate),
		clock:    cfg.Clock,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Process for a source just pushes the frame downstream; sources sit at the
// head of a graph and are not normally linked as a downstream themselves.
func (s *Source) Process(f *frame.Frame) {
	s.Forward(f)
}

// Generate produces one random frame. Each cell is independently 0 or 1.
func (s *Source) Generate() *frame.Frame {
	f := frame.New(s.width, s.height)
	f.Seq = s.seq.Add(1)
	for y := range f.Cells {
		for x := range f.Cells[y] {
			f.Cells[y][x] = uint8(s.rng.Intn(2))
		}
	}
	s.generated.Add(1)
	return f
}

// Run generates frames on the configured cadence until ctx is cancelled.
// Each frame is delivered depth-first to the downstream graph on this
// goroutine before the next tick is awaited.
func (s *Source) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		f := s.Generate()
		monitoring.Debugf("[source] generated frame seq=%d %dx%d", f.Seq, f.Width, f.Height)
		s.Forward(f)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}
	}
}

// Generated returns the number of frames produced so far.
func (s *Source) Generated() uint64 { return s.generated.Load() }
