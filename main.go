package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/frame"
	"github.com/banshee-data/motion.report/internal/monitor"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/pipeline"
	"github.com/banshee-data/motion.report/internal/sim"
	"github.com/banshee-data/motion.report/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to JSON tuning config")
	width      = flag.Int("width", 0, "Frame width (overrides config)")
	height     = flag.Int("height", 0, "Frame height (overrides config)")
	rate       = flag.Int("rate", 0, "Frames per second (overrides config)")
	capacity   = flag.Int("capacity", -1, "Relay queue capacity (overrides config)")
	seed       = flag.Int64("seed", 0, "Source RNG seed (0 = from clock)")
	duration   = flag.Duration("duration", 0, "Run duration (0 = until signal)")
	plotDir    = flag.String("plots", "", "Directory for PNG run plots (empty = disabled)")
	heatmapOut = flag.String("heatmap", "", "Path for HTML match heatmap (empty = disabled)")
	quiet      = flag.Bool("quiet", false, "Suppress frame display")
	debug      = flag.Bool("debug", false, "Enable per-frame debug logging to stderr")
	showVer    = flag.Bool("version", false, "Print version information and exit")
)

// graph bundles the wired pipeline so main and tests share one construction
// path. The topology mirrors the classic detector setup: the relay decouples
// the (comparatively) expensive matcher from the display branch.
//
//	source ──→ relay ──→ matcher ──→ heat tap
//	     └───→ sampler
//	     └───→ display (optional)
type graph struct {
	source   *sim.Source
	relay    *pipeline.BoundedRelay
	matcher  *pipeline.PatternMatcher
	recorder *monitor.Recorder
}

// buildGraph wires the stage graph exactly once. displayOut may be nil to
// skip the display branch.
func buildGraph(cfg *config.TuningConfig, displayOut io.Writer) *graph {
	pat := frame.DefaultPattern()
	if len(cfg.Pattern) > 0 {
		pat = frame.NewPattern(cfg.Pattern)
	}

	source := sim.NewSource(sim.SourceConfig{
		Width:     cfg.GetFrameWidth(),
		Height:    cfg.GetFrameHeight(),
		FrameRate: cfg.GetFrameRate(),
		Seed:      cfg.GetSourceSeed(),
	})
	relay := pipeline.NewBoundedRelay("detector", cfg.GetRelayCapacity())
	matcher := pipeline.NewPatternMatcher(pat)
	recorder := monitor.NewRecorder()

	source.Link(relay).Link(matcher).Link(pipeline.NewStageFunc(recorder.AccumulateHeat))

	source.Link(pipeline.NewStageFunc(func(f *frame.Frame) {
		st := relay.Stats()
		recorder.Sample(relay.QueueDepth(), st.Dropped, matcher.Matches(), f.ForegroundDensity())
	}))

	if displayOut != nil {
		source.Link(sim.NewDisplay(displayOut))
	}

	return &graph{source: source, relay: relay, matcher: matcher, recorder: recorder}
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("motion.report %s (commit %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	// Flag overrides take precedence over the config file.
	if *width > 0 {
		cfg.FrameWidth = width
	}
	if *height > 0 {
		cfg.FrameHeight = height
	}
	if *rate > 0 {
		cfg.FrameRate = rate
	}
	if *capacity >= 0 {
		cfg.RelayCapacity = capacity
	}
	if *seed != 0 {
		cfg.SourceSeed = seed
	}

	if *debug {
		monitoring.SetDebugWriter(os.Stderr)
	}

	var displayOut io.Writer
	if !*quiet && cfg.GetDisplay() {
		displayOut = os.Stdout
	}

	g := buildGraph(cfg, displayOut)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runFor := *duration
	if runFor == 0 {
		runFor = cfg.GetRunDuration()
	}
	if runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runFor)
		defer cancel()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.source.Run(ctx)
	}()

	<-ctx.Done()

	// Shutdown ordering: the producer exits first, then every relay is
	// stopped (flag set, worker joined) before the stages it references go
	// away with the process.
	wg.Wait()
	stopStart := time.Now()
	g.relay.Stop()
	g.recorder.Stop()
	log.Printf("relay stopped in %v", time.Since(stopStart))

	sum := g.recorder.Summary()
	st := g.relay.Stats()
	log.Printf("run complete: frames=%d matches=%d relay pushed=%d forwarded=%d dropped=%d mean_queue=%.2f mean_density=%.3f",
		sum.Frames, sum.Matches, st.Pushed, st.Forwarded, st.Dropped, sum.MeanQueueDepth, sum.MeanDensity)

	if *plotDir != "" {
		n, err := g.recorder.GeneratePlots(*plotDir)
		if err != nil {
			log.Printf("plot generation failed: %v", err)
		} else {
			log.Printf("wrote %d plots to %s", n, *plotDir)
		}
	}
	if *heatmapOut != "" {
		if err := g.recorder.WriteHeatmap(*heatmapOut); err != nil {
			log.Printf("heatmap generation failed: %v", err)
		} else {
			log.Printf("wrote match heatmap to %s", *heatmapOut)
		}
	}
}
