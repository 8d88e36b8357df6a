// Package pipeline implements the frame-processing stage graph: the Stage
// contract, synchronous fan-out composition, the asynchronous BoundedRelay
// and the in-place PatternMatcher.
//
// A graph is wired once at startup by chaining Link calls and is read-only
// thereafter. Ordinary stages execute inline on whichever goroutine invokes
// them; a BoundedRelay hands frames to its own worker goroutine.
package pipeline

import "github.com/banshee-data/motion.report/internal/frame"

// Stage is a pipeline node. Process handles one frame; Forward pushes the
// frame to every linked downstream stage. A stage's Process must tolerate
// receiving the same frame more than once when the graph fans a frame out
// to multiple branches.
type Stage interface {
	// Process handles one frame on the calling goroutine.
	Process(f *frame.Frame)
	// Link registers next as an additional downstream of this stage and
	// returns next, so construction chains: a.Link(b).Link(c).
	Link(next Stage) Stage
	// Forward delivers f to every downstream in registration order.
	Forward(f *frame.Frame)
}

// BaseStage provides the shared Link/Forward behaviour. Concrete stages
// embed it and implement Process. The downstream list must not be mutated
// once the graph is live; Link is not safe for concurrent use.
type BaseStage struct {
	downstream []Stage
}

// Link appends next to the downstream list and returns it.
func (b *BaseStage) Link(next Stage) Stage {
	b.downstream = append(b.downstream, next)
	return next
}

// Forward invokes Process then Forward on each downstream in registration
// order: a deterministic depth-first traversal on the calling goroutine.
func (b *BaseStage) Forward(f *frame.Frame) {
	for _, s := range b.downstream {
		s.Process(f)
		s.Forward(f)
	}
}

// StageFunc adapts a function into a Stage. It is mostly used for terminal
// consumers: counters, taps and test probes.
type StageFunc struct {
	BaseStage
	fn func(*frame.Frame)
}

// NewStageFunc wraps fn as a Stage. A nil fn yields a discarding stage.
func NewStageFunc(fn func(*frame.Frame)) *StageFunc {
	return &StageFunc{fn: fn}
}

// Process calls the wrapped function.
func (s *StageFunc) Process(f *frame.Frame) {
	if s.fn != nil {
		s.fn(f)
	}
}
