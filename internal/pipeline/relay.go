package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/banshee-data/motion.report/internal/frame"
	"github.com/banshee-data/motion.report/internal/monitoring"
)

// BoundedRelay decouples an upstream producer from its downstream chain via
// a capacity-bounded FIFO serviced by one dedicated worker goroutine. When
// the queue is full the oldest buffered frames are evicted, so a producer is
// never blocked by a slow consumer; under sustained overrun the downstream
// sees at most the last `capacity` frames. Overflow is intentional data
// loss, not an error.
//
// Frames are cloned at enqueue time. Stages reached through the relay run on
// the relay's worker goroutine concurrently with the producer's synchronous
// branches, and a mutating stage (PatternMatcher) on one branch must not
// race a reader on another. Cloning at the only cross-goroutine boundary
// gives each asynchronous branch an independent frame.
type BoundedRelay struct {
	BaseStage
	name     string
	capacity int

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*frame.Frame
	started  bool
	stopping bool
	done     chan struct{} // closed when the worker exits

	pushed    atomic.Uint64
	dropped   atomic.Uint64
	forwarded atomic.Uint64
}

// RelayStats is a point-in-time snapshot of a relay's counters.
type RelayStats struct {
	Pushed    uint64 // frames handed to Process
	Dropped   uint64 // frames evicted or refused (capacity 0, stopping)
	Forwarded uint64 // frames delivered downstream by the worker
}

// NewBoundedRelay creates a relay with the given queue capacity. Capacity 0
// is a valid degenerate configuration: every pushed frame is dropped and the
// downstream never receives anything.
func NewBoundedRelay(name string, capacity int) *BoundedRelay {
	r := &BoundedRelay{
		name:     name,
		capacity: capacity,
		done:     make(chan struct{}),
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Process starts the worker on first call, then enqueues a clone of f under
// the queue lock, evicting from the front while the queue is at capacity.
// It never blocks on the worker.
func (r *BoundedRelay) Process(f *frame.Frame) {
	r.start()
	r.enqueue(f)
}

// Forward is a deliberate no-op: delivery to this relay's downstream happens
// from the worker goroutine, never synchronously with Process.
func (r *BoundedRelay) Forward(*frame.Frame) {}

// start launches the worker exactly once. A second call while running
// reuses the existing worker.
func (r *BoundedRelay) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopping {
		return
	}
	r.started = true
	go r.worker()
}

func (r *BoundedRelay) enqueue(f *frame.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pushed.Add(1)

	if r.capacity == 0 || r.stopping {
		r.dropped.Add(1)
		return
	}

	for len(r.queue) >= r.capacity {
		evicted := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]
		r.dropped.Add(1)
		monitoring.Debugf("[relay %s] queue full, evicted frame seq=%d", r.name, evicted.Seq)
	}

	wasEmpty := len(r.queue) == 0
	r.queue = append(r.queue, f.Clone())
	if wasEmpty {
		r.cond.Signal()
	}
}

// worker drains the queue, delivering each frame to the downstream chain in
// link order. It blocks on the condition variable while the queue is empty,
// always finishes the frame it is forwarding, and checks the stop flag after
// each delivery.
func (r *BoundedRelay) worker() {
	defer close(r.done)

	r.mu.Lock()
	for {
		for len(r.queue) == 0 && !r.stopping {
			r.cond.Wait()
		}
		if r.stopping && len(r.queue) == 0 {
			r.mu.Unlock()
			return
		}

		f := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]
		r.mu.Unlock()

		r.BaseStage.Forward(f)
		r.forwarded.Add(1)

		r.mu.Lock()
		if r.stopping {
			// Abort the remaining drain; Stop discards leftovers.
			r.mu.Unlock()
			return
		}
	}
}

// Stop requests cooperative shutdown: sets the stop flag, wakes the worker,
// joins it, then discards any frames still queued without forwarding them.
// Stop is idempotent and safe to call on a relay whose worker never started.
func (r *BoundedRelay) Stop() {
	r.mu.Lock()
	r.stopping = true
	started := r.started
	r.cond.Broadcast()
	r.mu.Unlock()

	if started {
		<-r.done
	}

	r.mu.Lock()
	discarded := len(r.queue)
	for i := range r.queue {
		r.queue[i] = nil
	}
	r.queue = nil
	r.mu.Unlock()

	if discarded > 0 {
		r.dropped.Add(uint64(discarded))
		monitoring.Debugf("[relay %s] discarded %d queued frames at shutdown", r.name, discarded)
	}
}

// QueueDepth returns the current number of buffered frames.
func (r *BoundedRelay) QueueDepth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Stats returns a snapshot of the relay's counters.
func (r *BoundedRelay) Stats() RelayStats {
	return RelayStats{
		Pushed:    r.pushed.Load(),
		Dropped:   r.dropped.Load(),
		Forwarded: r.forwarded.Load(),
	}
}

// queued returns the buffered frames in FIFO order. Test helper.
func (r *BoundedRelay) queued() []*frame.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*frame.Frame, len(r.queue))
	copy(out, r.queue)
	return out
}
