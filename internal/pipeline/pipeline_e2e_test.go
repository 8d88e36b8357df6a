package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/motion.report/internal/frame"
)

// TestRelayEndToEndLossyDelivery drives the canonical overrun scenario:
// five frames pushed through a capacity-2 relay into an artificially slow
// counter. The counter blocks on the first frame while the remaining four
// arrive, so the relay keeps only the last two; once released, the counter
// receives exactly the in-flight frame plus those two, each bit-for-bit
// identical to its source frame.
func TestRelayEndToEndLossyDelivery(t *testing.T) {
	r := NewBoundedRelay("e2e", 2)

	var (
		mu       sync.Mutex
		received []*frame.Frame
	)
	gate := make(chan struct{})
	picked := make(chan struct{})
	r.Link(NewStageFunc(func(f *frame.Frame) {
		mu.Lock()
		received = append(received, f)
		first := len(received) == 1
		mu.Unlock()
		if first {
			close(picked)
			<-gate // artificially slow consumer
		}
	}))

	frames := make([]*frame.Frame, 0, 5)
	for seq := int64(1); seq <= 5; seq++ {
		f := frame.New(6, 4)
		f.Seq = seq
		f.Cells[0][int(seq)%6] = frame.CellForeground
		f.Cells[2][1] = frame.CellForeground
		frames = append(frames, f)
	}

	// F1 starts the worker and is picked up immediately.
	r.Process(frames[0])
	select {
	case <-picked:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never delivered the first frame")
	}

	// F2..F5 queue up behind the blocked worker; capacity 2 keeps F4, F5.
	for _, f := range frames[1:] {
		r.Process(f)
	}
	if depth := r.QueueDepth(); depth != 2 {
		t.Fatalf("queue depth = %d, want 2", depth)
	}

	close(gate)

	// Producer stops; the relay drains what it kept before terminating.
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("received %d frames, want 3", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	mu.Lock()
	defer mu.Unlock()

	wantSeqs := []int64{1, 4, 5}
	for i, want := range wantSeqs {
		if received[i].Seq != want {
			t.Fatalf("delivery %d has seq %d, want %d", i, received[i].Seq, want)
		}
		src := frames[want-1]
		if diff := cmp.Diff(src.Cells, received[i].Cells); diff != "" {
			t.Errorf("frame seq=%d grid mismatch (-source +delivered):\n%s", want, diff)
		}
		if received[i] == src {
			t.Fatal("relay must deliver an independent copy, not the producer's frame")
		}
	}

	st := r.Stats()
	if st.Pushed != 5 || st.Forwarded != 3 || st.Dropped != 2 {
		t.Fatalf("stats = %+v, want pushed=5 forwarded=3 dropped=2", st)
	}
}

// TestRelayFeedsMatcherAsynchronously wires relay → matcher → probe and
// checks a pattern embedded by the producer is marked on the relay's copy,
// leaving the producer's frame untouched.
func TestRelayFeedsMatcherAsynchronously(t *testing.T) {
	pat := frame.NewPattern([][]uint8{
		{1, 1},
		{1, 1},
	})
	r := NewBoundedRelay("e2e", 4)
	m := NewPatternMatcher(pat)

	processed := make(chan *frame.Frame, 1)
	r.Link(m).Link(NewStageFunc(func(f *frame.Frame) { processed <- f }))

	f := frame.New(8, 8)
	embed(f, pat, 2, 2)
	r.Process(f)

	var got *frame.Frame
	select {
	case got = <-processed:
	case <-time.After(2 * time.Second):
		t.Fatal("matcher branch never processed the frame")
	}
	r.Stop()

	if got.MarkedCount() != 4 {
		t.Fatalf("marked cells on relay copy = %d, want 4", got.MarkedCount())
	}
	if f.MarkedCount() != 0 {
		t.Fatalf("producer's frame was mutated across the relay boundary: %d marked", f.MarkedCount())
	}
}
