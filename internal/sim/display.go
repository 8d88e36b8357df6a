package sim

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/banshee-data/motion.report/internal/frame"
	"github.com/banshee-data/motion.report/internal/pipeline"
)

// Display renders frames to a writer: '.' for background, '+' for
// foreground, '$' for marked cells. It only reads the frame. The mutex
// keeps whole frames contiguous in the output when two branches render
// concurrently.
type Display struct {
	pipeline.BaseStage
	mu sync.Mutex
	w  io.Writer
}

// NewDisplay creates a display sink writing to w.
func NewDisplay(w io.Writer) *Display {
	return &Display{w: w}
}

// Process renders the frame.
func (d *Display) Process(f *frame.Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.w, Render(f))
}

// Render returns the textual rendering of a frame.
func Render(f *frame.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame seq=%d %dx%d\n", f.Seq, f.Width, f.Height)
	for _, row := range f.Cells {
		for x, v := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			switch v {
			case frame.CellMarked:
				b.WriteByte('$')
			case frame.CellForeground:
				b.WriteByte('+')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}
