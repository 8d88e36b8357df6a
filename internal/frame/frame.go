// Package frame defines the value types that flow through the pipeline:
// rectangular cell grids (Frame) and the fixed shapes searched for within
// them (Pattern).
package frame

import (
	"time"

	"github.com/google/uuid"
)

// Cell values. Marking only ever raises a foreground cell to CellMarked;
// background cells are never touched.
const (
	CellBackground uint8 = 0
	CellForeground uint8 = 1
	CellMarked     uint8 = 2
)

// Frame is one unit of pipeline input: a Height x Width grid of cell values.
// Frames produced by a source are shared by every stage reached on the same
// goroutine; a BoundedRelay clones the frame it queues so asynchronous
// branches own an independent copy.
type Frame struct {
	FrameID   string    // unique identifier for this frame
	Seq       int64     // sequential frame number from the source
	Timestamp time.Time // wall-clock time the frame was generated
	Width     int
	Height    int
	Cells     [][]uint8 // Height rows of Width cells, values 0/1/2
}

// New returns a zeroed frame of the given dimensions with a fresh FrameID.
func New(width, height int) *Frame {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &Frame{
		FrameID:   uuid.NewString(),
		Timestamp: time.Now(),
		Width:     width,
		Height:    height,
		Cells:     cells,
	}
}

// Clone returns a deep copy of the frame. The copy keeps the FrameID, Seq
// and Timestamp so a cloned frame remains traceable to its origin.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	cells := make([][]uint8, len(f.Cells))
	for y, row := range f.Cells {
		cells[y] = make([]uint8, len(row))
		copy(cells[y], row)
	}
	c := *f
	c.Cells = cells
	return &c
}

// EqualCells reports whether two frames carry identical grid contents.
// Identity fields (FrameID, timestamps) are ignored.
func (f *Frame) EqualCells(other *Frame) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.Width != other.Width || f.Height != other.Height {
		return false
	}
	for y, row := range f.Cells {
		for x, v := range row {
			if v != other.Cells[y][x] {
				return false
			}
		}
	}
	return true
}

// ForegroundDensity returns the fraction of cells holding a value greater
// than CellBackground. Marked cells count as foreground.
func (f *Frame) ForegroundDensity() float64 {
	if f == nil || f.Width == 0 || f.Height == 0 {
		return 0
	}
	fg := 0
	for _, row := range f.Cells {
		for _, v := range row {
			if v > CellBackground {
				fg++
			}
		}
	}
	return float64(fg) / float64(f.Width*f.Height)
}

// MarkedCount returns the number of cells currently set to CellMarked.
func (f *Frame) MarkedCount() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, row := range f.Cells {
		for _, v := range row {
			if v == CellMarked {
				n++
			}
		}
	}
	return n
}
