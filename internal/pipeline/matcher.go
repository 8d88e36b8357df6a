package pipeline

import (
	"sync/atomic"

	"github.com/banshee-data/motion.report/internal/frame"
	"github.com/banshee-data/motion.report/internal/monitoring"
)

// PatternMatcher scans each frame for exact occurrences of a fixed pattern
// and marks matched foreground cells in place by raising them to
// frame.CellMarked. Matching is strict equality against {0,1}, so a cell
// already marked 2 by an earlier pass never re-matches a pattern 1; marking
// itself is idempotent (any value >0 becomes 2).
type PatternMatcher struct {
	BaseStage
	pattern frame.Pattern

	// OnMatch, when set, is invoked with the top-left anchor of every match
	// in the order matches are found. Set it before the graph goes live.
	OnMatch func(x, y int)

	matches atomic.Uint64 // total matches found, readable from any goroutine
}

// NewPatternMatcher creates a matcher for the given pattern.
func NewPatternMatcher(p frame.Pattern) *PatternMatcher {
	return &PatternMatcher{pattern: p}
}

// Process searches f exhaustively and marks every match. A pattern larger
// than the frame in either dimension yields no search and no error.
//
// The scan compares against a snapshot of the cells taken before any
// marking, so overlapping matches are found independently: marking one
// anchor never hides another in the same pass.
func (m *PatternMatcher) Process(f *frame.Frame) {
	ph, pw := m.pattern.Height(), m.pattern.Width()
	if m.pattern.Empty() || ph > f.Height || pw > f.Width {
		return
	}

	snapshot := make([][]uint8, len(f.Cells))
	for y, row := range f.Cells {
		snapshot[y] = make([]uint8, len(row))
		copy(snapshot[y], row)
	}

	// Row-major anchor scan, inclusive bounds so patterns flush against the
	// right and bottom edges are found.
	for j := 0; j <= f.Height-ph; j++ {
		for i := 0; i <= f.Width-pw; i++ {
			if m.matchAt(snapshot, i, j) {
				m.matches.Add(1)
				monitoring.Debugf("[matcher] pattern found at x=%d y=%d frame=%s", i, j, f.FrameID)
				m.mark(f, i, j)
				if m.OnMatch != nil {
					m.OnMatch(i, j)
				}
			}
		}
	}
}

// matchAt reports whether every pattern row equals the snapshot contents at
// anchor (x, y).
func (m *PatternMatcher) matchAt(cells [][]uint8, x, y int) bool {
	for k := 0; k < m.pattern.Height(); k++ {
		row := cells[y+k]
		for h := 0; h < m.pattern.Width(); h++ {
			if row[x+h] != m.pattern.At(h, k) {
				return false
			}
		}
	}
	return true
}

// mark raises every foreground cell under the pattern footprint at (x, y) to
// CellMarked. Background cells stay untouched; the equality check guarantees
// they correspond to pattern zeros.
func (m *PatternMatcher) mark(f *frame.Frame, x, y int) {
	for k := y; k < y+m.pattern.Height(); k++ {
		for h := x; h < x+m.pattern.Width(); h++ {
			if f.Cells[k][h] > frame.CellBackground {
				f.Cells[k][h] = frame.CellMarked
			}
		}
	}
}

// Matches returns the total number of matches found so far.
func (m *PatternMatcher) Matches() uint64 { return m.matches.Load() }
