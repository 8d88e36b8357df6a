package frame

// Pattern is a fixed grid of {0,1} values searched for within a Frame.
// It is immutable after construction: NewPattern copies its input and the
// accessors never expose the backing rows for mutation.
type Pattern struct {
	rows [][]uint8
}

// NewPattern builds a Pattern from the given rows. The rows are deep-copied;
// callers are expected to supply a rectangular grid of {0,1} values.
func NewPattern(rows [][]uint8) Pattern {
	cp := make([][]uint8, len(rows))
	for y, row := range rows {
		cp[y] = make([]uint8, len(row))
		copy(cp[y], row)
	}
	return Pattern{rows: cp}
}

// DefaultPattern is the stock detection shape: a plus sign with legs.
//
//	. + .
//	+ + +
//	. + .
//	+ . +
func DefaultPattern() Pattern {
	return NewPattern([][]uint8{
		{0, 1, 0},
		{1, 1, 1},
		{0, 1, 0},
		{1, 0, 1},
	})
}

// Height returns the number of pattern rows.
func (p Pattern) Height() int { return len(p.rows) }

// Width returns the number of columns in the pattern, 0 for an empty pattern.
func (p Pattern) Width() int {
	if len(p.rows) == 0 {
		return 0
	}
	return len(p.rows[0])
}

// At returns the pattern value at row y, column x.
func (p Pattern) At(x, y int) uint8 { return p.rows[y][x] }

// Empty reports whether the pattern has no cells.
func (p Pattern) Empty() bool { return p.Height() == 0 || p.Width() == 0 }
