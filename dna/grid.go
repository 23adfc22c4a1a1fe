package dna

// MinSize is the smallest grid in which a run of four bases can exist.
const MinSize = 4

// IsValidBase reports whether b is one of the four nucleotide bases.
func IsValidBase(b byte) bool {
	switch b {
	case 'A', 'T', 'C', 'G':
		return true
	}
	return false
}

// Grid is a validated square matrix of nucleotide bases.
//
// Contract:
// - Construction: only Parse produces a non-zero Grid.
// - Immutability: a Grid is never modified after Parse returns it.
// - Concurrency: safe for concurrent reads.
type Grid struct {
	rows []string
	size int
}

// Parse validates a candidate grid and returns it as a Grid.
//
// Rows are checked in order and the first violation wins, so the error
// for a given input is stable across calls. Parse has no side effects.
func Parse(rows []string) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, ErrNullOrEmpty
	}

	n := len(rows)
	if n < MinSize {
		return Grid{}, &TooSmallError{Size: n}
	}

	for i, row := range rows {
		if len(row) != n {
			return Grid{}, &NotSquareError{Row: i, Got: len(row), Want: n}
		}
		for j := 0; j < len(row); j++ {
			if !IsValidBase(row[j]) {
				return Grid{}, &InvalidBaseError{Base: row[j], Row: i, Col: j}
			}
		}
	}

	// Copy so later mutation of the caller's slice cannot reach the Grid.
	owned := make([]string, n)
	copy(owned, rows)

	return Grid{rows: owned, size: n}, nil
}

// Size returns N for an NxN grid. The zero Grid has size 0.
func (g Grid) Size() int { return g.size }

// Base returns the base at (row, col). Indices must be in [0, Size).
func (g Grid) Base(row, col int) byte { return g.rows[row][col] }

// Rows returns a copy of the grid's rows in order.
func (g Grid) Rows() []string {
	out := make([]string, len(g.rows))
	copy(out, g.rows)
	return out
}

// Bytes returns the grid's rows concatenated in order. This is the
// byte stream fingerprints are derived from.
func (g Grid) Bytes() []byte {
	buf := make([]byte, 0, g.size*g.size)
	for _, row := range g.rows {
		buf = append(buf, row...)
	}
	return buf
}
