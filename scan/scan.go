package scan

import "github.com/mutantlab/dnascan/dna"

// RunLength is the number of identical adjacent bases that form a run.
const RunLength = 4

// mutantThreshold is the run count at which a grid is classified mutant.
const mutantThreshold = 2

// direction describes one scan axis as a (row, col) step per cell.
type direction struct {
	dr int
	dc int
}

// Scan order is fixed: horizontal, vertical, descending diagonal,
// ascending diagonal, row-major within each axis. Order never changes
// the verdict, only which windows are visited before termination.
var directions = [4]direction{
	{0, 1},  // horizontal, left to right
	{1, 0},  // vertical, top to bottom
	{1, 1},  // descending diagonal, top-left to bottom-right
	{-1, 1}, // ascending diagonal, bottom-left to top-right
}

// IsMutant reports whether the grid contains more than one run of
// RunLength identical adjacent bases. Overlapping runs starting at
// different cells count separately, so five in a row contributes two.
//
// Pure and total over validated grids: no error return, no index ever
// read outside [0, Size).
func IsMutant(g dna.Grid) bool {
	return countRuns(g, mutantThreshold, nil) >= mutantThreshold
}

// CountRuns counts every qualifying run in the grid with no early
// termination. IsMutant should be preferred for classification; this
// is for callers that want the exact count.
func CountRuns(g dna.Grid) int {
	return countRuns(g, 0, nil)
}

// countRuns visits windows in the fixed scan order and counts runs,
// stopping as soon as limit runs are found. limit <= 0 disables early
// termination. If visited is non-nil it is incremented once per window
// examined; tests use it to verify the early-termination contract
// without relying on wall clock.
func countRuns(g dna.Grid, limit int, visited *int) int {
	n := g.Size()
	runs := 0

	for _, d := range directions {
		for r := 0; r < n; r++ {
			if !fits(r, n, d.dr) {
				continue
			}
			for c := 0; c < n; c++ {
				if !fits(c, n, d.dc) {
					continue
				}
				if visited != nil {
					*visited++
				}
				if hasRun(g, r, c, d.dr, d.dc) {
					runs++
					if limit > 0 && runs >= limit {
						return runs
					}
				}
			}
		}
	}

	return runs
}

// fits reports whether a run starting at index i with per-cell step d
// stays inside [0, n).
func fits(i, n, d int) bool {
	end := i + (RunLength-1)*d
	return end >= 0 && end < n
}

// hasRun reports whether the RunLength cells starting at (r, c) along
// (dr, dc) hold the same base.
func hasRun(g dna.Grid, r, c, dr, dc int) bool {
	b := g.Base(r, c)
	for k := 1; k < RunLength; k++ {
		if g.Base(r+k*dr, c+k*dc) != b {
			return false
		}
	}
	return true
}
