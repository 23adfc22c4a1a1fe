// Package stats defines the aggregate classification counters and the
// caller-facing statistics snapshot derived from them.
//
// The counters themselves are owned by the result store and move in
// lockstep with record insertion; this package only holds the value
// types and the ratio derivation, so reads stay pure.
package stats

// Counts is a snapshot of the classification counters. Counters are
// monotonic: normal operation only ever increments them.
type Counts struct {
	Mutant uint64
	Human  uint64
}

// Total returns the number of distinct grids ever classified.
func (c Counts) Total() uint64 {
	return c.Mutant + c.Human
}

// Ratio returns mutant / total, or 0.0 when nothing has been classified.
func (c Counts) Ratio() float64 {
	total := c.Total()
	if total == 0 {
		return 0.0
	}
	return float64(c.Mutant) / float64(total)
}

// Report is the caller-facing statistics snapshot.
type Report struct {
	MutantCount uint64  `json:"count_mutant_dna"`
	HumanCount  uint64  `json:"count_human_dna"`
	Ratio       float64 `json:"ratio"`
}

// NewReport derives a Report from a counter snapshot.
func NewReport(c Counts) Report {
	return Report{
		MutantCount: c.Mutant,
		HumanCount:  c.Human,
		Ratio:       c.Ratio(),
	}
}
