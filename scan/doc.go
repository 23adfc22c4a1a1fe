// Package scan implements the mutant detection algorithm over a
// validated DNA grid.
//
// A grid is mutant when strictly more than one run of four identical
// adjacent bases exists along any of the four axes (horizontal,
// vertical, descending diagonal, ascending diagonal). Scanning stops
// the instant the second run is found.
package scan
