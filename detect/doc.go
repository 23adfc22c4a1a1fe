// Package detect exposes the two core operations of the mutant
// detector: classifying a DNA grid and reading aggregate statistics.
//
// Classification is content-addressed: the grid is fingerprinted,
// looked up in the result store, and scanned only on a miss. Misses
// for the same content are collapsed into a single flight, so a given
// grid is scanned and counted at most once no matter how many
// concurrent requests carry it.
package detect
