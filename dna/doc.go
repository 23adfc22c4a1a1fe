// Package dna defines the validated DNA grid type and its validation rules.
//
// A grid is accepted only if it is a square matrix of at least 4x4
// bases drawn from {A, T, C, G}. Validation failures form a closed set
// of typed errors carrying the offending position, so callers can map
// them to precise client-facing messages.
package dna
