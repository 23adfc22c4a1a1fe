// Package cache provides content-addressed storage for classification
// verdicts.
//
// It derives a SHA-256 fingerprint from a grid's content and maps
// fingerprints to immutable classification records. Stores also own
// the aggregate counters: a record insert and its counter increment
// happen as one unit, so statistics always equal the set of distinct
// grids ever classified. Memory and BadgerDB implementations are
// provided.
package cache
