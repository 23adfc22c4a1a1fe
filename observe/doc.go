// Package observe provides telemetry primitives for DNA classification.
//
// It is a pure instrumentation library: no scanning, no storage, no
// I/O beyond exporter setup. The detect package wires the observer
// into its classification path.
package observe
