// Package promadapters provides a Prometheus-backed implementation of the
// circulation MetricsCollector interface.
//
// The engine and handlers record metrics through a small dependency-free
// interface with dynamic names and labels. This package maps those calls onto
// prometheus vectors: durations become histograms in seconds, counters become
// counter vectors, values become gauge vectors. Vectors are created and
// registered lazily on first use; the first observation of a metric fixes its
// label-key set.
package promadapters
