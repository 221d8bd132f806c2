// Package helper provides shared test helpers: unique id generation and spy
// implementations of the circulation observability interfaces (metrics,
// tracing, logging) with fluent assertion chains.
//
// The spies capture every call when created with recordCalls true, so tests
// can assert which metrics, spans, and log lines an instrumented component
// produced without any real observability backend.
package helper
