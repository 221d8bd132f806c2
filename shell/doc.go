// Package shell provides the infrastructure glue between the pure circulation
// core and the outside world: retry with exponential backoff for concurrency
// conflicts, handler result metadata, serialization of journal facts, and the
// shared observability helpers used by command and query handlers.
//
// This package implements the "imperative shell" pattern: the functional core
// in circulation/core decides, the shell orchestrates storage access, retries,
// and instrumentation around those decisions.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
