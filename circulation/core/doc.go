// Package core contains the pure decision support for the circulation
// features: calendar and fine arithmetic, reservation queue resolution, the
// generic DecisionResult, and the snapshot and plan types that connect the
// pure Decide functions to the storage engine.
//
// Nothing in this package performs I/O. Snapshots are loaded by a storage
// engine, handed to a Decide function together with a command, and the
// resulting plan is applied by the engine in a single guarded transaction.
package core
