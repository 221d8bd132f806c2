// Package fakestorage provides an in-memory stand-in for the circulation
// storage engine, used by feature handler tests.
//
// The fake returns pre-configured snapshots and rows, records every applied
// plan and journal entry, and can inject concurrency conflicts to exercise
// the handlers' retry behavior. It performs no decision logic of its own.
package fakestorage
