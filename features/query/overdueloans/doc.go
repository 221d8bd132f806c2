// Package overdueloans implements the overdue scan query use case.
//
// This feature provides a pure query operation that surfaces every loan still
// issued past its due date, with the raw overdue day count and an estimated
// fine, for operational dashboards. It follows the Load-Project pattern
// without any command processing or state mutation.
//
// The estimate applies the same grace and cap rules as the fine assessed at
// return time, using the scan time as a hypothetical return time, so it is
// advisory only and keeps growing while the loan stays out.
package overdueloans
