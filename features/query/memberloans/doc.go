// Package memberloans implements the member loans query use case.
//
// This feature provides a pure query operation that returns all loans of one
// member, optionally restricted to the open ones, each with the derived
// overdue flag and an estimated fine for loans already past due. It follows
// the Load-Project pattern without any command processing or state mutation.
package memberloans
