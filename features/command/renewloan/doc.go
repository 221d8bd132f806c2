// Package renewloan implements the Renew Loan use case.
//
// This feature extends an issued loan's due date by one full policy period,
// chained from the current due date rather than from the renewal time, so an
// early renewal never shortens the total loan. An overdue loan can still be
// renewed; the renewal does not erase any fine that will be assessed at
// return time.
//
// A renewal touches only the loan row. It is blocked by the renewal limit of
// the borrower's policy and by a reservation queue head held by another
// member; the borrower's own reservation never blocks it.
package renewloan
