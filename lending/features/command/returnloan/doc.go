// Package returnloan implements the return of a borrowed copy.
//
// The penalty is computed from the due date and the return instant and recorded on the
// LoanReturned event. It is never recomputed afterwards.
package returnloan
