// Package renewloan implements the due date extension of an ACTIVE loan.
//
// A renewal adds the policy's loan period to the current due date, not to the renewal
// instant, so early renewals never shorten a loan and repeated renewals compound.
package renewloan
