// Package createloan implements the borrow request of a member.
//
// Depending on the lending policy the new loan is either REQUESTED and waits for an
// administrator, or it is approved on the spot: the copy is claimed and the due date set
// in the same atomic append as the request.
package createloan
