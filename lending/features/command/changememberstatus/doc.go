// Package changememberstatus activates, suspends or expires a membership.
//
// A status change does not touch open loans. It only gates the next borrow, approval,
// checkout or borrower renewal.
package changememberstatus
