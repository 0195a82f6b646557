// Package approveloan implements the administrator approval of a REQUESTED loan.
//
// Approval assigns a copy and re-runs the borrowing rules against the member's current
// loans, so a request that became ineligible while it waited is refused here.
package approveloan
