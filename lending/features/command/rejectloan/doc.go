// Package rejectloan implements the administrator rejection of a REQUESTED loan.
// No copy is claimed before approval, so a rejection never touches the inventory.
package rejectloan
