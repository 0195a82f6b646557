// Package changecopystatus lets an administrator mark a copy LOST, DAMAGED or AVAILABLE again.
//
// A copy that is ON_LOAN belongs to its loan and only leaves that state through cancel or return.
package changecopystatus
