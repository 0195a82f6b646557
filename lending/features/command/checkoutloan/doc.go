// Package checkoutloan implements the physical handoff of an APPROVED loan's copy.
package checkoutloan
