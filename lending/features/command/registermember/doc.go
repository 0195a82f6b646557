// Package registermember creates the member profile that borrowing requires.
package registermember
