// Package cancelloan implements the withdrawal of a loan before the copy is handed over.
package cancelloan
