// Package openloans lists every loan that currently holds a copy, ordered by due date.
// The reminder sweep reads it.
package openloans
