// Package addbook adds a title to the catalog. Copies are added separately with addcopy.
package addbook
