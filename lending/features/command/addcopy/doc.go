// Package addcopy puts a physical copy of a catalogued book into inventory.
package addcopy
