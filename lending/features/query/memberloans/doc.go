// Package memberloans lists the loans of one member, newest request first.
package memberloans
