// Package fixtures builds lending histories for tests: catalog, inventory, members,
// policy and loans in every lifecycle state.
//
// This is testing infrastructure, not production domain code.
package fixtures
