// Package policy provides the lending policy snapshot of an operation.
//
// Two sources exist: the latest LendingPolicyUpdated event of the event store, and the single
// row of the lending_settings table. Both return one complete snapshot per read, so a caller
// never sees half of an update. A missing or invalid policy is a configuration error; there are
// no built-in defaults.
package policy
