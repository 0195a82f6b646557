// Package engine is the entry point of the lending operations.
//
// Every loan operation reads the lending policy once, runs its command handler with that snapshot,
// publishes the committed events to the sinks and returns the enriched loan. A missing or invalid
// policy refuses the operation before anything is read or written.
package engine
