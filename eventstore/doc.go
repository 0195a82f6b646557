// Package eventstore holds the engine-independent building blocks of the lending event store:
// filters, storable events, consistency hints, errors, and observability interfaces.
//
// A "dynamic event stream" is whatever a Filter selects. Engines (postgresengine, memengine)
// implement the same two operations:
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	// ... decide ...
//	err = store.Append(ctx, filter, maxSeq, event, moreEvents...)
//
// Append writes all events atomically, and only if the events matching filter still end at maxSeq.
// Otherwise it returns ErrConcurrencyConflict and nothing is written.
//
//	filter := eventstore.BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(core.LoanRequestedEventType, core.LoanApprovedEventType).
//		AndAnyPredicateOf(eventstore.P("LoanID", loanID.String())).
//		Finalize()
package eventstore
