package shell

import (
	"context"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// QueryHistory runs the query phase and the unmarshal phase of a handler.
func QueryHistory(ctx context.Context, es QueriesEvents, filter eventstore.Filter) (
	core.DomainEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {
	storableEvents, maxSequenceNumber, err := es.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	history, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return nil, 0, err
	}

	return history, maxSequenceNumber, nil
}

// AppendDecision runs the append phase: all events of a successful decision go into one
// conditional append guarded by filter and expectedMaxSequenceNumber.
// Nothing is appended for idempotent or failed decisions.
func AppendDecision(
	ctx context.Context,
	es EventStore,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	result core.DecisionResult,
	actorID string,
) error {
	if !result.HasEventsToAppend() {
		return nil
	}

	storableEvents, err := StorableEventsFrom(result.Events, BuildCommandMetadata(actorID))
	if err != nil {
		return err
	}

	return es.Append(ctx, filter, expectedMaxSequenceNumber, storableEvents...)
}

// LoanFilter selects all loan events of loanID.
func LoanFilter(loanID string) eventstore.Filter {
	loanEventTypes := core.LoanEventTypes()

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(loanEventTypes[0], loanEventTypes[1:]...).
		AndAnyPredicateOf(eventstore.P("LoanID", loanID)).
		Finalize()
}

// LoadLoan projects the current state of one loan. Handlers use it to discover the member
// and copy a loan references before they build their consistency boundary.
func LoadLoan(ctx context.Context, es QueriesEvents, loanID string) (core.Loan, bool, error) {
	history, _, err := QueryHistory(ctx, es, LoanFilter(loanID))
	if err != nil {
		return core.Loan{}, false, err
	}

	loan, found := core.ProjectLoan(history, loanID)

	return loan, found, nil
}
