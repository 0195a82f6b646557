package policy

import (
	"context"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

// EventStoreProvider reads the snapshot of the latest LendingPolicyUpdated event.
type EventStoreProvider struct {
	eventStore shell.QueriesEvents
}

func NewEventStoreProvider(eventStore shell.QueriesEvents) EventStoreProvider {
	return EventStoreProvider{eventStore: eventStore}
}

func (p EventStoreProvider) Current(ctx context.Context) (core.Policy, error) {
	ctx = eventstore.WithStrongConsistency(ctx)

	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.LendingPolicyUpdatedEventType).
		Finalize()

	history, _, err := shell.QueryHistory(ctx, p.eventStore, filter)
	if err != nil {
		return core.Policy{}, err
	}

	policy, found := core.ProjectPolicy(history)
	if !found {
		return core.Policy{}, core.Misconfigured(core.ErrPolicyMissing)
	}

	return checked(policy)
}

var _ Provider = EventStoreProvider{}
