package fixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/memengine"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

// NewStore returns an in-memory event store that already holds history.
func NewStore(t testing.TB, history ...core.DomainEvent) *memengine.EventStore {
	t.Helper()

	es := memengine.NewEventStore()
	Seed(t, es, history...)

	return es
}

// Seed appends history to es unconditionally.
func Seed(t testing.TB, es *memengine.EventStore, history ...core.DomainEvent) {
	t.Helper()

	if len(history) == 0 {
		return
	}

	storableEvents, err := shell.StorableEventsFrom(history, shell.BuildCommandMetadata(AdminID))
	require.NoError(t, err)

	ctx := context.Background()
	filter := eventstore.BuildEventFilter().MatchingAnyEvent()

	_, maxSequenceNumber, err := es.Query(ctx, filter)
	require.NoError(t, err)
	require.NoError(t, es.Append(ctx, filter, maxSequenceNumber, storableEvents...))
}

// StoredEvents returns every event in es, in append order.
func StoredEvents(t testing.TB, es shell.QueriesEvents) core.DomainEvents {
	t.Helper()

	storableEvents, _, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)

	history, err := shell.DomainEventsFrom(storableEvents)
	require.NoError(t, err)

	return history
}

// EventTypes lists the types of events in order.
func EventTypes(events core.DomainEvents) []string {
	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.EventType())
	}

	return types
}
