package memengine_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/memengine"
)

func givenEvent(t *testing.T, eventType string, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(payload))
	require.NoError(t, err)

	return event
}

func copyFilter(copyID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("CopyClaimed", "CopyReleased").
		AndAnyPredicateOf(eventstore.P("CopyID", copyID)).
		Finalize()
}

func Test_Query_ReturnsOnlyMatchingEventsInOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()

	require.NoError(t, es.Append(ctx, eventstore.BuildEventFilter().MatchingAnyEvent(), 0,
		givenEvent(t, "CopyClaimed", `{"CopyID":"c-1","LoanID":"l-1"}`),
		givenEvent(t, "CopyClaimed", `{"CopyID":"c-2","LoanID":"l-2"}`),
		givenEvent(t, "CopyReleased", `{"CopyID":"c-1","LoanID":"l-1"}`),
		givenEvent(t, "LoanReturned", `{"CopyID":"c-1","LoanID":"l-1"}`),
	))

	// act
	events, maxSeq, err := es.Query(ctx, copyFilter("c-1"))

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "CopyClaimed", events[0].EventType)
	assert.Equal(t, "CopyReleased", events[1].EventType)
	assert.Equal(t, uint(3), maxSeq)
	assert.Equal(t, uint(1), events[0].SequenceNumber)
}

func Test_Query_AllPredicatesMustMatch(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()

	require.NoError(t, es.Append(ctx, eventstore.BuildEventFilter().MatchingAnyEvent(), 0,
		givenEvent(t, "CopyClaimed", `{"CopyID":"c-1","LoanID":"l-1"}`),
		givenEvent(t, "CopyClaimed", `{"CopyID":"c-1","LoanID":"l-2"}`),
	))

	filter := eventstore.BuildEventFilter().
		Matching().
		AllPredicatesOf(eventstore.P("CopyID", "c-1"), eventstore.P("LoanID", "l-2")).
		Finalize()

	// act
	events, maxSeq, err := es.Query(ctx, filter)

	// assert
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, uint(2), maxSeq)
}

func Test_Append_ConflictsWhenFilteredStreamChanged(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()
	filter := copyFilter("c-1")

	_, maxSeq, err := es.Query(ctx, filter)
	require.NoError(t, err)
	require.NoError(t, es.Append(ctx, filter, maxSeq, givenEvent(t, "CopyClaimed", `{"CopyID":"c-1"}`)))

	// act
	err = es.Append(ctx, filter, maxSeq, givenEvent(t, "CopyClaimed", `{"CopyID":"c-1"}`))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, 1, es.Len())
}

func Test_Append_IgnoresChangesOutsideTheFilter(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()
	filter := copyFilter("c-1")

	_, maxSeq, err := es.Query(ctx, filter)
	require.NoError(t, err)
	require.NoError(t, es.Append(ctx, copyFilter("c-2"), 0, givenEvent(t, "CopyClaimed", `{"CopyID":"c-2"}`)))

	// act
	err = es.Append(ctx, filter, maxSeq, givenEvent(t, "CopyClaimed", `{"CopyID":"c-1"}`))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, es.Len())
}

func Test_Append_RejectsNonObjectPayload(t *testing.T) {
	es := memengine.NewEventStore()

	err := es.Append(context.Background(), copyFilter("c-1"), 0, givenEvent(t, "CopyClaimed", `"just a string"`))

	assert.ErrorIs(t, err, memengine.ErrUndecodablePayload)
	assert.Zero(t, es.Len())
}

func Test_Append_ConcurrentWritersOnlyOneWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()
	filter := copyFilter("c-1")
	_, maxSeq, err := es.Query(ctx, filter)
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup

	events := make([]eventstore.StorableEvent, 20)
	for i := range events {
		events[i] = givenEvent(t, "CopyClaimed", fmt.Sprintf(`{"CopyID":"c-1","LoanID":"l-%d"}`, i))
	}

	// act
	for _, event := range events {
		wg.Add(1)
		go func(event eventstore.StorableEvent) {
			defer wg.Done()
			if es.Append(ctx, filter, maxSeq, event) == nil {
				wins.Add(1)
			}
		}(event)
	}
	wg.Wait()

	// assert
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 1, es.Len())
}
