// Package memengine is an in-process event store engine.
//
// It implements the same Query/Append contract as postgresengine: filters select the same events,
// and Append is conditional on the max sequence number of the filtered events.
// A single mutex serializes appends, which makes the conditional check and the write atomic.
package memengine

import (
	"context"
	"errors"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
)

const (
	logMsgQueryCompleted      = "eventstore operation: query completed"
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logAttrEventCount         = "event_count"
	logAttrExpectedSequence   = "expected_sequence"
	logAttrActualSequence     = "actual_sequence"
)

// ErrUndecodablePayload is returned by Append when a payload is not a JSON object.
var ErrUndecodablePayload = errors.New("payload is not a json object")

type storedEvent struct {
	event   eventstore.StorableEvent
	payload map[string]any
}

// EventStore keeps all events in memory. The zero value is not usable, use NewEventStore.
type EventStore struct {
	mu               sync.RWMutex
	events           []storedEvent
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
}

// Option configures an EventStore.
type Option func(*EventStore)

// WithLogger sets a logger for operational messages.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) {
		es.logger = logger
	}
}

// WithContextualLogger sets a context-aware logger, preferred over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) {
		es.contextualLogger = logger
	}
}

// NewEventStore creates an empty EventStore.
func NewEventStore(options ...Option) *EventStore {
	es := &EventStore{events: make([]storedEvent, 0)}

	for _, option := range options {
		option(es)
	}

	return es
}

// Query returns the events matching filter in sequence order together with the highest matching sequence number.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	result := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for _, stored := range es.events {
		if !matches(filter, stored) {
			continue
		}

		result = append(result, stored.event)
		maxSequenceNumber = stored.event.SequenceNumber
	}

	es.logInfo(ctx, logMsgQueryCompleted, logAttrEventCount, len(result))

	return result, maxSequenceNumber, nil
}

// Append stores the events atomically if the filtered stream still ends at expectedMaxSequenceNumber.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	storableEvents ...eventstore.StorableEvent,
) error {

	if len(storableEvents) == 0 {
		return eventstore.ErrNoEventsToAppend
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	decoded := make([]storedEvent, 0, len(storableEvents))
	for _, event := range storableEvents {
		payload := make(map[string]any)
		if err := jsoniter.ConfigFastest.Unmarshal(event.PayloadJSON, &payload); err != nil {
			return errors.Join(eventstore.ErrAppendingEventFailed, ErrUndecodablePayload, err)
		}

		decoded = append(decoded, storedEvent{event: event, payload: payload})
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	actual := eventstore.MaxSequenceNumberUint(0)
	for _, stored := range es.events {
		if matches(filter, stored) {
			actual = stored.event.SequenceNumber
		}
	}

	if actual != expectedMaxSequenceNumber {
		es.logInfo(ctx, logMsgConcurrencyConflict,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
			logAttrActualSequence, actual)

		return eventstore.ErrConcurrencyConflict
	}

	next := uint(len(es.events))
	for i := range decoded {
		next++
		decoded[i].event.SequenceNumber = next
	}

	es.events = append(es.events, decoded...)
	es.logInfo(ctx, logMsgEventsAppended, logAttrEventCount, len(decoded))

	return nil
}

// Len returns the number of stored events.
func (es *EventStore) Len() int {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return len(es.events)
}

func matches(filter eventstore.Filter, stored storedEvent) bool {
	if filter.IsMatchAll() {
		return true
	}

	for _, item := range filter.Items() {
		if itemMatches(item, stored) {
			return true
		}
	}

	return false
}

func itemMatches(item eventstore.FilterItem, stored storedEvent) bool {
	if len(item.EventTypes()) > 0 && !slices.Contains(item.EventTypes(), stored.event.EventType) {
		return false
	}

	predicates := item.Predicates()
	if len(predicates) == 0 {
		return true
	}

	if item.AllPredicatesMustMatch() {
		for _, predicate := range predicates {
			if !predicateMatches(predicate, stored.payload) {
				return false
			}
		}

		return true
	}

	for _, predicate := range predicates {
		if predicateMatches(predicate, stored.payload) {
			return true
		}
	}

	return false
}

func predicateMatches(predicate eventstore.FilterPredicate, payload map[string]any) bool {
	val, ok := payload[predicate.Key()].(string)

	return ok && val == predicate.Val()
}

func (es *EventStore) logInfo(ctx context.Context, msg string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if es.logger != nil {
		es.logger.Info(msg, args...)
	}
}
