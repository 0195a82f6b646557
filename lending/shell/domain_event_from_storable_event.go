package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	payload := storableEvent.PayloadJSON

	switch storableEvent.EventType {
	case core.BookAddedToCatalogEventType:
		return unmarshal[core.BookAddedToCatalog](payload)
	case core.CopyAddedToInventoryEventType:
		return unmarshal[core.CopyAddedToInventory](payload)
	case core.CopyStatusChangedEventType:
		return unmarshal[core.CopyStatusChanged](payload)
	case core.CopyClaimedEventType:
		return unmarshal[core.CopyClaimed](payload)
	case core.CopyReleasedEventType:
		return unmarshal[core.CopyReleased](payload)
	case core.MemberRegisteredEventType:
		return unmarshal[core.MemberRegistered](payload)
	case core.MemberStatusChangedEventType:
		return unmarshal[core.MemberStatusChanged](payload)
	case core.LendingPolicyUpdatedEventType:
		return unmarshal[core.LendingPolicyUpdated](payload)
	case core.LoanRequestedEventType:
		return unmarshal[core.LoanRequested](payload)
	case core.LoanApprovedEventType:
		return unmarshal[core.LoanApproved](payload)
	case core.LoanRejectedEventType:
		return unmarshal[core.LoanRejected](payload)
	case core.LoanCheckedOutEventType:
		return unmarshal[core.LoanCheckedOut](payload)
	case core.LoanRenewedEventType:
		return unmarshal[core.LoanRenewed](payload)
	case core.LoanCancelledEventType:
		return unmarshal[core.LoanCancelled](payload)
	case core.LoanReturnedEventType:
		return unmarshal[core.LoanReturned](payload)
	case core.AuditEntryRecordedEventType:
		return unmarshal[core.AuditEntryRecorded](payload)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshal[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var event E

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}
