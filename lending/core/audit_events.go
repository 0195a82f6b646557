package core

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntryRecordedEventType is the event type identifier.
const AuditEntryRecordedEventType = "AuditEntryRecorded"

// Audit actions, one per state-changing operation.
const (
	AuditActionLoanCreated      = "LOAN_CREATED"
	AuditActionLoanApproved     = "LOAN_APPROVED"
	AuditActionLoanRejected     = "LOAN_REJECTED"
	AuditActionLoanCheckedOut   = "LOAN_CHECKED_OUT"
	AuditActionLoanRenewed      = "LOAN_RENEWED"
	AuditActionLoanCancelled    = "LOAN_CANCELLED"
	AuditActionLoanReturned     = "LOAN_RETURNED"
	AuditActionMemberRegistered = "MEMBER_REGISTERED"
	AuditActionMemberStatusSet  = "MEMBER_STATUS_CHANGED"
	AuditActionBookAdded        = "BOOK_ADDED"
	AuditActionCopyAdded        = "COPY_ADDED"
	AuditActionCopyStatusSet    = "COPY_STATUS_CHANGED"
	AuditActionPolicyUpdated    = "LENDING_POLICY_UPDATED"
)

// Audited entity types.
const (
	AuditEntityLoan     = "loan"
	AuditEntityMember   = "member"
	AuditEntityBook     = "book"
	AuditEntityCopy     = "copy"
	AuditEntitySettings = "settings"
)

// AuditEntryRecorded is the audit trail record of one operation. It is appended in the
// same atomic write as the state change it describes.
type AuditEntryRecorded struct {
	EntryID    string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]string
	OccurredAt OccurredAt
}

// BuildAuditEntryRecorded creates a new AuditEntryRecorded event.
func BuildAuditEntryRecorded(
	actor Actor,
	action string,
	entityType string,
	entityID string,
	metadata map[string]string,
	occurredAt time.Time,
) AuditEntryRecorded {

	return AuditEntryRecorded{
		EntryID:    uuid.NewString(),
		ActorID:    actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e AuditEntryRecorded) EventType() string {
	return AuditEntryRecordedEventType
}

func (e AuditEntryRecorded) HasOccurredAt() time.Time {
	return e.OccurredAt
}
