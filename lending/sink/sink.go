package sink

import (
	"context"
)

// Kind identifies a notification.
type Kind string

const (
	KindLoanRequested  Kind = "loan.requested"
	KindLoanApproved   Kind = "loan.approved"
	KindLoanRejected   Kind = "loan.rejected"
	KindLoanCheckedOut Kind = "loan.checked_out"
	KindLoanRenewed    Kind = "loan.renewed"
	KindLoanCancelled  Kind = "loan.cancelled"
	KindLoanReturned   Kind = "loan.returned"
	KindLoanOverdue    Kind = "loan.overdue"
	KindLoanDueSoon    Kind = "loan.due_soon"
)

// AuditSink stores audit records outside the event store.
type AuditSink interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]string) error
}

// Notifier delivers a notification to a member.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, memberID string, payload map[string]string) error
}

// AuditRecord is one audit entry on its way to an AuditSink.
type AuditRecord struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]string
}

// Notification is one notification on its way to a Notifier.
type Notification struct {
	Kind     Kind
	MemberID string
	Payload  map[string]string
}
