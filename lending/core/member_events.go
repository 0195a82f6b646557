package core

import (
	"time"

	"github.com/google/uuid"
)

// MemberRegisteredEventType is the event type identifier.
const MemberRegisteredEventType = "MemberRegistered"

// MemberRegistered represents when a member profile is created for an identity.
type MemberRegistered struct {
	MemberID   MemberIDString
	Name       string
	Email      string
	Status     MemberStatus
	OccurredAt OccurredAt
}

// BuildMemberRegistered creates a new MemberRegistered event.
func BuildMemberRegistered(memberID uuid.UUID, name, email string, status MemberStatus, occurredAt time.Time) MemberRegistered {
	return MemberRegistered{
		MemberID:   memberID.String(),
		Name:       name,
		Email:      email,
		Status:     status,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e MemberRegistered) EventType() string {
	return MemberRegisteredEventType
}

func (e MemberRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// MemberStatusChangedEventType is the event type identifier.
const MemberStatusChangedEventType = "MemberStatusChanged"

// MemberStatusChanged represents a membership activation, suspension or expiry.
type MemberStatusChanged struct {
	MemberID       MemberIDString
	Status         MemberStatus
	PreviousStatus MemberStatus
	ChangedBy      string
	OccurredAt     OccurredAt
}

// BuildMemberStatusChanged creates a new MemberStatusChanged event.
func BuildMemberStatusChanged(
	memberID string,
	status MemberStatus,
	previousStatus MemberStatus,
	changedBy string,
	occurredAt time.Time,
) MemberStatusChanged {

	return MemberStatusChanged{
		MemberID:       memberID,
		Status:         status,
		PreviousStatus: previousStatus,
		ChangedBy:      changedBy,
		OccurredAt:     ToOccurredAt(occurredAt),
	}
}

func (e MemberStatusChanged) EventType() string {
	return MemberStatusChangedEventType
}

func (e MemberStatusChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}
