package core

import (
	"fmt"
	"time"
)

// Instead of implementing full value objects, ids are alias types of string.

// LoanIDString represents a loan identifier.
type LoanIDString = string

// MemberIDString represents a member identifier.
type MemberIDString = string

// BookIDString represents a book identifier.
type BookIDString = string

// CopyIDString represents a physical copy identifier.
type CopyIDString = string

// OccurredAt represents when an event occurred.
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	StatusRequested LoanStatus = "REQUESTED"
	StatusApproved  LoanStatus = "APPROVED"
	StatusActive    LoanStatus = "ACTIVE"
	StatusOverdue   LoanStatus = "OVERDUE"
	StatusReturned  LoanStatus = "RETURNED"
	StatusRejected  LoanStatus = "REJECTED"
	StatusCancelled LoanStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is defined from this status.
func (s LoanStatus) IsTerminal() bool {
	return s == StatusReturned || s == StatusRejected || s == StatusCancelled
}

// IsOpen reports whether a loan in this status counts against the borrower's concurrency cap.
func (s LoanStatus) IsOpen() bool {
	return s == StatusApproved || s == StatusActive || s == StatusOverdue
}

// CopyStatus is the inventory state of a physical copy.
type CopyStatus string

const (
	CopyAvailable CopyStatus = "AVAILABLE"
	CopyOnLoan    CopyStatus = "ON_LOAN"
	CopyLost      CopyStatus = "LOST"
	CopyDamaged   CopyStatus = "DAMAGED"
)

// ParseCopyStatus accepts the statuses an administrator may set directly.
// ON_LOAN is only ever reached through a claim.
func ParseCopyStatus(s string) (CopyStatus, error) {
	switch status := CopyStatus(s); status {
	case CopyAvailable, CopyLost, CopyDamaged:
		return status, nil
	default:
		return "", fmt.Errorf("invalid copy status %q", s)
	}
}

// MemberStatus is the membership state of a borrower.
type MemberStatus string

const (
	MemberActive    MemberStatus = "ACTIVE"
	MemberSuspended MemberStatus = "SUSPENDED"
	MemberPending   MemberStatus = "PENDING"
	MemberExpired   MemberStatus = "EXPIRED"
)

func ParseMemberStatus(s string) (MemberStatus, error) {
	switch status := MemberStatus(s); status {
	case MemberActive, MemberSuspended, MemberPending, MemberExpired:
		return status, nil
	default:
		return "", fmt.Errorf("invalid member status %q", s)
	}
}

// Role is the capability a caller holds.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

func ParseRole(s string) (Role, error) {
	switch role := Role(s); role {
	case RoleMember, RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// Actor is the resolved caller of an operation. ID is the member id for members.
type Actor struct {
	ID   string
	Role Role
}

// BuildActor creates an Actor.
func BuildActor(id string, role Role) Actor {
	return Actor{ID: id, Role: role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
