package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Every loan event carries LoanID, MemberID and BookID, so the history of a loan and the
// loans of a member can be selected by a single predicate each.

// LoanRequestedEventType is the event type identifier.
const LoanRequestedEventType = "LoanRequested"

// LoanRequested represents a borrow request. RequestedCopyID is the copy resolved at request
// time; it is not claimed until the loan is approved.
type LoanRequested struct {
	LoanID          LoanIDString
	MemberID        MemberIDString
	BookID          BookIDString
	RequestedCopyID CopyIDString
	OccurredAt      OccurredAt
}

// BuildLoanRequested creates a new LoanRequested event.
func BuildLoanRequested(loanID, memberID, bookID, requestedCopyID string, occurredAt time.Time) LoanRequested {
	return LoanRequested{
		LoanID:          loanID,
		MemberID:        memberID,
		BookID:          bookID,
		RequestedCopyID: requestedCopyID,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

func (e LoanRequested) EventType() string {
	return LoanRequestedEventType
}

func (e LoanRequested) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// LoanApprovedEventType is the event type identifier.
const LoanApprovedEventType = "LoanApproved"

// LoanApproved represents the assignment of a copy to a loan. BorrowedAt and DueDate are fixed here.
type LoanApproved struct {
	LoanID       LoanIDString
	MemberID     MemberIDString
	BookID       BookIDString
	CopyID       CopyIDString
	BorrowedAt   time.Time
	DueDate      time.Time
	AutoApproved bool
	ApprovedBy   string
	OccurredAt   OccurredAt
}

// BuildLoanApproved creates a new LoanApproved event.
func BuildLoanApproved(
	loan Loan,
	copyID string,
	dueDate time.Time,
	autoApproved bool,
	approvedBy string,
	occurredAt time.Time,
) LoanApproved {

	return LoanApproved{
		LoanID:       loan.LoanID,
		MemberID:     loan.MemberID,
		BookID:       loan.BookID,
		CopyID:       copyID,
		BorrowedAt:   ToOccurredAt(occurredAt),
		DueDate:      ToOccurredAt(dueDate),
		AutoApproved: autoApproved,
		ApprovedBy:   approvedBy,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

func (e LoanApproved) EventType() string {
	return LoanApprovedEventType
}

func (e LoanApproved) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// LoanRejectedEventType is the event type identifier.
const LoanRejectedEventType = "LoanRejected"

// LoanRejected represents an administrator declining a borrow request.
type LoanRejected struct {
	LoanID     LoanIDString
	MemberID   MemberIDString
	BookID     BookIDString
	Reason     string
	RejectedBy string
	OccurredAt OccurredAt
}

// BuildLoanRejected creates a new LoanRejected event.
func BuildLoanRejected(loan Loan, reason, rejectedBy string, occurredAt time.Time) LoanRejected {
	return LoanRejected{
		LoanID:     loan.LoanID,
		MemberID:   loan.MemberID,
		BookID:     loan.BookID,
		Reason:     reason,
		RejectedBy: rejectedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e LoanRejected) EventType() string {
	return LoanRejectedEventType
}

func (e LoanRejected) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// LoanCheckedOutEventType is the event type identifier.
const LoanCheckedOutEventType = "LoanCheckedOut"

// LoanCheckedOut represents the physical handoff of the assigned copy to the borrower.
type LoanCheckedOut struct {
	LoanID       LoanIDString
	MemberID     MemberIDString
	BookID       BookIDString
	CopyID       CopyIDString
	CheckedOutBy string
	OccurredAt   OccurredAt
}

// BuildLoanCheckedOut creates a new LoanCheckedOut event.
func BuildLoanCheckedOut(loan Loan, checkedOutBy string, occurredAt time.Time) LoanCheckedOut {
	return LoanCheckedOut{
		LoanID:       loan.LoanID,
		MemberID:     loan.MemberID,
		BookID:       loan.BookID,
		CopyID:       loan.CopyID,
		CheckedOutBy: checkedOutBy,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

func (e LoanCheckedOut) EventType() string {
	return LoanCheckedOutEventType
}

func (e LoanCheckedOut) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// LoanRenewedEventType is the event type identifier.
const LoanRenewedEventType = "LoanRenewed"

// LoanRenewed represents a due date extension. RenewalCount is the count after this renewal.
type LoanRenewed struct {
	LoanID          LoanIDString
	MemberID        MemberIDString
	BookID          BookIDString
	CopyID          CopyIDString
	PreviousDueDate time.Time
	DueDate         time.Time
	RenewalCount    int
	RenewedBy       string
	OccurredAt      OccurredAt
}

// BuildLoanRenewed creates a new LoanRenewed event.
func BuildLoanRenewed(loan Loan, dueDate time.Time, renewedBy string, occurredAt time.Time) LoanRenewed {
	return LoanRenewed{
		LoanID:          loan.LoanID,
		MemberID:        loan.MemberID,
		BookID:          loan.BookID,
		CopyID:          loan.CopyID,
		PreviousDueDate: loan.DueDate,
		DueDate:         ToOccurredAt(dueDate),
		RenewalCount:    loan.RenewalCount + 1,
		RenewedBy:       renewedBy,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

func (e LoanRenewed) EventType() string {
	return LoanRenewedEventType
}

func (e LoanRenewed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// LoanCancelledEventType is the event type identifier.
const LoanCancelledEventType = "LoanCancelled"

// LoanCancelled represents the withdrawal of a REQUESTED or APPROVED loan.
type LoanCancelled struct {
	LoanID      LoanIDString
	MemberID    MemberIDString
	BookID      BookIDString
	CopyID      CopyIDString
	CancelledBy string
	OccurredAt  OccurredAt
}

// BuildLoanCancelled creates a new LoanCancelled event.
func BuildLoanCancelled(loan Loan, cancelledBy string, occurredAt time.Time) LoanCancelled {
	return LoanCancelled{
		LoanID:      loan.LoanID,
		MemberID:    loan.MemberID,
		BookID:      loan.BookID,
		CopyID:      loan.CopyID,
		CancelledBy: cancelledBy,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e LoanCancelled) EventType() string {
	return LoanCancelledEventType
}

func (e LoanCancelled) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// LoanReturnedEventType is the event type identifier.
const LoanReturnedEventType = "LoanReturned"

// LoanReturned represents the return of the copy. PenaltyAccrued is fixed here, once.
type LoanReturned struct {
	LoanID         LoanIDString
	MemberID       MemberIDString
	BookID         BookIDString
	CopyID         CopyIDString
	PenaltyAccrued decimal.Decimal
	OverdueDays    int
	ReturnedBy     string
	OccurredAt     OccurredAt
}

// BuildLoanReturned creates a new LoanReturned event. The return instant is occurredAt.
func BuildLoanReturned(loan Loan, penalty decimal.Decimal, overdueDays int, returnedBy string, occurredAt time.Time) LoanReturned {
	return LoanReturned{
		LoanID:         loan.LoanID,
		MemberID:       loan.MemberID,
		BookID:         loan.BookID,
		CopyID:         loan.CopyID,
		PenaltyAccrued: penalty,
		OverdueDays:    overdueDays,
		ReturnedBy:     returnedBy,
		OccurredAt:     ToOccurredAt(occurredAt),
	}
}

func (e LoanReturned) EventType() string {
	return LoanReturnedEventType
}

func (e LoanReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// LoanEventTypes lists every event type that changes a loan.
func LoanEventTypes() []string {
	return []string{
		LoanRequestedEventType,
		LoanApprovedEventType,
		LoanRejectedEventType,
		LoanCheckedOutEventType,
		LoanRenewedEventType,
		LoanCancelledEventType,
		LoanReturnedEventType,
	}
}

// CopyEventTypes lists every event type that changes a copy.
func CopyEventTypes() []string {
	return []string{
		CopyAddedToInventoryEventType,
		CopyStatusChangedEventType,
		CopyClaimedEventType,
		CopyReleasedEventType,
	}
}

// MemberEventTypes lists every event type that changes a member profile.
func MemberEventTypes() []string {
	return []string{
		MemberRegisteredEventType,
		MemberStatusChangedEventType,
	}
}
