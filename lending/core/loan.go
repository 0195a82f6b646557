package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is the projected state of one loan. Zero times mean "not set yet".
type Loan struct {
	LoanID          LoanIDString
	MemberID        MemberIDString
	BookID          BookIDString
	CopyID          CopyIDString
	RequestedCopyID CopyIDString
	Status          LoanStatus // stored status, never OVERDUE
	RequestedAt     time.Time
	BorrowedAt      time.Time
	DueDate         time.Time
	ReturnedAt      time.Time
	ClosedAt        time.Time
	RenewalCount    int
	PenaltyAccrued  decimal.Decimal
	OverdueDays     int
	RejectionReason string
	ClosedBy        string
}

// StatusAt returns the effective status at now: an ACTIVE loan whose due date is
// strictly before now is OVERDUE.
func (l Loan) StatusAt(now time.Time) LoanStatus {
	if l.Status == StatusActive && !l.DueDate.IsZero() && l.DueDate.Before(now) {
		return StatusOverdue
	}

	return l.Status
}

// HoldsCopy reports whether the loan currently has its copy claimed.
func (l Loan) HoldsCopy() bool {
	return l.CopyID != "" && (l.Status == StatusApproved || l.Status == StatusActive)
}

// HasPenalty reports whether a penalty was recorded for the loan.
func (l Loan) HasPenalty() bool {
	return l.PenaltyAccrued.IsPositive()
}

func (l *Loan) apply(event DomainEvent) {
	switch e := event.(type) {
	case LoanRequested:
		*l = Loan{
			LoanID:          e.LoanID,
			MemberID:        e.MemberID,
			BookID:          e.BookID,
			RequestedCopyID: e.RequestedCopyID,
			Status:          StatusRequested,
			RequestedAt:     e.OccurredAt,
			PenaltyAccrued:  decimal.Zero,
		}

	case LoanApproved:
		l.Status = StatusApproved
		l.CopyID = e.CopyID
		l.BorrowedAt = e.BorrowedAt
		l.DueDate = e.DueDate

	case LoanRejected:
		l.Status = StatusRejected
		l.RejectionReason = e.Reason
		l.ClosedBy = e.RejectedBy
		l.ClosedAt = e.OccurredAt

	case LoanCheckedOut:
		l.Status = StatusActive

	case LoanRenewed:
		l.DueDate = e.DueDate
		l.RenewalCount = e.RenewalCount

	case LoanCancelled:
		l.Status = StatusCancelled
		l.ClosedBy = e.CancelledBy
		l.ClosedAt = e.OccurredAt

	case LoanReturned:
		l.Status = StatusReturned
		l.ReturnedAt = e.OccurredAt
		l.PenaltyAccrued = e.PenaltyAccrued
		l.OverdueDays = e.OverdueDays
		l.ClosedBy = e.ReturnedBy
		l.ClosedAt = e.OccurredAt
	}
}

// loanRefsOf returns the loan, member, book and copy ids a loan event carries.
// ok is false for events that do not belong to a loan.
func loanRefsOf(event DomainEvent) (loanID, memberID, bookID, copyID string, ok bool) {
	switch e := event.(type) {
	case LoanRequested:
		return e.LoanID, e.MemberID, e.BookID, "", true
	case LoanApproved:
		return e.LoanID, e.MemberID, e.BookID, e.CopyID, true
	case LoanRejected:
		return e.LoanID, e.MemberID, e.BookID, "", true
	case LoanCheckedOut:
		return e.LoanID, e.MemberID, e.BookID, e.CopyID, true
	case LoanRenewed:
		return e.LoanID, e.MemberID, e.BookID, e.CopyID, true
	case LoanCancelled:
		return e.LoanID, e.MemberID, e.BookID, e.CopyID, true
	case LoanReturned:
		return e.LoanID, e.MemberID, e.BookID, e.CopyID, true
	default:
		return "", "", "", "", false
	}
}

// ProjectLoans replays history into all loans it contains, keyed by loan id.
// A history selected by copy id may lack the request of another loan; such loans are
// projected from the events present, which is enough to see whether they hold the copy.
func ProjectLoans(history DomainEvents) map[LoanIDString]Loan {
	loans := make(map[LoanIDString]Loan)

	for _, event := range history {
		loanID, memberID, bookID, copyID, ok := loanRefsOf(event)
		if !ok {
			continue
		}

		loan, found := loans[loanID]
		if !found {
			loan = Loan{LoanID: loanID, MemberID: memberID, BookID: bookID, CopyID: copyID, PenaltyAccrued: decimal.Zero}
		}

		loan.apply(event)
		loans[loanID] = loan
	}

	return loans
}

// ProjectLoan replays history into the loan with loanID.
func ProjectLoan(history DomainEvents, loanID string) (Loan, bool) {
	loan, found := ProjectLoans(history)[loanID]

	return loan, found
}
