package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanView is the loan record enriched with the book and copy summary fields for display.
type LoanView struct {
	LoanID          string          `json:"id"`
	MemberID        string          `json:"memberId"`
	BookID          string          `json:"bookId"`
	CopyID          string          `json:"copyId,omitempty"`
	Status          LoanStatus      `json:"status"`
	RequestedAt     time.Time       `json:"requestedAt"`
	BorrowedAt      *time.Time      `json:"borrowedAt"`
	DueDate         *time.Time      `json:"dueDate"`
	ReturnedAt      *time.Time      `json:"returnedAt"`
	RenewalCount    int             `json:"renewalCount"`
	PenaltyAccrued  decimal.Decimal `json:"penaltyAccrued"`
	OverdueDays     int             `json:"overdueDays"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	BookTitle       string          `json:"bookTitle"`
	BookISBN        string          `json:"bookIsbn"`
	CopyCode        string          `json:"copyCode,omitempty"`
}

// BuildLoanView combines a loan with its book and assigned copy. The status is the effective status at now.
func BuildLoanView(loan Loan, book Book, c Copy, now time.Time) LoanView {
	return LoanView{
		LoanID:          loan.LoanID,
		MemberID:        loan.MemberID,
		BookID:          loan.BookID,
		CopyID:          loan.CopyID,
		Status:          loan.StatusAt(now),
		RequestedAt:     loan.RequestedAt,
		BorrowedAt:      optionalTime(loan.BorrowedAt),
		DueDate:         optionalTime(loan.DueDate),
		ReturnedAt:      optionalTime(loan.ReturnedAt),
		RenewalCount:    loan.RenewalCount,
		PenaltyAccrued:  loan.PenaltyAccrued,
		OverdueDays:     loan.OverdueDays,
		RejectionReason: loan.RejectionReason,
		BookTitle:       book.Title,
		BookISBN:        book.ISBN,
		CopyCode:        c.Code,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
