package core_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func givenPolicy() core.Policy {
	return core.Policy{
		ApprovalsRequired:    true,
		LoanDays:             14,
		MaxRenewals:          2,
		OverdueFeePerDay:     decimal.RequireFromString("1.00"),
		OverdueFeeCapPerLoan: decimal.RequireFromString("50.00"),
		MaxConcurrentLoans:   3,
	}
}

func givenMember(memberID uuid.UUID, status core.MemberStatus) core.MemberRegistered {
	return core.BuildMemberRegistered(memberID, "Jane Reader", "jane@example.org", status, testNow.AddDate(0, -1, 0))
}

// givenActiveLoan returns the events of a checked out loan due at dueDate.
func givenActiveLoan(memberID uuid.UUID, dueDate time.Time) (core.DomainEvents, core.Loan) {
	loan := core.Loan{
		LoanID:   uuid.NewString(),
		MemberID: memberID.String(),
		BookID:   uuid.NewString(),
	}
	copyID := uuid.NewString()
	borrowedAt := dueDate.AddDate(0, 0, -14)

	events := core.DomainEvents{
		core.BuildLoanRequested(loan.LoanID, loan.MemberID, loan.BookID, "", borrowedAt.Add(-time.Hour)),
		core.BuildLoanApproved(loan, copyID, dueDate, false, "admin", borrowedAt),
	}

	loan.CopyID = copyID
	events = append(events, core.BuildLoanCheckedOut(loan, "admin", borrowedAt.Add(time.Hour)))

	return events, loan
}
