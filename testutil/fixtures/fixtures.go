package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// Now is the fixed clock of all fixtures.
var Now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// AdminID identifies the administrator of all fixtures.
const AdminID = "5b0c3f7e-6a2d-4f51-9e0a-1d7c2b4a8e90"

// Policy returns an auto-approving policy: 14 days, 2 renewals, 1.00 per day capped at 50.00, 3 open loans.
func Policy() core.Policy {
	return core.Policy{
		ApprovalsRequired:    false,
		LoanDays:             14,
		MaxRenewals:          2,
		OverdueFeePerDay:     decimal.RequireFromString("1.00"),
		OverdueFeeCapPerLoan: decimal.RequireFromString("50.00"),
		MaxConcurrentLoans:   3,
	}
}

// ApprovalPolicy returns Policy with approvals required.
func ApprovalPolicy() core.Policy {
	policy := Policy()
	policy.ApprovalsRequired = true

	return policy
}

// Admin returns the administrator actor.
func Admin() core.Actor {
	return core.BuildActor(AdminID, core.RoleAdmin)
}

// Borrower returns the member actor of memberID.
func Borrower(memberID uuid.UUID) core.Actor {
	return core.BuildActor(memberID.String(), core.RoleMember)
}

// Book adds bookID to the catalog.
func Book(bookID uuid.UUID) core.BookAddedToCatalog {
	return core.BuildBookAddedToCatalog(bookID, "978-0-13-468599-1", "The Go Programming Language",
		[]string{"Alan Donovan", "Brian Kernighan"}, 2015, Now.AddDate(-1, 0, 0))
}

// Copy adds copyID with code to the inventory of bookID.
func Copy(copyID, bookID uuid.UUID, code string) core.CopyAddedToInventory {
	return core.BuildCopyAddedToInventory(copyID, bookID, code, Now.AddDate(-1, 0, 0))
}

// Member registers memberID with status.
func Member(memberID uuid.UUID, status core.MemberStatus) core.MemberRegistered {
	return core.BuildMemberRegistered(memberID, "Jane Reader", memberID.String()+"@example.org", status, Now.AddDate(0, -6, 0))
}

// Loan identifies a loan of the fixtures.
type Loan struct {
	LoanID   uuid.UUID
	MemberID uuid.UUID
	BookID   uuid.UUID
	CopyID   uuid.UUID
}

func (l Loan) coreLoan() core.Loan {
	return core.Loan{
		LoanID:   l.LoanID.String(),
		MemberID: l.MemberID.String(),
		BookID:   l.BookID.String(),
		CopyID:   l.CopyID.String(),
	}
}

// Requested returns the events of a loan requested at requestedAt, awaiting approval.
func (l Loan) Requested(requestedAt time.Time) core.DomainEvents {
	return core.DomainEvents{
		core.BuildLoanRequested(l.LoanID.String(), l.MemberID.String(), l.BookID.String(), l.CopyID.String(), requestedAt),
	}
}

// Approved returns the events of a loan approved at approvedAt with the copy claimed.
func (l Loan) Approved(approvedAt, dueDate time.Time) core.DomainEvents {
	return append(l.Requested(approvedAt.Add(-time.Hour)),
		core.BuildLoanApproved(l.coreLoan(), l.CopyID.String(), dueDate, false, AdminID, approvedAt),
		core.BuildCopyClaimed(l.CopyID.String(), l.BookID.String(), l.LoanID.String(), approvedAt),
	)
}

// Active returns the events of a checked out loan due at dueDate.
func (l Loan) Active(dueDate time.Time) core.DomainEvents {
	approvedAt := dueDate.AddDate(0, 0, -14)

	return append(l.Approved(approvedAt, dueDate),
		core.BuildLoanCheckedOut(l.coreLoan(), AdminID, approvedAt.Add(time.Hour)),
	)
}

// Returned returns the events of a loan due at dueDate, returned at returnedAt with penalty.
func (l Loan) Returned(dueDate, returnedAt time.Time, penalty string) core.DomainEvents {
	loan := l.coreLoan()
	loan.DueDate = dueDate
	overdueDays := core.OverdueDays(dueDate, returnedAt)

	return append(l.Active(dueDate),
		core.BuildLoanReturned(loan, decimal.RequireFromString(penalty), overdueDays, AdminID, returnedAt),
		core.BuildCopyReleased(l.CopyID.String(), l.BookID.String(), l.LoanID.String(), returnedAt),
	)
}

// NewLoan returns a loan of memberID for copyID of bookID with a fresh loan id.
func NewLoan(memberID, bookID, copyID uuid.UUID) Loan {
	return Loan{LoanID: uuid.New(), MemberID: memberID, BookID: bookID, CopyID: copyID}
}

// Join concatenates event groups into one history.
func Join(groups ...core.DomainEvents) core.DomainEvents {
	var history core.DomainEvents
	for _, group := range groups {
		history = append(history, group...)
	}

	return history
}

// Events wraps single events into a group for Join.
func Events(events ...core.DomainEvent) core.DomainEvents {
	return events
}
