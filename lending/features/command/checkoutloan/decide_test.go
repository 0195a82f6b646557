package checkoutloan_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/checkoutloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

var dueDate = fixtures.Now.AddDate(0, 0, 13)

func givenApprovedLoan() (fixtures.Loan, core.DomainEvents) {
	loan := fixtures.NewLoan(uuid.New(), uuid.New(), uuid.New())

	return loan, fixtures.Join(
		fixtures.Events(
			fixtures.Copy(loan.CopyID, loan.BookID, "B-001"),
			fixtures.Member(loan.MemberID, core.MemberActive),
		),
		loan.Approved(fixtures.Now.AddDate(0, 0, -1), dueDate),
	)
}

func Test_Decide_Success_KeepsApprovalDates(t *testing.T) {
	// arrange
	loan, history := givenApprovedLoan()
	command := checkoutloan.BuildCommand(loan.LoanID, fixtures.Admin(), fixtures.Now)

	// act
	result := checkoutloan.Decide(history, command)

	// assert
	require.NoError(t, result.HasError())
	require.Equal(t,
		[]string{core.LoanCheckedOutEventType, core.AuditEntryRecordedEventType},
		fixtures.EventTypes(result.Events),
	)

	projected, _ := core.ProjectLoan(fixtures.Join(history, result.Events), loan.LoanID.String())
	assert.Equal(t, core.StatusActive, projected.Status)
	assert.Equal(t, dueDate, projected.DueDate)
	assert.Equal(t, fixtures.Now.AddDate(0, 0, -1), projected.BorrowedAt)
}

func Test_Decide_Conflict_WhenLoanIsNotApproved(t *testing.T) {
	loan := fixtures.NewLoan(uuid.New(), uuid.New(), uuid.New())
	history := fixtures.Join(fixtures.Events(fixtures.Member(loan.MemberID, core.MemberActive)), loan.Requested(fixtures.Now.Add(-time.Hour)))

	result := checkoutloan.Decide(history, checkoutloan.BuildCommand(loan.LoanID, fixtures.Admin(), fixtures.Now))

	err := result.HasError()
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, "loan is REQUESTED, only APPROVED loans can be checked out", core.ReasonOf(err))
}

func Test_Decide_Conflict_WhenMemberWasSuspended(t *testing.T) {
	// arrange
	loan, history := givenApprovedLoan()
	history = fixtures.Join(history, fixtures.Events(
		core.BuildMemberStatusChanged(loan.MemberID.String(), core.MemberSuspended, core.MemberActive, fixtures.AdminID, fixtures.Now.Add(-time.Hour)),
	))

	// act
	result := checkoutloan.Decide(history, checkoutloan.BuildCommand(loan.LoanID, fixtures.Admin(), fixtures.Now))

	// assert
	err := result.HasError()
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, "member is not active (SUSPENDED)", core.ReasonOf(err))
}

func Test_Decide_Conflict_WhenCopyIsNoLongerHeld(t *testing.T) {
	// arrange
	loan, history := givenApprovedLoan()
	history = fixtures.Join(history, fixtures.Events(
		core.BuildCopyReleased(loan.CopyID.String(), loan.BookID.String(), loan.LoanID.String(), fixtures.Now.Add(-time.Hour)),
	))

	// act
	result := checkoutloan.Decide(history, checkoutloan.BuildCommand(loan.LoanID, fixtures.Admin(), fixtures.Now))

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrConflict)
}

func Test_Decide_Forbidden_ForMembers(t *testing.T) {
	loan, history := givenApprovedLoan()

	result := checkoutloan.Decide(history, checkoutloan.BuildCommand(loan.LoanID, fixtures.Borrower(loan.MemberID), fixtures.Now))

	assert.ErrorIs(t, result.HasError(), core.ErrForbidden)
}

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	loan, history := givenApprovedLoan()
	es := fixtures.NewStore(t, history...)
	handler := checkoutloan.NewCommandHandler(es)

	// act
	result, err := handler.Handle(context.Background(), checkoutloan.BuildCommand(loan.LoanID, fixtures.Admin(), fixtures.Now))

	// assert
	require.NoError(t, err)
	assert.Len(t, result.Events, 2)

	projected, _ := core.ProjectLoan(fixtures.StoredEvents(t, es), loan.LoanID.String())
	assert.Equal(t, core.StatusActive, projected.Status)
}

func Test_CommandHandler_Handle_NotFound(t *testing.T) {
	es := fixtures.NewStore(t)

	_, err := checkoutloan.NewCommandHandler(es).Handle(context.Background(), checkoutloan.BuildCommand(uuid.New(), fixtures.Admin(), fixtures.Now))

	assert.ErrorIs(t, err, core.ErrNotFound)
}
