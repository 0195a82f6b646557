package loandetails_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/loandetails"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

func givenStoredActiveLoan(t *testing.T, dueDate time.Time) (fixtures.Loan, loandetails.QueryHandler) {
	t.Helper()

	loan := fixtures.NewLoan(uuid.New(), uuid.New(), uuid.New())
	es := fixtures.NewStore(t, fixtures.Join(
		fixtures.Events(fixtures.Book(loan.BookID), fixtures.Copy(loan.CopyID, loan.BookID, "B-007")),
		loan.Active(dueDate),
	)...)

	return loan, loandetails.NewQueryHandler(es)
}

func Test_QueryHandler_Handle_EnrichesLoan(t *testing.T) {
	// arrange
	loan, handler := givenStoredActiveLoan(t, fixtures.Now.AddDate(0, 0, 3))

	// act
	view, err := handler.Handle(context.Background(), loandetails.BuildQuery(loan.LoanID, fixtures.Borrower(loan.MemberID), fixtures.Now))

	// assert
	require.NoError(t, err)
	assert.Equal(t, loan.LoanID.String(), view.LoanID)
	assert.Equal(t, core.StatusActive, view.Status)
	assert.Equal(t, "The Go Programming Language", view.BookTitle)
	assert.Equal(t, "978-0-13-468599-1", view.BookISBN)
	assert.Equal(t, "B-007", view.CopyCode)
	require.NotNil(t, view.DueDate)
	assert.True(t, fixtures.Now.AddDate(0, 0, 3).Equal(*view.DueDate))
	assert.Nil(t, view.ReturnedAt)
}

func Test_QueryHandler_Handle_DerivesOverdue(t *testing.T) {
	loan, handler := givenStoredActiveLoan(t, fixtures.Now.Add(-time.Minute))

	view, err := handler.Handle(context.Background(), loandetails.BuildQuery(loan.LoanID, fixtures.Admin(), fixtures.Now))

	require.NoError(t, err)
	assert.Equal(t, core.StatusOverdue, view.Status)
}

func Test_QueryHandler_Handle_Failures(t *testing.T) {
	loan, handler := givenStoredActiveLoan(t, fixtures.Now.AddDate(0, 0, 3))

	_, err := handler.Handle(context.Background(), loandetails.BuildQuery(loan.LoanID, fixtures.Borrower(uuid.New()), fixtures.Now))
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = handler.Handle(context.Background(), loandetails.BuildQuery(uuid.New(), fixtures.Admin(), fixtures.Now))
	assert.ErrorIs(t, err, core.ErrNotFound)
}
