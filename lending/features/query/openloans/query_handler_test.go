package openloans_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/openloans"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

func Test_QueryHandler_Handle_ListsOpenLoansByDueDate(t *testing.T) {
	// arrange
	bookID := uuid.New()
	overdue := fixtures.NewLoan(uuid.New(), bookID, uuid.New())
	active := fixtures.NewLoan(uuid.New(), bookID, uuid.New())
	approved := fixtures.NewLoan(uuid.New(), bookID, uuid.New())
	requested := fixtures.NewLoan(uuid.New(), bookID, uuid.New())
	returned := fixtures.NewLoan(uuid.New(), bookID, uuid.New())

	es := fixtures.NewStore(t, fixtures.Join(
		fixtures.Events(fixtures.Book(bookID), fixtures.Copy(overdue.CopyID, bookID, "B-001")),
		active.Active(fixtures.Now.AddDate(0, 0, 5)),
		overdue.Active(fixtures.Now.AddDate(0, 0, -2)),
		approved.Approved(fixtures.Now.Add(-time.Hour), fixtures.Now.AddDate(0, 0, 14)),
		requested.Requested(fixtures.Now.Add(-time.Minute)),
		returned.Returned(fixtures.Now.AddDate(0, 0, -3), fixtures.Now.AddDate(0, 0, -4), "0"),
	)...)

	// act
	views, err := openloans.NewQueryHandler(es).Handle(context.Background(), openloans.BuildQuery(fixtures.Now))

	// assert
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, overdue.LoanID.String(), views[0].LoanID)
	assert.Equal(t, core.StatusOverdue, views[0].Status)
	assert.Equal(t, "B-001", views[0].CopyCode)
	assert.Equal(t, active.LoanID.String(), views[1].LoanID)
	assert.Equal(t, core.StatusActive, views[1].Status)
	assert.Equal(t, approved.LoanID.String(), views[2].LoanID)
	assert.Equal(t, core.StatusApproved, views[2].Status)
}

func Test_QueryHandler_Handle_EmptyStore(t *testing.T) {
	views, err := openloans.NewQueryHandler(fixtures.NewStore(t)).Handle(context.Background(), openloans.BuildQuery(fixtures.Now))

	require.NoError(t, err)
	assert.Empty(t, views)
}
