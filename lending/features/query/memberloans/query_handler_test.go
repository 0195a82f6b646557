package memberloans_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/memberloans"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

func Test_QueryHandler_Handle_NewestFirst(t *testing.T) {
	// arrange
	memberID, bookID := uuid.New(), uuid.New()
	older := fixtures.NewLoan(memberID, bookID, uuid.New())
	newer := fixtures.NewLoan(memberID, bookID, uuid.New())
	foreign := fixtures.NewLoan(uuid.New(), bookID, uuid.New())

	es := fixtures.NewStore(t, fixtures.Join(
		fixtures.Events(
			fixtures.Book(bookID),
			fixtures.Copy(older.CopyID, bookID, "B-001"),
			fixtures.Copy(newer.CopyID, bookID, "B-002"),
		),
		older.Returned(fixtures.Now.AddDate(0, 0, -20), fixtures.Now.AddDate(0, 0, -21), "0"),
		newer.Requested(fixtures.Now.Add(-time.Hour)),
		foreign.Requested(fixtures.Now.Add(-time.Minute)),
	)...)
	handler := memberloans.NewQueryHandler(es)

	// act
	views, err := handler.Handle(context.Background(), memberloans.BuildQuery(memberID, fixtures.Borrower(memberID), fixtures.Now))

	// assert
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, newer.LoanID.String(), views[0].LoanID)
	assert.Equal(t, core.StatusRequested, views[0].Status)
	assert.Empty(t, views[0].CopyCode)
	assert.Equal(t, older.LoanID.String(), views[1].LoanID)
	assert.Equal(t, core.StatusReturned, views[1].Status)
	assert.Equal(t, "B-001", views[1].CopyCode)
	assert.Equal(t, "The Go Programming Language", views[1].BookTitle)
}

func Test_QueryHandler_Handle_EmptyForMemberWithoutLoans(t *testing.T) {
	memberID := uuid.New()

	views, err := memberloans.NewQueryHandler(fixtures.NewStore(t)).Handle(context.Background(), memberloans.BuildQuery(memberID, fixtures.Admin(), fixtures.Now))

	require.NoError(t, err)
	assert.Empty(t, views)
}

func Test_QueryHandler_Handle_Forbidden_ForOtherMembers(t *testing.T) {
	_, err := memberloans.NewQueryHandler(fixtures.NewStore(t)).Handle(context.Background(), memberloans.BuildQuery(uuid.New(), fixtures.Borrower(uuid.New()), fixtures.Now))

	assert.ErrorIs(t, err, core.ErrForbidden)
}
