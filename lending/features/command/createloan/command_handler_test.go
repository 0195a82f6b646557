package createloan_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/createloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	s := givenShelf()
	es := fixtures.NewStore(t, s.history()...)
	handler := createloan.NewCommandHandler(es)
	command := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result, err := handler.Handle(context.Background(), command)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.Len(t, result.Events, 4)

	stored := fixtures.StoredEvents(t, es)
	assert.Len(t, stored, len(s.history())+4)

	copies := core.ProjectCopies(stored)
	assert.Equal(t, core.CopyOnLoan, copies[s.firstID.String()].Status)
	assert.Equal(t, command.LoanID.String(), copies[s.firstID.String()].HolderLoanID)
}

func Test_CommandHandler_Handle_Idempotent_WhenRepeated(t *testing.T) {
	// arrange
	s := givenShelf()
	es := fixtures.NewStore(t, s.history()...)
	handler := createloan.NewCommandHandler(es)
	command := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	_, err := handler.Handle(context.Background(), command)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(context.Background(), command)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Empty(t, result.Events)
	assert.Len(t, fixtures.StoredEvents(t, es), len(s.history())+4)
}

func Test_CommandHandler_Handle_BusinessErrorAppendsNothing(t *testing.T) {
	// arrange
	s := givenShelf()
	es := fixtures.NewStore(t, s.history()...)
	handler := createloan.NewCommandHandler(es)
	command := createloan.BuildCommand(uuid.New(), uuid.New(), uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result, err := handler.Handle(context.Background(), command)

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.Len(t, fixtures.StoredEvents(t, es), len(s.history()))
}

func Test_CommandHandler_Handle_ConcurrentRequestsClaimTheLastCopyOnce(t *testing.T) {
	// arrange
	bookID, copyID := uuid.New(), uuid.New()
	memberIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	history := fixtures.Events(fixtures.Book(bookID), fixtures.Copy(copyID, bookID, "B-001"))
	for _, memberID := range memberIDs {
		history = append(history, fixtures.Member(memberID, core.MemberActive))
	}

	es := fixtures.NewStore(t, history...)
	handler := createloan.NewCommandHandler(es, createloan.WithRetryOptions(shell.WithMaxAttempts(10)))

	// act
	errs := make([]error, len(memberIDs))
	var wg sync.WaitGroup
	for i, memberID := range memberIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			command := createloan.BuildCommand(uuid.New(), bookID, uuid.NullUUID{}, fixtures.Borrower(memberID), fixtures.Policy(), fixtures.Now)
			_, errs[i] = handler.Handle(context.Background(), command)
		}()
	}
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, core.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	claims := 0
	for _, event := range fixtures.StoredEvents(t, es) {
		if _, ok := event.(core.CopyClaimed); ok {
			claims++
		}
	}
	assert.Equal(t, 1, claims)
}
