package addbook_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/addbook"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

const isbn = "978-0-13-468599-1"

func givenCommand(bookID uuid.UUID) addbook.Command {
	return addbook.BuildCommand(bookID, isbn, "The Go Programming Language",
		[]string{"Alan Donovan", "Brian Kernighan"}, 2015, fixtures.Admin(), fixtures.Now)
}

func Test_Decide_Success(t *testing.T) {
	// arrange
	bookID := uuid.New()

	// act
	result := addbook.Decide(nil, givenCommand(bookID))

	// assert
	require.NoError(t, result.HasError())
	added := result.Events[0].(core.BookAddedToCatalog)
	assert.Equal(t, bookID.String(), added.BookID)
	assert.Equal(t, []string{"Alan Donovan", "Brian Kernighan"}, added.Authors)
}

func Test_Decide_Idempotent_ForSameBookID(t *testing.T) {
	bookID := uuid.New()

	result := addbook.Decide(fixtures.Events(fixtures.Book(bookID)), givenCommand(bookID))

	assert.True(t, result.IsIdempotent())
}

func Test_Decide_Conflict_ForDuplicateISBN(t *testing.T) {
	result := addbook.Decide(fixtures.Events(fixtures.Book(uuid.New())), givenCommand(uuid.New()))

	err := result.HasError()
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, "a book with ISBN 978-0-13-468599-1 is already catalogued", core.ReasonOf(err))
}

func Test_CommandHandler_Handle_DetectsDuplicateISBNInStore(t *testing.T) {
	// arrange
	es := fixtures.NewStore(t, fixtures.Book(uuid.New()))
	handler := addbook.NewCommandHandler(es)

	// act
	_, err := handler.Handle(context.Background(), givenCommand(uuid.New()))

	// assert
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Len(t, fixtures.StoredEvents(t, es), 1)
}
