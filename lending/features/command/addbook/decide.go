package addbook

import (
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonDuplicateISBN = "a book with ISBN %s is already catalogued"
)

// Decide determines whether the title can be catalogued.
//
// Business Rules:
//
//	GIVEN: no catalog entry with the book id or the ISBN
//	WHEN: AddBook is received
//	THEN: BookAddedToCatalog + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: Conflict if another book already has the ISBN
//	IDEMPOTENCY: the book id is already catalogued
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, now := command.Actor, command.OccurredAt

	if err := core.Authorize(core.TransitionAdminister, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	bookID := command.BookID.String()

	if _, found := core.ProjectBook(history, bookID); found {
		return core.IdempotentDecision()
	}

	for _, event := range history {
		if e, ok := event.(core.BookAddedToCatalog); ok && e.ISBN == command.ISBN {
			return core.ErrorDecision(core.Conflictf(failureReasonDuplicateISBN, command.ISBN))
		}
	}

	return core.SuccessDecision(
		core.BuildBookAddedToCatalog(command.BookID, command.ISBN, command.Title, command.Authors, command.PublicationYear, now),
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionBookAdded,
			core.AuditEntityBook,
			bookID,
			map[string]string{"isbn": command.ISBN, "title": command.Title},
			now,
		),
	)
}

// BuildEventFilter selects catalog entries with the book id or the ISBN.
func BuildEventFilter(command Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.BookAddedToCatalogEventType).
		AndAnyPredicateOf(
			eventstore.P("BookID", command.BookID.String()),
			eventstore.P("ISBN", command.ISBN),
		).
		Finalize()
}
