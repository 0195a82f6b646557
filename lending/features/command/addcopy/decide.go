package addcopy

import (
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonBookNotFound  = "book %s not found"
	failureReasonDuplicateCode = "book already has a copy with code %s"
)

// Decide determines whether the copy can be added to inventory.
//
// Business Rules:
//
//	GIVEN: a catalogued book without a copy of the same code
//	WHEN: AddCopy is received
//	THEN: CopyAddedToInventory (AVAILABLE) + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: NotFound if the book does not exist
//	ERROR: Conflict if the code is taken within the book
//	IDEMPOTENCY: the copy id already exists
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, now := command.Actor, command.OccurredAt

	if err := core.Authorize(core.TransitionAdminister, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	bookID := command.BookID.String()

	if _, found := core.ProjectBook(history, bookID); !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonBookNotFound, bookID))
	}

	copies := core.ProjectCopies(history)
	if _, exists := copies[command.CopyID.String()]; exists {
		return core.IdempotentDecision()
	}

	for _, c := range copies {
		if c.BookID == bookID && c.Code == command.Code {
			return core.ErrorDecision(core.Conflictf(failureReasonDuplicateCode, command.Code))
		}
	}

	return core.SuccessDecision(
		core.BuildCopyAddedToInventory(command.CopyID, command.BookID, command.Code, now),
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionCopyAdded,
			core.AuditEntityCopy,
			command.CopyID.String(),
			map[string]string{"bookId": bookID, "code": command.Code},
			now,
		),
	)
}

// BuildEventFilter selects the book, its copies, and any copy with the command's copy id.
func BuildEventFilter(command Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.BookAddedToCatalogEventType, core.CopyAddedToInventoryEventType).
		AndAnyPredicateOf(
			eventstore.P("BookID", command.BookID.String()),
			eventstore.P("CopyID", command.CopyID.String()),
		).
		Finalize()
}
