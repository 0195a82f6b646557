package changecopystatus

import (
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonCopyNotFound  = "copy %s not found"
	failureReasonCopyOnLoan    = "copy %s is on loan, its status cannot be changed"
	failureReasonInvalidStatus = "copy status cannot be set to %s"
)

// Decide determines whether the copy status changes.
//
// Business Rules:
//
//	GIVEN: a copy that is not ON_LOAN
//	WHEN: ChangeCopyStatus is received with AVAILABLE, LOST or DAMAGED
//	THEN: CopyStatusChanged + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: NotFound if the copy does not exist
//	ERROR: Conflict if the copy is ON_LOAN or the target status is ON_LOAN
//	IDEMPOTENCY: the copy already has the status
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, now := command.Actor, command.OccurredAt

	if err := core.Authorize(core.TransitionAdminister, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	if _, err := core.ParseCopyStatus(string(command.Status)); err != nil {
		return core.ErrorDecision(core.Conflictf(failureReasonInvalidStatus, command.Status))
	}

	copyID := command.CopyID.String()

	current, found := core.ProjectCopy(history, copyID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonCopyNotFound, copyID))
	}

	if current.Status == core.CopyOnLoan {
		return core.ErrorDecision(core.Conflictf(failureReasonCopyOnLoan, current.Code))
	}

	if current.Status == command.Status {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildCopyStatusChanged(copyID, current.BookID, command.Status, actor.ID, now),
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionCopyStatusSet,
			core.AuditEntityCopy,
			copyID,
			map[string]string{"status": string(command.Status), "previousStatus": string(current.Status)},
			now,
		),
	)
}

// BuildEventFilter selects the inventory events of the copy, claims and releases included.
func BuildEventFilter(command Command) eventstore.Filter {
	eventTypes := core.CopyEventTypes()

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(eventstore.P("CopyID", command.CopyID.String())).
		Finalize()
}
