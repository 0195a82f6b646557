package cancelloan

import (
	"slices"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonLoanNotFound  = "loan %s not found"
	failureReasonNotCancelable = "loan is %s, only REQUESTED or APPROVED loans can be cancelled"
	failureReasonCopyNotFound  = "copy %s not found"
)

// Decide determines whether the loan can be cancelled and releases a claimed copy.
//
// Business Rules:
//
//	GIVEN: a REQUESTED or APPROVED loan
//	WHEN: CancelLoan is received from the borrower or an administrator
//	THEN: LoanCancelled [+ CopyReleased if the loan was APPROVED] + AuditEntryRecorded
//	ERROR: NotFound if the loan does not exist
//	ERROR: Forbidden if the caller is neither the borrower nor an administrator
//	ERROR: Conflict if the loan is in any other status
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, now := command.Actor, command.OccurredAt

	loanID := command.LoanID.String()

	loan, found := core.ProjectLoan(history, loanID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonLoanNotFound, loanID))
	}

	if err := core.Authorize(core.TransitionCancel, actor, loan); err != nil {
		return core.ErrorDecision(err)
	}

	if loan.Status != core.StatusRequested && loan.Status != core.StatusApproved {
		return core.ErrorDecision(core.Conflictf(failureReasonNotCancelable, loan.StatusAt(now)))
	}

	events := core.DomainEvents{core.BuildLoanCancelled(loan, actor.ID, now)}

	if loan.HoldsCopy() {
		held, found := core.ProjectCopy(history, loan.CopyID)
		if !found {
			return core.ErrorDecision(core.NotFoundf(failureReasonCopyNotFound, loan.CopyID))
		}

		released, err := core.ReleaseCopy(held, loan, now)
		if err != nil {
			return core.ErrorDecision(err)
		}

		events = append(events, released)
	}

	events = append(events, core.BuildAuditEntryRecorded(
		actor,
		core.AuditActionLoanCancelled,
		core.AuditEntityLoan,
		loanID,
		map[string]string{"previousStatus": string(loan.Status), "copyId": loan.CopyID},
		now,
	))

	return core.SuccessDecision(events...)
}

// BuildEventFilter selects the loan and the assigned copy with every loan that references it.
func BuildEventFilter(command Command, copyID string) eventstore.Filter {
	eventTypes := slices.Concat(
		core.LoanEventTypes(),
		core.CopyEventTypes(),
	)

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(
			eventstore.P("LoanID", command.LoanID.String()),
			eventstore.P("CopyID", copyID),
		).
		Finalize()
}
