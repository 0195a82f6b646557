package returnloan

import (
	"slices"
	"strconv"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonLoanNotFound    = "loan %s not found"
	failureReasonAlreadyReturned = "loan is already RETURNED"
	failureReasonNotReturnable   = "loan is %s, only ACTIVE or OVERDUE loans can be returned"
	failureReasonCopyNotFound    = "copy %s not found"
)

// Decide determines whether the loan can be returned and fixes its penalty.
//
// Business Rules:
//
//	GIVEN: an ACTIVE or OVERDUE loan
//	WHEN: ReturnLoan is received from the borrower or an administrator
//	THEN: LoanReturned (with penalty) + CopyReleased + AuditEntryRecorded
//	ERROR: NotFound if the loan does not exist
//	ERROR: Forbidden if the caller is neither the borrower nor an administrator
//	ERROR: Conflict if the loan is in any other status
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, policy, now := command.Actor, command.Policy, command.OccurredAt

	loanID := command.LoanID.String()

	loan, found := core.ProjectLoan(history, loanID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonLoanNotFound, loanID))
	}

	if err := core.Authorize(core.TransitionReturn, actor, loan); err != nil {
		return core.ErrorDecision(err)
	}

	switch status := loan.StatusAt(now); status {
	case core.StatusActive, core.StatusOverdue:
	case core.StatusReturned:
		return core.ErrorDecision(core.Conflictf(failureReasonAlreadyReturned))
	default:
		return core.ErrorDecision(core.Conflictf(failureReasonNotReturnable, status))
	}

	held, found := core.ProjectCopy(history, loan.CopyID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonCopyNotFound, loan.CopyID))
	}

	released, err := core.ReleaseCopy(held, loan, now)
	if err != nil {
		return core.ErrorDecision(err)
	}

	penalty, overdueDays := core.Penalty(loan.DueDate, now, policy.OverdueFeePerDay, policy.OverdueFeeCapPerLoan)

	return core.SuccessDecision(
		core.BuildLoanReturned(loan, penalty, overdueDays, actor.ID, now),
		released,
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionLoanReturned,
			core.AuditEntityLoan,
			loanID,
			map[string]string{
				"copyId":         loan.CopyID,
				"penaltyAccrued": penalty.StringFixed(2),
				"overdueDays":    strconv.Itoa(overdueDays),
			},
			now,
		),
	)
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
