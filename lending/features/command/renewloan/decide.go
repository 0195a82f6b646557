package renewloan

import (
	"slices"
	"strconv"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonLoanNotFound = "loan %s not found"
)

// Decide determines whether the loan can be renewed.
//
// Business Rules:
//
//	GIVEN: an ACTIVE, not yet overdue loan below the renewal limit and without penalty
//	WHEN: RenewLoan is received from the borrower or an administrator
//	THEN: LoanRenewed + AuditEntryRecorded, the due date moves forward by the loan period
//	ERROR: NotFound if the loan does not exist
//	ERROR: Forbidden if the caller is someone else's borrower, or the borrower lost good standing
//	ERROR: Conflict if the loan is not ACTIVE, the renewal limit is reached, or a penalty is recorded
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, policy, now := command.Actor, command.Policy, command.OccurredAt

	loanID := command.LoanID.String()

	loan, found := core.ProjectLoan(history, loanID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonLoanNotFound, loanID))
	}

	if err := core.Authorize(core.TransitionRenew, actor, loan); err != nil {
		return core.ErrorDecision(err)
	}

	if err := core.CanRenew(loan, core.MemberFactsFrom(history, loan.MemberID, now), actor, policy, now); err != nil {
		return core.ErrorDecision(err)
	}

	renewed := core.BuildLoanRenewed(loan, policy.DueDateFrom(loan.DueDate), actor.ID, now)

	return core.SuccessDecision(
		renewed,
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionLoanRenewed,
			core.AuditEntityLoan,
			loanID,
			map[string]string{
				"previousDueDate": renewed.PreviousDueDate.Format(time.RFC3339),
				"dueDate":         renewed.DueDate.Format(time.RFC3339),
				"renewalCount":    strconv.Itoa(renewed.RenewalCount),
			},
			now,
		),
	)
}

// BuildEventFilter selects the loan and the member profile with all of its loans.
func BuildEventFilter(command Command, memberID string) eventstore.Filter {
	eventTypes := slices.Concat(
		core.LoanEventTypes(),
		core.MemberEventTypes(),
	)

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(
			eventstore.P("LoanID", command.LoanID.String()),
			eventstore.P("MemberID", memberID),
		).
		Finalize()
}
