package approveloan

import (
	"slices"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonLoanNotFound     = "loan %s not found"
	failureReasonNotRequested     = "loan is %s, only REQUESTED loans can be approved"
	failureReasonCopyNotFound     = "copy %s not found"
	failureReasonNoLongerEligible = "borrower no longer eligible: %s"
)

// Decide determines whether the loan can be approved with the given copy.
//
// Business Rules:
//
//	GIVEN: a REQUESTED loan, an AVAILABLE copy of its book, and a still eligible borrower
//	WHEN: ApproveLoan is received
//	THEN: LoanApproved + CopyClaimed + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: NotFound if the loan or the copy does not exist
//	ERROR: Conflict if the loan is not REQUESTED, the copy is not assignable, or the borrower became ineligible
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, policy, now := command.Actor, command.Policy, command.OccurredAt

	if err := core.Authorize(core.TransitionApprove, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	loanID, copyID := command.LoanID.String(), command.CopyID.String()

	loans := core.ProjectLoans(history)
	loan, found := loans[loanID]
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonLoanNotFound, loanID))
	}

	if loan.Status != core.StatusRequested {
		return core.ErrorDecision(core.Conflictf(failureReasonNotRequested, loan.Status))
	}

	selected, found := core.ProjectCopy(history, copyID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonCopyNotFound, copyID))
	}

	claimed, err := core.ClaimCopy(selected, loan, loans, now)
	if err != nil {
		return core.ErrorDecision(err)
	}

	if err := core.CanBorrow(core.MemberFactsFrom(history, loan.MemberID, now), policy); err != nil {
		return core.ErrorDecision(core.Conflictf(failureReasonNoLongerEligible, core.ReasonOf(err)))
	}

	return core.SuccessDecision(
		core.BuildLoanApproved(loan, copyID, policy.DueDateFrom(now), false, actor.ID, now),
		claimed,
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionLoanApproved,
			core.AuditEntityLoan,
			loanID,
			map[string]string{"copyId": copyID, "copyCode": selected.Code},
			now,
		),
	)
}

// BuildEventFilter selects the loan, every loan that references the copy, the copy itself,
// and the member with all of its loans.
func BuildEventFilter(command Command, memberID string) eventstore.Filter {
	eventTypes := slices.Concat(
		core.LoanEventTypes(),
		core.CopyEventTypes(),
		core.MemberEventTypes(),
	)

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(
			eventstore.P("LoanID", command.LoanID.String()),
			eventstore.P("CopyID", command.CopyID.String()),
			eventstore.P("MemberID", memberID),
		).
		Finalize()
}
