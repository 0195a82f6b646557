package checkoutloan

import (
	"slices"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonLoanNotFound    = "loan %s not found"
	failureReasonNotApproved     = "loan is %s, only APPROVED loans can be checked out"
	failureReasonMemberNotActive = "member is not active (%s)"
	failureReasonCopyNotHeld     = "copy %s is no longer on loan for this loan"
)

// Decide determines whether the copy of an APPROVED loan can be handed over.
// BorrowedAt and DueDate stay as fixed at approval.
//
// Business Rules:
//
//	GIVEN: an APPROVED loan whose copy is ON_LOAN for it, and an ACTIVE member
//	WHEN: CheckoutLoan is received
//	THEN: LoanCheckedOut + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: NotFound if the loan does not exist
//	ERROR: Conflict if the loan is not APPROVED, the member is not ACTIVE, or the copy is not held
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, now := command.Actor, command.OccurredAt

	if err := core.Authorize(core.TransitionCheckout, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	loanID := command.LoanID.String()

	loan, found := core.ProjectLoan(history, loanID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonLoanNotFound, loanID))
	}

	if loan.Status != core.StatusApproved {
		return core.ErrorDecision(core.Conflictf(failureReasonNotApproved, loan.Status))
	}

	member, _ := core.ProjectMember(history, loan.MemberID)
	if member.Status != core.MemberActive {
		return core.ErrorDecision(core.Conflictf(failureReasonMemberNotActive, member.Status))
	}

	held, found := core.ProjectCopy(history, loan.CopyID)
	if !found || held.Status != core.CopyOnLoan || held.HolderLoanID != loanID {
		return core.ErrorDecision(core.Conflictf(failureReasonCopyNotHeld, loan.CopyID))
	}

	return core.SuccessDecision(
		core.BuildLoanCheckedOut(loan, actor.ID, now),
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionLoanCheckedOut,
			core.AuditEntityLoan,
			loanID,
			map[string]string{"copyId": loan.CopyID, "dueDate": loan.DueDate.Format(time.RFC3339)},
			now,
		),
	)
}

// BuildEventFilter selects the loan, the member profile with its loans, and the assigned copy.
func BuildEventFilter(command Command, memberID, copyID string) eventstore.Filter {
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
			eventstore.P("CopyID", copyID),
			eventstore.P("MemberID", memberID),
		).
		Finalize()
}
