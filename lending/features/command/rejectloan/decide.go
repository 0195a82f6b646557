package rejectloan

import (
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

const (
	failureReasonLoanNotFound = "loan %s not found"
	failureReasonNotRequested = "loan is %s, only REQUESTED loans can be rejected"
)

// Decide determines whether the loan can be rejected.
//
// Business Rules:
//
//	GIVEN: a REQUESTED loan
//	WHEN: RejectLoan is received
//	THEN: LoanRejected + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: NotFound if the loan does not exist
//	ERROR: Conflict if the loan is not REQUESTED
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, now := command.Actor, command.OccurredAt

	if err := core.Authorize(core.TransitionReject, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	loanID := command.LoanID.String()

	loan, found := core.ProjectLoan(history, loanID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonLoanNotFound, loanID))
	}

	if loan.Status != core.StatusRequested {
		return core.ErrorDecision(core.Conflictf(failureReasonNotRequested, loan.Status))
	}

	metadata := map[string]string{}
	if command.Reason != "" {
		metadata["reason"] = command.Reason
	}

	return core.SuccessDecision(
		core.BuildLoanRejected(loan, command.Reason, actor.ID, now),
		core.BuildAuditEntryRecorded(actor, core.AuditActionLoanRejected, core.AuditEntityLoan, loanID, metadata, now),
	)
}

// BuildEventFilter selects the events of the loan only.
func BuildEventFilter(command Command) eventstore.Filter {
	return shell.LoanFilter(command.LoanID.String())
}
