package createloan

import (
	"slices"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonBookNotFound    = "book %s not found"
	failureReasonCopyNotFound    = "copy %s not found"
	failureReasonNoAvailableCopy = "no available copy of this book"
)

// Decide determines whether the member may borrow the book and which copy the loan gets.
//
// Business Rules:
//
//	GIVEN: a catalogued book and an eligible member
//	WHEN: CreateLoan is received
//	THEN: LoanRequested (approvals required) or LoanRequested + LoanApproved + CopyClaimed (auto-approve)
//	ERROR: Forbidden if the caller is not a member or fails an eligibility rule
//	ERROR: NotFound if the book or the given copy does not exist
//	ERROR: Conflict if the given copy is not assignable, or no copy is available
//	IDEMPOTENCY: a loan with the command's loan id already exists
//
// Without a requested copy the choice is made against the history of each attempt, so a
// retry after a concurrency conflict may assign a different copy than the first attempt saw.
// Callers that need a specific copy pass its id; that copy is then never swapped.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, policy, now := command.Actor, command.Policy, command.OccurredAt

	if err := core.Authorize(core.TransitionCreate, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	loans := core.ProjectLoans(history)
	if _, exists := loans[command.LoanID.String()]; exists {
		return core.IdempotentDecision()
	}

	bookID := command.BookID.String()
	if _, found := core.ProjectBook(history, bookID); !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonBookNotFound, bookID))
	}

	if err := core.CanBorrow(core.MemberFactsFrom(history, actor.ID, now), policy); err != nil {
		return core.ErrorDecision(err)
	}

	loan := core.Loan{LoanID: command.LoanID.String(), MemberID: actor.ID, BookID: bookID}

	selected, err := resolveCopy(core.ProjectCopies(history), loans, loan, command.CopyID)
	if err != nil {
		return core.ErrorDecision(err)
	}

	events := core.DomainEvents{
		core.BuildLoanRequested(loan.LoanID, loan.MemberID, loan.BookID, selected.CopyID, now),
	}
	status := core.StatusRequested

	if !policy.ApprovalsRequired {
		claimed, err := core.ClaimCopy(selected, loan, loans, now)
		if err != nil {
			return core.ErrorDecision(err)
		}

		events = append(events,
			core.BuildLoanApproved(loan, selected.CopyID, policy.DueDateFrom(now), true, actor.ID, now),
			claimed,
		)
		status = core.StatusApproved
	}

	events = append(events, core.BuildAuditEntryRecorded(
		actor,
		core.AuditActionLoanCreated,
		core.AuditEntityLoan,
		loan.LoanID,
		map[string]string{"bookId": bookID, "copyId": selected.CopyID, "status": string(status)},
		now,
	))

	return core.SuccessDecision(events...)
}

// resolveCopy returns the requested copy if it is assignable, or the lowest-coded available one.
func resolveCopy(
	copies map[core.CopyIDString]core.Copy,
	loans map[core.LoanIDString]core.Loan,
	loan core.Loan,
	requestedCopyID string,
) (core.Copy, error) {

	if requestedCopyID == "" {
		selected, found := core.SelectAvailableCopy(copies, loan.BookID)
		if !found {
			return core.Copy{}, core.Conflictf(failureReasonNoAvailableCopy)
		}

		return selected, nil
	}

	requested, found := copies[requestedCopyID]
	if !found {
		return core.Copy{}, core.NotFoundf(failureReasonCopyNotFound, requestedCopyID)
	}

	if err := core.CheckCopyAssignable(requested, loan, loans); err != nil {
		return core.Copy{}, err
	}

	return requested, nil
}

// BuildEventFilter selects the book with its copies and loans, and the member with its loans.
// The copy predicate only matters when a copy was requested that belongs to another book.
func BuildEventFilter(command Command) eventstore.Filter {
	eventTypes := slices.Concat(
		[]string{core.BookAddedToCatalogEventType},
		core.CopyEventTypes(),
		core.MemberEventTypes(),
		core.LoanEventTypes(),
	)

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(
			eventstore.P("BookID", command.BookID.String()),
			eventstore.P("MemberID", command.Actor.ID),
			eventstore.P("CopyID", command.CopyID),
		).
		Finalize()
}
