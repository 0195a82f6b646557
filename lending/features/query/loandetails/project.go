package loandetails

import (
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonLoanNotFound = "loan %s not found"
)

// ProjectLoan finds the loan in history and checks that the caller may see it.
//
// Query Logic:
//
//	GIVEN: the events of one loan
//	WHEN: LoanDetails is executed by the borrower or an administrator
//	THEN: the projected loan
//	ERROR: NotFound if the loan does not exist, Forbidden for other members
func ProjectLoan(history core.DomainEvents, query Query) (core.Loan, error) {
	loanID := query.LoanID.String()

	loan, found := core.ProjectLoan(history, loanID)
	if !found {
		return core.Loan{}, core.NotFoundf(failureReasonLoanNotFound, loanID)
	}

	if err := core.Authorize(core.TransitionView, query.Actor, loan); err != nil {
		return core.Loan{}, err
	}

	return loan, nil
}
