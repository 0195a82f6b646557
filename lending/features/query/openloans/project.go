package openloans

import (
	"slices"
	"strings"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// ProjectOpenLoans returns the APPROVED, ACTIVE and OVERDUE loans at query.At,
// earliest due date first.
func ProjectOpenLoans(history core.DomainEvents, query Query) []core.Loan {
	loans := make([]core.Loan, 0)
	for _, loan := range core.ProjectLoans(history) {
		if loan.StatusAt(query.At).IsOpen() {
			loans = append(loans, loan)
		}
	}

	slices.SortFunc(loans, func(a, b core.Loan) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}

		return strings.Compare(a.LoanID, b.LoanID)
	})

	return loans
}
