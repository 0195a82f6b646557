package memberloans

import (
	"slices"
	"strings"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// ProjectMemberLoans returns the member's loans, newest request first.
// Only the member and administrators may list them.
func ProjectMemberLoans(history core.DomainEvents, query Query) ([]core.Loan, error) {
	memberID := query.MemberID.String()

	if err := core.Authorize(core.TransitionView, query.Actor, core.Loan{MemberID: memberID}); err != nil {
		return nil, err
	}

	loans := make([]core.Loan, 0)
	for _, loan := range core.ProjectLoans(history) {
		if loan.MemberID == memberID {
			loans = append(loans, loan)
		}
	}

	slices.SortFunc(loans, func(a, b core.Loan) int {
		if c := b.RequestedAt.Compare(a.RequestedAt); c != 0 {
			return c
		}

		return strings.Compare(a.LoanID, b.LoanID)
	})

	return loans, nil
}

