package core

import (
	"time"
)

const (
	reasonProfileNotFound = "member profile not found"
	reasonNotActive       = "membership is not active (%s)"
	reasonOverdueLoans    = "has overdue loans"
	reasonUnpaidPenalties = "has unpaid penalties"
	reasonLoanCapReached  = "has reached the maximum of %d concurrent loans"
	reasonRenewNotActive  = "loan is %s, only ACTIVE loans can be renewed"
	reasonRenewalLimit    = "renewal limit of %d reached"
	reasonLoanPenalized   = "loan has an unpaid penalty"
)

// CanBorrow evaluates the borrowing rules in order; the first failure wins.
// The borrower capability itself is checked by Authorize before.
//
//	2. a member profile must exist
//	3. membership must be ACTIVE
//	4. zero OVERDUE loans
//	5. zero OVERDUE or RETURNED loans with a penalty
//	6. open loans (APPROVED, ACTIVE, OVERDUE) strictly below the policy cap
func CanBorrow(facts MemberFacts, policy Policy) error {
	if !facts.ProfileExists {
		return Forbiddenf(reasonProfileNotFound)
	}

	if err := checkStanding(facts); err != nil {
		return err
	}

	if facts.PenalizedLoans > 0 {
		return Forbiddenf(reasonUnpaidPenalties)
	}

	if facts.OpenLoans >= policy.MaxConcurrentLoans {
		return Forbiddenf(reasonLoanCapReached, policy.MaxConcurrentLoans)
	}

	return nil
}

// checkStanding covers rules 3 and 4, which also gate renewals requested by the borrower.
func checkStanding(facts MemberFacts) error {
	if facts.Status != MemberActive {
		return Forbiddenf(reasonNotActive, facts.Status)
	}

	if facts.OverdueLoans > 0 {
		return Forbiddenf(reasonOverdueLoans)
	}

	return nil
}

// CanRenew checks whether loan may be renewed by actor at now. Administrators override the
// membership and overdue checks, never the renewal limit or the per-loan penalty.
func CanRenew(loan Loan, facts MemberFacts, actor Actor, policy Policy, now time.Time) error {
	if status := loan.StatusAt(now); status != StatusActive {
		return Conflictf(reasonRenewNotActive, status)
	}

	if loan.RenewalCount >= policy.MaxRenewals {
		return Conflictf(reasonRenewalLimit, policy.MaxRenewals)
	}

	if !loan.PenaltyAccrued.IsZero() {
		return Conflictf(reasonLoanPenalized)
	}

	if actor.IsAdmin() {
		return nil
	}

	if !facts.ProfileExists {
		return Forbiddenf(reasonProfileNotFound)
	}

	return checkStanding(facts)
}
