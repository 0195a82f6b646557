package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Policy is the lending policy snapshot. It is read once at the start of an operation and
// passed by value, so a concurrent settings update never tears a transition.
type Policy struct {
	ApprovalsRequired    bool
	LoanDays             int
	MaxRenewals          int
	OverdueFeePerDay     decimal.Decimal
	OverdueFeeCapPerLoan decimal.Decimal
	MaxConcurrentLoans   int
}

// Validate rejects snapshots no transition can work with.
func (p Policy) Validate() error {
	var errs []error

	if p.LoanDays <= 0 {
		errs = append(errs, errors.New("loan days must be positive"))
	}

	if p.MaxRenewals < 0 {
		errs = append(errs, errors.New("max renewals must not be negative"))
	}

	if p.OverdueFeePerDay.IsNegative() {
		errs = append(errs, errors.New("overdue fee per day must not be negative"))
	}

	if p.OverdueFeeCapPerLoan.IsNegative() {
		errs = append(errs, errors.New("overdue fee cap must not be negative"))
	}

	if p.MaxConcurrentLoans <= 0 {
		errs = append(errs, errors.New("max concurrent loans must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrPolicyInvalid}, errs...)...)
	}

	return nil
}

// Equal compares all fields, fees by value.
func (p Policy) Equal(other Policy) bool {
	return p.ApprovalsRequired == other.ApprovalsRequired &&
		p.LoanDays == other.LoanDays &&
		p.MaxRenewals == other.MaxRenewals &&
		p.OverdueFeePerDay.Equal(other.OverdueFeePerDay) &&
		p.OverdueFeeCapPerLoan.Equal(other.OverdueFeeCapPerLoan) &&
		p.MaxConcurrentLoans == other.MaxConcurrentLoans
}

// DueDateFrom returns the due date of a loan period starting at start.
func (p Policy) DueDateFrom(start time.Time) time.Time {
	return start.AddDate(0, 0, p.LoanDays)
}

// LendingPolicyUpdatedEventType is the event type identifier.
const LendingPolicyUpdatedEventType = "LendingPolicyUpdated"

// LendingPolicyUpdated carries one complete policy snapshot.
type LendingPolicyUpdated struct {
	ApprovalsRequired    bool
	LoanDays             int
	MaxRenewals          int
	OverdueFeePerDay     decimal.Decimal
	OverdueFeeCapPerLoan decimal.Decimal
	MaxConcurrentLoans   int
	UpdatedBy            string
	OccurredAt           OccurredAt
}

// BuildLendingPolicyUpdated creates a new LendingPolicyUpdated event.
func BuildLendingPolicyUpdated(policy Policy, updatedBy string, occurredAt time.Time) LendingPolicyUpdated {
	return LendingPolicyUpdated{
		ApprovalsRequired:    policy.ApprovalsRequired,
		LoanDays:             policy.LoanDays,
		MaxRenewals:          policy.MaxRenewals,
		OverdueFeePerDay:     policy.OverdueFeePerDay,
		OverdueFeeCapPerLoan: policy.OverdueFeeCapPerLoan,
		MaxConcurrentLoans:   policy.MaxConcurrentLoans,
		UpdatedBy:            updatedBy,
		OccurredAt:           ToOccurredAt(occurredAt),
	}
}

func (e LendingPolicyUpdated) EventType() string {
	return LendingPolicyUpdatedEventType
}

func (e LendingPolicyUpdated) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// Policy returns the snapshot carried by the event.
func (e LendingPolicyUpdated) Policy() Policy {
	return Policy{
		ApprovalsRequired:    e.ApprovalsRequired,
		LoanDays:             e.LoanDays,
		MaxRenewals:          e.MaxRenewals,
		OverdueFeePerDay:     e.OverdueFeePerDay,
		OverdueFeeCapPerLoan: e.OverdueFeeCapPerLoan,
		MaxConcurrentLoans:   e.MaxConcurrentLoans,
	}
}

// ProjectPolicy returns the snapshot of the latest LendingPolicyUpdated in history.
func ProjectPolicy(history DomainEvents) (Policy, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if e, ok := history[i].(LendingPolicyUpdated); ok {
			return e.Policy(), true
		}
	}

	return Policy{}, false
}
