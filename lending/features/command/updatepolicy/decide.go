package updatepolicy

import (
	"strconv"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonInvalidPolicy = "invalid lending policy: %v"
)

// Decide determines whether a new policy snapshot is recorded.
//
// Business Rules:
//
//	GIVEN: a valid policy that differs from the current one
//	WHEN: UpdateLendingPolicy is received
//	THEN: LendingPolicyUpdated + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: Conflict if the policy does not validate
//	IDEMPOTENCY: the current policy is equal to the new one
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, policy, now := command.Actor, command.Policy, command.OccurredAt

	if err := Check(command); err != nil {
		return core.ErrorDecision(err)
	}

	if current, found := core.ProjectPolicy(history); found && current.Equal(policy) {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildLendingPolicyUpdated(policy, actor.ID, now),
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionPolicyUpdated,
			core.AuditEntitySettings,
			core.LendingPolicyUpdatedEventType,
			map[string]string{
				"approvalsRequired":  strconv.FormatBool(policy.ApprovalsRequired),
				"loanDays":           strconv.Itoa(policy.LoanDays),
				"maxRenewals":        strconv.Itoa(policy.MaxRenewals),
				"overdueFeePerDay":   policy.OverdueFeePerDay.String(),
				"overdueFeeCap":      policy.OverdueFeeCapPerLoan.String(),
				"maxConcurrentLoans": strconv.Itoa(policy.MaxConcurrentLoans),
			},
			now,
		),
	)
}

// Check applies the history-independent rules of Decide: the caller must be an
// administrator and the policy must validate.
func Check(command Command) error {
	if err := core.Authorize(core.TransitionAdminister, command.Actor, core.Loan{}); err != nil {
		return err
	}

	if err := command.Policy.Validate(); err != nil {
		return core.Conflictf(failureReasonInvalidPolicy, err)
	}

	return nil
}

// BuildEventFilter selects all policy snapshots.
func BuildEventFilter(_ Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.LendingPolicyUpdatedEventType).
		Finalize()
}
