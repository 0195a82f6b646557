package registermember

import (
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonInitialStatus = "a new member must start as PENDING or ACTIVE, not %s"
)

// Decide determines whether the member profile can be registered.
//
// Business Rules:
//
//	GIVEN: no profile for the member id
//	WHEN: RegisterMember is received
//	THEN: MemberRegistered + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: Conflict if the initial status is neither PENDING nor ACTIVE
//	IDEMPOTENCY: the profile already exists
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, now := command.Actor, command.OccurredAt

	if err := core.Authorize(core.TransitionAdminister, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	if _, found := core.ProjectMember(history, command.MemberID.String()); found {
		return core.IdempotentDecision()
	}

	if command.Status != core.MemberPending && command.Status != core.MemberActive {
		return core.ErrorDecision(core.Conflictf(failureReasonInitialStatus, command.Status))
	}

	return core.SuccessDecision(
		core.BuildMemberRegistered(command.MemberID, command.Name, command.Email, command.Status, now),
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionMemberRegistered,
			core.AuditEntityMember,
			command.MemberID.String(),
			map[string]string{"email": command.Email, "status": string(command.Status)},
			now,
		),
	)
}

// BuildEventFilter selects the profile events of the member.
func BuildEventFilter(command Command) eventstore.Filter {
	eventTypes := core.MemberEventTypes()

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(eventstore.P("MemberID", command.MemberID.String())).
		Finalize()
}
