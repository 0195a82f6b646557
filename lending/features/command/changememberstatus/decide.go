package changememberstatus

import (
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	failureReasonMemberNotFound = "member %s not found"
)

// Decide determines whether the membership status changes.
//
// Business Rules:
//
//	GIVEN: a registered member
//	WHEN: ChangeMemberStatus is received
//	THEN: MemberStatusChanged + AuditEntryRecorded
//	ERROR: Forbidden if the caller is not an administrator
//	ERROR: NotFound if no profile exists
//	IDEMPOTENCY: the member already has the status
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	actor, now := command.Actor, command.OccurredAt

	if err := core.Authorize(core.TransitionAdminister, actor, core.Loan{}); err != nil {
		return core.ErrorDecision(err)
	}

	memberID := command.MemberID.String()

	member, found := core.ProjectMember(history, memberID)
	if !found {
		return core.ErrorDecision(core.NotFoundf(failureReasonMemberNotFound, memberID))
	}

	if member.Status == command.Status {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildMemberStatusChanged(memberID, command.Status, member.Status, actor.ID, now),
		core.BuildAuditEntryRecorded(
			actor,
			core.AuditActionMemberStatusSet,
			core.AuditEntityMember,
			memberID,
			map[string]string{"status": string(command.Status), "previousStatus": string(member.Status)},
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
