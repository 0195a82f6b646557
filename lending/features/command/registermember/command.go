package registermember

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	commandType = "RegisterMember"
)

// Command represents an administrator registering a member profile for an identity.
type Command struct {
	MemberID   uuid.UUID
	Name       string
	Email      string
	Status     core.MemberStatus
	Actor      core.Actor
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	memberID uuid.UUID,
	name string,
	email string,
	status core.MemberStatus,
	actor core.Actor,
	occurredAt time.Time,
) Command {

	return Command{
		MemberID:   memberID,
		Name:       name,
		Email:      email,
		Status:     status,
		Actor:      actor,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
