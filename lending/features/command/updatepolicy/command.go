package updatepolicy

import (
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	commandType = "UpdateLendingPolicy"
)

// Command represents an administrator replacing the lending policy.
type Command struct {
	Policy     core.Policy
	Actor      core.Actor
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(policy core.Policy, actor core.Actor, occurredAt time.Time) Command {
	return Command{
		Policy:     policy,
		Actor:      actor,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
