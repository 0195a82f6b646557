package changecopystatus

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	commandType = "ChangeCopyStatus"
)

// Command represents an administrator editing the inventory status of a copy.
type Command struct {
	CopyID     uuid.UUID
	Status     core.CopyStatus
	Actor      core.Actor
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(copyID uuid.UUID, status core.CopyStatus, actor core.Actor, occurredAt time.Time) Command {
	return Command{
		CopyID:     copyID,
		Status:     status,
		Actor:      actor,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
