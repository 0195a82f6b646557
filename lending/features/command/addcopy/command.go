package addcopy

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	commandType = "AddCopy"
)

// Command represents an administrator adding a copy with a shelf code.
type Command struct {
	CopyID     uuid.UUID
	BookID     uuid.UUID
	Code       string
	Actor      core.Actor
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(copyID, bookID uuid.UUID, code string, actor core.Actor, occurredAt time.Time) Command {
	return Command{
		CopyID:     copyID,
		BookID:     bookID,
		Code:       code,
		Actor:      actor,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
