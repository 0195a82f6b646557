package rejectloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	commandType = "RejectLoan"
)

// Command represents an administrator declining a borrow request. Reason is optional.
type Command struct {
	LoanID     uuid.UUID
	Reason     string
	Actor      core.Actor
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID, reason string, actor core.Actor, occurredAt time.Time) Command {
	return Command{
		LoanID:     loanID,
		Reason:     reason,
		Actor:      actor,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
