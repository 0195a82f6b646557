package cancelloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	commandType = "CancelLoan"
)

// Command represents the borrower or an administrator withdrawing a loan.
type Command struct {
	LoanID     uuid.UUID
	Actor      core.Actor
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID, actor core.Actor, occurredAt time.Time) Command {
	return Command{
		LoanID:     loanID,
		Actor:      actor,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
