package createloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	commandType = "CreateLoan"
)

// Command represents the intent of a member to borrow a book.
// CopyID holds the canonical form of the requested copy id, or is empty when the
// lowest-coded available copy should be chosen.
type Command struct {
	LoanID     uuid.UUID
	BookID     uuid.UUID
	CopyID     string
	Actor      core.Actor
	Policy     core.Policy
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	loanID uuid.UUID,
	bookID uuid.UUID,
	copyID uuid.NullUUID,
	actor core.Actor,
	policy core.Policy,
	occurredAt time.Time,
) Command {

	var requestedCopy string
	if copyID.Valid {
		requestedCopy = copyID.UUID.String()
	}

	return Command{
		LoanID:     loanID,
		BookID:     bookID,
		CopyID:     requestedCopy,
		Actor:      actor,
		Policy:     policy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
