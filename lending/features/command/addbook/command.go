package addbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	commandType = "AddBook"
)

// Command represents an administrator cataloguing a title.
type Command struct {
	BookID          uuid.UUID
	ISBN            string
	Title           string
	Authors         []string
	PublicationYear int
	Actor           core.Actor
	OccurredAt      core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	bookID uuid.UUID,
	isbn string,
	title string,
	authors []string,
	publicationYear int,
	actor core.Actor,
	occurredAt time.Time,
) Command {

	return Command{
		BookID:          bookID,
		ISBN:            isbn,
		Title:           title,
		Authors:         authors,
		PublicationYear: publicationYear,
		Actor:           actor,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
