package core

import (
	"time"

	"github.com/google/uuid"
)

// BookAddedToCatalogEventType is the event type identifier.
const BookAddedToCatalogEventType = "BookAddedToCatalog"

// BookAddedToCatalog represents when a book title is added to the library catalog.
type BookAddedToCatalog struct {
	BookID          BookIDString
	ISBN            string
	Title           string
	Authors         []string
	PublicationYear int
	OccurredAt      OccurredAt
}

// BuildBookAddedToCatalog creates a new BookAddedToCatalog event.
func BuildBookAddedToCatalog(
	bookID uuid.UUID,
	isbn string,
	title string,
	authors []string,
	publicationYear int,
	occurredAt time.Time,
) BookAddedToCatalog {

	return BookAddedToCatalog{
		BookID:          bookID.String(),
		ISBN:            isbn,
		Title:           title,
		Authors:         authors,
		PublicationYear: publicationYear,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

func (e BookAddedToCatalog) EventType() string {
	return BookAddedToCatalogEventType
}

func (e BookAddedToCatalog) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// CopyAddedToInventoryEventType is the event type identifier.
const CopyAddedToInventoryEventType = "CopyAddedToInventory"

// CopyAddedToInventory represents when a physical copy of a book is put on the shelf. New copies are AVAILABLE.
type CopyAddedToInventory struct {
	CopyID     CopyIDString
	BookID     BookIDString
	Code       string
	OccurredAt OccurredAt
}

// BuildCopyAddedToInventory creates a new CopyAddedToInventory event.
func BuildCopyAddedToInventory(copyID uuid.UUID, bookID uuid.UUID, code string, occurredAt time.Time) CopyAddedToInventory {
	return CopyAddedToInventory{
		CopyID:     copyID.String(),
		BookID:     bookID.String(),
		Code:       code,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopyAddedToInventory) EventType() string {
	return CopyAddedToInventoryEventType
}

func (e CopyAddedToInventory) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// CopyStatusChangedEventType is the event type identifier.
const CopyStatusChangedEventType = "CopyStatusChanged"

// CopyStatusChanged represents an administrative status edit, e.g. a copy reported LOST or DAMAGED.
type CopyStatusChanged struct {
	CopyID     CopyIDString
	BookID     BookIDString
	Status     CopyStatus
	ChangedBy  string
	OccurredAt OccurredAt
}

// BuildCopyStatusChanged creates a new CopyStatusChanged event.
func BuildCopyStatusChanged(copyID, bookID string, status CopyStatus, changedBy string, occurredAt time.Time) CopyStatusChanged {
	return CopyStatusChanged{
		CopyID:     copyID,
		BookID:     bookID,
		Status:     status,
		ChangedBy:  changedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopyStatusChanged) EventType() string {
	return CopyStatusChangedEventType
}

func (e CopyStatusChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}
