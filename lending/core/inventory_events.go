package core

import (
	"time"
)

// CopyClaimedEventType is the event type identifier.
const CopyClaimedEventType = "CopyClaimed"

// CopyClaimed represents the AVAILABLE -> ON_LOAN transition of a copy on behalf of a loan.
type CopyClaimed struct {
	CopyID     CopyIDString
	BookID     BookIDString
	LoanID     LoanIDString
	OccurredAt OccurredAt
}

// BuildCopyClaimed creates a new CopyClaimed event.
func BuildCopyClaimed(copyID, bookID, loanID string, occurredAt time.Time) CopyClaimed {
	return CopyClaimed{
		CopyID:     copyID,
		BookID:     bookID,
		LoanID:     loanID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopyClaimed) EventType() string {
	return CopyClaimedEventType
}

func (e CopyClaimed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// CopyReleasedEventType is the event type identifier.
const CopyReleasedEventType = "CopyReleased"

// CopyReleased represents the ON_LOAN -> AVAILABLE transition of a copy when its loan is closed.
type CopyReleased struct {
	CopyID     CopyIDString
	BookID     BookIDString
	LoanID     LoanIDString
	OccurredAt OccurredAt
}

// BuildCopyReleased creates a new CopyReleased event.
func BuildCopyReleased(copyID, bookID, loanID string, occurredAt time.Time) CopyReleased {
	return CopyReleased{
		CopyID:     copyID,
		BookID:     bookID,
		LoanID:     loanID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopyReleased) EventType() string {
	return CopyReleasedEventType
}

func (e CopyReleased) HasOccurredAt() time.Time {
	return e.OccurredAt
}
