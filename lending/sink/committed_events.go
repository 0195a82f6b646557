package sink

import (
	"strconv"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// AuditRecordsFrom returns the audit entries among committed events.
func AuditRecordsFrom(events core.DomainEvents) []AuditRecord {
	records := make([]AuditRecord, 0, 1)

	for _, event := range events {
		entry, ok := event.(core.AuditEntryRecorded)
		if !ok {
			continue
		}

		records = append(records, AuditRecord{
			ActorID:    entry.ActorID,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Metadata:   entry.Metadata,
		})
	}

	return records
}

// NotificationsFrom returns the notifications for the borrowers of the loans changed by committed events.
// Copy, catalog, member and audit events notify nobody.
func NotificationsFrom(events core.DomainEvents) []Notification {
	notifications := make([]Notification, 0, 1)

	for _, event := range events {
		switch e := event.(type) {
		case core.LoanRequested:
			notifications = append(notifications, loanNotification(KindLoanRequested, e.MemberID, e.LoanID, e.BookID, nil))

		case core.LoanApproved:
			notifications = append(notifications, loanNotification(KindLoanApproved, e.MemberID, e.LoanID, e.BookID, map[string]string{
				"copyId":  e.CopyID,
				"dueDate": formatTime(e.DueDate),
			}))

		case core.LoanRejected:
			notifications = append(notifications, loanNotification(KindLoanRejected, e.MemberID, e.LoanID, e.BookID, map[string]string{
				"reason": e.Reason,
			}))

		case core.LoanCheckedOut:
			notifications = append(notifications, loanNotification(KindLoanCheckedOut, e.MemberID, e.LoanID, e.BookID, map[string]string{
				"copyId": e.CopyID,
			}))

		case core.LoanRenewed:
			notifications = append(notifications, loanNotification(KindLoanRenewed, e.MemberID, e.LoanID, e.BookID, map[string]string{
				"dueDate":      formatTime(e.DueDate),
				"renewalCount": strconv.Itoa(e.RenewalCount),
			}))

		case core.LoanCancelled:
			notifications = append(notifications, loanNotification(KindLoanCancelled, e.MemberID, e.LoanID, e.BookID, nil))

		case core.LoanReturned:
			notifications = append(notifications, loanNotification(KindLoanReturned, e.MemberID, e.LoanID, e.BookID, map[string]string{
				"penaltyAccrued": e.PenaltyAccrued.StringFixed(2),
				"overdueDays":    strconv.Itoa(e.OverdueDays),
			}))
		}
	}

	return notifications
}

func loanNotification(kind Kind, memberID, loanID, bookID string, extra map[string]string) Notification {
	payload := map[string]string{
		"loanId": loanID,
		"bookId": bookID,
	}

	for key, value := range extra {
		if value != "" {
			payload[key] = value
		}
	}

	return Notification{Kind: kind, MemberID: memberID, Payload: payload}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
