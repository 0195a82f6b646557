// Package reminders periodically notifies borrowers of overdue loans and of loans due soon.
// It only reads loan state; OVERDUE is never written back.
package reminders
