package reminders

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/openloans"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/policy"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/sink"
)

const (
	defaultInterval      = 24 * time.Hour
	defaultDueSoonWindow = 24 * time.Hour
)

const (
	logMsgSweepCompleted = "reminder sweep completed"
	logMsgSweepFailed    = "reminder sweep failed"
)

var (
	// ErrInvalidInterval is returned when the sweep interval is not positive.
	ErrInvalidInterval = errors.New("reminder interval must be positive")
)

// OpenLoans lists the open loans at a point in time.
type OpenLoans interface {
	Handle(ctx context.Context, query openloans.Query) ([]core.LoanView, error)
}

// Notifier queues notifications.
type Notifier interface {
	Notify(ctx context.Context, notification sink.Notification)
}

// Summary counts the reminders of one sweep.
type Summary struct {
	Overdue int
	DueSoon int
}

// Sweeper sends loan.overdue and loan.due_soon reminders for open loans on every tick.
type Sweeper struct {
	loans         OpenLoans
	policy        policy.Provider
	notifier      Notifier
	logger        shell.ContextualLogger
	interval      time.Duration
	dueSoonWindow time.Duration
	now           func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper) error

// WithInterval sets the time between sweeps.
func WithInterval(interval time.Duration) Option {
	return func(s *Sweeper) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}

		s.interval = interval

		return nil
	}
}

// WithDueSoonWindow sets how close the due date of an ACTIVE loan must be for a due-soon reminder.
func WithDueSoonWindow(window time.Duration) Option {
	return func(s *Sweeper) error {
		s.dueSoonWindow = window
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) error {
		s.now = now
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger shell.ContextualLogger) Option {
	return func(s *Sweeper) error {
		s.logger = logger
		return nil
	}
}

func NewSweeper(loans OpenLoans, policyProvider policy.Provider, notifier Notifier, options ...Option) (*Sweeper, error) {
	s := &Sweeper{
		loans:         loans,
		policy:        policyProvider,
		notifier:      notifier,
		logger:        slog.Default(),
		interval:      defaultInterval,
		dueSoonWindow: defaultDueSoonWindow,
		now:           time.Now,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Run sweeps once right away and then on every tick until ctx is done.
// A failed sweep is logged; the next tick tries again.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweepAndLog(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	summary, err := s.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.ErrorContext(ctx, logMsgSweepFailed, "error", err.Error())
		}

		return
	}

	s.logger.InfoContext(ctx, logMsgSweepCompleted, "overdue", summary.Overdue, "due_soon", summary.DueSoon)
}

// Sweep queues one reminder per overdue loan and per ACTIVE loan due within the window.
// The penalty of an overdue reminder is what a return right now would cost.
func (s *Sweeper) Sweep(ctx context.Context) (Summary, error) {
	now := s.now()

	lendingPolicy, err := s.policy.Current(ctx)
	if err != nil {
		return Summary{}, err
	}

	views, err := s.loans.Handle(ctx, openloans.BuildQuery(now))
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, view := range views {
		if view.DueDate == nil {
			continue
		}

		dueDate := *view.DueDate

		switch {
		case view.Status == core.StatusOverdue:
			penalty, overdueDays := core.Penalty(dueDate, now, lendingPolicy.OverdueFeePerDay, lendingPolicy.OverdueFeeCapPerLoan)
			s.notifier.Notify(ctx, reminder(sink.KindLoanOverdue, view, map[string]string{
				"overdueDays":    strconv.Itoa(overdueDays),
				"penaltyAccrued": penalty.StringFixed(2),
			}))
			summary.Overdue++

		case view.Status == core.StatusActive && !dueDate.After(now.Add(s.dueSoonWindow)):
			s.notifier.Notify(ctx, reminder(sink.KindLoanDueSoon, view, nil))
			summary.DueSoon++
		}
	}

	return summary, nil
}

func reminder(kind sink.Kind, view core.LoanView, extra map[string]string) sink.Notification {
	payload := map[string]string{
		"loanId":    view.LoanID,
		"bookId":    view.BookID,
		"bookTitle": view.BookTitle,
		"dueDate":   view.DueDate.UTC().Format(time.RFC3339),
	}

	for key, value := range extra {
		payload[key] = value
	}

	return sink.Notification{Kind: kind, MemberID: view.MemberID, Payload: payload}
}
