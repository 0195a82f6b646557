package sink

import (
	"context"
	"errors"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

// LogNotifier writes notifications to a structured log.
type LogNotifier struct {
	logger shell.ContextualLogger
}

func NewLogNotifier(logger shell.ContextualLogger) LogNotifier {
	return LogNotifier{logger: logger}
}

func (n LogNotifier) Notify(ctx context.Context, kind Kind, memberID string, payload map[string]string) error {
	args := []any{"kind", string(kind), "member_id", memberID}
	for key, value := range payload {
		args = append(args, key, value)
	}

	n.logger.InfoContext(ctx, "notification", args...)

	return nil
}

// FanOut delivers every notification to all notifiers and joins their errors.
type FanOut []Notifier

func (f FanOut) Notify(ctx context.Context, kind Kind, memberID string, payload map[string]string) error {
	var errs []error
	for _, notifier := range f {
		if err := notifier.Notify(ctx, kind, memberID, payload); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

var (
	_ Notifier = LogNotifier{}
	_ Notifier = FanOut{}
)
