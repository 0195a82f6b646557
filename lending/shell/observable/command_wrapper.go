package observable

import (
	"context"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

// CommandWrapper instruments any core command handler with metrics, tracing and logging.
// It translates the HandlerResult and error of the wrapped handler into observability signals
// and returns both unchanged.
type CommandWrapper[C shell.Command] struct {
	instrumentation

	coreHandler shell.CoreCommandHandler[C]
	commandType string
}

// NewCommandWrapper creates a new observable wrapper around the core command handler.
func NewCommandWrapper[C shell.Command](
	coreHandler shell.CoreCommandHandler[C],
	opts ...Option,
) (*CommandWrapper[C], error) {
	i, err := buildInstrumentation(opts)
	if err != nil {
		return nil, err
	}

	var zeroCommand C

	return &CommandWrapper[C]{
		instrumentation: i,
		coreHandler:     coreHandler,
		commandType:     zeroCommand.CommandType(),
	}, nil
}

// Handle runs the wrapped handler inside a command span.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	commandStart := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.tracingCollector, w.commandType)
	shell.Log(ctx, w.logger, w.contextualLogger, "debug", shell.LogMsgCommandStarted, shell.LogAttrCommandType, w.commandType)

	result, err := w.coreHandler.Handle(ctx, command)

	duration := time.Since(commandStart)
	status := shell.CommandStatusOf(result, err)

	shell.RecordRetryMetrics(ctx, w.metricsCollector, w.commandType, result)
	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
	shell.FinishSpan(w.tracingCollector, span, status, duration, err)
	shell.LogCommandOutcome(ctx, w.logger, w.contextualLogger, w.commandType, result, status, duration, err)

	return result, err
}

var _ shell.CoreCommandHandler[shell.Command] = (*CommandWrapper[shell.Command])(nil)
