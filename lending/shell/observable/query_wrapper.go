package observable

import (
	"context"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

// QueryWrapper instruments any core query handler with metrics, tracing and logging.
type QueryWrapper[Q shell.Query, R any] struct {
	instrumentation

	coreHandler shell.CoreQueryHandler[Q, R]
	queryType   string
}

// NewQueryWrapper creates a new observable wrapper around the core query handler.
func NewQueryWrapper[Q shell.Query, R any](
	coreHandler shell.CoreQueryHandler[Q, R],
	opts ...Option,
) (*QueryWrapper[Q, R], error) {
	i, err := buildInstrumentation(opts)
	if err != nil {
		return nil, err
	}

	var zeroQuery Q

	return &QueryWrapper[Q, R]{
		instrumentation: i,
		coreHandler:     coreHandler,
		queryType:       zeroQuery.QueryType(),
	}, nil
}

// Handle runs the wrapped handler inside a query span.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	queryStart := time.Now()
	ctx, span := shell.StartQuerySpan(ctx, w.tracingCollector, w.queryType)
	shell.Log(ctx, w.logger, w.contextualLogger, "debug", shell.LogMsgQueryStarted, shell.LogAttrQueryType, w.queryType)

	result, err := w.coreHandler.Handle(ctx, query)

	duration := time.Since(queryStart)
	status := shell.QueryStatusOf(err)

	shell.RecordQueryMetrics(ctx, w.metricsCollector, w.queryType, status, duration)
	shell.FinishSpan(w.tracingCollector, span, status, duration, err)
	shell.LogQueryOutcome(ctx, w.logger, w.contextualLogger, w.queryType, status, duration, err)

	return result, err
}
