package shell

import (
	"context"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// AttemptFunc runs one complete attempt of a command: query, decide, append.
// It returns the decision and the append error or, failing that, the business error.
type AttemptFunc func(ctx context.Context) (core.DecisionResult, error)

// HandleWithRetry runs attempt with exponential backoff on concurrency conflicts and
// turns the decision of the last attempt into a HandlerResult.
func HandleWithRetry(ctx context.Context, attempt AttemptFunc, retryOptions ...RetryOption) (HandlerResult, error) {
	var decision core.DecisionResult

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var attemptErr error
		decision, attemptErr = attempt(retryCtx)

		return attemptErr
	}, retryOptions...)

	if err != nil {
		return NewErrorResult(retryMetrics), err
	}

	if decision.IsIdempotent() {
		return NewIdempotentResult(retryMetrics), nil
	}

	return NewSuccessResult(retryMetrics, decision.Events), nil
}
