package shell

import (
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// HandlerResult represents the outcome of a command handler execution.
// It captures the business outcome, the events that were committed, and the retry metadata,
// without coupling the handler to specific observability implementations.
type HandlerResult struct {
	// Idempotent indicates that the command needed no state change.
	Idempotent bool

	// Events are the domain events committed by the successful attempt, in append order.
	// Side effects like notifications are derived from them after the commit.
	Events core.DomainEvents

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the final error: "none", "concurrency_conflict",
	// "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true when all attempts failed with a concurrency conflict.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for a committed state change.
func NewSuccessResult(retryMetrics RetryMetrics, events core.DomainEvents) HandlerResult {
	result := resultFrom(retryMetrics)
	result.Events = events

	return result
}

// NewIdempotentResult creates a HandlerResult for idempotent operations.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	result := resultFrom(retryMetrics)
	result.Idempotent = true

	return result
}

// NewErrorResult creates a HandlerResult for failed operations.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics)
}

func resultFrom(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
