package observable_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell/observable"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/observability/testdoubles"
)

type testCommand struct{}

func (testCommand) CommandType() string { return "TestCommand" }

type stubCommandHandler struct {
	result shell.HandlerResult
	err    error
	calls  int
}

func (h *stubCommandHandler) Handle(_ context.Context, _ testCommand) (shell.HandlerResult, error) {
	h.calls++
	return h.result, h.err
}

type spies struct {
	metrics *testdoubles.MetricsCollectorSpy
	tracing *testdoubles.TracingCollectorSpy
	logger  *testdoubles.ContextualLoggerSpy
}

func givenSpies() spies {
	return spies{
		metrics: testdoubles.NewMetricsCollectorSpy(),
		tracing: testdoubles.NewTracingCollectorSpy(),
		logger:  testdoubles.NewContextualLoggerSpy(),
	}
}

func givenWrappedCommandHandler(t *testing.T, handler *stubCommandHandler, s spies) *observable.CommandWrapper[testCommand] {
	t.Helper()

	wrapper, err := observable.NewCommandWrapper[testCommand](
		handler,
		observable.WithMetrics(s.metrics),
		observable.WithTracing(s.tracing),
		observable.WithContextualLogging(s.logger),
	)
	require.NoError(t, err)

	return wrapper
}

func Test_CommandWrapper_Handle_Success(t *testing.T) {
	// arrange
	s := givenSpies()
	handler := &stubCommandHandler{result: shell.HandlerResult{RetryAttempts: 1, Events: core.DomainEvents{nil}}}
	wrapper := givenWrappedCommandHandler(t, handler, s)

	// act
	result, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, handler.result, result)
	assert.Equal(t, 1, handler.calls)

	labels := map[string]string{shell.LogAttrCommandType: "TestCommand", shell.LogAttrStatus: shell.StatusSuccess}
	assert.True(t, s.metrics.Has(shell.CommandHandlerCallsMetric, labels))
	assert.True(t, s.metrics.Has(shell.CommandHandlerDurationMetric, labels))
	assert.False(t, s.metrics.Has(shell.CommandHandlerRetriesMetric, nil))

	spans := s.tracing.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, shell.SpanNameCommandHandle, spans[0].Name)
	assert.Equal(t, shell.StatusSuccess, spans[0].Status)
	assert.True(t, spans[0].Finished)

	assert.True(t, s.logger.HasMessage("info", shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_Handle_ClassifiesOutcomes(t *testing.T) {
	testCases := []struct {
		name           string
		result         shell.HandlerResult
		err            error
		expectedStatus string
		expectedMetric string
		expectedLevel  string
	}{
		{
			name:           "idempotent",
			result:         shell.HandlerResult{Idempotent: true, RetryAttempts: 1},
			expectedStatus: shell.StatusIdempotent,
			expectedMetric: shell.CommandHandlerIdempotentMetric,
			expectedLevel:  "info",
		},
		{
			name:           "business rule violation",
			err:            core.Conflictf("copy c-1 is not available (LOST)"),
			expectedStatus: shell.StatusRejected,
			expectedMetric: shell.CommandHandlerRejectedMetric,
			expectedLevel:  "warn",
		},
		{
			name:           "canceled",
			err:            context.Canceled,
			expectedStatus: shell.StatusCanceled,
			expectedMetric: shell.CommandHandlerCanceledMetric,
			expectedLevel:  "error",
		},
		{
			name:           "timeout",
			err:            context.DeadlineExceeded,
			expectedStatus: shell.StatusTimeout,
			expectedMetric: shell.CommandHandlerTimeoutMetric,
			expectedLevel:  "error",
		},
		{
			name:           "concurrency conflict",
			err:            eventstore.ErrConcurrencyConflict,
			expectedStatus: shell.StatusConcurrencyConflict,
			expectedMetric: shell.CommandHandlerConcurrencyConflictMetric,
			expectedLevel:  "error",
		},
		{
			name:           "infrastructure error",
			err:            errors.New("connection reset"),
			expectedStatus: shell.StatusError,
			expectedMetric: shell.CommandHandlerCallsMetric,
			expectedLevel:  "error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			s := givenSpies()
			wrapper := givenWrappedCommandHandler(t, &stubCommandHandler{result: tc.result, err: tc.err}, s)

			// act
			_, err := wrapper.Handle(context.Background(), testCommand{})

			// assert
			assert.Equal(t, tc.err, err)
			assert.True(t, s.metrics.Has(tc.expectedMetric, map[string]string{shell.LogAttrStatus: tc.expectedStatus}))
			assert.Equal(t, tc.expectedStatus, s.tracing.Spans()[0].Status)
			assert.Len(t, s.logger.RecordsAt(tc.expectedLevel), 1)
		})
	}
}

func Test_CommandWrapper_Handle_RecordsRetries(t *testing.T) {
	// arrange
	s := givenSpies()
	handler := &stubCommandHandler{
		result: shell.HandlerResult{
			RetryAttempts:    3,
			TotalRetryDelay:  30 * time.Millisecond,
			LastErrorType:    "concurrency_conflict",
			RetriesExhausted: true,
		},
		err: eventstore.ErrConcurrencyConflict,
	}
	wrapper := givenWrappedCommandHandler(t, handler, s)

	// act
	_, _ = wrapper.Handle(context.Background(), testCommand{})

	// assert
	assert.Equal(t, 2, s.metrics.Count(shell.CommandHandlerRetriesMetric, map[string]string{shell.LogAttrCommandType: "TestCommand"}))
	assert.True(t, s.metrics.Has(shell.CommandHandlerRetryDelayMetric, nil))
	assert.True(t, s.metrics.Has(shell.CommandHandlerMaxRetriesReachedMetric, map[string]string{"final_error_type": "concurrency_conflict"}))
}

func Test_CommandWrapper_WithoutOptions_OnlyDelegates(t *testing.T) {
	handler := &stubCommandHandler{result: shell.HandlerResult{RetryAttempts: 1}}
	wrapper, err := observable.NewCommandWrapper[testCommand](handler)
	require.NoError(t, err)

	_, err = wrapper.Handle(context.Background(), testCommand{})

	assert.NoError(t, err)
	assert.Equal(t, 1, handler.calls)
}
