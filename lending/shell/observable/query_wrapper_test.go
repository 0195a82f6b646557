package observable_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell/observable"
)

type testQuery struct{ id string }

func (testQuery) QueryType() string { return "TestQuery" }

type stubQueryHandler struct {
	err error
}

func (h stubQueryHandler) Handle(_ context.Context, query testQuery) (string, error) {
	if h.err != nil {
		return "", h.err
	}

	return "view of " + query.id, nil
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	s := givenSpies()
	wrapper, err := observable.NewQueryWrapper[testQuery, string](
		stubQueryHandler{},
		observable.WithMetrics(s.metrics),
		observable.WithTracing(s.tracing),
		observable.WithContextualLogging(s.logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), testQuery{id: "l-1"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "view of l-1", result)
	assert.True(t, s.metrics.Has(shell.QueryHandlerCallsMetric, map[string]string{
		shell.LogAttrQueryType: "TestQuery",
		shell.LogAttrStatus:    shell.StatusSuccess,
	}))
	assert.Equal(t, shell.SpanNameQueryHandle, s.tracing.Spans()[0].Name)
	assert.True(t, s.logger.HasMessage("info", shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_NotFoundIsRejected(t *testing.T) {
	// arrange
	s := givenSpies()
	wrapper, err := observable.NewQueryWrapper[testQuery, string](
		stubQueryHandler{err: core.NotFoundf("loan l-1 not found")},
		observable.WithMetrics(s.metrics),
		observable.WithContextualLogging(s.logger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testQuery{id: "l-1"})

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.True(t, s.metrics.Has(shell.QueryHandlerCallsMetric, map[string]string{shell.LogAttrStatus: shell.StatusRejected}))

	warnings := s.logger.RecordsAt("warn")
	require.Len(t, warnings, 1)
	assert.Equal(t, "loan l-1 not found", warnings[0].Attr(shell.LogAttrReason))
}
