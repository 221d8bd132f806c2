package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/shell"
	"github.com/openshelf/circulation-engine-go/shell/observable"
	. "github.com/openshelf/circulation-engine-go/testutil/helper" //nolint:revive
)

func Test_QueryWrapper_NewQueryWrapper_Success(t *testing.T) {
	// arrange
	handler := newMockQueryHandler("test-result", nil)
	metricsCollector := NewMetricsCollectorSpy(true)

	// act
	wrapper, err := observable.NewQueryWrapper[mockQuery, string](
		handler,
		observable.WithQueryMetrics[mockQuery, string](metricsCollector),
	)

	// assert
	assert.NoError(t, err, "Should create wrapper successfully")
	assert.NotNil(t, wrapper, "Should return wrapper instance")
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	handler := newMockQueryHandler("test-result", nil)
	metricsCollector := NewMetricsCollectorSpy(true)
	tracingCollector := NewTracingCollectorSpy(true)
	contextualLogger := NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, string](
		handler,
		observable.WithQueryMetrics[mockQuery, string](metricsCollector),
		observable.WithQueryTracing[mockQuery, string](tracingCollector),
		observable.WithQueryContextualLogging[mockQuery, string](contextualLogger),
	)
	assert.NoError(t, err, "Should create wrapper")

	query := mockQuery{}
	ctx := context.Background()

	// act
	result, err := wrapper.Handle(ctx, query)

	// assert
	assert.NoError(t, err, "Should handle query successfully")
	assert.Equal(t, "test-result", result, "Should pass the result through")

	calls := handler.GetCalls()
	assert.Len(t, calls, 1, "Should call handler once")
	assert.Equal(t, query, calls[0], "Should pass query to handler")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithLabel("query_type", "TestQuery").
		WithStatus("success").
		Assert(), "Should record success metric")
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).
		WithLabel("query_type", "TestQuery").
		WithStatus("success").
		Assert(), "Should record duration metric")

	assert.Greater(t, tracingCollector.GetSpanRecordCount(), 0, "Should create spans")

	assert.True(t, contextualLogger.HasInfoLog("query handler started"),
		"Should log query start")
	assert.True(t, contextualLogger.HasInfoLog("query handler completed"),
		"Should log query completion")
}

func Test_QueryWrapper_Handle_Error_RecordsFailureMetrics(t *testing.T) {
	// arrange
	expectedError := errors.New("projection error")
	handler := newMockQueryHandler("", expectedError)
	metricsCollector := NewMetricsCollectorSpy(true)
	contextualLogger := NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, string](
		handler,
		observable.WithQueryMetrics[mockQuery, string](metricsCollector),
		observable.WithQueryContextualLogging[mockQuery, string](contextualLogger),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, err = wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.Error(t, err, "Should return error from handler")
	assert.Equal(t, expectedError, err, "Should return exact error")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithLabel("query_type", "TestQuery").
		WithStatus("error").
		Assert(), "Should record error metric")

	assert.True(t, contextualLogger.HasErrorLog("query handler failed"),
		"Should log query failure")
}

func Test_QueryWrapper_Handle_CancellationError_RecordsCorrectStatus(t *testing.T) {
	// arrange
	handler := newMockQueryHandler("", context.Canceled)
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, string](
		handler,
		observable.WithQueryMetrics[mockQuery, string](metricsCollector),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, err = wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.Error(t, err, "Should return cancellation error")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCanceledMetric).
		WithLabel("query_type", "TestQuery").
		Assert(), "Should record cancellation metric")
}

func Test_QueryWrapper_Handle_TimeoutError_RecordsCorrectStatus(t *testing.T) {
	// arrange
	handler := newMockQueryHandler("", context.DeadlineExceeded)
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, string](
		handler,
		observable.WithQueryMetrics[mockQuery, string](metricsCollector),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, err = wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.Error(t, err, "Should return timeout error")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerTimeoutMetric).
		WithLabel("query_type", "TestQuery").
		Assert(), "Should record timeout metric")
}

func Test_QueryWrapper_Handle_WithoutObservability_WorksCorrectly(t *testing.T) {
	// arrange
	handler := newMockQueryHandler("test-result", nil)

	// Create a wrapper without any observability options
	wrapper, err := observable.NewQueryWrapper[mockQuery, string](handler)
	assert.NoError(t, err, "Should create wrapper without observability")

	// act
	result, err := wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.NoError(t, err, "Should handle query successfully")
	assert.Equal(t, "test-result", result, "Should pass the result through")
	assert.Len(t, handler.GetCalls(), 1, "Should call handler once")
}

// mockQuery implements shell.Query for testing.
type mockQuery struct{}

func (q mockQuery) QueryType() string {
	return "TestQuery"
}

// mockCoreQueryHandler implements shell.CoreQueryHandler for testing.
type mockCoreQueryHandler struct {
	result string
	err    error
	calls  []mockQuery
}

func (h *mockCoreQueryHandler) Handle(_ context.Context, query mockQuery) (string, error) {
	h.calls = append(h.calls, query)
	return h.result, h.err
}

func (h *mockCoreQueryHandler) GetCalls() []mockQuery {
	return h.calls
}

// Test helper to create a mock query handler.
func newMockQueryHandler(result string, err error) *mockCoreQueryHandler {
	return &mockCoreQueryHandler{
		result: result,
		err:    err,
		calls:  make([]mockQuery, 0),
	}
}
