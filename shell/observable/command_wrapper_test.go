package observable_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/shell"
	"github.com/openshelf/circulation-engine-go/shell/observable"
	. "github.com/openshelf/circulation-engine-go/testutil/helper" //nolint:revive
)

func Test_CommandWrapper_NewCommandWrapper_Success(t *testing.T) {
	// arrange
	handler := newMockHandler(shell.HandlerResult{}, nil)
	metricsCollector := NewMetricsCollectorSpy(true)

	// act
	wrapper, err := observable.NewCommandWrapper[mockCommand, string](
		handler,
		observable.WithCommandMetrics[mockCommand, string](metricsCollector),
	)

	// assert
	assert.NoError(t, err, "Should create wrapper successfully")
	assert.NotNil(t, wrapper, "Should return wrapper instance")
}

func Test_CommandWrapper_Handle_Success_NonIdempotent(t *testing.T) {
	// arrange
	expectedResult := shell.HandlerResult{
		Idempotent:      false,
		RetryAttempts:   1,
		TotalRetryDelay: 0,
		LastErrorType:   "none",
	}

	handler := newMockHandler(expectedResult, nil)
	metricsCollector := NewMetricsCollectorSpy(true)
	tracingCollector := NewTracingCollectorSpy(true)
	contextualLogger := NewContextualLoggerSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand, string](
		handler,
		observable.WithCommandMetrics[mockCommand, string](metricsCollector),
		observable.WithCommandTracing[mockCommand, string](tracingCollector),
		observable.WithCommandContextualLogging[mockCommand, string](contextualLogger),
	)
	assert.NoError(t, err, "Should create wrapper")

	command := mockCommand{}
	ctx := context.Background()

	// act
	receipt, result, err := wrapper.Handle(ctx, command)

	// assert
	assert.NoError(t, err, "Should handle command successfully")
	assert.Equal(t, "test-receipt", receipt, "Should pass the receipt through")
	assert.Equal(t, expectedResult, result, "Should return handler result")

	calls := handler.GetCalls()
	assert.Len(t, calls, 1, "Should call handler once")
	assert.Equal(t, command, calls[0], "Should pass command to handler")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerCallsMetric).
		WithLabel("command_type", "TestCommand").
		WithStatus("success").
		Assert(), "Should record success metric")
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.CommandHandlerDurationMetric).
		WithLabel("command_type", "TestCommand").
		WithStatus("success").
		Assert(), "Should record duration metric")

	assert.Greater(t, tracingCollector.GetSpanRecordCount(), 0, "Should create spans")

	assert.True(t, contextualLogger.HasInfoLog("command handler started"),
		"Should log command start")
	assert.True(t, contextualLogger.HasInfoLog("command handler completed"),
		"Should log command completion")
}

func Test_CommandWrapper_Handle_Success_Idempotent(t *testing.T) {
	// arrange
	expectedResult := shell.HandlerResult{
		Idempotent:    true,
		RetryAttempts: 1,
		LastErrorType: "none",
	}

	handler := newMockHandler(expectedResult, nil)
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand, string](
		handler,
		observable.WithCommandMetrics[mockCommand, string](metricsCollector),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err, "Should handle command successfully")
	assert.Equal(t, expectedResult, result, "Should return handler result")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerIdempotentMetric).
		WithLabel("command_type", "TestCommand").
		Assert(), "Should record idempotent metric")
}

func Test_CommandWrapper_Handle_WithRetries_RecordsMetrics(t *testing.T) {
	// arrange
	resultWithRetries := shell.HandlerResult{
		Idempotent:      false,
		RetryAttempts:   3,
		TotalRetryDelay: 15 * time.Millisecond,
		LastErrorType:   "concurrency_conflict",
	}

	handler := newMockHandler(resultWithRetries, nil)
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand, string](
		handler,
		observable.WithCommandMetrics[mockCommand, string](metricsCollector),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err, "Should handle command successfully")
	assert.Equal(t, resultWithRetries, result, "Should return handler result with retry metadata")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel("command_type", "TestCommand").
		WithLabel("error_type", "concurrency_conflict").
		Assert(), "Should record retry attempts metric")
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.CommandHandlerRetryDelayMetric).
		WithLabel("command_type", "TestCommand").
		Assert(), "Should record retry delay metric")
}

func Test_CommandWrapper_Handle_RetriesExhausted_RecordsMetric(t *testing.T) {
	// arrange
	exhaustedResult := shell.HandlerResult{
		RetryAttempts:    6,
		TotalRetryDelay:  120 * time.Millisecond,
		LastErrorType:    "concurrency_conflict",
		RetriesExhausted: true,
	}

	handler := newMockHandler(exhaustedResult, circulation.ErrConcurrencyConflict)
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand, string](
		handler,
		observable.WithCommandMetrics[mockCommand, string](metricsCollector),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, _, err = wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerMaxRetriesReachedMetric).
		WithLabel("command_type", "TestCommand").
		Assert(), "Should record retries exhausted metric")
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerConcurrencyConflictMetric).
		WithLabel("command_type", "TestCommand").
		Assert(), "Should classify the final error as a concurrency conflict")
}

func Test_CommandWrapper_Handle_Error_RecordsFailureMetrics(t *testing.T) {
	// arrange
	expectedError := errors.New("business logic error")
	expectedResult := shell.HandlerResult{
		Idempotent:    false,
		RetryAttempts: 2,
	}

	handler := newMockHandler(expectedResult, expectedError)
	metricsCollector := NewMetricsCollectorSpy(true)
	tracingCollector := NewTracingCollectorSpy(true)
	contextualLogger := NewContextualLoggerSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand, string](
		handler,
		observable.WithCommandMetrics[mockCommand, string](metricsCollector),
		observable.WithCommandTracing[mockCommand, string](tracingCollector),
		observable.WithCommandContextualLogging[mockCommand, string](contextualLogger),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.Error(t, err, "Should return error from handler")
	assert.Equal(t, expectedError, err, "Should return exact error")
	assert.Equal(t, expectedResult, result, "Should return handler result even on error")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerCallsMetric).
		WithLabel("command_type", "TestCommand").
		WithStatus("error").
		Assert(), "Should record error metric")

	assert.True(t, contextualLogger.HasErrorLog("command handler failed"),
		"Should log command failure")
}

func Test_CommandWrapper_Handle_CancellationError_RecordsCorrectStatus(t *testing.T) {
	// arrange
	handler := newMockHandler(shell.HandlerResult{}, context.Canceled)
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand, string](
		handler,
		observable.WithCommandMetrics[mockCommand, string](metricsCollector),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, _, err = wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.Error(t, err, "Should return cancellation error")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerCanceledMetric).
		WithLabel("command_type", "TestCommand").
		Assert(), "Should record cancellation metric")
}

func Test_CommandWrapper_Handle_TimeoutError_RecordsCorrectStatus(t *testing.T) {
	// arrange
	handler := newMockHandler(shell.HandlerResult{}, context.DeadlineExceeded)
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand, string](
		handler,
		observable.WithCommandMetrics[mockCommand, string](metricsCollector),
	)
	assert.NoError(t, err, "Should create wrapper")

	// act
	_, _, err = wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.Error(t, err, "Should return timeout error")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerTimeoutMetric).
		WithLabel("command_type", "TestCommand").
		Assert(), "Should record timeout metric")
}

func Test_CommandWrapper_Handle_WithoutObservability_WorksCorrectly(t *testing.T) {
	// arrange
	expectedResult := shell.HandlerResult{Idempotent: false, RetryAttempts: 1}
	handler := newMockHandler(expectedResult, nil)

	// Create a wrapper without any observability options
	wrapper, err := observable.NewCommandWrapper[mockCommand, string](handler)
	assert.NoError(t, err, "Should create wrapper without observability")

	// act
	receipt, result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err, "Should handle command successfully")
	assert.Equal(t, "test-receipt", receipt, "Should pass the receipt through")
	assert.Equal(t, expectedResult, result, "Should return handler result")
	assert.Len(t, handler.GetCalls(), 1, "Should call handler once")
}

// mockCommand implements shell.Command for testing.
type mockCommand struct{}

func (c mockCommand) CommandType() string {
	return "TestCommand"
}

// mockCoreHandler implements shell.CoreCommandHandler for testing.
type mockCoreHandler struct {
	result shell.HandlerResult
	err    error
	calls  []mockCommand
}

func (h *mockCoreHandler) Handle(_ context.Context, command mockCommand) (string, shell.HandlerResult, error) {
	h.calls = append(h.calls, command)
	return "test-receipt", h.result, h.err
}

func (h *mockCoreHandler) GetCalls() []mockCommand {
	return h.calls
}

// Test helper to create a mock handler.
func newMockHandler(result shell.HandlerResult, err error) *mockCoreHandler {
	return &mockCoreHandler{
		result: result,
		err:    err,
		calls:  make([]mockCommand, 0),
	}
}
