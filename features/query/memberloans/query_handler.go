package memberloans

import (
	"context"
	"time"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
	"github.com/openshelf/circulation-engine-go/shell"
)

// CirculationStorage defines the interface needed by the QueryHandler for storage operations.
type CirculationStorage interface {
	LoadLoanDetails(ctx context.Context, filter circulation.LoanFilter) ([]core.LoanDetail, error)
}

// QueryHandler orchestrates the complete query processing workflow.
// It handles infrastructure concerns like storage interactions, observability instrumentation,
// and delegates projection logic to the pure core functions.
type QueryHandler struct {
	storage          CirculationStorage
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewQueryHandler creates a new QueryHandler with the provided storage dependency and options.
func NewQueryHandler(storage CirculationStorage, opts ...Option) (QueryHandler, error) {
	h := QueryHandler{
		storage: storage,
	}

	for _, opt := range opts {
		if err := opt(&h); err != nil {
			return QueryHandler{}, err
		}
	}

	return h, nil
}

// Handle executes the complete query processing workflow: Load -> Project.
// It loads the member's loan rows, delegates projection logic to the core function,
// and instruments the operation with comprehensive observability.
// Callers that tolerate replica lag opt in with circulation.WithEventualConsistency.
func (h QueryHandler) Handle(ctx context.Context, query Query) (MemberLoans, error) {
	// Start query handler instrumentation
	queryStart := time.Now()
	ctx, span := shell.StartQuerySpan(ctx, h.tracingCollector, queryType)
	shell.LogQueryStart(ctx, h.logger, h.contextualLogger, queryType)

	filter := BuildLoanFilter(query)

	// Load phase
	loadStart := time.Now()
	details, err := h.storage.LoadLoanDetails(ctx, filter)
	loadDuration := time.Since(loadStart)
	if err != nil {
		h.recordComponentTiming(ctx, shell.ComponentLoad, shell.StatusError, loadDuration)
		h.recordQueryError(ctx, err, time.Since(queryStart), span)
		return MemberLoans{}, err
	}
	h.recordComponentTiming(ctx, shell.ComponentLoad, shell.StatusSuccess, loadDuration)

	// Projection phase - delegate to a pure core function
	projectionStart := time.Now()
	result := Project(details, query)
	projectionDuration := time.Since(projectionStart)
	h.recordComponentTiming(ctx, shell.ComponentProjection, shell.StatusSuccess, projectionDuration)

	h.recordQuerySuccess(ctx, time.Since(queryStart), span)

	return result, nil
}

/*** Query Handler Options and helper methods for observability ***/

// Option defines a functional option for configuring QueryHandler.
type Option func(*QueryHandler) error

// WithMetrics sets the metrics collector for the QueryHandler.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(h *QueryHandler) error {
		h.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the QueryHandler.
func WithTracing(collector shell.TracingCollector) Option {
	return func(h *QueryHandler) error {
		h.tracingCollector = collector
		return nil
	}
}

// WithContextualLogging sets the contextual logger for the QueryHandler.
func WithContextualLogging(logger shell.ContextualLogger) Option {
	return func(h *QueryHandler) error {
		h.contextualLogger = logger
		return nil
	}
}

// WithLogging sets the basic logger for the QueryHandler.
func WithLogging(logger shell.Logger) Option {
	return func(h *QueryHandler) error {
		h.logger = logger
		return nil
	}
}

// recordQuerySuccess records successful query execution with observability.
func (h QueryHandler) recordQuerySuccess(ctx context.Context, duration time.Duration, span shell.SpanContext) {
	shell.RecordQueryMetrics(ctx, h.metricsCollector, queryType, shell.StatusSuccess, duration)
	shell.FinishQuerySpan(h.tracingCollector, span, shell.StatusSuccess, duration, nil)
	shell.LogQuerySuccess(ctx, h.logger, h.contextualLogger, queryType, shell.StatusSuccess, duration)
}

// recordQueryError records failed query execution with observability.
func (h QueryHandler) recordQueryError(ctx context.Context, err error, duration time.Duration, span shell.SpanContext) {
	if shell.IsCancellationError(err) {
		h.recordQueryCancelled(ctx, err, duration, span)
		return
	}

	if shell.IsTimeoutError(err) {
		h.recordQueryTimeout(ctx, err, duration, span)
		return
	}

	shell.RecordQueryMetrics(ctx, h.metricsCollector, queryType, shell.StatusError, duration)
	shell.FinishQuerySpan(h.tracingCollector, span, shell.StatusError, duration, err)
	shell.LogQueryError(ctx, h.logger, h.contextualLogger, queryType, err)
}

// recordQueryCancelled records canceled query execution with observability.
func (h QueryHandler) recordQueryCancelled(ctx context.Context, err error, duration time.Duration, span shell.SpanContext) {
	shell.RecordQueryMetrics(ctx, h.metricsCollector, queryType, shell.StatusCanceled, duration)
	shell.FinishQuerySpan(h.tracingCollector, span, shell.StatusCanceled, duration, err)
	shell.LogQueryError(ctx, h.logger, h.contextualLogger, queryType, err)
}

// recordQueryTimeout records timeout query execution with observability.
func (h QueryHandler) recordQueryTimeout(ctx context.Context, err error, duration time.Duration, span shell.SpanContext) {
	shell.RecordQueryMetrics(ctx, h.metricsCollector, queryType, shell.StatusTimeout, duration)
	shell.FinishQuerySpan(h.tracingCollector, span, shell.StatusTimeout, duration, err)
	shell.LogQueryError(ctx, h.logger, h.contextualLogger, queryType, err)
}

// recordComponentTiming records component-level timing metrics.
func (h QueryHandler) recordComponentTiming(ctx context.Context, component string, status string, duration time.Duration) {
	shell.RecordQueryComponentDuration(ctx, h.metricsCollector, queryType, component, status, duration)
}
