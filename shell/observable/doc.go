// Package observable provides wrapper components for instrumenting command and query handlers
// with comprehensive observability (metrics, tracing, logging) while keeping business logic pure.
//
// # Core Principle: External Wrapping
//
// The observable wrappers are applied externally at bootstrap/wiring time, not hidden
// inside factory functions. This makes the observability composition explicit and transparent.
//
// # Command Handler Usage
//
// Basic pattern for wrapping a command handler with observability:
//
//	// 1. Create pure business logic handler
//	coreHandler := issuebookcopy.NewCommandHandler(engine)
//
//	// 2. Wrap with observability (external, explicit)
//	observableHandler, err := observable.NewCommandWrapper[issuebookcopy.Command, issuebookcopy.Receipt](
//		coreHandler,
//		observable.WithCommandMetrics[issuebookcopy.Command, issuebookcopy.Receipt](metricsCollector),
//		observable.WithCommandContextualLogging[issuebookcopy.Command, issuebookcopy.Receipt](contextualLogger),
//	)
//
//	// 3. Use wrapped handler in application
//	receipt, result, err := observableHandler.Handle(ctx, command)
//
// # Selective Observability
//
// Each observability concern is optional: apply only metrics, only tracing,
// or any combination. A wrapper with no options is a transparent pass-through.
//
// # Pure Business Logic Testing
//
// For unit tests focused on business logic, use handlers without observability:
//
//	handler := issuebookcopy.NewCommandHandler(engine)
//	receipt, result, err := handler.Handle(ctx, command)
//
// # Architecture Benefits
//
//   - Command handlers contain ONLY business logic (Load -> Decide -> Apply)
//   - All observability is optional and composable
//   - Clear separation between business logic and infrastructure concerns
//   - Retry metadata from HandlerResult is translated into metrics in one place
package observable
