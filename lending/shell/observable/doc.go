// Package observable wraps command and query handlers with metrics, tracing and logging,
// keeping the wrapped handlers free of instrumentation code.
//
// Wrappers are applied at wiring time:
//
//	coreHandler := createloan.NewCommandHandler(eventStore)
//
//	handler, err := observable.NewCommandWrapper[createloan.Command](
//		coreHandler,
//		observable.WithMetrics(metricsCollector),
//		observable.WithTracing(tracingCollector),
//		observable.WithContextualLogging(logger),
//	)
//
// Every option is optional. A wrapper without options only delegates.
package observable
