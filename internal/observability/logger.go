package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger is a no-op until InitLogger runs.
var Logger = zap.NewNop()

// InitLogger replaces Logger with a JSON production logger on stderr.
func InitLogger() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger carrying trace_id and span_id of the
// active span in ctx, or Logger itself when there is none.
//
// ctx is also attached as a zap field: the otelzap core picks up any field
// holding a context.Context and emits the record with it, so exported log
// records carry native trace and span IDs and can be joined to traces. The
// string fields keep stdout logs greppable.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
