package calculator

import (
	"context"
	"fmt"
	"time"

	"go-chi-calculator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Service wraps a Store with tracing, metrics and logging. Both the JSON API
// and the HTML shell drive sessions through it.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Create starts a new session.
func (s *Service) Create(ctx context.Context) (string, State, error) {
	logger := observability.LoggerWithTrace(ctx)

	_, span := tracer.Start(ctx, "calculator.session.create")
	defer span.End()

	id, state, err := s.store.Create()
	if err != nil {
		s.fail(ctx, span, logger, "session.create", err)
		return "", State{}, err
	}

	span.SetAttributes(attribute.String("calculator.session.id", id))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	return id, state, nil
}

// State returns the current state of session id.
func (s *Service) State(ctx context.Context, id string) (State, error) {
	state, err := s.store.Get(id)
	if err != nil {
		s.fail(ctx, trace.SpanFromContext(ctx), observability.LoggerWithTrace(ctx), "session.get", err)
		return State{}, err
	}
	return state, nil
}

// Delete discards session id.
func (s *Service) Delete(ctx context.Context, id string) error {
	logger := observability.LoggerWithTrace(ctx)

	if err := s.store.Delete(id); err != nil {
		s.fail(ctx, trace.SpanFromContext(ctx), logger, "session.delete", err)
		return err
	}

	logger.Info("calculator session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	return nil
}

// Press applies the button labelled key to session id.
func (s *Service) Press(ctx context.Context, id, key string) (Transition, error) {
	logger := observability.LoggerWithTrace(ctx)

	// A missing session outranks a bad key.
	if _, err := s.store.lookup(id); err != nil {
		s.fail(ctx, trace.SpanFromContext(ctx), logger, "press", err)
		return Transition{}, err
	}

	ev, err := ParseKey(key)
	if err != nil {
		s.fail(ctx, trace.SpanFromContext(ctx), logger, "press", err)
		return Transition{}, err
	}

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", ev.Name()),
		trace.WithAttributes(
			attribute.String("calculator.session.id", id),
			attribute.String("calculator.key", key),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	start := time.Now()
	t, err := s.store.Dispatch(id, ev)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		s.fail(ctx, span, logger, ev.Name(), err)
		return Transition{}, err
	}

	s.observe(ctx, span, t, elapsed)

	logger.Info("calculator event applied",
		zap.String("session_id", id),
		zap.String("event", ev.Name()),
		zap.String("display", t.After.Display),
		zap.Bool("evaluated", t.Evaluated),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Float64("duration_ms", elapsed),
	)

	return t, nil
}

// observe records metrics and span data for one applied transition.
func (s *Service) observe(ctx context.Context, span trace.Span, t Transition, elapsedMS float64) {
	attrs := metric.WithAttributes(attribute.String("event", t.Event.Name()))
	eventsCounter.Add(ctx, 1, attrs)
	eventHistogram.Record(ctx, elapsedMS, attrs)

	if t.Evaluated {
		resultGauge.Record(ctx, t.Result, attrs)
		span.AddEvent("computation.complete", trace.WithAttributes(
			attribute.Float64("result", t.Result),
			attribute.Float64("duration_ms", elapsedMS),
		))
	}

	span.SetAttributes(
		attribute.String("calculator.display.before", t.Before.Display),
		attribute.String("calculator.display.after", t.After.Display),
		attribute.Bool("calculator.awaiting_second_operand", t.After.AwaitingSecondOperand),
	)
	span.SetStatus(codes.Ok, "")
}

func (s *Service) fail(ctx context.Context, span trace.Span, logger *zap.Logger, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))

	logger.Warn("calculator request rejected",
		zap.String("operation", op),
		zap.Error(err),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
}
