package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Request limits for the JSON API.
const (
	MaxKeyBodyBytes      = 1 << 10
	MaxEvaluateBodyBytes = 64 << 10
	MaxEvaluateKeys      = 1024
)

// Handler serves the calculator JSON API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ---------------------------------------------------------------------------
// Handlers — sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, state, err := h.svc.Create(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStateResponse(id, state))
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, err := h.svc.State(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(id, state))
}

// PressKey handles POST /calculator/sessions/{id}/keys
func (h *Handler) PressKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req KeyRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxKeyBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, trace.SpanFromContext(ctx), observability.LoggerWithTrace(ctx), errorCounter, "press", "invalid request body", err, decodeStatus(err), w)
		return
	}

	t, err := h.svc.Press(ctx, id, req.Key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(id, t.After))
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handler — stateless replay (demonstrates nested spans)
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate — replays a sequence of key
// presses on a fresh machine, creating a child span for every key. The
// session store is not touched.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	// Parent span for the whole replay
	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxEvaluateBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, decodeStatus(err), w)
		return
	}

	if len(req.Keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "no keys provided", fmt.Errorf("keys array is empty"), http.StatusBadRequest, w)
		return
	}
	if len(req.Keys) > MaxEvaluateKeys {
		err := fmt.Errorf("%d keys exceeds the limit of %d", len(req.Keys), MaxEvaluateKeys)
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "too many keys", err, http.StatusRequestEntityTooLarge, w)
		return
	}

	span.SetAttributes(attribute.Int("evaluate.keys_count", len(req.Keys)))

	m := NewMachine()
	steps := make([]KeyResult, 0, len(req.Keys))

	for i, key := range req.Keys {
		ev, err := ParseKey(key)
		if err != nil {
			err = fmt.Errorf("key %d: %w", i, err)
			observability.RecordError(ctx, span, logger, errorCounter, "evaluate", err.Error(), err, http.StatusBadRequest, w)
			return
		}

		// --- Child span per key ---
		_, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.evaluate.step.%d.%s", i, ev.Name()),
			trace.WithAttributes(
				attribute.Int("evaluate.step.index", i),
				attribute.String("evaluate.step.key", key),
				attribute.String("evaluate.step.input", m.Display()),
			),
		)

		stepStart := time.Now()
		t, err := m.Dispatch(ev)
		stepElapsed := float64(time.Since(stepStart).Microseconds()) / 1000.0

		if err != nil {
			stepSpan.RecordError(err)
			stepSpan.SetStatus(codes.Error, err.Error())
			stepSpan.End()

			observability.RecordError(ctx, span, logger, errorCounter, "evaluate", fmt.Sprintf("key %d rejected", i), err, http.StatusBadRequest, w)
			return
		}

		attrs := metric.WithAttributes(attribute.String("event", ev.Name()))
		eventsCounter.Add(ctx, 1, attrs)
		eventHistogram.Record(ctx, stepElapsed, attrs)
		if t.Evaluated {
			resultGauge.Record(ctx, t.Result, attrs)
			stepSpan.AddEvent("computation.complete", trace.WithAttributes(
				attribute.Float64("result", t.Result),
			))
		}

		stepSpan.SetAttributes(attribute.String("evaluate.step.display", t.After.Display))
		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		logger.Debug("evaluate step applied",
			zap.Int("step", i),
			zap.String("key", key),
			zap.String("display", t.After.Display),
			zap.Float64("duration_ms", stepElapsed),
		)

		steps = append(steps, KeyResult{Key: key, Display: t.After.Display})
	}

	span.SetAttributes(attribute.String("evaluate.display", m.Display()))
	span.SetStatus(codes.Ok, "")

	logger.Info("evaluation completed",
		zap.Int("keys", len(req.Keys)),
		zap.String("display", m.Display()),
		zap.String("request_id", requestID),
	)

	writeJSON(w, http.StatusOK, EvaluateResponse{
		Keys:    req.Keys,
		Steps:   steps,
		Display: m.Display(),
	})
}

// StatusFor maps calculator errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionLimit):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUnknownKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeStatus maps a request body decode failure to a status code.
func decodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeServiceError(w http.ResponseWriter, err error) {
	handlers.WriteError(w, StatusFor(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	if err := handlers.WriteJSON(w, status, v); err != nil {
		observability.Logger.Error("encoding response", zap.Error(err))
	}
}
