package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

const (
	// MaxChainSteps bounds the work a single /chain request can ask for.
	MaxChainSteps = 100

	maxChainBodyBytes = 1 << 20
)

// Handler serves the calculator endpoints. It is stateless apart from its
// collaborators and safe for concurrent use.
type Handler struct {
	sink EventSink
	now  func() time.Time
}

func NewHandler(sink EventSink) *Handler {
	return &Handler{
		sink: sink,
		now:  time.Now,
	}
}

// Operation returns the handler for GET /<op.Name>.
func (h *Handler) Operation(op Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.handleOperation(w, r, op)
	}
}

// handleOperation is the shared implementation for every operation:
// validate, compute, respond. It opens a child span, records metrics and
// emits exactly one event to the sink.
func (h *Handler) handleOperation(w http.ResponseWriter, r *http.Request, op Operation) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", op.Name),
		trace.WithAttributes(
			attribute.String("calculator.operation", op.Name),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	req, result, err := h.compute(op, r)
	elapsed := time.Since(start)

	ev := Event{
		Operation: op.Name,
		Params:    op.ParamNames(),
		Operands:  req.Operands,
		Received:  req.Received,
		Duration:  elapsed,
	}

	if err != nil {
		h.fail(ctx, span, w, op.Name, err, ev)
		return
	}

	elapsedMS := float64(elapsed.Microseconds()) / 1000.0

	attrs := metric.WithAttributes(attribute.String("operation", op.Name))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsedMS, attrs)
	resultGauge.Record(ctx, result.Result, attrs)

	for i, name := range result.Params {
		span.SetAttributes(attribute.Float64("calculator.operand."+name, result.Operands[i]))
	}
	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result.Result),
		attribute.Float64("duration_ms", elapsedMS),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result.Result))
	span.SetStatus(codes.Ok, "")

	ev.Result = result.Result
	h.sink.Record(ctx, ev)

	handlers.WriteJSON(w, http.StatusOK, result)
}

// compute runs validation and execution. A panic inside the operation is
// reported as an ErrInternal OperationError rather than crashing the
// request; the stack is kept for the log only.
func (h *Handler) compute(op Operation, r *http.Request) (req OperationRequest, result OperationResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &OperationError{
				Op:       op.Name,
				Kind:     ErrInternal,
				Received: req.Received,
				Err:      &panicError{value: rec, stack: debug.Stack()},
			}
		}
	}()

	req, err = ParseRequest(op, r.URL.Query())
	if err != nil {
		var opErr *OperationError
		if errors.As(err, &opErr) {
			req.Received = opErr.Received
		}
		return req, OperationResult{}, err
	}

	result, err = req.Execute(h.now())
	return req, result, err
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// fail records err on the span, metrics and sink, then writes the error
// response. Only OperationError details reach the client.
func (h *Handler) fail(ctx context.Context, span trace.Span, w http.ResponseWriter, opName string, err error, ev Event) {
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		opErr = &OperationError{Op: opName, Kind: ErrInternal, Err: err}
	}

	ev.Err = opErr
	var pe *panicError
	if errors.As(opErr, &pe) {
		ev.Stack = pe.stack
	}
	h.sink.Record(ctx, ev)

	resp := handlers.ErrorResponse{
		Error: opErr.Message(),
		Code:  opErr.Code(),
	}
	if opErr.Status() < http.StatusInternalServerError {
		resp.Received = opErr.Received
		if errors.Is(opErr, ErrMissingParameter) {
			if op, ok := Lookup(opName); ok {
				resp.Example = exampleQuery(op)
			}
		}
	}

	observability.RecordError(ctx, span, errorCounter, opName, opErr, opErr.Status(), resp, w)
}

// Chain handles POST /chain. It runs a sequence of operations on a running
// total, creating a child span for every step.
func (h *Handler) Chain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.chain",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	start := time.Now()

	var req ChainRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChainBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.rejectChain(ctx, span, w, fmt.Errorf("decode chain request: %w", err), "Invalid request body", start)
		return
	}

	switch {
	case len(req.Steps) == 0:
		h.rejectChain(ctx, span, w, errors.New("steps array is empty"), "No steps provided", start)
		return
	case len(req.Steps) > MaxChainSteps:
		h.rejectChain(ctx, span, w, fmt.Errorf("%d steps exceeds limit of %d", len(req.Steps), MaxChainSteps), "Too many steps", start)
		return
	}

	span.SetAttributes(
		attribute.Float64("chain.initial", req.Initial),
		attribute.Int("chain.steps_count", len(req.Steps)),
	)

	running := req.Initial
	results := make([]ChainResult, 0, len(req.Steps))

	for i, step := range req.Steps {
		next, err := h.chainStep(ctx, i, step, running)
		if err != nil {
			var opErr *OperationError
			if !errors.As(err, &opErr) {
				h.rejectChain(ctx, span, w, err, err.Error(), start)
				return
			}

			span.SetStatus(codes.Error, fmt.Sprintf("failed at step %d", i))
			h.fail(ctx, span, w, "chain", opErr, Event{
				Operation: "chain",
				Duration:  time.Since(start),
			})
			return
		}

		results = append(results, ChainResult{
			Op:     step.Op,
			Value:  step.Value,
			Result: next,
		})
		running = next
	}

	attrs := metric.WithAttributes(attribute.String("operation", "chain"))
	resultGauge.Record(ctx, running, attrs)

	span.AddEvent("chain.complete", trace.WithAttributes(
		attribute.Float64("final_result", running),
		attribute.Int("total_steps", len(req.Steps)),
	))
	span.SetAttributes(attribute.Float64("chain.result", running))
	span.SetStatus(codes.Ok, "")

	h.sink.Record(ctx, Event{
		Operation: "chain",
		Params:    []string{"initial"},
		Operands:  []float64{req.Initial},
		Result:    running,
		Duration:  time.Since(start),
	})

	handlers.WriteJSON(w, http.StatusOK, ChainResponse{
		Initial:   req.Initial,
		Steps:     results,
		Result:    running,
		Timestamp: h.now().UTC().Format(TimestampLayout),
	})
}

// chainStep applies one step to running inside its own child span.
func (h *Handler) chainStep(ctx context.Context, i int, step ChainStep, running float64) (float64, error) {
	_, span := tracer.Start(ctx, fmt.Sprintf("calculator.chain.step.%d.%s", i, step.Op),
		trace.WithAttributes(
			attribute.Int("chain.step.index", i),
			attribute.String("chain.step.operation", step.Op),
			attribute.Float64("chain.step.input", running),
			attribute.Float64("chain.step.value", step.Value),
		),
	)
	defer span.End()

	op, ok := Lookup(step.Op)
	if !ok {
		err := fmt.Errorf("unknown operation %q at step %d", step.Op, i)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	args := []float64{running}
	if op.Arity() == 2 {
		args = append(args, step.Value)
	}

	stepStart := time.Now()
	result, err := op.Execute(args)
	stepElapsed := float64(time.Since(stepStart).Microseconds()) / 1000.0

	if err != nil {
		opErr := &OperationError{
			Op:     op.Name,
			Kind:   err,
			Params: []string{fmt.Sprintf("step %d", i)},
		}
		span.RecordError(opErr)
		span.SetStatus(codes.Error, opErr.Message())
		return 0, opErr
	}

	attrs := metric.WithAttributes(attribute.String("operation", op.Name))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, stepElapsed, attrs)

	span.AddEvent("step.complete", trace.WithAttributes(
		attribute.Float64("input", running),
		attribute.Float64("result", result),
	))
	span.SetAttributes(attribute.Float64("chain.step.result", result))
	span.SetStatus(codes.Ok, "")

	return result, nil
}

func (h *Handler) rejectChain(ctx context.Context, span trace.Span, w http.ResponseWriter, err error, msg string, start time.Time) {
	h.sink.Record(ctx, Event{
		Operation: "chain",
		Err:       err,
		Duration:  time.Since(start),
	})

	observability.RecordError(ctx, span, errorCounter, "chain", err, http.StatusBadRequest, handlers.ErrorResponse{
		Error:   msg,
		Code:    handlers.ErrCodeInvalidRequest,
		Message: err.Error(),
	}, w)
}
