package calculator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-chi-calculator/internal/observability"
)

// Event describes one computed or rejected operation.
type Event struct {
	Operation string
	Params    []string
	Operands  []float64
	Result    float64
	Received  map[string]*string
	Duration  time.Duration

	// Err is nil for a successful operation.
	Err error

	// Stack is the goroutine stack captured for internal failures.
	Stack []byte
}

// EventSink receives one Event per operation. Implementations must not
// block the caller on I/O.
type EventSink interface {
	Record(ctx context.Context, ev Event)
}

// ZapSink records events as structured log lines.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Record(ctx context.Context, ev Event) {
	logger := observability.WithTrace(s.logger, ctx)

	fields := []zap.Field{
		zap.String("operation", ev.Operation),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Float64("duration_ms", float64(ev.Duration.Microseconds())/1000.0),
	}

	if ev.Err == nil {
		for i, name := range ev.Params {
			fields = append(fields, zap.Float64(name, ev.Operands[i]))
		}
		fields = append(fields, zap.Float64("result", ev.Result))
		logger.Info("operation successful", fields...)
		return
	}

	fields = append(fields, zap.Error(ev.Err))
	if ev.Received != nil {
		fields = append(fields, zap.Any("received", ev.Received))
	}

	switch {
	case errors.Is(ev.Err, ErrInternal):
		if len(ev.Stack) > 0 {
			fields = append(fields, zap.ByteString("stack", ev.Stack))
		}
		logger.Error("operation failed", fields...)
	case errors.Is(ev.Err, ErrMissingParameter):
		logger.Error("missing parameters", fields...)
	case errors.Is(ev.Err, ErrNotANumber):
		logger.Error("invalid number parameters", fields...)
	case errors.Is(ev.Err, ErrDivisionByZero):
		logger.Error("division by zero attempted", fields...)
	case errors.Is(ev.Err, ErrModuloByZero):
		logger.Error("modulo by zero attempted", fields...)
	case errors.Is(ev.Err, ErrNegativeRadicand):
		logger.Error("square root of negative number attempted", fields...)
	default:
		logger.Error("operation rejected", fields...)
	}
}
