package calculator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-chi-calculator/internal/observability"
)

func TestZapSinkRecordsSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))

	ctx := observability.ContextWithRequestID(context.Background(), "req-9")
	sink.Record(ctx, Event{
		Operation: "add",
		Params:    []string{"num1", "num2"},
		Operands:  []float64{5, 3},
		Result:    8,
		Duration:  1500 * time.Microsecond,
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "operation successful", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "add", fields["operation"])
	assert.Equal(t, 5.0, fields["num1"])
	assert.Equal(t, 3.0, fields["num2"])
	assert.Equal(t, 8.0, fields["result"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, 1.5, fields["duration_ms"])
}

func TestZapSinkRecordsDomainErrors(t *testing.T) {
	tests := []struct {
		kind    error
		message string
	}{
		{ErrMissingParameter, "missing parameters"},
		{ErrNotANumber, "invalid number parameters"},
		{ErrDivisionByZero, "division by zero attempted"},
		{ErrModuloByZero, "modulo by zero attempted"},
		{ErrNegativeRadicand, "square root of negative number attempted"},
		{ErrNonFiniteResult, "operation rejected"},
		{ErrInternal, "operation failed"},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			sink := NewZapSink(zap.New(core))

			zero := "0"
			sink.Record(context.Background(), Event{
				Operation: "divide",
				Received:  map[string]*string{"num2": &zero},
				Err:       &OperationError{Op: "divide", Kind: tc.kind},
				Stack:     []byte("goroutine 1"),
			})

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
			assert.Equal(t, tc.message, entries[0].Message)

			fields := entries[0].ContextMap()
			assert.Contains(t, fields, "error")
			assert.Contains(t, fields, "received")
			_, hasStack := fields["stack"]
			assert.Equal(t, tc.kind == ErrInternal, hasStack)
		})
	}
}
