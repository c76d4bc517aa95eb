package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"go-chi-calculator/internal/handlers"
)

// RecordError centralises the non-logging side of error handling: records
// the error on the span, increments the provided error counter and writes
// resp as the JSON error body. Callers log through their own sink.
func RecordError(ctx context.Context, span trace.Span, counter metric.Int64Counter, opName string, err error, status int, resp handlers.ErrorResponse, w http.ResponseWriter) {
	span.RecordError(err)
	span.SetStatus(codes.Error, resp.Error)
	span.SetAttributes(attribute.String("error.code", resp.Code))

	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", opName),
		attribute.String("code", resp.Code),
	))

	handlers.WriteErrorResponse(w, status, resp)
}
