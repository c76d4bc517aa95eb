package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

// Options configures NewRouter. The zero value is usable: no rate limiting
// and events recorded on observability.Logger.
type Options struct {
	RateLimit      float64
	RateLimitBurst int

	// Sink receives calculator events. Defaults to a ZapSink over
	// observability.Logger.
	Sink calculator.EventSink
}

func NewRouter(opts Options) http.Handler {

	sink := opts.Sink
	if sink == nil {
		sink = calculator.NewZapSink(observability.Logger)
	}

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.MetricsMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(observability.RecoveryMiddleware)

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", observability.PrometheusHandler())

	r.Group(func(r chi.Router) {
		r.Use(observability.RateLimitMiddleware(opts.RateLimit, opts.RateLimitBurst))
		calculator.RegisterRoutes(r, calculator.NewHandler(sink))
	})

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	return r
}

// AvailableEndpoints is listed in 404 responses.
func AvailableEndpoints() []string {
	return append(calculator.Paths(), "/health", "/metrics")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	observability.LoggerWithTrace(r.Context()).Warn("invalid endpoint accessed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("ip", r.RemoteAddr),
		zap.String("request_id", observability.RequestIDFromContext(r.Context())),
	)

	handlers.WriteErrorResponse(w, http.StatusNotFound, handlers.ErrorResponse{
		Error:              "Endpoint not found",
		Code:               handlers.ErrCodeNotFound,
		AvailableEndpoints: AvailableEndpoints(),
		Documentation:      calculator.BaseURL(r),
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed,
		"Method "+r.Method+" not allowed on "+r.URL.Path)
}
