package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(level)
	oldLogger := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = oldLogger })

	return logs
}

func TestRequestIDMiddlewareSetsHeaderAndContext(t *testing.T) {
	var ctxRequestID string

	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxRequestID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/add", nil)
	w := testutil.ExecuteRequest(r, h)

	headerRequestID := w.Result().Header.Get("X-Request-ID")
	if headerRequestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}

	if _, err := uuid.Parse(headerRequestID); err != nil {
		t.Fatalf("expected header to contain UUID, got %q: %v", headerRequestID, err)
	}

	if ctxRequestID != headerRequestID {
		t.Fatalf("expected context request_id %q to match header %q", ctxRequestID, headerRequestID)
	}
}

func TestRequestIDMiddlewarePropagatesIncomingID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "valid uuid", incoming: "6f1c7d3e-2a7b-4c55-9a63-1d2e3f4a5b6c", keep: true},
		{name: "not a uuid", incoming: "hello", keep: false},
		{name: "empty", incoming: "", keep: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			r := httptest.NewRequest(http.MethodGet, "/add", nil)
			r.Header.Set("X-Request-ID", tc.incoming)
			w := testutil.ExecuteRequest(r, h)

			got := w.Result().Header.Get("X-Request-ID")
			if tc.keep && got != tc.incoming {
				t.Fatalf("expected incoming id %q to be kept, got %q", tc.incoming, got)
			}
			if !tc.keep && got == tc.incoming {
				t.Fatalf("expected incoming id %q to be replaced", tc.incoming)
			}
		})
	}
}

func TestShouldTraceRequest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/health", want: false},
		{path: "/metrics", want: false},
		{path: "/add", want: true},
		{path: "/sqrt", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.path, nil)
			got := shouldTraceRequest(r)
			if got != tc.want {
				t.Fatalf("path %q: expected %t, got %t", tc.path, tc.want, got)
			}
		})
	}
}

func TestLoggingMiddlewareWritesCompletionLog(t *testing.T) {
	logs := observeLogs(t, zap.InfoLevel)

	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	r := httptest.NewRequest(http.MethodGet, "/divide?num1=1&num2=0", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-123"))
	_ = testutil.ExecuteRequest(r, h)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Message != "request completed" {
		t.Fatalf("expected message %q, got %q", "request completed", entry.Message)
	}

	fields := entry.ContextMap()
	if fields["method"] != http.MethodGet {
		t.Fatalf("expected method %q, got %#v", http.MethodGet, fields["method"])
	}
	if fields["path"] != "/divide" {
		t.Fatalf("expected path %q, got %#v", "/divide", fields["path"])
	}
	if fields["status"] != int64(http.StatusBadRequest) {
		t.Fatalf("expected status %d, got %#v", http.StatusBadRequest, fields["status"])
	}
	if fields["request_id"] != "req-123" {
		t.Fatalf("expected request_id %q, got %#v", "req-123", fields["request_id"])
	}
}

func TestRecoveryMiddlewareReturnsGenericInternalError(t *testing.T) {
	logs := observeLogs(t, zap.ErrorLevel)

	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret internal detail")
	}))

	r := httptest.NewRequest(http.MethodGet, "/add", nil)
	w := testutil.ExecuteRequest(r, h)

	testutil.CheckResponseCode(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	testutil.DecodeJSONBody(t, w.Body, &body)

	if body["code"] != "INTERNAL_ERROR" {
		t.Fatalf("expected code INTERNAL_ERROR, got %#v", body["code"])
	}
	for k, v := range body {
		if s, ok := v.(string); ok && s == "secret internal detail" {
			t.Fatalf("panic detail leaked in field %q", k)
		}
	}

	entries := logs.FilterMessage("panic recovered").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 panic log entry, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["stack"]; !ok {
		t.Fatal("expected stack field on panic log entry")
	}
}

func TestRateLimitMiddlewareRejectsAfterBurst(t *testing.T) {
	observeLogs(t, zap.WarnLevel)

	h := RateLimitMiddleware(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/add", nil), h)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)
		if w.Header().Get("X-RateLimit-Limit") != "1" {
			t.Fatalf("expected X-RateLimit-Limit 1, got %q", w.Header().Get("X-RateLimit-Limit"))
		}
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/add", nil), h)
	testutil.CheckResponseCode(t, http.StatusTooManyRequests, w.Code)
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on rejected request")
	}
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	h := RateLimitMiddleware(0, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 50; i++ {
		w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/add", nil), h)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	}
}
