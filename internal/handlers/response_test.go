package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteErrorWritesStandardizedJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "something went wrong")

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}

	if got := body["error"]; got != "something went wrong" {
		t.Fatalf("expected error %q, got %#v", "something went wrong", got)
	}

	if got := body["code"]; got != ErrCodeInvalidRequest {
		t.Fatalf("expected code %q, got %#v", ErrCodeInvalidRequest, got)
	}

	if _, ok := body["request_id"]; ok {
		t.Fatal("did not expect request_id field in JSON body")
	}

	if _, ok := body["received"]; ok {
		t.Fatal("did not expect empty received field in JSON body")
	}
}

func TestWriteErrorResponseEchoesMissingInputsAsNull(t *testing.T) {
	w := httptest.NewRecorder()
	num1 := "5"

	WriteErrorResponse(w, http.StatusBadRequest, ErrorResponse{
		Error:    "Both num1 and num2 are required",
		Code:     "MISSING_PARAMETER",
		Received: map[string]*string{"num1": &num1, "num2": nil},
	})

	var body struct {
		Received map[string]*string `json:"received"`
	}
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}

	if got := body.Received["num1"]; got == nil || *got != "5" {
		t.Fatalf("expected received num1 %q, got %v", "5", got)
	}

	v, ok := body.Received["num2"]
	if !ok || v != nil {
		t.Fatalf("expected received num2 to be null, got %v (present=%t)", v, ok)
	}
}
