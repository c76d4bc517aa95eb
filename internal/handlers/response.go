package handlers

import (
	"encoding/json"
	"net/http"
)

// Error codes shared by every endpoint. Domain-specific codes live with
// their domain package.
const (
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`

	// Received echoes the raw inputs. A nil value marks a missing key.
	Received map[string]*string `json:"received,omitempty"`
	Example  string             `json:"example,omitempty"`

	AvailableEndpoints []string `json:"availableEndpoints,omitempty"`
	Documentation      string   `json:"documentation,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardised JSON error response.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteErrorResponse(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

func WriteErrorResponse(w http.ResponseWriter, status int, resp ErrorResponse) {
	WriteJSON(w, status, resp)
}
