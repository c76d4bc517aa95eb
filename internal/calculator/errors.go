package calculator

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Match them with errors.Is against an *OperationError.
var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrNotANumber       = errors.New("not a number")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrModuloByZero     = errors.New("modulo by zero")
	ErrNegativeRadicand = errors.New("negative radicand")
	ErrNonFiniteResult  = errors.New("non-finite result")
	ErrInternal         = errors.New("internal error")
)

type kindInfo struct {
	code   string
	status int
}

var kinds = map[error]kindInfo{
	ErrMissingParameter: {"MISSING_PARAMETER", http.StatusBadRequest},
	ErrNotANumber:       {"NOT_A_NUMBER", http.StatusBadRequest},
	ErrDivisionByZero:   {"DIVISION_BY_ZERO", http.StatusBadRequest},
	ErrModuloByZero:     {"MODULO_BY_ZERO", http.StatusBadRequest},
	ErrNegativeRadicand: {"NEGATIVE_RADICAND", http.StatusBadRequest},
	ErrNonFiniteResult:  {"NON_FINITE_RESULT", http.StatusBadRequest},
	ErrInternal:         {"INTERNAL_ERROR", http.StatusInternalServerError},
}

// OperationError is the single failure type of an operation request.
type OperationError struct {
	Op   string
	Kind error

	// Params names the offending parameters, if any.
	Params []string

	// Received holds the raw query values by parameter name; nil marks an
	// absent key.
	Received map[string]*string

	Err error
}

func (e *OperationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if len(e.Params) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Params, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *OperationError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Code is the machine-readable error code sent to clients.
func (e *OperationError) Code() string {
	if k, ok := kinds[e.Kind]; ok {
		return k.code
	}
	return kinds[ErrInternal].code
}

// Status is the HTTP status for the error.
func (e *OperationError) Status() int {
	if k, ok := kinds[e.Kind]; ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// Message is the human-readable error sent to clients. Internal errors get
// a generic message so that no detail leaks.
func (e *OperationError) Message() string {
	switch e.Kind {
	case ErrMissingParameter:
		return requiredMessage(e.Params)
	case ErrNotANumber:
		return "Parameters must be valid numbers"
	case ErrDivisionByZero:
		return "Division by zero is not allowed"
	case ErrModuloByZero:
		return "Modulo by zero is not allowed"
	case ErrNegativeRadicand:
		return "Cannot calculate square root of a negative number"
	case ErrNonFiniteResult:
		return "Result is not a finite number"
	default:
		return e.Op + " operation failed"
	}
}

func requiredMessage(params []string) string {
	switch len(params) {
	case 0:
		return "Required parameters are missing"
	case 1:
		return "Parameter " + params[0] + " is required"
	default:
		return "Both " + strings.Join(params, " and ") + " are required"
	}
}
