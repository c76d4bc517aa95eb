package calculator

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// rawParam returns the raw value for p from q, trying the primary name and
// then each alias. ok is false when no key is present at all.
func rawParam(q url.Values, p Param) (string, bool) {
	for _, key := range append([]string{p.Name}, p.Aliases...) {
		if vs, ok := q[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

// parseNumber accepts any finite decimal strconv understands. Surrounding
// whitespace is ignored.
func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", raw)
	}
	return v, nil
}

// ParseRequest extracts and validates the operands of op from a query
// string. On failure it returns an *OperationError of kind
// ErrMissingParameter or ErrNotANumber; missing keys take precedence.
func ParseRequest(op Operation, q url.Values) (OperationRequest, error) {
	received := make(map[string]*string, op.Arity())

	var missing []string
	for _, p := range op.Params {
		raw, ok := rawParam(q, p)
		if !ok {
			received[p.Name] = nil
			missing = append(missing, p.Name)
			continue
		}
		received[p.Name] = &raw
	}

	if len(missing) > 0 {
		return OperationRequest{}, &OperationError{
			Op:       op.Name,
			Kind:     ErrMissingParameter,
			Params:   missing,
			Received: received,
		}
	}

	args := make([]float64, 0, op.Arity())
	var (
		invalid []string
		errs    []error
	)
	for _, p := range op.Params {
		v, err := parseNumber(*received[p.Name])
		if err != nil {
			invalid = append(invalid, p.Name)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		args = append(args, v)
	}

	if len(invalid) > 0 {
		return OperationRequest{}, &OperationError{
			Op:       op.Name,
			Kind:     ErrNotANumber,
			Params:   invalid,
			Received: received,
			Err:      errors.Join(errs...),
		}
	}

	return OperationRequest{
		Operation: op,
		Operands:  args,
		Received:  received,
	}, nil
}
