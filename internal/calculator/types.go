package calculator

import (
	"bytes"
	"encoding/json"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// OperationRequest is a validated request, ready to execute.
type OperationRequest struct {
	Operation Operation
	Operands  []float64
	Received  map[string]*string
}

// Execute runs the operation. Failures carry the raw inputs of r.
func (r OperationRequest) Execute(now time.Time) (OperationResult, error) {
	result, err := r.Operation.Execute(r.Operands)
	if err != nil {
		return OperationResult{}, &OperationError{
			Op:       r.Operation.Name,
			Kind:     err,
			Received: r.Received,
		}
	}

	return OperationResult{
		Operation: r.Operation.Name,
		Params:    r.Operation.ParamNames(),
		Operands:  r.Operands,
		Result:    result,
		Timestamp: now.UTC(),
	}, nil
}

// OperationResult is the success body. Operands are echoed under the
// operation's own parameter names, so it marshals to e.g.
//
//	{"operation":"power","base":2,"exponent":10,"result":1024,"timestamp":"..."}
type OperationResult struct {
	Operation string
	Params    []string
	Operands  []float64
	Result    float64
	Timestamp time.Time
}

func (r OperationResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	if err := write("operation", r.Operation); err != nil {
		return nil, err
	}
	for i, name := range r.Params {
		if err := write(name, r.Operands[i]); err != nil {
			return nil, err
		}
	}
	if err := write("result", r.Result); err != nil {
		return nil, err
	}
	if err := write("timestamp", r.Timestamp.Format(TimestampLayout)); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ChainStep describes a single step in a chained calculation. Unary
// operations ignore Value.
type ChainStep struct {
	Op    string  `json:"op"`
	Value float64 `json:"value"`
}

// ChainRequest is the JSON body for POST /chain.
type ChainRequest struct {
	Initial float64     `json:"initial"`
	Steps   []ChainStep `json:"steps"`
}

// ChainResponse is the JSON response for POST /chain.
type ChainResponse struct {
	Initial   float64       `json:"initial"`
	Steps     []ChainResult `json:"steps"`
	Result    float64       `json:"result"`
	Timestamp string        `json:"timestamp"`
}

// ChainResult records one executed step.
type ChainResult struct {
	Op     string  `json:"op"`
	Value  float64 `json:"value"`
	Result float64 `json:"result"`
}
