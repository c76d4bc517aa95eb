package calculator

import (
	"math"
	"slices"
)

// Param is a query parameter consumed by an operation. Aliases are consulted
// in order when the primary key is absent.
type Param struct {
	Name    string
	Aliases []string
	Hint    string
}

// Operation is a unary or binary arithmetic function exposed at /<Name>.
type Operation struct {
	Name        string
	Description string
	Params      []Param
	Example     []float64

	compute func(args []float64) (float64, error)
}

// Arity is the number of operands the operation takes.
func (op Operation) Arity() int {
	return len(op.Params)
}

// ParamNames returns the primary parameter names, which are also the
// response field names for the echoed operands.
func (op Operation) ParamNames() []string {
	names := make([]string, len(op.Params))
	for i, p := range op.Params {
		names[i] = p.Name
	}
	return names
}

// Execute applies the operation to already validated operands. The returned
// error is one of the Err* kinds; non-finite results are rejected because
// they cannot be represented in JSON.
func (op Operation) Execute(args []float64) (float64, error) {
	result, err := op.compute(args)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, ErrNonFiniteResult
	}

	return result, nil
}

var (
	num1 = Param{Name: "num1", Hint: "number"}
	num2 = Param{Name: "num2", Hint: "number"}
)

func binary(f func(a, b float64) (float64, error)) func([]float64) (float64, error) {
	return func(args []float64) (float64, error) {
		return f(args[0], args[1])
	}
}

func total(f func(a, b float64) float64) func([]float64) (float64, error) {
	return binary(func(a, b float64) (float64, error) {
		return f(a, b), nil
	})
}

var operations = []Operation{
	{
		Name:        "add",
		Description: "Adds num1 and num2",
		Params:      []Param{num1, num2},
		Example:     []float64{5, 3},
		compute:     total(func(a, b float64) float64 { return a + b }),
	},
	{
		Name:        "subtract",
		Description: "Subtracts num2 from num1",
		Params:      []Param{num1, num2},
		Example:     []float64{10, 4},
		compute:     total(func(a, b float64) float64 { return a - b }),
	},
	{
		Name:        "multiply",
		Description: "Multiplies num1 by num2",
		Params:      []Param{num1, num2},
		Example:     []float64{7, 6},
		compute:     total(func(a, b float64) float64 { return a * b }),
	},
	{
		Name:        "divide",
		Description: "Divides num1 by num2",
		Params:      []Param{num1, {Name: "num2", Hint: "number (non-zero)"}},
		Example:     []float64{20, 5},
		compute: binary(func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a / b, nil
		}),
	},
	{
		Name:        "power",
		Description: "Raises base to exponent",
		Params: []Param{
			{Name: "base", Aliases: []string{"num1"}, Hint: "number"},
			{Name: "exponent", Aliases: []string{"num2"}, Hint: "number"},
		},
		Example: []float64{2, 10},
		compute: total(math.Pow),
	},
	{
		Name:        "sqrt",
		Description: "Principal square root of num",
		Params:      []Param{{Name: "num", Hint: "number (non-negative)"}},
		Example:     []float64{16},
		compute: func(args []float64) (float64, error) {
			if args[0] < 0 {
				return 0, ErrNegativeRadicand
			}
			return math.Sqrt(args[0]), nil
		},
	},
	{
		Name:        "modulo",
		Description: "Remainder of num1 / num2, with the sign of num1",
		Params: []Param{
			{Name: "num1", Aliases: []string{"dividend"}, Hint: "number"},
			{Name: "num2", Aliases: []string{"divisor"}, Hint: "number (non-zero)"},
		},
		Example: []float64{10, 3},
		compute: binary(func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, ErrModuloByZero
			}
			return math.Mod(a, b), nil
		}),
	},
}

// Operations returns every supported operation in display order.
func Operations() []Operation {
	return slices.Clone(operations)
}

// Lookup finds an operation by name.
func Lookup(name string) (Operation, bool) {
	i := slices.IndexFunc(operations, func(op Operation) bool { return op.Name == name })
	if i < 0 {
		return Operation{}, false
	}
	return operations[i], true
}
