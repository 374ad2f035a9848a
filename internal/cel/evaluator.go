// Package cel evaluates CEL expressions: boolean row filters applied while the
// menu is assembled, and ad-hoc queries over the merged configuration.
package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// Evaluator compiles and evaluates CEL expressions against a document bound
// to the variable "_".
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a new CEL evaluator with standard library functions.
func NewEvaluator() (*Evaluator, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// newStandardCELEnv creates a standard CEL environment with common extensions.
// Additional options extend the environment, e.g. with typed variables.
func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 5+len(opts))
	allOpts = append(allOpts,
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Evaluate evaluates expr with data bound to "_".
// Example: "_.fetch.concurrency" or "_.menu.keys().size()"
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	result, _, err := prg.Eval(map[string]any{"_": data})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// ToGo converts CEL values to Go native types recursively.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	}

	inner := val.Value()
	switch v := inner.(type) {
	case []ref.Val:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = convertValue(elem)
		}
		return out
	case map[string]any:
		return convertMap(v)
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[fmt.Sprintf("%v", k.Value())] = ToGo(elem)
		}
		return out
	}
	return inner
}

func convertValue(v any) any {
	switch x := v.(type) {
	case ref.Val:
		return ToGo(x)
	case map[string]any:
		return convertMap(x)
	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = convertValue(elem)
		}
		return out
	}
	return v
}

func convertMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = convertValue(v)
	}
	return out
}
