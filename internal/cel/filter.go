package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Row describes one menu row to a filter expression.
type Row struct {
	Title string
	Slug  string
	Index int
	Size  int
	// Kind is "curated" for rows carrying their items inline and "ref" for
	// rows resolved from a referenced set.
	Kind string
}

func (r Row) activation() map[string]any {
	vars := map[string]any{
		"title": r.Title,
		"slug":  r.Slug,
		"index": int64(r.Index),
		"size":  int64(r.Size),
		"kind":  r.Kind,
	}
	doc := make(map[string]any, len(vars))
	for k, v := range vars {
		doc[k] = v
	}
	vars["_"] = doc
	return vars
}

// RowFilter is a compiled boolean expression deciding which rows are shown.
// A nil RowFilter accepts every row.
//
// Expressions see the variables title, slug, index, size and kind, and the
// same fields as a map bound to "_", e.g. `size > 0 && !title.startsWith("Ad")`.
type RowFilter struct {
	expr string
	prg  cel.Program
}

// NewRowFilter compiles expr. An empty expression yields a nil filter.
func NewRowFilter(expr string) (*RowFilter, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := newStandardCELEnv(
		cel.Variable("title", cel.StringType),
		cel.Variable("slug", cel.StringType),
		cel.Variable("index", cel.IntType),
		cel.Variable("size", cel.IntType),
		cel.Variable("kind", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile row filter %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("row filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &RowFilter{expr: expr, prg: prg}, nil
}

// Expression returns the source expression.
func (f *RowFilter) Expression() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match reports whether row passes the filter.
func (f *RowFilter) Match(row Row) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(row.activation())
	if err != nil {
		return false, fmt.Errorf("eval row filter: %w", err)
	}
	keep, ok := ToGo(out).(bool)
	if !ok {
		return false, fmt.Errorf("row filter %q returned %v, want bool", f.expr, out.Type())
	}
	return keep, nil
}
