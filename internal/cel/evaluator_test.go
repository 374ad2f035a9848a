package cel

import (
	"reflect"
	"testing"

	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

func sampleConfig() map[string]any {
	return map[string]any{
		"fetch": map[string]any{"concurrency": 8, "timeout": "30s"},
		"menu": map[string]any{
			"collection_key": "StandardCollection",
			"tiles_per_row":  11,
		},
		"palette": []any{"#071b0f", "#177e7f"},
	}
}

func TestEvaluate_ConfigQueries(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}

	tests := []struct {
		name     string
		expr     string
		expected any
	}{
		{"string field", "_.menu.collection_key", "StandardCollection"},
		{"number field", "_.fetch.concurrency", int64(8)},
		{"comparison", "_.menu.tiles_per_row > 10", true},
		{"list index", "_.palette[1]", "#177e7f"},
		{"string extension", "_.fetch.timeout.upperAscii()", "30S"},
		{"list size", "size(_.palette)", int64(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eval.Evaluate(tt.expr, sampleConfig())
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %v (%T), got %v (%T)", tt.expected, tt.expected, result, result)
			}
		})
	}
}

func TestEvaluate_Collections(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}

	result, err := eval.Evaluate(`_.palette.filter(c, c.startsWith("#17"))`, sampleConfig())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !reflect.DeepEqual(result, []any{"#177e7f"}) {
		t.Errorf("unexpected filter result %#v", result)
	}

	result, err = eval.Evaluate(`_.fetch`, sampleConfig())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", result)
	}
	if m["timeout"] != "30s" {
		t.Errorf("expected timeout 30s, got %v", m["timeout"])
	}

	result, err = eval.Evaluate(`{"a": 1, "b": [true]}`, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	want := map[string]any{"a": int64(1), "b": []any{true}}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("expected %#v, got %#v", want, result)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	for _, expr := range []string{"_.fetch.", "_.missing.field", "1 / 0"} {
		if _, err := eval.Evaluate(expr, sampleConfig()); err == nil {
			t.Errorf("expected error for %q", expr)
		}
	}
}

func TestToGo_PrimitiveTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    ref.Val
		expected any
	}{
		{"bool true", types.Bool(true), true},
		{"bool false", types.Bool(false), false},
		{"int", types.Int(42), int64(42)},
		{"uint", types.Uint(100), uint64(100)},
		{"double", types.Double(3.14), float64(3.14)},
		{"string", types.String("hello"), "hello"},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToGo(tt.input)
			if result != tt.expected {
				t.Errorf("expected %v (%T), got %v (%T)", tt.expected, tt.expected, result, result)
			}
		})
	}
}

func TestToGo_BytesType(t *testing.T) {
	result := ToGo(types.Bytes([]byte("data")))
	b, ok := result.([]byte)
	if !ok {
		t.Fatalf("expected []byte, got %T", result)
	}
	if string(b) != "data" {
		t.Errorf("expected %q, got %q", "data", b)
	}
}
