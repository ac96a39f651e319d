package tests

import (
	"testing"

	"github.com/sagelang/sage/pkg/sage/session"
)

func evalBuiltin(t *testing.T, source string) string {
	t.Helper()
	result := session.New().Execute(source)
	if !result.Success {
		t.Fatalf("program failed\ndiagnostics: %v\nfault: %v\nsource: %s",
			result.Diagnostics, result.Err, source)
	}
	return result.Value.Inspect()
}

// TestBuiltinResultsFlowThroughAnnotations assigns builtin results to
// typed declarations, so the checker's view of each builtin is part of
// the test.
func TestBuiltinResultsFlowThroughAnnotations(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "len into int",
			input:    `let n: int = len("hello"); n`,
			expected: "5",
		},
		{
			name:     "len of array into int",
			input:    `let n: int = len([1, 2, 3]); n`,
			expected: "3",
		},
		{
			name:     "type into string",
			input:    `let t: string = type(1.5); t`,
			expected: "float",
		},
		{
			name:     "toString into string",
			input:    `let s: string = toString([1, 2, 3]); s`,
			expected: "[1, 2, 3]",
		},
		{
			name:     "parseInt into nullable int",
			input:    `let m: int? = parseInt("42"); m`,
			expected: "42",
		},
		{
			name:     "parseInt failure is null",
			input:    `let m: int? = parseInt("nope"); m`,
			expected: "null",
		},
		{
			name:     "parseFloat into nullable float",
			input:    `let f: float? = parseFloat("2.5"); f`,
			expected: "2.5",
		},
		{
			name:     "parseFloat truncating via parseInt",
			input:    `let m: int? = parseInt(3.9); m`,
			expected: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalBuiltin(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

// TestTypeReportsRuntimeTags checks type() against every value shape.
func TestTypeReportsRuntimeTags(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`type(1)`, "int"},
		{`type(1.0)`, "float"},
		{`type("s")`, "string"},
		{`type('c')`, "char"},
		{`type(true)`, "bool"},
		{`type(null)`, "null"},
		{`type([1])`, "array"},
		{`type({a: 1})`, "object"},
		{`func f() -> void {} type(f)`, "function"},
		{`type(len)`, "builtin"},
	}

	for _, tt := range tests {
		if got := evalBuiltin(t, tt.input); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

// TestPrintAndPrintlnAgree verifies both names write a single joined line.
func TestPrintAndPrintlnAgree(t *testing.T) {
	source := `
print("a", 1, true);
println("a", 1, true);
`
	result := session.New().Execute(source)
	if !result.Success {
		t.Fatalf("program failed: %v %v", result.Diagnostics, result.Err)
	}
	if len(result.Output) != 2 {
		t.Fatalf("expected 2 lines, got %v", result.Output)
	}
	if result.Output[0] != "a 1 true" || result.Output[1] != "a 1 true" {
		t.Errorf("expected identical joined lines, got %v", result.Output)
	}
}

// TestBuiltinShadowedByVariable lets a user binding win over a builtin
// name at the call site.
func TestBuiltinShadowedByVariable(t *testing.T) {
	result := session.New().Execute(`let len: int = 3; len`)
	if !result.Success {
		t.Fatalf("program failed: %v %v", result.Diagnostics, result.Err)
	}
	if result.Value.Inspect() != "3" {
		t.Errorf("expected shadowing binding, got %s", result.Value.Inspect())
	}
}
