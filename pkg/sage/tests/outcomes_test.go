package tests

import (
	"strings"
	"testing"

	"github.com/sagelang/sage/pkg/sage/session"
)

// classify reduces a result to its outcome: "ok" when the program ran to
// completion, "diagnostics" when it was rejected before evaluation, and
// "fault" when evaluation started and then failed.
func classify(result *session.Result) string {
	switch {
	case len(result.Diagnostics) > 0:
		return "diagnostics"
	case result.Err != nil:
		return "fault"
	default:
		return "ok"
	}
}

// TestOutcomeClasses pins which failures are caught before evaluation
// and which surface while the program runs.
func TestOutcomeClasses(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		outcome string
		detail  string
	}{
		// Rejected before evaluation
		{
			name:    "float into int declaration",
			input:   "let x: int = 3.5;",
			outcome: "diagnostics",
			detail:  "TYPE-0001",
		},
		{
			name:    "missing type annotation",
			input:   "let x = 5;",
			outcome: "diagnostics",
			detail:  "PARSE-0007",
		},
		{
			name:    "unknown type name",
			input:   "let x: numbr = 5;",
			outcome: "diagnostics",
			detail:  "TYPE-0003",
		},
		{
			name:    "operator misuse on known types",
			input:   `let a: bool = true; let b: int = 1; let c: int = 0; c = a - b;`,
			outcome: "diagnostics",
			detail:  "TYPE-0002",
		},
		{
			name:    "surplus argument to declared function",
			input:   "func f() -> int { return 1; } f(1)",
			outcome: "diagnostics",
			detail:  "ARITY-0001",
		},
		{
			name:    "return type mismatch",
			input:   `func f() -> int { return "no"; }`,
			outcome: "diagnostics",
			detail:  "TYPE-0004",
		},
		{
			name:    "redeclaration in same scope",
			input:   "let x: int = 1; let x: int = 2;",
			outcome: "diagnostics",
			detail:  "TYPE-0007",
		},

		// Surface while running
		{
			name:    "undefined identifier",
			input:   "missing",
			outcome: "fault",
			detail:  "UNDEF-0001",
		},
		{
			name:    "const reassignment",
			input:   "const pi: float = 3.14; pi = 1.0;",
			outcome: "fault",
			detail:  "RUN-0002",
		},
		{
			name:    "calling a non-function",
			input:   "let n: int = 5; n()",
			outcome: "fault",
			detail:  "RUN-0004",
		},
		{
			name:    "builtin arity misuse",
			input:   "len(1, 2)",
			outcome: "fault",
			detail:  "ARITY-0001",
		},
		{
			name:    "index out of bounds",
			input:   "let xs: Array<int> = [1, 2]; xs[5]",
			outcome: "fault",
			detail:  "RUN-0001",
		},
		{
			name:    "integer division by zero",
			input:   "5 / 0",
			outcome: "fault",
			detail:  "RUN-0006",
		},
		{
			name:    "member access on null",
			input:   "let n: int? = null; n.x",
			outcome: "fault",
			detail:  "RUN-0003",
		},

		// Run to completion
		{
			name:    "widening int into float",
			input:   "let f: float = 3;",
			outcome: "ok",
		},
		{
			name:    "failed parse returns null",
			input:   `parseInt("abc")`,
			outcome: "ok",
		},
		{
			name:    "float division by zero",
			input:   "5.0 / 0",
			outcome: "ok",
		},
		{
			name:    "missing member resolves to null",
			input:   `let o: any = {a: 1}; o.b`,
			outcome: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := session.New().Execute(tt.input)
			if got := classify(result); got != tt.outcome {
				t.Fatalf("expected outcome %q, got %q (diagnostics=%v fault=%v)",
					tt.outcome, got, result.Diagnostics, result.Err)
			}
			switch tt.outcome {
			case "diagnostics":
				if tt.detail != "" && result.Diagnostics[0].Code != tt.detail {
					t.Errorf("expected code %s, got %s (%s)",
						tt.detail, result.Diagnostics[0].Code, result.Diagnostics[0].Message)
				}
			case "fault":
				if tt.detail != "" && result.Err.Code != tt.detail {
					t.Errorf("expected code %s, got %s (%s)",
						tt.detail, result.Err.Code, result.Err.Message)
				}
			}
		})
	}
}

// TestDiagnosticsBlockAllEffects verifies that a rejected program
// produces no output at all.
func TestDiagnosticsBlockAllEffects(t *testing.T) {
	source := `
print("first");
let x: int = 3.5;
print("second");
`
	result := session.New().Execute(source)
	if classify(result) != "diagnostics" {
		t.Fatalf("expected diagnostics, got %v %v", result.Diagnostics, result.Err)
	}
	if len(result.Output) != 0 {
		t.Errorf("expected no output, got %v", result.Output)
	}
}

// TestFaultKeepsEarlierEffects verifies that output produced before a
// fault survives it.
func TestFaultKeepsEarlierEffects(t *testing.T) {
	source := `
print("step 1");
print("step 2");
len(42);
print("never");
`
	result := session.New().Execute(source)
	if classify(result) != "fault" {
		t.Fatalf("expected fault, got %v", result.Diagnostics)
	}
	if len(result.Output) != 2 || result.Output[0] != "step 1" || result.Output[1] != "step 2" {
		t.Errorf("expected the first two lines, got %v", result.Output)
	}
}

// TestDiagnosticsAccumulate verifies the checker reports every problem
// in one pass rather than stopping at the first.
func TestDiagnosticsAccumulate(t *testing.T) {
	source := `
let a: int = 1.5;
let b: string = 2;
let c: bool = "x";
`
	result := session.New().Execute(source)
	if len(result.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d: %v", len(result.Diagnostics), result.Diagnostics)
	}
	for _, d := range result.Diagnostics {
		if d.Code != "TYPE-0001" {
			t.Errorf("expected TYPE-0001, got %s", d.Code)
		}
	}
}

// TestFaultMessages pins the wording of common runtime reports.
func TestFaultMessages(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"const pi: float = 3.14; pi = 1.0;", "cannot reassign constant 'pi'"},
		{"let xs: Array<int> = [1, 2, 3]; xs[-1]", "index -1 out of bounds (length 3)"},
		{"let xs: Array<int> = [1, 2, 3]; xs[3]", "index 3 out of bounds (length 3)"},
		{"5 / 0", "division by zero"},
		{"conut", "identifier not found: conut"},
	}

	for _, tt := range tests {
		result := session.New().Execute(tt.input)
		if result.Err == nil {
			t.Errorf("%q: expected a fault", tt.input)
			continue
		}
		if !strings.Contains(result.Err.Message, tt.message) {
			t.Errorf("%q: expected message containing %q, got %q",
				tt.input, tt.message, result.Err.Message)
		}
	}
}

// TestUndefinedIdentifierSuggestion checks the did-you-mean hint.
func TestUndefinedIdentifierSuggestion(t *testing.T) {
	result := session.New().Execute("let count: int = 1; conut")
	if result.Err == nil {
		t.Fatal("expected a fault")
	}
	found := false
	for _, hint := range result.Err.Hints {
		if strings.Contains(hint, "count") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a hint naming 'count', got %v", result.Err.Hints)
	}
}
