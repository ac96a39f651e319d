package errors

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSageError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *SageError
		expected string
	}{
		{
			name: "message only",
			err: &SageError{
				Message: "something went wrong",
			},
			expected: "something went wrong",
		},
		{
			name: "with line and column",
			err: &SageError{
				Message: "unexpected ')'",
				Line:    5,
				Column:  10,
			},
			expected: "line 5, column 10: unexpected ')'",
		},
		{
			name: "with file",
			err: &SageError{
				Message: "expected ';'",
				File:    "test.sage",
				Line:    3,
				Column:  1,
			},
			expected: "test.sage: line 3, column 1: expected ';'",
		},
		{
			name: "with hints",
			err: &SageError{
				Message: "identifier not found: foo",
				Line:    1,
				Column:  1,
				Hints:   []string{"Did you mean `for`?"},
			},
			expected: "line 1, column 1: identifier not found: foo\n  Did you mean `for`?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.String()
			if got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSageError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *SageError
		contains []string
	}{
		{
			name: "syntax error",
			err: &SageError{
				Class:   ClassParse,
				Message: "unexpected '}'",
				Line:    5,
				Column:  10,
			},
			contains: []string{"Syntax error", "line 5, column 10", "unexpected '}'"},
		},
		{
			name: "type error",
			err: &SageError{
				Class:   ClassType,
				Message: "cannot assign float to int",
				Line:    1,
				Column:  1,
			},
			contains: []string{"Type error", "line 1, column 1", "cannot assign float to int"},
		},
		{
			name: "runtime error with file",
			err: &SageError{
				Class:   ClassIndex,
				Message: "index 3 out of bounds (length 3)",
				File:    "scripts/demo.sage",
				Line:    10,
				Column:  5,
			},
			contains: []string{"Runtime error", "in: scripts/demo.sage", "at: line 10, column 5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, should contain %q", got, want)
				}
			}
		})
	}
}

func TestSageError_ToJSON(t *testing.T) {
	err := &SageError{
		Class:    ClassType,
		Code:     "TYPE-0001",
		Severity: SeverityError,
		Message:  "cannot assign float to int",
		Line:     5,
		Column:   10,
		Data: map[string]any{
			"Want": "int",
			"Got":  "float",
		},
	}

	jsonBytes, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("ToJSON() error = %v", jsonErr)
	}

	var parsed map[string]any
	if err := json.Unmarshal(jsonBytes, &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if parsed["class"] != "type" {
		t.Errorf("class = %v, want %v", parsed["class"], "type")
	}
	if parsed["code"] != "TYPE-0001" {
		t.Errorf("code = %v, want %v", parsed["code"], "TYPE-0001")
	}
	if parsed["severity"] != "error" {
		t.Errorf("severity = %v, want %v", parsed["severity"], "error")
	}
	if parsed["line"].(float64) != 5 {
		t.Errorf("line = %v, want %v", parsed["line"], 5)
	}
}

func TestNew_WithCatalog(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		data         map[string]any
		wantClass    ErrorClass
		wantContains string
	}{
		{
			name: "type error",
			code: "TYPE-0001",
			data: map[string]any{
				"Got":  "float",
				"Want": "int",
			},
			wantClass:    ClassType,
			wantContains: "cannot assign float to int",
		},
		{
			name: "arity error",
			code: "ARITY-0001",
			data: map[string]any{
				"Function": "len",
				"Got":      "2",
				"Want":     "1",
			},
			wantClass:    ClassArity,
			wantContains: "`len` expects 1 argument(s), got 2",
		},
		{
			name: "undefined identifier",
			code: "UNDEF-0001",
			data: map[string]any{
				"Name": "foobar",
			},
			wantClass:    ClassUndefined,
			wantContains: "identifier not found: foobar",
		},
		{
			name: "const reassignment",
			code: "RUN-0002",
			data: map[string]any{
				"Name": "pi",
			},
			wantClass:    ClassConst,
			wantContains: "cannot reassign constant 'pi'",
		},
		{
			name: "unknown code",
			code: "UNKNOWN-9999",
			data: map[string]any{
				"message": "custom error message",
			},
			wantClass:    ClassState,
			wantContains: "custom error message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.data)
			if err.Class != tt.wantClass {
				t.Errorf("Class = %v, want %v", err.Class, tt.wantClass)
			}
			if err.Severity != SeverityError {
				t.Errorf("Severity = %v, want %v", err.Severity, SeverityError)
			}
			if !strings.Contains(err.Message, tt.wantContains) {
				t.Errorf("Message = %q, should contain %q", err.Message, tt.wantContains)
			}
		})
	}
}

func TestNewWithPosition(t *testing.T) {
	err := NewWithPosition("TYPE-0001", 10, 5, map[string]any{
		"Got":  "string",
		"Want": "bool",
	})

	if err.Line != 10 {
		t.Errorf("Line = %d, want 10", err.Line)
	}
	if err.Column != 5 {
		t.Errorf("Column = %d, want 5", err.Column)
	}
}

func TestNewSimple(t *testing.T) {
	err := NewSimple(ClassParse, "unexpected end of input")
	if err.Class != ClassParse {
		t.Errorf("Class = %v, want %v", err.Class, ClassParse)
	}
	if err.Message != "unexpected end of input" {
		t.Errorf("Message = %q, want %q", err.Message, "unexpected end of input")
	}
}

func TestNewSimpleWithHints(t *testing.T) {
	err := NewSimpleWithHints(ClassParse, "missing type annotation", "let x: int = 1;", "const y: string = \"a\";")
	if len(err.Hints) != 2 {
		t.Errorf("len(Hints) = %d, want 2", len(err.Hints))
	}
	if err.Hints[0] != "let x: int = 1;" {
		t.Errorf("Hints[0] = %q, want %q", err.Hints[0], "let x: int = 1;")
	}
}

func TestSageError_WithFile(t *testing.T) {
	original := &SageError{
		Message: "test error",
		Line:    5,
	}
	withFile := original.WithFile("test.sage")

	if withFile.File != "test.sage" {
		t.Errorf("File = %q, want %q", withFile.File, "test.sage")
	}
	if original.File != "" {
		t.Error("WithFile modified the original")
	}
}

func TestSageError_WithPosition(t *testing.T) {
	original := &SageError{
		Message: "test error",
	}
	withPos := original.WithPosition(10, 5)

	if withPos.Line != 10 || withPos.Column != 5 {
		t.Errorf("Position = (%d, %d), want (10, 5)", withPos.Line, withPos.Column)
	}
	if original.Line != 0 {
		t.Error("WithPosition modified the original")
	}
}

func TestSageError_IsStatic(t *testing.T) {
	staticClasses := []ErrorClass{ClassLexical, ClassParse, ClassType}
	runtimeClasses := []ErrorClass{ClassIndex, ClassConst, ClassNull, ClassCall, ClassOperator, ClassUndefined}

	for _, class := range staticClasses {
		err := &SageError{Class: class}
		if !err.IsStatic() {
			t.Errorf("IsStatic() = false for class %q", class)
		}
		if err.IsRuntime() {
			t.Errorf("IsRuntime() = true for class %q", class)
		}
	}

	for _, class := range runtimeClasses {
		err := &SageError{Class: class}
		if err.IsStatic() {
			t.Errorf("IsStatic() = true for class %q", class)
		}
		if !err.IsRuntime() {
			t.Errorf("IsRuntime() = false for class %q", class)
		}
	}
}

func TestSageError_Error(t *testing.T) {
	err := &SageError{
		Message: "test error",
		Line:    1,
		Column:  1,
	}

	// Verify it implements the error interface
	var e error = err
	if e.Error() != "line 1, column 1: test error" {
		t.Errorf("Error() = %q, want %q", e.Error(), "line 1, column 1: test error")
	}
}

// ============================================================================
// Fuzzy Matching Tests
// ============================================================================

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"abc", "abcd", 1},
		{"kitten", "sitting", 3},
		{"lenght", "length", 2},
		{"pritn", "print", 2},
	}

	for _, tt := range tests {
		got := levenshteinDistance(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindClosestMatch(t *testing.T) {
	identifiers := []string{"print", "println", "parseInt", "parseFloat", "length", "toString"}

	tests := []struct {
		input string
		want  string
	}{
		{"pritn", "print"},       // swap, distance 2
		{"prnt", "print"},        // missing letter, distance 1
		{"printt", "print"},      // extra letter, distance 1
		{"lenght", "length"},     // common misspelling, distance 2
		{"print", ""},            // exact match returns empty
		{"xyz", ""},              // no close match
		{"", ""},                 // empty input
		{"abcdefghijklmnop", ""}, // very long word with no match
	}

	for _, tt := range tests {
		got := FindClosestMatch(tt.input, identifiers)
		if got != tt.want {
			t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if got := FindClosestMatch("test", nil); got != "" {
		t.Errorf("FindClosestMatch with nil candidates = %q, want empty", got)
	}
}

func TestFindTopMatches(t *testing.T) {
	identifiers := []string{"print", "println", "sprint", "paint"}

	got := FindTopMatches("pritn", identifiers, 3)
	if len(got) == 0 {
		t.Fatalf("FindTopMatches(%q) should return matches", "pritn")
	}
	if got[0] != "print" {
		t.Errorf("FindTopMatches(%q)[0] = %q, want 'print'", "pritn", got[0])
	}

	if got := FindTopMatches("xyz", identifiers, 3); len(got) != 0 {
		t.Errorf("FindTopMatches(%q) = %v, want empty", "xyz", got)
	}
	if got := FindTopMatches("", identifiers, 3); len(got) != 0 {
		t.Errorf("FindTopMatches with empty input = %v, want empty", got)
	}
}

func TestNewUndefinedIdentifier(t *testing.T) {
	availableIdentifiers := []string{"print", "println", "counter", "total"}

	err := NewUndefinedIdentifier("pritn", availableIdentifiers)
	if err.Code != "UNDEF-0001" {
		t.Errorf("Code = %q, want UNDEF-0001", err.Code)
	}
	if !strings.Contains(err.Message, "pritn") {
		t.Errorf("Message should contain 'pritn': %s", err.Message)
	}
	if len(err.Hints) == 0 || !strings.Contains(err.Hints[0], "print") {
		t.Errorf("Should have hint suggesting 'print': %v", err.Hints)
	}

	err2 := NewUndefinedIdentifier("xyz", availableIdentifiers)
	if len(err2.Hints) != 0 {
		t.Errorf("Should have no hints for 'xyz': %v", err2.Hints)
	}
}

func TestSageKeywords(t *testing.T) {
	expected := map[string]bool{
		"let": true, "const": true, "func": true, "if": true, "else": true,
		"for": true, "while": true, "return": true, "true": true, "false": true,
		"null": true, "int": true, "float": true, "string": true, "bool": true,
		"char": true, "void": true,
	}

	for _, kw := range SageKeywords {
		if !expected[kw] {
			t.Errorf("Unexpected keyword in SageKeywords: %q", kw)
		}
		delete(expected, kw)
	}

	for kw := range expected {
		t.Errorf("Missing keyword in SageKeywords: %q", kw)
	}
}
