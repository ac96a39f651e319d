package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagelang/sage/pkg/sage/evaluator"
	"github.com/sagelang/sage/pkg/sage/session"
)

// TestMain ensures the binary is built before running tests
func TestMain(m *testing.M) {
	buildCmd := exec.Command("go", "build", "-o", "sage", ".")
	if err := buildCmd.Run(); err != nil {
		os.Exit(1)
	}

	code := m.Run()

	os.Remove("sage")

	os.Exit(code)
}

// TestEvaluateInline tests that -e echoes the final value
func TestEvaluateInline(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{
			name:     "number",
			code:     "1 + 2",
			expected: "3\n",
		},
		{
			name:     "string",
			code:     `"hello"`,
			expected: "hello\n",
		},
		{
			name:     "array",
			code:     "[1, 2, 3]",
			expected: "[1, 2, 3]\n",
		},
		{
			name:     "null result not echoed",
			code:     "null",
			expected: "",
		},
		{
			name:     "boolean",
			code:     "1 < 2",
			expected: "true\n",
		},
		{
			name:     "declarations persist within a run",
			code:     "let x: int = 5; x = x + 1; x",
			expected: "6\n",
		},
		{
			name:     "print output before value echo",
			code:     `print("out"); 7`,
			expected: "out\n7\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command("./sage", "--no-color", "-e", tt.code)
			output, err := cmd.CombinedOutput()
			if err != nil {
				t.Fatalf("Command failed: %v\nOutput: %s", err, output)
			}
			if string(output) != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, string(output))
			}
		})
	}
}

// TestInlineDiagnostics tests that type errors fail with a report
func TestInlineDiagnostics(t *testing.T) {
	cmd := exec.Command("./sage", "--no-color", "-e", "let x: int = 3.5;")
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("Expected non-zero exit\nOutput: %s", output)
	}
	if !strings.Contains(string(output), "Type error") {
		t.Errorf("Expected a type error report, got: %q", string(output))
	}
	if !strings.Contains(string(output), "cannot assign float to int") {
		t.Errorf("Expected diagnostic message, got: %q", string(output))
	}
}

// TestInlineRuntimeFault tests that runtime faults fail with a report
func TestInlineRuntimeFault(t *testing.T) {
	cmd := exec.Command("./sage", "--no-color", "-e", `print("before"); len(42);`)
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("Expected non-zero exit\nOutput: %s", output)
	}
	outputStr := string(output)
	if !strings.Contains(outputStr, "before") {
		t.Errorf("Expected output before the fault to be kept, got: %q", outputStr)
	}
	if !strings.Contains(outputStr, "Error") || !strings.Contains(outputStr, "len") {
		t.Errorf("Expected a runtime fault report, got: %q", outputStr)
	}
}

// TestCheckMode tests --check on good and bad files
func TestCheckMode(t *testing.T) {
	dir := t.TempDir()

	goodFile := filepath.Join(dir, "good.sage")
	if err := os.WriteFile(goodFile, []byte("let x: int = 5;\n"), 0644); err != nil {
		t.Fatal(err)
	}
	badFile := filepath.Join(dir, "bad.sage")
	if err := os.WriteFile(badFile, []byte("let x: int = 3.5;\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command("./sage", "--no-color", "--check", goodFile)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Errorf("Expected clean check to pass: %v\nOutput: %s", err, output)
	}

	cmd = exec.Command("./sage", "--no-color", "--check", badFile)
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("Expected check to fail\nOutput: %s", output)
	}
	if !strings.Contains(string(output), "bad.sage") {
		t.Errorf("Expected filename in report, got: %q", string(output))
	}
}

// TestScriptFile tests running a script from disk
func TestScriptFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.sage")
	source := `func greet(name: string = "World") -> string {
    return "Hi " + name;
}
print(greet());
print(greet("Ada"));
`
	if err := os.WriteFile(script, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command("./sage", "--no-color", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, output)
	}
	expected := "Hi World\nHi Ada\n"
	if string(output) != expected {
		t.Errorf("Expected %q, got %q", expected, string(output))
	}
}

// TestVarsFlag tests the --vars dump after a run
func TestVarsFlag(t *testing.T) {
	cmd := exec.Command("./sage", "--no-color", "--vars", "-e", "const pi: float = 3.14; let n: int = 2; null")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, output)
	}
	outputStr := string(output)
	if !strings.Contains(outputStr, "pi: float = 3.14 (const)") {
		t.Errorf("Expected const pi in dump, got: %q", outputStr)
	}
	if !strings.Contains(outputStr, "n: int = 2") {
		t.Errorf("Expected n in dump, got: %q", outputStr)
	}
}

// TestFloatPrecisionFromConfig tests that output.float_precision shapes the echo
func TestFloatPrecisionFromConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "sage.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  float_precision: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command("./sage", "--no-color", "--config", configPath, "-e", "1.5")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, output)
	}
	if string(output) != "1.50\n" {
		t.Errorf("Expected %q, got %q", "1.50\n", string(output))
	}
}

// TestVersionFlag tests -V output
func TestVersionFlag(t *testing.T) {
	cmd := exec.Command("./sage", "-V")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, output)
	}
	if !strings.HasPrefix(string(output), "sage version ") {
		t.Errorf("Unexpected version output: %q", string(output))
	}
}

func mustEval(t *testing.T, source string) evaluator.Object {
	t.Helper()
	result := session.New().Execute(source)
	if !result.Success {
		t.Fatalf("eval failed: %v %v", result.Diagnostics, result.Err)
	}
	return result.Value
}

func TestRenderValueHonorsPrecision(t *testing.T) {
	// Unit-level check of the precision formatting used by -e
	if got := renderValue(mustEval(t, "3.14159"), 2); got != "3.14" {
		t.Errorf("Expected 3.14, got %q", got)
	}
	if got := renderValue(mustEval(t, "3.14159"), -1); got != "3.14159" {
		t.Errorf("Expected 3.14159, got %q", got)
	}
	if got := renderValue(mustEval(t, "42"), 2); got != "42" {
		t.Errorf("Integers are not reformatted, got %q", got)
	}
}
