// Package session ties the pipeline together behind one host-facing
// value: lex, parse, check, evaluate, with persistent state between runs.
//
// A Session owns the root environment and the output buffer. Both live
// until Reset, so variables and functions declared in one Execute call
// remain visible to the next. Sessions are single-threaded by contract;
// callers running concurrent executions must add their own
// synchronization.
package session

import (
	"github.com/sagelang/sage/pkg/sage/checker"
	serrors "github.com/sagelang/sage/pkg/sage/errors"
	"github.com/sagelang/sage/pkg/sage/evaluator"
	"github.com/sagelang/sage/pkg/sage/lexer"
	"github.com/sagelang/sage/pkg/sage/parser"
)

// Result is the outcome of one Execute call. Exactly one of three shapes
// comes back: diagnostics only (the program never ran), a runtime fault
// with any output buffered before it, or a final value with full output.
type Result struct {
	Success     bool
	Output      []string
	Diagnostics []*serrors.SageError
	Value       evaluator.Object
	Err         *serrors.SageError
}

// VariableInfo describes one top-level binding for introspection.
type VariableInfo struct {
	Name    string
	Type    string
	Value   string
	Mutable bool
}

// FunctionInfo describes one user-defined function.
type FunctionInfo struct {
	Name      string
	Signature string
}

// outputBuffer collects print output for the current run.
type outputBuffer struct {
	lines []string
}

func (b *outputBuffer) LogLine(line string) { b.lines = append(b.lines, line) }

// Session is the interpreter's host-owned state.
type Session struct {
	// Filename, when set, stamps diagnostics and faults for display.
	Filename string

	env    *evaluator.Environment
	output *outputBuffer
}

// New creates a session with a fresh root environment.
func New() *Session {
	s := &Session{output: &outputBuffer{}}
	s.env = evaluator.NewEnvironment()
	s.env.Logger = s.output
	return s
}

// Execute runs one program against the session state.
//
// Parse diagnostics short-circuit the run; the checker sees only
// programs that parsed cleanly, and evaluation starts only when the
// combined diagnostic list is empty. A runtime fault aborts the rest of
// the program but the output buffered before it is preserved.
func (s *Session) Execute(source string) *Result {
	result := &Result{}
	s.output.lines = nil

	l := lexer.NewWithFilename(source, s.Filename)
	p := parser.New(l)
	program := p.ParseProgram()

	diagnostics := p.Diagnostics()
	if len(diagnostics) == 0 {
		diagnostics = checker.New().Check(program)
	}
	if len(diagnostics) > 0 {
		if s.Filename != "" {
			for i, d := range diagnostics {
				diagnostics[i] = d.WithFile(s.Filename)
			}
		}
		result.Diagnostics = diagnostics
		return result
	}

	evaluated := evaluator.Eval(program, s.env)
	result.Output = append([]string(nil), s.output.lines...)

	if errObj, ok := evaluated.(*evaluator.Error); ok {
		result.Err = errObj.ToSageError()
		if s.Filename != "" {
			result.Err = result.Err.WithFile(s.Filename)
		}
		return result
	}

	result.Value = evaluated
	result.Success = true
	return result
}

// Variables lists the top-level bindings: name, declared type, rendered
// current value, and mutability. Sorted by name.
func (s *Session) Variables() []VariableInfo {
	var out []VariableInfo
	for _, name := range s.env.LocalNames() {
		val, ok := s.env.Get(name)
		if !ok {
			continue
		}
		typeName, _ := s.env.DeclaredType(name)
		out = append(out, VariableInfo{
			Name:    name,
			Type:    typeName,
			Value:   val.Inspect(),
			Mutable: !s.env.IsConst(name),
		})
	}
	return out
}

// Functions lists the user-defined functions with rendered signatures.
// Sorted by name.
func (s *Session) Functions() []FunctionInfo {
	var out []FunctionInfo
	for _, name := range s.env.LocalFunctionNames() {
		fn, ok := s.env.GetFunction(name)
		if !ok {
			continue
		}
		out = append(out, FunctionInfo{Name: name, Signature: fn.Signature()})
	}
	return out
}

// Identifiers returns every name callable or readable in the session,
// including builtins. The REPL uses it for completion.
func (s *Session) Identifiers() []string {
	return s.env.AllIdentifiers()
}

// Reset discards all user bindings, functions, and buffered output,
// returning the session to the builtin-only initial state.
func (s *Session) Reset() {
	s.env = evaluator.NewEnvironment()
	s.env.Logger = s.output
	s.output.lines = nil
}
