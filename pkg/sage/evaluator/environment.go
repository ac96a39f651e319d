package evaluator

import (
	"fmt"
	"sort"
)

// Logger receives one line per print/println call.
type Logger interface {
	LogLine(line string)
}

// stdoutLogger writes lines straight to standard output. The session
// replaces it with a buffering logger so output can be returned per run.
type stdoutLogger struct{}

func (stdoutLogger) LogLine(line string) { fmt.Println(line) }

// DefaultLogger is the logger installed into fresh root environments.
var DefaultLogger Logger = stdoutLogger{}

// Environment holds variable bindings and declared functions for one
// scope, chained to the enclosing scope through outer.
type Environment struct {
	store     map[string]Object
	consts    map[string]bool   // declared with const, cannot be reassigned
	types     map[string]string // declared type names, for widening and introspection
	functions map[string]*Function
	outer     *Environment
	Logger    Logger
}

// NewEnvironment creates a root environment.
func NewEnvironment() *Environment {
	return &Environment{
		store:     make(map[string]Object),
		consts:    make(map[string]bool),
		types:     make(map[string]string),
		functions: make(map[string]*Function),
		Logger:    DefaultLogger,
	}
}

// NewEnclosedEnvironment creates a child environment. The logger carries
// over so builtins reach the same output sink at any depth.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	if outer != nil {
		env.Logger = outer.Logger
	}
	return env
}

// Get resolves a variable through the environment chain.
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Declare installs a new binding in this environment with its declared
// type name and mutability.
func (e *Environment) Declare(name, typeName string, val Object, mutable bool) Object {
	e.store[name] = val
	e.types[name] = typeName
	if !mutable {
		e.consts[name] = true
	}
	return val
}

// Set stores a value in this environment without type bookkeeping.
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Update rebinds an existing variable wherever it lives in the chain.
// It never creates a binding; the boolean reports whether name resolved.
func (e *Environment) Update(name string, val Object) bool {
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		return true
	}
	if e.outer != nil {
		return e.outer.Update(name, val)
	}
	return false
}

// IsConst reports whether name resolves to an immutable binding.
func (e *Environment) IsConst(name string) bool {
	if _, ok := e.store[name]; ok {
		return e.consts[name]
	}
	if e.outer != nil {
		return e.outer.IsConst(name)
	}
	return false
}

// DeclaredType returns the declared type name recorded for name, walking
// the chain.
func (e *Environment) DeclaredType(name string) (string, bool) {
	if _, ok := e.store[name]; ok {
		return e.types[name], true
	}
	if e.outer != nil {
		return e.outer.DeclaredType(name)
	}
	return "", false
}

// SetFunction installs a user-defined function in this environment.
func (e *Environment) SetFunction(name string, fn *Function) {
	e.functions[name] = fn
}

// GetFunction resolves a user-defined function through the chain.
func (e *Environment) GetFunction(name string) (*Function, bool) {
	fn, ok := e.functions[name]
	if !ok && e.outer != nil {
		return e.outer.GetFunction(name)
	}
	return fn, ok
}

// AllIdentifiers returns every name visible from this environment,
// including functions and builtins. Used for fuzzy matching in
// undefined-identifier faults.
func (e *Environment) AllIdentifiers() []string {
	seen := make(map[string]bool)
	var result []string

	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
		for name := range env.functions {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}

	for name := range builtins {
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	return result
}

// LocalNames returns the variables declared in this environment itself,
// sorted for stable introspection output.
func (e *Environment) LocalNames() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocalFunctionNames returns the functions declared in this environment
// itself, sorted.
func (e *Environment) LocalFunctionNames() []string {
	names := make([]string, 0, len(e.functions))
	for name := range e.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
