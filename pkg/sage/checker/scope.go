package checker

import "strings"

// Type names the checker manipulates. Types are plain strings: primitives
// use their keyword, arrays render as Array<T>, nullable types carry a
// trailing question mark. Two names are internal and never written in
// source: typeUnknown marks an expression whose type could not be resolved
// statically, and typeFunction is the type of a function used as a value.
const (
	typeInt      = "int"
	typeFloat    = "float"
	typeString   = "string"
	typeBool     = "bool"
	typeChar     = "char"
	typeVoid     = "void"
	typeAny      = "any"
	typeNull     = "null"
	typeUnknown  = "unknown"
	typeFunction = "function"
)

// primitiveTypes are the base type names accepted in annotations.
var primitiveTypes = map[string]bool{
	typeInt:    true,
	typeFloat:  true,
	typeString: true,
	typeBool:   true,
	typeChar:   true,
	typeVoid:   true,
	typeAny:    true,
}

// Scope is one frame of the static scope chain. Lookup walks outward
// through parent frames, mirroring how the runtime environment chain
// resolves identifiers.
type Scope struct {
	parent    *Scope
	variables map[string]string
}

// NewScope creates a scope whose lookups fall through to parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:    parent,
		variables: make(map[string]string),
	}
}

// Define records a variable's declared type in this frame.
func (s *Scope) Define(name, typeName string) {
	s.variables[name] = typeName
}

// Lookup resolves a name through the scope chain.
func (s *Scope) Lookup(name string) (string, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if t, ok := scope.variables[name]; ok {
			return t, true
		}
	}
	return "", false
}

// DefinedLocally reports whether name is declared in this frame itself,
// ignoring parents. Used to detect redeclarations.
func (s *Scope) DefinedLocally(name string) bool {
	_, ok := s.variables[name]
	return ok
}

// Parameter is one formal parameter of a checked function signature.
type Parameter struct {
	Name       string
	Type       string
	HasDefault bool
}

// FunctionSignature is the statically known shape of a user-defined
// function: parameter types and the declared return type.
type FunctionSignature struct {
	Name       string
	Parameters []*Parameter
	ReturnType string
}

// builtinReturnTypes gives the checker a permissive view of the builtin
// registry: parameters accept anything, only the result type is tracked.
// Misusing a builtin (such as len on a number) is a runtime fault, not a
// static diagnostic.
var builtinReturnTypes = map[string]string{
	"print":      typeVoid,
	"println":    typeVoid,
	"len":        typeInt,
	"type":       typeString,
	"toString":   typeString,
	"parseInt":   "int?",
	"parseFloat": "float?",
}

// isNullableName reports whether a type name carries the trailing
// nullable marker.
func isNullableName(t string) bool {
	return strings.HasSuffix(t, "?")
}

// arrayElement extracts T from Array<T>. The boolean is false when t is
// not an array type.
func arrayElement(t string) (string, bool) {
	if strings.HasPrefix(t, "Array<") && strings.HasSuffix(t, ">") {
		return t[len("Array<") : len(t)-1], true
	}
	return "", false
}

// isAssignable reports whether a value of type from can be bound to a
// slot of type to. Exact name matches pass, int widens to float, and a
// non-nullable value may always be wrapped into a nullable target. The
// unknown sentinel is assignable in both directions so one unresolved
// expression does not cascade into follow-on diagnostics, and any is
// likewise compatible in both directions. Array types compare by element.
func isAssignable(from, to string) bool {
	if from == to {
		return true
	}
	if from == typeUnknown || to == typeUnknown {
		return true
	}
	if from == typeAny || to == typeAny {
		return true
	}
	if from == typeInt && to == typeFloat {
		return true
	}
	if isNullableName(to) && !isNullableName(from) {
		return true
	}
	if fromElem, ok := arrayElement(from); ok {
		if toElem, ok := arrayElement(to); ok {
			return isAssignable(fromElem, toElem)
		}
	}
	return false
}

func isNumericName(t string) bool {
	return t == typeInt || t == typeFloat
}
