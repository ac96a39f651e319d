package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sagelang/sage/pkg/sage/ast"
	serrors "github.com/sagelang/sage/pkg/sage/errors"
)

// ObjectType identifies the runtime type of a value
type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	STRING_OBJ   = "STRING"
	CHAR_OBJ     = "CHAR"
	BOOLEAN_OBJ  = "BOOLEAN"
	NULL_OBJ     = "NULL"
	ARRAY_OBJ    = "ARRAY"
	OBJECT_OBJ   = "OBJECT"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	RETURN_OBJ   = "RETURN_VALUE"
	ERROR_OBJ    = "ERROR"
)

// Object represents all values produced by evaluation
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Shared singletons. Null and the two booleans are immutable, so every
// occurrence points at the same value.
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// Integer represents int values
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

// Float represents float values
type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

// String represents string values. Inspect returns the raw text, which is
// also the print stringification.
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Char represents single character values
type Char struct {
	Value string
}

func (c *Char) Type() ObjectType { return CHAR_OBJ }
func (c *Char) Inspect() string  { return c.Value }

// Boolean represents true and false
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// Null represents the absence of a value
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

// Array represents array values
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	elements := make([]string, 0, len(a.Elements))
	for _, e := range a.Elements {
		elements = append(elements, e.Inspect())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// ObjectValue represents object literal values. Keys preserves source
// order so stringification and introspection are deterministic.
type ObjectValue struct {
	Pairs map[string]Object
	Keys  []string
}

func (o *ObjectValue) Type() ObjectType { return OBJECT_OBJ }
func (o *ObjectValue) Inspect() string {
	pairs := make([]string, 0, len(o.Keys))
	for _, key := range o.Keys {
		if value, ok := o.Pairs[key]; ok {
			pairs = append(pairs, key+": "+value.Inspect())
		}
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// Set stores a key, tracking insertion order for new keys.
func (o *ObjectValue) Set(key string, value Object) {
	if _, exists := o.Pairs[key]; !exists {
		o.Keys = append(o.Keys, key)
	}
	o.Pairs[key] = value
}

// Function represents user-defined functions. It carries no environment
// reference: a call chains its new environment to the calling
// environment, not the defining one (see applyFunction).
type Function struct {
	Name       string
	Params     []*ast.FunctionParameter
	ReturnType *ast.TypeAnnotation
	Body       *ast.BlockStatement
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return f.Signature() }

// Signature renders the declared shape, e.g. "func add(x: int, y: int) -> int".
func (f *Function) Signature() string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, p.String())
	}
	out := "func " + f.Name + "(" + strings.Join(params, ", ") + ")"
	if f.ReturnType != nil {
		out += " -> " + f.ReturnType.String()
	}
	return out
}

// BuiltinFunction is the host signature for builtins. The environment
// gives builtins access to the output sink.
type BuiltinFunction func(args []Object, env *Environment) Object

// Builtin represents a function implemented by the host runtime
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin function" }

// ReturnValue wraps the operand of a return statement while it unwinds
// enclosing blocks
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error represents a runtime fault. It mirrors the structured diagnostic
// fields so the session can surface one rich error record.
type Error struct {
	Message string
	Line    int
	Column  int
	Class   serrors.ErrorClass
	Code    string
	Hints   []string
	Data    map[string]any
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}

// ToSageError converts the fault into the shared diagnostic type.
func (e *Error) ToSageError() *serrors.SageError {
	class := e.Class
	if class == "" {
		class = serrors.ClassOperator
	}
	return &serrors.SageError{
		Class:    class,
		Code:     e.Code,
		Severity: serrors.SeverityError,
		Message:  e.Message,
		Hints:    e.Hints,
		Line:     e.Line,
		Column:   e.Column,
		Data:     e.Data,
	}
}

// structuralTypeName is the name reported by the type builtin and used in
// fault messages: the value's shape, not its declared static type.
func structuralTypeName(obj Object) string {
	switch obj.(type) {
	case *Integer:
		return "int"
	case *Float:
		return "float"
	case *String:
		return "string"
	case *Char:
		return "char"
	case *Boolean:
		return "bool"
	case *Null:
		return "null"
	case *Array:
		return "array"
	case *ObjectValue:
		return "object"
	case *Function:
		return "function"
	case *Builtin:
		return "builtin"
	}
	return strings.ToLower(string(obj.Type()))
}
