package evaluator

import (
	"sort"
	"strconv"
	"strings"
)

// builtins is the host function registry. Identifier resolution falls
// back to it after the environment chain and the function table, so
// user bindings may shadow a builtin name.
var builtins = map[string]*Builtin{
	"print":      {Name: "print", Fn: builtinPrint},
	"println":    {Name: "println", Fn: builtinPrint},
	"len":        {Name: "len", Fn: builtinLen},
	"type":       {Name: "type", Fn: builtinType},
	"toString":   {Name: "toString", Fn: builtinToString},
	"parseInt":   {Name: "parseInt", Fn: builtinParseInt},
	"parseFloat": {Name: "parseFloat", Fn: builtinParseFloat},
}

// Builtins lists the registry names, sorted. The REPL uses it for
// completion.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtinPrint stringifies its arguments, joins them with a single
// space, and appends exactly one line to the output log. println is the
// same function under a second name.
func builtinPrint(args []Object, env *Environment) Object {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, arg.Inspect())
	}
	env.Logger.LogLine(strings.Join(parts, " "))
	return NULL
}

// builtinLen returns the byte length of a string or the element count of
// an array. Anything else is a fault.
func builtinLen(args []Object, env *Environment) Object {
	if len(args) != 1 {
		return arityError("len", 1, len(args))
	}
	switch arg := args[0].(type) {
	case *String:
		return &Integer{Value: int64(len(arg.Value))}
	case *Array:
		return &Integer{Value: int64(len(arg.Elements))}
	}
	return newStructuredError("RUN-0007", map[string]any{
		"Function": "len",
		"Got":      structuralTypeName(args[0]),
	})
}

func builtinType(args []Object, env *Environment) Object {
	if len(args) != 1 {
		return arityError("type", 1, len(args))
	}
	return &String{Value: structuralTypeName(args[0])}
}

func builtinToString(args []Object, env *Environment) Object {
	if len(args) != 1 {
		return arityError("toString", 1, len(args))
	}
	return &String{Value: args[0].Inspect()}
}

// builtinParseInt converts a string to an int, truncates a float, and
// passes an int through. Unparsable input yields null, not a fault.
func builtinParseInt(args []Object, env *Environment) Object {
	if len(args) != 1 {
		return arityError("parseInt", 1, len(args))
	}
	switch arg := args[0].(type) {
	case *Integer:
		return arg
	case *Float:
		return &Integer{Value: int64(arg.Value)}
	case *String:
		if v, err := strconv.ParseInt(strings.TrimSpace(arg.Value), 10, 64); err == nil {
			return &Integer{Value: v}
		}
	}
	return NULL
}

func builtinParseFloat(args []Object, env *Environment) Object {
	if len(args) != 1 {
		return arityError("parseFloat", 1, len(args))
	}
	switch arg := args[0].(type) {
	case *Float:
		return arg
	case *Integer:
		return &Float{Value: float64(arg.Value)}
	case *String:
		if v, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64); err == nil {
			return &Float{Value: v}
		}
	}
	return NULL
}

func arityError(name string, want, got int) *Error {
	return newStructuredError("ARITY-0001", map[string]any{
		"Function": name,
		"Want":     want,
		"Got":      got,
	})
}
