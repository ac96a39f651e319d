package evaluator

import (
	"math"

	"github.com/sagelang/sage/pkg/sage/ast"
)

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	if fn, ok := env.GetFunction(node.Value); ok {
		return fn
	}
	if builtin, ok := builtins[node.Value]; ok {
		return builtin
	}
	return undefinedIdentifierError(node, env)
}

func evalPrefixExpression(node *ast.PrefixExpression, env *Environment) Object {
	if node.Operator == "++" || node.Operator == "--" {
		return evalIncrementDecrement(node, env)
	}

	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}

	switch node.Operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		switch right := right.(type) {
		case *Integer:
			return &Integer{Value: -right.Value}
		case *Float:
			return &Float{Value: -right.Value}
		}
	}
	return newStructuredErrorWithPos("RUN-0010", node.Token, map[string]any{
		"Operator": node.Operator,
		"Type":     structuralTypeName(right),
	})
}

// evalIncrementDecrement handles prefix ++ and --. The operand must be a
// variable: the binding updates and the new value is the result.
func evalIncrementDecrement(node *ast.PrefixExpression, env *Environment) Object {
	ident, ok := node.Right.(*ast.Identifier)
	if !ok {
		return newStructuredErrorWithPos("RUN-0009", node.Token, map[string]any{
			"Operator": node.Operator,
		})
	}

	current := evalIdentifier(ident, env)
	if isError(current) {
		return current
	}

	delta := int64(1)
	if node.Operator == "--" {
		delta = -1
	}

	var next Object
	switch current := current.(type) {
	case *Integer:
		next = &Integer{Value: current.Value + delta}
	case *Float:
		next = &Float{Value: current.Value + float64(delta)}
	default:
		return newStructuredErrorWithPos("RUN-0010", node.Token, map[string]any{
			"Operator": node.Operator,
			"Type":     structuralTypeName(current),
		})
	}

	if env.IsConst(ident.Value) {
		return newStructuredErrorWithPos("RUN-0002", node.Token, map[string]any{
			"Name": ident.Value,
		})
	}
	env.Update(ident.Value, next)
	return next
}

func evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	if node.Operator == "&&" || node.Operator == "||" {
		return evalLogicalExpression(node, env)
	}

	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}
	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}

	return evalBinaryOperation(node, left, right)
}

// evalLogicalExpression short-circuits && and ||. Both operators yield a
// boolean, not the operand value.
func evalLogicalExpression(node *ast.InfixExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}

	if node.Operator == "&&" {
		if !isTruthy(left) {
			return FALSE
		}
	} else {
		if isTruthy(left) {
			return TRUE
		}
	}

	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return nativeBoolToBooleanObject(isTruthy(right))
}

func evalBinaryOperation(node *ast.InfixExpression, left, right Object) Object {
	operator := node.Operator

	switch operator {
	case "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	}

	if isNumericObject(left) && isNumericObject(right) {
		if left.Type() == FLOAT_OBJ || right.Type() == FLOAT_OBJ {
			return evalFloatInfix(node, toFloat64(left), toFloat64(right))
		}
		return evalIntegerInfix(node, left.(*Integer).Value, right.(*Integer).Value)
	}

	// + concatenates when either side is a string, stringifying the other.
	if operator == "+" && (left.Type() == STRING_OBJ || right.Type() == STRING_OBJ) {
		return &String{Value: left.Inspect() + right.Inspect()}
	}

	if left.Type() == STRING_OBJ && right.Type() == STRING_OBJ {
		return evalStringComparison(node, left.(*String).Value, right.(*String).Value)
	}
	if left.Type() == CHAR_OBJ && right.Type() == CHAR_OBJ {
		return evalStringComparison(node, left.(*Char).Value, right.(*Char).Value)
	}

	return newStructuredErrorWithPos("RUN-0005", node.Token, map[string]any{
		"Left":     structuralTypeName(left),
		"Operator": operator,
		"Right":    structuralTypeName(right),
	})
}

func evalIntegerInfix(node *ast.InfixExpression, left, right int64) Object {
	switch node.Operator {
	case "+":
		return &Integer{Value: left + right}
	case "-":
		return &Integer{Value: left - right}
	case "*":
		return &Integer{Value: left * right}
	case "/":
		if right == 0 {
			return newStructuredErrorWithPos("RUN-0006", node.Token, nil)
		}
		return &Integer{Value: left / right}
	case "%":
		if right == 0 {
			return newStructuredErrorWithPos("RUN-0006", node.Token, nil)
		}
		return &Integer{Value: left % right}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case "<=":
		return nativeBoolToBooleanObject(left <= right)
	case ">=":
		return nativeBoolToBooleanObject(left >= right)
	}
	return newStructuredErrorWithPos("RUN-0005", node.Token, map[string]any{
		"Left":     "int",
		"Operator": node.Operator,
		"Right":    "int",
	})
}

func evalFloatInfix(node *ast.InfixExpression, left, right float64) Object {
	switch node.Operator {
	case "+":
		return &Float{Value: left + right}
	case "-":
		return &Float{Value: left - right}
	case "*":
		return &Float{Value: left * right}
	case "/":
		// Float division follows IEEE semantics; only integer division
		// by zero faults.
		return &Float{Value: left / right}
	case "%":
		return &Float{Value: math.Mod(left, right)}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case "<=":
		return nativeBoolToBooleanObject(left <= right)
	case ">=":
		return nativeBoolToBooleanObject(left >= right)
	}
	return newStructuredErrorWithPos("RUN-0005", node.Token, map[string]any{
		"Left":     "float",
		"Operator": node.Operator,
		"Right":    "float",
	})
}

func evalStringComparison(node *ast.InfixExpression, left, right string) Object {
	switch node.Operator {
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case "<=":
		return nativeBoolToBooleanObject(left <= right)
	case ">=":
		return nativeBoolToBooleanObject(left >= right)
	}
	return newStructuredErrorWithPos("RUN-0005", node.Token, map[string]any{
		"Left":     "string",
		"Operator": node.Operator,
		"Right":    "string",
	})
}

// objectsEqual implements == across all value kinds. Mixed int and float
// compare numerically; otherwise differing kinds are simply unequal, and
// reference kinds compare by identity.
func objectsEqual(left, right Object) bool {
	switch left := left.(type) {
	case *Integer:
		switch right := right.(type) {
		case *Integer:
			return left.Value == right.Value
		case *Float:
			return float64(left.Value) == right.Value
		}
		return false
	case *Float:
		switch right := right.(type) {
		case *Float:
			return left.Value == right.Value
		case *Integer:
			return left.Value == float64(right.Value)
		}
		return false
	case *String:
		if right, ok := right.(*String); ok {
			return left.Value == right.Value
		}
		return false
	case *Char:
		if right, ok := right.(*Char); ok {
			return left.Value == right.Value
		}
		return false
	case *Boolean:
		if right, ok := right.(*Boolean); ok {
			return left.Value == right.Value
		}
		return false
	case *Null:
		_, ok := right.(*Null)
		return ok
	}
	return left == right
}

func isNumericObject(obj Object) bool {
	t := obj.Type()
	return t == INTEGER_OBJ || t == FLOAT_OBJ
}

func toFloat64(obj Object) float64 {
	switch obj := obj.(type) {
	case *Integer:
		return float64(obj.Value)
	case *Float:
		return obj.Value
	}
	return 0
}

func evalAssignmentExpression(node *ast.AssignmentExpression, env *Environment) Object {
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}

	name := node.Name.Value
	if _, ok := env.Get(name); !ok {
		// Assignment resolves an existing binding; it never creates one.
		return undefinedIdentifierError(node.Name, env)
	}
	if env.IsConst(name) {
		return newStructuredErrorWithPos("RUN-0002", node.Token, map[string]any{
			"Name": name,
		})
	}

	if typeName, ok := env.DeclaredType(name); ok {
		val = widenToDeclared(val, typeName)
	}
	env.Update(name, val)
	return val
}

func evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	function := Eval(node.Function, env)
	if isError(function) {
		return function
	}

	args := evalExpressions(node.Arguments, env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}

	return applyFunction(node, function, args, env)
}

// evalExpressions evaluates arguments left to right. The first fault is
// returned alone, in place of the list.
func evalExpressions(exprs []ast.Expression, env *Environment) []Object {
	var result []Object

	for _, expr := range exprs {
		evaluated := Eval(expr, env)
		if isError(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func applyFunction(node *ast.CallExpression, fn Object, args []Object, env *Environment) Object {
	switch fn := fn.(type) {
	case *Function:
		extended, err := extendFunctionEnv(fn, args, env)
		if err != nil {
			return err
		}
		evaluated := evalBlockStatement(fn.Body, extended)
		return unwrapReturnValue(evaluated)
	case *Builtin:
		result := fn.Fn(args, env)
		if errObj, ok := result.(*Error); ok && errObj.Line == 0 {
			errObj.Line = node.Token.Line
			errObj.Column = node.Token.Column
		}
		return result
	default:
		return newStructuredErrorWithPos("RUN-0004", node.Token, map[string]any{
			"Got": structuralTypeName(fn),
		})
	}
}

// extendFunctionEnv builds the environment a user-defined call runs in.
// Its parent is the CALLING environment, so a function sees the caller's
// scope rather than closing over its defining scope. Missing arguments
// take the declared default, evaluated in the calling environment, or
// the parameter type's zero value.
func extendFunctionEnv(fn *Function, args []Object, callerEnv *Environment) (*Environment, Object) {
	env := NewEnclosedEnvironment(callerEnv)

	for i, param := range fn.Params {
		typeName := ""
		if param.Type != nil {
			typeName = param.Type.String()
		}

		var val Object
		switch {
		case i < len(args):
			val = args[i]
		case param.Default != nil:
			val = Eval(param.Default, callerEnv)
			if isError(val) {
				return nil, val
			}
		default:
			val = zeroValueFor(typeName)
		}

		env.Declare(param.Name.Value, typeName, widenToDeclared(val, typeName), true)
	}

	return env, nil
}

func unwrapReturnValue(obj Object) Object {
	if returnValue, ok := obj.(*ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

func evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := Eval(node.Index, env)
	if isError(index) {
		return index
	}

	array, ok := left.(*Array)
	if !ok {
		return newStructuredErrorWithPos("RUN-0008", node.Token, map[string]any{
			"Left":  structuralTypeName(left),
			"Right": structuralTypeName(index),
		})
	}
	idx, ok := index.(*Integer)
	if !ok {
		return newStructuredErrorWithPos("RUN-0008", node.Token, map[string]any{
			"Left":  structuralTypeName(left),
			"Right": structuralTypeName(index),
		})
	}

	length := int64(len(array.Elements))
	if idx.Value < 0 || idx.Value >= length {
		return newStructuredErrorWithPos("RUN-0001", node.Token, map[string]any{
			"Index":  idx.Value,
			"Length": length,
		})
	}
	return array.Elements[idx.Value]
}

func evalMemberExpression(node *ast.MemberExpression, env *Environment) Object {
	object := Eval(node.Object, env)
	if isError(object) {
		return object
	}

	if _, isNull := object.(*Null); isNull {
		return newStructuredErrorWithPos("RUN-0003", node.Token, map[string]any{
			"Property": node.Property.Value,
		})
	}

	objectValue, ok := object.(*ObjectValue)
	if !ok {
		// Property access on a non-object resolves to null, like a
		// missing key.
		return NULL
	}
	if val, ok := objectValue.Pairs[node.Property.Value]; ok {
		return val
	}
	return NULL
}

func evalArrayLiteral(node *ast.ArrayLiteral, env *Environment) Object {
	elements := evalExpressions(node.Elements, env)
	if len(elements) == 1 && isError(elements[0]) {
		return elements[0]
	}
	return &Array{Elements: elements}
}

func evalObjectLiteral(node *ast.ObjectLiteral, env *Environment) Object {
	object := &ObjectValue{Pairs: make(map[string]Object)}

	for _, key := range node.KeyOrder {
		expr, ok := node.Pairs[key]
		if !ok {
			continue
		}
		val := Eval(expr, env)
		if isError(val) {
			return val
		}
		object.Set(key, val)
	}

	return object
}
