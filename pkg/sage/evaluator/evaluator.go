// Package evaluator executes a type-checked Sage program against an
// environment chain.
//
// Eval dispatches over AST node kinds with an exhaustive switch. Runtime
// faults are Error objects that unwind through every caller: the first
// fault aborts the remaining statements of the run. Output written by
// print and println goes to the environment's Logger, one line per call.
package evaluator

import (
	"github.com/sagelang/sage/pkg/sage/ast"
)

// Eval evaluates an AST node against env.
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalProgram(node.Statements, env)

	case *ast.ExpressionStatement:
		if node.Expression == nil {
			return NULL
		}
		return Eval(node.Expression, env)

	case *ast.LetStatement:
		return evalLetStatement(node, env)

	case *ast.FunctionDeclaration:
		return evalFunctionDeclaration(node, env)

	case *ast.ReturnStatement:
		return evalReturnStatement(node, env)

	case *ast.BlockStatement:
		// A bare block gets a fresh scope, discarded on exit.
		return evalBlockStatement(node, NewEnclosedEnvironment(env))

	case *ast.IfStatement:
		return evalIfStatement(node, env)

	case *ast.ForStatement:
		return evalForStatement(node, env)

	case *ast.WhileStatement:
		return evalWhileStatement(node, env)

	// Expressions
	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &Float{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.CharLiteral:
		return &Char{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NullLiteral:
		return NULL

	case *ast.PrefixExpression:
		return evalPrefixExpression(node, env)

	case *ast.InfixExpression:
		return evalInfixExpression(node, env)

	case *ast.AssignmentExpression:
		return evalAssignmentExpression(node, env)

	case *ast.CallExpression:
		return evalCallExpression(node, env)

	case *ast.IndexExpression:
		return evalIndexExpression(node, env)

	case *ast.MemberExpression:
		return evalMemberExpression(node, env)

	case *ast.ArrayLiteral:
		return evalArrayLiteral(node, env)

	case *ast.ObjectLiteral:
		return evalObjectLiteral(node, env)
	}

	return NULL
}

// evalProgram runs top-level statements in order. The run's value is the
// value of the last executed statement; a return stops the program and
// yields its operand; a fault stops the program and propagates.
func evalProgram(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL

	for _, statement := range stmts {
		result = Eval(statement, env)

		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		}
	}

	return result
}

// evalBlockStatement runs statements against the given environment. The
// caller decides whether that environment is fresh: bare blocks and loop
// bodies get a child scope, function bodies reuse the parameter scope.
// Return values and faults pass through unwrapped so outer blocks keep
// unwinding.
func evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NULL

	for _, statement := range block.Statements {
		result = Eval(statement, env)

		if result != nil {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

func evalLetStatement(stmt *ast.LetStatement, env *Environment) Object {
	typeName := ""
	if stmt.Type != nil {
		typeName = stmt.Type.String()
	}

	var val Object
	if stmt.Value != nil {
		val = Eval(stmt.Value, env)
		if isError(val) {
			return val
		}
		val = widenToDeclared(val, typeName)
	} else {
		val = zeroValueFor(typeName)
	}

	env.Declare(stmt.Name.Value, typeName, val, stmt.Mutable)
	return val
}

func evalFunctionDeclaration(stmt *ast.FunctionDeclaration, env *Environment) Object {
	fn := &Function{
		Name:       stmt.Name.Value,
		Params:     stmt.Params,
		ReturnType: stmt.ReturnType,
		Body:       stmt.Body,
	}
	env.SetFunction(stmt.Name.Value, fn)
	return NULL
}

func evalReturnStatement(stmt *ast.ReturnStatement, env *Environment) Object {
	if stmt.ReturnValue == nil {
		return &ReturnValue{Value: NULL}
	}
	val := Eval(stmt.ReturnValue, env)
	if isError(val) {
		return val
	}
	return &ReturnValue{Value: val}
}

func evalIfStatement(stmt *ast.IfStatement, env *Environment) Object {
	condition := Eval(stmt.Condition, env)
	if isError(condition) {
		return condition
	}

	if isTruthy(condition) {
		return Eval(stmt.Consequence, env)
	}
	if stmt.Alternative != nil {
		// Either the else block or the next if in an else-if chain.
		return Eval(stmt.Alternative, env)
	}
	return NULL
}

func evalForStatement(stmt *ast.ForStatement, env *Environment) Object {
	// The init declaration lives in an environment owned by the loop.
	loopEnv := NewEnclosedEnvironment(env)

	if stmt.Init != nil {
		if result := Eval(stmt.Init, loopEnv); isError(result) {
			return result
		}
	}

	var result Object = NULL
	for {
		if stmt.Condition != nil {
			condition := Eval(stmt.Condition, loopEnv)
			if isError(condition) {
				return condition
			}
			if !isTruthy(condition) {
				break
			}
		}

		bodyResult := Eval(stmt.Body, loopEnv)
		if bodyResult != nil {
			rt := bodyResult.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return bodyResult
			}
			result = bodyResult
		}

		if stmt.Post != nil {
			if post := Eval(stmt.Post, loopEnv); isError(post) {
				return post
			}
		}
	}

	return result
}

func evalWhileStatement(stmt *ast.WhileStatement, env *Environment) Object {
	var result Object = NULL

	for {
		// The condition re-evaluates in the surrounding environment, so
		// assignments in the body remain visible to it.
		condition := Eval(stmt.Condition, env)
		if isError(condition) {
			return condition
		}
		if !isTruthy(condition) {
			break
		}

		bodyResult := Eval(stmt.Body, env)
		if bodyResult != nil {
			rt := bodyResult.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return bodyResult
			}
			result = bodyResult
		}
	}

	return result
}

// isTruthy converts any value to a condition: null is false, booleans
// are themselves, numbers are false only at exactly zero, strings are
// false only when empty, and every other value is true.
func isTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Null:
		return false
	case *Boolean:
		return obj.Value
	case *Integer:
		return obj.Value != 0
	case *Float:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	}
	return true
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// widenToDeclared converts an int value to float when the slot it is
// bound to is declared float. The static checker already accepted the
// assignment; this keeps the stored value's shape in line with it.
func widenToDeclared(val Object, typeName string) Object {
	if typeName != "float" && typeName != "float?" {
		return val
	}
	if i, ok := val.(*Integer); ok {
		return &Float{Value: float64(i.Value)}
	}
	return val
}

// zeroValueFor gives the value bound by a declaration without an
// initializer: 0, 0.0, the empty string, false, or null for everything
// else (including nullable types).
func zeroValueFor(typeName string) Object {
	switch typeName {
	case "int":
		return &Integer{Value: 0}
	case "float":
		return &Float{Value: 0}
	case "string":
		return &String{Value: ""}
	case "bool":
		return FALSE
	}
	return NULL
}
