// Package checker performs static type analysis on a parsed Sage program.
//
// The checker walks the statement list once, in source order, inferring a
// type name for every expression and accumulating diagnostics. It never
// stops early: a full run reports every type error it can find, and the
// session evaluates the program only when the combined diagnostic list is
// empty. Names that cannot be resolved statically (for example bindings
// created by an earlier session run) infer the unknown sentinel and are
// left for the runtime, which reports them as faults.
package checker

import (
	"github.com/sagelang/sage/pkg/sage/ast"
	serrors "github.com/sagelang/sage/pkg/sage/errors"
	"github.com/sagelang/sage/pkg/sage/lexer"
)

// Checker holds the state of one analysis pass.
type Checker struct {
	diagnostics []*serrors.SageError
	scope       *Scope
	functions   map[string]*FunctionSignature

	// Declared return type of the function body being checked.
	// Empty at the top level, where return is legal and unchecked.
	returnType string
}

// New creates a checker with an empty root scope.
func New() *Checker {
	return &Checker{
		scope:     NewScope(nil),
		functions: make(map[string]*FunctionSignature),
	}
}

// Check analyzes the program and returns the accumulated diagnostics.
func (c *Checker) Check(program *ast.Program) []*serrors.SageError {
	for _, stmt := range program.Statements {
		c.checkStatement(stmt)
	}
	return c.diagnostics
}

// Diagnostics returns everything reported so far.
func (c *Checker) Diagnostics() []*serrors.SageError {
	return c.diagnostics
}

func (c *Checker) addError(code string, tok lexer.Token, data map[string]any) {
	c.diagnostics = append(c.diagnostics, serrors.NewWithPosition(code, tok.Line, tok.Column, data))
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch stmt := stmt.(type) {
	case *ast.LetStatement:
		c.checkLetStatement(stmt)
	case *ast.FunctionDeclaration:
		c.checkFunctionDeclaration(stmt)
	case *ast.ReturnStatement:
		c.checkReturnStatement(stmt)
	case *ast.IfStatement:
		c.checkIfStatement(stmt)
	case *ast.ForStatement:
		c.checkForStatement(stmt)
	case *ast.WhileStatement:
		c.checkWhileStatement(stmt)
	case *ast.BlockStatement:
		c.checkBlock(stmt)
	case *ast.ExpressionStatement:
		if stmt.Expression != nil {
			c.inferExpression(stmt.Expression)
		}
	}
}

func (c *Checker) checkLetStatement(stmt *ast.LetStatement) {
	declared := c.typeFromAnnotation(stmt.Type)
	if stmt.Value != nil {
		got := c.inferExpression(stmt.Value)
		if !isAssignable(got, declared) {
			c.addError("TYPE-0001", stmt.Name.Token, map[string]any{
				"Got":  got,
				"Want": declared,
			})
		}
	}
	if c.scope.DefinedLocally(stmt.Name.Value) {
		c.addError("TYPE-0007", stmt.Name.Token, map[string]any{
			"Name": stmt.Name.Value,
		})
	}
	c.scope.Define(stmt.Name.Value, declared)
}

func (c *Checker) checkFunctionDeclaration(stmt *ast.FunctionDeclaration) {
	sig := &FunctionSignature{
		Name:       stmt.Name.Value,
		ReturnType: c.typeFromAnnotation(stmt.ReturnType),
	}
	for _, param := range stmt.Params {
		paramType := c.typeFromAnnotation(param.Type)
		if param.Default != nil {
			got := c.inferExpression(param.Default)
			if !isAssignable(got, paramType) {
				c.addError("TYPE-0001", param.Name.Token, map[string]any{
					"Got":  got,
					"Want": paramType,
				})
			}
		}
		sig.Parameters = append(sig.Parameters, &Parameter{
			Name:       param.Name.Value,
			Type:       paramType,
			HasDefault: param.Default != nil,
		})
	}

	// Register the signature before checking the body so direct
	// recursion resolves.
	c.functions[sig.Name] = sig

	prevScope, prevReturn := c.scope, c.returnType
	c.scope = NewScope(prevScope)
	c.returnType = sig.ReturnType
	for _, param := range sig.Parameters {
		c.scope.Define(param.Name, param.Type)
	}
	for _, bodyStmt := range stmt.Body.Statements {
		c.checkStatement(bodyStmt)
	}
	c.scope, c.returnType = prevScope, prevReturn
}

func (c *Checker) checkReturnStatement(stmt *ast.ReturnStatement) {
	got := typeVoid
	if stmt.ReturnValue != nil {
		got = c.inferExpression(stmt.ReturnValue)
	}
	if c.returnType == "" {
		// Top-level return ends the program; there is nothing to
		// check it against.
		return
	}
	if !isAssignable(got, c.returnType) {
		c.addError("TYPE-0004", stmt.Token, map[string]any{
			"Got":  got,
			"Want": c.returnType,
		})
	}
}

func (c *Checker) checkIfStatement(stmt *ast.IfStatement) {
	// Any value is a legal condition under the truthiness rule.
	c.inferExpression(stmt.Condition)
	c.checkBlock(stmt.Consequence)
	if stmt.Alternative != nil {
		c.checkStatement(stmt.Alternative)
	}
}

func (c *Checker) checkForStatement(stmt *ast.ForStatement) {
	// The init declaration lives in a scope owned by the loop itself,
	// and the body nests inside it, mirroring the runtime environments.
	prev := c.scope
	c.scope = NewScope(prev)
	if stmt.Init != nil {
		c.checkStatement(stmt.Init)
	}
	if stmt.Condition != nil {
		c.inferExpression(stmt.Condition)
	}
	if stmt.Post != nil {
		c.inferExpression(stmt.Post)
	}
	c.checkBlock(stmt.Body)
	c.scope = prev
}

func (c *Checker) checkWhileStatement(stmt *ast.WhileStatement) {
	c.inferExpression(stmt.Condition)
	c.checkBlock(stmt.Body)
}

func (c *Checker) checkBlock(block *ast.BlockStatement) {
	prev := c.scope
	c.scope = NewScope(prev)
	for _, stmt := range block.Statements {
		c.checkStatement(stmt)
	}
	c.scope = prev
}

// typeFromAnnotation validates a written type annotation and returns its
// canonical name. Invalid annotations report TYPE-0003 and collapse to
// the unknown sentinel so the declaration does not cascade.
func (c *Checker) typeFromAnnotation(ann *ast.TypeAnnotation) string {
	if ann == nil {
		return typeUnknown
	}
	if !validAnnotation(ann) {
		c.addError("TYPE-0003", ann.Token, map[string]any{
			"Name": ann.String(),
		})
		return typeUnknown
	}
	return ann.String()
}

func validAnnotation(ann *ast.TypeAnnotation) bool {
	if ann.Name == "Array" {
		if len(ann.TypeParams) != 1 {
			return false
		}
		return validAnnotation(ann.TypeParams[0])
	}
	return len(ann.TypeParams) == 0 && primitiveTypes[ann.Name]
}

// inferExpression derives a type name for an expression, reporting
// diagnostics for operand and argument mismatches along the way.
func (c *Checker) inferExpression(expr ast.Expression) string {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		return typeInt
	case *ast.FloatLiteral:
		return typeFloat
	case *ast.StringLiteral:
		return typeString
	case *ast.CharLiteral:
		return typeChar
	case *ast.BooleanLiteral:
		return typeBool
	case *ast.NullLiteral:
		return typeNull
	case *ast.Identifier:
		return c.inferIdentifier(expr)
	case *ast.PrefixExpression:
		return c.inferPrefix(expr)
	case *ast.InfixExpression:
		return c.inferInfix(expr)
	case *ast.AssignmentExpression:
		return c.inferAssignment(expr)
	case *ast.CallExpression:
		return c.inferCall(expr)
	case *ast.IndexExpression:
		return c.inferIndex(expr)
	case *ast.MemberExpression:
		return c.inferMember(expr)
	case *ast.ArrayLiteral:
		return c.inferArrayLiteral(expr)
	case *ast.ObjectLiteral:
		return c.inferObjectLiteral(expr)
	}
	return typeUnknown
}

func (c *Checker) inferIdentifier(ident *ast.Identifier) string {
	if t, ok := c.scope.Lookup(ident.Value); ok {
		return t
	}
	if _, ok := c.functions[ident.Value]; ok {
		return typeFunction
	}
	if _, ok := builtinReturnTypes[ident.Value]; ok {
		return typeFunction
	}
	// Unresolved names are the runtime's problem: the binding may exist
	// in a persisted session environment this pass cannot see.
	return typeUnknown
}

func (c *Checker) inferPrefix(expr *ast.PrefixExpression) string {
	right := c.inferExpression(expr.Right)
	switch expr.Operator {
	case "!":
		return typeBool
	case "-", "++", "--":
		if isNumericName(right) || right == typeAny || right == typeUnknown {
			return right
		}
		c.addError("TYPE-0006", expr.Token, map[string]any{
			"Operator": expr.Operator,
			"Type":     right,
		})
		return typeUnknown
	}
	return typeUnknown
}

func (c *Checker) inferInfix(expr *ast.InfixExpression) string {
	left := c.inferExpression(expr.Left)
	right := c.inferExpression(expr.Right)

	switch expr.Operator {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return typeBool
	}

	// Arithmetic. Unknown suppresses cascades and any stays any; after
	// that, float wins if either side is float, two ints stay int, and +
	// concatenates when either side is a string.
	if left == typeUnknown || right == typeUnknown {
		return typeUnknown
	}
	if left == typeAny || right == typeAny {
		return typeAny
	}
	if left == typeFloat || right == typeFloat {
		return typeFloat
	}
	if left == typeInt && right == typeInt {
		return typeInt
	}
	if expr.Operator == "+" && (left == typeString || right == typeString) {
		return typeString
	}
	c.addError("TYPE-0002", expr.Token, map[string]any{
		"Operator": expr.Operator,
		"Left":     left,
		"Right":    right,
	})
	return typeUnknown
}

func (c *Checker) inferAssignment(expr *ast.AssignmentExpression) string {
	got := c.inferExpression(expr.Value)
	declared, ok := c.scope.Lookup(expr.Name.Value)
	if !ok {
		// Either an undefined name (a runtime fault) or a binding from
		// an earlier session run.
		return typeUnknown
	}
	if !isAssignable(got, declared) {
		c.addError("TYPE-0001", expr.Token, map[string]any{
			"Got":  got,
			"Want": declared,
		})
	}
	return declared
}

func (c *Checker) inferCall(expr *ast.CallExpression) string {
	ident, ok := expr.Function.(*ast.Identifier)
	if !ok {
		c.inferExpression(expr.Function)
		c.inferArguments(expr.Arguments)
		return typeUnknown
	}

	// A variable shadowing a function name resolves dynamically.
	if _, shadowed := c.scope.Lookup(ident.Value); shadowed {
		c.inferArguments(expr.Arguments)
		return typeUnknown
	}

	if sig, ok := c.functions[ident.Value]; ok {
		return c.checkUserCall(expr, sig)
	}
	if result, ok := builtinReturnTypes[ident.Value]; ok {
		c.inferArguments(expr.Arguments)
		return result
	}

	c.inferArguments(expr.Arguments)
	return typeUnknown
}

// checkUserCall checks provided arguments against a known signature.
// Missing arguments are legal: the runtime substitutes the declared
// default or the parameter type's zero value. Surplus arguments are not.
func (c *Checker) checkUserCall(expr *ast.CallExpression, sig *FunctionSignature) string {
	if len(expr.Arguments) > len(sig.Parameters) {
		c.addError("ARITY-0001", expr.Token, map[string]any{
			"Function": sig.Name,
			"Want":     len(sig.Parameters),
			"Got":      len(expr.Arguments),
		})
		c.inferArguments(expr.Arguments)
		return sig.ReturnType
	}
	for i, arg := range expr.Arguments {
		got := c.inferExpression(arg)
		want := sig.Parameters[i].Type
		if !isAssignable(got, want) {
			c.addError("TYPE-0005", expr.Token, map[string]any{
				"Index":    i + 1,
				"Function": sig.Name,
				"Got":      got,
				"Want":     want,
			})
		}
	}
	return sig.ReturnType
}

func (c *Checker) inferArguments(args []ast.Expression) {
	for _, arg := range args {
		c.inferExpression(arg)
	}
}

func (c *Checker) inferIndex(expr *ast.IndexExpression) string {
	left := c.inferExpression(expr.Left)
	c.inferExpression(expr.Index)
	if elem, ok := arrayElement(left); ok {
		return elem
	}
	if left == typeAny {
		return typeAny
	}
	// Indexing anything else either faults at runtime or cannot be
	// resolved here.
	return typeUnknown
}

func (c *Checker) inferMember(expr *ast.MemberExpression) string {
	object := c.inferExpression(expr.Object)
	if object == typeUnknown {
		return typeUnknown
	}
	// Object shapes are dynamic; property types are not tracked.
	return typeAny
}

func (c *Checker) inferArrayLiteral(expr *ast.ArrayLiteral) string {
	if len(expr.Elements) == 0 {
		return "Array<any>"
	}
	elem := c.inferExpression(expr.Elements[0])
	for _, e := range expr.Elements[1:] {
		c.inferExpression(e)
	}
	return "Array<" + elem + ">"
}

func (c *Checker) inferObjectLiteral(expr *ast.ObjectLiteral) string {
	for _, key := range expr.KeyOrder {
		if value, ok := expr.Pairs[key]; ok {
			c.inferExpression(value)
		}
	}
	return typeAny
}
