package evaluator

import (
	"github.com/sagelang/sage/pkg/sage/ast"
	serrors "github.com/sagelang/sage/pkg/sage/errors"
	"github.com/sagelang/sage/pkg/sage/lexer"
)

// fromSageError copies a structured diagnostic into a fault object.
func fromSageError(serr *serrors.SageError) *Error {
	return &Error{
		Message: serr.Message,
		Line:    serr.Line,
		Column:  serr.Column,
		Class:   serr.Class,
		Code:    serr.Code,
		Hints:   serr.Hints,
		Data:    serr.Data,
	}
}

// newStructuredError builds a fault from the error catalog.
func newStructuredError(code string, data map[string]any) *Error {
	return fromSageError(serrors.New(code, data))
}

// newStructuredErrorWithPos builds a catalog fault carrying the position
// of the token that triggered it.
func newStructuredErrorWithPos(code string, tok lexer.Token, data map[string]any) *Error {
	return fromSageError(serrors.NewWithPosition(code, tok.Line, tok.Column, data))
}

// undefinedIdentifierError reports an unresolved name, with a fuzzy
// did-you-mean hint drawn from everything visible in the environment.
func undefinedIdentifierError(node *ast.Identifier, env *Environment) *Error {
	serr := serrors.NewUndefinedIdentifier(node.Value, env.AllIdentifiers())
	errObj := fromSageError(serr)
	errObj.Line = node.Token.Line
	errObj.Column = node.Token.Column
	return errObj
}
