package parser

import (
	"fmt"
	"strconv"

	"github.com/sagelang/sage/pkg/sage/ast"
	serrors "github.com/sagelang/sage/pkg/sage/errors"
	"github.com/sagelang/sage/pkg/sage/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGN      // =
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == or !=
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X or !X
	INDEX       // array[index]
	CALL        // myFunction(X)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   ASSIGN,
	lexer.OR:       LOGIC_OR,
	lexer.AND:      LOGIC_AND,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LTE:      LESSGREATER,
	lexer.GTE:      LESSGREATER,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.SLASH:    PRODUCT,
	lexer.ASTERISK: PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.LBRACKET: INDEX,
	lexer.DOT:      INDEX,
	lexer.LPAREN:   CALL,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	diagnostics []*serrors.SageError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	// Initialize prefix parse functions
	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.CHAR, p.parseCharLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUSPLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUSMINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)

	// Initialize infix parse functions
	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.PERCENT, p.parseInfixExpression)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.LTE, p.parseInfixExpression)
	p.registerInfix(lexer.GTE, p.parseInfixExpression)
	p.registerInfix(lexer.AND, p.parseInfixExpression)
	p.registerInfix(lexer.OR, p.parseInfixExpression)
	p.registerInfix(lexer.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser diagnostics as strings (convenience method for tests).
// Prefer Diagnostics() for production code.
func (p *Parser) Errors() []string {
	result := make([]string, len(p.diagnostics))
	for i, err := range p.diagnostics {
		if err.Line > 0 {
			result[i] = fmt.Sprintf("line %d, column %d: %s", err.Line, err.Column, err.Message)
		} else {
			result[i] = err.Message
		}
	}
	return result
}

// Diagnostics returns parser diagnostics as structured SageError objects.
func (p *Parser) Diagnostics() []*serrors.SageError {
	return p.diagnostics
}

// addStructuredError adds a diagnostic from the catalog. All recoverable
// diagnostics are kept so a single pass can report every problem in the source.
func (p *Parser) addStructuredError(code string, line, column int, data map[string]any) {
	p.diagnostics = append(p.diagnostics, serrors.NewWithPosition(code, line, column, data))
}

// registerPrefix registers a prefix parse function
func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers an infix parse function
func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances prevToken, curToken, and peekToken
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses the program and returns the AST.
//
// When a statement fails to parse, the diagnostic is recorded, the parser
// advances one token, and statement parsing resumes. The loop below always
// advances, so recovery cannot stall.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// parseStatement parses statements
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.LET, lexer.CONST:
		return p.parseDeclStatement()
	case lexer.FUNC:
		return p.parseFunctionDeclaration()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.LBRACE:
		// A brace at statement position opens a bare block with its own scope
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseDeclStatement parses 'let name: type [= expr];' and
// 'const name: type [= expr];'. The type annotation is required.
func (p *Parser) parseDeclStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken, Mutable: p.curTokenIs(lexer.LET)}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.peekTokenIs(lexer.COLON) {
		p.addStructuredError("PARSE-0007", stmt.Name.Token.Line, stmt.Name.Token.Column, map[string]any{
			"Name":    stmt.Name.Value,
			"Keyword": stmt.TokenLiteral(),
		})
		return nil
	}
	p.nextToken() // consume ':'
	p.nextToken() // move to the type name

	stmt.Type = p.parseTypeAnnotation()
	if stmt.Type == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken() // consume '='
		p.nextToken() // move to the value expression
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

// parseTypeAnnotation parses a type written in source: a base name, optional
// '<...>' type parameters, and an optional trailing '?'. The current token
// must be the first token of the type name.
func (p *Parser) parseTypeAnnotation() *ast.TypeAnnotation {
	if !p.curTokenIs(lexer.IDENT) {
		p.addStructuredError("PARSE-0001", p.curToken.Line, p.curToken.Column, map[string]any{
			"Expected": "type name",
			"Got":      p.curTokenDisplay(),
		})
		return nil
	}

	ta := &ast.TypeAnnotation{Token: p.curToken, Name: p.curToken.Literal}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken() // consume '<'
		p.nextToken() // move to first type parameter

		param := p.parseTypeAnnotation()
		if param == nil {
			return nil
		}
		ta.TypeParams = append(ta.TypeParams, param)

		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken() // consume ','
			p.nextToken() // move to next type parameter
			param := p.parseTypeAnnotation()
			if param == nil {
				return nil
			}
			ta.TypeParams = append(ta.TypeParams, param)
		}

		if !p.expectPeek(lexer.GT) {
			return nil
		}
	}

	if p.peekTokenIs(lexer.QUESTION) {
		p.nextToken()
		ta.Nullable = true
	}

	return ta
}

// parseFunctionDeclaration parses 'func name(params) -> type { ... }'
func (p *Parser) parseFunctionDeclaration() ast.Statement {
	stmt := &ast.FunctionDeclaration{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	stmt.Params = p.parseFunctionParameters()
	if stmt.Params == nil {
		return nil
	}

	if !p.expectPeek(lexer.ARROW) {
		return nil
	}
	p.nextToken() // move to the return type

	stmt.ReturnType = p.parseTypeAnnotation()
	if stmt.ReturnType == nil {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	return stmt
}

// parseFunctionParameters parses the parameter list of a function
// declaration. The current token must be '('. Returns nil on error; an
// empty parameter list returns an empty slice.
func (p *Parser) parseFunctionParameters() []*ast.FunctionParameter {
	params := []*ast.FunctionParameter{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken() // move to first parameter name

	param := p.parseFunctionParameter()
	if param == nil {
		return nil
	}
	params = append(params, param)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume ','
		p.nextToken() // move to next parameter name
		param := p.parseFunctionParameter()
		if param == nil {
			return nil
		}
		params = append(params, param)
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return params
}

// parseFunctionParameter parses one 'name: type [= default]' parameter
func (p *Parser) parseFunctionParameter() *ast.FunctionParameter {
	if !p.curTokenIs(lexer.IDENT) {
		p.addStructuredError("PARSE-0001", p.curToken.Line, p.curToken.Column, map[string]any{
			"Expected": "parameter name",
			"Got":      p.curTokenDisplay(),
		})
		return nil
	}

	param := &ast.FunctionParameter{
		Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken() // move to the type name

	param.Type = p.parseTypeAnnotation()
	if param.Type == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken() // consume '='
		p.nextToken() // move to the default expression
		param.Default = p.parseExpression(LOWEST)
		if param.Default == nil {
			return nil
		}
	}

	return param
}

// parseIfStatement parses 'if (cond) { ... }' with optional 'else if' chains
// and a final 'else { ... }'
func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()

	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // consume 'else'

		if p.peekTokenIs(lexer.IF) {
			p.nextToken() // move to 'if'
			alt := p.parseIfStatement()
			if alt == nil {
				return nil
			}
			stmt.Alternative = alt
		} else {
			if !p.expectPeek(lexer.LBRACE) {
				return nil
			}
			stmt.Alternative = p.parseBlockStatement()
		}
	}

	return stmt
}

// parseForStatement parses 'for (init; cond; post) { ... }'. Each of the
// three header slots may be empty.
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken() // move to init, or to ';' when init is empty

	if !p.curTokenIs(lexer.SEMICOLON) {
		switch p.curToken.Type {
		case lexer.LET, lexer.CONST:
			stmt.Init = p.parseDeclStatement()
		default:
			stmt.Init = p.parseExpressionStatement()
		}
		if stmt.Init == nil {
			return nil
		}
		// Both statement forms consume a trailing ';' when present, so the
		// current token must now be the first separator.
		if !p.curTokenIs(lexer.SEMICOLON) {
			p.addStructuredError("PARSE-0001", p.curToken.Line, p.curToken.Column, map[string]any{
				"Expected": "';'",
				"Got":      p.curTokenDisplay(),
			})
			return nil
		}
	}

	p.nextToken() // move past ';' to cond, or to ';' when cond is empty

	if !p.curTokenIs(lexer.SEMICOLON) {
		stmt.Condition = p.parseExpression(LOWEST)
		if stmt.Condition == nil {
			return nil
		}
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
	}

	p.nextToken() // move past ';' to post, or to ')' when post is empty

	if !p.curTokenIs(lexer.RPAREN) {
		stmt.Post = p.parseExpression(LOWEST)
		if stmt.Post == nil {
			return nil
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	return stmt
}

// parseWhileStatement parses 'while (cond) { ... }'
func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()

	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	return stmt
}

// parseReturnStatement parses 'return;' and 'return expr;'
func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	if p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) {
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	firstToken := p.curToken

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	stmt := &ast.ExpressionStatement{Token: firstToken, Expression: expr}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}

	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

// Parse functions for different expression types
func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 0, 64)
	if err != nil {
		p.addStructuredError("PARSE-0004", p.curToken.Line, p.curToken.Column, map[string]any{
			"Literal": p.curToken.Literal,
		})
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addStructuredError("PARSE-0004", p.curToken.Line, p.curToken.Column, map[string]any{
			"Literal": p.curToken.Literal,
		})
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	return &ast.CharLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseAssignmentExpression parses 'name = expr'. Assignment is
// right-associative and only a plain identifier may appear on the left.
func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.addStructuredError("PARSE-0006", p.curToken.Line, p.curToken.Column, nil)
		return nil
	}

	expression := &ast.AssignmentExpression{
		Token: p.curToken,
		Name:  ident,
	}

	p.nextToken()
	expression.Value = p.parseExpression(LOWEST)
	if expression.Value == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Token: p.curToken}

	arr.Elements = p.parseExpressionList(lexer.RBRACKET)
	if arr.Elements == nil {
		return nil
	}

	return arr
}

// parseObjectLiteral parses '{ key: value, ... }'. Keys are identifiers or
// strings; source order is preserved in KeyOrder.
func (p *Parser) parseObjectLiteral() ast.Expression {
	obj := &ast.ObjectLiteral{
		Token: p.curToken,
		Pairs: make(map[string]ast.Expression),
	}

	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return obj
	}

	p.nextToken() // move to first key

	for {
		if !p.curTokenIs(lexer.IDENT) && !p.curTokenIs(lexer.STRING) {
			p.addStructuredError("PARSE-0001", p.curToken.Line, p.curToken.Column, map[string]any{
				"Expected": "property name",
				"Got":      p.curTokenDisplay(),
			})
			return nil
		}
		key := p.curToken.Literal

		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken() // move to the value expression

		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}

		if _, exists := obj.Pairs[key]; !exists {
			obj.KeyOrder = append(obj.KeyOrder, key)
		}
		obj.Pairs[key] = value

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // consume ','
		if p.peekTokenIs(lexer.RBRACE) {
			break // trailing comma
		}
		p.nextToken() // move to next key
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}

	return obj
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: fn}

	exp.Arguments = p.parseExpressionList(lexer.RPAREN)
	if exp.Arguments == nil {
		return nil
	}

	return exp
}

// parseExpressionList parses a comma-separated expression list ending at the
// given token. Returns nil on error; an empty list returns an empty slice.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()

	elem := p.parseExpression(LOWEST)
	if elem == nil {
		return nil
	}
	list = append(list, elem)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume comma
		if p.peekTokenIs(end) {
			break // trailing comma
		}
		p.nextToken() // move to next element

		elem := p.parseExpression(LOWEST)
		if elem == nil {
			return nil
		}
		list = append(list, elem)
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()

	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	return exp
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{Token: p.curToken, Object: left}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	exp.Property = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	return exp
}

// Helper functions
func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	if p.peekToken.Type == lexer.ILLEGAL {
		p.illegalTokenError(p.peekToken)
		return
	}

	gotLiteral := p.peekToken.Literal
	if gotLiteral == "" {
		gotLiteral = tokenTypeToReadableName(p.peekToken.Type)
	}

	// Report the error after the last successfully parsed token
	line := p.curToken.Line
	column := p.curToken.Column + len(p.curToken.Literal)

	p.addStructuredError("PARSE-0001", line, column, map[string]any{
		"Expected": tokenTypeToReadableName(t),
		"Got":      gotLiteral,
	})
}

func (p *Parser) noPrefixParseFnError(t lexer.TokenType) {
	if t == lexer.ILLEGAL {
		p.illegalTokenError(p.curToken)
		return
	}

	literal := p.curToken.Literal
	if literal == "" {
		literal = tokenTypeToReadableName(t)
	}

	// When the unexpected token starts a new line, point at the end of the
	// previous token, where the expression should have continued.
	line := p.curToken.Line
	column := p.curToken.Column
	if p.prevToken.Type != lexer.ILLEGAL && p.curToken.Line > p.prevToken.Line {
		line = p.prevToken.Line
		column = p.prevToken.Column + len(p.prevToken.Literal)
	}

	p.addStructuredError("PARSE-0002", line, column, map[string]any{
		"Token": literal,
	})
}

// illegalTokenError reports an ILLEGAL token from the lexer. Unterminated
// literals carry a descriptive message in the literal; anything else is a
// single unrecognized character.
func (p *Parser) illegalTokenError(tok lexer.Token) {
	switch tok.Literal {
	case "unterminated string":
		p.addStructuredError("PARSE-0003", tok.Line, tok.Column, nil)
	case "unterminated char literal":
		p.addStructuredError("PARSE-0005", tok.Line, tok.Column, nil)
	default:
		p.addStructuredError("LEX-0001", tok.Line, tok.Column, map[string]any{
			"Char": tok.Literal,
		})
	}
}

// curTokenDisplay returns the current token's literal, or a readable name
// when the literal is empty (EOF)
func (p *Parser) curTokenDisplay() string {
	if p.curToken.Literal == "" {
		return tokenTypeToReadableName(p.curToken.Type)
	}
	return p.curToken.Literal
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// tokenTypeToReadableName converts a token type into the name used in
// diagnostics
func tokenTypeToReadableName(t lexer.TokenType) string {
	switch t {
	case lexer.IDENT:
		return "identifier"
	case lexer.INT:
		return "integer"
	case lexer.FLOAT:
		return "float"
	case lexer.STRING:
		return "string"
	case lexer.CHAR:
		return "char"
	case lexer.ASSIGN:
		return "'='"
	case lexer.PLUS:
		return "'+'"
	case lexer.MINUS:
		return "'-'"
	case lexer.BANG:
		return "'!'"
	case lexer.ASTERISK:
		return "'*'"
	case lexer.SLASH:
		return "'/'"
	case lexer.PERCENT:
		return "'%'"
	case lexer.LT:
		return "'<'"
	case lexer.GT:
		return "'>'"
	case lexer.LTE:
		return "'<='"
	case lexer.GTE:
		return "'>='"
	case lexer.EQ:
		return "'=='"
	case lexer.NOT_EQ:
		return "'!='"
	case lexer.AND:
		return "'&&'"
	case lexer.OR:
		return "'||'"
	case lexer.PLUSPLUS:
		return "'++'"
	case lexer.MINUSMINUS:
		return "'--'"
	case lexer.ARROW:
		return "'->'"
	case lexer.DOUBLECOLON:
		return "'::'"
	case lexer.COMMA:
		return "','"
	case lexer.SEMICOLON:
		return "';'"
	case lexer.COLON:
		return "':'"
	case lexer.DOT:
		return "'.'"
	case lexer.QUESTION:
		return "'?'"
	case lexer.LPAREN:
		return "'('"
	case lexer.RPAREN:
		return "')'"
	case lexer.LBRACE:
		return "'{'"
	case lexer.RBRACE:
		return "'}'"
	case lexer.LBRACKET:
		return "'['"
	case lexer.RBRACKET:
		return "']'"
	case lexer.LET:
		return "'let'"
	case lexer.CONST:
		return "'const'"
	case lexer.FUNC:
		return "'func'"
	case lexer.IF:
		return "'if'"
	case lexer.ELSE:
		return "'else'"
	case lexer.FOR:
		return "'for'"
	case lexer.WHILE:
		return "'while'"
	case lexer.RETURN:
		return "'return'"
	case lexer.TRUE:
		return "'true'"
	case lexer.FALSE:
		return "'false'"
	case lexer.NULL:
		return "'null'"
	case lexer.EOF:
		return "end of file"
	default:
		return t.String()
	}
}
