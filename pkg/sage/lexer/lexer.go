// Package lexer turns Sage source text into a stream of tokens.
//
// The lexer is a single forward pass with one character of lookahead.
// Whitespace and comments are stripped between tokens. Characters the
// language does not recognize become single-character ILLEGAL tokens and
// pass through to the parser, which reports them as diagnostics.
package lexer

import "unicode/utf8"

// TokenType identifies the type of a token
type TokenType int

const (
	ILLEGAL TokenType = iota // Unrecognized input (literal carries the char or a message)
	EOF

	// Identifiers and literals
	IDENT
	INT
	FLOAT
	STRING
	CHAR

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // !
	ASTERISK // *
	SLASH    // /
	PERCENT  // %

	LT     // <
	GT     // >
	LTE    // <=
	GTE    // >=
	EQ     // ==
	NOT_EQ // !=

	AND // &&
	OR  // ||

	PLUSPLUS   // ++
	MINUSMINUS // --

	ARROW       // ->
	DOUBLECOLON // ::

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	DOT       // .
	QUESTION  // ?

	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]

	// Keywords
	LET
	CONST
	FUNC
	IF
	ELSE
	FOR
	WHILE
	RETURN
	TRUE
	FALSE
	NULL
)

// String returns the name of the token type
func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case CHAR:
		return "CHAR"
	case ASSIGN:
		return "ASSIGN"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case BANG:
		return "BANG"
	case ASTERISK:
		return "ASTERISK"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LTE:
		return "LTE"
	case GTE:
		return "GTE"
	case EQ:
		return "EQ"
	case NOT_EQ:
		return "NOT_EQ"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case PLUSPLUS:
		return "PLUSPLUS"
	case MINUSMINUS:
		return "MINUSMINUS"
	case ARROW:
		return "ARROW"
	case DOUBLECOLON:
		return "DOUBLECOLON"
	case COMMA:
		return "COMMA"
	case SEMICOLON:
		return "SEMICOLON"
	case COLON:
		return "COLON"
	case DOT:
		return "DOT"
	case QUESTION:
		return "QUESTION"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case LET:
		return "LET"
	case CONST:
		return "CONST"
	case FUNC:
		return "FUNC"
	case IF:
		return "IF"
	case ELSE:
		return "ELSE"
	case FOR:
		return "FOR"
	case WHILE:
		return "WHILE"
	case RETURN:
		return "RETURN"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case NULL:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// Token represents a single lexical token with its source position
type Token struct {
	Type    TokenType
	Literal string
	Line    int // 1-based
	Column  int // 1-based
}

// Keywords map for identifying language keywords
var keywords = map[string]TokenType{
	"let":    LET,
	"const":  CONST,
	"func":   FUNC,
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"while":  WHILE,
	"return": RETURN,
	"true":   TRUE,
	"false":  FALSE,
	"null":   NULL,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer represents the lexical analyzer
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination (first byte)
	chSize       int  // byte size of current character (1 for ASCII, 1-4 for UTF-8)
	line         int  // current line number
	column       int  // current column number
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		filename: "<input>",
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// Filename returns the name of the source being scanned
func (l *Lexer) Filename() string {
	return l.filename
}

// readChar reads the next character and advances position.
// ASCII fast-path for single-byte characters, UTF-8 decoding for the rest
// so multi-byte characters advance the column once, not per byte.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL represents EOF
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]

	if b < utf8.RuneSelf {
		l.ch = b
		l.chSize = 1
		l.position = l.readPosition
		l.readPosition++

		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
		return
	}

	_, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = b
	l.chSize = size
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// currentChar returns the current character including all bytes of a
// multi-byte UTF-8 sequence.
func (l *Lexer) currentChar() string {
	if l.position >= len(l.input) {
		return ""
	}
	return l.input[l.position : l.position+l.chSize]
}

// skipWhitespaceAndComments strips whitespace, line comments, and block
// comments between tokens. An unterminated block comment consumes the rest
// of the input.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar() // consume '/'
			l.readChar() // consume '*'
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // consume '*'
					l.readChar() // consume '/'
					break
				}
				l.readChar()
			}
		default:
			return
		}
	}
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespaceAndComments()

	line := l.line
	column := l.column

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: EQ, Literal: "==", Line: line, Column: column}
		} else {
			tok = newToken(ASSIGN, l.ch, line, column)
		}
	case '+':
		if l.peekChar() == '+' {
			l.readChar()
			tok = Token{Type: PLUSPLUS, Literal: "++", Line: line, Column: column}
		} else {
			tok = newToken(PLUS, l.ch, line, column)
		}
	case '-':
		if l.peekChar() == '-' {
			l.readChar()
			tok = Token{Type: MINUSMINUS, Literal: "--", Line: line, Column: column}
		} else if l.peekChar() == '>' {
			l.readChar()
			tok = Token{Type: ARROW, Literal: "->", Line: line, Column: column}
		} else {
			tok = newToken(MINUS, l.ch, line, column)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: NOT_EQ, Literal: "!=", Line: line, Column: column}
		} else {
			tok = newToken(BANG, l.ch, line, column)
		}
	case '*':
		tok = newToken(ASTERISK, l.ch, line, column)
	case '/':
		tok = newToken(SLASH, l.ch, line, column)
	case '%':
		tok = newToken(PERCENT, l.ch, line, column)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: LTE, Literal: "<=", Line: line, Column: column}
		} else {
			tok = newToken(LT, l.ch, line, column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: GTE, Literal: ">=", Line: line, Column: column}
		} else {
			tok = newToken(GT, l.ch, line, column)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = Token{Type: AND, Literal: "&&", Line: line, Column: column}
		} else {
			// A single '&' is not an operator in Sage
			tok = newToken(ILLEGAL, l.ch, line, column)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = Token{Type: OR, Literal: "||", Line: line, Column: column}
		} else {
			tok = newToken(ILLEGAL, l.ch, line, column)
		}
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			tok = Token{Type: DOUBLECOLON, Literal: "::", Line: line, Column: column}
		} else {
			tok = newToken(COLON, l.ch, line, column)
		}
	case ',':
		tok = newToken(COMMA, l.ch, line, column)
	case ';':
		tok = newToken(SEMICOLON, l.ch, line, column)
	case '.':
		tok = newToken(DOT, l.ch, line, column)
	case '?':
		tok = newToken(QUESTION, l.ch, line, column)
	case '(':
		tok = newToken(LPAREN, l.ch, line, column)
	case ')':
		tok = newToken(RPAREN, l.ch, line, column)
	case '{':
		tok = newToken(LBRACE, l.ch, line, column)
	case '}':
		tok = newToken(RBRACE, l.ch, line, column)
	case '[':
		tok = newToken(LBRACKET, l.ch, line, column)
	case ']':
		tok = newToken(RBRACKET, l.ch, line, column)
	case '"':
		str, terminated := l.readString()
		if !terminated {
			tok = Token{Type: ILLEGAL, Literal: "unterminated string", Line: line, Column: column}
		} else {
			tok = Token{Type: STRING, Literal: str, Line: line, Column: column}
		}
	case '\'':
		str, terminated := l.readCharLiteral()
		if !terminated {
			tok = Token{Type: ILLEGAL, Literal: "unterminated char literal", Line: line, Column: column}
		} else {
			tok = Token{Type: CHAR, Literal: str, Line: line, Column: column}
		}
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: line, Column: column}
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			tok.Line = line
			tok.Column = column
			return tok // readIdentifier already advanced
		} else if isDigit(l.ch) {
			tok.Literal = l.readNumber()
			if containsDot(tok.Literal) {
				tok.Type = FLOAT
			} else {
				tok.Type = INT
			}
			tok.Line = line
			tok.Column = column
			return tok // readNumber already advanced
		}
		tok = Token{Type: ILLEGAL, Literal: l.currentChar(), Line: line, Column: column}
	}

	l.readChar()
	return tok
}

// newToken creates a new token with the given parameters
func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a number (integer or float)
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	// Decimal point only counts with a digit after it, so `3.` stays
	// an INT followed by DOT
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume the '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position]
}

// readString reads a double-quoted string literal with escape sequences.
// Returns the string content and whether the closing quote was found.
func (l *Lexer) readString() (string, bool) {
	var result []byte
	l.readChar() // skip opening quote

	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar() // consume backslash
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case 'r':
				result = append(result, '\r')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			case '\'':
				result = append(result, '\'')
			default:
				// Unknown escape, keep as-is
				result = append(result, '\\')
				result = append(result, l.ch)
			}
		} else {
			result = append(result, l.currentChar()...)
		}
		l.readChar()
	}

	terminated := l.ch == '"'
	return string(result), terminated
}

// readCharLiteral reads a single-quoted char literal.
// Returns the character content and whether the closing quote was found.
func (l *Lexer) readCharLiteral() (string, bool) {
	var result []byte
	l.readChar() // skip opening quote

	for l.ch != '\'' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar() // consume backslash
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case 'r':
				result = append(result, '\r')
			case '\\':
				result = append(result, '\\')
			case '\'':
				result = append(result, '\'')
			default:
				result = append(result, '\\')
				result = append(result, l.ch)
			}
		} else {
			result = append(result, l.currentChar()...)
		}
		l.readChar()
	}

	terminated := l.ch == '\''
	return string(result), terminated
}

// isLetter reports whether ch can start or continue an identifier
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit reports whether ch is an ASCII digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// containsDot reports whether a number literal has a decimal point
func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}
