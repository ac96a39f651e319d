// Package errors provides structured diagnostic types for the Sage language.
//
// This package defines SageError, a unified diagnostic type shared by the
// lexer, parser, type checker, and evaluator, with rich metadata for
// display, JSON output, and programmatic handling.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes diagnostics for filtering and templating.
type ErrorClass string

const (
	ClassLexical   ErrorClass = "lexical"   // Unrecognized input characters
	ClassParse     ErrorClass = "parse"     // Syntax errors
	ClassType      ErrorClass = "type"      // Static type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Not found/defined
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassConst     ErrorClass = "const"     // Writes to immutable bindings
	ClassNull      ErrorClass = "null"      // Null dereference
	ClassCall      ErrorClass = "call"      // Calling non-callable values
	ClassState     ErrorClass = "state"     // Invalid session state
)

// Severity ranks a diagnostic for display and for success reporting.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// SageError represents any diagnostic from scanning, parsing, checking,
// or evaluation.
type SageError struct {
	Class    ErrorClass     `json:"class"`           // Diagnostic category
	Code     string         `json:"code,omitempty"`  // Catalog code (e.g., "TYPE-0001")
	Severity Severity       `json:"severity"`        // error or warning
	Message  string         `json:"message"`         // Human-readable message
	Hints    []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line     int            `json:"line"`            // 1-based line (0 if unknown)
	Column   int            `json:"column"`          // 1-based column (0 if unknown)
	File     string         `json:"file,omitempty"`  // File path (if known)
	Data     map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *SageError) Error() string {
	return e.String()
}

// String returns a formatted single-report representation of the diagnostic.
func (e *SageError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *SageError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassLexical:
		sb.WriteString("Lexical error")
	case ClassParse:
		sb.WriteString("Syntax error")
	case ClassType:
		sb.WriteString("Type error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the diagnostic as JSON bytes.
func (e *SageError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ToJSONIndent returns the diagnostic as indented JSON bytes.
func (e *SageError) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// WithFile returns a copy of the diagnostic with the file path set.
func (e *SageError) WithFile(file string) *SageError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the diagnostic with line and column set.
func (e *SageError) WithPosition(line, column int) *SageError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsStatic reports whether the diagnostic was produced before evaluation
// (scanning, parsing, or type checking).
func (e *SageError) IsStatic() bool {
	switch e.Class {
	case ClassLexical, ClassParse, ClassType:
		return true
	}
	return false
}

// IsRuntime reports whether the diagnostic came from the evaluator.
func (e *SageError) IsRuntime() bool {
	return !e.IsStatic()
}

// ErrorDef defines a diagnostic in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Diagnostic category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps diagnostic codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Lexical errors (LEX-0xxx)
	// ========================================
	"LEX-0001": {
		Class:    ClassLexical,
		Template: "unrecognized character '{{.Char}}'",
	},

	// ========================================
	// Syntax errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "unterminated string",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "invalid number literal: {{.Literal}}",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "unterminated char literal",
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "invalid assignment target",
		Hints:    []string{"Only a plain variable name can appear left of `=`"},
	},
	"PARSE-0007": {
		Class:    ClassParse,
		Template: "missing type annotation for '{{.Name}}'",
		Hints:    []string{"{{.Keyword}} {{.Name}}: <type> = ..."},
	},

	// ========================================
	// Type errors (TYPE-0xxx)
	// ========================================
	"TYPE-0001": {
		Class:    ClassType,
		Template: "cannot assign {{.Got}} to {{.Want}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "operator '{{.Operator}}' cannot be applied to {{.Left}} and {{.Right}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "unknown type name: {{.Name}}",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "cannot return {{.Got}} from a function returning {{.Want}}",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "argument {{.Index}} to `{{.Function}}`: cannot assign {{.Got}} to {{.Want}}",
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "operator '{{.Operator}}' cannot be applied to {{.Type}}",
	},
	"TYPE-0007": {
		Class:    ClassType,
		Template: "variable '{{.Name}}' is already declared in this scope",
	},

	// ========================================
	// Undefined errors (UNDEF-0xxx)
	// ========================================
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "identifier not found: {{.Name}}",
		// Hint "Did you mean `x`?" added dynamically by fuzzy matching
	},

	// ========================================
	// Arity errors (ARITY-0xxx)
	// ========================================
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "`{{.Function}}` expects {{.Want}} argument(s), got {{.Got}}",
	},

	// ========================================
	// Runtime errors (RUN-0xxx)
	// ========================================
	"RUN-0001": {
		Class:    ClassIndex,
		Template: "index {{.Index}} out of bounds (length {{.Length}})",
	},
	"RUN-0002": {
		Class:    ClassConst,
		Template: "cannot reassign constant '{{.Name}}'",
	},
	"RUN-0003": {
		Class:    ClassNull,
		Template: "cannot access property '{{.Property}}' of null",
	},
	"RUN-0004": {
		Class:    ClassCall,
		Template: "cannot call {{.Got}} as a function",
		Hints:    []string{"Only functions can be called with parentheses"},
	},
	"RUN-0005": {
		Class:    ClassOperator,
		Template: "unknown operator: {{.Left}} {{.Operator}} {{.Right}}",
	},
	"RUN-0006": {
		Class:    ClassOperator,
		Template: "division by zero",
	},
	"RUN-0007": {
		Class:    ClassType,
		Template: "argument to `{{.Function}}` not supported, got {{.Got}}",
	},
	"RUN-0008": {
		Class:    ClassOperator,
		Template: "index operator not supported: {{.Left}}[{{.Right}}]",
		Hints:    []string{"Arrays can be indexed with integers"},
	},
	"RUN-0009": {
		Class:    ClassOperator,
		Template: "'{{.Operator}}' requires a variable operand",
	},
	"RUN-0010": {
		Class:    ClassOperator,
		Template: "unknown operator: {{.Operator}}{{.Type}}",
	},
}

// New creates a SageError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *SageError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &SageError{
			Class:    ClassState,
			Code:     code,
			Severity: SeverityError,
			Message:  msg,
			Data:     data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &SageError{
		Class:    def.Class,
		Code:     code,
		Severity: SeverityError,
		Message:  msg,
		Hints:    hints,
		Data:     data,
	}
}

// NewWithPosition creates a SageError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *SageError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates a simple diagnostic without using the catalog.
func NewSimple(class ErrorClass, message string) *SageError {
	return &SageError{
		Class:    class,
		Severity: SeverityError,
		Message:  message,
	}
}

// NewSimpleWithHints creates a simple diagnostic with hints.
func NewSimpleWithHints(class ErrorClass, message string, hints ...string) *SageError {
	return &SageError{
		Class:    class,
		Severity: SeverityError,
		Message:  message,
		Hints:    hints,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// FuzzyMatch represents a fuzzy match result with its distance.
type FuzzyMatch struct {
	Value    string
	Distance int
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise
// an empty string. The threshold scales with the length of the input.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)

		dist := levenshteinDistance(inputLower, candidateLower)

		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	// Short words (1-3): max 1 edit
	// Medium words (4-6): max 2 edits
	// Longer words (7+): max 3 edits
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	// Don't suggest on exact match or past the threshold
	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}

	return bestMatch
}

// FindTopMatches returns the top N closest matches to the input.
func FindTopMatches(input string, candidates []string, n int) []string {
	if len(input) == 0 || len(candidates) == 0 || n <= 0 {
		return nil
	}

	inputLower := strings.ToLower(input)

	var matches []FuzzyMatch
	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)
		dist := levenshteinDistance(inputLower, candidateLower)
		if dist > 0 {
			matches = append(matches, FuzzyMatch{Value: candidate, Distance: dist})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		if matches[i].Distance <= threshold {
			result = append(result, matches[i].Value)
		}
	}

	return result
}

// NewUndefinedIdentifier creates an undefined identifier error with optional
// fuzzy matching against the identifiers in scope.
func NewUndefinedIdentifier(name string, availableIdentifiers []string) *SageError {
	data := map[string]any{"Name": name}
	err := New("UNDEF-0001", data)

	if suggestion := FindClosestMatch(name, availableIdentifiers); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}

	return err
}

// SageKeywords lists reserved words for fuzzy matching against typos.
var SageKeywords = []string{
	"let", "const", "func", "if", "else", "for", "while", "return",
	"true", "false", "null",
	"int", "float", "string", "bool", "char", "void",
}
