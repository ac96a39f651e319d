package ast

import (
	"testing"

	"github.com/sagelang/sage/pkg/sage/lexer"
)

func TestString(t *testing.T) {
	program := &Program{
		Statements: []Statement{
			&LetStatement{
				Token: lexer.Token{Type: lexer.LET, Literal: "let"},
				Name: &Identifier{
					Token: lexer.Token{Type: lexer.IDENT, Literal: "myVar"},
					Value: "myVar",
				},
				Mutable: true,
				Type: &TypeAnnotation{
					Token: lexer.Token{Type: lexer.IDENT, Literal: "int"},
					Name:  "int",
				},
				Value: &Identifier{
					Token: lexer.Token{Type: lexer.IDENT, Literal: "anotherVar"},
					Value: "anotherVar",
				},
			},
		},
	}

	if program.String() != "let myVar: int = anotherVar;" {
		t.Errorf("program.String() wrong. got=%q", program.String())
	}
}

func TestTypeAnnotationString(t *testing.T) {
	tests := []struct {
		ta       *TypeAnnotation
		expected string
	}{
		{
			&TypeAnnotation{Name: "int"},
			"int",
		},
		{
			&TypeAnnotation{Name: "string", Nullable: true},
			"string?",
		},
		{
			&TypeAnnotation{
				Name:       "Array",
				TypeParams: []*TypeAnnotation{{Name: "int"}},
			},
			"Array<int>",
		},
		{
			&TypeAnnotation{
				Name: "Array",
				TypeParams: []*TypeAnnotation{
					{Name: "Array", TypeParams: []*TypeAnnotation{{Name: "float"}}},
				},
				Nullable: true,
			},
			"Array<Array<float>>?",
		},
	}

	for i, tt := range tests {
		if got := tt.ta.String(); got != tt.expected {
			t.Errorf("tests[%d] - String() wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestFunctionDeclarationString(t *testing.T) {
	fd := &FunctionDeclaration{
		Token: lexer.Token{Type: lexer.FUNC, Literal: "func"},
		Name:  &Identifier{Value: "greet"},
		Params: []*FunctionParameter{
			{
				Name: &Identifier{Value: "name"},
				Type: &TypeAnnotation{Name: "string"},
				Default: &StringLiteral{
					Token: lexer.Token{Type: lexer.STRING, Literal: "World"},
					Value: "World",
				},
			},
		},
		ReturnType: &TypeAnnotation{Name: "string"},
		Body: &BlockStatement{
			Statements: []Statement{
				&ReturnStatement{
					Token: lexer.Token{Type: lexer.RETURN, Literal: "return"},
					ReturnValue: &Identifier{
						Token: lexer.Token{Type: lexer.IDENT, Literal: "name"},
						Value: "name",
					},
				},
			},
		},
	}

	expected := `func greet(name: string = "World") -> string { return name; }`
	if got := fd.String(); got != expected {
		t.Errorf("String() wrong.\nexpected=%q\ngot=%q", expected, got)
	}
}
