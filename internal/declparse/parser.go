package declparse

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var declLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Float", Pattern: `-?\d+\.\d+`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[\[\]{}().,;=+*]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[Declaration](
	participle.Lexer(declLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse parses one declaration
func Parse(src string) (*Declaration, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("empty declaration")
	}
	decl, err := parser.ParseString("", src)
	if err != nil {
		return nil, err
	}
	return decl, nil
}

// ParseField parses a declaration that must be a field
func ParseField(src string) (*Declaration, error) {
	decl, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if decl.IsMethod() {
		return nil, fmt.Errorf("%s: expected a field declaration, found method %s", decl.Pos, decl.Name)
	}
	return decl, nil
}

// ParseMethod parses a declaration that must be a method
func ParseMethod(src string) (*Declaration, error) {
	decl, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if !decl.IsMethod() {
		return nil, fmt.Errorf("%s: expected a method declaration, found field %s", decl.Pos, decl.Name)
	}
	return decl, nil
}
