// Package declparse parses single field and method declarations written in
// a small Java-like syntax:
//
//	public int k = 3;
//	public String greet(String name) { return "hello " + name; }
//
// Method bodies support return, print/println and assignments to fields
// through this. Expressions are literals, identifiers, this.field, and +.
package declparse

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Declaration is a parsed field or method declaration
type Declaration struct {
	Pos lexer.Position

	Modifiers []string    `parser:"@('public' | 'private' | 'protected' | 'static' | 'final')*"`
	Type      *TypeRef    `parser:"@@"`
	Name      string      `parser:"@Ident"`
	Method    *MethodTail `parser:"( @@"`
	Field     *FieldTail  `parser:"| @@ )"`
}

// TypeRef is a possibly composite type name
type TypeRef struct {
	Prefix []string `parser:"( @'*' | @'[' ']' )*"`
	Map    *MapRef  `parser:"( @@"`
	Name   []string `parser:"| @Ident ( '.' @Ident )* )"`
	Suffix []string `parser:"( @'[' ']' )*"`
}

// MapRef is map[K]V
type MapRef struct {
	Key   *TypeRef `parser:"'map' '[' @@ ']'"`
	Value *TypeRef `parser:"@@"`
}

// MethodTail is everything after a method name
type MethodTail struct {
	Params []*Param `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
	Body   []*Stmt  `parser:"'{' @@* '}'"`
}

// Param is one method parameter
type Param struct {
	Final bool     `parser:"@'final'?"`
	Type  *TypeRef `parser:"@@"`
	Name  string   `parser:"@Ident"`
}

// FieldTail is everything after a field name
type FieldTail struct {
	Init *Expr  `parser:"( '=' @@ )?"`
	End  string `parser:"@';'"`
}

// Stmt is a statement in a method body
type Stmt struct {
	Pos lexer.Position

	Return *ReturnStmt `parser:"  @@"`
	Print  *PrintStmt  `parser:"| @@"`
	Assign *AssignStmt `parser:"| @@"`
}

// ReturnStmt is `return [expr];`
type ReturnStmt struct {
	Keyword string `parser:"@'return'"`
	Value   *Expr  `parser:"@@? ';'"`
}

// PrintStmt is `print(args...);` or `println(args...);`
type PrintStmt struct {
	Func string  `parser:"@('print' | 'println')"`
	Args []*Expr `parser:"'(' ( @@ ( ',' @@ )* )? ')' ';'"`
}

// AssignStmt is `this.field = expr;`
type AssignStmt struct {
	Field string `parser:"'this' '.' @Ident"`
	Value *Expr  `parser:"'=' @@ ';'"`
}

// Expr is a chain of terms joined by +
type Expr struct {
	Left  *Term   `parser:"@@"`
	Right []*Term `parser:"( '+' @@ )*"`
}

// Term is a single operand
type Term struct {
	String *string  `parser:"  @String"`
	Float  *float64 `parser:"| @Float"`
	Int    *int64   `parser:"| @Int"`
	Bool   *string  `parser:"| @('true' | 'false')"`
	Null   bool     `parser:"| @'null'"`
	Field  *string  `parser:"| 'this' '.' @Ident"`
	Ident  *string  `parser:"| @Ident"`
	Group  *Expr    `parser:"| '(' @@ ')'"`
}

// IsMethod reports whether the declaration is a method
func (d *Declaration) IsMethod() bool { return d.Method != nil }

// Visibility returns the access modifier, or "" when none was written
func (d *Declaration) Visibility() string {
	for _, m := range d.Modifiers {
		switch m {
		case "public", "private", "protected":
			return m
		}
	}
	return ""
}

// HasModifier reports whether mod was written
func (d *Declaration) HasModifier(mod string) bool {
	for _, m := range d.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// String renders the type name the way the type resolver expects it
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range t.Prefix {
		if p == "*" {
			b.WriteString("*")
		} else {
			b.WriteString("[]")
		}
	}
	if t.Map != nil {
		b.WriteString("map[")
		b.WriteString(t.Map.Key.String())
		b.WriteString("]")
		b.WriteString(t.Map.Value.String())
	} else {
		b.WriteString(strings.Join(t.Name, "."))
	}
	for range t.Suffix {
		b.WriteString("[]")
	}
	return b.String()
}
