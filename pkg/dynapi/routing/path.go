package routing

import (
	"strings"
)

// PartType is the kind of one segment piece of a path template
type PartType int

const (
	StaticPart PartType = iota
	VariablePart
	WildcardPart
)

// PathPart is one piece of a path template
type PathPart struct {
	Type PartType
	// Value is the literal text of a static part or the variable name
	Value string
	// Pattern is the text after ':' inside a variable, empty when absent
	Pattern string
}

// Path is a route template such as /users/{id} or /files/{*}
type Path string

// Parts splits the template into static text, variables and wildcards.
// An unclosed brace is kept as static text.
func (p Path) Parts() []PathPart {
	path := string(p)
	var parts []PathPart

	i := 0
	for i < len(path) {
		if path[i] != '{' {
			start := i
			for i < len(path) && path[i] != '{' {
				i++
			}
			parts = append(parts, PathPart{Type: StaticPart, Value: path[start:i]})
			continue
		}

		j := strings.IndexByte(path[i:], '}')
		if j < 0 {
			parts = append(parts, PathPart{Type: StaticPart, Value: path[i:]})
			break
		}
		content := path[i+1 : i+j]
		i += j + 1

		if content == "*" || content == "**" {
			parts = append(parts, PathPart{Type: WildcardPart, Value: "*"})
			continue
		}
		name, pattern, _ := strings.Cut(content, ":")
		parts = append(parts, PathPart{Type: VariablePart, Value: name, Pattern: pattern})
	}
	return parts
}

// Variables returns the variable names in order
func (p Path) Variables() []string {
	var names []string
	for _, part := range p.Parts() {
		if part.Type == VariablePart {
			names = append(names, part.Value)
		}
	}
	return names
}

// Colon renders the template in the ":name" style used by echo, gin and
// fiber. wildcard is the text emitted for a wildcard part.
func (p Path) Colon(wildcard string) string {
	var b strings.Builder
	for _, part := range p.Parts() {
		switch part.Type {
		case VariablePart:
			b.WriteString(":" + part.Value)
		case WildcardPart:
			b.WriteString(wildcard)
		default:
			b.WriteString(part.Value)
		}
	}
	return b.String()
}

// Join concatenates a prefix and a path with exactly one slash between
// them. The result always starts with '/'.
func Join(prefix, path string) string {
	prefix = strings.Trim(prefix, "/")
	path = strings.Trim(path, "/")
	switch {
	case prefix == "" && path == "":
		return "/"
	case prefix == "":
		return "/" + path
	case path == "":
		return "/" + prefix
	}
	return "/" + prefix + "/" + path
}
