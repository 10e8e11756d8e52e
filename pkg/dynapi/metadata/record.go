// Package metadata builds the structured records attached to endpoint types,
// their fields, methods and method parameters.
package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a record type such as PostMapping or ApiOperation
type Kind string

// ValueKind is the type of a record member value
type ValueKind int

const (
	StringValueKind ValueKind = iota
	StringsValueKind
	BoolValueKind
	IntValueKind
	EnumValueKind
	EnumsValueKind
	TypeValueKind
	RecordValueKind
	RecordsValueKind
)

// String returns the string representation of the value kind
func (k ValueKind) String() string {
	switch k {
	case StringValueKind:
		return "string"
	case StringsValueKind:
		return "string[]"
	case BoolValueKind:
		return "bool"
	case IntValueKind:
		return "int"
	case EnumValueKind:
		return "enum"
	case EnumsValueKind:
		return "enum[]"
	case TypeValueKind:
		return "type"
	case RecordValueKind:
		return "record"
	case RecordsValueKind:
		return "record[]"
	default:
		return "unknown"
	}
}

// Value is a typed record member value
type Value struct {
	kind    ValueKind
	str     string
	strs    []string
	boolean bool
	integer int
	records []Record
}

func StringValue(s string) Value { return Value{kind: StringValueKind, str: s} }

func StringsValue(s ...string) Value {
	return Value{kind: StringsValueKind, strs: append([]string{}, s...)}
}

func BoolValue(b bool) Value { return Value{kind: BoolValueKind, boolean: b} }

func IntValue(i int) Value { return Value{kind: IntValueKind, integer: i} }

// EnumValue holds an enum constant name such as "POST"
func EnumValue(name string) Value { return Value{kind: EnumValueKind, str: name} }

func EnumsValue(names ...string) Value {
	return Value{kind: EnumsValueKind, strs: append([]string{}, names...)}
}

// TypeValue holds a reference to a type by name
func TypeValue(typeName string) Value { return Value{kind: TypeValueKind, str: typeName} }

func RecordValue(r Record) Value { return Value{kind: RecordValueKind, records: []Record{r}} }

func RecordsValue(r ...Record) Value {
	return Value{kind: RecordsValueKind, records: append([]Record{}, r...)}
}

// Kind returns the value kind
func (v Value) Kind() ValueKind { return v.kind }

// Interface returns the value as a plain Go value
func (v Value) Interface() any {
	switch v.kind {
	case StringValueKind, EnumValueKind, TypeValueKind:
		return v.str
	case StringsValueKind, EnumsValueKind:
		return append([]string{}, v.strs...)
	case BoolValueKind:
		return v.boolean
	case IntValueKind:
		return v.integer
	case RecordValueKind:
		return v.records[0]
	case RecordsValueKind:
		return append([]Record{}, v.records...)
	}
	return nil
}

// String formats the value the way it would appear in an annotation
func (v Value) String() string {
	switch v.kind {
	case StringValueKind:
		return strconv.Quote(v.str)
	case StringsValueKind:
		quoted := make([]string, len(v.strs))
		for i, s := range v.strs {
			quoted[i] = strconv.Quote(s)
		}
		return "{" + strings.Join(quoted, ", ") + "}"
	case EnumValueKind:
		return v.str
	case EnumsValueKind:
		return "{" + strings.Join(v.strs, ", ") + "}"
	case TypeValueKind:
		return v.str + ".class"
	case BoolValueKind:
		return strconv.FormatBool(v.boolean)
	case IntValueKind:
		return strconv.Itoa(v.integer)
	case RecordValueKind:
		return v.records[0].String()
	case RecordsValueKind:
		parts := make([]string, len(v.records))
		for i, r := range v.records {
			parts[i] = r.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

// Member is one named value of a record
type Member struct {
	Name  string
	Value Value
}

// Record is an immutable structured annotation
type Record struct {
	kind    Kind
	members []Member
}

// Kind returns the record kind
func (r Record) Kind() Kind { return r.kind }

// Members returns the members in insertion order
func (r Record) Members() []Member {
	return append([]Member{}, r.members...)
}

// Get returns the member value by name
func (r Record) Get(name string) (Value, bool) {
	for _, m := range r.members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether the record carries a member
func (r Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// GetString returns a string, enum or type member with optional default
func (r Record) GetString(name string, defaultValue ...string) string {
	if v, ok := r.Get(name); ok {
		switch v.kind {
		case StringValueKind, EnumValueKind, TypeValueKind:
			return v.str
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetStrings returns a string-array or enum-array member with optional default
func (r Record) GetStrings(name string, defaultValue ...[]string) []string {
	if v, ok := r.Get(name); ok {
		switch v.kind {
		case StringsValueKind, EnumsValueKind:
			return append([]string{}, v.strs...)
		case StringValueKind, EnumValueKind:
			return []string{v.str}
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// GetBool returns a boolean member with optional default
func (r Record) GetBool(name string, defaultValue ...bool) bool {
	if v, ok := r.Get(name); ok && v.kind == BoolValueKind {
		return v.boolean
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer member with optional default
func (r Record) GetInt(name string, defaultValue ...int) int {
	if v, ok := r.Get(name); ok && v.kind == IntValueKind {
		return v.integer
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetRecord returns a nested record member
func (r Record) GetRecord(name string) (Record, bool) {
	if v, ok := r.Get(name); ok && v.kind == RecordValueKind {
		return v.records[0], true
	}
	return Record{}, false
}

// GetRecords returns a nested record-array member
func (r Record) GetRecords(name string) []Record {
	if v, ok := r.Get(name); ok {
		switch v.kind {
		case RecordsValueKind:
			return append([]Record{}, v.records...)
		case RecordValueKind:
			return []Record{v.records[0]}
		}
	}
	return nil
}

// String renders the record as @Kind(name=value, ...)
func (r Record) String() string {
	if len(r.members) == 0 {
		return "@" + string(r.kind)
	}
	parts := make([]string, len(r.members))
	for i, m := range r.members {
		parts[i] = fmt.Sprintf("%s=%s", m.Name, m.Value)
	}
	return fmt.Sprintf("@%s(%s)", r.kind, strings.Join(parts, ", "))
}

// Builder assembles a Record member by member
type Builder struct {
	kind    Kind
	members []Member
}

// Create starts a record of the given kind
func Create(kind Kind) *Builder {
	return &Builder{kind: kind}
}

// Add sets a member; adding an existing name replaces its value in place
func (b *Builder) Add(name string, value Value) *Builder {
	for i := range b.members {
		if b.members[i].Name == name {
			b.members[i].Value = value
			return b
		}
	}
	b.members = append(b.members, Member{Name: name, Value: value})
	return b
}

func (b *Builder) String(name, value string) *Builder { return b.Add(name, StringValue(value)) }

func (b *Builder) Strings(name string, values ...string) *Builder {
	return b.Add(name, StringsValue(values...))
}

func (b *Builder) Bool(name string, value bool) *Builder { return b.Add(name, BoolValue(value)) }

func (b *Builder) Int(name string, value int) *Builder { return b.Add(name, IntValue(value)) }

func (b *Builder) Enum(name, value string) *Builder { return b.Add(name, EnumValue(value)) }

func (b *Builder) Enums(name string, values ...string) *Builder {
	return b.Add(name, EnumsValue(values...))
}

func (b *Builder) Type(name, typeName string) *Builder { return b.Add(name, TypeValue(typeName)) }

func (b *Builder) Record(name string, r Record) *Builder { return b.Add(name, RecordValue(r)) }

func (b *Builder) Records(name string, r ...Record) *Builder {
	return b.Add(name, RecordsValue(r...))
}

// StringIf adds a string member only when value is non-empty
func (b *Builder) StringIf(name, value string) *Builder {
	if value == "" {
		return b
	}
	return b.String(name, value)
}

// StringsIf adds a string-array member only when values is non-empty
func (b *Builder) StringsIf(name string, values []string) *Builder {
	if len(values) == 0 {
		return b
	}
	return b.Strings(name, values...)
}

// Build returns the finished record. The builder may keep being used;
// later additions do not affect records already built.
func (b *Builder) Build() Record {
	return Record{kind: b.kind, members: append([]Member{}, b.members...)}
}
