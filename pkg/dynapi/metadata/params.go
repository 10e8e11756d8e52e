package metadata

import (
	"strings"

	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
)

var sourceKinds = map[descriptor.Source]Kind{
	descriptor.SourceCookie:    CookieValue,
	descriptor.SourceMatrix:    MatrixVariable,
	descriptor.SourcePath:      PathVariable,
	descriptor.SourceAttribute: RequestAttribute,
	descriptor.SourceBody:      RequestBody,
	descriptor.SourceHeader:    RequestHeader,
	descriptor.SourceParam:     RequestParam,
	descriptor.SourcePart:      RequestPart,
}

// SourceKind returns the record kind for a parameter source
func SourceKind(s descriptor.Source) Kind {
	if kind, ok := sourceKinds[s]; ok {
		return kind
	}
	return RequestParam
}

// SourceOf is the inverse of SourceKind
func SourceOf(k Kind) (descriptor.Source, bool) {
	for source, kind := range sourceKinds {
		if kind == k {
			return source, true
		}
	}
	return 0, false
}

// ParamSource builds the source record for a parameter. Body parameters
// carry only the required flag; sources that accept defaults carry the
// trimmed default when one is given.
func ParamSource(p descriptor.Parameter) Record {
	b := Create(SourceKind(p.Source))
	if p.Source != descriptor.SourceBody {
		b.String("name", p.Name)
		if p.Source.AcceptsDefault() && strings.TrimSpace(p.Default) != "" {
			b.String("defaultValue", strings.TrimSpace(p.Default))
		}
	}
	return b.Bool("required", p.Required).Build()
}

// NewParamName records the declared parameter name for callers that read
// parameters positionally
func NewParamName(name string) Record {
	return Create(ParamName).String("name", name).Build()
}

// ParamRecords returns the source record followed by the name record
func ParamRecords(p descriptor.Parameter) []Record {
	return []Record{ParamSource(p), NewParamName(p.Name)}
}

// ParameterOf rebuilds a parameter descriptor from its records. The type
// is not recorded and must come from the method signature.
func ParameterOf(s *Set) (descriptor.Parameter, bool) {
	var p descriptor.Parameter
	found := false
	for _, r := range s.All() {
		if source, ok := SourceOf(r.Kind()); ok {
			p.Source = source
			p.Name = r.GetString("name", p.Name)
			p.Default = r.GetString("defaultValue")
			p.Required = r.GetBool("required", true)
			found = true
		}
		if r.Kind() == ParamName {
			p.Name = r.GetString("name")
			found = true
		}
	}
	return p, found
}
