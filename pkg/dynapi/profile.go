package dynapi

import (
	"fmt"

	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

// DispatcherFieldName is the inherited field that holds an instance's dispatcher
const DispatcherFieldName = "handler"

// Accessor method names on reactive profiles
const (
	SingleAccessorName = "mono"
	MultiAccessorName  = "flux"
)

// BaseField is a field every type derived from a base inherits
type BaseField struct {
	Name     string
	TypeName string
}

// BaseType is the fixed parent of a definition. It contributes inherited
// fields and decides which constructors the materialized type offers.
type BaseType struct {
	Name string
	// Fields are inherited in order
	Fields []BaseField
	// DispatcherField names the inherited field read by synthesized bodies;
	// empty means synthesized methods always return zero values
	DispatcherField string
	// DispatcherConstructor is set when the base itself offers a
	// constructor taking a dispatcher
	DispatcherConstructor bool
}

// HasDispatcher reports whether types derived from b can carry a dispatcher
func (b *BaseType) HasDispatcher() bool {
	return b.DispatcherField != ""
}

// Builtin base type names
const (
	BaseObject          = "object"
	BaseEndpointAPI     = "dynapi.EndpointAPI"
	BaseReactiveHandler = "dynapi.ReactiveHandler"
	BaseWebFluxEndpoint = "dynapi.WebFluxEndpointAPI"
)

func builtinBases() []*BaseType {
	dispatcherBase := func(name string) *BaseType {
		return &BaseType{
			Name:                  name,
			Fields:                []BaseField{{Name: DispatcherFieldName, TypeName: "Dispatcher"}},
			DispatcherField:       DispatcherFieldName,
			DispatcherConstructor: true,
		}
	}
	return []*BaseType{
		{Name: BaseObject},
		dispatcherBase(BaseEndpointAPI),
		dispatcherBase(BaseReactiveHandler),
		dispatcherBase(BaseWebFluxEndpoint),
	}
}

// ProfileName selects a profile when opening a session
type ProfileName string

const (
	// ProfileObject derives from object: no dispatcher, synthesized methods return zero values
	ProfileObject ProfileName = "object"
	// ProfileEndpoint derives from EndpointAPI and supports route-mapped methods
	ProfileEndpoint ProfileName = "endpoint"
	// ProfileReactive derives from ReactiveHandler and supports mono/flux accessors
	ProfileReactive ProfileName = "reactive"
	// ProfileWebFlux derives from WebFluxEndpointAPI: route-mapped methods plus accessors
	ProfileWebFlux ProfileName = "webflux"
)

// Profile is the configuration applied to a session: which base type it
// derives from, which records every definition starts with, and whether
// the reactive accessor operations are available
type Profile struct {
	Name      ProfileName
	Base      string
	Accessors bool
	// Records returns the type-level records a new definition starts with
	Records func(typeName string) []metadata.Record
}

func (p *Profile) initialRecords(typeName string) []metadata.Record {
	if p.Records == nil {
		return nil
	}
	return p.Records(typeName)
}

func builtinProfiles() []*Profile {
	return []*Profile{
		{Name: ProfileObject, Base: BaseObject},
		{Name: ProfileEndpoint, Base: BaseEndpointAPI},
		{Name: ProfileReactive, Base: BaseReactiveHandler, Accessors: true},
		{
			Name:      ProfileWebFlux,
			Base:      BaseWebFluxEndpoint,
			Accessors: true,
			Records: func(typeName string) []metadata.Record {
				return []metadata.Record{metadata.NewController(simpleName(typeName))}
			},
		},
	}
}

// ParseProfile validates a profile name read from configuration
func ParseProfile(s string) (ProfileName, error) {
	switch p := ProfileName(s); p {
	case ProfileObject, ProfileEndpoint, ProfileReactive, ProfileWebFlux:
		return p, nil
	case "":
		return ProfileEndpoint, nil
	default:
		return "", fmt.Errorf("unknown profile: %s", s)
	}
}
