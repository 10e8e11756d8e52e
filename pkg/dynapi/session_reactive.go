package dynapi

import (
	"fmt"

	"github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

// accessorParam is the single parameter every reactive accessor takes
var accessorParam = descriptor.Parameter{
	Name:   "request",
	Type:   "ServerRequest",
	Source: descriptor.SourceAttribute,
}

// AddSingleAccessor declares mono(ServerRequest) Mono
func (s *Session) AddSingleAccessor(binding *descriptor.Binding) *Session {
	return s.AddReactiveMethod("Mono", SingleAccessorName, binding)
}

// AddMultiAccessor declares flux(ServerRequest) Flux
func (s *Session) AddMultiAccessor(binding *descriptor.Binding) *Session {
	return s.AddReactiveMethod("Flux", MultiAccessorName, binding)
}

// AddReactiveMethod declares name(ServerRequest) returnType forwarding to
// the dispatcher. Only profiles with accessors support it.
func (s *Session) AddReactiveMethod(returnType, name string, binding *descriptor.Binding) *Session {
	if !s.ready() {
		return s
	}
	if !s.def.profile.Accessors {
		return s.fail(errors.NewInvalidDescriptorError("accessor",
			fmt.Errorf("profile %s does not support reactive accessors", s.def.profile.Name)))
	}

	var records []metadata.Record
	if binding != nil {
		if err := binding.Validate(); err != nil {
			return s.fail(errors.NewInvalidDescriptorError("binding", err))
		}
		records = append(records, metadata.Binding(*binding))
	}
	desc := descriptor.Method{Name: name, Returns: returnType}
	return s.synthesize(desc, records, binding, []descriptor.Parameter{accessorParam}, true)
}

// RemoveSingleAccessor drops mono(ServerRequest)
func (s *Session) RemoveSingleAccessor() *Session {
	return s.removeAccessor(SingleAccessorName)
}

// RemoveMultiAccessor drops flux(ServerRequest)
func (s *Session) RemoveMultiAccessor() *Session {
	return s.removeAccessor(MultiAccessorName)
}

func (s *Session) removeAccessor(name string) *Session {
	if !s.ready() {
		return s
	}
	if !s.def.profile.Accessors {
		return s.fail(errors.NewInvalidDescriptorError("accessor",
			fmt.Errorf("profile %s does not support reactive accessors", s.def.profile.Name)))
	}
	return s.RemoveMethod(name, accessorParam.Type)
}
