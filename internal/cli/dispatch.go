package cli

import (
	"encoding/json"
	"reflect"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

var (
	monoType = reflect.TypeFor[dynapi.Mono]()
	fluxType = reflect.TypeFor[dynapi.Flux]()
)

// previewDispatcher answers every call without business logic. A method
// bound with a json payload returns that payload; anything else echoes
// the call back.
type previewDispatcher struct {
	logger *zap.Logger
}

func newPreviewDispatcher(logger *zap.Logger) *previewDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &previewDispatcher{logger: logger.Named("preview")}
}

// Dispatch implements dynapi.Dispatcher
func (p *previewDispatcher) Dispatch(receiver *dynapi.Instance, method *dynapi.Method, args []any) (any, error) {
	p.logger.Debug("dispatch",
		zap.String("type", receiver.Type().Name()),
		zap.String("method", method.Signature()),
		zap.Int("args", len(args)))

	payload, ok := boundPayload(method)
	if !ok {
		payload = map[string]any{
			"type":   receiver.Type().Name(),
			"method": method.Signature(),
			"args":   args,
		}
	}
	return shape(method.ReturnType(), payload), nil
}

// boundPayload decodes the json of the method binding, falling back to the
// binding of the owning type
func boundPayload(m *dynapi.Method) (any, bool) {
	record, ok := m.Annotations().Get(metadata.WebBound)
	if !ok && m.Owner() != nil {
		record, ok = m.Owner().Record(metadata.WebBound)
	}
	if !ok {
		return nil, false
	}
	b, ok := metadata.BindingOf(record)
	if !ok || b.JSON == "" {
		return nil, false
	}
	var payload any
	if err := json.Unmarshal([]byte(b.JSON), &payload); err != nil {
		return nil, false
	}
	return payload, true
}

// shape fits payload to the declared return type. Types the payload cannot
// become get their zero value.
func shape(t reflect.Type, payload any) any {
	switch {
	case t == nil || t == dynapi.VoidType:
		return nil
	case t == monoType:
		return dynapi.MonoJust(payload)
	case t == fluxType:
		return dynapi.FluxJust(payload)
	case t.Kind() == reflect.Interface:
		return payload
	case t.Kind() == reflect.String:
		if s, ok := payload.(string); ok {
			return s
		}
		text, err := json.Marshal(payload)
		if err != nil {
			return nil
		}
		return string(text)
	}
	if payload != nil && reflect.TypeOf(payload).ConvertibleTo(t) {
		return payload
	}
	return nil
}
