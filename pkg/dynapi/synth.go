package dynapi

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/internal/convert"
	"github.com/toyz/dynapi/internal/errors"
)

// Body is the executable part of a method. args are already checked
// against the method's parameter types.
type Body func(receiver *Instance, args []any) (any, error)

// forwardingBody builds the body shared by every synthetic method: read the
// dispatcher field of the receiver and hand the call over. Without a
// dispatcher the zero value of the return type is returned.
func forwardingBody(typeName, dispatcherField string, m *MethodDef) Body {
	name := m.name
	paramTypes := m.ParamTypes()
	returns := m.returns

	return func(receiver *Instance, args []any) (any, error) {
		if dispatcherField == "" {
			return zeroResult(returns), nil
		}
		value, err := receiver.Field(dispatcherField)
		if err != nil {
			return nil, err
		}
		d, _ := value.(Dispatcher)
		if d == nil {
			return zeroResult(returns), nil
		}

		method, err := receiver.Type().LookupMethod(name, paramTypes...)
		if err != nil {
			return nil, err
		}
		result, err := d.Dispatch(receiver, method, args)
		if err != nil {
			return nil, err
		}
		return castResult(typeName, method.Signature(), result, returns)
	}
}

// castResult converts a dispatcher result to the declared return type
func castResult(typeName, signature string, result any, returns reflect.Type) (any, error) {
	if returns == VoidType {
		return nil, nil
	}
	v, err := convert.Assign(result, returns)
	if err != nil {
		return nil, errors.NewDispatchError(typeName, signature, "result does not match return type "+TypeName(returns)).
			WithCause(err)
	}
	return v.Interface(), nil
}

func zeroResult(t reflect.Type) any {
	if t == nil || t == VoidType {
		return nil
	}
	return reflect.Zero(t).Interface()
}

// trap wraps body so failures are logged before they reach the caller.
// Errors come back unchanged; panics are logged and re-raised.
func trap(logger *zap.Logger, typeName, signature string, body Body) Body {
	return func(receiver *Instance, args []any) (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("method panicked",
					zap.String("type", typeName),
					zap.String("method", signature),
					zap.Any("panic", r))
				panic(r)
			}
		}()

		result, err = body(receiver, args)
		if err != nil {
			logger.Error("method failed",
				zap.String("type", typeName),
				zap.String("method", signature),
				zap.Error(err))
		}
		return result, err
	}
}
