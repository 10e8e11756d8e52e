package dynapi

// Dispatcher receives every call made on a synthesized method: the instance
// the method was called on, the resolved method descriptor and the
// arguments in declaration order. The returned value is cast to the
// method's declared return type.
type Dispatcher interface {
	Dispatch(receiver *Instance, method *Method, args []any) (any, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface
type DispatcherFunc func(receiver *Instance, method *Method, args []any) (any, error)

// Dispatch calls f
func (f DispatcherFunc) Dispatch(receiver *Instance, method *Method, args []any) (any, error) {
	return f(receiver, method, args)
}

// MethodTable dispatches by method name. Calls to names without an entry
// fall through to Fallback, or return nil when there is none.
type MethodTable struct {
	Handlers map[string]DispatcherFunc
	Fallback Dispatcher
}

// Dispatch implements Dispatcher
func (t *MethodTable) Dispatch(receiver *Instance, method *Method, args []any) (any, error) {
	if h, ok := t.Handlers[method.Name()]; ok {
		return h(receiver, method, args)
	}
	if t.Fallback != nil {
		return t.Fallback.Dispatch(receiver, method, args)
	}
	return nil, nil
}

// Handle registers fn for a method name and returns the table
func (t *MethodTable) Handle(name string, fn DispatcherFunc) *MethodTable {
	if t.Handlers == nil {
		t.Handlers = make(map[string]DispatcherFunc)
	}
	t.Handlers[name] = fn
	return t
}

// As returns v as a T, or the zero T when v holds something else
func As[T any](v any) T {
	t, _ := v.(T)
	return t
}

// Arg returns args[i] as a T. Missing or mistyped arguments give the zero T.
func Arg[T any](args []any, i int) T {
	if i < 0 || i >= len(args) {
		var zero T
		return zero
	}
	return As[T](args[i])
}
