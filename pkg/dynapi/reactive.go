package dynapi

import (
	"context"
	"mime/multipart"
)

// ServerRequest is the framework-neutral view of an inbound HTTP request
// passed to reactive accessor methods and used for argument binding
type ServerRequest interface {
	Context() context.Context
	Method() string
	Path() string

	Param(name string) string
	QueryParam(name string) string
	QueryParams() map[string][]string
	Header(name string) string
	Cookie(name string) (string, bool)

	Body() ([]byte, error)
	FormValue(name string) string
	FormFile(name string) (*multipart.FileHeader, error)

	Get(key string) any
	Set(key string, val any)
}

// Mono is a deferred computation producing at most one value. The zero
// Mono completes empty.
type Mono struct {
	run func(ctx context.Context) (any, error)
}

// MonoJust completes with v
func MonoJust(v any) Mono {
	return Mono{run: func(context.Context) (any, error) { return v, nil }}
}

// MonoError fails with err
func MonoError(err error) Mono {
	return Mono{run: func(context.Context) (any, error) { return nil, err }}
}

// MonoFrom defers fn until the Mono is blocked on
func MonoFrom(fn func(ctx context.Context) (any, error)) Mono {
	return Mono{run: fn}
}

// Block runs the computation and returns its value
func (m Mono) Block(ctx context.Context) (any, error) {
	if m.run == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.run(ctx)
}

// Empty reports whether the Mono has no computation attached
func (m Mono) Empty() bool { return m.run == nil }

// Flux is a deferred computation producing any number of values. The zero
// Flux completes without emitting.
type Flux struct {
	run func(ctx context.Context, emit func(any) error) error
}

// FluxJust emits each value in order
func FluxJust(values ...any) Flux {
	return Flux{run: func(ctx context.Context, emit func(any) error) error {
		for _, v := range values {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := emit(v); err != nil {
				return err
			}
		}
		return nil
	}}
}

// FluxError fails with err before emitting
func FluxError(err error) Flux {
	return Flux{run: func(context.Context, func(any) error) error { return err }}
}

// FluxFrom defers fn until the Flux is subscribed
func FluxFrom(fn func(ctx context.Context, emit func(any) error) error) Flux {
	return Flux{run: fn}
}

// Subscribe runs the computation, calling emit for each value. An error
// from emit stops the stream and is returned.
func (f Flux) Subscribe(ctx context.Context, emit func(any) error) error {
	if f.run == nil {
		return nil
	}
	return f.run(ctx, emit)
}

// Collect gathers every emitted value
func (f Flux) Collect(ctx context.Context) ([]any, error) {
	var out []any
	err := f.Subscribe(ctx, func(v any) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// Empty reports whether the Flux has no computation attached
func (f Flux) Empty() bool { return f.run == nil }
