// Package adapters mounts the routed methods of dynapi instances on echo,
// gin and fiber servers.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/routing"
)

// Server is a web server that can serve dynapi instances
type Server interface {
	// Mount registers every route of inst and returns them
	Mount(inst *dynapi.Instance) ([]routing.Route, error)

	Start(addr string) error
	Stop(ctx context.Context) error

	Name() string
}

// Option configures an adapter
type Option func(*core)

// WithLogger sets the request logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *core) { c.logger = logger }
}

// WithBinder replaces the default argument binder
func WithBinder(b *routing.Binder) Option {
	return func(c *core) { c.binder = b }
}

// New creates the adapter named by kind: echo, gin or fiber
func New(kind string, opts ...Option) (Server, error) {
	switch strings.ToLower(kind) {
	case "echo", "":
		return NewDefaultEchoAdapter(opts...), nil
	case "gin":
		return NewDefaultGinAdapter(opts...), nil
	case "fiber":
		return NewDefaultFiberAdapter(opts...), nil
	default:
		return nil, fmt.Errorf("unknown server adapter: %s", kind)
	}
}

// core is the framework-independent part of every adapter: bind the
// arguments, call the method, resolve reactive results
type core struct {
	binder *routing.Binder
	logger *zap.Logger
}

func newCore(opts []Option) core {
	c := core{binder: routing.NewBinder(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// reply is what an adapter writes back
type reply struct {
	status int
	body   any
	text   bool
}

func (c *core) serve(req dynapi.ServerRequest, inst *dynapi.Instance, route routing.Route) reply {
	r := c.call(req, inst, route)
	fields := []zap.Field{
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
		zap.String("target", route.Method.Signature()),
		zap.Int("status", r.status),
	}
	if r.status >= http.StatusInternalServerError {
		c.logger.Warn("request failed", fields...)
	} else {
		c.logger.Debug("request served", fields...)
	}
	return r
}

func (c *core) call(req dynapi.ServerRequest, inst *dynapi.Instance, route routing.Route) reply {
	args, err := c.binder.Bind(req, route)
	if err != nil {
		return errorReply(http.StatusBadRequest, err)
	}
	out, err := inst.Call(route.Method, args)
	if err != nil {
		return errorReply(http.StatusInternalServerError, err)
	}
	value, err := Resolve(req.Context(), out)
	if err != nil {
		return errorReply(http.StatusInternalServerError, err)
	}

	status := http.StatusOK
	if resp, ok := value.(*Response); ok {
		status, value = resp.StatusCode, resp.Body
	}
	if value == nil {
		if status == http.StatusOK {
			status = http.StatusNoContent
		}
		return reply{status: status}
	}
	_, isString := value.(string)
	return reply{status: status, body: value, text: isString && producesText(route.Produces)}
}

func errorReply(fallback int, err error) reply {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return reply{status: httpErr.StatusCode, body: httpErr}
	}
	return reply{status: fallback, body: map[string]string{"error": err.Error()}}
}

func producesText(produces []string) bool {
	for _, p := range produces {
		if strings.HasPrefix(p, "text/") {
			return true
		}
	}
	return false
}

// Resolve blocks on Mono and collects Flux results; other values are
// returned unchanged
func Resolve(ctx context.Context, v any) (any, error) {
	switch r := v.(type) {
	case dynapi.Mono:
		return r.Block(ctx)
	case dynapi.Flux:
		values, err := r.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if values == nil {
			values = []any{}
		}
		return values, nil
	}
	return v, nil
}

// verbs returns the verbs a route is registered for; nil means any
func verbs(route routing.Route) []string {
	if len(route.Verbs) == 0 {
		return nil
	}
	out := make([]string, len(route.Verbs))
	for i, v := range route.Verbs {
		out[i] = string(v)
	}
	return out
}
