package adapters

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/routing"
)

// EchoAdapter serves dynapi instances on Echo v4
type EchoAdapter struct {
	core
	engine *echo.Echo
}

// NewEchoAdapter creates an adapter on an existing Echo instance
func NewEchoAdapter(e *echo.Echo, opts ...Option) *EchoAdapter {
	return &EchoAdapter{core: newCore(opts), engine: e}
}

// NewDefaultEchoAdapter creates an adapter on a new Echo instance
func NewDefaultEchoAdapter(opts ...Option) *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return NewEchoAdapter(e, opts...)
}

// Mount registers every route of inst
func (ea *EchoAdapter) Mount(inst *dynapi.Instance) ([]routing.Route, error) {
	routes, err := routing.Routes(inst.Type())
	if err != nil {
		return nil, err
	}
	for _, route := range routes {
		handler := ea.handler(inst, route)
		for _, path := range route.Paths {
			echoPath := path.Colon("*")
			if methods := verbs(route); methods == nil {
				ea.engine.Any(echoPath, handler)
			} else {
				ea.engine.Match(methods, echoPath, handler)
			}
		}
	}
	return routes, nil
}

func (ea *EchoAdapter) handler(inst *dynapi.Instance, route routing.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := ea.serve(&EchoRequest{context: c}, inst, route)
		switch {
		case r.body == nil:
			return c.NoContent(r.status)
		case r.text:
			return c.String(r.status, r.body.(string))
		default:
			return c.JSON(r.status, r.body)
		}
	}
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	return ea.engine.Start(addr)
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// Engine returns the underlying Echo instance
func (ea *EchoAdapter) Engine() *echo.Echo {
	return ea.engine
}

// EchoRequest implements dynapi.ServerRequest for Echo
type EchoRequest struct {
	context echo.Context
	body    []byte
	read    bool
}

func (r *EchoRequest) Context() context.Context { return r.context.Request().Context() }
func (r *EchoRequest) Method() string           { return r.context.Request().Method }
func (r *EchoRequest) Path() string             { return r.context.Request().URL.Path }

// Param returns a path variable
func (r *EchoRequest) Param(name string) string {
	return r.context.Param(name)
}

func (r *EchoRequest) QueryParam(name string) string    { return r.context.QueryParam(name) }
func (r *EchoRequest) QueryParams() map[string][]string { return r.context.QueryParams() }
func (r *EchoRequest) Header(name string) string        { return r.context.Request().Header.Get(name) }

// Cookie returns the value of a request cookie
func (r *EchoRequest) Cookie(name string) (string, bool) {
	c, err := r.context.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// Body reads the request body once
func (r *EchoRequest) Body() ([]byte, error) {
	if r.read {
		return r.body, nil
	}
	r.read = true
	if r.context.Request().Body == nil || r.context.Request().Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(r.context.Request().Body)
	if err != nil {
		return nil, err
	}
	r.body = body
	return body, nil
}

func (r *EchoRequest) FormValue(name string) string { return r.context.FormValue(name) }

func (r *EchoRequest) FormFile(name string) (*multipart.FileHeader, error) {
	return r.context.FormFile(name)
}

func (r *EchoRequest) Get(key string) any      { return r.context.Get(key) }
func (r *EchoRequest) Set(key string, val any) { r.context.Set(key, val) }
