package adapters

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/routing"
)

// FiberAdapter serves dynapi instances on Fiber v2
type FiberAdapter struct {
	core
	app *fiber.App
}

// NewFiberAdapter creates an adapter on an existing Fiber app. The app
// should be configured with Immutable so bound strings outlive the request.
func NewFiberAdapter(app *fiber.App, opts ...Option) *FiberAdapter {
	return &FiberAdapter{core: newCore(opts), app: app}
}

// NewDefaultFiberAdapter creates an adapter on a new immutable app with
// panic recovery
func NewDefaultFiberAdapter(opts ...Option) *FiberAdapter {
	app := fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())
	return NewFiberAdapter(app, opts...)
}

// Mount registers every route of inst
func (fa *FiberAdapter) Mount(inst *dynapi.Instance) ([]routing.Route, error) {
	routes, err := routing.Routes(inst.Type())
	if err != nil {
		return nil, err
	}
	for _, route := range routes {
		handler := fa.handler(inst, route)
		for _, path := range route.Paths {
			fiberPath := path.Colon("*")
			methods := verbs(route)
			if methods == nil {
				fa.app.All(fiberPath, handler)
				continue
			}
			for _, method := range methods {
				fa.app.Add(method, fiberPath, handler)
			}
		}
	}
	return routes, nil
}

func (fa *FiberAdapter) handler(inst *dynapi.Instance, route routing.Route) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r := fa.serve(&FiberRequest{ctx: c}, inst, route)
		switch {
		case r.body == nil:
			return c.SendStatus(r.status)
		case r.text:
			return c.Status(r.status).SendString(r.body.(string))
		default:
			return c.Status(r.status).JSON(r.body)
		}
	}
}

// Start starts the server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// App returns the underlying Fiber app
func (fa *FiberAdapter) App() *fiber.App {
	return fa.app
}

// FiberRequest implements dynapi.ServerRequest for Fiber
type FiberRequest struct {
	ctx *fiber.Ctx
}

func (r *FiberRequest) Context() context.Context      { return r.ctx.UserContext() }
func (r *FiberRequest) Method() string                { return r.ctx.Method() }
func (r *FiberRequest) Path() string                  { return r.ctx.Path() }
func (r *FiberRequest) Param(name string) string      { return r.ctx.Params(name) }
func (r *FiberRequest) QueryParam(name string) string { return r.ctx.Query(name) }

// QueryParams collects every query value, keeping repeated keys
func (r *FiberRequest) QueryParams() map[string][]string {
	result := make(map[string][]string)
	r.ctx.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		result[k] = append(result[k], string(value))
	})
	return result
}

func (r *FiberRequest) Header(name string) string { return r.ctx.Get(name) }

// Cookie returns the value of a request cookie
func (r *FiberRequest) Cookie(name string) (string, bool) {
	if r.ctx.Request().Header.Cookie(name) == nil {
		return "", false
	}
	return r.ctx.Cookies(name), true
}

// Body returns a copy of the request body
func (r *FiberRequest) Body() ([]byte, error) {
	return append([]byte(nil), r.ctx.Body()...), nil
}

func (r *FiberRequest) FormValue(name string) string { return r.ctx.FormValue(name) }

func (r *FiberRequest) FormFile(name string) (*multipart.FileHeader, error) {
	return r.ctx.FormFile(name)
}

func (r *FiberRequest) Get(key string) any      { return r.ctx.Locals(key) }
func (r *FiberRequest) Set(key string, val any) { r.ctx.Locals(key, val) }
