package adapters

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/routing"
)

// GinAdapter serves dynapi instances on Gin
type GinAdapter struct {
	core
	engine *gin.Engine
	server *http.Server
}

// NewGinAdapter creates an adapter on an existing Gin engine
func NewGinAdapter(g *gin.Engine, opts ...Option) *GinAdapter {
	return &GinAdapter{core: newCore(opts), engine: g}
}

// NewDefaultGinAdapter creates an adapter on a new engine with panic
// recovery
func NewDefaultGinAdapter(opts ...Option) *GinAdapter {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	return NewGinAdapter(g, opts...)
}

// ginPath converts a template to Gin's format. Gin wildcards must be named.
func ginPath(path routing.Path) string {
	return path.Colon("*path")
}

// Mount registers every route of inst
func (ga *GinAdapter) Mount(inst *dynapi.Instance) ([]routing.Route, error) {
	routes, err := routing.Routes(inst.Type())
	if err != nil {
		return nil, err
	}
	for _, route := range routes {
		handler := ga.handler(inst, route)
		for _, path := range route.Paths {
			methods := verbs(route)
			if methods == nil {
				ga.engine.Any(ginPath(path), handler)
				continue
			}
			for _, method := range methods {
				ga.engine.Handle(method, ginPath(path), handler)
			}
		}
	}
	return routes, nil
}

func (ga *GinAdapter) handler(inst *dynapi.Instance, route routing.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := ga.serve(&GinRequest{context: c}, inst, route)
		switch {
		case r.body == nil:
			c.Status(r.status)
		case r.text:
			c.String(r.status, "%s", r.body)
		default:
			c.JSON(r.status, r.body)
		}
	}
}

// Start starts the server
func (ga *GinAdapter) Start(addr string) error {
	ga.server = &http.Server{
		Addr:              addr,
		Handler:           ga.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := ga.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the server
func (ga *GinAdapter) Stop(ctx context.Context) error {
	if ga.server == nil {
		return nil
	}
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// Engine returns the underlying Gin engine
func (ga *GinAdapter) Engine() *gin.Engine {
	return ga.engine
}

// GinRequest implements dynapi.ServerRequest for Gin
type GinRequest struct {
	context *gin.Context
	body    []byte
	read    bool
}

func (r *GinRequest) Context() context.Context         { return r.context.Request.Context() }
func (r *GinRequest) Method() string                   { return r.context.Request.Method }
func (r *GinRequest) Path() string                     { return r.context.Request.URL.Path }
func (r *GinRequest) Param(name string) string         { return r.context.Param(name) }
func (r *GinRequest) QueryParam(name string) string    { return r.context.Query(name) }
func (r *GinRequest) QueryParams() map[string][]string { return r.context.Request.URL.Query() }
func (r *GinRequest) Header(name string) string        { return r.context.GetHeader(name) }

// Cookie returns the value of a request cookie
func (r *GinRequest) Cookie(name string) (string, bool) {
	v, err := r.context.Cookie(name)
	if err != nil {
		return "", false
	}
	return v, true
}

// Body reads the request body once
func (r *GinRequest) Body() ([]byte, error) {
	if r.read {
		return r.body, nil
	}
	r.read = true
	if r.context.Request.Body == nil || r.context.Request.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(r.context.Request.Body)
	if err != nil {
		return nil, err
	}
	r.body = body
	return body, nil
}

func (r *GinRequest) FormValue(name string) string { return r.context.PostForm(name) }

func (r *GinRequest) FormFile(name string) (*multipart.FileHeader, error) {
	return r.context.FormFile(name)
}

// Get returns a value stored on the context
func (r *GinRequest) Get(key string) any {
	v, _ := r.context.Get(key)
	return v
}

func (r *GinRequest) Set(key string, val any) { r.context.Set(key, val) }
