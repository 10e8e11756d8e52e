package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/toyz/dynapi/internal/convert"
	"github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
)

var (
	requestType    = reflect.TypeFor[dynapi.ServerRequest]()
	contextType    = reflect.TypeFor[context.Context]()
	fileHeaderType = reflect.TypeFor[*multipart.FileHeader]()
	timeType       = reflect.TypeFor[time.Time]()
)

// Binder builds method arguments from a request
type Binder struct {
	decoder  *schema.Decoder
	validate *validator.Validate
}

// NewBinder creates a binder. Unknown query keys are ignored when
// decoding struct parameters.
func NewBinder() *Binder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &Binder{decoder: decoder, validate: validator.New()}
}

var defaultBinder = NewBinder()

// Bind builds the arguments of route from req with the default binder
func Bind(req dynapi.ServerRequest, route Route) ([]any, error) {
	return defaultBinder.Bind(req, route)
}

// Bind returns one argument per route parameter in declaration order
func (b *Binder) Bind(req dynapi.ServerRequest, route Route) ([]any, error) {
	args := make([]any, len(route.Params))
	for i, p := range route.Params {
		v, err := b.bindParam(req, p)
		if err != nil {
			return nil, errors.WrapBindingError(p.Name, p.Source.String(), err)
		}
		args[i] = v
	}
	return args, nil
}

func (b *Binder) bindParam(req dynapi.ServerRequest, p Param) (any, error) {
	switch p.Type {
	case requestType:
		return req, nil
	case contextType:
		return req.Context(), nil
	}

	switch p.Source {
	case descriptor.SourceBody:
		return b.bindBody(req, p)
	case descriptor.SourceAttribute:
		v, err := convert.Assign(req.Get(p.Name), p.Type)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	case descriptor.SourcePart:
		if p.Type == fileHeaderType {
			fh, err := req.FormFile(p.Name)
			if err != nil {
				if p.Required {
					return nil, err
				}
				return (*multipart.FileHeader)(nil), nil
			}
			return fh, nil
		}
	case descriptor.SourceParam:
		if isStruct(p.Type) {
			return b.bindQueryStruct(req, p)
		}
		if p.Type.Kind() == reflect.Slice && p.Type.Elem().Kind() != reflect.Uint8 {
			if values := req.QueryParams()[p.Name]; len(values) > 0 {
				v, err := convert.FromStrings(values, p.Type)
				if err != nil {
					return nil, err
				}
				return v.Interface(), nil
			}
		}
	}

	raw, ok := rawValue(req, p)
	if !ok {
		switch {
		case p.Default != "":
			raw = p.Default
		case p.Required:
			return nil, fmt.Errorf("missing required value")
		default:
			return reflect.Zero(p.Type).Interface(), nil
		}
	}
	v, err := convert.FromString(raw, p.Type)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// rawValue reads the string form of a parameter from its source
func rawValue(req dynapi.ServerRequest, p Param) (string, bool) {
	var raw string
	switch p.Source {
	case descriptor.SourcePath:
		raw, _, _ = strings.Cut(req.Param(p.Name), ";")
	case descriptor.SourceHeader:
		raw = req.Header(p.Name)
	case descriptor.SourceCookie:
		v, ok := req.Cookie(p.Name)
		return v, ok
	case descriptor.SourceMatrix:
		return MatrixValue(req.Path(), p.Name)
	case descriptor.SourcePart:
		raw = req.FormValue(p.Name)
	default:
		raw = req.QueryParam(p.Name)
		if raw == "" {
			raw = req.FormValue(p.Name)
		}
	}
	return raw, raw != ""
}

func (b *Binder) bindBody(req dynapi.ServerRequest, p Param) (any, error) {
	body, err := req.Body()
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		if p.Required {
			return nil, fmt.Errorf("request body is empty")
		}
		return reflect.Zero(p.Type).Interface(), nil
	}

	if p.Type.Kind() == reflect.String {
		return reflect.ValueOf(string(body)).Convert(p.Type).Interface(), nil
	}
	ptr := reflect.New(p.Type)
	if err := json.Unmarshal(body, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if err := b.validateValue(ptr.Elem()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func (b *Binder) bindQueryStruct(req dynapi.ServerRequest, p Param) (any, error) {
	target := p.Type
	if target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	ptr := reflect.New(target)
	if err := b.decoder.Decode(ptr.Interface(), req.QueryParams()); err != nil {
		return nil, err
	}
	if err := b.validateValue(ptr.Elem()); err != nil {
		return nil, err
	}
	if p.Type.Kind() == reflect.Pointer {
		return ptr.Interface(), nil
	}
	return ptr.Elem().Interface(), nil
}

func (b *Binder) validateValue(v reflect.Value) error {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return b.validate.Struct(v.Interface())
}

func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t != timeType
}

// MatrixValue finds name=value in the ';'-separated attributes of any path
// segment, e.g. /cars;color=red/list
func MatrixValue(path, name string) (string, bool) {
	for _, segment := range strings.Split(path, "/") {
		attrs := strings.Split(segment, ";")
		for _, attr := range attrs[1:] {
			key, value, _ := strings.Cut(attr, "=")
			if key == name {
				return value, true
			}
		}
	}
	return "", false
}
