package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
)

type note struct {
	Title string `json:"title" validate:"required"`
}

// newNotesInstance builds a small routed type shared by the adapter tests:
//
//	GET    /notes/hello/{name}  text greeting
//	GET    /notes              flux of titles
//	POST   /notes              201 echo of the body
//	GET    /notes/missing      404 from the dispatcher
//	DELETE /notes/{id}         void
func newNotesInstance(t *testing.T) *dynapi.Instance {
	t.Helper()
	pool, err := dynapi.NewPool()
	require.NoError(t, err)
	require.NoError(t, dynapi.RegisterType[note](pool.Resolver(), "notes.Note"))

	table := (&dynapi.MethodTable{}).
		Handle("hello", func(_ *dynapi.Instance, _ *dynapi.Method, args []any) (any, error) {
			return fmt.Sprintf("hello %s", args[0]), nil
		}).
		Handle("list", func(_ *dynapi.Instance, _ *dynapi.Method, _ []any) (any, error) {
			return dynapi.FluxJust("first", "second"), nil
		}).
		Handle("create", func(_ *dynapi.Instance, _ *dynapi.Method, args []any) (any, error) {
			return Created(args[0]), nil
		}).
		Handle("missing", func(_ *dynapi.Instance, _ *dynapi.Method, _ []any) (any, error) {
			return nil, ErrNotFound("no such note")
		})

	s, err := pool.Open("com.example.NotesApi", dynapi.ProfileEndpoint)
	require.NoError(t, err)
	inst, err := s.
		RequestMapping(descriptor.Mapping{Paths: []string{"/notes"}}).
		AddSimpleMethod("hello", "hello/{name}", descriptor.GET, "text/plain", nil, descriptor.PathParam("name", "String")).
		AddSimpleMethod("list", "", descriptor.GET, "", nil).
		AddSyntheticMethod(descriptor.Method{
			Name:    "create",
			Mapping: descriptor.Mapping{Verbs: []descriptor.Verb{descriptor.POST}},
		}, nil, descriptor.Parameter{Name: "note", Type: "notes.Note", Source: descriptor.SourceBody, Required: true}).
		AddSimpleMethod("missing", "missing", descriptor.GET, "", nil).
		AddSyntheticMethod(descriptor.Method{
			Name:    "remove",
			Returns: "void",
			Mapping: descriptor.Mapping{Paths: []string{"{id}"}, Verbs: []descriptor.Verb{descriptor.DELETE}},
		}, nil, descriptor.PathParam("id", "int")).
		Instantiate(table)
	require.NoError(t, err)
	return inst
}

func TestNew(t *testing.T) {
	for kind, name := range map[string]string{"echo": "Echo", "": "Echo", "GIN": "Gin", "fiber": "Fiber"} {
		s, err := New(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, name, s.Name())
	}
	_, err := New("netty")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	v, err := Resolve(ctx, dynapi.MonoJust(7))
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = Resolve(ctx, dynapi.Flux{})
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)

	boom := errors.New("boom")
	_, err = Resolve(ctx, dynapi.MonoError(boom))
	assert.Same(t, boom, err)

	v, err = Resolve(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", v)
}

func TestErrorReply(t *testing.T) {
	r := errorReply(http.StatusInternalServerError, fmt.Errorf("wrapped: %w", ErrBadRequest("bad")))
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = errorReply(http.StatusInternalServerError, errors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, r.status)
	assert.Equal(t, map[string]string{"error": "plain"}, r.body)
}
