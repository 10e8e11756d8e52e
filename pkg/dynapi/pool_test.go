package dynapi

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

func TestNewPoolBuiltins(t *testing.T) {
	pool := newTestPool(t)

	assert.Equal(t, []ProfileName{ProfileObject, ProfileEndpoint, ProfileReactive, ProfileWebFlux}, pool.Profiles())
	assert.NotNil(t, pool.Resolver())
	assert.NotNil(t, pool.Logger())
	assert.Zero(t, pool.Len())
}

func TestOpenUnknownProfileOrBase(t *testing.T) {
	pool := newTestPool(t)

	_, err := pool.Open("com.example.A", ProfileName("nope"))
	assert.ErrorIs(t, err, ErrTypeResolution)

	_, err = pool.OpenBase("com.example.A", "no.such.Base")
	assert.ErrorIs(t, err, ErrTypeResolution)

	_, err = pool.Open("", ProfileEndpoint)
	assert.ErrorIs(t, err, ErrTypeResolution)
	assert.Zero(t, pool.Len())
}

func TestOpenStrictCreate(t *testing.T) {
	pool := newTestPool(t)

	s := openSession(t, pool, "com.example.Strict", ProfileEndpoint).AddField("String", "a")
	s.Release()

	_, err := pool.Open("com.example.Strict", ProfileEndpoint)
	assert.ErrorIs(t, err, ErrDuplicateType)

	reused, err := pool.Open("com.example.Strict", ProfileEndpoint, WithReuse())
	require.NoError(t, err)
	_, err = reused.Build().Field("a")
	assert.NoError(t, err, "reuse continues on the pending definition")

	handle, err := reused.AddField("int", "b").Materialize()
	require.NoError(t, err)
	assert.Len(t, handle.Fields(), 3)

	_, pending := pool.Pending("com.example.Strict")
	assert.False(t, pending)
}

func TestReuseRequiresSameBase(t *testing.T) {
	pool := newTestPool(t)
	openSession(t, pool, "com.example.Based", ProfileEndpoint).Release()

	_, err := pool.Open("com.example.Based", ProfileReactive, WithReuse())
	assert.ErrorIs(t, err, ErrDuplicateType)

	s, err := pool.Open("com.example.Based", ProfileEndpoint, WithReuse())
	require.NoError(t, err)
	s.Discard()
}

func TestConcurrentOpenSerializes(t *testing.T) {
	pool := newTestPool(t)
	const workers = 8
	const fieldsEach = 25

	first := openSession(t, pool, "com.example.Shared", ProfileEndpoint)
	first.Release()

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			s, err := pool.Open("com.example.Shared", ProfileEndpoint, WithReuse())
			if err != nil {
				errs <- err
				return
			}
			for i := 0; i < fieldsEach; i++ {
				s.AddField("int", fmt.Sprintf("f_%d_%d", w, i))
			}
			if err := s.Err(); err != nil {
				errs <- err
			}
			s.Release()
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	final, err := pool.Open("com.example.Shared", ProfileEndpoint, WithReuse())
	require.NoError(t, err)
	// inherited handler plus every worker's fields
	assert.Len(t, final.Build().Fields(), 1+workers*fieldsEach)
	final.Discard()
}

func TestOpenBlocksUntilReleased(t *testing.T) {
	pool := newTestPool(t)
	holder := openSession(t, pool, "com.example.Held", ProfileEndpoint)

	opened := make(chan *Session)
	go func() {
		s, err := pool.Open("com.example.Held", ProfileEndpoint)
		if err != nil {
			close(opened)
			return
		}
		opened <- s
	}()

	select {
	case <-opened:
		t.Fatal("second open did not wait for the lease")
	case <-time.After(50 * time.Millisecond):
	}

	holder.Discard()

	select {
	case s, ok := <-opened:
		require.True(t, ok, "open after discard failed")
		assert.Equal(t, "com.example.Held", s.Name())
		s.Discard()
	case <-time.After(2 * time.Second):
		t.Fatal("second open never acquired the lease")
	}
}

func TestOpenContextCancel(t *testing.T) {
	pool := newTestPool(t)
	holder := openSession(t, pool, "com.example.Wait", ProfileEndpoint)
	defer holder.Discard()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pool.OpenContext(ctx, "com.example.Wait", ProfileEndpoint)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNoEntryAfterMaterialize(t *testing.T) {
	pool := newTestPool(t)

	_, err := openSession(t, pool, "com.example.Ok", ProfileEndpoint).Materialize()
	require.NoError(t, err)
	_, ok := pool.Pending("com.example.Ok")
	assert.False(t, ok)
	assert.Equal(t, []string{"com.example.Ok"}, pool.LoadedNames())

	_, err = openSession(t, pool, "com.example.Bad", ProfileEndpoint).
		AddField("Missing", "x").
		Materialize()
	require.Error(t, err)
	_, ok = pool.Pending("com.example.Bad")
	assert.False(t, ok)
	assert.Zero(t, pool.Len())

	pool.mu.Lock()
	assert.Empty(t, pool.leases, "leases are dropped once unused")
	pool.mu.Unlock()
}

func TestRegisterCustomProfileAndBase(t *testing.T) {
	pool := newTestPool(t)

	require.NoError(t, pool.RegisterBase(&BaseType{
		Name:                  "acme.Handler",
		Fields:                []BaseField{{Name: "delegate", TypeName: "Dispatcher"}, {Name: "tenant", TypeName: "String"}},
		DispatcherField:       "delegate",
		DispatcherConstructor: true,
	}))
	require.NoError(t, pool.RegisterProfile(&Profile{
		Name: "acme",
		Base: "acme.Handler",
		Records: func(typeName string) []metadata.Record {
			return []metadata.Record{metadata.NewRestController(SimpleName(typeName))}
		},
	}))

	assert.Error(t, pool.RegisterBase(&BaseType{Name: "acme.Handler"}), "duplicate base")
	assert.Error(t, pool.RegisterBase(&BaseType{Name: "acme.Bad", DispatcherField: "missing"}))
	assert.Error(t, pool.RegisterBase(&BaseType{Name: "acme.Bad", Fields: []BaseField{{Name: "x", TypeName: "Nope"}}}))
	assert.Error(t, pool.RegisterProfile(&Profile{Name: "acme"}), "duplicate profile")
	assert.Error(t, pool.RegisterProfile(nil))

	rec := &recorder{result: 42}
	inst, err := openSession(t, pool, "com.acme.OrderApi", "acme").
		AddSimpleMethod("count", "orders/count", "GET", "", nil).
		Instantiate(rec)
	require.NoError(t, err)

	rc, ok := inst.Type().Record(metadata.RestController)
	require.True(t, ok)
	assert.Equal(t, "orderApi", rc.GetString("value"))
	assert.Equal(t, "delegate", inst.Type().DispatcherField())

	got, err := inst.Invoke("count")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	s, err := pool.OpenBase("com.acme.Raw", "acme.Handler")
	require.NoError(t, err)
	assert.False(t, s.Build().Annotations().Has(metadata.RestController))
	s.Discard()
}

func TestSimpleName(t *testing.T) {
	tests := map[string]string{
		"com.example.HelloApi": "helloApi",
		"HelloApi":             "helloApi",
		"pkg/path.Type":        "type",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SimpleName(in), in)
	}
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("")
	require.NoError(t, err)
	assert.Equal(t, ProfileEndpoint, p)

	p, err = ParseProfile("webflux")
	require.NoError(t, err)
	assert.Equal(t, ProfileWebFlux, p)

	_, err = ParseProfile("gui")
	assert.Error(t, err)
}
