package dynapi_test

import (
	"fmt"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
)

func ExamplePool() {
	pool, err := dynapi.NewPool()
	if err != nil {
		panic(err)
	}

	s, err := pool.Open("com.example.GreetingApi", dynapi.ProfileEndpoint)
	if err != nil {
		panic(err)
	}
	inst, err := s.
		RequestMapping(descriptor.Mapping{Paths: []string{"/greetings"}}).
		AddSimpleMethod("greet", "{name}", descriptor.GET, "text/plain", nil, descriptor.PathParam("name", "String")).
		Instantiate(dynapi.DispatcherFunc(func(_ *dynapi.Instance, m *dynapi.Method, args []any) (any, error) {
			return fmt.Sprintf("%s: hello %s", m.Signature(), args[0]), nil
		}))
	if err != nil {
		panic(err)
	}

	out, err := inst.Invoke("greet", "ada")
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	fmt.Println(pool.Len())
	// Output:
	// greet(string): hello ada
	// 0
}
