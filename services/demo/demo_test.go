package demo_test

import (
	"errors"
	"testing"
	"time"

	"github.com/MegaGrindStone/go-microrpc"
	"github.com/MegaGrindStone/go-microrpc/services/demo"
)

// newDemoEngine registers the demo service on a fresh engine with a pinned
// clock reading 2019-04-08.
func newDemoEngine(t *testing.T) *microrpc.Engine {
	t.Helper()
	engine := microrpc.NewEngine()
	svc := demo.NewService(demo.WithClock(func() time.Time {
		return time.Date(2019, time.April, 8, 12, 30, 0, 0, time.UTC)
	}))
	if err := svc.Register(engine); err != nil {
		t.Fatalf("failed to register demo service: %v", err)
	}
	return engine
}

func call(t *testing.T, engine *microrpc.Engine, request string) string {
	t.Helper()
	x := &microrpc.Exchange{
		Request:  []byte(request),
		Response: microrpc.NewBuffer(make([]byte, 1024)),
		Arena:    make([]microrpc.Token, 128),
	}
	return string(engine.Handle(x))
}

func TestCalculate(t *testing.T) {
	type testCase struct {
		name    string
		request string
		want    string
	}

	testCases := []testCase{
		{
			name:    "decimal add",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 128, "second": 32, "op": "+"}], "id": 38}`,
			want:    `{"jsonrpc": "2.0", "id": 38, "result": {"operation": "+", "res": 160}}`,
		},
		{
			name:    "hex multiply",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 0x2, "second": 0x10, "op": "*"}], "id": 39}`,
			want:    `{"jsonrpc": "2.0", "id": 39, "result": {"operation": "*", "res": 32}}`,
		},
		{
			name:    "negative hex add",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": -0x17, "second": -17, "op": "+"}], "id": 40}`,
			want:    `{"jsonrpc": "2.0", "id": 40, "result": {"operation": "+", "res": -40}}`,
		},
		{
			name:    "octal subtract",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": -0x32, "second": -055, "op": "-"}], "id": 41}`,
			want:    `{"jsonrpc": "2.0", "id": 41, "result": {"operation": "-", "res": -5}}`,
		},
		{
			name:    "divide",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 128, "second": 32, "op": "/"}], "id": 42}`,
			want:    `{"jsonrpc": "2.0", "id": 42, "result": {"operation": "/", "res": 4}}`,
		},
		{
			name:    "legacy dialect",
			request: `{"method": "calculate", "params": [{"first": 2, "second": 3, "op": "*"}], "id": 21}`,
			want:    `{"error": null, "id": 21, "result": {"operation": "*", "res": 6}}`,
		},
		{
			name:    "divide by zero",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 1, "second": 0, "op": "/"}], "id": 43}`,
			want:    `{"jsonrpc": "2.0", "error": {"code": -32602, "message": "Invalid params"}, "id": 43}`,
		},
		{
			name:    "unknown operation",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 1, "second": 2, "op": "%"}], "id": 44}`,
			want:    `{"jsonrpc": "2.0", "error": {"code": -32602, "message": "Invalid params"}, "id": 44}`,
		},
		{
			name:    "missing operand",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"second": 2, "op": "+"}], "id": 45}`,
			want:    `{"jsonrpc": "2.0", "error": {"code": -32602, "message": "Invalid params"}, "id": 45}`,
		},
		{
			name:    "non-numeric operand",
			request: `{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": "x", "second": 2, "op": "+"}], "id": 46}`,
			want:    `{"jsonrpc": "2.0", "error": {"code": -32602, "message": "Invalid params"}, "id": 46}`,
		},
	}

	engine := newDemoEngine(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := call(t, engine, tc.request); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	type testCase struct {
		name    string
		request string
		want    string
	}

	testCases := []testCase{
		{
			name:    "match",
			request: `{"method": "search", "params": [{"last_name": "Python", "age": 26}], "id": 22}`,
			want:    `{"error": null, "id": 22, "result": "Monty"}`,
		},
		{
			name:    "parameter order does not matter",
			request: `{"method": "search", "params": [{"age": 26, "last_name": "Python"}], "id": 23}`,
			want:    `{"error": null, "id": 23, "result": "Monty"}`,
		},
		{
			name:    "no match",
			request: `{"method": "search", "params": [{"last_name": "Perl", "age": 26}], "id": 24}`,
			want:    `{"error": null, "id": 24, "result": "none"}`,
		},
		{
			name:    "age mismatch",
			request: `{"method": "search", "params": [{"last_name": "Python", "age": 27}], "id": 25}`,
			want:    `{"error": null, "id": 25, "result": "none"}`,
		},
		{
			name:    "misspelled parameter",
			request: `{"method": "search", "params": [{"last_n": "Python", "age": 26}], "id": 26}`,
			want:    `{"error": {"code": -32602, "message": "Invalid params"}, "id": 26}`,
		},
		{
			name:    "missing age",
			request: `{"method": "search", "params": [{"last_name": "Python"}], "id": 27}`,
			want:    `{"error": {"code": -32602, "message": "Invalid params"}, "id": 27}`,
		},
	}

	engine := newDemoEngine(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := call(t, engine, tc.request); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestGetTimeDate(t *testing.T) {
	engine := newDemoEngine(t)

	want := `{"jsonrpc": "2.0", "id": 1, "result": "201948"}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "getTimeDate", "params": [], "id": 1}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestOrderedParams(t *testing.T) {
	engine := newDemoEngine(t)

	want := `{"jsonrpc": "2.0", "id": 41, "result": {"first": 7, "second": "abc", "third": 31}}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "ordered_params", "params": [7, "abc", 0x1f], "id": 41}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	want = `{"jsonrpc": "2.0", "error": {"code": -32602, "message": "Invalid params"}, "id": 42}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "ordered_params", "params": [7, 8, 9], "id": 42}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	want = `{"jsonrpc": "2.0", "error": {"code": -32602, "message": "Invalid params"}, "id": 43}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "ordered_params", "params": [7], "id": 43}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSendBack(t *testing.T) {
	engine := newDemoEngine(t)

	want := `{"jsonrpc": "2.0", "id": 43, "result": {"res": "take me back"}}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "send_back", "params": [{"what": "take me back"}], "id": 43}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	// The value comes back from its raw span, escapes and all.
	want = `{"jsonrpc": "2.0", "id": 44, "result": {"res": "a\"b"}}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "send_back", "params": [{"what": "a\"b"}], "id": 44}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	want = `{"jsonrpc": "2.0", "error": {"code": -32602, "message": "Invalid params"}, "id": 45}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "send_back", "params": [{}], "id": 45}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestErrExample(t *testing.T) {
	engine := newDemoEngine(t)

	want := `{"jsonrpc": "2.0", "error": {"code": -32000, "message": "Something went wrong.."}, "id": 44}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "err_example", "id": 44}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	want = `{"error": {"code": -32000, "message": "Something went wrong.."}, "id": 20}`
	if got := call(t, engine, `{"method": "err_example", "id": 20}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestHandleMessage(t *testing.T) {
	engine := newDemoEngine(t)

	// The reference driver always sends this one as a legacy notification.
	if got := call(t, engine, `{"method": "handleMessage", "params": ["Hello world."], "id": null}`); got != "" {
		t.Errorf("expected empty response, got %s", got)
	}

	want := `{"jsonrpc": "2.0", "id": 2, "result": "OK"}`
	if got := call(t, engine, `{"jsonrpc": "2.0", "method": "handleMessage", "params": ["hi"], "id": 2}`); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestBatchAcrossMethods(t *testing.T) {
	engine := newDemoEngine(t)

	request := `[` +
		`{"jsonrpc": "2.0", "method": "getTimeDate", "params": [], "id": 1}, ` +
		`{"method": "handleMessage", "params": ["x"], "id": null}, ` +
		`{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 1, "second": 2, "op": "+"}], "id": 2}` +
		`]`
	want := `[{"jsonrpc": "2.0", "id": 1, "result": "201948"}, ` +
		`{"jsonrpc": "2.0", "id": 2, "result": {"operation": "+", "res": 3}}]`

	if got := call(t, engine, request); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRegisterCapacity(t *testing.T) {
	engine := microrpc.NewEngine(microrpc.WithHandlerCapacity(3))

	err := demo.NewService().Register(engine)
	if !errors.Is(err, microrpc.ErrRegistryFull) {
		t.Errorf("expected %v, got %v", microrpc.ErrRegistryFull, err)
	}
}
