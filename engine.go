package microrpc

import (
	"fmt"
	"log/slog"
)

// EngineOption represents the options for the engine.
type EngineOption func(*Engine)

const defaultHandlerCapacity = 32

// HandlerFunc is a registered method implementation. It reads its parameters
// through the request's tree view and reports its outcome by calling exactly
// one of w.Result or w.Error, exactly once. Handlers are expected to be
// non-blocking, bounded-time computations; the engine never times them out.
type HandlerFunc func(w *ResponseWriter, r *Request)

// Request is the decoded view of a single JSON-RPC request handed to a
// handler. Params and ID are value token indices into Tree, -1 when the
// member is absent. The view aliases the exchange's buffers; handlers must
// not retain it or any token index past their own invocation.
type Request struct {
	Tree   Tree
	Params int
	ID     int

	// V2 is set when the request declared "jsonrpc": "2.0". Notification is
	// set when no response will be emitted: a 2.0 request without an id, or a
	// 1.x request whose id is the literal null.
	V2           bool
	Notification bool
}

// Exchange carries the caller-owned working storage for one Handle call: the
// raw request bytes, the bounded response buffer, and the token arena. The
// engine allocates nothing on its own; sizing all three is the caller's
// configuration. An Exchange may be reused across sequential calls but never
// shared between concurrent ones.
type Exchange struct {
	Request  []byte
	Response Buffer
	Arena    []Token

	// Dispatch scratch. Handlers receive pointers to these fields, which
	// keeps Handle allocation-free.
	w ResponseWriter
	r Request
}

type handlerEntry struct {
	name string
	fn   HandlerFunc
}

// Engine dispatches JSON-RPC 1.x and 2.0 requests, single or batched, to
// registered handlers. A single Engine may be shared by concurrent goroutines
// as long as each supplies its own Exchange and all registration happened
// before concurrent use began.
type Engine struct {
	handlers []handlerEntry
	capacity int
	logger   *slog.Logger
}

// NewEngine creates a new engine with the specified configuration.
func NewEngine(options ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.capacity <= 0 {
		e.capacity = defaultHandlerCapacity
	}
	e.handlers = make([]handlerEntry, 0, e.capacity)
	return e
}

// WithHandlerCapacity returns an EngineOption that configures how many
// handlers may be registered. The default is 32.
func WithHandlerCapacity(capacity int) EngineOption {
	return func(e *Engine) {
		e.capacity = capacity
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger.With(
			slog.String("package", "go-microrpc"),
			slog.String("component", "engine"),
		)
	}
}

// Register adds a handler for method name. The registry is append-only and
// capacity-bounded; registering past capacity returns ErrRegistryFull. Lookup
// is by exact byte match, and the first registration of a name wins.
func (e *Engine) Register(name string, fn HandlerFunc) error {
	if name == "" {
		return fmt.Errorf("register: empty method name")
	}
	if fn == nil {
		return fmt.Errorf("register %q: nil handler", name)
	}
	if len(e.handlers) == cap(e.handlers) {
		return fmt.Errorf("register %q: %w", name, ErrRegistryFull)
	}
	e.handlers = append(e.handlers, handlerEntry{name: name, fn: fn})
	return nil
}

// Handle processes one raw request and returns the finalized response bytes,
// which alias the exchange's response buffer. The result is empty for
// notifications. Handle never fails: every problem with the input becomes a
// JSON-RPC error response, truncated safely when the buffer is too small.
func (e *Engine) Handle(x *Exchange) []byte {
	x.Response.Reset()

	var p Parser
	n, err := p.Parse(x.Request, x.Arena)
	if err != nil || n < 1 {
		e.logger.Debug("rejecting unparseable request", "err", err)
		w := ResponseWriter{buf: &x.Response, v2: sniffV2(x.Request)}
		w.Error(CodeParseError, "")
		return x.Response.Finalize()
	}

	t := Tree{Data: x.Request, Tokens: x.Arena[:n]}
	root := t.Tokens[0]
	if root.Kind != KindObject && root.Kind != KindArray {
		e.logger.Debug("rejecting request with non-container root")
		w := ResponseWriter{buf: &x.Response}
		w.Error(CodeInvalidRequest, "")
		return x.Response.Finalize()
	}
	if root.Kind == KindArray && root.Children < 1 {
		e.logger.Debug("rejecting empty batch")
		w := ResponseWriter{buf: &x.Response}
		w.Error(CodeInvalidRequest, "")
		return x.Response.Finalize()
	}

	if root.Kind == KindArray {
		x.Response.AppendString("[")
		for i := 1; i < len(t.Tokens); i++ {
			if t.Tokens[i].Parent == 0 {
				e.dispatch(x, t, i)
			}
		}
		x.Response.AppendString("]")
	} else {
		e.dispatch(x, t, 0)
	}
	return x.Response.Finalize()
}

// dispatch runs the per-request procedure on the candidate request object at
// token index tok. Structural checks always precede the handler: the handler
// never sees a request it cannot trust.
func (e *Engine) dispatch(x *Exchange, t Tree, tok int) {
	methodKey := t.ObjectMember(tok, "method")
	jsonrpcKey := t.ObjectMember(tok, "jsonrpc")
	idKey := t.ObjectMember(tok, "id")
	paramsKey := t.ObjectMember(tok, "params")
	idVal := t.ObjectMember(idKey, "")
	paramsVal := t.ObjectMember(paramsKey, "")

	x.w = ResponseWriter{buf: &x.Response, id: t.Bytes(idVal)}
	w := &x.w

	if jsonrpcKey >= 0 {
		jv := t.ObjectMember(jsonrpcKey, "")
		if string(t.Bytes(jv)) == "2.0" {
			w.v2 = true
		}
	}

	if idKey < 0 {
		// 1.x notifications use an explicit null id, so a missing id is only
		// legal in the 2.0 dialect.
		if !w.v2 {
			e.logger.Debug("rejecting 1.x request without id")
			w.Error(CodeInvalidRequest, "")
			return
		}
		w.notification = true
	} else {
		k := t.KindOf(idVal)
		if k != KindPrimitive && k != KindString {
			e.logger.Debug("rejecting request with non-scalar id")
			w.Error(CodeInvalidRequest, "")
			return
		}
		if !w.v2 && string(w.id) == "null" {
			w.notification = true
		}
	}

	methodVal := t.ObjectMember(methodKey, "")
	if t.KindOf(methodVal) != KindString {
		e.logger.Debug("rejecting request without method string")
		w.Error(CodeInvalidRequest, "")
		return
	}

	fn := e.lookup(t.Bytes(methodVal))
	if fn == nil {
		e.logger.Debug("rejecting request for unregistered method")
		w.Error(CodeMethodNotFound, "")
		return
	}

	x.r = Request{
		Tree:         t,
		Params:       paramsVal,
		ID:           idVal,
		V2:           w.v2,
		Notification: w.notification,
	}
	fn(w, &x.r)
}

func (e *Engine) lookup(name []byte) HandlerFunc {
	for i := range e.handlers {
		if string(name) == e.handlers[i].name {
			return e.handlers[i].fn
		}
	}
	return nil
}
