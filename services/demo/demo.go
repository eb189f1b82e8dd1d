// Package demo implements a small demonstration method set for a microrpc
// engine: time lookup, parameter extraction by name and by position, C-style
// integer literals, echoing, and custom error codes. It doubles as a worked
// example of reading parameters through the token tree without decoding the
// request into Go values first.
package demo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/MegaGrindStone/go-microrpc"
)

// Option is a function that configures the demo service.
type Option func(*Service)

// Service carries the state shared by the demo handlers. The zero value is
// not usable; create instances with NewService.
type Service struct {
	now func() time.Time
}

// NewService creates a new demo service with the specified configuration.
func NewService(options ...Option) *Service {
	s := &Service{}
	for _, opt := range options {
		opt(s)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// WithClock sets the time source for the service. Tests use this to pin
// getTimeDate's output.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Register adds the full demo method set to engine.
func (s *Service) Register(engine *microrpc.Engine) error {
	methods := []struct {
		name string
		fn   microrpc.HandlerFunc
	}{
		{"handleMessage", s.handleMessage},
		{"getTimeDate", s.getTimeDate},
		{"search", s.search},
		{"err_example", s.errExample},
		{"calculate", s.calculate},
		{"ordered_params", s.orderedParams},
		{"send_back", s.sendBack},
	}
	for _, m := range methods {
		if err := engine.Register(m.name, m.fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", m.name, err)
		}
	}
	return nil
}

// getTimeDate ignores its params and reports the service clock's date as a
// string of concatenated year, month, and day numbers.
func (s *Service) getTimeDate(w *microrpc.ResponseWriter, _ *microrpc.Request) {
	now := s.now()
	w.Result(fmt.Sprintf(`"%d%d%d"`, now.Year(), int(now.Month()), now.Day()))
}

// search expects params [{"last_name": ..., "age": ...}] and looks the person
// up by name. Parameter order inside the object does not matter.
func (s *Service) search(w *microrpc.ResponseWriter, r *microrpc.Request) {
	t := r.Tree
	person := t.Value(r.Params, 0, "")
	lastName := t.Value(person, 0, "last_name")
	age := t.Value(person, 0, "age")
	if lastName < 0 || t.KindOf(age) != microrpc.KindPrimitive {
		w.Error(microrpc.CodeInvalidParams, "")
		return
	}
	if string(t.Bytes(lastName)) == "Python" && string(t.Bytes(age)) == "26" {
		w.Result(`"Monty"`)
		return
	}
	w.Result(`"none"`)
}

func (s *Service) errExample(w *microrpc.ResponseWriter, _ *microrpc.Request) {
	w.Error(-32000, "Something went wrong..")
}

// calculate expects params [{"first": ..., "second": ..., "op": ...}] and
// applies the named arithmetic operation. Operands may use any C integer
// literal spelling.
func (s *Service) calculate(w *microrpc.ResponseWriter, r *microrpc.Request) {
	t := r.Tree
	args := t.Value(r.Params, 0, "")
	op := t.Value(args, 0, "op")
	first, ok1 := intValue(t, t.Value(args, 0, "first"))
	second, ok2 := intValue(t, t.Value(args, 0, "second"))
	if !ok1 || !ok2 || t.KindOf(op) != microrpc.KindString {
		w.Error(microrpc.CodeInvalidParams, "")
		return
	}

	var res int64
	switch string(t.Bytes(op)) {
	case "*":
		res = first * second
	case "+":
		res = first + second
	case "-":
		res = first - second
	case "/":
		if second == 0 {
			w.Error(microrpc.CodeInvalidParams, "")
			return
		}
		res = first / second
	default:
		w.Error(microrpc.CodeInvalidParams, "")
		return
	}
	w.Result(fmt.Sprintf(`{"operation": %q, "res": %d}`, t.Bytes(op), res))
}

// orderedParams extracts params positionally: an integer, a string, and
// another integer, echoed back as named members.
func (s *Service) orderedParams(w *microrpc.ResponseWriter, r *microrpc.Request) {
	t := r.Tree
	first, ok1 := intValue(t, t.Value(r.Params, 0, ""))
	second := t.Value(r.Params, 1, "")
	third, ok3 := intValue(t, t.Value(r.Params, 2, ""))
	if !ok1 || t.KindOf(second) != microrpc.KindString || !ok3 {
		w.Error(microrpc.CodeInvalidParams, "")
		return
	}
	w.Result(fmt.Sprintf(`{"first": %d, "second": "%s", "third": %d}`,
		first, t.Bytes(second), third))
}

// sendBack echoes the "what" parameter. The value is reproduced from its raw
// span, so escapes arrive exactly as sent.
func (s *Service) sendBack(w *microrpc.ResponseWriter, r *microrpc.Request) {
	t := r.Tree
	what := t.Value(t.Value(r.Params, 0, ""), 0, "what")
	if t.KindOf(what) != microrpc.KindString {
		w.Error(microrpc.CodeInvalidParams, "")
		return
	}
	w.Result(fmt.Sprintf(`{"res": "%s"}`, t.Bytes(what)))
}

func (s *Service) handleMessage(w *microrpc.ResponseWriter, _ *microrpc.Request) {
	w.Result(`"OK"`)
}

// intValue reads the primitive token at tok as a C-style integer literal:
// decimal, 0x hex, or leading-zero octal, with an optional sign.
func intValue(t microrpc.Tree, tok int) (int64, bool) {
	if t.KindOf(tok) != microrpc.KindPrimitive {
		return 0, false
	}
	n, err := strconv.ParseInt(t.Text(tok), 0, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
