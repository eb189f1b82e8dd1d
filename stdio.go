package microrpc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// StdIOOption represents the options for the stdio server.
type StdIOOption func(*StdIO)

const (
	defaultStdIOArenaCapacity    = 256
	defaultStdIOResponseCapacity = 1024
)

// StdIO serves an Engine over newline-delimited JSON on an io.Reader/io.Writer
// pair, such as stdin/stdout. Each input line holds one request (single or
// batch); each produces one response line, except notifications which produce
// nothing. Requests are processed sequentially on a single Exchange whose
// arena and response buffer are sized at construction.
//
// Proper initialization requires using the NewStdIO constructor function to
// create new instances.
type StdIO struct {
	engine *Engine
	reader io.Reader
	writer io.Writer
	logger *slog.Logger

	arenaCapacity    int
	responseCapacity int
}

// NewStdIO creates a new StdIO instance serving engine on the provided reader
// and writer. The instance is initialized with default logging and default
// buffer sizes unless options override them.
func NewStdIO(engine *Engine, reader io.Reader, writer io.Writer, options ...StdIOOption) StdIO {
	s := StdIO{
		engine: engine,
		reader: reader,
		writer: writer,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(&s)
	}
	if s.arenaCapacity <= 0 {
		s.arenaCapacity = defaultStdIOArenaCapacity
	}
	if s.responseCapacity <= 0 {
		s.responseCapacity = defaultStdIOResponseCapacity
	}
	return s
}

// WithStdIOLogger sets the logger for the stdio server.
func WithStdIOLogger(logger *slog.Logger) StdIOOption {
	return func(s *StdIO) {
		s.logger = logger.With(
			slog.String("package", "go-microrpc"),
			slog.String("component", "stdio"),
		)
	}
}

// WithStdIOArenaCapacity returns a StdIOOption that configures how many tokens
// the serving loop's arena holds. Requests needing more fail with a parse
// error response.
func WithStdIOArenaCapacity(capacity int) StdIOOption {
	return func(s *StdIO) {
		s.arenaCapacity = capacity
	}
}

// WithStdIOResponseCapacity returns a StdIOOption that configures the response
// buffer size in bytes. Longer responses are truncated per the engine's
// bounded-buffer rules.
func WithStdIOResponseCapacity(capacity int) StdIOOption {
	return func(s *StdIO) {
		s.responseCapacity = capacity
	}
}

type lineWithErr struct {
	line string
	err  error
}

// Serve reads request lines until the reader is exhausted or ctx is canceled.
// It returns nil on clean end of input, ctx.Err() on cancellation, and the
// underlying error when reading or writing fails.
func (s StdIO) Serve(ctx context.Context) error {
	lines := make(chan lineWithErr)

	// Reading happens on its own goroutine so the loop can listen to ctx and
	// return if needed. Use bufio.Reader instead of bufio.Scanner to avoid max
	// token size errors.
	go func() {
		reader := bufio.NewReader(s.reader)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				select {
				case lines <- lineWithErr{err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case lines <- lineWithErr{line: strings.TrimSuffix(line, "\n")}:
			case <-ctx.Done():
				return
			}
		}
	}()

	x := &Exchange{
		Response: NewBuffer(make([]byte, s.responseCapacity)),
		Arena:    make([]Token, s.arenaCapacity),
	}
	out := make([]byte, 0, s.responseCapacity+1)

	for {
		var lwe lineWithErr
		select {
		case <-ctx.Done():
			return ctx.Err()
		case lwe = <-lines:
		}

		if lwe.err != nil {
			if errors.Is(lwe.err, io.EOF) {
				return nil
			}
			s.logger.Error("failed to read request line", "err", lwe.err)
			return fmt.Errorf("read request: %w", lwe.err)
		}

		if lwe.line == "" {
			continue
		}

		x.Request = []byte(lwe.line)
		resp := s.engine.Handle(x)
		if len(resp) == 0 {
			// Notifications produce no output line.
			continue
		}

		out = append(out[:0], resp...)
		out = append(out, '\n')
		if _, err := s.writer.Write(out); err != nil {
			s.logger.Error("failed to write response line", "err", err)
			return fmt.Errorf("write response: %w", err)
		}
	}
}
