package interpreter

import (
	"io"
	"os"
	"time"

	"github.com/loxwell/loxwell/internal/loxerrors"
)

const (
	// DefaultMaxCallDepth bounds call nesting before "Stack overflow." is raised.
	DefaultMaxCallDepth = 4096
	// MaxCallDepthLimit is the deepest nesting the Go stack holds safely.
	MaxCallDepthLimit = 100_000
)

type interpreterOpts struct {
	stdout       io.Writer
	reporter     loxerrors.ErrReporter
	clock        func() time.Time
	maxCallDepth int
}

var defaultInterpreterOpts = interpreterOpts{
	stdout:       os.Stdout,
	reporter:     loxerrors.NewErrReporter(os.Stderr),
	clock:        time.Now,
	maxCallDepth: DefaultMaxCallDepth,
}

type InterpreterOption func(*interpreterOpts)

// WithStdout redirects the output of print statements.
func WithStdout(stdout io.Writer) InterpreterOption {
	return func(opts *interpreterOpts) {
		opts.stdout = stdout
	}
}

// WithErrorReporter sends static and runtime diagnostics to r. A nil r discards them.
func WithErrorReporter(r loxerrors.ErrReporter) InterpreterOption {
	return func(opts *interpreterOpts) {
		if r == nil {
			r = loxerrors.Discard()
		}
		opts.reporter = r
	}
}

// WithClock replaces the time source of the clock() built-in.
func WithClock(now func() time.Time) InterpreterOption {
	return func(opts *interpreterOpts) {
		opts.clock = now
	}
}

// WithMaxCallDepth sets the call nesting limit. Non-positive values keep the default,
// values above MaxCallDepthLimit are clamped to it.
func WithMaxCallDepth(depth int) InterpreterOption {
	return func(opts *interpreterOpts) {
		if depth > 0 {
			opts.maxCallDepth = min(depth, MaxCallDepthLimit)
		}
	}
}

func newInterpreterOpts(options ...InterpreterOption) *interpreterOpts {
	opts := defaultInterpreterOpts
	for _, opt := range options {
		opt(&opts)
	}

	return &opts
}
