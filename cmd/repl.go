package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/loxwell/loxwell/internal/config"
)

// LineReader is the line editor behind the REPL.
// Readline returns readline.ErrInterrupt on Ctrl-C and io.EOF on Ctrl-D.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

func newReadline(cfg config.Config, stdout, stderr io.Writer) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          stdout,
		Stderr:          stderr,
	})
	if err != nil {
		return nil, err
	}
	return rl, nil
}

// runPrompt reads and runs one line at a time against a single session.
// Errors are reported and the prompt continues; Ctrl-C drops the current line
// and Ctrl-D ends the session.
func (app *LoxApp) runPrompt(ctx context.Context, s *session, cfg config.Config) error {
	rl, err := app.newLineReader(cfg, app.stdout, app.stderr)
	if err != nil {
		return &exitError{code: ExitSoftware, err: err}
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &exitError{code: ExitSoftware, err: err}
		}

		res, err := s.run(ctx, line)
		if ctx.Err() != nil {
			s.logger.Printf("prompt stopped: %v", ctx.Err())
			return nil
		}
		if err != nil {
			s.logger.Printf("line failed: %v", err)
			continue
		}

		if cfg.Echo && res.echo {
			fmt.Fprintln(app.stdout, res.value)
		}
	}
}
