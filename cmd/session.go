package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/loxwell/loxwell/internal/config"
	"github.com/loxwell/loxwell/internal/interpreter"
	"github.com/loxwell/loxwell/internal/loxerrors"
	"github.com/loxwell/loxwell/internal/parser"
	"github.com/loxwell/loxwell/internal/scanner"
	"github.com/loxwell/loxwell/internal/token"
)

const (
	emitTokens = "tokens"
	emitAST    = "ast"
	emitRPN    = "rpn"
)

// staticError marks scan, parse and resolve diagnostics; they suppress execution.
type staticError struct {
	err error
}

func (e *staticError) Error() string {
	return e.err.Error()
}

func (e *staticError) Unwrap() error {
	return e.err
}

// session is one interpreter with its globals and resolved bindings.
// A script uses one run; the REPL reuses the session for every line.
type session struct {
	emit        string
	stdout      io.Writer
	reporter    loxerrors.ErrReporter
	interpreter interpreter.Interpreter
	resolver    interpreter.Resolver
	logger      *log.Logger
}

// result of running one source text.
type result struct {
	value string
	// echo is set when the source ended with an expression statement.
	echo bool
}

func newSession(cfg config.Config, emit string, stdout, stderr io.Writer, logger *log.Logger) *session {
	reporter := loxerrors.NewErrReporter(stderr)
	eval := interpreter.NewInterpreter(
		interpreter.WithStdout(stdout),
		interpreter.WithErrorReporter(reporter),
		interpreter.WithMaxCallDepth(cfg.MaxCallDepth),
	)

	return &session{
		emit:        emit,
		stdout:      stdout,
		reporter:    reporter,
		interpreter: eval,
		resolver:    interpreter.NewResolver(eval, cfg.Profile),
		logger:      logger,
	}
}

// run scans, parses, resolves and interprets source. Every diagnostic is
// reported before run returns; static ones come back wrapped in *staticError.
func (s *session) run(ctx context.Context, source string) (result, error) {
	tokens, scanErr := scanner.NewScanner(source, s.reporter).Scan()
	s.logger.Printf("scanned %d tokens", len(tokens))
	if s.emit == emitTokens {
		return result{}, s.emitTokens(tokens, scanErr)
	}

	statements, parseErr := parser.NewParser(tokens, s.reporter).Parse()
	s.logger.Printf("parsed %d statements", len(statements))
	if err := errors.Join(scanErr, parseErr); err != nil {
		return result{}, &staticError{err: err}
	}

	switch s.emit {
	case emitAST:
		return result{}, s.emitAST(statements)
	case emitRPN:
		return result{}, s.emitRPN(statements)
	}

	if err := s.resolver.Resolve(ctx, statements); err != nil {
		if ctx.Err() != nil {
			return result{}, err
		}
		return result{}, &staticError{err: err}
	}

	value, err := s.interpreter.Interpret(ctx, statements)
	if err != nil {
		s.logger.Printf("interpret: %v", err)
		return result{}, err
	}

	_, echo := last(statements).(*parser.StmtExpression)
	return result{value: value, echo: echo}, nil
}

func (s *session) emitTokens(tokens []token.Token, scanErr error) error {
	if scanErr != nil {
		return &staticError{err: scanErr}
	}
	for _, tok := range tokens {
		if _, err := fmt.Fprintln(s.stdout, tok); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) emitAST(statements []parser.Stmt) error {
	printer := parser.NewAstPrinter()
	for _, stmt := range statements {
		if _, err := fmt.Fprintln(s.stdout, printer.PrintStmt(stmt)); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) emitRPN(statements []parser.Stmt) error {
	printer := parser.NewRPNPrinter()
	for _, stmt := range statements {
		expr, ok := stmt.(*parser.StmtExpression)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintln(s.stdout, printer.Print(expr.Expression)); err != nil {
			return err
		}
	}
	return nil
}

func last(statements []parser.Stmt) parser.Stmt {
	if len(statements) == 0 {
		return nil
	}
	return statements[len(statements)-1]
}
