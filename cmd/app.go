package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/loxwell/loxwell/internal/config"
	"github.com/loxwell/loxwell/internal/interpreter"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// Exit codes follow sysexits.h.
const (
	ExitOK       = 0
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitNoInput  = 66
	ExitSoftware = 70
)

// Set via -ldflags at build time.
var version = "dev"

var emitModes = []string{emitTokens, emitAST, emitRPN}

type LoxApp struct {
	stdout        io.Writer
	stderr        io.Writer
	newLineReader func(cfg config.Config, stdout, stderr io.Writer) (LineReader, error)
}

type AppOption func(*LoxApp)

func WithStdout(w io.Writer) AppOption {
	return func(app *LoxApp) {
		app.stdout = w
	}
}

func WithStderr(w io.Writer) AppOption {
	return func(app *LoxApp) {
		app.stderr = w
	}
}

// WithLineReader replaces the interactive line editor used by the REPL.
func WithLineReader(newLineReader func(cfg config.Config, stdout, stderr io.Writer) (LineReader, error)) AppOption {
	return func(app *LoxApp) {
		app.newLineReader = newLineReader
	}
}

func NewLoxApp(options ...AppOption) *LoxApp {
	app := &LoxApp{
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		newLineReader: newReadline,
	}
	for _, opt := range options {
		opt(app)
	}
	return app
}

// exitError carries the process exit code out of a cobra RunE.
// Its diagnostics have already been reported when it is returned.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit %d: %v", e.code, e.err)
}

func (e *exitError) Unwrap() error {
	return e.err
}

type rootFlags struct {
	configPath string
	profile    string
	emit       string
	verbose    bool
}

// Main runs the command line and returns the process exit code.
func (app *LoxApp) Main(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := app.newRootCommand()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	fmt.Fprintf(app.stderr, "Error: %v\n", err)
	fmt.Fprint(app.stderr, cmd.UsageString())
	return ExitUsage
}

func (app *LoxApp) newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "loxwell [script]",
		Short:         "Lox tree-walking interpreter",
		Long:          "Runs a Lox script, or starts an interactive prompt when no script is given.",
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), flags, args)
		},
	}

	cmd.SetOut(app.stdout)
	cmd.SetErr(app.stderr)

	cmd.Flags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&flags.profile, "profile", "", fmt.Sprintf("resolver profile %v (overrides config)", interpreter.Profiles()))
	cmd.Flags().StringVar(&flags.emit, "emit", "", fmt.Sprintf("print the pipeline output %v instead of running", emitModes))
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log pipeline phases to stderr")

	return cmd
}

func (app *LoxApp) run(ctx context.Context, flags *rootFlags, args []string) error {
	logger := log.New(io.Discard, "loxwell: ", 0)
	if flags.verbose {
		logger.SetOutput(app.stderr)
	}

	cfg, err := app.loadConfig(flags, logger)
	if err != nil {
		return err
	}

	if flags.emit != "" && !slices.Contains(emitModes, flags.emit) {
		return fmt.Errorf("unknown --emit mode %q, want one of %v", flags.emit, emitModes)
	}

	s := newSession(cfg, flags.emit, app.stdout, app.stderr, logger)

	if len(args) == 1 {
		return app.runFile(ctx, s, args[0])
	}
	return app.runPrompt(ctx, s, cfg)
}

func (app *LoxApp) loadConfig(flags *rootFlags, logger *log.Logger) (config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		var err error
		if cfg, err = config.Load(flags.configPath); err != nil {
			return config.Config{}, err
		}
		logger.Printf("config loaded from %s", flags.configPath)
	}

	if flags.profile != "" {
		cfg.Profile = flags.profile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	logger.Printf("profile=%s max_call_depth=%d", cfg.Profile, cfg.MaxCallDepth)
	return cfg, nil
}

func (app *LoxApp) runFile(ctx context.Context, s *session, scriptPath string) error {
	bytes, err := os.ReadFile(scriptPath)
	if err != nil {
		fmt.Fprintln(app.stderr, err)
		return &exitError{code: ExitNoInput, err: err}
	}
	s.logger.Printf("loaded %s (%d bytes)", scriptPath, len(bytes))

	if _, err := s.run(ctx, string(bytes)); err != nil {
		return &exitError{code: exitCode(err), err: err}
	}
	return nil
}

// exitCode maps a pipeline error to 65 for static diagnostics and 70 otherwise.
func exitCode(err error) int {
	var static *staticError
	if errors.As(err, &static) {
		return ExitDataErr
	}
	return ExitSoftware
}
