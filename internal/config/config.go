// Package config loads the loxwell CLI settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/loxwell/loxwell/internal/interpreter"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Prompt printed by the REPL before each line.
	Prompt string `yaml:"prompt"`
	// HistoryFile keeps REPL history between sessions. Empty disables history.
	HistoryFile string `yaml:"history_file"`
	// Profile selects which static diagnostics the resolver reports.
	Profile string `yaml:"profile"`
	// MaxCallDepth bounds call nesting before "Stack overflow." is raised.
	MaxCallDepth int `yaml:"max_call_depth"`
	// Echo prints the value of a REPL line that ends with an expression statement.
	Echo bool `yaml:"echo"`
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

func Default() Config {
	return Config{
		Prompt:       "> ",
		HistoryFile:  "",
		Profile:      interpreter.ProfileDefault,
		MaxCallDepth: interpreter.DefaultMaxCallDepth,
		Echo:         true,
	}
}

// Parse decodes YAML over the defaults. Keys not set in data keep their default;
// unknown keys are rejected. An empty document yields the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config: empty path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs ValidationError
	if !interpreter.IsKnownProfile(c.Profile) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("profile %q is not one of %v", c.Profile, interpreter.Profiles()))
	}
	if c.MaxCallDepth <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must be positive, got %d", c.MaxCallDepth))
	} else if c.MaxCallDepth > interpreter.MaxCallDepthLimit {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must be at most %d, got %d", interpreter.MaxCallDepthLimit, c.MaxCallDepth))
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
