// Package generate runs the external code generator over interface
// definition documents.
package generate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okra-platform/ddgen/internal/emitter"
	"github.com/okra-platform/ddgen/internal/toolchain"
	"github.com/rs/zerolog"
)

// DefaultBackend selects the data-driven C++ backend of the generator.
const DefaultBackend = "ddcpp"

// ToolResolver resolves the generator for one invocation.
type ToolResolver interface {
	Resolve(env toolchain.Env) (*toolchain.Tool, error)
}

// Action runs the generator once per document.
type Action struct {
	resolver ToolResolver
	runner   CommandRunner
	env      toolchain.Env
	backend  string
	stdout   io.Writer
	stderr   io.Writer
	logger   zerolog.Logger
}

// ActionOption configures an Action.
type ActionOption func(*Action)

// WithRunner replaces the process runner.
func WithRunner(runner CommandRunner) ActionOption {
	return func(a *Action) { a.runner = runner }
}

// WithBackend overrides the generator backend tag.
func WithBackend(backend string) ActionOption {
	return func(a *Action) { a.backend = backend }
}

// WithOutput sets where the generator's stdout and stderr go.
func WithOutput(stdout, stderr io.Writer) ActionOption {
	return func(a *Action) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithLogger sets the action logger.
func WithLogger(logger zerolog.Logger) ActionOption {
	return func(a *Action) { a.logger = logger }
}

// NewAction creates an action resolving the generator from env on every run.
func NewAction(resolver ToolResolver, env toolchain.Env, opts ...ActionOption) *Action {
	a := &Action{
		resolver: resolver,
		runner:   ExecRunner{},
		env:      env,
		backend:  DefaultBackend,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run generates code for each document into outputDir. The first failure
// aborts the run; files written by earlier documents are left in place.
func (a *Action) Run(docs []emitter.Document, outputDir string) error {
	outDir, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory %s: %w", outputDir, err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, doc := range docs {
		if err := a.runOne(doc, outDir); err != nil {
			return err
		}
	}
	return nil
}

func (a *Action) runOne(doc emitter.Document, outDir string) error {
	tool, err := a.resolver.Resolve(a.env)
	if err != nil {
		return err
	}

	src, err := filepath.Abs(doc.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve definition path %s: %w", doc.Path, err)
	}

	args := []string{tool.Path, "-t", a.backend, "-p", outDir, src}
	a.logger.Debug().
		Str("command", strings.Join(args, " ")).
		Msg("running code generator")

	code, err := a.runner.Run(Command{
		Args:   args,
		Env:    tool.Env,
		Stdout: a.stdout,
		Stderr: a.stderr,
	})
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("tool", tool.Path).
			Str("path", doc.Path).
			Msg("code generator could not be started")
		return &GenerationError{Path: doc.Path, ExitCode: -1, Err: err}
	}
	if code != 0 {
		a.logger.Error().
			Str("path", doc.Path).
			Int("exit_code", code).
			Msg("code generator failed")
		return &GenerationError{Path: doc.Path, ExitCode: code}
	}

	a.logger.Info().Str("path", doc.Path).Msg("generated code")
	return nil
}
