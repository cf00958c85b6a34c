// Package commands contains the CLI commands for the application
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okra-platform/ddgen/internal/config"
	"github.com/okra-platform/ddgen/internal/emitter"
	"github.com/okra-platform/ddgen/internal/generate"
	"github.com/okra-platform/ddgen/internal/rule"
	"github.com/okra-platform/ddgen/internal/toolchain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	LogLevel   string
	ConfigPath string
}

type Controller struct {
	Flags *Flags

	// Stdout receives command output; os.Stdout when nil
	Stdout io.Writer

	// Runner spawns the generator; os/exec when nil
	Runner generate.CommandRunner

	// Environ is the process environment; os.Environ() when nil
	Environ func() []string

	// Logger is the base logger; the global zerolog logger when nil
	Logger *zerolog.Logger
}

// project is a loaded configuration and the directory relative paths resolve against
type project struct {
	cfg  *config.Config
	root string
}

func (c *Controller) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

// logger returns the base logger tagged with component
func (c *Controller) logger(component string) zerolog.Logger {
	base := log.Logger
	if c.Logger != nil {
		base = *c.Logger
	}
	return base.With().Str("component", component).Logger()
}

func (c *Controller) environ() []string {
	if c.Environ != nil {
		return c.Environ()
	}
	return os.Environ()
}

func (c *Controller) loadProject() (*project, error) {
	if c.Flags != nil && c.Flags.ConfigPath != "" {
		cfg, err := config.LoadConfigFromPath(c.Flags.ConfigPath)
		if err != nil {
			return nil, err
		}
		root, err := filepath.Abs(filepath.Dir(c.Flags.ConfigPath))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config directory: %w", err)
		}
		return &project{cfg: cfg, root: root}, nil
	}

	cfg, root, err := config.LoadOrDefault()
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, root: root}, nil
}

// documents loads the named files, or the configured sources when none are given
func (p *project) documents(files []string) ([]emitter.Document, error) {
	if len(files) == 0 {
		expanded, err := p.cfg.ExpandSources(p.root)
		if err != nil {
			return nil, err
		}
		if len(expanded) == 0 {
			return nil, fmt.Errorf("no interface definitions match %v", p.cfg.Sources)
		}
		files = expanded
	}
	return emitter.LoadDocuments(files)
}

func (c *Controller) newResolver() *toolchain.Resolver {
	return toolchain.NewResolver(
		toolchain.WithLogger(c.logger("resolver")),
	)
}

func (c *Controller) newAction(p *project) *generate.Action {
	opts := []generate.ActionOption{
		generate.WithBackend(p.cfg.Generator.Backend),
		generate.WithOutput(c.stdout(), os.Stderr),
		generate.WithLogger(c.logger("generator")),
	}
	if c.Runner != nil {
		opts = append(opts, generate.WithRunner(c.Runner))
	}
	return generate.NewAction(c.newResolver(), p.cfg.ToolEnv(p.root, c.environ()), opts...)
}

func (c *Controller) newRule(p *project) *rule.Rule {
	return rule.New(
		p.cfg.OutputDir(p.root),
		p.cfg.Generator.Backend,
		c.newAction(p),
		c.logger("rule"),
	)
}

// Generate runs the code generator over files regardless of staleness
func (c *Controller) Generate(ctx context.Context, files []string) error {
	p, err := c.loadProject()
	if err != nil {
		return err
	}
	docs, err := p.documents(files)
	if err != nil {
		return err
	}
	return c.newAction(p).Run(docs, p.cfg.OutputDir(p.root))
}
