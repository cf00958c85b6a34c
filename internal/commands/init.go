package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/okra-platform/ddgen/internal/config"
)

type InitOptions struct {
	RepoRoot string
	Sources  string
	Output   string
	Arch     string
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Getwd() (string, error)
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (fs *osFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

type InitCommand struct {
	filesystem FileSystem
	stdout     io.Writer
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand(stdout io.Writer) *InitCommand {
	return &InitCommand{
		filesystem: &osFileSystem{},
		stdout:     stdout,
	}
}

func (c *Controller) Init(ctx context.Context) error {
	cmd := NewInitCommand(c.stdout())
	return cmd.Run(ctx)
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	dir, err := ic.filesystem.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(dir, config.FileName)
	if _, err := ic.filesystem.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	var options *InitOptions
	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
	}

	cfg := config.Default()
	cfg.Generator.RepoRoot = options.RepoRoot
	if options.Sources != "" {
		cfg.Sources = []string{options.Sources}
	}
	if options.Output != "" {
		cfg.Output = options.Output
	}
	if options.Arch != "" {
		cfg.Generator.Arch = options.Arch
	}

	data, err := config.Encode(cfg)
	if err != nil {
		return err
	}
	if err := ic.filesystem.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}

	fmt.Fprintf(ic.stdout, "✅ Wrote %s\n", configPath)
	return nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	options := &InitOptions{
		Sources: "*.xml",
		Output:  "./build/codegen",
		Arch:    config.DefaultArch(),
	}

	form := ic.createInitForm(options)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return options, nil
}

func (ic *InitCommand) createInitForm(options *InitOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Interface definitions").
				Description("Glob matching the XML interface definitions").
				Value(&options.Sources).
				Validate(validateGlob),

			huh.NewInput().
				Title("Output directory").
				Description("Where generated sources are written").
				Value(&options.Output).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("output directory cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Repository root").
				Description("Checkout containing devtools/codegen, used when ajcodegen.py is not on PATH").
				Value(&options.RepoRoot).
				Validate(ic.validateRepoRoot),

			huh.NewSelect[string]().
				Title("Architecture").
				Description("Selects the 64-bit generator module directory").
				Options(
					huh.NewOption("x86_64", "x86_64"),
					huh.NewOption("aarch64", "aarch64"),
					huh.NewOption("i686 (32-bit layout)", "i686"),
				).
				Value(&options.Arch),
		),
	)
}

func validateGlob(s string) error {
	if s == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if _, err := filepath.Match(s, ""); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	return nil
}

// validateRepoRoot accepts an empty value, otherwise the directory must exist
func (ic *InitCommand) validateRepoRoot(s string) error {
	if s == "" {
		return nil
	}
	info, err := ic.filesystem.Stat(s)
	if err != nil {
		return fmt.Errorf("repository root %s not found", s)
	}
	if !info.IsDir() {
		return fmt.Errorf("repository root %s is not a directory", s)
	}
	return nil
}
