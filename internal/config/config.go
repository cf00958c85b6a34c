package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/okra-platform/ddgen/internal/generate"
	"github.com/okra-platform/ddgen/internal/toolchain"
)

// FileName is the configuration file searched for from the working directory
const FileName = "ddgen.json"

// Environment variables overriding the configuration file
const (
	EnvRepoRoot = "AJ_ROOT"
	EnvArch     = "DDGEN_ARCH"
)

// Config represents the ddgen.json configuration file
type Config struct {
	Sources   []string        `json:"sources"`
	Output    string          `json:"output"`
	Generator GeneratorConfig `json:"generator"`
	Watch     WatchConfig     `json:"watch"`
}

// GeneratorConfig locates and parameterizes the code generator
type GeneratorConfig struct {
	Backend  string `json:"backend"`
	RepoRoot string `json:"repo_root"`
	Arch     string `json:"arch"`
}

// WatchConfig contains watch mode configuration
type WatchConfig struct {
	Exclude []string `json:"exclude"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads ddgen.json from the current directory or a parent directory.
// It returns the config and the directory containing it.
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadOrDefault behaves like LoadConfig but falls back to the defaults
// rooted at the working directory when no config file exists.
func LoadOrDefault() (*Config, string, error) {
	cfg, root, err := LoadConfig()
	if err == nil {
		return cfg, root, nil
	}
	var nf *notFoundError
	if !errors.As(err, &nf) {
		return nil, "", err
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg = Default()
	loadDotEnv(dir)
	cfg.applyEnv(os.LookupEnv)
	return cfg, dir, nil
}

// LoadConfigFromPath loads the configuration from a specific path. A .env file
// next to it is loaded into the process environment before overrides apply.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	loadDotEnv(filepath.Dir(path))
	config.applyEnv(os.LookupEnv)

	return &config, nil
}

// Encode renders cfg as indented JSON
func Encode(cfg *Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return append(data, '\n'), nil
}

func (c *Config) applyDefaults() {
	if len(c.Sources) == 0 {
		c.Sources = []string{"*.xml"}
	}
	if c.Output == "" {
		c.Output = "./build/codegen"
	}
	if c.Generator.Backend == "" {
		c.Generator.Backend = generate.DefaultBackend
	}
	if c.Generator.Arch == "" {
		c.Generator.Arch = DefaultArch()
	}
	if len(c.Watch.Exclude) == 0 {
		c.Watch.Exclude = []string{".git", "build", "generated"}
	}
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRepoRoot); ok && v != "" {
		c.Generator.RepoRoot = v
	}
	if v, ok := lookup(EnvArch); ok && v != "" {
		c.Generator.Arch = v
	}
}

// loadDotEnv loads dir/.env without overriding variables already set. A
// missing file is ignored.
func loadDotEnv(dir string) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))
}

// OutputDir returns the absolute output directory for a project root
func (c *Config) OutputDir(root string) string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(root, c.Output)
}

// ExpandSources expands the source globs relative to root. Results are sorted
// and free of duplicates.
func (c *Config) ExpandSources(root string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range c.Sources {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// ToolEnv builds the resolver input from the configuration and the given
// process environment.
func (c *Config) ToolEnv(root string, environ []string) toolchain.Env {
	env := toolchain.Env{
		Arch: c.Generator.Arch,
		Base: environ,
	}
	for _, kv := range environ {
		if strings.HasPrefix(kv, "PATH=") {
			env.SearchPath = strings.TrimPrefix(kv, "PATH=")
		}
	}
	if c.Generator.RepoRoot != "" {
		env.RepoRoot = c.Generator.RepoRoot
		if !filepath.IsAbs(env.RepoRoot) {
			env.RepoRoot = filepath.Join(root, env.RepoRoot)
		}
	}
	return env
}

// DefaultArch maps the running architecture to the tag used in python build
// directory names.
func DefaultArch() string {
	return archTag(runtime.GOARCH)
}

func archTag(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	default:
		return goarch
	}
}

type notFoundError struct {
	dir string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("no %s found in %s or any parent directory", FileName, e.dir)
}

// loadConfigFromDir searches for ddgen.json in the given directory and its parents
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			config, err := LoadConfigFromPath(configPath)
			if err != nil {
				return nil, "", err
			}
			return config, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", &notFoundError{dir: startDir}
}
