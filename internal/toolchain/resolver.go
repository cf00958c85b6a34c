// Package toolchain finds the external code generator and the environment it
// needs to run.
package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// GeneratorName is the executable looked up on the search path
	GeneratorName = "ajcodegen.py"

	// codegenSubdir is where the generator lives inside a repository checkout
	codegenSubdir = "devtools/codegen"

	// scriptsSubdir holds the installed generator script under codegenSubdir
	scriptsSubdir = "build/scripts-2.7"
)

// Env is everything the resolver reads. Callers build it explicitly instead
// of the resolver consulting process state.
type Env struct {
	// SearchPath is a PATH-style list of directories
	SearchPath string

	// RepoRoot is the repository checkout used as fallback installation root
	RepoRoot string

	// Arch is the CPU tag used by 64-bit module layouts (e.g. x86_64)
	Arch string

	// Base is the environment handed to the generator, in KEY=VALUE form
	Base []string
}

// Tool is a resolved generator ready to be spawned.
type Tool struct {
	Path string
	Env  []string
}

// FileSystem is the subset of filesystem operations the resolver needs.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
}

type osFileSystem struct{}

func (osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// Resolver resolves the generator executable.
type Resolver struct {
	fs     FileSystem
	layout ModuleLayout
	logger zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFileSystem replaces the filesystem used for existence checks.
func WithFileSystem(fs FileSystem) Option {
	return func(r *Resolver) { r.fs = fs }
}

// WithLayout replaces the runtime module layout strategy.
func WithLayout(layout ModuleLayout) Option {
	return func(r *Resolver) { r.layout = layout }
}

// WithLogger sets the resolver logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver using the real filesystem and the python 2.7
// module layout unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		fs:     osFileSystem{},
		layout: Python27Layout{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the generator found on the search path, or the one
// installed under the repository root together with its module path.
func (r *Resolver) Resolve(env Env) (*Tool, error) {
	if path, ok := r.lookPath(env.SearchPath); ok {
		r.logger.Debug().Str("path", path).Msg("generator found on search path")
		return &Tool{Path: path, Env: copyEnv(env.Base)}, nil
	}

	if env.RepoRoot == "" {
		return nil, fmt.Errorf("%w: %s not on search path and no repository root configured", ErrToolNotFound, GeneratorName)
	}

	root, err := filepath.Abs(filepath.Join(env.RepoRoot, codegenSubdir))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid repository root %s: %v", ErrToolNotFound, env.RepoRoot, err)
	}

	candidate := filepath.Join(root, scriptsSubdir, GeneratorName)
	if info, err := r.fs.Stat(candidate); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s does not exist", ErrToolNotFound, candidate)
	}

	moduleDir := ""
	for _, dir := range r.layout.Candidates(root, env.Arch) {
		if info, err := r.fs.Stat(dir); err == nil && info.IsDir() {
			moduleDir = dir
			break
		}
	}
	if moduleDir == "" {
		return nil, fmt.Errorf("%w: no runtime module directory under %s", ErrToolNotFound, filepath.Join(root, "build"))
	}

	r.logger.Debug().
		Str("path", candidate).
		Str(r.layout.EnvVar(), moduleDir).
		Msg("generator found under repository root")

	return &Tool{
		Path: candidate,
		Env:  setEnv(env.Base, r.layout.EnvVar(), moduleDir),
	}, nil
}

// lookPath searches each directory of searchPath for an executable
// generator. Empty entries are skipped.
func (r *Resolver) lookPath(searchPath string) (string, bool) {
	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, GeneratorName)
		info, err := r.fs.Stat(path)
		if err != nil || info.IsDir() || info.Mode().Perm()&0111 == 0 {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		return abs, true
	}
	return "", false
}

// ModuleDir returns the value the tool environment assigns to the layout's
// module variable, if any.
func (r *Resolver) ModuleDir(tool *Tool) string {
	prefix := r.layout.EnvVar() + "="
	for _, kv := range tool.Env {
		if strings.HasPrefix(kv, prefix) {
			return strings.TrimPrefix(kv, prefix)
		}
	}
	return ""
}

func copyEnv(env []string) []string {
	out := make([]string, len(env))
	copy(out, env)
	return out
}

// setEnv returns a copy of env with key set to value, replacing any existing
// entries for key.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix+value)
}
