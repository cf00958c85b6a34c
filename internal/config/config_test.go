package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromPath(t *testing.T) {
	t.Setenv(EnvRepoRoot, "")
	t.Setenv(EnvArch, "")

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config with all fields",
			content: `{
  "sources": ["idl/*.xml"],
  "output": "./gen",
  "generator": {"backend": "tl", "repo_root": "/opt/aj", "arch": "armv7l"},
  "watch": {"exclude": ["vendor"]}
}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"idl/*.xml"}, cfg.Sources)
				assert.Equal(t, "./gen", cfg.Output)
				assert.Equal(t, GeneratorConfig{Backend: "tl", RepoRoot: "/opt/aj", Arch: "armv7l"}, cfg.Generator)
				assert.Equal(t, []string{"vendor"}, cfg.Watch.Exclude)
			},
		},
		{
			name:    "empty config gets defaults",
			content: `{}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"*.xml"}, cfg.Sources)
				assert.Equal(t, "./build/codegen", cfg.Output)
				assert.Equal(t, "ddcpp", cfg.Generator.Backend)
				assert.Equal(t, DefaultArch(), cfg.Generator.Arch)
				assert.Empty(t, cfg.Generator.RepoRoot)
				assert.Contains(t, cfg.Watch.Exclude, ".git")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0644))

			got, err := LoadConfigFromPath(configPath)
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestLoadConfigFromPath_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     *string
		errContains string
	}{
		{
			name:        "missing file",
			errContains: "failed to read config file",
		},
		{
			name:        "invalid json",
			content:     strPtr("{not json"),
			errContains: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), FileName)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(configPath, []byte(*tt.content), 0644))
			}

			_, err := LoadConfigFromPath(configPath)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func strPtr(s string) *string { return &s }

func TestLoadConfigFromPath_EnvOverrides(t *testing.T) {
	// Test: AJ_ROOT and DDGEN_ARCH win over the file
	t.Setenv(EnvRepoRoot, "/env/aj")
	t.Setenv(EnvArch, "i686")

	configPath := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(configPath, []byte(`{"generator": {"repo_root": "/file/aj", "arch": "x86_64"}}`), 0644))

	cfg, err := LoadConfigFromPath(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/env/aj", cfg.Generator.RepoRoot)
	assert.Equal(t, "i686", cfg.Generator.Arch)
}

func TestLoadConfigFromPath_DotEnv(t *testing.T) {
	// Test: .env next to the config file supplies AJ_ROOT
	if _, set := os.LookupEnv(EnvRepoRoot); set {
		t.Skip("AJ_ROOT already set in the environment")
	}
	t.Cleanup(func() { os.Unsetenv(EnvRepoRoot) })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AJ_ROOT=/dotenv/aj\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{}`), 0644))

	cfg, err := LoadConfigFromPath(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "/dotenv/aj", cfg.Generator.RepoRoot)
}

func TestLoadConfigFromDir(t *testing.T) {
	t.Setenv(EnvRepoRoot, "")

	// Create nested directory structure
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(`{"output": "./out"}`), 0644))

	cfg, dir, err := loadConfigFromDir(nested)
	require.NoError(t, err)
	assert.Equal(t, root, dir)
	assert.Equal(t, "./out", cfg.Output)
}

func TestLoadConfigFromDir_NotFound(t *testing.T) {
	_, _, err := loadConfigFromDir(t.TempDir())
	require.Error(t, err)

	var nf *notFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Contains(t, err.Error(), "no ddgen.json found")
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Setenv(EnvRepoRoot, "")
	t.Setenv(EnvArch, "")

	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	cfg.Generator.RepoRoot = "/opt/aj"
	cfg.Sources = []string{"idl/*.xml"}

	data, err := Encode(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	got, err := LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestConfig_ExpandSources(t *testing.T) {
	// Test: globs are expanded relative to the root, sorted and deduplicated
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "idl"), 0755))
	for _, name := range []string{"b.xml", "a.xml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "idl", name), nil, 0644))
	}

	cfg := &Config{Sources: []string{"idl/*.xml", "idl/a.*"}}
	files, err := cfg.ExpandSources(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "idl", "a.xml"),
		filepath.Join(root, "idl", "b.xml"),
	}, files)

	_, err = (&Config{Sources: []string{"["}}).ExpandSources(root)
	assert.Error(t, err)
}

func TestConfig_ToolEnv(t *testing.T) {
	cfg := &Config{Generator: GeneratorConfig{RepoRoot: "aj", Arch: "x86_64"}}
	environ := []string{"HOME=/home/test", "PATH=/usr/bin:/bin"}

	env := cfg.ToolEnv("/project", environ)
	assert.Equal(t, "/usr/bin:/bin", env.SearchPath)
	assert.Equal(t, filepath.Join("/project", "aj"), env.RepoRoot)
	assert.Equal(t, "x86_64", env.Arch)
	assert.Equal(t, environ, env.Base)

	cfg.Generator.RepoRoot = ""
	assert.Empty(t, cfg.ToolEnv("/project", environ).RepoRoot)
}

func TestConfig_OutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/project", "build", "codegen"), (&Config{Output: "./build/codegen"}).OutputDir("/project"))
	assert.Equal(t, "/abs/out", (&Config{Output: "/abs/out"}).OutputDir("/project"))
}

func TestArchTag(t *testing.T) {
	assert.Equal(t, "x86_64", archTag("amd64"))
	assert.Equal(t, "aarch64", archTag("arm64"))
	assert.Equal(t, "i686", archTag("386"))
	assert.Equal(t, "riscv64", archTag("riscv64"))
}

func TestLoadOrDefault_NoConfigFile(t *testing.T) {
	// Test: defaults rooted at the working directory when no ddgen.json exists
	t.Setenv(EnvRepoRoot, "/env/aj")
	dir := t.TempDir()
	chdir(t, dir)

	cfg, root, err := LoadOrDefault()
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, root)
	assert.Equal(t, []string{"*.xml"}, cfg.Sources)
	assert.Equal(t, "/env/aj", cfg.Generator.RepoRoot)
}

func TestLoadOrDefault_InvalidConfigFile(t *testing.T) {
	// Test: a broken ddgen.json is reported rather than replaced by defaults
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{"), 0644))
	chdir(t, dir)

	_, _, err := LoadOrDefault()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
