package toolchain

import (
	"path/filepath"
)

// ModuleLayout locates the runtime module directory of a generator installed
// under a repository checkout.
type ModuleLayout interface {
	// Candidates returns the directories to probe, most preferred first
	Candidates(codegenRoot, arch string) []string

	// EnvVar is the interpreter variable the chosen directory is injected into
	EnvVar() string
}

// Python27Layout is the distutils build layout of a python 2.7 generator:
// build/lib.linux-<arch>-2.7 for 64-bit builds, build/lib for 32-bit ones.
type Python27Layout struct{}

func (Python27Layout) Candidates(codegenRoot, arch string) []string {
	var dirs []string
	if arch != "" {
		dirs = append(dirs, filepath.Join(codegenRoot, "build", "lib.linux-"+arch+"-2.7"))
	}
	return append(dirs, filepath.Join(codegenRoot, "build", "lib"))
}

func (Python27Layout) EnvVar() string {
	return "PYTHONPATH"
}
