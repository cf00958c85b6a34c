package generate

import (
	"errors"
	"io"
	"os/exec"
)

// Command is a fully specified generator invocation.
type Command struct {
	Args   []string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// CommandRunner spawns a command, waits for it and returns its exit status.
// A non-nil error means the process could not be run at all.
type CommandRunner interface {
	Run(cmd Command) (exitCode int, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(c Command) (int, error) {
	cmd := exec.Command(c.Args[0], c.Args[1:]...)
	cmd.Env = c.Env
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}
