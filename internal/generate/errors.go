package generate

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationFailed means the generator failed or could not be started
	ErrGenerationFailed = errors.New("code generation failed")
)

// GenerationError reports the document and exit status of a failed
// generator run. Err is set when the process could not be started, in which
// case ExitCode is -1.
type GenerationError struct {
	Path     string
	ExitCode int
	Err      error
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: could not run generator for %s: %v", ErrGenerationFailed, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s exited with status %d", ErrGenerationFailed, e.Path, e.ExitCode)
}

// Unwrap makes errors.Is match ErrGenerationFailed and the start error.
func (e *GenerationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGenerationFailed, e.Err}
	}
	return []error{ErrGenerationFailed}
}
