package commands

import (
	"errors"

	"github.com/okra-platform/ddgen/internal/emitter"
	"github.com/okra-platform/ddgen/internal/generate"
	"github.com/okra-platform/ddgen/internal/toolchain"
)

// FailureKind names the class of a fatal error for user-facing reporting.
// Unclassified errors return an empty string.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, toolchain.ErrToolNotFound):
		return "ToolNotFound"
	case errors.Is(err, emitter.ErrNoInterfaceFound):
		return "NoInterfaceFound"
	case errors.Is(err, generate.ErrGenerationFailed):
		return "GenerationFailed"
	default:
		return ""
	}
}
