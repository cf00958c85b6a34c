// Package rule ties output prediction and generator execution together for
// one generation job.
package rule

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okra-platform/ddgen/internal/emitter"
	"github.com/rs/zerolog"
)

// Generator runs the code generator over a job.
type Generator interface {
	Run(docs []emitter.Document, outputDir string) error
}

// Result describes a finished build.
type Result struct {
	// Outputs are absolute artifact paths, in emission order
	Outputs []string

	// Regenerated is false when the outputs were already up to date
	Regenerated bool
}

// Rule is a generation job: a set of documents emitting into one directory.
type Rule struct {
	outputDir string
	backend   string
	generator Generator
	logger    zerolog.Logger
}

// New creates a rule writing into outputDir.
func New(outputDir, backend string, generator Generator, logger zerolog.Logger) *Rule {
	return &Rule{
		outputDir: outputDir,
		backend:   backend,
		generator: generator,
		logger:    logger,
	}
}

// OutputDir returns the directory the rule emits into.
func (r *Rule) OutputDir() string {
	return r.outputDir
}

// Outputs predicts the artifacts of docs as paths under the output directory.
func (r *Rule) Outputs(docs []emitter.Document) ([]string, error) {
	rel, err := emitter.Predict(docs)
	if err != nil {
		return nil, err
	}
	return r.join(rel), nil
}

func (r *Rule) join(rel []string) []string {
	out := make([]string, 0, len(rel))
	for _, p := range rel {
		out = append(out, filepath.Join(r.outputDir, filepath.FromSlash(p)))
	}
	return out
}

// Stale reports whether docs must be regenerated: an output is missing, or
// the inputs differ from the last successful generation.
func (r *Rule) Stale(docs []emitter.Document, outputs []string) (bool, error) {
	for _, p := range outputs {
		if _, err := os.Stat(p); err != nil {
			r.logger.Debug().Str("path", p).Msg("output missing")
			return true, nil
		}
	}

	stamp, err := readStamp(r.outputDir)
	if errors.Is(err, errCorruptStamp) {
		r.logger.Warn().Err(err).Str("path", filepath.Join(r.outputDir, StampFile)).Msg("ignoring unreadable stamp")
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if stamp == nil {
		return true, nil
	}
	return stamp.InputsHash != HashInputs(docs, r.backend), nil
}

// Build predicts the outputs of docs and runs the generator when they are
// stale or force is set.
func (r *Rule) Build(docs []emitter.Document, force bool) (*Result, error) {
	rel, err := emitter.Predict(docs)
	if err != nil {
		return nil, err
	}
	outputs := r.join(rel)

	if !force {
		stale, err := r.Stale(docs, outputs)
		if err != nil {
			return nil, err
		}
		if !stale {
			r.logger.Info().Int("outputs", len(outputs)).Msg("outputs up to date")
			return &Result{Outputs: outputs}, nil
		}
	}

	if err := r.generator.Run(docs, r.outputDir); err != nil {
		return nil, err
	}

	missing := missingOutputs(outputs)
	if len(missing) > 0 {
		return nil, fmt.Errorf("generator did not produce %d predicted outputs, first: %s", len(missing), missing[0])
	}

	if err := writeStamp(r.outputDir, &Stamp{
		InputsHash:  HashInputs(docs, r.backend),
		Outputs:     rel,
		GeneratedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	return &Result{Outputs: outputs, Regenerated: true}, nil
}

func missingOutputs(outputs []string) []string {
	var missing []string
	for _, p := range outputs {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}
