package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/okra-platform/ddgen/internal/emitter"
)

// Emit prints the artifacts the generator will produce for files, one per line
func (c *Controller) Emit(ctx context.Context, files []string, absolute bool) error {
	p, err := c.loadProject()
	if err != nil {
		return err
	}
	docs, err := p.documents(files)
	if err != nil {
		return err
	}

	var outputs []string
	if absolute {
		outputs, err = c.newRule(p).Outputs(docs)
	} else {
		outputs, err = emitter.Predict(docs)
	}
	if err != nil {
		return err
	}

	w := c.stdout()
	for _, o := range outputs {
		if !absolute {
			o = filepath.FromSlash(o)
		}
		fmt.Fprintln(w, o)
	}
	return nil
}
