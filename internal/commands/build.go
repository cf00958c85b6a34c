package commands

import (
	"context"
)

// Build regenerates code for files when their outputs are missing or their
// content changed since the last generation
func (c *Controller) Build(ctx context.Context, files []string, force bool) error {
	p, err := c.loadProject()
	if err != nil {
		return err
	}
	docs, err := p.documents(files)
	if err != nil {
		return err
	}

	res, err := c.newRule(p).Build(docs, force)
	if err != nil {
		return err
	}

	logger := c.logger("build")
	logger.Info().
		Int("documents", len(docs)).
		Int("outputs", len(res.Outputs)).
		Bool("regenerated", res.Regenerated).
		Msg("build finished")
	return nil
}
