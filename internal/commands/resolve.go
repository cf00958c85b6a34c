package commands

import (
	"context"
	"fmt"
)

// Resolve prints the generator that would be used and its module path
func (c *Controller) Resolve(ctx context.Context) error {
	p, err := c.loadProject()
	if err != nil {
		return err
	}

	resolver := c.newResolver()
	tool, err := resolver.Resolve(p.cfg.ToolEnv(p.root, c.environ()))
	if err != nil {
		return err
	}

	w := c.stdout()
	fmt.Fprintf(w, "generator: %s\n", tool.Path)
	if dir := resolver.ModuleDir(tool); dir != "" {
		fmt.Fprintf(w, "module path: %s\n", dir)
	}
	return nil
}
