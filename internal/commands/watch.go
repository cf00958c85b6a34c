package commands

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/okra-platform/ddgen/internal/watch"
)

// Watch builds the configured sources, then rebuilds whenever a definition
// changes. Build failures are logged and watching continues.
func (c *Controller) Watch(ctx context.Context) error {
	p, err := c.loadProject()
	if err != nil {
		return err
	}
	r := c.newRule(p)
	logger := c.logger("watch")

	rebuild := func() {
		docs, err := p.documents(nil)
		if err == nil {
			_, err = r.Build(docs, false)
		}
		if err != nil {
			logger.Error().Err(err).Str("kind", FailureKind(err)).Msg("build failed")
			return
		}
		logger.Info().Int("documents", len(docs)).Msg("build up to date")
	}

	rebuild()

	fw, err := watch.NewFileWatcher(
		sourcePatterns(p.cfg.Sources),
		p.cfg.Watch.Exclude,
		func(path string, op fsnotify.Op) {
			logger.Debug().Str("path", path).Str("op", op.String()).Msg("definition changed")
			rebuild()
		},
		logger,
	)
	if err != nil {
		return err
	}
	defer fw.Close()

	fw.ExcludePath(p.cfg.OutputDir(p.root))
	if err := fw.AddDirectory(p.root); err != nil {
		return err
	}

	logger.Info().Str("root", p.root).Msg("watching for changes")
	if err := fw.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// sourcePatterns reduces source globs to the base-name patterns the watcher
// matches on
func sourcePatterns(sources []string) []string {
	patterns := make([]string, 0, len(sources))
	for _, s := range sources {
		patterns = append(patterns, filepath.Base(s))
	}
	return patterns
}
