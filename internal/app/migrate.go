package app

import (
	"context"
	"fmt"

	"github.com/fiapx/video-orchestrator/config"
)

// Migrate applies pending schema migrations and exits.
func Migrate(ctx context.Context, cfg *config.Config) error {
	l := newLogger(cfg)

	var c closers
	defer c.closeAll()

	_, err := newVideoRepo(ctx, cfg, l, &c)
	if err != nil {
		return fmt.Errorf("app - Migrate - newVideoRepo: %w", err)
	}

	l.Info("app - Migrate - schema is up to date (%s)", cfg.Repository.Driver)

	return nil
}
