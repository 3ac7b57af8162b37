package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/adocxref/internal/cli"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/logfields"
	"git.home.luguber.info/inful/adocxref/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildCmd `embed:""`

	Debounce string `help:"Quiet period before a rebuild (overrides watch.debounce)" placeholder:"DURATION"`
}

// Run builds once and then rebuilds whenever the content directory changes.
// Only directory sources can be watched.
func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	w.Apply(cfg)
	if w.Debounce != "" {
		cfg.Watch.Debounce = w.Debounce
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Source.Dir == "" {
		return errors.ValidationError("watch requires a content directory, not a git source").
			WithContext("git", cfg.Source.Git).
			Build()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := g.logger()
	exec := cli.NewExecutor(logger)
	rebuild := func(ctx context.Context) error {
		resp, err := exec.ExecuteBuild(ctx, cli.BuildRequest{Config: cfg, DryRun: w.DryRun})
		if resp != nil && resp.Report != nil {
			_ = writeBuildSummary(g.out(), w.Format, resp)
		}
		return err
	}

	if err := rebuild(ctx); err != nil {
		logger.Warn("Initial build failed", logfields.Error(err))
	}

	watcher := watch.New(cfg.Source.Dir, cfg.Watch.DebounceDuration(), logger).Skip(cfg.Output.Dir)
	if cfg.Export.SQLite != "" {
		watcher.Skip(cfg.Export.SQLite)
	}
	return watcher.Run(ctx, rebuild)
}
