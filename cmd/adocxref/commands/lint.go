package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/adocxref/internal/cli"
	"git.home.luguber.info/inful/adocxref/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	SourceFlags `embed:""`

	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
}

// Run lints the content. The exit status is 2 when errors were found and
// 1 when only warnings were found.
func (l *LintCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	l.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	report, err := cli.NewExecutor(g.logger()).ExecuteLint(context.Background(), cfg)
	if err != nil {
		return err
	}

	result := report.Lint
	if result == nil {
		result = &lint.Result{}
	}
	shown := result
	if l.Quiet {
		shown = result.AtLeast(lint.SeverityError)
	}
	source := cfg.Source.Dir
	if cfg.Source.Git != "" {
		source = cfg.Source.Git + "@" + cfg.Source.Revision
	}
	if err := lint.NewFormatter(l.Format).Format(g.out(), shown, source); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	switch {
	case result.HasErrors():
		return &ExitError{Code: 2}
	case result.HasWarnings() && !l.Quiet:
		return &ExitError{Code: 1}
	}
	return nil
}
