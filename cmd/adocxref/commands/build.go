package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/adocxref/internal/cli"
	"git.home.luguber.info/inful/adocxref/internal/config"
	"git.home.luguber.info/inful/adocxref/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SourceFlags `embed:""`

	Output        string `short:"o" help:"Output directory (overrides output.dir)" type:"path"`
	Style         string `help:"Alternate xref style injected into qualified references (full, short or basic)"`
	LocalToGlobal *bool  `name:"local-to-global" negatable:"" help:"Rewrite <<id>> references that point to other pages"`
	Loft          bool   `help:"Generate list of figures and list of tables pages"`
	DryRun        bool   `help:"Run every pass without writing output"`
	Format        string `short:"f" default:"text" enum:"text,json" help:"Summary format (text or json)"`
	MetricsFile   string `help:"Write Prometheus metrics to this textfile" type:"path"`
	ExportDB      string `name:"export-db" help:"Export the anchor index to this SQLite database" type:"path"`
}

// Apply overrides configuration values with the flags that were given.
func (b *BuildCmd) Apply(cfg *config.Config) {
	b.SourceFlags.Apply(cfg)
	if b.Output != "" {
		cfg.Output.Dir = b.Output
	}
	if b.Style != "" {
		cfg.Xref.AlternateStyle = b.Style
	}
	if b.LocalToGlobal != nil {
		cfg.Xref.LocalToGlobal = *b.LocalToGlobal
	}
	if b.Loft {
		cfg.Xref.Loft = true
	}
	if b.MetricsFile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = b.MetricsFile
	}
	if b.ExportDB != "" {
		cfg.Export.SQLite = b.ExportDB
	}
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	b.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := cli.NewExecutor(g.logger()).ExecuteBuild(ctx, cli.BuildRequest{Config: cfg, DryRun: b.DryRun})
	if resp != nil && resp.Report != nil {
		if perr := writeBuildSummary(g.out(), b.Format, resp); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

type componentSummary struct {
	Component     string   `json:"component"`
	Version       string   `json:"version"`
	Anchors       int      `json:"anchors"`
	LocalRewrites int      `json:"local_rewrites"`
	StyleRewrites int      `json:"style_rewrites"`
	Orphans       int      `json:"orphans"`
	Generated     []string `json:"generated,omitempty"`
}

type buildSummary struct {
	RunID      string             `json:"run_id"`
	DurationMS int64              `json:"duration_ms"`
	DryRun     bool               `json:"dry_run"`
	Output     string             `json:"output"`
	Written    int                `json:"written"`
	Errors     int                `json:"errors"`
	Warnings   int                `json:"warnings"`
	Components []componentSummary `json:"components"`
}

func summarize(resp *cli.BuildResponse) buildSummary {
	r := resp.Report
	s := buildSummary{
		RunID:      r.RunID,
		DurationMS: r.Duration.Milliseconds(),
		DryRun:     resp.DryRun,
		Output:     resp.OutputPath,
		Written:    resp.Written,
		Components: []componentSummary{},
	}
	if r.Lint != nil {
		s.Errors = r.Lint.ErrorCount()
		s.Warnings = r.Lint.WarningCount()
	}
	for _, c := range r.Components {
		s.Components = append(s.Components, summarizeComponent(c))
	}
	return s
}

func summarizeComponent(c pipeline.ComponentReport) componentSummary {
	return componentSummary{
		Component:     c.Component,
		Version:       c.Version,
		Anchors:       c.Anchors,
		LocalRewrites: c.LocalRewrites,
		StyleRewrites: c.StyleRewrites,
		Orphans:       c.Orphans,
		Generated:     c.Generated,
	}
}

func writeBuildSummary(w io.Writer, format string, resp *cli.BuildResponse) error {
	s := summarize(resp)
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	_, _ = fmt.Fprintf(w, "Run %s finished in %s\n", s.RunID, time.Duration(s.DurationMS)*time.Millisecond)
	for _, c := range s.Components {
		_, _ = fmt.Fprintf(w, "  %s: %d anchors, %d local and %d style rewrites, %d orphans\n",
			qualified(c.Component, c.Version), c.Anchors, c.LocalRewrites, c.StyleRewrites, c.Orphans)
		for _, g := range c.Generated {
			_, _ = fmt.Fprintf(w, "    generated %s\n", g)
		}
	}
	if s.Errors+s.Warnings > 0 {
		_, _ = fmt.Fprintf(w, "Lint: %d errors, %d warnings (run 'adocxref lint' for details)\n", s.Errors, s.Warnings)
	}
	if s.DryRun {
		_, err := fmt.Fprintln(w, "Dry run: nothing written")
		return err
	}
	_, err := fmt.Fprintf(w, "Wrote %d documents to %s\n", s.Written, s.Output)
	return err
}

func qualified(component, version string) string {
	if version == "" {
		return component
	}
	return component + "@" + version
}
