package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/cli"
	"git.home.luguber.info/inful/adocxref/internal/pipeline"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	SourceFlags `embed:""`

	Format string `short:"f" default:"text" enum:"text,json" help:"Output format (text or json)"`
}

func (i *IndexCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	i.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	report, err := cli.NewExecutor(g.logger()).ExecuteIndex(context.Background(), cfg)
	if err != nil {
		return err
	}
	return writeIndex(g.out(), i.Format, report)
}

type anchorJSON struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Line   int      `json:"line"`
	Nav    int      `json:"nav"`
	UsedIn []string `json:"used_in,omitempty"`
}

type indexJSON struct {
	Component string       `json:"component"`
	Version   string       `json:"version"`
	Anchors   []anchorJSON `json:"anchors"`
}

func anchorRow(e *anchors.Entry) anchorJSON {
	row := anchorJSON{ID: e.ID, Source: e.Source.Ref.String(), Line: e.Line, Nav: e.Index.Nav}
	for _, doc := range e.UsedIn {
		if doc != e.Source {
			row.UsedIn = append(row.UsedIn, doc.Ref.String())
		}
	}
	return row
}

func writeIndex(w io.Writer, format string, report *pipeline.Report) error {
	if format == "json" {
		out := make([]indexJSON, 0, len(report.Components))
		for _, c := range report.Components {
			idx := indexJSON{Component: c.Component, Version: c.Version, Anchors: []anchorJSON{}}
			for _, e := range c.Index.Entries() {
				idx.Anchors = append(idx.Anchors, anchorRow(e))
			}
			out = append(out, idx)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, c := range report.Components {
		if _, err := fmt.Fprintf(w, "%s (%d anchors)\n", qualified(c.Component, c.Version), c.Index.Len()); err != nil {
			return err
		}
		for _, e := range c.Index.Entries() {
			row := anchorRow(e)
			_, _ = fmt.Fprintf(w, "  %s\t%s:%d", row.ID, row.Source, row.Line)
			if n := len(row.UsedIn); n > 0 {
				_, _ = fmt.Fprintf(w, "\tused in %d", n)
			}
			_, _ = fmt.Fprintln(w)
		}
	}
	return nil
}
