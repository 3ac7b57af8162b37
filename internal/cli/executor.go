// Package cli wires configuration, content loading and the pass pipeline
// together for the command line front end.
package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/config"
	"git.home.luguber.info/inful/adocxref/internal/export"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/gitsource"
	"git.home.luguber.info/inful/adocxref/internal/labels"
	"git.home.luguber.info/inful/adocxref/internal/logfields"
	"git.home.luguber.info/inful/adocxref/internal/metrics"
	"git.home.luguber.info/inful/adocxref/internal/pipeline"
	"git.home.luguber.info/inful/adocxref/internal/retry"
)

// LoadFunc loads the catalog a configuration points at.
type LoadFunc func(cfg *config.Config) (*catalog.Catalog, error)

// BuildRequest describes one build.
type BuildRequest struct {
	Config *config.Config
	// DryRun runs every pass but writes nothing to the output directory.
	DryRun bool
}

// BuildResponse is the result of a build. Report is set whenever the
// pipeline ran, even when the build failed afterwards.
type BuildResponse struct {
	Report     *pipeline.Report
	Written    int
	OutputPath string
	DryRun     bool
}

// Executor runs commands against a loaded configuration.
type Executor struct {
	logger *slog.Logger
	load   LoadFunc
}

// NewExecutor creates an executor. A nil logger uses slog.Default.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger, load: LoadCatalog}
}

// WithLoader replaces the catalog loader (for testing).
func (e *Executor) WithLoader(fn LoadFunc) *Executor {
	if fn != nil {
		e.load = fn
	}
	return e
}

// LoadCatalog reads content from the working tree or from a git revision.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Source.Git != "" {
		return gitsource.Load(cfg.Source.Git, cfg.Source.Revision)
	}
	return catalog.LoadDir(cfg.Source.Dir)
}

// PipelineOptions maps the xref and orphan settings onto pass options.
func PipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	style, err := labels.ParseStyle(cfg.Xref.AlternateStyle)
	if err != nil {
		return pipeline.Options{}, errors.WrapError(err, errors.CategoryConfig, "invalid xref.alternate_style").
			WithContext("style", cfg.Xref.AlternateStyle).
			Build()
	}
	return pipeline.Options{
		LocalToGlobal:    cfg.Xref.LocalToGlobal,
		AlternateStyle:   style,
		Loft:             cfg.Xref.Loft,
		Orphans:          cfg.Orphans.Enabled,
		OrphanExceptions: cfg.Orphans.Exceptions,
	}, nil
}

// ExecuteBuild loads content, runs the passes and writes the results.
// Metrics are written even when the build fails.
func (e *Executor) ExecuteBuild(ctx context.Context, req BuildRequest) (*BuildResponse, error) {
	cfg := req.Config
	if cfg == nil {
		return nil, errors.ValidationError("build request has no configuration").Build()
	}
	opts, err := PipelineOptions(cfg)
	if err != nil {
		return nil, err
	}

	var prom *metrics.PrometheusRecorder
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheusRecorder(nil)
		rec = prom
	}

	resp := &BuildResponse{OutputPath: cfg.Output.Dir, DryRun: req.DryRun}
	err = e.build(ctx, cfg, opts, rec, req.DryRun, resp)

	if prom != nil && cfg.Metrics.Textfile != "" {
		if werr := prom.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			if err == nil {
				return resp, werr
			}
			e.logger.Warn("Failed to write metrics", logfields.Path(cfg.Metrics.Textfile), logfields.Error(werr))
		}
	}
	return resp, err
}

func (e *Executor) build(ctx context.Context, cfg *config.Config, opts pipeline.Options, rec metrics.Recorder, dryRun bool, resp *BuildResponse) error {
	store, err := e.load(cfg)
	if err != nil {
		return err
	}

	report, err := pipeline.NewRunner(opts, e.logger).WithRecorder(rec).Run(ctx, store)
	resp.Report = report
	if err != nil {
		return err
	}

	if !dryRun {
		n, err := writeOutput(store, cfg.Source.Dir, cfg.Output)
		resp.Written = n
		rec.AddDocumentsWritten(n)
		if err != nil {
			return err
		}
		e.logger.Info("Documents written", logfields.Path(cfg.Output.Dir), logfields.Count(n))
	}

	if cfg.Export.SQLite != "" {
		if err := exportAnchors(ctx, cfg.Export.SQLite, report); err != nil {
			return err
		}
		e.logger.Info("Anchors exported", logfields.Path(cfg.Export.SQLite), logfields.RunID(report.RunID))
	}
	return nil
}

// ExecuteIndex builds the anchor index of every component-version without
// running any rewrite pass.
func (e *Executor) ExecuteIndex(ctx context.Context, cfg *config.Config) (*pipeline.Report, error) {
	store, err := e.load(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(pipeline.Options{}, e.logger).Run(ctx, store)
}

// ExecuteLint runs the configured passes in memory and returns the report
// with its lint result. Nothing is written.
func (e *Executor) ExecuteLint(ctx context.Context, cfg *config.Config) (*pipeline.Report, error) {
	opts, err := PipelineOptions(cfg)
	if err != nil {
		return nil, err
	}
	store, err := e.load(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(opts, e.logger).Run(ctx, store)
}

func writeOutput(store *catalog.Catalog, source string, out config.OutputConfig) (int, error) {
	if out.Clean {
		if contains(out.Dir, source) {
			return 0, errors.ValidationError("refusing to clean an output directory that contains the content").
				WithContext("output", out.Dir).
				WithContext("source", source).
				Build()
		}
		if err := os.RemoveAll(out.Dir); err != nil {
			return 0, errors.WrapError(err, errors.CategoryFileSystem, "clean output directory").
				WithContext("path", out.Dir).
				Build()
		}
	}
	return store.WriteDir(out.Dir)
}

// contains reports whether dir is p or one of its parents.
func contains(dir, p string) bool {
	if p == "" {
		return false
	}
	d, err1 := filepath.Abs(dir)
	a, err2 := filepath.Abs(p)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(d, a)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func exportAnchors(ctx context.Context, path string, report *pipeline.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create export directory").
				WithContext("path", dir).
				Build()
		}
	}
	exp, err := export.NewSQLiteExporter(path)
	if err != nil {
		return err
	}
	defer func() { _ = exp.Close() }()
	run := report.ExportRun()
	return retry.DefaultPolicy().Do(ctx, export.IsBusy, func(ctx context.Context) error {
		return exp.Export(ctx, run)
	})
}
