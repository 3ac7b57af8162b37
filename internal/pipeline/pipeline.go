// Package pipeline runs the analysis and rewrite passes over every
// component-version of a catalog.
package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/export"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/labels"
	"git.home.luguber.info/inful/adocxref/internal/lint"
	"git.home.luguber.info/inful/adocxref/internal/logfields"
	"git.home.luguber.info/inful/adocxref/internal/loft"
	"git.home.luguber.info/inful/adocxref/internal/metrics"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
	"git.home.luguber.info/inful/adocxref/internal/observability"
	"git.home.luguber.info/inful/adocxref/internal/xref"
)

// Stage names used for logging and metrics.
const (
	StageIndex   = "index"
	StageLocal   = "local"
	StageStyle   = "style"
	StageLoft    = "loft"
	StageOrphans = "orphans"
)

// Run outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeWarning  = "warning"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Options selects the passes of a run.
type Options struct {
	// LocalToGlobal rewrites <<id>> references to anchors on other pages.
	LocalToGlobal bool
	// AlternateStyle, when set, is injected into qualified xrefs.
	AlternateStyle   labels.Style
	Loft             bool
	Orphans          bool
	OrphanExceptions []string
}

// Store is the document store a run reads and writes.
type Store interface {
	loft.Store
}

// ComponentReport summarizes one component-version.
type ComponentReport struct {
	Component     string
	Version       string
	Anchors       int
	LocalRewrites int
	StyleRewrites int
	Orphans       int
	Generated     []string
	// Index is the anchor index the passes ran against.
	Index *anchors.Map
}

// Report is the outcome of a run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Components []ComponentReport
	Lint       *lint.Result
}

// ExportRun converts the report into the rows of an anchor export.
func (r *Report) ExportRun() export.Run {
	run := export.Run{ID: r.RunID, StartedAt: r.StartedAt}
	for _, c := range r.Components {
		run.Indexes = append(run.Indexes, export.ComponentIndex{
			Component: c.Component,
			Version:   c.Version,
			Index:     c.Index,
		})
	}
	return run
}

// Rewrites returns the total number of rewritten references.
func (r *Report) Rewrites() int {
	n := 0
	for _, c := range r.Components {
		n += c.LocalRewrites + c.StyleRewrites
	}
	return n
}

// Runner executes passes over a store.
type Runner struct {
	opts     Options
	logger   *slog.Logger
	recorder metrics.Recorder
	newID    func() string
}

// NewRunner creates a runner. A nil logger uses slog.Default.
func NewRunner(opts Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		opts:     opts,
		logger:   logger,
		recorder: metrics.NoopRecorder{},
		newID:    uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (r *Runner) WithRecorder(rec metrics.Recorder) *Runner {
	if rec != nil {
		r.recorder = rec
	}
	return r
}

// Run processes every component-version of store in catalog order. Lint
// findings never fail a run; errors do, and the partial report is returned
// alongside them.
func (r *Runner) Run(ctx context.Context, store Store) (*Report, error) {
	if r.opts.AlternateStyle != labels.StyleNone && !r.opts.AlternateStyle.Valid() {
		return nil, errors.ValidationError("invalid alternate xref style").
			WithContext("style", string(r.opts.AlternateStyle)).
			Build()
	}

	start := time.Now()
	report := &Report{RunID: r.newID(), StartedAt: start}
	ctx = observability.WithRunID(ctx, report.RunID)
	state := lint.NewState(observability.Logger(ctx, r.logger))

	observability.InfoContext(ctx, r.logger, "Starting run",
		slog.Int("component_versions", len(store.ComponentVersions())),
		slog.Bool("local_to_global", r.opts.LocalToGlobal),
		logfields.Style(string(r.opts.AlternateStyle)))

	finish := func(outcome string) {
		report.Duration = time.Since(start)
		report.Lint = state.Result()
		r.recorder.ObserveRunDuration(report.Duration)
		r.recorder.IncRunOutcome(outcome)
	}

	for _, cv := range store.ComponentVersions() {
		if err := ctx.Err(); err != nil {
			finish(OutcomeCanceled)
			return report, err
		}
		cr, err := r.runComponentVersion(observability.WithComponentVersion(ctx, cv.Name, cv.Version), store, cv, state)
		if err != nil {
			finish(OutcomeFailed)
			return report, err
		}
		report.Components = append(report.Components, cr)
	}

	result := state.Result()
	for _, issue := range result.Issues {
		r.recorder.IncLintIssue(issue.Rule, strings.ToLower(issue.Severity.String()))
	}
	outcome := OutcomeSuccess
	if result.HasErrors() || result.HasWarnings() {
		outcome = OutcomeWarning
	}
	finish(outcome)

	observability.InfoContext(ctx, r.logger, "Run complete",
		slog.String("outcome", outcome),
		slog.Int("rewrites", report.Rewrites()),
		slog.Int("issues", len(report.Lint.Issues)),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report, nil
}

func (r *Runner) runComponentVersion(ctx context.Context, store Store, cv *catalog.ComponentVersion, state *lint.State) (ComponentReport, error) {
	cr := ComponentReport{Component: cv.Name, Version: cv.Version}
	logger := observability.Logger(ctx, r.logger)

	pages := store.Documents(catalog.Query{Component: cv.Name, Version: cv.Version, Family: catalog.FamilyPage})
	partials := store.Documents(catalog.Query{Component: cv.Name, Version: cv.Version, Family: catalog.FamilyPartial})
	state.AddFiles(len(pages) + len(partials))

	nav := navorder.ForComponentVersion(store, cv.Name, cv.Version)
	var gen *labels.Generator

	err := r.stage(ctx, StageIndex, func(context.Context) error {
		actx := anchors.Context{Store: store, Attributes: cv.Attributes, Nav: nav, Lint: state, Logger: logger}
		cr.Index = anchors.BuildIndex(actx, pages)
		cr.Anchors = cr.Index.Len()
		gen = &labels.Generator{Store: store, Attributes: cv.Attributes, Index: cr.Index, Lint: state, Logger: logger}
		r.recorder.SetAnchorsIndexed(cv.Name, cv.Version, cr.Anchors)
		return nil
	})
	if err != nil {
		return cr, err
	}

	if r.opts.LocalToGlobal && cr.Anchors > 0 {
		err = r.stage(ctx, StageLocal, func(context.Context) error {
			rw := xref.NewLocalRewriter(gen, r.opts.AlternateStyle, state, logger)
			for _, doc := range slices.Concat(pages, partials) {
				n, err := rw.Apply(doc)
				if err != nil {
					return err
				}
				cr.LocalRewrites += n
			}
			r.recorder.AddReferencesRewritten(metrics.KindLocal, cr.LocalRewrites)
			return nil
		})
		if err != nil {
			return cr, err
		}
	}

	if r.opts.AlternateStyle != labels.StyleNone {
		err = r.stage(ctx, StageStyle, func(context.Context) error {
			rw := xref.NewStyleRewriter(store, gen, state, logger)
			for _, doc := range slices.Concat(pages, partials) {
				n, err := rw.Apply(doc, r.opts.AlternateStyle)
				if err != nil {
					return err
				}
				cr.StyleRewrites += n
			}
			r.recorder.AddReferencesRewritten(metrics.KindStyle, cr.StyleRewrites)
			return nil
		})
		if err != nil {
			return cr, err
		}
	}

	if r.opts.Loft {
		err = r.stage(ctx, StageLoft, func(context.Context) error {
			written, err := loft.Generate(gen, store, cv, cr.Index, nav)
			for _, doc := range written {
				cr.Generated = append(cr.Generated, doc.Ref.String())
			}
			return err
		})
		if err != nil {
			return cr, err
		}
	}

	if r.opts.Orphans {
		err = r.stage(ctx, StageOrphans, func(context.Context) error {
			// loft may have extended the nav files
			current := navorder.ForComponentVersion(store, cv.Name, cv.Version)
			cr.Orphans = lint.CheckOrphans(state, store, cv, current, r.opts.OrphanExceptions)
			return nil
		})
		if err != nil {
			return cr, err
		}
	}

	observability.InfoContext(ctx, r.logger, "Processed component-version",
		slog.Int("anchors", cr.Anchors),
		slog.Int("local_rewrites", cr.LocalRewrites),
		slog.Int("style_rewrites", cr.StyleRewrites),
		slog.Int("orphans", cr.Orphans))
	return cr, nil
}

// stage times fn and records its result.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, name)
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	r.recorder.ObserveStageDuration(name, d)
	if err != nil {
		r.recorder.IncStageResult(name, metrics.ResultFatal)
		observability.ErrorContext(ctx, r.logger, "Stage failed", logfields.Error(err))
		if _, ok := errors.AsClassified(err); ok {
			return err
		}
		return errors.WrapError(err, errors.CategoryInternal, "stage failed").
			WithContext("stage", name).
			Build()
	}
	r.recorder.IncStageResult(name, metrics.ResultSuccess)
	observability.DebugContext(ctx, r.logger, "Stage complete",
		logfields.DurationMS(float64(d.Microseconds())/1000))
	return nil
}
