package xref

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/attributes"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/include"
	"git.home.luguber.info/inful/adocxref/internal/labels"
	"git.home.luguber.info/inful/adocxref/internal/lint"
	"git.home.luguber.info/inful/adocxref/internal/logfields"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
	"git.home.luguber.info/inful/adocxref/internal/textedit"
)

// StyleRewriter injects labels computed in a given xref style into the
// qualified xrefs of a component-version.
type StyleRewriter struct {
	Store catalog.Store
	// Generator numbers against the index of the component-version being
	// rewritten.
	Generator *labels.Generator
	Lint      *lint.State
	Logger    *slog.Logger

	// secondary indexes of documents in other component-versions, by id
	secondary map[string]*labels.Generator
}

// NewStyleRewriter creates a style pass over the index of gen.
func NewStyleRewriter(store catalog.Store, gen *labels.Generator, state *lint.State, logger *slog.Logger) *StyleRewriter {
	return &StyleRewriter{
		Store:     store,
		Generator: gen,
		Lint:      state,
		Logger:    loggerOr(logger),
		secondary: map[string]*labels.Generator{},
	}
}

// Apply rewrites the xrefs of doc and of the documents it includes. It
// returns the number of xrefs that received a label or a style. A
// rewritten line is written back with its attribute references
// substituted.
func (r *StyleRewriter) Apply(doc *catalog.Document, style labels.Style) (int, error) {
	if !style.Valid() {
		return 0, errors.ValidationError("invalid xref style").
			WithContext("style", string(style)).
			Build()
	}
	inherited := map[string]string{
		"page-version":        doc.Ref.Version,
		"page-component-name": doc.Ref.Component,
	}
	return r.apply(doc, style, inherited, map[string]bool{})
}

func (r *StyleRewriter) apply(doc *catalog.Document, style labels.Style, inherited map[string]string, visiting map[string]bool) (int, error) {
	if lint.IsConfigPage(doc.Ref.Stem()) || doc.Empty() {
		return 0, nil
	}
	id := doc.Ref.ID()
	if visiting[id] {
		return 0, nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	if value, _ := attributes.FirstValue(doc.Lines(), "reftext_"+string(style), reftextScanLines); value != "" {
		if _, err := setReftext(doc, value); err != nil {
			return 0, errors.WrapError(err, errors.CategoryInternal, "set reftext").
				WithContext("document", doc.Ref.String()).
				Build()
		}
	}

	lines := textedit.SplitLines(doc.Text())
	skip := newSkipState()
	var edits []textedit.Edit
	count := 0

	for i, line := range lines.All() {
		if skip.skip(line) {
			continue
		}
		attributes.Update(inherited, line)
		resolved := attributes.Substitute(r.Generator.Attributes, inherited, line)

		if incomplete, ok := asciidoc.IncompleteXref(resolved); ok {
			r.Lint.WarnOnce("incomplete:"+doc.Ref.ID()+":"+incomplete, lint.Issue{
				File:     doc.Ref.String(),
				Line:     i + 1,
				Severity: lint.SeverityWarning,
				Rule:     lint.RuleIncompleteXref,
				Message:  "incomplete xref link found: " + incomplete,
			})
		}

		var lineEdits []textedit.Edit
		for _, x := range asciidoc.FindXrefs(resolved) {
			if text, ok := r.injection(doc, i, x, style); ok {
				lineEdits = append(lineEdits, textedit.Insert(x.Inner(), text))
			}
		}
		if len(lineEdits) > 0 {
			updated, err := textedit.Apply(resolved, lineEdits)
			if err != nil {
				return count, errors.WrapError(err, errors.CategoryInternal, "rewrite xrefs").
					WithContext("document", doc.Ref.String()).
					WithContext("line", i+1).
					Build()
			}
			edits = append(edits, lines.ReplaceLine(i, updated))
			count += len(lineEdits)
		}

		if target, inc, ok := include.ResolveLine(r.Store, doc.Ref, resolved); ok {
			n, err := r.apply(target, style, inherited, visiting)
			count += n
			if err != nil {
				return count, err
			}
			r.Logger.Debug("Followed include",
				logfields.Document(doc.Ref.String()),
				logfields.Include(inc.Address()),
				logfields.Count(n))
		}
	}

	if len(edits) == 0 {
		return count, nil
	}
	updated, err := textedit.Apply(doc.Text(), edits)
	if err != nil {
		return count, errors.WrapError(err, errors.CategoryInternal, "apply xref edits").
			WithContext("document", doc.Ref.String()).
			Build()
	}
	doc.SetContents([]byte(updated))
	return count, nil
}

// injection decides what to insert into the attribute list of x.
func (r *StyleRewriter) injection(doc *catalog.Document, line int, x asciidoc.Xref, style labels.Style) (string, bool) {
	tempStyle := labels.NormalizeStyle(x.Style)
	if !x.HasStyle || !tempStyle.Valid() {
		tempStyle = style
	}

	target, ok := r.resolveTarget(doc, line, x)
	if !ok || lint.IsConfigPage(target.Ref.Stem()) {
		return "", false
	}

	label, labelled := "", false
	if x.Fragment != "" {
		label, labelled, ok = r.fragmentLabel(doc, line, target, x.Fragment, tempStyle)
		if !ok {
			return "", false
		}
	} else {
		v := labels.TopAnchorValues(target, target.Lines(), tempStyle)
		label, labelled = labels.ApplyStyle(tempStyle, v.Parts(), r.Generator.Refsigs()), true
	}

	if x.Label != "" || strings.HasPrefix(x.Fragment, "fig-") || strings.HasPrefix(x.Fragment, "tab-") {
		return "", false
	}
	if labelled && label != "" {
		label = r.componentDefinitions(target, doc, label)
		switch {
		case target == doc && x.HasStyle:
			return "", false
		case target == doc:
			return "xrefstyle=" + string(style), true
		case x.HasStyle:
			return label + ", ", true
		}
		return label, true
	}
	if x.HasStyle {
		return "", false
	}
	return "xrefstyle=" + string(style), true
}

// fragmentLabel computes the label of an xref with a fragment. The label
// describes the target document when it declares the anchor, else the
// canonical source of the anchor. ok is false when the xref must be left
// alone.
func (r *StyleRewriter) fragmentLabel(doc *catalog.Document, line int, target *catalog.Document, anchorID string, style labels.Style) (label string, labelled, ok bool) {
	gen := r.Generator
	entry := gen.Index.Get(anchorID)
	if entry == nil && target.Ref.Component != doc.Ref.Component {
		gen = r.secondaryFor(target)
		entry = gen.Index.Get(anchorID)
	}

	anchorSource := target
	if entry == nil {
		if target.Ref.Component == doc.Ref.Component {
			msg := "anchor " + anchorID + " not found in anchor index"
			fix := ""
			if alt := strings.Replace(anchorID, "top-", "sec-", 1); alt != anchorID && gen.Index.Has(alt) {
				fix = "use " + alt
			}
			r.Lint.WarnOnce(doc.Ref.ID()+"#"+anchorID, lint.Issue{
				File:     doc.Ref.String(),
				Line:     line + 1,
				Severity: lint.SeverityWarning,
				Rule:     lint.RuleAnchorNotFound,
				Anchor:   anchorID,
				Message:  msg,
				Fix:      fix,
			})
			return "", false, false
		}
	} else {
		anchorSource = entry.Source
		if anchorSource != target && declaresAnchor(target, anchorID) {
			anchorSource = target
		}
		if anchorSource != target && !slices.Contains(entry.UsedIn, target) {
			r.Lint.Report(lint.Issue{
				File:     doc.Ref.String(),
				Line:     line + 1,
				Severity: lint.SeverityWarning,
				Rule:     lint.RuleAnchorNotInTarget,
				Anchor:   anchorID,
				Message:  fmt.Sprintf("anchor %s has no occurrence in %s, it is found in %s", anchorID, target.Ref.Path(), usedInPaths(entry)),
			})
			return "", false, false
		}
	}

	var parent *catalog.Document
	if anchorSource != target {
		parent = target
	}
	label, labelled = gen.Label(anchorSource, anchorID, style, parent)
	return label, labelled, true
}

// declaresAnchor reports whether doc itself, not one of its includes,
// declares id.
func declaresAnchor(doc *catalog.Document, id string) bool {
	for _, line := range doc.Lines() {
		if asciidoc.DeclaresAnchor(line, id) {
			return true
		}
	}
	return false
}

func usedInPaths(e *anchors.Entry) string {
	paths := make([]string, 0, len(e.UsedIn))
	for _, d := range e.UsedIn {
		paths = append(paths, d.Ref.Path())
	}
	return strings.Join(paths, ", ")
}

// resolveTarget finds the page an xref points to. Targets without a
// component resolve within the component-version of doc; a missing
// version means the latest version of the target component. When the
// page does not exist in that version, other versions are tried.
func (r *StyleRewriter) resolveTarget(doc *catalog.Document, line int, x asciidoc.Xref) (*catalog.Document, bool) {
	rid := asciidoc.ParseResourceID(x.Target)
	module := or(rid.Module, doc.Ref.Module)
	component, version := doc.Ref.Component, or(rid.Version, doc.Ref.Version)
	if rid.Component != "" {
		component = rid.Component
		version = rid.Version
		if version == "" {
			if cv, ok := r.Store.Latest(component); ok {
				version = cv.Version
			}
		}
	}

	ref := catalog.NewRef(component, version, module, catalog.FamilyPage, rid.Relative)
	if target, ok := r.Store.Find(ref); ok {
		return target, true
	}

	candidates := r.Store.Documents(catalog.Query{Component: component, Module: module, Family: catalog.FamilyPage})
	for _, candidate := range slices.Backward(candidates) {
		if candidate.Ref.Relative != ref.Relative {
			continue
		}
		r.Lint.Report(lint.Issue{
			File:     doc.Ref.String(),
			Line:     line + 1,
			Severity: lint.SeverityWarning,
			Rule:     lint.RuleVersionFallback,
			Message:  fmt.Sprintf("xref %s resolved in version %s instead of %s", x.Target, candidate.Ref.Version, version),
			Fix:      "qualify the xref with version " + candidate.Ref.Version,
		})
		return candidate, true
	}

	r.Lint.Report(lint.Issue{
		File:     doc.Ref.String(),
		Line:     line + 1,
		Severity: lint.SeverityWarning,
		Rule:     lint.RuleUnresolvedXref,
		Message:  "could not determine target of xref " + x.Target,
	})
	return nil, false
}

// secondaryFor indexes the anchors of a document in another
// component-version against that version's navigation.
func (r *StyleRewriter) secondaryFor(target *catalog.Document) *labels.Generator {
	id := target.Ref.ID()
	if gen, ok := r.secondary[id]; ok {
		return gen
	}
	var attrs map[string]string
	if cv, ok := r.Store.ComponentVersion(target.Ref.Component, target.Ref.Version); ok {
		attrs = cv.Attributes
	}
	nav := navorder.ForComponentVersion(r.Store, target.Ref.Component, target.Ref.Version)
	ctx := anchors.Context{Store: r.Store, Attributes: attrs, Nav: nav, Lint: r.Lint, Logger: r.Logger}
	index := anchors.Indexify(anchors.Extract(ctx, target, nil, nil, nil), nav)

	gen := r.Generator.WithIndex(index, attrs)
	if r.secondary == nil {
		r.secondary = map[string]*labels.Generator{}
	}
	r.secondary[id] = gen
	r.Logger.Debug("Built secondary anchor index",
		logfields.Document(target.Ref.String()),
		logfields.Count(index.Len()))
	return gen
}

// componentDefinitions substitutes the component attributes of the
// label's own component-version when it differs from the referring one.
func (r *StyleRewriter) componentDefinitions(labelDoc, doc *catalog.Document, label string) string {
	if labelDoc.Ref.SameVersion(doc.Ref) {
		return label
	}
	cv, ok := r.Store.ComponentVersion(labelDoc.Ref.Component, labelDoc.Ref.Version)
	if !ok {
		return label
	}
	return attributes.Substitute(cv.Attributes, nil, label)
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
