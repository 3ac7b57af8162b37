package xref

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/labels"
	"git.home.luguber.info/inful/adocxref/internal/lint"
	"git.home.luguber.info/inful/adocxref/internal/logfields"
	"git.home.luguber.info/inful/adocxref/internal/textedit"
)

// LocalRewriter replaces local references to anchors of the index with
// xrefs to the page that carries the anchor.
type LocalRewriter struct {
	Generator *labels.Generator
	// AlternateStyle is the style of a following style pass. When set,
	// section references are left without a label for that pass to fill.
	AlternateStyle labels.Style
	Lint           *lint.State
	Logger         *slog.Logger
}

// NewLocalRewriter creates a local pass over the index of gen.
func NewLocalRewriter(gen *labels.Generator, alternate labels.Style, state *lint.State, logger *slog.Logger) *LocalRewriter {
	return &LocalRewriter{Generator: gen, AlternateStyle: alternate, Lint: state, Logger: loggerOr(logger)}
}

// reference is a local reference or a fragment xref found in a line.
type reference struct {
	id         string
	text       string
	start, end int
	// fragment marks the `xref:target#id[text]` form
	fragment bool
}

// Apply rewrites the references of doc and returns how many were replaced.
func (r *LocalRewriter) Apply(doc *catalog.Document) (int, error) {
	if r.Generator.Index.Len() == 0 || doc.Empty() {
		return 0, nil
	}
	lines := textedit.SplitLines(doc.Text())
	skip := newSkipState()
	var edits []textedit.Edit

	for i, line := range lines.All() {
		if skip.skip(line) {
			continue
		}
		for _, ref := range findReferences(doc, line) {
			if ignored(line, ref.start) {
				continue
			}
			replacement, ok := r.replacement(doc, i, ref)
			if !ok || replacement == line[ref.start:ref.end] {
				continue
			}
			edits = append(edits, textedit.Edit{
				Start:       lines.Offset(i, ref.start),
				End:         lines.Offset(i, ref.end),
				Replacement: replacement,
			})
		}
	}
	if len(edits) == 0 {
		return 0, nil
	}

	updated, err := textedit.Apply(doc.Text(), edits)
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryInternal, "apply local reference edits").
			WithContext("document", doc.Ref.String()).
			Build()
	}
	doc.SetContents([]byte(updated))
	r.Logger.Debug("Replaced local references",
		logfields.Document(doc.Ref.String()),
		logfields.Count(len(edits)))
	return len(edits), nil
}

// findReferences returns the non-overlapping references of a line in
// order. Fragment xrefs into other components are not local.
func findReferences(doc *catalog.Document, line string) []reference {
	var refs []reference
	for _, l := range asciidoc.FindLocalRefs(line) {
		refs = append(refs, reference{id: l.ID, text: l.Text, start: l.Start, end: l.End})
	}
	for _, x := range asciidoc.FindFragmentXrefs(line) {
		rid := asciidoc.ParseResourceID(x.Target)
		if rid.Component != "" && rid.Component != doc.Ref.Component {
			continue
		}
		refs = append(refs, reference{id: x.ID, text: x.Text, start: x.Start, end: x.End, fragment: true})
	}
	slices.SortStableFunc(refs, func(a, b reference) int { return cmp.Compare(a.start, b.start) })

	out := refs[:0]
	end := -1
	for _, ref := range refs {
		if ref.start < end {
			continue
		}
		out = append(out, ref)
		end = ref.end
	}
	return out
}

// ignored reports references behind a `//` on the same line and escaped
// references.
func ignored(line string, start int) bool {
	return strings.Contains(line[:start], "//") || (start > 0 && line[start-1] == '\\')
}

func (r *LocalRewriter) replacement(doc *catalog.Document, line int, ref reference) (string, bool) {
	entry := r.Generator.Index.Get(ref.id)
	if entry == nil {
		return "", false
	}
	page, ok := r.referencePage(doc, line, ref, entry)
	if !ok {
		return "", false
	}

	label := ""
	switch {
	case ref.text != "":
		label = labels.PreventMathConversion(ref.text)
	case strings.HasPrefix(ref.id, "top-"):
	case strings.HasPrefix(ref.id, "sec-") && r.AlternateStyle != labels.StyleNone:
	default:
		style := labels.NormalizeStyle(strings.ReplaceAll(r.Generator.Attributes["xrefstyle"], "@", ""))
		label, _ = r.Generator.Label(page, ref.id, style, nil)
	}

	fragment := "#" + ref.id
	if page == doc && strings.HasPrefix(ref.id, "top-") {
		fragment = ""
	}
	p := page.Ref
	return "xref:" + p.Version + "@" + p.Component + ":" + p.Module + ":" + p.Relative + fragment + "[" + label + "]", true
}

// referencePage picks the page a reference resolves to: the only page
// among the usages of the anchor, else the first usage. Ambiguous fragment
// xrefs are left alone.
func (r *LocalRewriter) referencePage(doc *catalog.Document, line int, ref reference, entry *anchors.Entry) (*catalog.Document, bool) {
	var pages []*catalog.Document
	for _, d := range entry.UsedIn {
		if d.Ref.Family == catalog.FamilyPage {
			pages = append(pages, d)
		}
	}
	switch {
	case len(pages) == 1:
		return pages[0], true
	case len(entry.UsedIn) > 1:
		if ref.fragment {
			return nil, false
		}
		r.Lint.Report(lint.Issue{
			File:     doc.Ref.String(),
			Line:     line + 1,
			Severity: lint.SeverityWarning,
			Rule:     lint.RuleAmbiguousAnchor,
			Anchor:   ref.id,
			Message:  "anchor " + ref.id + " is used in multiple pages, using " + entry.UsedIn[0].Ref.Path(),
		})
		return entry.UsedIn[0], true
	case len(entry.UsedIn) == 1:
		return entry.UsedIn[0], true
	}
	return entry.Source, true
}
