package labels

import (
	"log/slog"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/attributes"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/lint"
	"git.home.luguber.info/inful/adocxref/internal/logfields"
)

// captionLimit is the number of lines, counted from the anchor line, in
// which a block caption must start.
const captionLimit = 4

// Generator computes labels against one anchor index.
type Generator struct {
	Store catalog.Store
	// Attributes are the component attributes of the index.
	Attributes map[string]string
	Index      *anchors.Map
	Lint       *lint.State
	Logger     *slog.Logger
}

// WithIndex returns a copy of g that numbers against another index, such
// as the secondary index of a different component-version.
func (g *Generator) WithIndex(index *anchors.Map, component map[string]string) *Generator {
	c := *g
	c.Index = index
	c.Attributes = component
	return &c
}

// Refsigs returns the refsigs configured for the component.
func (g *Generator) Refsigs() Refsigs {
	return RefsigsFrom(g.Attributes)
}

// located is the result of searching merged content for an anchor.
type located struct {
	lines []string
	at    int

	heading      asciidoc.Heading
	headingLines int
	headingFound bool

	caption      string
	captionLines int
}

// Label computes the link text for anchorID declared in doc. parent is the
// page that includes doc when the reference points at that page rather
// than at doc itself. It returns false when the anchor cannot be found in
// doc or is not indexed.
func (g *Generator) Label(doc *catalog.Document, anchorID string, style Style, parent *catalog.Document) (string, bool) {
	scope := attributes.NewScope(g.Attributes, ActiveAttributes(g.Store, g.Attributes, doc))
	lines := MergedContent(g.Store, g.Attributes, doc)
	for i, line := range lines {
		scope.Update(line)
		lines[i] = scope.Substitute(line)
	}

	loc, ok := locate(lines, anchorID)
	if !ok {
		msg := anchorID + " could not be found in " + doc.Ref.Path()
		if len(anchorID) > 4 && strings.Contains(strings.Join(lines, "\n"), anchorID[4:]) {
			msg += ", but a similar match exists"
		}
		g.Lint.Report(lint.Issue{
			File:     doc.Ref.String(),
			Severity: lint.SeverityWarning,
			Rule:     lint.RuleAnchorNotFound,
			Anchor:   anchorID,
			Message:  msg,
		})
		return "", false
	}

	kind := asciidoc.AnchorPrefix(anchorID)
	g.lintAnchor(doc, anchorID, kind, loc)

	entry := g.Index.Get(anchorID)
	if entry == nil {
		g.Lint.Report(lint.Issue{
			File:     doc.Ref.String(),
			Line:     loc.at + 1,
			Severity: lint.SeverityWarning,
			Rule:     lint.RuleLabelNotGenerated,
			Anchor:   anchorID,
			Message:  "anchor is not in the index of " + doc.Ref.Component,
		})
		return "", false
	}
	if parent != nil && kind == "top" {
		kind = "sec"
	}

	// captions take the attributes in effect at the anchor
	atAnchor := attributes.NewScope(g.Attributes, nil)
	for _, line := range lines[:loc.at+1] {
		atAnchor.Update(line)
	}

	sig := g.Refsigs()
	parts := Parts{Kind: kind}
	switch kind {
	case "fig":
		parts = g.captioned(parts, loc, entry, atAnchor.Caption("figure-caption", "Figure"))
	case "tab":
		parts = g.captioned(parts, loc, entry, atAnchor.Caption("table-caption", "Table"))
	case "code":
		parts = g.captioned(parts, loc, entry, atAnchor.Caption("listing-caption", ""))
	case "top":
		parts = TopAnchorValues(doc, lines, style).Parts()
	case "sec":
		heading, found := loc.heading, loc.headingFound
		if !found {
			heading, found = firstHeading(lines, 1)
		}
		if !found {
			g.Lint.Report(lint.Issue{
				File:     doc.Ref.String(),
				Line:     loc.at + 1,
				Severity: lint.SeverityWarning,
				Rule:     lint.RuleLabelNotGenerated,
				Anchor:   anchorID,
				Message:  "no heading found for section anchor",
			})
			return "", false
		}
		numbered := doc
		if parent != nil {
			numbered = parent
		}
		parts.Prefix = sectionPrefix(g.Store, g.Attributes, numbered, heading.Level, anchorID, parent != nil, sig)
		parts.Title = heading.Title
	case "bib":
	default:
		g.Lint.WarnOnce("non-standard:"+anchorID, lint.Issue{
			File:     doc.Ref.String(),
			Line:     loc.at + 1,
			Severity: lint.SeverityWarning,
			Rule:     lint.RuleNonStandardAnchor,
			Anchor:   anchorID,
			Message:  "non-standard anchor type detected",
		})
		parts.Value = AltText(doc, lines)
	}

	label := ApplyStyle(style, parts, sig)
	label = PreventMathConversion(scope.Substitute(label))
	g.logger().Debug("Generated label",
		logfields.Document(doc.Ref.String()),
		logfields.Anchor(anchorID),
		logfields.Style(string(style)),
		slog.String("label", label))
	return label, true
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// captioned fills the parts of a numbered block: the caption is the
// title, the caption word and the running count form the prefix.
func (g *Generator) captioned(parts Parts, loc located, entry *anchors.Entry, word string) Parts {
	count := anchors.CountBefore(g.Index, parts.Kind+"-", entry.Index)
	if loc.caption == "" || loc.captionLines > captionLimit {
		return parts
	}
	parts.Title = loc.caption
	parts.Value = loc.caption
	if word != "" {
		parts.Prefix = word + " " + strconv.Itoa(count)
	}
	return parts
}

func sectionPrefix(store catalog.Store, component map[string]string, doc *catalog.Document, level int, anchorID string, fromInclude bool, sig Refsigs) string {
	offset, _ := attributes.FirstValue(doc.Lines(), "titleoffset", 0)
	offset = strings.TrimSpace(offset)

	relative := RelativeSectionNumber(store, component, doc, level, anchorID, fromInclude)

	refsig := sig.Section
	if offset != "" && (offset[0] < '0' || offset[0] > '9') {
		refsig = sig.Appendix
	}
	prefix := strings.TrimSpace(refsig + " " + offset)
	if len(relative) > 1 && offset != "" {
		for _, n := range relative[1:] {
			prefix += "." + strconv.Itoa(n)
		}
	}
	return prefix
}

// locate finds the first line declaring id and the heading and caption
// that follow it.
func locate(lines []string, id string) (located, bool) {
	loc := located{lines: lines, at: -1}
	for i, line := range lines {
		if asciidoc.DeclaresAnchor(line, id) {
			loc.at = i
			break
		}
	}
	if loc.at < 0 {
		return loc, false
	}
	for i := loc.at + 1; i < len(lines); i++ {
		if h, ok := asciidoc.ParseHeading(lines[i]); ok {
			loc.heading, loc.headingLines, loc.headingFound = h, i-loc.at+1, true
			break
		}
	}
	for i := loc.at + 1; i < len(lines); i++ {
		if c, ok := asciidoc.ParseCaption(lines[i]); ok {
			loc.caption, loc.captionLines = c, i-loc.at+1
			break
		}
	}
	return loc, true
}

func firstHeading(lines []string, level int) (asciidoc.Heading, bool) {
	for _, line := range lines {
		if h, ok := asciidoc.ParseHeading(line); ok && h.Level == level {
			return h, true
		}
	}
	return asciidoc.Heading{}, false
}
