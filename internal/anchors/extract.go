package anchors

import (
	"log/slog"

	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/attributes"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/include"
	"git.home.luguber.info/inful/adocxref/internal/lint"
	"git.home.luguber.info/inful/adocxref/internal/logfields"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
)

// Context carries the collaborators of one component-version pass.
type Context struct {
	Store      catalog.Store
	Attributes map[string]string
	Nav        *navorder.Order
	Lint       *lint.State
	Logger     *slog.Logger
}

func (c Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

type found struct {
	id   string
	line int
}

// Extract collects the anchors declared in doc and, recursively, in the
// documents it includes.
//
// inherited holds the page attributes in effect and is updated as
// attribute entries are met. tags restricts the scan to tagged regions as
// given on an include directive. offset accumulates the line offset of
// nested includes so that line numbers stay comparable within the
// including page; nil starts at zero.
func Extract(ctx Context, doc *catalog.Document, inherited map[string]string, tags []string, offset *int) *Map {
	result := NewMap()
	if offset == nil {
		offset = new(int)
	}
	if inherited == nil {
		inherited = map[string]string{}
	}
	if doc.Empty() {
		ctx.Lint.Report(lint.Issue{
			File:     doc.Ref.String(),
			Severity: lint.SeverityWarning,
			Rule:     lint.RuleEmptyDocument,
			Message:  "empty file provided for anchor analysis",
		})
		return result
	}

	filter := newTagFilter(tags)
	blocks := asciidoc.NewBlockTracker(
		asciidoc.DelimiterListing,
		asciidoc.DelimiterExample,
		asciidoc.DelimiterFenced,
		asciidoc.DelimiterComment,
		asciidoc.DelimiterLiteral,
		asciidoc.DelimiterSidebar,
	)
	skipping := false
	last := 0
	var anchors []found

	for i, line := range doc.Lines() {
		if !filter.allow(line) {
			continue
		}
		last = i

		if asciidoc.IsSkipConditionStart(line) {
			skipping = true
		} else if skipping && asciidoc.IsConditionEnd(line) {
			skipping = false
		}
		blocks.Feed(line)
		if skipping || blocks.Inside() {
			continue
		}

		attributes.Update(inherited, line)
		line = attributes.Substitute(ctx.Attributes, inherited, line)

		if inc, ok := asciidoc.ParseInclude(line); ok {
			target, ok := include.Resolve(ctx.Store, doc.Ref, inc)
			switch {
			case !ok:
				ctx.Lint.Report(lint.Issue{
					File:     doc.Ref.String(),
					Line:     i + 1,
					Severity: lint.SeverityWarning,
					Rule:     lint.RuleUnresolvedInclude,
					Message:  "could not find include::" + inc.Address() + "[]",
				})
			case target == doc:
				ctx.logger().Info("Skipping self include", logfields.Document(doc.Ref.String()), logfields.Line(i+1))
			default:
				*offset += i
				partial := Extract(ctx, target, inherited, inc.Tags, offset)
				*offset -= i
				result = Merge(result, partial, ctx.Nav, doc)
			}
			continue
		}

		if d, ok := asciidoc.FindAnchor(line); ok {
			anchors = append(anchors, found{id: d.ID, line: i + *offset})
		}
	}

	for _, a := range anchors {
		if e := result.Get(a.id); e != nil {
			e.addUsage(doc, a.line)
			continue
		}
		result.Set(&Entry{ID: a.id, Source: doc, Line: a.line})
	}
	*offset += last
	return result
}

type tagRegion struct {
	include bool
	active  bool
}

// tagFilter decides which lines of an included document count. Without
// tags everything counts. With only positive tags a line counts inside an
// active tagged region. Any negated tag flips the default: every line
// counts except those inside an active negated region.
type tagFilter struct {
	regions map[string]*tagRegion
	negated bool
}

func newTagFilter(tags []string) *tagFilter {
	f := &tagFilter{regions: map[string]*tagRegion{}}
	for _, t := range tags {
		name, neg := t, false
		if len(t) > 0 && t[0] == '!' {
			name, neg = t[1:], true
			f.negated = true
		}
		f.regions[name] = &tagRegion{include: !neg}
	}
	return f
}

func (f *tagFilter) allow(line string) bool {
	if len(f.regions) == 0 {
		return true
	}
	if name, ok := asciidoc.ParseTagStart(line); ok {
		if r, ok := f.regions[name]; ok {
			r.active = true
		}
	} else if name, ok := asciidoc.ParseTagEnd(line); ok {
		if r, ok := f.regions[name]; ok {
			r.active = false
		}
	}

	for _, r := range f.regions {
		if f.negated && !r.include && r.active {
			return false
		}
		if !f.negated && r.active {
			return true
		}
	}
	return f.negated
}
