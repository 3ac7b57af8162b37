package labels

import (
	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/lint"
)

// maxTitleDistance is the largest line count, anchor line included, at
// which a title still directly follows its anchor.
const maxTitleDistance = 2

// lintAnchor checks the anchor naming conventions: code anchors sit on a
// titled listing, top anchors on the document title of a page and sec
// anchors on a section title.
func (g *Generator) lintAnchor(doc *catalog.Document, id, kind string, loc located) {
	report := func(rule string, severity lint.Severity, msg, fix string) {
		g.Lint.Report(lint.Issue{
			File:     doc.Ref.String(),
			Line:     loc.at + 1,
			Severity: severity,
			Rule:     rule,
			Anchor:   id,
			Message:  msg,
			Fix:      fix,
		})
	}

	switch kind {
	case "code":
		if loc.captionLines > maxTitleDistance {
			report(lint.RuleAnchorTitle, lint.SeverityWarning, "no title found in next line after "+id, "add a .Title line directly below the anchor")
			return
		}
		example := blockAt(loc, isExampleBlock)
		source := blockAt(loc, isSourceBlock)
		if !example && !source {
			report(lint.RuleAnchorBlock, lint.SeverityWarning, "code anchor "+id+" not immediately followed by block after title", "")
		}
		if example {
			report(lint.RuleCodeExampleBlock, lint.SeverityInfo, "code anchor "+id+" used with example block", "")
		}
	case "top":
		switch {
		case loc.headingLines > maxTitleDistance:
			report(lint.RuleAnchorTitle, lint.SeverityWarning, "anchor "+id+" not immediately followed by title", "")
		case doc.Ref.Family == catalog.FamilyPartial:
			report(lint.RuleTopInPartial, lint.SeverityWarning, "top anchor "+id+" used in partial", lint.RenameFix("sec", loc.heading.Title))
		case !loc.headingFound || loc.heading.Level != 1:
			report(lint.RuleTopOnSection, lint.SeverityWarning, "anchor "+id+" used for section, not title", lint.RenameFix("sec", loc.heading.Title))
		}
	case "sec":
		switch {
		case loc.headingLines > maxTitleDistance:
			report(lint.RuleAnchorTitle, lint.SeverityWarning, "anchor "+id+" not immediately followed by title", "")
		case doc.Ref.Family == catalog.FamilyPage && (!loc.headingFound || loc.heading.Level == 1):
			report(lint.RuleSecOnTitle, lint.SeverityWarning, "anchor "+id+" used for title, not section", lint.RenameFix("top", loc.heading.Title))
		}
	}
}

// blockAt reports whether the first block matched by is after the anchor
// starts two lines below it, right after the title line.
func blockAt(loc located, is func(lines []string, i int) bool) bool {
	for i := loc.at; i < len(loc.lines); i++ {
		if is(loc.lines, i) {
			return i == loc.at+2
		}
	}
	return false
}

// isExampleBlock matches `====`, optionally preceded by a source style line.
func isExampleBlock(lines []string, i int) bool {
	if d, ok := asciidoc.ParseBlockDelimiter(lines[i]); ok && d == asciidoc.DelimiterExample {
		return true
	}
	if asciidoc.IsSourceStyle(lines[i]) && i+1 < len(lines) {
		d, ok := asciidoc.ParseBlockDelimiter(lines[i+1])
		return ok && d == asciidoc.DelimiterExample
	}
	return false
}

// isSourceBlock matches a source style line followed by `----`.
func isSourceBlock(lines []string, i int) bool {
	if !asciidoc.IsSourceStyle(lines[i]) || i+1 >= len(lines) {
		return false
	}
	d, ok := asciidoc.ParseBlockDelimiter(lines[i+1])
	return ok && d == asciidoc.DelimiterListing
}
