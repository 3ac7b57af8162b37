package asciidoc

import (
	"regexp"
	"strings"
)

// Heading is a document title or section title line.
type Heading struct {
	Level int
	Title string
}

var (
	headingRe     = regexp.MustCompile(`^\s*(=+)\s+(\S.*)$`)
	captionRe     = regexp.MustCompile(`^\.(\S.+)$`)
	sourceStyleRe = regexp.MustCompile(`^\[source([^\]]+)?\]\s*$`)
)

// ParseHeading recognizes `= Title` (level 1) and deeper section titles.
func ParseHeading(line string) (Heading, bool) {
	m := headingRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return Heading{}, false
	}
	return Heading{Level: len(m[1]), Title: strings.TrimSpace(m[2])}, true
}

// ParseCaption recognizes a block title line such as `.Caption`.
func ParseCaption(line string) (string, bool) {
	m := captionRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil || strings.HasPrefix(m[1], ".") {
		return "", false
	}
	return m[1], true
}

// IsSourceStyle recognizes a `[source]` or `[source,lang]` block style line.
func IsSourceStyle(line string) bool {
	return sourceStyleRe.MatchString(strings.TrimRight(line, "\r"))
}

// Delimiter identifies a delimited block kind.
type Delimiter int

const (
	DelimiterNone Delimiter = iota
	DelimiterListing
	DelimiterExample
	DelimiterComment
	DelimiterPassthrough
	DelimiterLiteral
	DelimiterQuote
	DelimiterFenced
	DelimiterSidebar
)

var delimiters = map[string]Delimiter{
	"----": DelimiterListing,
	"====": DelimiterExample,
	"////": DelimiterComment,
	"++++": DelimiterPassthrough,
	"....": DelimiterLiteral,
	"____": DelimiterQuote,
	"```":  DelimiterFenced,
	"****": DelimiterSidebar,
}

// ParseBlockDelimiter recognizes a line consisting of a block delimiter,
// optionally followed by spaces. Fenced blocks may carry a language.
func ParseBlockDelimiter(line string) (Delimiter, bool) {
	s := strings.TrimRight(line, " \t\r")
	if d, ok := delimiters[s]; ok {
		return d, true
	}
	if strings.HasPrefix(s, "```") && !strings.Contains(s[3:], "`") && !strings.Contains(s, " ") {
		return DelimiterFenced, true
	}
	return DelimiterNone, false
}

// IsComment reports whether the line is a single line comment.
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "//")
}

var (
	tagStartRe = regexp.MustCompile(`//\s*tag::(.+?)\[\]`)
	tagEndRe   = regexp.MustCompile(`//\s*end::(.+?)\[\]`)
)

// ParseTagStart recognizes `// tag::name[]`.
func ParseTagStart(line string) (string, bool) {
	m := tagStartRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseTagEnd recognizes `// end::name[]`.
func ParseTagEnd(line string) (string, bool) {
	m := tagEndRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SkipConditionAttribute is the attribute that marks content rendered only
// outside of Antora.
const SkipConditionAttribute = "use-antora-rules"

// IsSkipConditionStart reports whether the line opens an `ifndef` block on
// the Antora rules attribute.
func IsSkipConditionStart(line string) bool {
	return strings.Contains(line, "ifndef::") && strings.Contains(line, SkipConditionAttribute)
}

// IsConditionEnd reports whether the line closes a conditional block.
func IsConditionEnd(line string) bool {
	return strings.Contains(line, "endif::")
}

// BlockTracker follows which delimited blocks are open. Each tracked
// delimiter toggles its own region; other delimiters are ignored.
type BlockTracker struct {
	open map[Delimiter]bool
}

// NewBlockTracker tracks the given delimiter kinds.
func NewBlockTracker(kinds ...Delimiter) *BlockTracker {
	t := &BlockTracker{open: make(map[Delimiter]bool, len(kinds))}
	for _, k := range kinds {
		t.open[k] = false
	}
	return t
}

// Feed toggles the region of a tracked delimiter line. It reports whether
// the line was a tracked delimiter.
func (t *BlockTracker) Feed(line string) bool {
	d, ok := ParseBlockDelimiter(line)
	if !ok {
		return false
	}
	open, tracked := t.open[d]
	if !tracked {
		return false
	}
	t.open[d] = !open
	return true
}

// Inside reports whether any tracked region is open.
func (t *BlockTracker) Inside() bool {
	for _, open := range t.open {
		if open {
			return true
		}
	}
	return false
}
