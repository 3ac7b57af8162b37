// Package xref rewrites cross references in place: the local pass turns
// `<<id>>` references into qualified xref macros pointing at the page that
// carries the anchor, and the style pass injects labels or an explicit
// `xrefstyle` into qualified xrefs.
package xref

import (
	"log/slog"

	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
)

// skipState follows the delimited blocks in which references are left
// alone.
type skipState struct {
	blocks *asciidoc.BlockTracker
}

func newSkipState() *skipState {
	return &skipState{blocks: asciidoc.NewBlockTracker(
		asciidoc.DelimiterListing,
		asciidoc.DelimiterExample,
		asciidoc.DelimiterComment,
		asciidoc.DelimiterPassthrough,
		asciidoc.DelimiterLiteral,
		asciidoc.DelimiterQuote,
	)}
}

// skip feeds line and reports whether it must not be rewritten.
func (s *skipState) skip(line string) bool {
	s.blocks.Feed(line)
	return s.blocks.Inside() || asciidoc.IsComment(line)
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
