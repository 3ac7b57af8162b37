package lint

import (
	"strings"

	"github.com/gosimple/slug"
)

// SuggestAnchorID builds a conventional anchor id such as `sec-system-overview`
// from a type prefix and a title.
func SuggestAnchorID(prefix, title string) string {
	s := slug.Make(title)
	if s == "" {
		return ""
	}
	return strings.TrimSuffix(prefix, "-") + "-" + s
}

// renameHint formats a fix suggestion that renames an anchor.
func renameHint(id string) string {
	if id == "" {
		return ""
	}
	return "use [#" + id + "]"
}

// RenameFix returns the fix hint for an anchor that should carry prefix,
// derived from the title it labels.
func RenameFix(prefix, title string) string {
	return renameHint(SuggestAnchorID(prefix, title))
}
