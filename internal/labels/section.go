package labels

import (
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/include"
)

// RelativeSectionNumber numbers the section at level that holds anchorID
// (or, without an anchor, counts the sections at level in doc).
//
// The content above the anchor is walked backwards. Headings at the
// current level increment the first number; a heading one level up
// prepends a new number and becomes the current level. Includes whose
// leveloffset keeps their sections at a positive level are counted too.
// With fromInclude the anchor lives in content included by doc, so doc is
// merged up to the anchor and level is raised by the accumulated
// leveloffset.
func RelativeSectionNumber(store catalog.Store, component map[string]string, doc *catalog.Document, level int, anchorID string, fromInclude bool) []int {
	return sectionNumber(store, component, doc, level, anchorID, fromInclude, map[string]bool{})
}

func sectionNumber(store catalog.Store, component map[string]string, doc *catalog.Document, level int, anchorID string, fromInclude bool, visiting map[string]bool) []int {
	id := doc.Ref.ID()
	if visiting[id] {
		return []int{0}
	}
	visiting[id] = true
	defer delete(visiting, id)

	current := level
	relative := []int{0}
	if anchorID != "" {
		relative[0] = 1
	}

	lines := doc.Lines()
	if fromInclude {
		var offset int
		lines, offset = mergedUntil(store, component, doc, anchorID)
		current += offset
	}
	if anchorID != "" {
		content := strings.Join(lines, "\n")
		if i := asciidoc.AnchorOffset(content, anchorID); i >= 0 {
			lines = strings.Split(content[:i], "\n")
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if inc, ok := asciidoc.ParseIncludeLoose(line); ok {
			if includedLevel := level - inc.LevelOffset; includedLevel > 0 {
				if target, found := include.ResolveMerged(store, doc.Ref, inc); found {
					sub := sectionNumber(store, component, target, includedLevel, "", false, visiting)
					for j := range min(len(sub), len(relative)) {
						relative[j] += sub[j]
					}
				}
			}
		}
		if h, ok := asciidoc.ParseHeading(line); ok {
			switch h.Level {
			case current:
				relative[0]++
			case current - 1:
				relative = append([]int{1}, relative...)
				current = h.Level
			}
		}
	}
	return relative
}
