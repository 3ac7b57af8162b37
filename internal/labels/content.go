package labels

import (
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/attributes"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/include"
)

// ActiveAttributes collects the page attributes a document defines,
// following its includes. Later definitions win.
func ActiveAttributes(store catalog.Store, component map[string]string, doc *catalog.Document) map[string]string {
	attrs := map[string]string{}
	collectAttributes(store, component, attrs, doc, map[string]bool{})
	return attrs
}

func collectAttributes(store catalog.Store, component, attrs map[string]string, doc *catalog.Document, visiting map[string]bool) {
	id := doc.Ref.ID()
	if visiting[id] {
		return
	}
	visiting[id] = true
	defer delete(visiting, id)

	for _, line := range doc.Lines() {
		line = attributes.Substitute(component, attrs, line)
		if target, _, ok := include.ResolveLine(store, doc.Ref, line); ok {
			collectAttributes(store, component, attrs, target, visiting)
			continue
		}
		attributes.Update(attrs, line)
	}
}

// MergedContent returns the lines of doc with every include directive
// replaced by the merged lines of its target. Headings of included content
// are shifted by the accumulated leveloffset. Includes that cannot be
// resolved are dropped.
func MergedContent(store catalog.Store, component map[string]string, doc *catalog.Document) []string {
	m := &merger{store: store, component: component, visiting: map[string]bool{}}
	lines, _, _ := m.merge(doc, 0)
	return lines
}

// mergedUntil merges like MergedContent but stops after the line that
// opens a declaration of anchorID. It also returns the leveloffset
// accumulated along the includes that led to that line.
func mergedUntil(store catalog.Store, component map[string]string, doc *catalog.Document, anchorID string) ([]string, int) {
	m := &merger{store: store, component: component, stop: anchorID, visiting: map[string]bool{}}
	lines, offset, _ := m.merge(doc, 0)
	return lines, offset
}

type merger struct {
	store     catalog.Store
	component map[string]string
	stop      string
	visiting  map[string]bool
}

func (m *merger) merge(doc *catalog.Document, addOffset int) (lines []string, levelOffset int, stopped bool) {
	id := doc.Ref.ID()
	if m.visiting[id] {
		return nil, 0, false
	}
	m.visiting[id] = true
	defer delete(m.visiting, id)

	var scope *attributes.Scope
	for _, line := range doc.Lines() {
		resolved := line
		if strings.Contains(line, "{") {
			if scope == nil {
				scope = attributes.NewScope(m.component, ActiveAttributes(m.store, m.component, doc))
			}
			resolved = scope.Substitute(line)
		}
		if m.stop != "" && asciidoc.OpensAnchor(resolved, m.stop) {
			return append(lines, line), 0, true
		}
		if _, ok := asciidoc.ParseHeading(resolved); ok && addOffset > 0 {
			line = strings.Repeat("=", addOffset) + line
		}
		if inc, ok := asciidoc.ParseIncludeLoose(resolved); ok {
			target, found := include.ResolveMerged(m.store, doc.Ref, inc)
			if !found {
				continue
			}
			included, offset, hit := m.merge(target, addOffset+inc.LevelOffset)
			lines = append(lines, included...)
			if hit {
				return lines, inc.LevelOffset + offset, true
			}
			continue
		}
		lines = append(lines, line)
	}
	return lines, 0, false
}
