package anchors

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
)

// BuildIndex extracts the anchors of every published page listed in the
// navigation and returns the indexed map.
func BuildIndex(ctx Context, pages []*catalog.Document) *Map {
	m := NewMap()
	for _, page := range pages {
		if !page.Ref.Published || !ctx.Nav.Contains(page.Ref) {
			continue
		}
		update := Extract(ctx, page, map[string]string{}, nil, nil)
		if update.Len() == 0 {
			continue
		}
		m = Merge(update, m, ctx.Nav, nil)
	}
	return Indexify(m, ctx.Nav)
}

type usage struct {
	doc *catalog.Document
	pos Position
}

// Indexify computes the index position of every entry and returns a new
// map sorted by it. The source heads UsedIn exactly once. Entries that
// never occur in a navigated page are dropped.
func Indexify(m *Map, nav *navorder.Order) *Map {
	entries := m.Entries()
	for _, e := range entries {
		source := Position{Nav: nav.Position(e.Source.Ref), Line: e.Line}
		e.Index = source
		e.AllIndices = []Position{source}
		if len(e.UsedIn) == 0 {
			e.UsedIn = []*catalog.Document{e.Source}
			e.UsedInLine = []int{e.Line}
			continue
		}

		usages := []usage{{doc: e.Source, pos: source}}
		for i, doc := range e.UsedIn {
			if doc == e.Source && e.UsedInLine[i] == e.Line {
				continue
			}
			p := Position{Nav: nav.Position(doc.Ref), Line: e.UsedInLine[i]}
			usages = append(usages, usage{doc: doc, pos: p})
			switch {
			case e.Index.Nav == navorder.Unknown || (p.Nav != navorder.Unknown && p.Nav < e.Index.Nav):
				e.Index = p
			case p.Nav == e.Index.Nav && p.Line < e.Index.Line:
				e.Index.Line = p.Line
			}
		}
		slices.SortStableFunc(usages, func(a, b usage) int { return a.pos.Compare(b.pos) })

		e.UsedIn = make([]*catalog.Document, len(usages))
		e.UsedInLine = make([]int, len(usages))
		e.AllIndices = make([]Position, len(usages))
		for i, u := range usages {
			e.UsedIn[i] = u.doc
			e.UsedInLine[i] = u.pos.Line
			e.AllIndices[i] = u.pos
		}
	}

	slices.SortStableFunc(entries, func(a, b *Entry) int { return a.Index.Compare(b.Index) })
	out := NewMap()
	for _, e := range entries {
		if e.Index.Nav != navorder.Unknown {
			out.Set(e)
		}
	}
	return out
}

// CountBefore counts the usages of entries whose id starts with prefix and
// whose position is at or before pos. Figure and table numbers are derived
// from it.
func CountBefore(m *Map, prefix string, pos Position) int {
	n := 0
	for _, e := range m.Entries() {
		if !strings.HasPrefix(e.ID, prefix) || e.Index.after(pos) {
			continue
		}
		for _, p := range e.AllIndices {
			if p.Nav == navorder.Unknown || p.after(pos) {
				continue
			}
			n++
		}
	}
	return n
}
