package anchors

import (
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
)

// Merge folds source into target and returns target. A nil target starts
// a new map.
//
// With override set, the anchors of source were found in a document
// included by override and are recorded as used in override at the line
// they were found.
//
// Keys present in both maps combine their usages; a side that has no
// usages yet contributes its canonical source as one. When the two sides
// were declared in different documents, the declaration that comes first
// in the navigation becomes the canonical source.
func Merge(target, source *Map, nav *navorder.Order, override *catalog.Document) *Map {
	if target == nil {
		target = NewMap()
	}
	if source.Len() == 0 {
		return target
	}
	for _, e := range source.Entries() {
		if override != nil {
			useIn(e, override, nav)
		}
		existing := target.Get(e.ID)
		if existing == nil {
			target.Set(e)
			continue
		}
		switch {
		case len(existing.UsedIn) > 0 && len(e.UsedIn) > 0:
			existing.UsedIn = append(existing.UsedIn, e.UsedIn...)
			existing.UsedInLine = append(existing.UsedInLine, e.UsedInLine...)
		case len(existing.UsedIn) > 0:
			existing.addUsage(e.Source, e.Line)
		case len(e.UsedIn) > 0:
			existing.UsedIn = append([]*catalog.Document{existing.Source}, e.UsedIn...)
			existing.UsedInLine = append([]int{existing.Line}, e.UsedInLine...)
		default:
			existing.UsedIn = []*catalog.Document{existing.Source, e.Source}
			existing.UsedInLine = []int{existing.Line, e.Line}
		}
		preferEarlier(existing, e, nav)
	}
	return target
}

func preferEarlier(existing, e *Entry, nav *navorder.Order) {
	if existing.Source == e.Source {
		return
	}
	other := Position{Nav: nav.Position(e.Source.Ref), Line: e.Line}
	if other.Nav == navorder.Unknown {
		return
	}
	current := Position{Nav: nav.Position(existing.Source.Ref), Line: existing.Line}
	if other.Compare(current) < 0 {
		existing.Source, existing.Line = e.Source, e.Line
	}
}

// useIn records doc as a usage of e, keeping usages in navigation order:
// doc goes before the first usage that is not in the navigation or comes
// later in it.
func useIn(e *Entry, doc *catalog.Document, nav *navorder.Order) {
	if len(e.UsedIn) == 0 {
		e.UsedIn = []*catalog.Document{doc}
		e.UsedInLine = []int{e.Line}
		return
	}
	pos := nav.Position(doc.Ref)
	if pos == navorder.Unknown {
		e.addUsage(doc, e.Line)
		return
	}
	for i, u := range e.UsedIn {
		if p := nav.Position(u.Ref); p == navorder.Unknown || p > pos {
			e.insertUsage(i, doc, e.Line)
			return
		}
	}
	e.addUsage(doc, e.Line)
}
