// Package navorder derives the reading order of a component-version from
// its navigation files.
package navorder

import (
	"cmp"
	"slices"

	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
)

// Unknown is the position of a document that is not in the navigation.
const Unknown = -1

// Order is the ordered list of pages referenced by the navigation files.
// It is built once per pass and read-only afterwards.
type Order struct {
	entries []catalog.DocumentRef
	pos     map[string]int
}

// New parses the nav files in nav index order and records every xref
// target in order of appearance. Targets are resolved against the module
// of the nav file that lists them.
func New(navFiles []*catalog.Document) *Order {
	navs := slices.Clone(navFiles)
	slices.SortStableFunc(navs, func(a, b *catalog.Document) int { return cmp.Compare(a.NavIndex, b.NavIndex) })

	o := &Order{pos: map[string]int{}}
	for _, nav := range navs {
		for _, line := range nav.Lines() {
			for _, x := range asciidoc.FindXrefs(line) {
				o.add(targetRef(nav.Ref, x.Target))
			}
		}
	}
	return o
}

// ForComponentVersion builds the order from the nav files of a component-version.
func ForComponentVersion(store catalog.Store, component, version string) *Order {
	return New(store.Documents(catalog.Query{Component: component, Version: version, Family: catalog.FamilyNav}))
}

func targetRef(nav catalog.DocumentRef, target string) catalog.DocumentRef {
	rid := asciidoc.ParseResourceID(target)
	component, version, module := nav.Component, nav.Version, nav.Module
	if rid.Component != "" {
		component = rid.Component
	}
	if rid.Version != "" {
		version = rid.Version
	}
	if rid.Module != "" {
		module = rid.Module
	}
	return catalog.NewRef(component, version, module, catalog.FamilyPage, rid.Relative)
}

func (o *Order) add(ref catalog.DocumentRef) {
	id := ref.ID()
	if _, seen := o.pos[id]; seen {
		return
	}
	o.pos[id] = len(o.entries)
	o.entries = append(o.entries, ref)
}

// Position returns the ordinal of the first nav entry for ref, or Unknown.
func (o *Order) Position(ref catalog.DocumentRef) int {
	if o == nil {
		return Unknown
	}
	if p, ok := o.pos[ref.ID()]; ok {
		return p
	}
	return Unknown
}

// Contains reports whether the navigation lists ref.
func (o *Order) Contains(ref catalog.DocumentRef) bool {
	return o.Position(ref) != Unknown
}

// Len returns the number of distinct entries.
func (o *Order) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Entries returns the listed pages in reading order.
func (o *Order) Entries() []catalog.DocumentRef {
	if o == nil {
		return nil
	}
	return slices.Clone(o.entries)
}

// Compare orders two positions with unknown positions last.
func Compare(a, b int) int {
	switch {
	case a == b:
		return 0
	case a == Unknown:
		return 1
	case b == Unknown:
		return -1
	}
	return cmp.Compare(a, b)
}
