package anchors

import (
	"cmp"
	"slices"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
)

// Position locates an anchor occurrence: the navigation position of the
// document and the line within it.
type Position struct {
	Nav  int
	Line int
}

// Compare orders positions by navigation position, unknown positions last,
// then by line.
func (p Position) Compare(o Position) int {
	if p.Nav == o.Nav {
		return cmp.Compare(p.Line, o.Line)
	}
	return navorder.Compare(p.Nav, o.Nav)
}

// after reports whether p comes strictly after o in plain numeric order.
func (p Position) after(o Position) bool {
	return p.Nav > o.Nav || (p.Nav == o.Nav && p.Line > o.Line)
}

// Entry is one anchor of the index.
type Entry struct {
	ID     string
	Source *catalog.Document
	Line   int

	// UsedIn and UsedInLine are parallel. After Indexify UsedIn starts
	// with the source and AllIndices holds the position of each usage.
	UsedIn     []*catalog.Document
	UsedInLine []int

	Index      Position
	AllIndices []Position
}

func (e *Entry) addUsage(doc *catalog.Document, line int) {
	e.UsedIn = append(e.UsedIn, doc)
	e.UsedInLine = append(e.UsedInLine, line)
}

func (e *Entry) insertUsage(i int, doc *catalog.Document, line int) {
	e.UsedIn = slices.Insert(e.UsedIn, i, doc)
	e.UsedInLine = slices.Insert(e.UsedInLine, i, line)
}

// Map is an insertion ordered anchor index.
type Map struct {
	keys    []string
	entries map[string]*Entry
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{entries: map[string]*Entry{}}
}

// Get returns the entry for id, or nil.
func (m *Map) Get(id string) *Entry {
	if m == nil {
		return nil
	}
	return m.entries[id]
}

// Has reports whether id is indexed.
func (m *Map) Has(id string) bool {
	return m.Get(id) != nil
}

// Set stores e under e.ID. New ids are appended to the key order.
func (m *Map) Set(e *Entry) {
	if _, ok := m.entries[e.ID]; !ok {
		m.keys = append(m.keys, e.ID)
	}
	m.entries[e.ID] = e
}

// Keys returns the ids in order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Entries returns the entries in order.
func (m *Map) Entries() []*Entry {
	if m == nil {
		return nil
	}
	out := make([]*Entry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.entries[k])
	}
	return out
}
