package catalog

import (
	"cmp"
	"fmt"
	"path"
	"slices"

	"github.com/maruel/natural"
)

// ComponentVersion is one documentation book at a specific version.
type ComponentVersion struct {
	Name       string
	Version    string
	Title      string
	Prerelease bool
	// Attributes are the asciidoc attributes from antora.yml, read-only for analysis.
	Attributes map[string]string
	// Root is the component root relative to the content source.
	Root string
}

// Key identifies the component-version.
func (cv *ComponentVersion) Key() string {
	return cv.Version + "@" + cv.Name
}

// Query filters documents. Empty fields match everything.
type Query struct {
	Component string
	Version   string
	Module    string
	Family    Family
}

func (q Query) matches(r DocumentRef) bool {
	return (q.Component == "" || q.Component == r.Component) &&
		(q.Version == "" || q.Version == r.Version) &&
		(q.Module == "" || q.Module == r.Module) &&
		(q.Family == "" || q.Family == r.Family)
}

// Store is the document store consumed by the analysis packages.
type Store interface {
	// ComponentVersions lists component-versions in processing order.
	ComponentVersions() []*ComponentVersion
	ComponentVersion(component, version string) (*ComponentVersion, bool)
	// Latest returns the newest non-prerelease version of a component.
	Latest(component string) (*ComponentVersion, bool)
	// Documents returns matching documents in deterministic order; nav files
	// are ordered by their nav index.
	Documents(q Query) []*Document
	// Find looks a document up by its logical location.
	Find(ref DocumentRef) (*Document, bool)
}

// Catalog is the in-memory Store.
type Catalog struct {
	versions []*ComponentVersion
	docs     map[string][]*Document
	byID     map[string]*Document
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{docs: map[string][]*Document{}, byID: map[string]*Document{}}
}

// AddComponentVersion registers a component-version. Registering the same
// key twice replaces the metadata.
func (c *Catalog) AddComponentVersion(cv *ComponentVersion) {
	if cv.Attributes == nil {
		cv.Attributes = map[string]string{}
	}
	for i, existing := range c.versions {
		if existing.Key() == cv.Key() {
			c.versions[i] = cv
			return
		}
	}
	c.versions = append(c.versions, cv)
	slices.SortStableFunc(c.versions, compareVersions)
}

// compareVersions orders by component name, then by version, oldest first.
func compareVersions(a, b *ComponentVersion) int {
	if a.Name != b.Name {
		return compareNatural(a.Name, b.Name)
	}
	return compareNatural(a.Version, b.Version)
}

func compareNatural(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	default:
		return 1
	}
}

// AddDocument adds a document to its component-version.
func (c *Catalog) AddDocument(doc *Document) error {
	key := doc.Ref.Version + "@" + doc.Ref.Component
	if _, ok := c.ComponentVersion(doc.Ref.Component, doc.Ref.Version); !ok {
		return fmt.Errorf("unknown component version %s", key)
	}
	id := doc.Ref.ID()
	if _, exists := c.byID[id]; exists {
		return fmt.Errorf("duplicate document %s", id)
	}
	c.byID[id] = doc
	list := append(c.docs[key], doc)
	slices.SortStableFunc(list, compareDocuments)
	c.docs[key] = list
	return nil
}

// AddGenerated adds a document created during a pass. It is written out
// like a modified document.
func (c *Catalog) AddGenerated(doc *Document) error {
	doc.created = true
	doc.modified = true
	if cv, ok := c.ComponentVersion(doc.Ref.Component, doc.Ref.Version); ok && doc.origin == "" {
		doc.origin = path.Join(cv.Root, doc.Ref.Path())
	}
	return c.AddDocument(doc)
}

var familyOrder = map[Family]int{FamilyPage: 0, FamilyPartial: 1, FamilyNav: 2}

func compareDocuments(a, b *Document) int {
	if a.Ref.Family != b.Ref.Family {
		return cmp.Compare(familyOrder[a.Ref.Family], familyOrder[b.Ref.Family])
	}
	if a.Ref.Family == FamilyNav && a.NavIndex != b.NavIndex {
		return cmp.Compare(a.NavIndex, b.NavIndex)
	}
	if a.Ref.Module != b.Ref.Module {
		return compareNatural(a.Ref.Module, b.Ref.Module)
	}
	return compareNatural(a.Ref.Relative, b.Ref.Relative)
}

func (c *Catalog) ComponentVersions() []*ComponentVersion {
	return slices.Clone(c.versions)
}

func (c *Catalog) ComponentVersion(component, version string) (*ComponentVersion, bool) {
	for _, cv := range c.versions {
		if cv.Name == component && cv.Version == version {
			return cv, true
		}
	}
	return nil, false
}

func (c *Catalog) Latest(component string) (*ComponentVersion, bool) {
	var latest, fallback *ComponentVersion
	for _, cv := range c.versions {
		if cv.Name != component {
			continue
		}
		// versions are sorted ascending, so the last match wins
		fallback = cv
		if !cv.Prerelease {
			latest = cv
		}
	}
	if latest == nil {
		latest = fallback
	}
	return latest, latest != nil
}

func (c *Catalog) Documents(q Query) []*Document {
	var out []*Document
	for _, cv := range c.versions {
		if (q.Component != "" && q.Component != cv.Name) || (q.Version != "" && q.Version != cv.Version) {
			continue
		}
		for _, doc := range c.docs[cv.Key()] {
			if q.matches(doc.Ref) {
				out = append(out, doc)
			}
		}
	}
	return out
}

func (c *Catalog) Find(ref DocumentRef) (*Document, bool) {
	doc, ok := c.byID[ref.ID()]
	return doc, ok
}

// Modified returns every document changed or created during a pass.
func (c *Catalog) Modified() []*Document {
	var out []*Document
	for _, doc := range c.Documents(Query{}) {
		if doc.Modified() {
			out = append(out, doc)
		}
	}
	return out
}
