// Package include resolves include directive targets to catalog documents.
package include

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
)

// Resolve finds the document an include directive in source points to.
//
// Family-qualified targets resolve within the source component-version,
// relative targets against the directory of the source file. When both
// fail the target is looked up as a resource id across the store.
func Resolve(store catalog.Store, source catalog.DocumentRef, inc asciidoc.Include) (*catalog.Document, bool) {
	if inc.Prefix != "" {
		if doc, ok := resolveQualified(store, source, inc); ok {
			return doc, true
		}
	} else if doc, ok := resolveRelative(store, source, inc.Target); ok {
		return doc, true
	}
	return resolveResourceID(store, source, inc.Address())
}

// ResolveLine parses line as an include directive and resolves it.
func ResolveLine(store catalog.Store, source catalog.DocumentRef, line string) (*catalog.Document, asciidoc.Include, bool) {
	inc, ok := asciidoc.ParseInclude(line)
	if !ok {
		return nil, inc, false
	}
	doc, ok := Resolve(store, source, inc)
	return doc, inc, ok
}

// ResolvePublished resolves a relative target against the published output
// directory of a page, matching published pages only.
func ResolvePublished(store catalog.Store, source catalog.DocumentRef, target string) (*catalog.Document, bool) {
	if !source.Published || strings.Contains(target, "$") {
		return nil, false
	}
	want := path.Join(source.OutDir(), target)
	for _, doc := range store.Documents(catalog.Query{Component: source.Component, Version: source.Version, Family: catalog.FamilyPage}) {
		if doc.Ref.Published && path.Join(doc.Ref.OutDir(), doc.Ref.Base()) == want {
			return doc, true
		}
	}
	return nil, false
}

// ResolveMerged is the lookup used when content is merged for rendering:
// the published location first, then the regular resolution.
func ResolveMerged(store catalog.Store, source catalog.DocumentRef, inc asciidoc.Include) (*catalog.Document, bool) {
	if inc.Prefix == "" {
		if doc, ok := ResolvePublished(store, source, inc.Target); ok {
			return doc, true
		}
	}
	return Resolve(store, source, inc)
}

func resolveQualified(store catalog.Store, source catalog.DocumentRef, inc asciidoc.Include) (*catalog.Document, bool) {
	rid := asciidoc.ParseResourceID(inc.Prefix)
	family := catalog.FamilyPartial
	if rid.Family == string(catalog.FamilyPage) {
		family = catalog.FamilyPage
	}
	ref := catalog.NewRef(
		orDefault(rid.Component, source.Component),
		orDefault(rid.Version, source.Version),
		orDefault(rid.Module, source.Module),
		family,
		inc.Target,
	)
	return store.Find(ref)
}

func resolveRelative(store catalog.Store, source catalog.DocumentRef, target string) (*catalog.Document, bool) {
	ref, ok := refFromPath(source, path.Join(source.Dir(), target))
	if !ok {
		return nil, false
	}
	return store.Find(ref)
}

func resolveResourceID(store catalog.Store, source catalog.DocumentRef, address string) (*catalog.Document, bool) {
	rid := asciidoc.ParseResourceID(address)
	family := catalog.Family(orDefault(rid.Family, string(source.Family)))
	ref := catalog.NewRef(
		orDefault(rid.Component, source.Component),
		orDefault(rid.Version, source.Version),
		orDefault(rid.Module, source.Module),
		family,
		rid.Relative,
	)
	return store.Find(ref)
}

// refFromPath maps a component relative source path back onto a ref in the
// component-version of source.
func refFromPath(source catalog.DocumentRef, p string) (catalog.DocumentRef, bool) {
	parts := strings.SplitN(p, "/", 4)
	if len(parts) < 4 || parts[0] != "modules" {
		return catalog.DocumentRef{}, false
	}
	var family catalog.Family
	switch parts[2] {
	case "pages":
		family = catalog.FamilyPage
	case "partials":
		family = catalog.FamilyPartial
	default:
		return catalog.DocumentRef{}, false
	}
	return catalog.NewRef(source.Component, source.Version, parts[1], family, parts[3]), true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
