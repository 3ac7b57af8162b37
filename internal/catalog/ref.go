package catalog

import (
	"path"
	"strings"
)

// Family classifies a document inside a module.
type Family string

const (
	FamilyPage    Family = "page"
	FamilyPartial Family = "partial"
	FamilyNav     Family = "nav"
)

// RootModule is the module whose pages publish at the component root.
const RootModule = "ROOT"

// DocumentRef is the logical location of a document.
type DocumentRef struct {
	Component string
	Version   string
	Module    string
	Family    Family
	// Relative is the slash separated path below the family directory
	// (below the module directory for nav files).
	Relative  string
	Published bool
}

// NewRef builds a ref and derives the publication flag from the family and
// relative path: only pages are published, and never those below a hidden
// or underscore-prefixed segment.
func NewRef(component, version, module string, family Family, relative string) DocumentRef {
	r := DocumentRef{
		Component: component,
		Version:   version,
		Module:    module,
		Family:    family,
		Relative:  path.Clean(relative),
	}
	r.Published = family == FamilyPage && publishable(r.Relative)
	return r
}

func publishable(relative string) bool {
	for _, seg := range strings.Split(relative, "/") {
		if strings.HasPrefix(seg, "_") || strings.HasPrefix(seg, ".") {
			return false
		}
	}
	return true
}

// ID returns the Antora resource id: version@component:module:family$relative.
func (r DocumentRef) ID() string {
	return r.Version + "@" + r.Component + ":" + r.Module + ":" + string(r.Family) + "$" + r.Relative
}

// Path is the source path relative to the component root.
func (r DocumentRef) Path() string {
	if r.Family == FamilyNav {
		return path.Join("modules", r.Module, r.Relative)
	}
	return path.Join("modules", r.Module, string(r.Family)+"s", r.Relative)
}

// Dir is the directory of Path.
func (r DocumentRef) Dir() string {
	return path.Dir(r.Path())
}

// Base is the file name including its extension.
func (r DocumentRef) Base() string {
	return path.Base(r.Relative)
}

// Stem is the file name without extension.
func (r DocumentRef) Stem() string {
	return strings.TrimSuffix(r.Base(), path.Ext(r.Relative))
}

// OutDir is the directory a published page is written to by the site
// generator; empty for documents that are not published.
func (r DocumentRef) OutDir() string {
	if !r.Published {
		return ""
	}
	parts := []string{r.Component}
	if r.Version != "" {
		parts = append(parts, r.Version)
	}
	if r.Module != RootModule {
		parts = append(parts, r.Module)
	}
	if dir := path.Dir(r.Relative); dir != "." {
		parts = append(parts, dir)
	}
	return path.Join(parts...)
}

// SameVersion reports whether both refs belong to the same component-version.
func (r DocumentRef) SameVersion(o DocumentRef) bool {
	return r.Component == o.Component && r.Version == o.Version
}

// String returns the source path qualified with component and version.
func (r DocumentRef) String() string {
	if r.Version == "" {
		return r.Component + ":" + r.Path()
	}
	return r.Component + "@" + r.Version + ":" + r.Path()
}
