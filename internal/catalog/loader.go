package catalog

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
)

// DescriptorName is the component descriptor file name.
const DescriptorName = "antora.yml"

type descriptor struct {
	Name       string    `yaml:"name"`
	Version    yaml.Node `yaml:"version"`
	Title      string    `yaml:"title"`
	Prerelease yaml.Node `yaml:"prerelease"`
	Nav        []string  `yaml:"nav"`
	AsciiDoc   struct {
		Attributes map[string]yaml.Node `yaml:"attributes"`
	} `yaml:"asciidoc"`
}

// scalarString renders a YAML scalar the way Antora reads attribute values:
// null and true become empty, false means unset.
func scalarString(n yaml.Node) (string, bool) {
	if n.Kind != yaml.ScalarNode {
		return "", n.Kind == 0
	}
	switch n.ShortTag() {
	case "!!null":
		return "", true
	case "!!bool":
		return "", n.Value == "true"
	}
	return n.Value, true
}

// Builder assembles a catalog from raw files of a content source.
type Builder struct {
	descriptors map[string]*descriptor
	files       map[string][]byte
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{descriptors: map[string]*descriptor{}, files: map[string][]byte{}}
}

// AddFile registers a file by its slash separated path relative to the
// source root. Component descriptors are parsed immediately; AsciiDoc files
// are kept until Build; everything else is ignored.
func (b *Builder) AddFile(p string, data []byte) error {
	p = path.Clean(filepath.ToSlash(p))
	switch {
	case path.Base(p) == DescriptorName:
		var d descriptor
		if err := yaml.Unmarshal(data, &d); err != nil {
			return errors.WrapError(err, errors.CategoryContent, "parse component descriptor").
				WithContext("path", p).
				Build()
		}
		if d.Name == "" {
			return errors.ContentError("component descriptor without name").WithContext("path", p).Build()
		}
		b.descriptors[path.Dir(p)] = &d
	case path.Ext(p) == ".adoc":
		b.files[p] = data
	}
	return nil
}

// Build assigns every AsciiDoc file to the closest enclosing component and
// returns the catalog. Files outside a component are dropped.
func (b *Builder) Build() (*Catalog, error) {
	c := New()

	roots := make([]string, 0, len(b.descriptors))
	for dir, d := range b.descriptors {
		roots = append(roots, dir)
		cv := &ComponentVersion{
			Name:       d.Name,
			Version:    versionOf(d),
			Title:      d.Title,
			Prerelease: isPrerelease(d.Prerelease),
			Attributes: map[string]string{},
			Root:       dir,
		}
		for name, node := range d.AsciiDoc.Attributes {
			if v, ok := scalarString(node); ok {
				cv.Attributes[name] = v
			}
		}
		c.AddComponentVersion(cv)
	}
	// deepest root first so nested components win
	slices.SortFunc(roots, func(a, b string) int { return len(b) - len(a) })

	paths := make([]string, 0, len(b.files))
	for p := range b.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	for _, p := range paths {
		root, rel, ok := enclosingRoot(roots, p)
		if !ok {
			continue
		}
		d := b.descriptors[root]
		cv, _ := c.ComponentVersion(d.Name, versionOf(d))
		doc := classify(cv, d.Nav, rel, b.files[p])
		if doc == nil {
			continue
		}
		doc.origin = p
		if err := c.AddDocument(doc); err != nil {
			return nil, errors.WrapError(err, errors.CategoryContent, "add document").WithContext("path", p).Build()
		}
	}
	return c, nil
}

// isPrerelease accepts `prerelease: true` and string identifiers such as `-rc`.
func isPrerelease(n yaml.Node) bool {
	if n.Kind != yaml.ScalarNode {
		return false
	}
	switch n.ShortTag() {
	case "!!bool":
		return n.Value == "true"
	case "!!null":
		return false
	}
	return n.Value != ""
}

func versionOf(d *descriptor) string {
	v, _ := scalarString(d.Version)
	return v
}

func enclosingRoot(roots []string, p string) (root, rel string, ok bool) {
	for _, r := range roots {
		if r == "." {
			return r, p, true
		}
		if strings.HasPrefix(p, r+"/") {
			return r, strings.TrimPrefix(p, r+"/"), true
		}
	}
	return "", "", false
}

// classify maps a component relative path onto a document ref.
func classify(cv *ComponentVersion, nav []string, rel string, data []byte) *Document {
	parts := strings.SplitN(rel, "/", 4)
	if len(parts) < 3 || parts[0] != "modules" {
		return nil
	}
	module := parts[1]
	if idx := slices.Index(nav, rel); idx >= 0 {
		doc := NewDocument(NewRef(cv.Name, cv.Version, module, FamilyNav, strings.Join(parts[2:], "/")), data)
		doc.NavIndex = idx
		return doc
	}
	if len(parts) < 4 {
		return nil
	}
	switch parts[2] {
	case "pages":
		return NewDocument(NewRef(cv.Name, cv.Version, module, FamilyPage, parts[3]), data)
	case "partials":
		return NewDocument(NewRef(cv.Name, cv.Version, module, FamilyPartial, parts[3]), data)
	}
	return nil
}

// LoadDir loads every component below root.
func LoadDir(root string) (*Catalog, error) {
	b := NewBuilder()
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != DescriptorName && filepath.Ext(p) != ".adoc" {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return b.AddFile(rel, data)
	})
	if err != nil {
		if _, ok := errors.AsClassified(err); ok {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk content directory").
			WithContext("path", root).
			Build()
	}
	return b.Build()
}

// WriteDir writes modified and generated documents below out, mirroring the
// source layout. It returns the number of files written.
func (c *Catalog) WriteDir(out string) (int, error) {
	written := 0
	for _, doc := range c.Modified() {
		dst := filepath.Join(out, filepath.FromSlash(doc.origin))
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
				WithContext("path", filepath.Dir(dst)).
				Build()
		}
		if err := os.WriteFile(dst, doc.contents, 0o600); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "write document").
				WithContext("path", dst).
				Build()
		}
		written++
	}
	return written, nil
}
