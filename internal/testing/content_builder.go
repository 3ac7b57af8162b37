package testing

import (
	"os"
	"path"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
)

type fixtureFile struct {
	path    string
	content string
}

type fixtureComponent struct {
	name       string
	version    string
	prerelease bool
	attributes map[string]string
	nav        []string
	files      []fixtureFile
}

func (c *fixtureComponent) root() string {
	v := c.version
	if v == "" {
		v = "_"
	}
	return path.Join(c.name, v)
}

func (c *fixtureComponent) descriptor() []byte {
	d := map[string]any{"name": c.name, "version": c.version, "nav": c.nav}
	if c.version == "" {
		d["version"] = nil
	}
	if c.prerelease {
		d["prerelease"] = true
	}
	if len(c.attributes) > 0 {
		d["asciidoc"] = map[string]any{"attributes": c.attributes}
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		panic(err)
	}
	return data
}

// ContentBuilder provides a fluent interface for creating Antora content fixtures.
type ContentBuilder struct {
	t          *testing.T
	components []*fixtureComponent
}

// NewContent creates a new content builder for tests.
func NewContent(t *testing.T) *ContentBuilder {
	t.Helper()
	return &ContentBuilder{t: t}
}

func (b *ContentBuilder) current() *fixtureComponent {
	if len(b.components) == 0 {
		b.t.Fatal("content builder: call Component first")
	}
	return b.components[len(b.components)-1]
}

// Component starts a new component-version; following calls add to it.
func (b *ContentBuilder) Component(name, version string) *ContentBuilder {
	b.components = append(b.components, &fixtureComponent{name: name, version: version, attributes: map[string]string{}})
	return b
}

// Prerelease marks the current component-version as a prerelease.
func (b *ContentBuilder) Prerelease() *ContentBuilder {
	b.current().prerelease = true
	return b
}

// Attr sets a component attribute.
func (b *ContentBuilder) Attr(name, value string) *ContentBuilder {
	b.current().attributes[name] = value
	return b
}

// Nav adds a nav file to the current module list in declaration order.
func (b *ContentBuilder) Nav(module, relative, content string) *ContentBuilder {
	c := b.current()
	p := path.Join("modules", module, relative)
	c.nav = append(c.nav, p)
	c.files = append(c.files, fixtureFile{path: p, content: content})
	return b
}

// Page adds a page.
func (b *ContentBuilder) Page(module, relative, content string) *ContentBuilder {
	c := b.current()
	c.files = append(c.files, fixtureFile{path: path.Join("modules", module, "pages", relative), content: content})
	return b
}

// Partial adds a partial.
func (b *ContentBuilder) Partial(module, relative, content string) *ContentBuilder {
	c := b.current()
	c.files = append(c.files, fixtureFile{path: path.Join("modules", module, "partials", relative), content: content})
	return b
}

// Catalog loads the fixture through the catalog builder.
func (b *ContentBuilder) Catalog() *catalog.Catalog {
	b.t.Helper()
	builder := catalog.NewBuilder()
	for _, c := range b.components {
		if err := builder.AddFile(path.Join(c.root(), catalog.DescriptorName), c.descriptor()); err != nil {
			b.t.Fatalf("add descriptor: %v", err)
		}
		for _, f := range c.files {
			if err := builder.AddFile(path.Join(c.root(), f.path), []byte(f.content)); err != nil {
				b.t.Fatalf("add %s: %v", f.path, err)
			}
		}
	}
	cat, err := builder.Build()
	if err != nil {
		b.t.Fatalf("build catalog: %v", err)
	}
	return cat
}

// WriteTree writes the fixture below dir using the on-disk Antora layout
// and returns dir.
func (b *ContentBuilder) WriteTree(dir string) string {
	b.t.Helper()
	write := func(p string, data []byte) {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), testDirPermissions); err != nil {
			b.t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, data, testFilePermissions); err != nil {
			b.t.Fatalf("write %s: %v", full, err)
		}
	}
	for _, c := range b.components {
		write(path.Join(c.root(), catalog.DescriptorName), c.descriptor())
		for _, f := range c.files {
			write(path.Join(c.root(), f.path), []byte(f.content))
		}
	}
	return dir
}

// Root returns the directory of a component-version inside a written tree.
func (b *ContentBuilder) Root(name, version string) string {
	for _, c := range b.components {
		if c.name == name && c.version == version {
			return c.root()
		}
	}
	b.t.Fatalf("unknown component %s@%s", name, version)
	return ""
}

// MustFind returns a document or fails the test.
func MustFind(t *testing.T, store catalog.Store, component, version, module string, family catalog.Family, relative string) *catalog.Document {
	t.Helper()
	doc, ok := store.Find(catalog.NewRef(component, version, module, family, relative))
	if !ok {
		t.Fatalf("document %s %s@%s:%s:%s not found", family, component, version, module, relative)
	}
	return doc
}

// Page is a shortcut for MustFind with FamilyPage.
func Page(t *testing.T, store catalog.Store, component, version, module, relative string) *catalog.Document {
	t.Helper()
	return MustFind(t, store, component, version, module, catalog.FamilyPage, relative)
}

// Partial is a shortcut for MustFind with FamilyPartial.
func Partial(t *testing.T, store catalog.Store, component, version, module, relative string) *catalog.Document {
	t.Helper()
	return MustFind(t, store, component, version, module, catalog.FamilyPartial, relative)
}
