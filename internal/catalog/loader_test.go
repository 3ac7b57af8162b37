package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	testhelpers "git.home.luguber.info/inful/adocxref/internal/testing"
)

func TestBuilderDescriptor(t *testing.T) {
	b := catalog.NewBuilder()
	require.NoError(t, b.AddFile("book/antora.yml", []byte(`
name: spec
version: ~
title: Spec
prerelease: -rc
nav:
  - modules/ROOT/nav.adoc
asciidoc:
  attributes:
    section-refsig: Chapter
    hide-uri-scheme: true
    experimental: false
    empty: ~
`)))
	require.NoError(t, b.AddFile("book/modules/ROOT/pages/index.adoc", []byte("= Index")))
	require.NoError(t, b.AddFile("book/modules/ROOT/nav.adoc", []byte("* xref:index.adoc[]")))
	require.NoError(t, b.AddFile("book/modules/ROOT/images/logo.png", []byte{0x1}))
	require.NoError(t, b.AddFile("stray/page.adoc", []byte("= Stray")))

	c, err := b.Build()
	require.NoError(t, err)

	cv, ok := c.ComponentVersion("spec", "")
	require.True(t, ok)
	assert.True(t, cv.Prerelease)
	assert.Equal(t, "book", cv.Root)
	assert.Equal(t, map[string]string{"section-refsig": "Chapter", "hide-uri-scheme": "", "empty": ""}, cv.Attributes)

	docs := c.Documents(catalog.Query{})
	require.Len(t, docs, 2)
	assert.Equal(t, catalog.FamilyPage, docs[0].Ref.Family)
	assert.Equal(t, catalog.FamilyNav, docs[1].Ref.Family)
	assert.Equal(t, 0, docs[1].NavIndex)
	assert.Equal(t, "book/modules/ROOT/pages/index.adoc", docs[0].Origin())
}

func TestBuilderRejectsBadDescriptor(t *testing.T) {
	b := catalog.NewBuilder()
	err := b.AddFile("antora.yml", []byte("version: 1.0\n"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryContent))

	err = b.AddFile("antora.yml", []byte("name: [unclosed"))
	require.Error(t, err)
}

func TestLoadDirAndWriteDir(t *testing.T) {
	content := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Attr("figure-caption", "Figure").
		Nav("ROOT", "nav.adoc", "* xref:index.adoc[]\n").
		Page("ROOT", "index.adoc", "= Index\n").
		Partial("ROOT", "p.adoc", "snippet\n")
	src := content.WriteTree(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".git"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".git", "antora.yml"), []byte("name: hidden"), 0o600))

	c, err := catalog.LoadDir(src)
	require.NoError(t, err)
	require.Len(t, c.ComponentVersions(), 1)
	assert.Equal(t, "Figure", c.ComponentVersions()[0].Attributes["figure-caption"])

	page := testhelpers.Page(t, c, "spec", "1.0", "ROOT", "index.adoc")
	page.SetContents([]byte("= Index\n\nchanged\n"))

	out := t.TempDir()
	n, err := c.WriteDir(out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	testhelpers.NewFileAssertions(t, out).
		AssertFileContains("spec/1.0/modules/ROOT/pages/index.adoc", "changed").
		AssertFileNotExists("spec/1.0/modules/ROOT/partials/p.adoc").
		AssertDocumentCount(".", 1)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := catalog.LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
