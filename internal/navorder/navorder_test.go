package navorder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
	testhelpers "git.home.luguber.info/inful/adocxref/internal/testing"
)

func TestOrder(t *testing.T) {
	c := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Nav("ROOT", "nav.adoc", "* xref:index.adoc[]\n** xref:guide/setup.adoc[Setup]\n* xref:index.adoc#top-index[again]\n").
		Nav("admin", "nav.adoc", "* xref:users.adoc[]\n* xref:ROOT:appendix.adoc[]\n* xref:other:ROOT:ext.adoc[]\n").
		Page("ROOT", "index.adoc", "").
		Page("ROOT", "guide/setup.adoc", "").
		Page("ROOT", "appendix.adoc", "").
		Page("ROOT", "orphan.adoc", "").
		Page("admin", "users.adoc", "").
		Catalog()

	o := navorder.ForComponentVersion(c, "spec", "1.0")
	assert.Equal(t, 5, o.Len())

	pos := func(module, rel string) int {
		return o.Position(catalog.NewRef("spec", "1.0", module, catalog.FamilyPage, rel))
	}
	assert.Equal(t, 0, pos("ROOT", "index.adoc"))
	assert.Equal(t, 1, pos("ROOT", "guide/setup.adoc"))
	assert.Equal(t, 2, pos("admin", "users.adoc"))
	assert.Equal(t, 3, pos("ROOT", "appendix.adoc"))
	assert.Equal(t, navorder.Unknown, pos("ROOT", "orphan.adoc"))
	assert.Equal(t, navorder.Unknown, o.Position(catalog.NewRef("spec", "1.0", "ROOT", catalog.FamilyPartial, "index.adoc")))
	assert.True(t, o.Contains(catalog.NewRef("other", "1.0", "ROOT", catalog.FamilyPage, "ext.adoc")))

	entries := o.Entries()
	assert.Equal(t, "index.adoc", entries[0].Relative)
}

func TestNilOrder(t *testing.T) {
	var o *navorder.Order
	assert.Equal(t, navorder.Unknown, o.Position(catalog.NewRef("a", "", "ROOT", catalog.FamilyPage, "x.adoc")))
	assert.Zero(t, o.Len())
	assert.Nil(t, o.Entries())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, navorder.Compare(0, 3))
	assert.Equal(t, 1, navorder.Compare(navorder.Unknown, 3))
	assert.Equal(t, -1, navorder.Compare(3, navorder.Unknown))
	assert.Equal(t, 0, navorder.Compare(navorder.Unknown, navorder.Unknown))
}
