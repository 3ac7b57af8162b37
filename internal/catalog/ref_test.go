package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRefPublished(t *testing.T) {
	tests := []struct {
		name     string
		family   Family
		relative string
		want     bool
	}{
		{"plain page", FamilyPage, "intro.adoc", true},
		{"nested page", FamilyPage, "guide/setup.adoc", true},
		{"underscore segment", FamilyPage, "_attic/old.adoc", false},
		{"hidden file", FamilyPage, ".draft.adoc", false},
		{"partial", FamilyPartial, "snippet.adoc", false},
		{"nav", FamilyNav, "nav.adoc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRef("spec", "1.0", "ROOT", tt.family, tt.relative).Published)
		})
	}
}

func TestRefPaths(t *testing.T) {
	page := NewRef("spec", "1.0", "ROOT", FamilyPage, "guide/setup.adoc")
	assert.Equal(t, "1.0@spec:ROOT:page$guide/setup.adoc", page.ID())
	assert.Equal(t, "modules/ROOT/pages/guide/setup.adoc", page.Path())
	assert.Equal(t, "modules/ROOT/pages/guide", page.Dir())
	assert.Equal(t, "setup.adoc", page.Base())
	assert.Equal(t, "setup", page.Stem())
	assert.Equal(t, "spec/1.0/guide", page.OutDir())
	assert.Equal(t, "spec@1.0:modules/ROOT/pages/guide/setup.adoc", page.String())

	nav := NewRef("spec", "", "admin", FamilyNav, "nav.adoc")
	assert.Equal(t, "modules/admin/nav.adoc", nav.Path())
	assert.Empty(t, nav.OutDir())
	assert.Equal(t, "spec:modules/admin/nav.adoc", nav.String())

	unversioned := NewRef("spec", "", "admin", FamilyPage, "users.adoc")
	assert.Equal(t, "spec/admin", unversioned.OutDir())
	assert.True(t, unversioned.SameVersion(NewRef("spec", "", "ROOT", FamilyPartial, "x.adoc")))
	assert.False(t, unversioned.SameVersion(page))
}
