package xref_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/labels"
	"git.home.luguber.info/inful/adocxref/internal/lint"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
	testhelpers "git.home.luguber.info/inful/adocxref/internal/testing"
	"git.home.luguber.info/inful/adocxref/internal/xref"
)

func generator(t *testing.T, store *catalog.Catalog, component, version string) (*labels.Generator, *lint.State) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	state := lint.NewState(logger)
	cv, ok := store.ComponentVersion(component, version)
	require.True(t, ok)
	ctx := anchors.Context{
		Store:      store,
		Attributes: cv.Attributes,
		Nav:        navorder.ForComponentVersion(store, component, version),
		Lint:       state,
		Logger:     logger,
	}
	index := anchors.BuildIndex(ctx, store.Documents(catalog.Query{Component: component, Version: version, Family: catalog.FamilyPage}))
	return &labels.Generator{Store: store, Attributes: cv.Attributes, Index: index, Lint: state, Logger: logger}, state
}

const localIntro = `[#top-intro]
= Intro

See <<sec-setup>> and <<fig-arch,the diagram>>.
Also <<top-intro>> here.
// <<sec-setup>> in a comment
Escaped \<<sec-setup>> stays.
----
<<sec-setup>> in a listing
----
Unknown <<nothing>> stays.
Shared <<sec-shared>> and xref:shared.adoc#sec-shared[].
Foreign xref:lib:ROOT:api.adoc#sec-setup[].`

const localChapter = `[#top-chapter]
= Chapter

[#sec-setup]
== Setup

[#fig-arch]
.Architecture
image::arch.png[]

include::partial$shared.adoc[]`

func localFixture(t *testing.T, xrefstyle string) *catalog.Catalog {
	return testhelpers.NewContent(t).
		Component("spec", "1.0").
		Attr("xrefstyle", xrefstyle).
		Nav("ROOT", "nav.adoc", "* xref:intro.adoc[]\n* xref:chapter.adoc[]\n* xref:other.adoc[]\n").
		Page("ROOT", "intro.adoc", localIntro).
		Page("ROOT", "chapter.adoc", localChapter).
		Page("ROOT", "other.adoc", "= Other\n\ninclude::partial$shared.adoc[]\n").
		Partial("ROOT", "shared.adoc", "[#sec-shared]\n== Shared\n").
		Catalog()
}

func TestLocalRewriter(t *testing.T) {
	store := localFixture(t, "@full")
	gen, state := generator(t, store, "spec", "1.0")
	intro := testhelpers.Page(t, store, "spec", "1.0", "ROOT", "intro.adoc")

	n, err := xref.NewLocalRewriter(gen, labels.StyleNone, state, nil).Apply(intro)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, intro.Modified())

	lines := intro.Lines()
	assert.Equal(t, `See xref:1.0@spec:ROOT:chapter.adoc#sec-setup[Section "Setup"] and xref:1.0@spec:ROOT:chapter.adoc#fig-arch[the diagram].`, lines[3])
	assert.Equal(t, "Also xref:1.0@spec:ROOT:intro.adoc[] here.", lines[4])
	assert.Equal(t, `// <<sec-setup>> in a comment`, lines[5])
	assert.Equal(t, `Escaped \<<sec-setup>> stays.`, lines[6])
	assert.Equal(t, `<<sec-setup>> in a listing`, lines[8])
	assert.Equal(t, `Unknown <<nothing>> stays.`, lines[10])
	assert.Equal(t, `Shared xref:1.0@spec:ROOT:chapter.adoc#sec-shared[Section "Shared"] and xref:shared.adoc#sec-shared[].`, lines[11])
	assert.Equal(t, `Foreign xref:lib:ROOT:api.adoc#sec-setup[].`, lines[12])
	assert.Equal(t, 1, state.Result().ByRule()[lint.RuleAmbiguousAnchor])
}

func TestLocalRewriterIsIdempotent(t *testing.T) {
	store := localFixture(t, "@full")
	gen, state := generator(t, store, "spec", "1.0")
	intro := testhelpers.Page(t, store, "spec", "1.0", "ROOT", "intro.adoc")
	rewriter := xref.NewLocalRewriter(gen, labels.StyleNone, state, nil)

	_, err := rewriter.Apply(intro)
	require.NoError(t, err)
	first := intro.Text()

	n, err := rewriter.Apply(intro)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, first, intro.Text())
}

func TestLocalRewriterAlternateStyle(t *testing.T) {
	store := localFixture(t, "")
	gen, state := generator(t, store, "spec", "1.0")
	intro := testhelpers.Page(t, store, "spec", "1.0", "ROOT", "intro.adoc")

	_, err := xref.NewLocalRewriter(gen, labels.StyleFull, state, nil).Apply(intro)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intro.Lines()[3], "See xref:1.0@spec:ROOT:chapter.adoc#sec-setup[] and "))
}

func TestLocalRewriterNumberedSections(t *testing.T) {
	const chapter = `:titleoffset: 3
= Chapter

[[sec-one,One]]
== One

[#sec-two]
== Two`

	tests := []struct {
		name    string
		partial bool
		ref     string
		want    string
	}{
		{"numbered section", false, "<<sec-two>>", `xref:1.0@spec:ROOT:chapter.adoc#sec-two[Section 3.2, "Two"]`},
		{"anchor with reftext", false, "<<sec-one>>", `xref:1.0@spec:ROOT:chapter.adoc#sec-one[Section 3.1, "One"]`},
		{"reference in a partial", true, "<<sec-two>>", `xref:1.0@spec:ROOT:chapter.adoc#sec-two[Section 3.2, "Two"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intro, note := "= Intro\n\nSee "+tt.ref+".", "Note."
			if tt.partial {
				intro, note = "= Intro\n\ninclude::partial$note.adoc[]", "See "+tt.ref+"."
			}
			store := testhelpers.NewContent(t).
				Component("spec", "1.0").
				Attr("xrefstyle", "@full").
				Nav("ROOT", "nav.adoc", "* xref:intro.adoc[]\n* xref:chapter.adoc[]\n").
				Page("ROOT", "intro.adoc", intro).
				Page("ROOT", "chapter.adoc", chapter).
				Partial("ROOT", "note.adoc", note).
				Catalog()
			gen, state := generator(t, store, "spec", "1.0")
			doc := testhelpers.Page(t, store, "spec", "1.0", "ROOT", "intro.adoc")
			if tt.partial {
				doc = testhelpers.Partial(t, store, "spec", "1.0", "ROOT", "note.adoc")
			}

			n, err := xref.NewLocalRewriter(gen, labels.StyleNone, state, nil).Apply(doc)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Contains(t, doc.Text(), "See "+tt.want+".")
		})
	}
}

const styleA = `= Page A
:reftext_short: Short A
Bad xref:b[] link.
See xref:b.adoc#sec-one[].
See xref:b.adoc[].
Self xref:a.adoc[].
Labelled xref:b.adoc#sec-one[Custom].
Figure xref:b.adoc#fig-pic[].
Styled xref:b.adoc#sec-one[xrefstyle=short].
Missing xref:b.adoc#sec-none[].
Broken xref:nothere.adoc[].
Other xref:2.0@lib:ROOT:api.adoc#sec-call[].
Old xref:1.5@spec:ROOT:b.adoc[].
include::partial$snip.adoc[]`

const styleB = `:titleoffset: 2
[#top-b]
= Page B

[#sec-one]
== One

[#fig-pic]
.Pic
image::p.png[]`

func styleFixture(t *testing.T) *catalog.Catalog {
	return testhelpers.NewContent(t).
		Component("spec", "1.0").
		Nav("ROOT", "nav.adoc", "* xref:a.adoc[]\n* xref:b.adoc[]\n").
		Page("ROOT", "a.adoc", styleA).
		Page("ROOT", "b.adoc", styleB).
		Partial("ROOT", "snip.adoc", "Snip xref:b.adoc#top-b[].").
		Component("lib", "2.0").
		Nav("ROOT", "nav.adoc", "* xref:api.adoc[]\n").
		Page("ROOT", "api.adoc", "= API\n\n[#sec-call]\n== Call\n").
		Catalog()
}

func TestStyleRewriter(t *testing.T) {
	store := styleFixture(t)
	gen, state := generator(t, store, "spec", "1.0")
	a := testhelpers.Page(t, store, "spec", "1.0", "ROOT", "a.adoc")
	snip := testhelpers.Partial(t, store, "spec", "1.0", "ROOT", "snip.adoc")
	rewriter := xref.NewStyleRewriter(store, gen, state, nil)

	n, err := rewriter.Apply(a, labels.StyleFull)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	lines := a.Lines()
	assert.Equal(t, "Bad xref:b[] link.", lines[2])
	assert.Equal(t, `See xref:b.adoc#sec-one[Section 2.1, "One"].`, lines[3])
	assert.Equal(t, `See xref:b.adoc[2, "Page B"].`, lines[4])
	assert.Equal(t, "Self xref:a.adoc[xrefstyle=full].", lines[5])
	assert.Equal(t, "Labelled xref:b.adoc#sec-one[Custom].", lines[6])
	assert.Equal(t, "Figure xref:b.adoc#fig-pic[].", lines[7])
	assert.Equal(t, "Styled xref:b.adoc#sec-one[Section 2.1, xrefstyle=short].", lines[8])
	assert.Equal(t, "Missing xref:b.adoc#sec-none[].", lines[9])
	assert.Equal(t, "Broken xref:nothere.adoc[].", lines[10])
	assert.Equal(t, `Other xref:2.0@lib:ROOT:api.adoc#sec-call[Section "Call"].`, lines[11])
	assert.Equal(t, `Old xref:1.5@spec:ROOT:b.adoc[2, "Page B"].`, lines[12])
	assert.Equal(t, `Snip xref:b.adoc#top-b[2, "Page B"].`, snip.Text())

	byRule := state.Result().ByRule()
	assert.Equal(t, 1, byRule[lint.RuleIncompleteXref])
	assert.Equal(t, 1, byRule[lint.RuleAnchorNotFound])
	assert.Equal(t, 1, byRule[lint.RuleUnresolvedXref])
	assert.Equal(t, 1, byRule[lint.RuleVersionFallback])

	first, firstSnip := a.Text(), snip.Text()
	n, err = rewriter.Apply(a, labels.StyleFull)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, first, a.Text())
	assert.Equal(t, firstSnip, snip.Text())
}

func TestStyleRewriterPromotesReftext(t *testing.T) {
	store := styleFixture(t)
	gen, state := generator(t, store, "spec", "1.0")
	a := testhelpers.Page(t, store, "spec", "1.0", "ROOT", "a.adoc")
	rewriter := xref.NewStyleRewriter(store, gen, state, nil)

	_, err := rewriter.Apply(a, labels.StyleShort)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.Text(), "= Page A\n:reftext: Short A\n:reftext_short: Short A\n"))

	_, err = rewriter.Apply(a, labels.StyleShort)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(a.Text(), ":reftext: "))
}

func TestStyleRewriterRejectsInvalidStyle(t *testing.T) {
	store := styleFixture(t)
	gen, state := generator(t, store, "spec", "1.0")
	a := testhelpers.Page(t, store, "spec", "1.0", "ROOT", "a.adoc")

	_, err := xref.NewStyleRewriter(store, gen, state, nil).Apply(a, labels.StyleNone)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.False(t, a.Modified())
}

func TestStyleRewriterDuplicateAnchorLabelsTarget(t *testing.T) {
	store := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Nav("ROOT", "nav.adoc", "* xref:a.adoc[]\n* xref:z.adoc[]\n* xref:c.adoc[]\n").
		Page("ROOT", "a.adoc", ":titleoffset: 1\n= A\n\n[[sec-dup]]\n== In A\n").
		Page("ROOT", "z.adoc", ":titleoffset: 2\n= Z\n\n[[sec-dup]]\n== In Z\n").
		Page("ROOT", "c.adoc", "= C\n\nFirst xref:a.adoc#sec-dup[].\nSecond xref:z.adoc#sec-dup[].\n").
		Catalog()
	gen, state := generator(t, store, "spec", "1.0")
	c := testhelpers.Page(t, store, "spec", "1.0", "ROOT", "c.adoc")

	entry := gen.Index.Get("sec-dup")
	require.NotNil(t, entry)
	assert.Equal(t, "a.adoc", entry.Source.Ref.Relative)

	n, err := xref.NewStyleRewriter(store, gen, state, nil).Apply(c, labels.StyleFull)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := c.Lines()
	assert.Equal(t, `First xref:a.adoc#sec-dup[Section 1.1, "In A"].`, lines[2])
	assert.Equal(t, `Second xref:z.adoc#sec-dup[Section 2.1, "In Z"].`, lines[3])
}
