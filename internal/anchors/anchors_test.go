package anchors_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/lint"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
	testhelpers "git.home.luguber.info/inful/adocxref/internal/testing"
)

const introPage = `[#top-intro]
= Intro

[#sec-scope]
== Scope

include::partial$figs.adoc[]
----
[#sec-hidden]
----
// [#sec-commented]
ifndef::use-antora-rules[]
[#sec-skipped]
endif::[]`

const detailsPage = `= Details
include::partial$figs.adoc[]
[#tab-data]
.Data
|===`

func fixture(t *testing.T) (*catalog.Catalog, anchors.Context) {
	t.Helper()
	c := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Nav("ROOT", "nav.adoc", "* xref:intro.adoc[]\n* xref:details.adoc[]\n").
		Page("ROOT", "intro.adoc", introPage).
		Page("ROOT", "details.adoc", detailsPage).
		Page("ROOT", "orphan.adoc", "[#sec-orphan]\n== Orphan").
		Partial("ROOT", "figs.adoc", "[#fig-arch]\n.Architecture\nimage::arch.png[]").
		Catalog()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return c, anchors.Context{
		Store:  c,
		Nav:    navorder.ForComponentVersion(c, "spec", "1.0"),
		Lint:   lint.NewState(logger),
		Logger: logger,
	}
}

func TestExtract(t *testing.T) {
	c, ctx := fixture(t)
	intro := testhelpers.Page(t, c, "spec", "1.0", "ROOT", "intro.adoc")
	figs := testhelpers.Partial(t, c, "spec", "1.0", "ROOT", "figs.adoc")

	m := anchors.Extract(ctx, intro, nil, nil, nil)
	assert.Equal(t, []string{"fig-arch", "top-intro", "sec-scope"}, m.Keys())

	fig := m.Get("fig-arch")
	require.NotNil(t, fig)
	assert.Same(t, figs, fig.Source)
	assert.Equal(t, 6, fig.Line)
	assert.Equal(t, []*catalog.Document{intro}, fig.UsedIn)
	assert.Equal(t, []int{6}, fig.UsedInLine)

	scope := m.Get("sec-scope")
	require.NotNil(t, scope)
	assert.Same(t, intro, scope.Source)
	assert.Equal(t, 3, scope.Line)
	assert.Empty(t, scope.UsedIn)
}

func TestExtractDuplicateInDocument(t *testing.T) {
	c := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Page("ROOT", "a.adoc", "[[sec-x]]\n== X\n\n[[sec-x]]\n== X again").
		Catalog()
	a := testhelpers.Page(t, c, "spec", "1.0", "ROOT", "a.adoc")

	m := anchors.Extract(anchors.Context{Store: c}, a, nil, nil, nil)
	e := m.Get("sec-x")
	require.NotNil(t, e)
	assert.Equal(t, 0, e.Line)
	assert.Equal(t, []*catalog.Document{a}, e.UsedIn)
	assert.Equal(t, []int{3}, e.UsedInLine)
}

func TestExtractIgnoredRegions(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
	}{
		{"listing", "----"},
		{"example", "===="},
		{"fenced", "```"},
		{"comment", "////"},
		{"literal", "...."},
		{"sidebar", "****"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := tt.delimiter + "\n[[sec-inside]]\n<<sec-inside>>\n" + tt.delimiter + "\n[[sec-after]]\n== After"
			c := testhelpers.NewContent(t).
				Component("spec", "1.0").
				Page("ROOT", "a.adoc", content).
				Catalog()
			a := testhelpers.Page(t, c, "spec", "1.0", "ROOT", "a.adoc")

			m := anchors.Extract(anchors.Context{Store: c}, a, nil, nil, nil)
			assert.Equal(t, []string{"sec-after"}, m.Keys())
			assert.Equal(t, 4, m.Get("sec-after").Line)
		})
	}
}

func TestExtractSubstitutesAttributes(t *testing.T) {
	c := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Page("ROOT", "a.adoc", ":part: figs\ninclude::partial${part}.adoc[]\n[#sec-{suffix}]").
		Partial("ROOT", "figs.adoc", ":suffix: end\n[#fig-one]").
		Catalog()
	a := testhelpers.Page(t, c, "spec", "1.0", "ROOT", "a.adoc")

	inherited := map[string]string{}
	m := anchors.Extract(anchors.Context{Store: c}, a, inherited, nil, nil)
	assert.True(t, m.Has("fig-one"))
	assert.True(t, m.Has("sec-end"), "attributes set in an include stay in effect")
	assert.Equal(t, "figs", inherited["part"])
}

func TestExtractTags(t *testing.T) {
	c := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Partial("ROOT", "tagged.adoc", "// tag::a[]\n[#sec-a]\n// end::a[]\n// tag::b[]\n[#sec-b]\n// end::b[]\n[#sec-c]").
		Catalog()
	p := testhelpers.Partial(t, c, "spec", "1.0", "ROOT", "tagged.adoc")
	ctx := anchors.Context{Store: c}

	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{"no filter", nil, []string{"sec-a", "sec-b", "sec-c"}},
		{"positive", []string{"a"}, []string{"sec-a"}},
		{"two positive", []string{"a", "b"}, []string{"sec-a", "sec-b"}},
		{"negated", []string{"!a"}, []string{"sec-b", "sec-c"}},
		{"unknown tag", []string{"zz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, anchors.Extract(ctx, p, nil, tt.tags, nil).Keys())
		})
	}
}

func TestExtractIncludeProblems(t *testing.T) {
	c := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Page("ROOT", "self.adoc", "include::self.adoc[]\n[#sec-a]\ninclude::partial$missing.adoc[]").
		Page("ROOT", "empty.adoc", "").
		Catalog()
	state := lint.NewState(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ctx := anchors.Context{Store: c, Lint: state, Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}

	m := anchors.Extract(ctx, testhelpers.Page(t, c, "spec", "1.0", "ROOT", "self.adoc"), nil, nil, nil)
	assert.Equal(t, []string{"sec-a"}, m.Keys())

	empty := anchors.Extract(ctx, testhelpers.Page(t, c, "spec", "1.0", "ROOT", "empty.adoc"), nil, nil, nil)
	assert.Zero(t, empty.Len())

	rules := state.Result().ByRule()
	assert.Equal(t, 1, rules[lint.RuleUnresolvedInclude])
	assert.Equal(t, 1, rules[lint.RuleEmptyDocument])
}

func TestMergeOverride(t *testing.T) {
	page := func(rel string) *catalog.Document {
		return catalog.NewDocument(catalog.NewRef("spec", "1.0", "ROOT", catalog.FamilyPage, rel), []byte("x"))
	}
	a, b, c, d := page("a.adoc"), page("b.adoc"), page("c.adoc"), page("d.adoc")
	p := catalog.NewDocument(catalog.NewRef("spec", "1.0", "ROOT", catalog.FamilyPartial, "p.adoc"), []byte("x"))
	navDoc := catalog.NewDocument(catalog.NewRef("spec", "1.0", "ROOT", catalog.FamilyNav, "nav.adoc"),
		[]byte("* xref:a.adoc[]\n* xref:b.adoc[]\n* xref:c.adoc[]\n"))
	nav := navorder.New([]*catalog.Document{navDoc})

	source := func(usedIn ...*catalog.Document) *anchors.Map {
		m := anchors.NewMap()
		e := &anchors.Entry{ID: "fig-x", Source: p, Line: 3}
		for i, u := range usedIn {
			e.UsedIn = append(e.UsedIn, u)
			e.UsedInLine = append(e.UsedInLine, i+1)
		}
		m.Set(e)
		return m
	}

	tests := []struct {
		name     string
		usedIn   []*catalog.Document
		override *catalog.Document
		want     []*catalog.Document
		lines    []int
	}{
		{"no usages", nil, b, []*catalog.Document{b}, []int{3}},
		{"inserted in nav order", []*catalog.Document{a, c}, b, []*catalog.Document{a, b, c}, []int{1, 3, 2}},
		{"before unknown usage", []*catalog.Document{a, d}, c, []*catalog.Document{a, c, d}, []int{1, 3, 2}},
		{"override not in nav", []*catalog.Document{a}, d, []*catalog.Document{a, d}, []int{1, 3}},
		{"latest in nav", []*catalog.Document{a, b}, c, []*catalog.Document{a, b, c}, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := anchors.Merge(nil, source(tt.usedIn...), nav, tt.override)
			e := m.Get("fig-x")
			require.NotNil(t, e)
			assert.Equal(t, tt.want, e.UsedIn)
			assert.Equal(t, tt.lines, e.UsedInLine)
		})
	}
}

func TestMergeCombines(t *testing.T) {
	doc := func(rel string) *catalog.Document {
		return catalog.NewDocument(catalog.NewRef("spec", "1.0", "ROOT", catalog.FamilyPage, rel), []byte("x"))
	}
	a, b, c := doc("a.adoc"), doc("b.adoc"), doc("c.adoc")
	single := func(src *catalog.Document, line int, usedIn ...*catalog.Document) *anchors.Map {
		m := anchors.NewMap()
		e := &anchors.Entry{ID: "sec-x", Source: src, Line: line}
		for _, u := range usedIn {
			e.UsedIn = append(e.UsedIn, u)
			e.UsedInLine = append(e.UsedInLine, line)
		}
		m.Set(e)
		return m
	}

	m := anchors.Merge(single(a, 1), single(b, 2), nil, nil)
	assert.Equal(t, []*catalog.Document{a, b}, m.Get("sec-x").UsedIn)
	assert.Equal(t, []int{1, 2}, m.Get("sec-x").UsedInLine)

	m = anchors.Merge(single(a, 1, c), single(b, 2), nil, nil)
	assert.Equal(t, []*catalog.Document{c, b}, m.Get("sec-x").UsedIn)

	m = anchors.Merge(single(a, 1), single(b, 2, c), nil, nil)
	assert.Equal(t, []*catalog.Document{a, c}, m.Get("sec-x").UsedIn)

	m = anchors.Merge(single(a, 1, b), single(c, 2, c), nil, nil)
	assert.Equal(t, []*catalog.Document{b, c}, m.Get("sec-x").UsedIn)

	target := single(a, 1)
	assert.Same(t, target, anchors.Merge(target, anchors.NewMap(), nil, nil))
}

func TestBuildIndex(t *testing.T) {
	c, ctx := fixture(t)
	intro := testhelpers.Page(t, c, "spec", "1.0", "ROOT", "intro.adoc")
	details := testhelpers.Page(t, c, "spec", "1.0", "ROOT", "details.adoc")
	figs := testhelpers.Partial(t, c, "spec", "1.0", "ROOT", "figs.adoc")

	m := anchors.BuildIndex(ctx, c.Documents(catalog.Query{Family: catalog.FamilyPage}))
	assert.Equal(t, []string{"top-intro", "sec-scope", "fig-arch", "tab-data"}, m.Keys())
	assert.False(t, m.Has("sec-orphan"))

	fig := m.Get("fig-arch")
	assert.Equal(t, anchors.Position{Nav: 0, Line: 6}, fig.Index)
	assert.Equal(t, []*catalog.Document{intro, details, figs}, fig.UsedIn)
	assert.Equal(t, []anchors.Position{{Nav: 0, Line: 6}, {Nav: 1, Line: 1}, {Nav: -1, Line: 6}}, fig.AllIndices)

	scope := m.Get("sec-scope")
	assert.Equal(t, []*catalog.Document{intro}, scope.UsedIn)
	assert.Equal(t, anchors.Position{Nav: 0, Line: 3}, scope.Index)

	assert.Equal(t, 1, m.Get("tab-data").Index.Nav)
}

func TestBuildIndexDuplicateAcrossPages(t *testing.T) {
	const (
		pageA = "= A\n\n[[sec-dup]]\n== In A\n"
		pageZ = "= Z\n\n[[sec-dup]]\n== In Z\n"
	)
	tests := []struct {
		name   string
		nav    string
		source string
		usedIn []string
	}{
		{"catalog order matches nav", "* xref:a.adoc[]\n* xref:z.adoc[]\n", "a.adoc", []string{"a.adoc", "z.adoc"}},
		{"catalog order against nav", "* xref:z.adoc[]\n* xref:a.adoc[]\n", "z.adoc", []string{"z.adoc", "a.adoc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testhelpers.NewContent(t).
				Component("spec", "1.0").
				Nav("ROOT", "nav.adoc", tt.nav).
				Page("ROOT", "a.adoc", pageA).
				Page("ROOT", "z.adoc", pageZ).
				Catalog()
			ctx := anchors.Context{Store: c, Nav: navorder.ForComponentVersion(c, "spec", "1.0")}

			m := anchors.BuildIndex(ctx, c.Documents(catalog.Query{Family: catalog.FamilyPage}))
			e := m.Get("sec-dup")
			require.NotNil(t, e)
			assert.Equal(t, tt.source, e.Source.Ref.Relative)
			assert.Equal(t, 2, e.Line)
			assert.Equal(t, anchors.Position{Nav: 0, Line: 2}, e.Index)

			var usedIn []string
			for _, d := range e.UsedIn {
				usedIn = append(usedIn, d.Ref.Relative)
			}
			assert.Equal(t, tt.usedIn, usedIn)
			assert.Equal(t, []int{2, 2}, e.UsedInLine)
			assert.Equal(t, []anchors.Position{{Nav: 0, Line: 2}, {Nav: 1, Line: 2}}, e.AllIndices)
		})
	}
}

func TestIndexifyDropsUnnavigated(t *testing.T) {
	p := catalog.NewDocument(catalog.NewRef("spec", "1.0", "ROOT", catalog.FamilyPartial, "p.adoc"), []byte("x"))
	m := anchors.NewMap()
	m.Set(&anchors.Entry{ID: "sec-x", Source: p, Line: 1})
	out := anchors.Indexify(m, nil)
	assert.Zero(t, out.Len())
}

func TestCountBefore(t *testing.T) {
	c, ctx := fixture(t)
	m := anchors.BuildIndex(ctx, c.Documents(catalog.Query{Family: catalog.FamilyPage}))

	assert.Equal(t, 1, anchors.CountBefore(m, "fig-", anchors.Position{Nav: 0, Line: 6}))
	assert.Equal(t, 2, anchors.CountBefore(m, "fig-", anchors.Position{Nav: 1, Line: 1}))
	assert.Equal(t, 0, anchors.CountBefore(m, "fig-", anchors.Position{Nav: 0, Line: 5}))
	assert.Equal(t, 1, anchors.CountBefore(m, "tab-", anchors.Position{Nav: 1, Line: 4}))
}

func TestPositionCompare(t *testing.T) {
	assert.Negative(t, anchors.Position{Nav: 0, Line: 9}.Compare(anchors.Position{Nav: 1, Line: 0}))
	assert.Negative(t, anchors.Position{Nav: 2, Line: 1}.Compare(anchors.Position{Nav: 2, Line: 4}))
	assert.Positive(t, anchors.Position{Nav: -1, Line: 0}.Compare(anchors.Position{Nav: 5, Line: 9}))
}
