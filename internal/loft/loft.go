// Package loft generates the list of figures and the list of tables of a
// component-version.
package loft

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/labels"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
)

// Dir is the directory below the pages family that holds the lists.
const Dir = "loft"

// Store is a document store that accepts generated pages.
type Store interface {
	catalog.Store
	AddGenerated(doc *catalog.Document) error
}

type list struct {
	prefix string
	word   string
	title  string
	file   string
}

var lists = []list{
	{prefix: "fig-", word: "Figure", title: "List of figures", file: "list_of_figures.adoc"},
	{prefix: "tab-", word: "Table", title: "List of tables", file: "list_of_tables.adoc"},
}

type row struct {
	anchor string
	page   *catalog.Document
	source *catalog.Document
	pos    anchors.Position
}

// Generate writes both lists for cv. Existing list pages are overwritten;
// new ones are added to the module of the last nav file, which also gets
// an entry for them. It returns the pages it wrote.
func Generate(gen *labels.Generator, store Store, cv *catalog.ComponentVersion, index *anchors.Map, nav *navorder.Order) ([]*catalog.Document, error) {
	navFiles := store.Documents(catalog.Query{Component: cv.Name, Version: cv.Version, Family: catalog.FamilyNav})
	if index.Len() == 0 || len(navFiles) == 0 {
		return nil, nil
	}
	lastNav := navFiles[len(navFiles)-1]

	var written []*catalog.Document
	for _, l := range lists {
		rows := collect(index, nav, l.prefix)
		if len(rows) == 0 {
			continue
		}
		content := render(gen, l, rows)

		rel := Dir + "/" + l.file
		if page, ok := findList(store, cv, rel); ok {
			page.SetContents([]byte(content))
			written = append(written, page)
			continue
		}
		page := catalog.NewDocument(catalog.NewRef(cv.Name, cv.Version, lastNav.Ref.Module, catalog.FamilyPage, rel), []byte(content))
		if err := store.AddGenerated(page); err != nil {
			return written, errors.WrapError(err, errors.CategoryContent, "add generated list page").
				WithContext("page", rel).
				Build()
		}
		lastNav.SetContents([]byte(lastNav.Text() + "\n* xref:" + rel + "[]\n"))
		written = append(written, page)
	}
	return written, nil
}

// collect lists every navigated page occurrence of the anchors with
// prefix, ordered by navigation position and line.
func collect(index *anchors.Map, nav *navorder.Order, prefix string) []row {
	var rows []row
	for _, e := range index.Entries() {
		if !strings.HasPrefix(e.ID, prefix) {
			continue
		}
		if len(e.UsedIn) > 1 {
			for i, doc := range e.UsedIn {
				if doc.Ref.Family == catalog.FamilyPartial {
					continue
				}
				rows = append(rows, row{anchor: e.ID, page: doc, source: e.Source, pos: anchors.Position{Nav: nav.Position(doc.Ref), Line: e.UsedInLine[i]}})
			}
			continue
		}
		rows = append(rows, row{anchor: e.ID, page: e.Source, source: e.Source, pos: anchors.Position{Nav: nav.Position(e.Source.Ref), Line: e.Line}})
	}

	rows = slices.DeleteFunc(rows, func(r row) bool {
		return !r.page.Ref.Published || r.pos.Nav == navorder.Unknown
	})
	slices.SortStableFunc(rows, func(a, b row) int {
		if c := cmp.Compare(a.pos.Nav, b.pos.Nav); c != 0 {
			return c
		}
		return cmp.Compare(a.pos.Line, b.pos.Line)
	})
	return rows
}

func render(gen *labels.Generator, l list, rows []row) string {
	lines := []string{
		"= " + l.title,
		"",
		`[%header, cols="12,88", grid=none, frame=none]`,
		"|===",
		"|" + l.word + "      |Description",
	}
	n := 1
	for _, r := range rows {
		title, ok := gen.Label(r.source, r.anchor, labels.StyleNone, nil)
		if !ok || title == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("|xref:%s:%s#%s[%s %d]  |%s", r.page.Ref.Module, r.page.Ref.Relative, r.anchor, l.word, n, title))
		n++
	}
	lines = append(lines, "|===")
	return strings.Join(lines, "\n")
}

func findList(store catalog.Store, cv *catalog.ComponentVersion, rel string) (*catalog.Document, bool) {
	for _, doc := range store.Documents(catalog.Query{Component: cv.Name, Version: cv.Version, Family: catalog.FamilyPage}) {
		if doc.Ref.Relative == rel {
			return doc, true
		}
	}
	return nil, false
}
