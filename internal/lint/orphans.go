package lint

import (
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/navorder"
)

// StartPage is the page Antora serves as the component-version root. It
// never counts as an orphan.
const StartPage = "index.adoc"

// CheckOrphans reports published pages of a component-version that no nav
// file lists (orphan-page) and pages that will not be published at all
// (unpublished-page). Configuration pages and paths containing one of the
// exception substrings are skipped. It returns the number of issues found.
func CheckOrphans(state *State, store catalog.Store, cv *catalog.ComponentVersion, nav *navorder.Order, exceptions []string) int {
	found := 0
	for _, doc := range store.Documents(catalog.Query{Component: cv.Name, Version: cv.Version, Family: catalog.FamilyPage}) {
		ref := doc.Ref
		if IsConfigPage(ref.Stem()) || excepted(ref.Path(), exceptions) {
			continue
		}
		switch {
		case !ref.Published:
			found++
			state.Report(Issue{
				File:     ref.String(),
				Severity: SeverityInfo,
				Rule:     RuleUnpublishedPage,
				Message:  "detected page that is not published",
			})
		case !nav.Contains(ref) && !(ref.Module == catalog.RootModule && ref.Relative == StartPage):
			found++
			state.Report(Issue{
				File:     ref.String(),
				Severity: SeverityWarning,
				Rule:     RuleOrphanPage,
				Message:  "detected page that is not listed in any navigation file",
				Fix:      "add * xref:" + ref.Module + ":" + ref.Relative + "[] to a nav file",
			})
		}
	}
	return found
}

func excepted(p string, exceptions []string) bool {
	for _, e := range exceptions {
		if e != "" && strings.Contains(p, e) {
			return true
		}
	}
	return false
}
