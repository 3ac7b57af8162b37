package xref

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/textedit"
)

// reftextScanLines is how far into a document `reftext_<style>` is looked
// for.
const reftextScanLines = 15

var reftextEntryRe = regexp.MustCompile(`^\s*:reftext:(.*)`)

// setReftext sets the value of the first `:reftext:` entry of doc, or adds
// the entry below the document title. It reports whether the content
// changed.
func setReftext(doc *catalog.Document, value string) (bool, error) {
	text := doc.Text()
	lines := textedit.SplitLines(text)

	var edit textedit.Edit
	found := false
	for i, line := range lines.All() {
		m := reftextEntryRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		edit = textedit.Edit{Start: lines.Offset(i, m[2]), End: lines.Offset(i, m[3]), Replacement: " " + value}
		found = true
		break
	}
	if !found {
		entry := ":reftext: " + value
		title := 0
		for i, line := range lines.All() {
			if strings.HasPrefix(line, "= ") {
				title = i
				break
			}
		}
		if title+1 < lines.Len() {
			edit = lines.InsertLine(title+1, entry)
		} else {
			edit = textedit.Insert(len(text), "\n"+entry)
		}
	}

	updated, err := textedit.Apply(text, []textedit.Edit{edit})
	if err != nil {
		return false, err
	}
	if updated == text {
		return false, nil
	}
	doc.SetContents([]byte(updated))
	return true, nil
}
