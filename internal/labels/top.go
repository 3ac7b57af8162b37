package labels

import (
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
	"git.home.luguber.info/inful/adocxref/internal/attributes"
	"git.home.luguber.info/inful/adocxref/internal/catalog"
)

// TopValues are the label parts of a page title.
type TopValues struct {
	Title   string
	Reftext string
	Prefix  string
	Value   string
}

// Parts converts the values for ApplyStyle.
func (v TopValues) Parts() Parts {
	return Parts{Value: v.Value, Reftext: v.Reftext, Prefix: v.Prefix, Kind: "top", Title: v.Title}
}

// TopAnchorValues reads the title of doc from content (the document title,
// else its alt text), the `reftext_<style>` attribute and the title prefix
// from `titleprefix` or `titleoffset`.
func TopAnchorValues(doc *catalog.Document, content []string, style Style) TopValues {
	v := TopValues{Value: AltText(doc, content)}
	if title, ok := documentTitle(content); ok {
		v.Title = title
	} else {
		v.Title = v.Value
	}

	raw := doc.Lines()
	if style.Valid() {
		v.Reftext, _ = attributes.FirstValue(raw, "reftext_"+string(style), 0)
	}
	if p, _ := attributes.FirstValue(raw, "titleprefix", 0); p != "" {
		v.Prefix = p
	} else if p, _ := attributes.FirstValue(raw, "titleoffset", 0); p != "" {
		v.Prefix = p
	}
	return v
}

// AltText is the fallback label of a page: `Section <titleprefix>` or
// `Section <titleoffset>` when set, else the document title, else the file
// stem.
func AltText(doc *catalog.Document, content []string) string {
	for _, name := range []string{"titleprefix", "titleoffset"} {
		if v, _ := attributes.FirstValue(content, name, 0); v != "" {
			return "Section " + v
		}
	}
	if title, ok := documentTitle(content); ok {
		return title
	}
	return doc.Ref.Stem()
}

func documentTitle(content []string) (string, bool) {
	for _, line := range content {
		if !strings.HasPrefix(line, "=") {
			continue
		}
		if h, ok := asciidoc.ParseHeading(line); ok && h.Level == 1 {
			return h.Title, true
		}
	}
	return "", false
}
