package asciidoc

import (
	"regexp"
	"strings"
)

// Xref is a qualified `xref:target.adoc[#fragment][attrs]` macro.
type Xref struct {
	Start, End int
	// Target is the resource id before the fragment.
	Target   string
	Fragment string
	// BracketStart is the offset of the opening `[` of the attribute list.
	BracketStart int
	HasStyle     bool
	Style        string
	Label        string
}

// Inner is the offset right after the opening bracket, where labels are injected.
func (x Xref) Inner() int {
	return x.BracketStart + 1
}

var (
	xrefRe           = regexp.MustCompile(`xref:([^\[]*\.adoc)(#[^\[]*)?(\[)(xrefstyle\s*=\s*([^,\]]*))?,?([^\]]*)\]`)
	incompleteXrefRe = regexp.MustCompile(`xref:([^\[\.]*)(#[^\[]*)?\[(xrefstyle\s*=\s*([^,\]]*))?,?(.*)\]`)
	fragmentXrefRe   = regexp.MustCompile(`xref:([^#\[\s]+)#([^\[]+)\[([^\]]*)\]`)
)

// FindXrefs returns the qualified xref macros of a line.
func FindXrefs(line string) []Xref {
	var out []Xref
	for _, m := range xrefRe.FindAllStringSubmatchIndex(line, -1) {
		x := Xref{
			Start:        m[0],
			End:          m[1],
			Target:       line[m[2]:m[3]],
			BracketStart: m[6],
			Label:        strings.TrimSpace(line[m[12]:m[13]]),
		}
		if m[4] >= 0 {
			x.Fragment = line[m[4]+1 : m[5]]
		}
		if m[8] >= 0 {
			x.HasStyle = true
			x.Style = strings.TrimSpace(line[m[10]:m[11]])
		}
		out = append(out, x)
	}
	return out
}

// IncompleteXref returns the first xref macro that lacks an `.adoc` target,
// if the line has no complete xref.
func IncompleteXref(line string) (string, bool) {
	if xrefRe.MatchString(line) {
		return "", false
	}
	m := incompleteXrefRe.FindString(line)
	return m, m != ""
}

// FragmentXref is an `xref:target#id[text]` macro found by the local
// reference pass.
type FragmentXref struct {
	Target     string
	ID         string
	Text       string
	Start, End int
}

// FindFragmentXrefs returns every xref macro carrying a fragment.
func FindFragmentXrefs(line string) []FragmentXref {
	var out []FragmentXref
	for _, m := range fragmentXrefRe.FindAllStringSubmatchIndex(line, -1) {
		out = append(out, FragmentXref{
			Target: line[m[2]:m[3]],
			ID:     line[m[4]:m[5]],
			Text:   line[m[6]:m[7]],
			Start:  m[0],
			End:    m[1],
		})
	}
	return out
}
