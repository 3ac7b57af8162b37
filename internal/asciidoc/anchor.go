package asciidoc

import (
	"regexp"
	"strings"
)

// AnchorForm is the syntax an anchor was declared with.
type AnchorForm int

const (
	// AnchorBrackets is `[[id]]` or `[[id,reftext]]`.
	AnchorBrackets AnchorForm = iota
	// AnchorShorthand is `[#id]` or `[#id,reftext]`.
	AnchorShorthand
	// AnchorMacro is `anchor:id[reftext]`.
	AnchorMacro
)

// AnchorDecl is an anchor declaration in a line.
type AnchorDecl struct {
	ID         string
	Reftext    string
	Form       AnchorForm
	Start, End int
}

var anchorRe = regexp.MustCompile(
	`\[\[\[?([^\],\[]+)(?:,([^\]]*))?\]\]` +
		`|\[#([^\],]+)(?:,([^\]]*))?\]` +
		`|anchor:([^\[\s,]+)\[([^\]]*)`)

// FindAnchor returns the first anchor declaration of a line. Declarations
// directly after a backtick, or after a `//` comment marker on the same line,
// are not anchors.
func FindAnchor(line string) (AnchorDecl, bool) {
	for _, m := range anchorRe.FindAllStringSubmatchIndex(line, -1) {
		before := line[:m[0]]
		if strings.HasSuffix(before, "`") || strings.Contains(before, "//") {
			continue
		}
		d := AnchorDecl{Start: m[0], End: m[1]}
		switch {
		case m[2] >= 0:
			d.Form, d.ID = AnchorBrackets, line[m[2]:m[3]]
			if m[4] >= 0 {
				d.Reftext = line[m[4]:m[5]]
			}
		case m[6] >= 0:
			d.Form, d.ID = AnchorShorthand, line[m[6]:m[7]]
			if m[8] >= 0 {
				d.Reftext = line[m[8]:m[9]]
			}
		default:
			d.Form, d.ID, d.Reftext = AnchorMacro, line[m[10]:m[11]], line[m[12]:m[13]]
		}
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			continue
		}
		return d, true
	}
	return AnchorDecl{}, false
}

// AnchorPrefix returns the type prefix of an id such as `sec` for
// `sec-intro`; the whole id when there is no dash.
func AnchorPrefix(id string) string {
	id = strings.TrimPrefix(id, "#")
	if before, _, ok := strings.Cut(id, "-"); ok {
		return before
	}
	return id
}

// DeclaresAnchor reports whether line declares id in any anchor form.
func DeclaresAnchor(line, id string) bool {
	return strings.Contains(line, "[["+id+"]]") ||
		strings.Contains(line, "[["+id+",") ||
		strings.Contains(line, "[[["+id+"]]]") ||
		strings.Contains(line, "[#"+id+"]") ||
		strings.Contains(line, "[#"+id+",") ||
		strings.Contains(line, "anchor:"+id+"[")
}

// LocalRef is a `<<id>>` or `<<id,text>>` reference.
type LocalRef struct {
	ID         string
	Text       string
	HasText    bool
	Start, End int
}

var localRefRe = regexp.MustCompile(`<<([^>,]+)(?:,\s*(.+?))?>>`)

// FindLocalRefs returns every local reference of a line.
func FindLocalRefs(line string) []LocalRef {
	var refs []LocalRef
	for _, m := range localRefRe.FindAllStringSubmatchIndex(line, -1) {
		r := LocalRef{ID: strings.TrimSpace(line[m[2]:m[3]]), Start: m[0], End: m[1]}
		if m[4] >= 0 {
			r.Text, r.HasText = line[m[4]:m[5]], true
		}
		refs = append(refs, r)
	}
	return refs
}

// OpensAnchor reports whether line contains the opening of a `[#id` or
// `[[id` declaration. Ids sharing a prefix with id match too.
func OpensAnchor(line, id string) bool {
	return strings.Contains(line, "[#"+id) || strings.Contains(line, "[["+id)
}

// AnchorOffset returns the offset of the first `[#id]` declaration in
// content, else of the first `[[id]]` declaration, else of the first
// `anchor:id[]` macro, or -1. Declarations carrying reftext count.
func AnchorOffset(content, id string) int {
	for _, forms := range [][]string{
		{"[#" + id + "]", "[#" + id + ","},
		{"[[" + id + "]]", "[[" + id + ","},
		{"anchor:" + id + "["},
	} {
		if i := firstIndex(content, forms); i >= 0 {
			return i
		}
	}
	return -1
}

func firstIndex(s string, subs []string) int {
	first := -1
	for _, sub := range subs {
		if i := strings.Index(s, sub); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	return first
}
