// Package labels computes the link text of cross references: figure and
// table numbers, section numbers that account for included content, page
// titles and the `full`, `short` and `basic` reference styles.
package labels

import (
	"html"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/foundation/normalization"
)

// Style is an xref style.
type Style string

const (
	StyleNone  Style = ""
	StyleFull  Style = "full"
	StyleShort Style = "short"
	StyleBasic Style = "basic"
)

var styleNormalizer = normalization.New("xref style", map[string]Style{
	"full":  StyleFull,
	"short": StyleShort,
	"basic": StyleBasic,
}, StyleNone)

// ParseStyle parses a style name. The empty string is StyleNone.
func ParseStyle(s string) (Style, error) {
	if strings.TrimSpace(s) == "" {
		return StyleNone, nil
	}
	return styleNormalizer.Parse(s)
}

// NormalizeStyle returns the style named by s, or StyleNone.
func NormalizeStyle(s string) Style {
	return styleNormalizer.Normalize(s)
}

// Valid reports whether s is one of the named styles.
func (s Style) Valid() bool {
	return s == StyleFull || s == StyleShort || s == StyleBasic
}

// Refsigs are the words that introduce section and appendix numbers.
type Refsigs struct {
	Section  string
	Appendix string
}

// RefsigsFrom reads `section-refsig` and `appendix-caption` from the
// component attributes.
func RefsigsFrom(component map[string]string) Refsigs {
	r := Refsigs{Section: "Section", Appendix: "Appendix"}
	if v := component["section-refsig"]; v != "" {
		r.Section = v
	}
	if v := component["appendix-caption"]; v != "" {
		r.Appendix = v
	}
	return r
}

// Parts are the pieces a styled label is assembled from.
type Parts struct {
	// Value is returned when no style applies.
	Value   string
	Reftext string
	Prefix  string
	// Kind is the anchor type, such as `top` or `sec`.
	Kind  string
	Title string
}

// ApplyStyle assembles the label for style.
func ApplyStyle(style Style, p Parts, sig Refsigs) string {
	switch style {
	case StyleFull:
		switch {
		case p.Reftext != "":
			return p.Reftext
		case p.Prefix != "" && p.Kind == "top" && strings.HasPrefix(p.Prefix, sig.Appendix):
			return p.Prefix + " __" + p.Title + "__"
		case p.Prefix != "" && p.Prefix != sig.Section && p.Prefix != sig.Appendix:
			return p.Prefix + `, "` + p.Title + `"`
		case p.Prefix != "":
			return p.Prefix + ` "` + p.Title + `"`
		}
		return p.Title
	case StyleShort:
		switch {
		case p.Reftext != "":
			return p.Reftext
		case p.Prefix != "":
			return p.Prefix
		}
		return p.Title
	case StyleBasic:
		if p.Reftext != "" {
			return p.Reftext
		}
		return p.Title
	}
	return p.Value
}

// PreventMathConversion wraps a code span that opens a quoted title in a
// passthrough so that a following renderer cannot take it for math.
func PreventMathConversion(s string) string {
	i := strings.Index(s, "\"`")
	if i < 0 {
		return s
	}
	start := i + 1
	end := strings.IndexByte(s[start+1:], '`')
	if end < 0 {
		return s
	}
	end += start + 1
	code := s[start+1 : end]
	return s[:start] + "pass:[<code>" + html.EscapeString(code) + "</code>]" + s[end+1:]
}
