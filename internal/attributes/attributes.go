// Package attributes tracks AsciiDoc document attributes and substitutes
// attribute references in lines.
package attributes

import (
	"maps"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/asciidoc"
)

// maxSubstitutions bounds the replacements per line so that values
// referencing themselves cannot loop forever.
const maxSubstitutions = 64

// Update applies an attribute entry found in line to state. It reports
// whether the line was an attribute entry.
func Update(state map[string]string, line string) bool {
	e, ok := asciidoc.ParseAttributeEntry(line)
	if !ok {
		return false
	}
	if e.Unset {
		delete(state, e.Name)
	} else {
		state[e.Name] = e.Value
	}
	return true
}

// lookup resolves a placeholder name. Component attributes keyed by the
// quoted name win over plain component attributes, which win over page
// attributes. Values that trim to nothing do not resolve.
func lookup(component, page map[string]string, name string) (string, bool) {
	for _, candidate := range []struct {
		src map[string]string
		key string
	}{
		{component, "'" + name + "'"},
		{component, name},
		{page, name},
	} {
		if v := strings.TrimSpace(candidate.src[candidate.key]); v != "" {
			return v, true
		}
	}
	return "", false
}

// Substitute replaces every resolvable `{name}` placeholder in line. The
// scan restarts after each replacement, so values may contain placeholders
// themselves. Placeholders after a `//` comment marker are left alone.
func Substitute(component, page map[string]string, line string) string {
	if !strings.Contains(line, "{") {
		return line
	}
	for range maxSubstitutions {
		replaced := false
		for _, ref := range asciidoc.FindAttributeRefs(line) {
			if v, ok := lookup(component, page, ref.Name); ok {
				line = line[:ref.Start] + v + line[ref.End:]
				replaced = true
				break
			}
		}
		if !replaced {
			break
		}
	}
	return line
}

// FirstValue returns the value of the first entry for name in lines. With
// stopAfter > 0 only the lines up to that index are searched.
func FirstValue(lines []string, name string, stopAfter int) (string, bool) {
	state := map[string]string{}
	for i, line := range lines {
		if stopAfter > 0 && i > stopAfter {
			break
		}
		Update(state, line)
		if v, ok := state[name]; ok {
			return v, true
		}
	}
	return "", false
}

// Scope couples read-only component attributes with the live page
// attributes of a document being scanned.
type Scope struct {
	component map[string]string
	page      map[string]string
}

// NewScope creates a scope. The page map is copied.
func NewScope(component, page map[string]string) *Scope {
	p := maps.Clone(page)
	if p == nil {
		p = map[string]string{}
	}
	if component == nil {
		component = map[string]string{}
	}
	return &Scope{component: component, page: p}
}

// Update applies an attribute entry to the page attributes.
func (s *Scope) Update(line string) bool {
	return Update(s.page, line)
}

// Substitute replaces placeholders in line using this scope.
func (s *Scope) Substitute(line string) string {
	return Substitute(s.component, s.page, line)
}

// Page returns the page attribute value.
func (s *Scope) Page(name string) (string, bool) {
	v, ok := s.page[name]
	return v, ok
}

// Component returns the component attribute value.
func (s *Scope) Component(name string) (string, bool) {
	v, ok := s.component[name]
	return v, ok
}

// Caption returns the first non-empty value of name from the page
// attributes, then the component attributes, then fallback.
func (s *Scope) Caption(name, fallback string) string {
	if v := s.page[name]; v != "" {
		return v
	}
	if v := s.component[name]; v != "" {
		return v
	}
	return fallback
}

// PageAttributes returns the live page attribute map. Callers that recurse
// into includes share it so that definitions propagate.
func (s *Scope) PageAttributes() map[string]string {
	return s.page
}

// Clone copies the page attributes; component attributes are shared.
func (s *Scope) Clone() *Scope {
	return &Scope{component: s.component, page: maps.Clone(s.page)}
}
