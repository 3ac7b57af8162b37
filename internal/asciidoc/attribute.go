package asciidoc

import (
	"regexp"
	"strings"
)

// AttributeEntry is a `:name: value`, `:name!:` or `:!name:` line.
type AttributeEntry struct {
	Name  string
	Value string
	Unset bool
}

var attributeEntryRe = regexp.MustCompile(`^\s*:(!)?([^:!]+)(!)?:(.*)$`)

// ParseAttributeEntry recognizes an attribute entry. The value is trimmed.
func ParseAttributeEntry(line string) (AttributeEntry, bool) {
	m := attributeEntryRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return AttributeEntry{}, false
	}
	return AttributeEntry{
		Name:  m[2],
		Value: strings.TrimSpace(m[4]),
		Unset: m[1] != "" || m[3] != "",
	}, true
}

// AttributeRef is a `{name}` placeholder; Start and End are byte offsets of
// the braces in the line.
type AttributeRef struct {
	Name       string
	Start, End int
}

var attributeRefRe = regexp.MustCompile(`(//.*)?\{([^}]+)\}`)

// FindAttributeRefs returns the placeholders of a line in order. A
// placeholder preceded by a `//` comment marker ends the scan.
func FindAttributeRefs(line string) []AttributeRef {
	var refs []AttributeRef
	for _, m := range attributeRefRe.FindAllStringSubmatchIndex(line, -1) {
		if m[2] >= 0 {
			break
		}
		refs = append(refs, AttributeRef{Name: line[m[4]:m[5]], Start: m[0], End: m[1]})
	}
	return refs
}
