package asciidoc

import (
	"regexp"
	"strconv"
	"strings"
)

// Include is an include directive targeting an AsciiDoc file.
type Include struct {
	// Prefix is the family-qualified part of the target including the `$`,
	// e.g. `partial$` or `comp:mod:page$`. Empty for relative targets.
	Prefix string
	// Target is the path after the prefix.
	Target      string
	Attributes  string
	Tags        []string
	LevelOffset int
}

// Address is the full include target as written.
func (i Include) Address() string {
	return i.Prefix + i.Target
}

// Family returns the family named by the prefix, empty when the target is relative.
func (i Include) Family() string {
	if i.Prefix == "" {
		return ""
	}
	rid := ParseResourceID(i.Prefix)
	return rid.Family
}

var (
	includeRe      = regexp.MustCompile(`^\s*include::(\S*partial\$|\S*page\$)?([^\[]+\.adoc)\[(.+)?\]`)
	includeLooseRe = regexp.MustCompile(`^\s*include::([^\[]+)\[([^\]]*)\]`)
	tagsRe         = regexp.MustCompile(`(?:^|,)\s*tags?=([^,]+)`)
	levelOffsetRe  = regexp.MustCompile(`leveloffset=\+(\d+)`)
)

// ParseInclude recognizes `include::[prefix]target.adoc[attrs]`.
func ParseInclude(line string) (Include, bool) {
	m := includeRe.FindStringSubmatch(line)
	if m == nil {
		return Include{}, false
	}
	inc := Include{Prefix: m[1], Target: m[2], Attributes: m[3]}
	inc.parseAttributes()
	return inc, true
}

// ParseIncludeLoose recognizes any include directive regardless of the
// target extension. The section walker uses it to follow leveloffset.
func ParseIncludeLoose(line string) (Include, bool) {
	m := includeLooseRe.FindStringSubmatch(line)
	if m == nil {
		return Include{}, false
	}
	inc := Include{Target: m[1], Attributes: m[2]}
	if i := strings.LastIndex(inc.Target, "$"); i >= 0 {
		inc.Prefix, inc.Target = inc.Target[:i+1], inc.Target[i+1:]
	}
	inc.parseAttributes()
	return inc, true
}

func (i *Include) parseAttributes() {
	if i.Attributes == "" {
		return
	}
	if m := tagsRe.FindStringSubmatch(i.Attributes); m != nil {
		for _, t := range strings.Split(m[1], ";") {
			if t = strings.TrimSpace(t); t != "" {
				i.Tags = append(i.Tags, t)
			}
		}
	}
	if m := levelOffsetRe.FindStringSubmatch(i.Attributes); m != nil {
		i.LevelOffset, _ = strconv.Atoi(m[1])
	}
}

// ResourceID is a parsed Antora resource id. Empty fields were not given.
type ResourceID struct {
	Version   string
	Component string
	Module    string
	Family    string
	Relative  string
}

// ParseResourceID parses `[version@][component:][module:][family$]relative`.
func ParseResourceID(id string) ResourceID {
	var r ResourceID
	if before, after, ok := strings.Cut(id, "@"); ok {
		r.Version, id = before, after
	}
	parts := strings.Split(id, ":")
	switch len(parts) {
	case 3:
		r.Component, r.Module, id = parts[0], parts[1], parts[2]
	case 2:
		r.Module, id = parts[0], parts[1]
	}
	if before, after, ok := strings.Cut(id, "$"); ok {
		r.Family, id = before, after
	}
	r.Relative = id
	return r
}
