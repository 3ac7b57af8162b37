package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/adocxref/internal/labels"
)

// NormalizationResult captures adjustments and warnings from normalization.
type NormalizationResult struct{ Warnings []string }

// Normalize canonicalizes enumerated fields in place. Unknown log settings
// fall back to their defaults with a warning; an unknown xref style is left
// as written so that Validate reports it.
func Normalize(c *Config) *NormalizationResult {
	res := &NormalizationResult{}

	if raw := string(c.Logging.Level); strings.TrimSpace(raw) != "" {
		lvl := NormalizeLogLevel(raw)
		if _, err := logLevelNormalizer.Parse(raw); err != nil {
			res.Warnings = append(res.Warnings, warnUnknown("logging.level", raw, string(lvl)))
		} else if raw != string(lvl) {
			res.Warnings = append(res.Warnings, warnChanged("logging.level", raw, lvl))
		}
		c.Logging.Level = lvl
	}

	if raw := string(c.Logging.Format); strings.TrimSpace(raw) != "" {
		f := NormalizeLogFormat(raw)
		if _, err := logFormatNormalizer.Parse(raw); err != nil {
			res.Warnings = append(res.Warnings, warnUnknown("logging.format", raw, string(f)))
		} else if raw != string(f) {
			res.Warnings = append(res.Warnings, warnChanged("logging.format", raw, f))
		}
		c.Logging.Format = f
	}

	if raw := c.Xref.AlternateStyle; raw != "" {
		if s, err := labels.ParseStyle(raw); err == nil && raw != string(s) {
			res.Warnings = append(res.Warnings, warnChanged("xref.alternate_style", raw, s))
			c.Xref.AlternateStyle = string(s)
		}
	}

	c.Orphans.Exceptions = compact(c.Orphans.Exceptions)
	return res
}

// compact trims entries and drops empty ones.
func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
