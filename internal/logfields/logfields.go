package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyComponent  = "component"
	KeyVersion    = "version"
	KeyDocument   = "document"
	KeyAnchor     = "anchor"
	KeyLine       = "line"
	KeyStyle      = "style"
	KeyInclude    = "include"
	KeyReference  = "reference"
	KeyRule       = "rule"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Document(p string) slog.Attr     { return slog.String(KeyDocument, p) }
func Anchor(id string) slog.Attr      { return slog.String(KeyAnchor, id) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Style(s string) slog.Attr        { return slog.String(KeyStyle, s) }
func Include(target string) slog.Attr { return slog.String(KeyInclude, target) }
func Reference(r string) slog.Attr    { return slog.String(KeyReference, r) }
func Rule(r string) slog.Attr         { return slog.String(KeyRule, r) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
