package lint

import "strings"

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo indicates informational messages (e.g., a code anchor on an example block).
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that degrade the output but do not stop a pass.
	SeverityWarning
	// SeverityError indicates references that cannot be resolved at all.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Rule identifiers.
const (
	RuleAnchorTitle       = "anchor-title"
	RuleAnchorBlock       = "anchor-block"
	RuleCodeExampleBlock  = "code-example-block"
	RuleTopInPartial      = "top-in-partial"
	RuleTopOnSection      = "top-on-section"
	RuleSecOnTitle        = "sec-on-title"
	RuleNonStandardAnchor = "non-standard-anchor"
	RuleAnchorNotFound    = "anchor-not-found"
	RuleAnchorNotInTarget = "anchor-not-in-target"
	RuleAmbiguousAnchor   = "ambiguous-anchor"
	RuleUnresolvedInclude = "unresolved-include"
	RuleUnresolvedXref    = "unresolved-xref"
	RuleIncompleteXref    = "incomplete-xref"
	RuleOrphanPage        = "orphan-page"
	RuleUnpublishedPage   = "unpublished-page"
	RuleEmptyDocument     = "empty-document"
	RuleSelfInclude       = "self-include"
	RuleVersionFallback   = "version-fallback"
	RuleInvalidXrefStyle  = "invalid-xref-style"
	RuleLabelNotGenerated = "label-not-generated"
)

// Issue represents a single linting problem found in a document.
type Issue struct {
	File     string   // Source path qualified with component and version
	Line     int      // 1-based line number (0 if document-level issue)
	Severity Severity // Issue severity level
	Rule     string   // Rule identifier (e.g., "anchor-title")
	Anchor   string   // Anchor the issue is about, if any
	Message  string   // Brief description of the issue
	Fix      string   // Suggested fix
}

// Result contains all issues found during a pass.
type Result struct {
	Issues     []Issue
	FilesTotal int // Total documents scanned
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool {
	return r.WarningCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.count(SeverityWarning)
}

// InfoCount returns the number of informational issues.
func (r *Result) InfoCount() int {
	return r.count(SeverityInfo)
}

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// ByRule counts issues per rule.
func (r *Result) ByRule() map[string]int {
	out := map[string]int{}
	for _, issue := range r.Issues {
		out[issue.Rule]++
	}
	return out
}

// WithoutInfo drops informational issues.
func (r *Result) WithoutInfo() *Result {
	return r.AtLeast(SeverityWarning)
}

// AtLeast keeps the issues of severity level or higher, used by quiet output.
func (r *Result) AtLeast(level Severity) *Result {
	out := &Result{FilesTotal: r.FilesTotal}
	for _, issue := range r.Issues {
		if issue.Severity >= level {
			out.Issues = append(out.Issues, issue)
		}
	}
	return out
}

// IsConfigPage reports whether a document stem marks a configuration page
// that analysis skips.
func IsConfigPage(stem string) bool {
	return strings.TrimSuffix(stem, ".adoc") == "_config"
}
