package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, source string) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result, source string) error {
	// Header
	if _, err := fmt.Fprintf(w, "Checking references in: %s\n", source); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	// Group issues by file, keeping first-seen order
	var files []string
	issuesByFile := make(map[string][]Issue)
	for _, issue := range result.Issues {
		if _, ok := issuesByFile[issue.File]; !ok {
			files = append(files, issue.File)
		}
		issuesByFile[issue.File] = append(issuesByFile[issue.File], issue)
	}

	for _, file := range files {
		for _, issue := range issuesByFile[file] {
			if err := f.formatIssue(w, issue); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}

	// Summary
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n  %d documents scanned\n", result.FilesTotal); err != nil {
		return err
	}
	if n := result.ErrorCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d error%s (unresolvable)\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.WarningCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d warning%s (should fix)\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.InfoCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d info\n", n); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	switch {
	case result.HasErrors():
		_, err := fmt.Fprintln(w, "❌ Content has references that cannot be resolved.")
		return err
	case result.HasWarnings():
		_, err := fmt.Fprintln(w, "⚠️  Content has warnings. Consider fixing before publishing.")
		return err
	case len(result.Issues) > 0:
		_, err := fmt.Fprintln(w, "ℹ️  All issues are informational.")
		return err
	}
	_, err := fmt.Fprintln(w, "✨ All references resolve!")
	return err
}

// formatIssue formats a single issue.
func (f *TextFormatter) formatIssue(w io.Writer, issue Issue) error {
	var icon string
	switch issue.Severity {
	case SeverityError:
		icon = "✗"
	case SeverityWarning:
		icon = "⚠"
	case SeverityInfo:
		icon = "ℹ"
	}

	location := issue.File
	if issue.Line > 0 {
		location = fmt.Sprintf("%s:%d", issue.File, issue.Line)
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", icon, location); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %s [%s]: %s\n", issue.Severity, issue.Rule, issue.Message); err != nil {
		return err
	}
	if issue.Anchor != "" {
		if _, err := fmt.Fprintf(w, "  Anchor: %s\n", issue.Anchor); err != nil {
			return err
		}
	}
	if issue.Fix != "" {
		if _, err := fmt.Fprintf(w, "  Fix: %s\n", issue.Fix); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Source       string      `json:"source"`
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	InfoCount    int         `json:"info_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Anchor   string `json:"anchor,omitempty"`
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, source string) error {
	output := JSONOutput{
		Source:       source,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		InfoCount:    result.InfoCount(),
		Issues:       []JSONIssue{},
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			File:     issue.File,
			Line:     issue.Line,
			Severity: issue.Severity.String(),
			Rule:     issue.Rule,
			Anchor:   issue.Anchor,
			Message:  issue.Message,
			Fix:      issue.Fix,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
