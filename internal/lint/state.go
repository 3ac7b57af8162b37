package lint

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"git.home.luguber.info/inful/adocxref/internal/logfields"
)

type issueKey struct {
	anchor string
	file   string
	rule   string
}

// State is the per-pass set of reported issues. It is safe for concurrent
// use; a nil State discards everything.
type State struct {
	mu     sync.Mutex
	logger *slog.Logger
	seen   map[issueKey]struct{}
	once   map[string]struct{}
	issues []Issue
	files  int
}

// NewState creates an empty state that logs first occurrences to logger.
func NewState(logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{logger: logger, seen: map[issueKey]struct{}{}, once: map[string]struct{}{}}
}

// Report records an issue unless an issue with the same anchor, file and
// rule was reported before. Issues without an anchor are keyed by their
// message instead. It returns true for the first occurrence.
func (s *State) Report(issue Issue) bool {
	if s == nil {
		return false
	}
	key := issueKey{anchor: issue.Anchor, file: issue.File, rule: issue.Rule}
	if issue.Anchor == "" {
		key.anchor = "\x00" + issue.Message
	}

	s.mu.Lock()
	if _, dup := s.seen[key]; dup {
		s.mu.Unlock()
		return false
	}
	s.seen[key] = struct{}{}
	s.issues = append(s.issues, issue)
	s.mu.Unlock()

	s.log(issue)
	return true
}

// WarnOnce records issue the first time key is seen, regardless of the
// document it was found in.
func (s *State) WarnOnce(key string, issue Issue) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	if _, dup := s.once[key]; dup {
		s.mu.Unlock()
		return false
	}
	s.once[key] = struct{}{}
	s.mu.Unlock()
	return s.Report(issue)
}

// AddFiles counts scanned documents for the summary.
func (s *State) AddFiles(n int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.files += n
	s.mu.Unlock()
}

// Result returns a snapshot of the reported issues in report order.
func (s *State) Result() *Result {
	if s == nil {
		return &Result{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Result{Issues: slices.Clone(s.issues), FilesTotal: s.files}
}

func (s *State) log(issue Issue) {
	level := slog.LevelWarn
	switch issue.Severity {
	case SeverityInfo:
		level = slog.LevelInfo
	case SeverityError:
		level = slog.LevelError
	}
	attrs := []slog.Attr{
		logfields.Rule(issue.Rule),
		logfields.Document(issue.File),
	}
	if issue.Line > 0 {
		attrs = append(attrs, logfields.Line(issue.Line))
	}
	if issue.Anchor != "" {
		attrs = append(attrs, logfields.Anchor(issue.Anchor))
	}
	s.logger.LogAttrs(context.Background(), level, issue.Message, attrs...)
}
