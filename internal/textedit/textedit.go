// Package textedit applies byte-range edits to document content without
// re-rendering it.
package textedit

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Edit represents a targeted byte-range replacement.
//
// Start and End are byte offsets into the original source, with End exclusive.
// Replacement replaces source[Start:End]. Start == End is an insertion.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// Insert returns an insertion edit at offset.
func Insert(offset int, text string) Edit {
	return Edit{Start: offset, End: offset, Replacement: text}
}

// ErrOverlap is returned when two edits touch the same bytes.
var ErrOverlap = errors.New("invalid edits: overlapping ranges")

// Apply applies a set of byte-range edits to source and returns the updated content.
//
// Edits must be non-overlapping and refer to offsets in the original source.
// They are applied from the end of the source toward the beginning so
// offsets stay valid. Insertions at the same offset keep their input order.
func Apply(source string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return source, nil
	}

	type indexed struct {
		Edit
		pos int
	}
	sorted := make([]indexed, len(edits))
	for i, e := range edits {
		sorted[i] = indexed{e, i}
	}
	slices.SortFunc(sorted, func(a, b indexed) int {
		if c := cmp.Compare(b.Start, a.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(b.End, a.End); c != 0 {
			return c
		}
		return cmp.Compare(b.pos, a.pos)
	})

	for i, e := range sorted {
		if e.Start < 0 || e.End < 0 {
			return "", fmt.Errorf("invalid edit[%d]: negative range", e.pos)
		}
		if e.End < e.Start {
			return "", fmt.Errorf("invalid edit[%d]: end before start", e.pos)
		}
		if e.End > len(source) {
			return "", fmt.Errorf("invalid edit[%d]: range out of bounds", e.pos)
		}
		if i > 0 && e.End > sorted[i-1].Start {
			return "", ErrOverlap
		}
	}

	var b strings.Builder
	b.Grow(len(source))
	// walk front to back over the reversed order
	cursor := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		b.WriteString(source[cursor:e.Start])
		b.WriteString(e.Replacement)
		cursor = e.End
	}
	b.WriteString(source[cursor:])
	return b.String(), nil
}

// Lines splits content into lines and remembers where each line starts so
// that line-relative offsets can be turned into edits.
type Lines struct {
	text   []string
	starts []int
}

// SplitLines splits content on newlines.
func SplitLines(content string) *Lines {
	text := strings.Split(content, "\n")
	starts := make([]int, len(text))
	off := 0
	for i, l := range text {
		starts[i] = off
		off += len(l) + 1
	}
	return &Lines{text: text, starts: starts}
}

// Len returns the number of lines.
func (l *Lines) Len() int { return len(l.text) }

// At returns line i without its newline.
func (l *Lines) At(i int) string { return l.text[i] }

// All returns the lines.
func (l *Lines) All() []string { return l.text }

// Offset converts a column in line i into an offset in the content.
func (l *Lines) Offset(i, col int) int { return l.starts[i] + col }

// ReplaceLine returns an edit replacing the whole of line i.
func (l *Lines) ReplaceLine(i int, text string) Edit {
	return Edit{Start: l.starts[i], End: l.starts[i] + len(l.text[i]), Replacement: text}
}

// InsertLine returns an edit inserting text as a new line before line i.
func (l *Lines) InsertLine(i int, text string) Edit {
	return Insert(l.starts[i], text+"\n")
}
