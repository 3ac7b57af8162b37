package catalog

import (
	"bytes"
	"strings"
)

// Document is a page, partial or nav file with mutable content.
type Document struct {
	Ref DocumentRef

	// NavIndex orders nav files within a component-version; -1 otherwise.
	NavIndex int

	contents []byte
	modified bool
	created  bool
	origin   string
}

// NewDocument creates a document with the given content.
func NewDocument(ref DocumentRef, contents []byte) *Document {
	return &Document{Ref: ref, NavIndex: -1, contents: contents}
}

// Contents returns the current content. Callers must not mutate it.
func (d *Document) Contents() []byte {
	return d.contents
}

// Text returns the current content as a string.
func (d *Document) Text() string {
	return string(d.contents)
}

// Lines splits the content on newlines.
func (d *Document) Lines() []string {
	return strings.Split(string(d.contents), "\n")
}

// Empty reports whether the document has no content.
func (d *Document) Empty() bool {
	return len(d.contents) == 0
}

// SetContents replaces the content and marks the document modified when it changed.
func (d *Document) SetContents(b []byte) {
	if bytes.Equal(b, d.contents) {
		return
	}
	d.contents = b
	d.modified = true
}

// Modified reports whether the content changed since loading.
func (d *Document) Modified() bool {
	return d.modified
}

// Created reports whether the document was generated during the pass.
func (d *Document) Created() bool {
	return d.created
}

// Origin is the file the document was loaded from, relative to the source root.
func (d *Document) Origin() string {
	return d.origin
}
