// Package asciidoc recognizes the AsciiDoc syntax the cross-reference engine
// reacts to: attribute entries and references, include directives, anchor
// declarations, local and qualified references, headings, captions, block
// delimiters, tagged regions and Antora resource ids.
//
// Every recognizer works on a single line and returns a typed match. The
// package does not build a document tree.
package asciidoc
