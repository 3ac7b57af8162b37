// Package catalog holds the Antora content model used by the cross-reference
// engine: component-versions, their attributes and nav files, and the pages
// and partials with mutable content.
//
// The analysis packages only see documents through the Store interface and
// the DocumentRef value type, so they never depend on how content was loaded.
package catalog
