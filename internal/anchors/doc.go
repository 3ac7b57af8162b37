// Package anchors extracts anchor declarations from pages and the partials
// they include, and merges them into one index ordered by navigation
// position.
//
// An index entry names the canonical document an anchor was first found in
// and every further document it appears in (a partial included by several
// pages yields one usage per including page). After Indexify each entry
// carries the earliest navigation position of any of its usages, which is
// what figure and table numbering count against.
package anchors
