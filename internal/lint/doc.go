// Package lint collects the warnings of a build pass, deduplicates them and
// renders them as text or JSON.
//
// Unresolvable includes, unresolvable or ambiguous references and anchor
// convention violations are reported through a State. None of them aborts a
// pass.
package lint
