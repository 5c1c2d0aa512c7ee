// Package segment maintains styled segments (annotations) over a line
// store.
//
// The store shifts, clips and moves annotations while it edits text. The
// Manager is called after each edited character to decide whether the
// content-derived annotations around the edit still hold: it probes the
// style matcher just before and just after the edit, replaces annotations
// whose bounds changed, drops those that no longer match and then searches
// the token left of the edit for new matches.
//
// Styles that only update on finalizing changes, such as spell checking,
// are evaluated when a token is completed (whitespace, punctuation,
// newline, removal or an explicit FakeFinalizingKey).
package segment
