// Package lines stores text as an ordered sequence of lines addressable by
// a single global character index.
//
// Each line holds one text per column. Column 0 is the primary column: its
// length decides where the next line starts, so that
//
//	lines[i].Start() + lines[i].Len(0) + 1 == lines[i+1].Start()
//
// holds after every edit. Auxiliary columns are parallel representations of
// the same line and are edited line by line.
//
// Lines live in an arena keyed by Handle. Annotations reference their line
// by handle and offset; the store moves them between lines when an edit
// splits or merges lines and reports each step through Hooks so the caller
// can re-validate annotations and notify observers.
package lines
