package lines

import (
	"fmt"
	"iter"
	"strings"
)

// Store is an ordered sequence of lines addressable by a global character
// index. Lines live in an arena keyed by Handle.
//
// Store is not safe for concurrent use; the document serializes access.
type Store struct {
	lines   []*Line
	arena   map[Handle]*Line
	next    Handle
	columns int

	// pristine is set by Reset until the first edit or append.
	pristine bool
}

// New creates a store holding one empty line.
func New() *Store {
	s := &Store{arena: make(map[Handle]*Line), columns: 1}
	s.Reset()
	return s
}

// Reset drops all lines and leaves a single empty line. Annotations of the
// dropped lines are detached.
func (s *Store) Reset() {
	for _, l := range s.lines {
		for _, a := range l.anchors {
			a.line = NoLine
		}
		l.anchors = nil
	}
	s.lines = nil
	clear(s.arena)
	s.lines = append(s.lines, s.newLine(0, []rune{}))
	s.pristine = true
}

func (s *Store) newLine(start int, text []rune) *Line {
	s.next++
	l := newLine(s.next, start, text, s.columns)
	for col := 1; col < s.columns; col++ {
		l.texts[col] = []rune{}
	}
	s.arena[l.handle] = l
	return l
}

func (s *Store) insertAt(i int, l *Line) {
	s.lines = append(s.lines, nil)
	copy(s.lines[i+1:], s.lines[i:])
	s.lines[i] = l
}

func (s *Store) deleteAt(i int) {
	l := s.lines[i]
	delete(s.arena, l.handle)
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

// Count returns the number of lines.
func (s *Store) Count() int { return len(s.lines) }

// Columns returns the number of initialized text columns.
func (s *Store) Columns() int { return s.columns }

// At returns the line at index i, or nil when i is out of range.
func (s *Store) At(i int) *Line {
	if i < 0 || i >= len(s.lines) {
		return nil
	}
	return s.lines[i]
}

// Get returns the line for a handle.
func (s *Store) Get(h Handle) (*Line, bool) {
	l, ok := s.arena[h]
	return l, ok
}

// IndexOf returns the position of the line with handle h, or -1.
// Start indexes are strictly increasing, so the line is found by its start.
func (s *Store) IndexOf(h Handle) int {
	l, ok := s.arena[h]
	if !ok {
		return -1
	}
	lo, hi := 0, len(s.lines)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch m := s.lines[mid]; {
		case m.start < l.start:
			lo = mid + 1
		case m.start > l.start:
			hi = mid - 1
		default:
			if m == l {
				return mid
			}
			return s.scanIndexOf(l)
		}
	}
	return s.scanIndexOf(l)
}

func (s *Store) scanIndexOf(l *Line) int {
	for i, x := range s.lines {
		if x == l {
			return i
		}
	}
	return -1
}

// TextLength returns the length of the primary text including newlines.
func (s *Store) TextLength() int {
	if len(s.lines) == 0 {
		return 0
	}
	return s.lines[len(s.lines)-1].End()
}

// LineFromCharIndex returns the index of the line containing the global
// index.
//
// A line owns [start, start+length] inclusively, so the position just past
// the last character of a line (where its newline sits) resolves to that
// line. Any index past the end resolves to the last line. Negative indexes
// and an empty store return -1.
func (s *Store) LineFromCharIndex(index, col int) int {
	if index < 0 || len(s.lines) == 0 {
		return -1
	}

	lo, hi := 0, len(s.lines)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		m := s.lines[mid]
		switch {
		case index < m.start:
			hi = mid - 1
		case index > m.start:
			if index <= m.start+m.Len(col) {
				return mid
			}
			lo = mid + 1
		default:
			return mid
		}
	}

	return len(s.lines) - 1
}

// FirstCharIndex returns the start index of line i, or -1.
func (s *Store) FirstCharIndex(i int) int {
	if i < 0 || i >= len(s.lines) {
		return -1
	}
	return s.lines[i].start
}

// LineText returns the text of line i in column col.
func (s *Store) LineText(i, col int) (string, bool) {
	l := s.At(i)
	if l == nil {
		return "", false
	}
	return l.Text(col), true
}

// LineLen returns the length of line i in column col, or -1.
func (s *Store) LineLen(i, col int) int {
	l := s.At(i)
	if l == nil {
		return -1
	}
	return l.Len(col)
}

// CharAt returns the character at a global index. The end of a line
// yields '\n' and an empty line yields 0.
func (s *Store) CharAt(index, col int) (rune, bool) {
	i := s.LineFromCharIndex(index, col)
	if i == -1 {
		return 0, false
	}
	l := s.lines[i]
	rel := index - l.start
	t := l.Runes(col)
	switch {
	case len(t) == 0:
		return 0, true
	case rel == len(t):
		return '\n', true
	case rel < 0 || rel > len(t):
		return 0, false
	default:
		return t[rel], true
	}
}

// Append adds a line at the end of the store and returns it. The first
// append after Reset fills the initial empty line instead.
func (s *Store) Append(text string, col int) *Line {
	if col < 0 {
		col = 0
	}
	r := []rune(text)
	if s.pristine {
		s.pristine = false
		s.lines[0].setText(col, r)
		return s.lines[0]
	}
	l := s.newLine(s.TextLength()+1, []rune{})
	l.setText(col, r)
	s.lines = append(s.lines, l)
	return l
}

// InitializeColumn makes every line carry text for col.
func (s *Store) InitializeColumn(col int) {
	if col < 0 {
		return
	}
	if col >= s.columns {
		s.columns = col + 1
	}
	for _, l := range s.lines {
		if l.Runes(col) == nil {
			l.setText(col, []rune{})
		}
	}
}

// SetColumnText replaces the text of one line in an auxiliary column.
func (s *Store) SetColumnText(i, col int, text string) bool {
	l := s.At(i)
	if l == nil || col <= 0 {
		return false
	}
	s.InitializeColumn(col)
	l.setText(col, []rune(text))
	return true
}

// Attach adds a detached annotation to line h at rel.
func (s *Store) Attach(a *Annotation, h Handle, rel int) bool {
	if a.Attached() {
		s.Detach(a)
	}
	l, ok := s.arena[h]
	if !ok {
		return false
	}
	a.line = h
	a.rel = rel
	l.anchors = append(l.anchors, a)
	return true
}

// Move re-homes an annotation to line h at rel.
func (s *Store) Move(a *Annotation, h Handle, rel int) bool {
	if a.line == h {
		a.rel = rel
		return true
	}
	if _, ok := s.arena[h]; !ok {
		return false
	}
	s.Detach(a)
	return s.Attach(a, h, rel)
}

// Detach removes an annotation from its line.
func (s *Store) Detach(a *Annotation) {
	if l, ok := s.arena[a.line]; ok {
		l.detachAnchor(a)
	}
	a.line = NoLine
}

// Resize changes the length of an attached annotation.
func (s *Store) Resize(a *Annotation, length int) {
	if length < 0 {
		length = 0
	}
	a.length = length
}

// GlobalIndex returns the global index of an attached annotation.
func (s *Store) GlobalIndex(a *Annotation) (int, bool) {
	l, ok := s.arena[a.line]
	if !ok {
		return 0, false
	}
	return l.start + a.rel, true
}

// Annotations iterates every attached annotation in line order.
func (s *Store) Annotations() iter.Seq2[*Line, *Annotation] {
	return func(yield func(*Line, *Annotation) bool) {
		for _, l := range s.lines {
			for _, a := range l.Annotations() {
				if !yield(l, a) {
					return
				}
			}
		}
	}
}

// Stream iterates the text of column col starting at start. Walking forward
// yields '\n' between lines; walking backward yields '\n' at each line end.
func (s *Store) Stream(start int, forward bool, col int) iter.Seq[rune] {
	if col < 0 {
		col = 0
	}
	return func(yield func(rune) bool) {
		i := s.LineFromCharIndex(start, col)
		if i == -1 {
			return
		}
		rel := start - s.lines[i].start

		if forward {
			for i < len(s.lines) {
				t := s.lines[i].Runes(col)
				for ; rel < len(t); rel++ {
					if !yield(t[rel]) {
						return
					}
				}
				if i == len(s.lines)-1 {
					return
				}
				if !yield('\n') {
					return
				}
				i++
				rel = 0
			}
			return
		}

		rel = min(rel, s.lines[i].Len(col))
		for i >= 0 {
			t := s.lines[i].Runes(col)
			for ; rel >= 0; rel-- {
				r := '\n'
				if rel < len(t) {
					r = t[rel]
				}
				if !yield(r) {
					return
				}
			}
			i--
			if i >= 0 {
				rel = s.lines[i].Len(col)
			}
		}
	}
}

// TextGet returns length characters of column col starting at start.
// A negative col reads the primary column.
func (s *Store) TextGet(start, length, col int) string {
	if length <= 0 {
		return ""
	}
	var b strings.Builder
	n := 0
	for r := range s.Stream(start, true, col) {
		b.WriteRune(r)
		n++
		if n == length {
			break
		}
	}
	return b.String()
}

// Text returns the whole primary text joined by newlines.
func (s *Store) Text(col int) string {
	var b strings.Builder
	for i, l := range s.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text(col))
	}
	return b.String()
}

// Validate checks the store invariants: start indexes chain through the
// primary column and every annotation lies within its line and points
// back at it.
func (s *Store) Validate() error {
	if len(s.lines) == 0 {
		return fmt.Errorf("store has no lines")
	}
	if s.lines[0].start != 0 {
		return fmt.Errorf("line 0 starts at %d", s.lines[0].start)
	}
	for i, l := range s.lines {
		if s.arena[l.handle] != l {
			return fmt.Errorf("line %d missing from arena", i)
		}
		if i+1 < len(s.lines) && l.start+l.Len(0)+1 != s.lines[i+1].start {
			return fmt.Errorf("line %d: start %d + len %d + 1 != next start %d", i, l.start, l.Len(0), s.lines[i+1].start)
		}
		for _, a := range l.anchors {
			if a.line != l.handle {
				return fmt.Errorf("line %d: annotation %s points at handle %d", i, a.Key(), a.line)
			}
			if a.rel < 0 || a.rel+a.length > l.Len(0) {
				return fmt.Errorf("line %d: annotation %s [%d,%d) exceeds length %d", i, a.Key(), a.rel, a.rel+a.length, l.Len(0))
			}
		}
	}
	if len(s.arena) != len(s.lines) {
		return fmt.Errorf("arena holds %d lines, store %d", len(s.arena), len(s.lines))
	}
	return nil
}
