package lines

import "github.com/dshills/annotext/internal/engine/style"

// Hooks observes the edit algorithms. Calls are made while the edit is in
// progress; implementations may read and re-annotate the line they are
// given but must not edit text.
type Hooks interface {
	// Altered reports a change of diff characters in the primary text of l.
	Altered(l *Line, diff int)
	// Added reports a line created by a split.
	Added(l *Line)
	// Removed reports a line about to be merged into its predecessor. diff
	// is the number of characters the line accounted for, its newline
	// included.
	Removed(l *Line, diff int)
	// CharInserted runs after c was inserted at rel in l. For '\n', l is the
	// line that was split and rel its new length.
	CharInserted(l *Line, rel int, c rune)
	// CharsRemoved runs after length characters were removed at rel in l.
	// length may be zero when only newlines were consumed.
	CharsRemoved(l *Line, rel, length int)
}

// NopHooks ignores every notification.
type NopHooks struct{}

func (NopHooks) Altered(*Line, int) {}

func (NopHooks) Added(*Line) {}

func (NopHooks) Removed(*Line, int) {}

func (NopHooks) CharInserted(*Line, int, rune) {}

func (NopHooks) CharsRemoved(*Line, int, int) {}

// Insert inserts text at the global index start of column col. It reports
// false, changing nothing, when start lies outside the text, text is empty,
// or text holds a newline and col is auxiliary.
//
// Primary column inserts split lines on '\n' and move annotations at or
// after the split point onto the new line. Auxiliary column inserts are
// local to one line and leave start indexes alone.
func (s *Store) Insert(start int, text string, col int, h Hooks) bool {
	if h == nil {
		h = NopHooks{}
	}
	if col < 0 {
		col = 0
	}
	runes := []rune(text)
	if len(runes) == 0 || start < 0 {
		return false
	}
	if col > 0 {
		return s.insertAux(start, runes, col)
	}
	if start > s.TextLength() {
		return false
	}

	idx := s.LineFromCharIndex(start, 0)
	if idx == -1 {
		return false
	}
	s.pristine = false

	// Later lines move by the full insert up front; lines created by splits
	// get their start computed from the line they were split from.
	for _, l := range s.lines[idx+1:] {
		l.start += len(runes)
	}

	line := s.lines[idx]
	rel := min(line.Len(0), start-line.start)
	additions := 0

	for _, c := range runes {
		if c == '\n' {
			next := s.split(idx, rel)
			h.Altered(line, additions-next.Len(0))
			h.Added(next)
			h.CharInserted(line, rel, c)

			idx++
			line = next
			rel = 0
			additions = 0
			continue
		}

		line.insertRunes(0, rel, []rune{c})
		for _, a := range line.anchors {
			switch {
			case a.rel >= rel:
				a.rel++
			case a.rel < rel && rel < a.rel+a.length:
				a.length++
			}
		}
		additions++
		h.CharInserted(line, rel, c)
		rel++
	}

	if additions > 0 {
		h.Altered(line, additions)
	}
	return true
}

// split truncates line idx at rel and inserts the remainder as a new line
// after it. Annotations starting at or after rel move to the new line;
// annotations straddling rel stay and are clipped.
func (s *Store) split(idx, rel int) *Line {
	line := s.lines[idx]
	t := line.Runes(0)
	tail := append([]rune{}, t[rel:]...)
	line.setText(0, append([]rune{}, t[:rel]...))

	next := s.newLine(line.start+rel+1, tail)
	s.insertAt(idx+1, next)

	for _, a := range line.Annotations() {
		switch {
		case a.rel >= rel:
			s.Move(a, next.handle, a.rel-rel)
		case a.rel+a.length > rel:
			a.length = rel - a.rel
		}
	}
	return next
}

func (s *Store) insertAux(start int, runes []rune, col int) bool {
	for _, c := range runes {
		if c == '\n' {
			return false
		}
	}
	idx := s.LineFromCharIndex(start, col)
	if idx == -1 {
		return false
	}
	line := s.lines[idx]
	rel := start - line.start
	if rel < 0 || rel > line.Len(col) {
		return false
	}
	line.insertRunes(col, rel, runes)
	return true
}

// Remove removes length characters of column col at the global index start
// and returns the removed text. It reports false, changing nothing, when the
// span does not exist or length is zero. A negative length panics.
//
// Removing across a line end merges the following line into the current one
// first, moving its annotations along. Annotations fully inside the removed
// span are deleted unless Pinned; Pinned ones collapse to the removal point.
func (s *Store) Remove(start, length, col int, h Hooks) (string, bool) {
	if length < 0 {
		panic("lines: negative remove length")
	}
	if h == nil {
		h = NopHooks{}
	}
	if col < 0 {
		col = 0
	}
	if length == 0 || start < 0 {
		return "", false
	}

	idx := s.LineFromCharIndex(start, col)
	if idx == -1 {
		return "", false
	}
	line := s.lines[idx]
	rs := start - line.start
	if rs < 0 || rs > line.Len(col) {
		return "", false
	}

	if col > 0 {
		if rs+length > line.Len(col) {
			return "", false
		}
		removed := string(line.Runes(col)[rs : rs+length])
		line.removeRunes(col, rs, length)
		return removed, true
	}

	if start+length > s.TextLength() {
		return "", false
	}
	if idx == len(s.lines)-1 && rs+length > line.Len(0) {
		return "", false
	}

	removed := s.TextGet(start, length, 0)
	s.pristine = false
	before := line.Len(0)
	remaining := length

	for rs+remaining > line.Len(0) && idx+1 < len(s.lines) {
		next := s.lines[idx+1]
		h.Removed(next, -(next.Len(0) + 1))
		s.merge(idx)
		remaining--
	}

	re := rs + remaining
	line.removeRunes(0, rs, remaining)

	mapPos := func(p int) int {
		switch {
		case p <= rs:
			return p
		case p >= re:
			return p - remaining
		default:
			return rs
		}
	}
	for _, a := range line.Annotations() {
		inside := a.rel >= rs && a.rel+a.length <= re
		if inside && remaining > 0 && a.Kind() != style.Pinned {
			s.Detach(a)
			continue
		}
		ns, ne := mapPos(a.rel), mapPos(a.rel+a.length)
		a.rel = ns
		a.length = ne - ns
	}

	for _, l := range s.lines[idx+1:] {
		l.start -= length
	}

	h.Altered(line, line.Len(0)-before)
	h.CharsRemoved(line, rs, remaining)
	return removed, true
}

// merge appends line idx+1 to line idx in every column and deletes it.
func (s *Store) merge(idx int) {
	line, next := s.lines[idx], s.lines[idx+1]
	offset := line.Len(0)

	for _, a := range next.Annotations() {
		s.Move(a, line.handle, a.rel+offset)
	}
	for col := range max(line.Columns(), next.Columns()) {
		joined := make([]rune, 0, line.Len(col)+next.Len(col))
		joined = append(joined, line.Runes(col)...)
		joined = append(joined, next.Runes(col)...)
		line.setText(col, joined)
	}
	s.deleteAt(idx + 1)
}
