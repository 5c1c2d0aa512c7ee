package lines

import (
	"github.com/rivo/uniseg"
)

// Handle is a stable identifier of a line in the store arena. Handles are
// never reused, so an annotation holding the handle of a deleted line can
// detect it.
type Handle uint64

// NoLine is the zero handle; an annotation on NoLine is deleted.
const NoLine Handle = 0

// Line is one newline-delimited record.
//
// Column 0 is the primary column; its length drives start index
// bookkeeping. Auxiliary columns are parallel representations of the same
// line.
type Line struct {
	handle  Handle
	start   int
	texts   [][]rune
	anchors []*Annotation

	// Metadata holds free-form key/value data attached by callers.
	Metadata map[string]string
}

func newLine(h Handle, start int, text []rune, columns int) *Line {
	l := &Line{
		handle: h,
		start:  start,
		texts:  make([][]rune, max(columns, 1)),
	}
	l.texts[0] = text
	return l
}

// Handle returns the arena handle of the line.
func (l *Line) Handle() Handle { return l.handle }

// Start returns the global index of the first character of the line.
func (l *Line) Start() int { return l.start }

// Len returns the length of the text in column col.
func (l *Line) Len(col int) int {
	if col < 0 || col >= len(l.texts) {
		return 0
	}
	return len(l.texts[col])
}

// End returns the global index just past the last primary character.
func (l *Line) End() int { return l.start + l.Len(0) }

// Text returns the text of column col.
func (l *Line) Text(col int) string {
	return string(l.Runes(col))
}

// Runes returns the text of column col. The slice must not be modified.
func (l *Line) Runes(col int) []rune {
	if col < 0 || col >= len(l.texts) {
		return nil
	}
	return l.texts[col]
}

// Columns returns the number of text columns carried by the line.
func (l *Line) Columns() int { return len(l.texts) }

// DisplayWidth returns the monospace cell width of column col.
func (l *Line) DisplayWidth(col int) int {
	return uniseg.StringWidth(l.Text(col))
}

// Annotations returns the annotations attached to the line in insertion
// order.
func (l *Line) Annotations() []*Annotation {
	out := make([]*Annotation, len(l.anchors))
	copy(out, l.anchors)
	return out
}

func (l *Line) setText(col int, text []rune) {
	for col >= len(l.texts) {
		l.texts = append(l.texts, nil)
	}
	l.texts[col] = text
}

func (l *Line) insertRunes(col, at int, r []rune) {
	t := l.Runes(col)
	out := make([]rune, 0, len(t)+len(r))
	out = append(out, t[:at]...)
	out = append(out, r...)
	out = append(out, t[at:]...)
	l.setText(col, out)
}

func (l *Line) removeRunes(col, at, n int) {
	t := l.Runes(col)
	out := make([]rune, 0, len(t)-n)
	out = append(out, t[:at]...)
	out = append(out, t[at+n:]...)
	l.setText(col, out)
}

func (l *Line) detachAnchor(a *Annotation) {
	for i, x := range l.anchors {
		if x == a {
			l.anchors = append(l.anchors[:i], l.anchors[i+1:]...)
			return
		}
	}
}
