package engine

import (
	"github.com/dshills/annotext/internal/engine/segment"
	"github.com/dshills/annotext/internal/engine/word"
)

// Text returns the primary text of the document.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Text(0)
}

// ColumnText returns the text of column col.
func (d *Document) ColumnText(col int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Text(col)
}

// TextGet returns length characters of column col starting at index.
func (d *Document) TextGet(index, length, col int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.TextGet(index, length, col)
}

// TextLength returns the length of the primary text, newlines included.
func (d *Document) TextLength() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.TextLength()
}

// LineCount returns the number of lines. A document always has at least one.
func (d *Document) LineCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Count()
}

// GetCharAt returns the character at a global index. The position after
// the last character of a line yields '\n' and an empty line yields 0.
func (d *Document) GetCharAt(index, col int) (rune, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.CharAt(index, col)
}

// GetLineText returns the text of a line.
func (d *Document) GetLineText(line, col int) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.LineText(line, col)
}

// GetLineFromCharIndex returns the line holding a global index. The index
// right after the last character of a line belongs to that line; indexes
// past the end belong to the last line; negative indexes return -1.
func (d *Document) GetLineFromCharIndex(index, col int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.LineFromCharIndex(index, col)
}

// GetFirstCharIndexFromLine returns the global index of the first
// character of a line, or -1.
func (d *Document) GetFirstCharIndexFromLine(line int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.FirstCharIndex(line)
}

// GetWord returns the word around a global index. Start and End of the
// returned segment are global indexes.
func (d *Document) GetWord(index int, strict bool) (word.Segment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.store.LineFromCharIndex(index, 0)
	if i == -1 {
		return word.Segment{}, false
	}
	l := d.store.At(i)
	seg, ok := word.Get(l.Runes(0), index-l.Start(), strict)
	if !ok {
		return word.Segment{}, false
	}
	seg.Start += l.Start()
	seg.End += l.Start()
	return seg, true
}

// AnnotationsAt returns the annotations covering a global index.
func (d *Document) AnnotationsAt(index int) []*Annotation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.segments.Get(index)
}

// ClosestAnnotation returns the nearest annotation starting at or before a
// global index.
func (d *Document) ClosestAnnotation(index int, filter Filter) (*Annotation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.segments.GetClosest(index, filter)
}

// Annotations returns the annotations accepted by filter in line order.
// A nil filter returns every annotation.
func (d *Document) Annotations(filter Filter) []*Annotation {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*Annotation
	for a := range d.segments.Select(filter) {
		out = append(out, a)
	}
	return out
}

// CountAnnotations returns the number of annotations accepted by filter.
func (d *Document) CountAnnotations(filter Filter) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.segments.Count(filter)
}

// AnnotationIndex returns the global index of an attached annotation.
func (d *Document) AnnotationIndex(a *Annotation) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.GlobalIndex(a)
}

// AddAnnotation attaches a detached annotation at a global index. The
// annotation must fit in the line holding the index.
func (d *Document) AddAnnotation(a *Annotation, index int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false, ErrDocumentClosed
	}
	return d.segments.AddManual(a, index), nil
}

// RemoveAnnotation detaches an annotation.
func (d *Document) RemoveAnnotation(a *Annotation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.segments.Remove(a)
}

// ClearAnnotations detaches every annotation, Pinned ones only when
// includingPinned is set.
func (d *Document) ClearAnnotations(includingPinned bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.segments.Clear(includingPinned)
}

// RefreshAnnotations recomputes every Automatic annotation.
func (d *Document) RefreshAnnotations() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.segments.Refresh()
}

// FindAndApply searches length characters of a line from a line-relative
// index and reports whether an annotation was added.
func (d *Document) FindAndApply(line, index, length int, finalizing bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.segments.FindAndApply(line, index, length, finalizing)
}

// FakeFinalizingKey re-validates the annotations at a global index as if a
// word had just been completed there.
func (d *Document) FakeFinalizingKey(index int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.segments.FakeFinalizingKey(index)
}

// ByKind and ByKey are re-exported annotation filters.
var (
	ByKind = segment.ByKind
	ByKey  = segment.ByKey
)

// Validate checks the line store invariants.
func (d *Document) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Validate()
}
