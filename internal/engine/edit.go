package engine

import (
	"unicode/utf8"

	"github.com/dshills/annotext/internal/engine/history"
	"github.com/dshills/annotext/internal/event"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
)

// LineFilter rewrites the text of a line, for example to re-indent it.
type LineFilter func(line string) string

// Insert inserts text at a global index of column col and records the
// edit. It returns nil, without an error, when the index does not exist or
// text is empty: stale positions are expected and change nothing.
func (d *Document) Insert(index int, text string, col int) (Command, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDocumentClosed
	}
	return d.insert(index, text, col), nil
}

// Remove removes length characters of column col at a global index and
// records the edit. It returns nil, without an error, when the span does
// not exist. A negative length panics.
func (d *Document) Remove(index, length, col int) (Command, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDocumentClosed
	}
	return d.remove(index, length, col), nil
}

// Replace removes length characters at index and inserts text in their
// place. Both edits undo and redo as one step. It reports whether anything
// changed.
func (d *Document) Replace(index, length int, text string, col int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false, ErrDocumentClosed
	}

	var cmds []Command
	if length > 0 {
		rm := d.remove(index, length, col)
		if rm == nil {
			return false, nil
		}
		cmds = append(cmds, rm)
	}
	if ins := d.insert(index, text, col); ins != nil {
		cmds = append(cmds, ins)
	}
	history.Pair(cmds...)
	return len(cmds) > 0, nil
}

// InsertLineBreak inserts a newline at index and then passes the line that
// was just completed through filter. When the filter changes the line, the
// rewrite is recorded as a remove and an insert paired with the line break,
// so a single Undo reverts all of it.
func (d *Document) InsertLineBreak(index int, filter LineFilter) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false, ErrDocumentClosed
	}

	i := d.store.LineFromCharIndex(index, 0)
	br := d.insert(index, "\n", 0)
	if br == nil {
		return false, nil
	}
	if filter == nil {
		return true, nil
	}

	line := d.store.At(i)
	old := line.Text(0)
	updated := filter(old)
	if updated == old {
		return true, nil
	}

	cmds := []Command{br}
	start := line.Start()
	if n := line.Len(0); n > 0 {
		if rm := d.remove(start, n, 0); rm != nil {
			cmds = append(cmds, rm)
		}
	}
	if ins := d.insert(start, updated, 0); ins != nil {
		cmds = append(cmds, ins)
	}
	history.Pair(cmds...)
	return true, nil
}

// AppendLine adds text as one or more lines at the end of the document
// without recording history. The first append into a fresh document fills
// its initial empty line.
func (d *Document) AppendLine(text string, col int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDocumentClosed
	}
	if col < 0 || col >= d.store.Columns() {
		return ErrColumnOutOfRange
	}
	d.appendLines(text, col)
	return nil
}

// Clear empties the document and drops its history and annotations.
func (d *Document) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDocumentClosed
	}
	d.reset()
	publish(d, event.TopicReloaded, event.Reloaded{Lines: 1})
	return nil
}

func (d *Document) reset() {
	d.segments.Clear(true)
	d.store.Reset()
	if d.columns > 1 {
		d.store.InitializeColumn(d.columns - 1)
	}
	d.history.ClearAll()
	d.modified = false
}

// SetText replaces the whole text of the document with text. Only the
// spans that differ are edited, so annotations on unchanged text survive.
// The edits undo and redo as one step. It returns the number of edits.
func (d *Document) SetText(text string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrDocumentClosed
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(d.store.Text(0), text, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	scope := d.history.GroupScope()
	defer scope.End()

	pos, edits := 0, 0
	for _, df := range diffs {
		n := utf8.RuneCountInString(df.Text)
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffDelete:
			if d.remove(pos, n, 0) != nil {
				edits++
			}
		case diffmatchpatch.DiffInsert:
			if d.insert(pos, df.Text, 0) != nil {
				edits++
			}
			pos += n
		}
	}
	return edits, nil
}

// Undo reverses the most recent edit together with the edits paired to
// it. It returns the number of commands undone.
func (d *Document) Undo() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrDocumentClosed
	}
	return d.history.Undo(replayTarget{d: d})
}

// Redo re-applies the most recently undone edit together with the edits
// paired to it. It returns the number of commands redone.
func (d *Document) Redo() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrDocumentClosed
	}
	return d.history.Redo(replayTarget{d: d})
}

// CanUndo returns true if undo is available.
func (d *Document) CanUndo() bool {
	return d.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (d *Document) CanRedo() bool {
	return d.history.CanRedo()
}

func (d *Document) insert(index int, text string, col int) Command {
	if !d.store.Insert(index, text, col, d.hooks) {
		d.logger.Debug("insert refused",
			zap.Int("index", index),
			zap.Int("len", utf8.RuneCountInString(text)),
			zap.Int("col", col))
		return nil
	}
	cmd := history.NewInsertCommand(index, text, col)
	d.history.AddCommand(cmd)
	d.markModified()
	return cmd
}

func (d *Document) remove(index, length, col int) Command {
	removed, ok := d.store.Remove(index, length, col, d.hooks)
	if !ok {
		d.logger.Debug("remove refused",
			zap.Int("index", index),
			zap.Int("len", length),
			zap.Int("col", col))
		return nil
	}
	cmd := history.NewRemoveCommand(index, removed, col)
	d.history.AddCommand(cmd)
	d.markModified()
	return cmd
}

// replayTarget applies history replays under the lock the document already
// holds. The history manager stops accepting commands while it replays.
type replayTarget struct {
	d *Document
}

func (t replayTarget) InsertText(start int, text string, col int) bool {
	return t.d.insert(start, text, col) != nil
}

func (t replayTarget) RemoveText(start, length, col int) (string, bool) {
	cmd := t.d.remove(start, length, col)
	if cmd == nil {
		return "", false
	}
	return cmd.(*history.RemoveCommand).Text, true
}
