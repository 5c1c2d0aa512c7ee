package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/dshills/annotext/internal/engine/history"
	"github.com/dshills/annotext/internal/engine/lines"
	"github.com/dshills/annotext/internal/engine/segment"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Re-export commonly used types for convenience.
type (
	// Command is an undoable edit command.
	Command = history.Command

	// Annotation is a styled segment anchored to a line.
	Annotation = lines.Annotation

	// Filter selects annotations.
	Filter = segment.Filter
)

// ViewID identifies a view registered against a document.
type ViewID string

// Selection is a view's caret position and selected length.
type Selection struct {
	Start  int
	Length int
}

type view struct {
	sel Selection
}

// Document is the text storage aggregate: a line store, the annotations
// on it, and the undo history of its edits.
//
// Every exported method takes the document mutex. Change notifications are
// published synchronously while the mutex is held, so handlers must not
// call back into the document.
type Document struct {
	mu sync.Mutex

	id       string
	store    *lines.Store
	segments *segment.Manager
	history  *history.Manager
	styles   *style.Registry
	bus      *event.Bus
	hooks    hooks

	views    map[ViewID]*view
	modified bool
	closed   bool

	// Configuration
	maxUndoEntries int
	columns        int
	initContent    string

	logger *zap.Logger
}

// New creates a document with the given options.
func New(opts ...Option) *Document {
	d := &Document{
		id:             uuid.NewString(),
		maxUndoEntries: DefaultMaxUndoEntries,
		columns:        DefaultColumns,
		views:          make(map[ViewID]*view),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.styles == nil {
		d.styles = style.NewRegistry()
	}
	if d.bus == nil {
		d.bus = event.NewBus(event.WithLogger(d.logger))
	}

	d.store = lines.New()
	if d.columns > 1 {
		d.store.InitializeColumn(d.columns - 1)
	}
	d.segments = segment.New(d.store, d.styles, segment.WithLogger(d.logger))
	d.history = history.NewManager(d.maxUndoEntries, history.WithLogger(d.logger))
	d.hooks = hooks{d: d}

	if d.initContent != "" {
		d.appendLines(d.initContent, 0)
		d.initContent = ""
	}
	return d
}

// ID returns the unique document identifier used as event source.
func (d *Document) ID() string {
	return d.id
}

// Events returns the bus carrying the document's change notifications.
func (d *Document) Events() *event.Bus {
	return d.bus
}

// Styles returns the style registry.
func (d *Document) Styles() *style.Registry {
	return d.styles
}

// History returns the undo/redo manager. Undo and Redo must go through the
// document so that replayed edits are serialized with other edits.
func (d *Document) History() *history.Manager {
	return d.history
}

// OpenView registers a view and returns its identifier.
func (d *Document) OpenView() (ViewID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return "", ErrDocumentClosed
	}
	id := ViewID(uuid.NewString())
	d.views[id] = &view{}
	publish(d, event.TopicViewOpened, event.ViewChanged{View: string(id), Views: len(d.views)})
	return id, nil
}

// CloseView unregisters a view. Closing the last view disposes the
// document: its text, annotations and history are dropped and later
// mutations return ErrDocumentClosed.
func (d *Document) CloseView(id ViewID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDocumentClosed
	}
	if _, ok := d.views[id]; !ok {
		return ErrViewNotFound
	}
	delete(d.views, id)
	publish(d, event.TopicViewClosed, event.ViewChanged{View: string(id), Views: len(d.views)})

	if len(d.views) == 0 {
		d.dispose()
	}
	return nil
}

// Views returns the number of open views.
func (d *Document) Views() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.views)
}

// IsClosed reports whether the document was disposed.
func (d *Document) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Document) dispose() {
	d.logger.Debug("disposing document", zap.String("id", d.id))
	d.closed = true
	d.segments.Clear(true)
	d.store.Reset()
	d.history.ClearAll()
	publish(d, event.TopicDisposed, event.Disposed{})
	d.bus.Clear()
}

// Selection returns the selection of a view.
func (d *Document) Selection(id ViewID) (Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.views[id]
	if !ok {
		return Selection{}, ErrViewNotFound
	}
	return v.sel, nil
}

// SetSelection moves the selection of a view. Unless suppressAutoSearch is
// set, leaving the previous caret position counts as a finalizing change
// there, so expensive styles such as spell-check catch up with the word the
// caret just left. Programmatic caret moves pass true.
func (d *Document) SetSelection(id ViewID, start, length int, suppressAutoSearch bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDocumentClosed
	}
	v, ok := d.views[id]
	if !ok {
		return ErrViewNotFound
	}
	if start < 0 || length < 0 || start+length > d.store.TextLength() {
		return ErrOffsetOutOfRange
	}

	prev := v.sel
	v.sel = Selection{Start: start, Length: length}
	if !suppressAutoSearch && prev.Start != start {
		d.segments.FakeFinalizingKey(prev.Start)
	}
	publish(d, event.TopicSelectionChanged, event.SelectionChanged{View: string(id), Start: start, Length: length})
	return nil
}

// IsModified reports whether the text changed since the flag was last
// reset.
func (d *Document) IsModified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modified
}

// SetModified sets the modified flag, typically to false after saving.
// A Modified notification is always published.
func (d *Document) SetModified(modified bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modified = modified
	publish(d, event.TopicModified, event.Modified{Modified: modified})
}

func (d *Document) markModified() {
	if d.modified {
		return
	}
	d.modified = true
	publish(d, event.TopicModified, event.Modified{Modified: true})
}

// appendLines adds text as new lines without recording history.
func (d *Document) appendLines(text string, col int) {
	for _, part := range strings.Split(text, "\n") {
		l := d.store.Append(part, col)
		if col == 0 {
			d.segments.SearchAndApplyTo(l, 0, l.Len(0), true)
		}
		publish(d, event.TopicLineAdded, event.LineAdded{
			Line:         d.store.IndexOf(l.Handle()),
			DisplayWidth: l.DisplayWidth(0),
		})
	}
}

func publish[T any](d *Document, t event.Topic, payload T) {
	// Handler failures are logged by the bus and never affect the edit.
	_ = d.bus.Publish(context.Background(), event.NewEvent(t, payload, d.id))
}

// hooks forwards line store progress to the segment manager and turns it
// into change notifications.
type hooks struct {
	d *Document
}

func (h hooks) Altered(l *lines.Line, diff int) {
	publish(h.d, event.TopicLineAltered, event.LineAltered{
		Line:         h.d.store.IndexOf(l.Handle()),
		Diff:         diff,
		DisplayWidth: l.DisplayWidth(0),
	})
}

func (h hooks) Added(l *lines.Line) {
	// The split carried text over; its first token was never searched.
	h.d.segments.SearchAndApplyTo(l, 0, 1, true)
	publish(h.d, event.TopicLineAdded, event.LineAdded{
		Line:         h.d.store.IndexOf(l.Handle()),
		DisplayWidth: l.DisplayWidth(0),
	})
}

func (h hooks) Removed(l *lines.Line, diff int) {
	publish(h.d, event.TopicLineRemoved, event.LineRemoved{
		Line: h.d.store.IndexOf(l.Handle()),
		Diff: diff,
	})
}

func (h hooks) CharInserted(l *lines.Line, rel int, c rune) {
	h.d.segments.Inserted(l, rel, c)
}

func (h hooks) CharsRemoved(l *lines.Line, rel, _ int) {
	h.d.segments.Erased(l, rel)
}
