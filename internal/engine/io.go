package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/annotext/internal/event"
	"golang.org/x/text/unicode/norm"
)

// NewFromReader creates a document holding the text read from r.
func NewFromReader(r io.Reader, opts ...Option) (*Document, error) {
	d := New(opts...)
	if err := d.Load(r); err != nil {
		return nil, err
	}
	return d, nil
}

// Load replaces the document content with the text read from r. Line
// endings are normalized to '\n'. History, annotations and the modified
// flag are reset; Automatic annotations are searched again.
func (d *Document) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDocumentClosed
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	d.reset()
	d.appendLines(text, 0)
	publish(d, event.TopicReloaded, event.Reloaded{
		Lines:  d.store.Count(),
		Length: d.store.TextLength(),
	})
	return nil
}

// WriteTo writes the primary text to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	d.mu.Lock()
	text := d.store.Text(0)
	d.mu.Unlock()

	n, err := io.WriteString(w, text)
	return int64(n), err
}

// NormalizeColumn fills auxiliary column col with the primary text of every
// line in Unicode normalization form f. The column is a derived view and
// is not recorded in history.
func (d *Document) NormalizeColumn(col int, f norm.Form) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDocumentClosed
	}
	if col <= 0 {
		return fmt.Errorf("normalize column %d: %w", col, ErrColumnOutOfRange)
	}

	d.store.InitializeColumn(col)
	for i := range d.store.Count() {
		d.store.SetColumnText(i, col, f.String(d.store.At(i).Text(0)))
	}
	if col >= d.columns {
		d.columns = col + 1
	}
	return nil
}
