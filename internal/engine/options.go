package engine

import (
	"github.com/dshills/annotext/internal/engine/history"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/event"
	"go.uber.org/zap"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxDepth
	DefaultColumns        = 1
)

// Option configures a Document during creation.
type Option func(*Document)

// WithContent sets the initial content of the document. Loading content
// does not mark the document modified and is not recorded in history.
func WithContent(content string) Option {
	return func(d *Document) {
		d.initContent = content
	}
}

// WithStyles sets the style registry used for annotations.
func WithStyles(r *style.Registry) Option {
	return func(d *Document) {
		if r != nil {
			d.styles = r
		}
	}
}

// WithBus publishes change notifications on bus instead of a private one.
func WithBus(bus *event.Bus) Option {
	return func(d *Document) {
		if bus != nil {
			d.bus = bus
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
// Zero disables history.
func WithMaxUndoEntries(max int) Option {
	return func(d *Document) {
		if max >= 0 {
			d.maxUndoEntries = max
		}
	}
}

// WithColumns sets the number of text columns carried by every line.
func WithColumns(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.columns = n
		}
	}
}

// WithLogger sets the logger for the document and its components.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}
