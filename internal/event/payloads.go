package event

// Document event topics.
const (
	// TopicLineAltered is published when the primary text of a line changed length.
	TopicLineAltered Topic = "document.line.altered"

	// TopicLineAdded is published when an edit split a line.
	TopicLineAdded Topic = "document.line.added"

	// TopicLineRemoved is published when an edit merged a line into its predecessor.
	TopicLineRemoved Topic = "document.line.removed"

	// TopicModified is published when the modified flag changes.
	TopicModified Topic = "document.modified"

	// TopicSelectionChanged is published when a view moves its selection.
	TopicSelectionChanged Topic = "document.selection.changed"

	// TopicReloaded is published after the whole text was replaced.
	TopicReloaded Topic = "document.reloaded"

	// TopicDisposed is published when the last view closed the document.
	TopicDisposed Topic = "document.disposed"

	// TopicViewOpened is published when a view attaches to a document.
	TopicViewOpened Topic = "document.view.opened"

	// TopicViewClosed is published when a view detaches from a document.
	TopicViewClosed Topic = "document.view.closed"

	// TopicDocumentAll matches every document topic.
	TopicDocumentAll Topic = "document.**"
)

// LineAltered is the payload of TopicLineAltered.
type LineAltered struct {
	// Line is the zero-based line index.
	Line int

	// Diff is the change in characters.
	Diff int

	// DisplayWidth is the new monospace cell width of the line.
	DisplayWidth int
}

// LineAdded is the payload of TopicLineAdded.
type LineAdded struct {
	// Line is the zero-based index of the new line.
	Line int

	// DisplayWidth is the monospace cell width of the new line.
	DisplayWidth int
}

// LineRemoved is the payload of TopicLineRemoved.
type LineRemoved struct {
	// Line is the zero-based index the line had before it was removed.
	Line int

	// Diff is the number of characters removed with the line, negative.
	Diff int
}

// Modified is the payload of TopicModified.
type Modified struct {
	Modified bool
}

// SelectionChanged is the payload of TopicSelectionChanged.
type SelectionChanged struct {
	View   string
	Start  int
	Length int
}

// Reloaded is the payload of TopicReloaded.
type Reloaded struct {
	Lines  int
	Length int
}

// ViewChanged is the payload of TopicViewOpened and TopicViewClosed.
type ViewChanged struct {
	View  string
	Views int
}

// Disposed is the payload of TopicDisposed.
type Disposed struct{}
