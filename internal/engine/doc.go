// Package engine provides the text document: line-oriented text storage
// with annotations that follow edits and an undo/redo history.
//
// The document is a facade over several sub-packages:
//
//   - lines: the line store, global index bookkeeping and the edit algorithm
//   - segment: the styled segment manager that keeps annotations current
//   - history: the undo/redo manager with paired commands
//   - style: annotation styles (spell-check, highlight, notes, ...)
//   - word: word extraction used by styles and double-click selection
//
// # Thread Safety
//
// Every Document method takes the document mutex, so views on different
// goroutines can share one document. Change notifications are delivered
// synchronously on the editing goroutine while the mutex is held; handlers
// must not call back into the document.
//
// # Basic Usage
//
//	d := engine.New(engine.WithContent("Hello"))
//
//	d.Insert(5, ", World!", 0) // "Hello, World!"
//	d.Replace(7, 5, "Go", 0)   // "Hello, Go!"
//	d.Undo()                   // "Hello, World!"
//
// Edits at positions that no longer exist return a nil command and change
// nothing. Stale positions are normal when several views edit one document.
//
// # Annotations
//
// Styles registered with WithStyles annotate the text as it changes:
//
//	styles := style.NewRegistry(style.NewURL(), style.NewNote())
//	d := engine.New(engine.WithStyles(styles), engine.WithContent("see https://go.dev"))
//
//	for _, a := range d.Annotations(engine.ByKey(style.KeyURL)) {
//	    start, _ := d.AnnotationIndex(a)
//	    fmt.Println(start, a.Len(), a.Payload())
//	}
//
// # Notifications
//
// Subscribe to the bus returned by Events to follow line changes:
//
//	event.Subscribe(d.Events(), event.TopicLineAltered,
//	    func(e event.Event[event.LineAltered]) {
//	        rewrap(e.Payload.Line, e.Payload.DisplayWidth)
//	    })
//
// # Views
//
// OpenView registers a view; closing the last view disposes the document,
// after which mutations return ErrDocumentClosed.
package engine
