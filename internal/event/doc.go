// Package event provides the synchronous, typed event bus that documents use
// to notify renderers and other observers about structural changes.
//
// # Topics
//
// Events are identified by hierarchical dot-separated topics:
//
//	document.line.altered
//	document.line.added
//	document.modified
//
// Subscriptions may use wildcards: "*" matches one segment and "**" matches
// any number of segments ("document.**" receives every document event).
//
// # Delivery
//
// Publish runs every matching handler on the caller's goroutine before it
// returns. Handlers must treat events as read-only notifications and must
// not edit the publishing document. A panicking handler is recovered,
// logged and reported as a PanicError; other handlers still run.
//
// # Typed subscriptions
//
//	sub, err := event.Subscribe(bus, event.TopicLineAltered,
//	    func(e event.Event[event.LineAltered]) {
//	        recomputeWrap(e.Payload.Line)
//	    })
package event
