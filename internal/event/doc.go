// Package event provides the synchronous pub-sub bus that widget controllers
// use to coordinate sort-order and value-scale sharing.
//
// Widgets never call each other directly. A widget publishes a typed event
// and every interested controller reacts in its own handler. Each signal has
// its own payload type, so subscribers decode with a type assertion at the
// boundary instead of inspecting loosely shaped payloads.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher
//   - [Subscription]: Disposable handle returned by Subscribe
//   - [Group]: Arena of subscriptions released together when a widget unmounts
//
// # Signals
//
// Channel-scoped signals exist once per [Channel] (sortorder, valuescale):
//   - [SelectionStartEvent]: a widget starts choosing its donor
//   - [SelectionEndEvent]: a target accepted, or the selection was cancelled
//   - [UpdateSharingEvent]: a donor's shared value changed
//   - [StopSharingEvent]: a recipient dropped its donor
//
// Widget and session signals:
//   - [WidgetIDChangeEvent], [SourceDeletionEvent], [DeleteWidgetEvent], [SerializeEvent]
//   - [ClickEvent]: pointer clicks, published by [PublishClick] as ui.click
//     followed by ui.document-click
//
// # Dispatch Semantics
//
// Publish runs handlers synchronously in registration order on a snapshot of
// the subscriber list, so handlers may subscribe and unsubscribe while an
// event is being delivered. A handler removed mid-dispatch is not called
// afterwards. [Bus.SubscribeOnce] handlers remove themselves before they run,
// which is how an armed "next click anywhere" listener is guaranteed not to
// outlive the selection it belongs to. A panicking handler is logged and does
// not stop delivery to the others.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	group := event.NewGroup(bus)
//	defer group.Close()
//
//	group.Subscribe(event.ChannelSortOrder.Type(event.ActionStopSharing), func(e event.Event) {
//	    stop := e.(event.StopSharingEvent)
//	    log.Printf("recipient left donor %s", stop.TargetID)
//	})
//
//	bus.Publish(event.NewStopSharingEvent(event.ChannelSortOrder, "collection-1", "widget-2"))
package event
