package event

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/hicognition/hicolink/internal/logging"
)

// Handler is a function that handles an event.
type Handler func(Event)

// subscription represents a registered event handler.
type subscription struct {
	id        string
	eventType string
	handler   Handler
	once      bool
	active    atomic.Bool
}

// Subscription is a disposable handle to a registered handler.
type Subscription struct {
	id  string
	bus *Bus
}

// ID returns the subscription ID, or "" for the zero Subscription.
func (s Subscription) ID() string { return s.id }

// Unsubscribe removes the handler. It is safe to call more than once and on
// the zero Subscription.
func (s Subscription) Unsubscribe() bool {
	if s.bus == nil {
		return false
	}
	return s.bus.Unsubscribe(s.id)
}

// Bus is a synchronous pub-sub event bus.
// It allows widget controllers to communicate without knowing each other.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]*subscription // eventType -> subscriptions
	nextID        atomic.Uint64
	logger        *logging.Logger
}

// NewBus creates a new event bus that logs handler panics to logger.
// A nil logger discards them.
func NewBus(logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Bus{
		subscriptions: make(map[string][]*subscription),
		logger:        logger,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(eventType string, handler Handler) Subscription {
	return b.add(eventType, handler, false)
}

// SubscribeOnce registers a handler that is removed before its first call.
// Unsubscribing it before it fires disarms it.
func (b *Bus) SubscribeOnce(eventType string, handler Handler) Subscription {
	return b.add(eventType, handler, true)
}

// SubscribeAll registers a handler for all event types.
func (b *Bus) SubscribeAll(handler Handler) Subscription {
	return b.Subscribe("*", handler)
}

func (b *Bus) add(eventType string, handler Handler, once bool) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{
		id:        fmt.Sprintf("sub-%d", b.nextID.Add(1)),
		eventType: eventType,
		handler:   handler,
		once:      once,
	}
	sub.active.Store(true)

	b.subscriptions[eventType] = append(b.subscriptions[eventType], sub)
	return Subscription{id: sub.id, bus: b}
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				sub.active.Store(false)
				// Copy so that snapshots taken by in-flight Publish calls stay intact
				remaining := make([]*subscription, 0, len(subs)-1)
				remaining = append(remaining, subs[:i]...)
				remaining = append(remaining, subs[i+1:]...)
				b.subscriptions[eventType] = remaining
				return true
			}
		}
	}
	return false
}

// Publish dispatches an event to all registered handlers.
// Specific handlers are called first, followed by wildcard handlers; within
// each group handlers run in registration order. Dispatch works on a snapshot:
// handlers added during a publish are not called for that event, and handlers
// removed during a publish are skipped if they have not run yet.
// If a handler panics, the panic is logged, recovered, and publishing
// continues to remaining handlers.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	eventType := event.EventType()

	specificSubs := make([]*subscription, len(b.subscriptions[eventType]))
	copy(specificSubs, b.subscriptions[eventType])

	wildcardSubs := make([]*subscription, len(b.subscriptions["*"]))
	copy(wildcardSubs, b.subscriptions["*"])

	b.mu.RUnlock()

	for _, sub := range specificSubs {
		b.dispatch(sub, event)
	}
	for _, sub := range wildcardSubs {
		b.dispatch(sub, event)
	}
}

func (b *Bus) dispatch(sub *subscription, event Event) {
	if sub.once {
		// CompareAndSwap guarantees a one-shot handler fires at most once
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		b.Unsubscribe(sub.id)
	} else if !sub.active.Load() {
		return
	}
	b.safeCall(sub.handler, event)
}

// safeCall invokes a handler and recovers from any panics.
func (b *Bus) safeCall(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", event.EventType(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	handler(event)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subs := range b.subscriptions {
		for _, sub := range subs {
			sub.active.Store(false)
		}
	}
	b.subscriptions = make(map[string][]*subscription)
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}

// Group collects subscriptions so they can be released together, typically
// when a widget unmounts. The zero Group is not usable; use NewGroup.
type Group struct {
	bus  *Bus
	mu   sync.Mutex
	subs []Subscription
}

// NewGroup returns an empty subscription group on bus.
func NewGroup(bus *Bus) *Group {
	return &Group{bus: bus}
}

// Subscribe registers handler on the group's bus and tracks it.
func (g *Group) Subscribe(eventType string, handler Handler) Subscription {
	return g.Add(g.bus.Subscribe(eventType, handler))
}

// SubscribeOnce registers a one-shot handler and tracks it.
func (g *Group) SubscribeOnce(eventType string, handler Handler) Subscription {
	return g.Add(g.bus.SubscribeOnce(eventType, handler))
}

// Add tracks an existing subscription and returns it.
func (g *Group) Add(sub Subscription) Subscription {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subs = append(g.subs, sub)
	return sub
}

// Len returns the number of tracked subscriptions, including ones that
// were already removed individually.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

// Close unsubscribes every tracked subscription.
func (g *Group) Close() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
