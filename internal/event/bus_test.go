package event

import (
	"math"
	"sync"
	"testing"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	sub := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if sub.ID() == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(ChannelSortOrder.Type(ActionStopSharing), func(e Event) {
		received = e
	})

	bus.Publish(NewStopSharingEvent(ChannelSortOrder, "c1", "w2"))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	stop, ok := received.(StopSharingEvent)
	if !ok {
		t.Fatalf("received %T, want StopSharingEvent", received)
	}
	if stop.TargetID != "w2" {
		t.Errorf("TargetID = %q, want %q", stop.TargetID, "w2")
	}
	if stop.EventType() != "sortorder.stop-sharing" {
		t.Errorf("EventType() = %q, want %q", stop.EventType(), "sortorder.stop-sharing")
	}
}

func TestBus_PublishRegistrationOrder(t *testing.T) {
	bus := NewBus(nil)

	var order []int
	for i := range 5 {
		bus.Subscribe("test.event", func(e Event) {
			order = append(order, i)
		})
	}

	bus.Publish(newBaseEvent("test.event"))

	for i, got := range order {
		if got != i {
			t.Fatalf("handler order = %v, want registration order", order)
		}
	}
}

func TestBus_ChannelsAreIndependent(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	bus.Subscribe(ChannelValueScale.Type(ActionSelectionStart), func(e Event) {
		calls++
	})

	bus.Publish(NewSelectionStartEvent(ChannelSortOrder, "w1", "c1", ""))
	if calls != 0 {
		t.Error("value-scale handler should not see sort-order selections")
	}

	bus.Publish(NewSelectionStartEvent(ChannelValueScale, "w1", "c1", "pileup"))
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	sub := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if !sub.Unsubscribe() {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if sub.Unsubscribe() {
		t.Error("second Unsubscribe should return false")
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after unsubscribe, got %d", bus.SubscriptionCount())
	}

	bus.Publish(newBaseEvent("test.event"))
	if called {
		t.Error("Handler should not be called after unsubscribing")
	}

	var zero Subscription
	if zero.Unsubscribe() {
		t.Error("zero Subscription should be a no-op")
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)

	var second Subscription
	secondCalled := false
	bus.Subscribe("test.event", func(e Event) {
		second.Unsubscribe()
	})
	second = bus.Subscribe("test.event", func(e Event) {
		secondCalled = true
	})

	bus.Publish(newBaseEvent("test.event"))

	if secondCalled {
		t.Error("handler removed earlier in the same dispatch should be skipped")
	}
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)

	lateCalls := 0
	bus.Subscribe("test.event", func(e Event) {
		bus.Subscribe("test.event", func(e Event) {
			lateCalls++
		})
	})

	bus.Publish(newBaseEvent("test.event"))
	if lateCalls != 0 {
		t.Error("handler added during dispatch should not see the current event")
	}

	bus.Publish(newBaseEvent("test.event"))
	if lateCalls != 1 {
		t.Errorf("late handler calls = %d, want 1", lateCalls)
	}
}

func TestBus_SubscribeOnce(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	bus.SubscribeOnce("test.event", func(e Event) {
		calls++
		// Re-entrant publish must not fire the one-shot handler again
		bus.Publish(newBaseEvent("test.event"))
	})

	bus.Publish(newBaseEvent("test.event"))
	bus.Publish(newBaseEvent("test.event"))

	if calls != 1 {
		t.Errorf("one-shot handler calls = %d, want 1", calls)
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("one-shot handler should remove itself, %d subscriptions left", bus.SubscriptionCount())
	}
}

func TestBus_SubscribeOnceDisarm(t *testing.T) {
	bus := NewBus(nil)

	called := false
	sub := bus.SubscribeOnce("test.event", func(e Event) {
		called = true
	})
	sub.Unsubscribe()

	bus.Publish(newBaseEvent("test.event"))
	if called {
		t.Error("disarmed one-shot handler should not fire")
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe("event.one", func(e Event) {})
	bus.Subscribe("event.two", func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 3 {
		t.Errorf("Expected 3 subscriptions before clear, got %d", bus.SubscriptionCount())
	}

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after clear, got %d", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	bus.Subscribe("test.event", func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe("test.event", func(e Event) {
		calls++
	})

	bus.Publish(newBaseEvent("test.event"))

	if calls != 2 {
		t.Errorf("Expected both handlers to be called despite panic, got %d calls", calls)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	calls := 0
	bus.Subscribe("test.event", func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(newBaseEvent("test.event"))
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("Expected 100 calls, got %d", calls)
	}
}

func TestBus_MixedSubscriptions(t *testing.T) {
	bus := NewBus(nil)

	var events []string
	bus.Subscribe("specific.event", func(e Event) {
		events = append(events, "specific:"+e.EventType())
	})
	bus.SubscribeAll(func(e Event) {
		events = append(events, "wildcard:"+e.EventType())
	})

	bus.Publish(newBaseEvent("specific.event"))

	want := []string{"specific:specific.event", "wildcard:specific.event"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus(nil)

	ids := make(map[string]bool)
	for range 100 {
		id := bus.Subscribe("test.event", func(e Event) {}).ID()
		if ids[id] {
			t.Errorf("Duplicate subscription ID: %s", id)
		}
		ids[id] = true
	}
}

func TestGroup_Close(t *testing.T) {
	bus := NewBus(nil)
	group := NewGroup(bus)

	calls := 0
	group.Subscribe("a", func(e Event) { calls++ })
	group.Subscribe("b", func(e Event) { calls++ })
	group.SubscribeOnce("c", func(e Event) { calls++ })
	bus.Subscribe("a", func(e Event) {})

	if group.Len() != 3 {
		t.Errorf("group.Len() = %d, want 3", group.Len())
	}

	group.Close()

	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1 (only the ungrouped handler)", bus.SubscriptionCount())
	}
	bus.Publish(newBaseEvent("a"))
	bus.Publish(newBaseEvent("c"))
	if calls != 0 {
		t.Errorf("closed group handlers were called %d times", calls)
	}

	// Closing twice is harmless
	group.Close()
}

func TestPublishClick_Order(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.Subscribe(TypeDocumentClick, func(e Event) {
		order = append(order, "document")
	})
	bus.Subscribe(TypeClick, func(e Event) {
		click := e.(ClickEvent)
		order = append(order, "widget:"+click.WidgetID)
	})

	PublishClick(bus, "c1", "w1")

	if len(order) != 2 || order[0] != "widget:w1" || order[1] != "document" {
		t.Errorf("click order = %v, want [widget:w1 document]", order)
	}
}

func TestSortOrder_Equal(t *testing.T) {
	order := SortOrder{Values: []float64{1, nan()}, Ascending: true}
	if !order.Equal(order.Clone()) {
		t.Error("orders with missing keys in the same place should be equal")
	}
	if order.Equal(SortOrder{Values: []float64{1, nan()}, Ascending: false}) {
		t.Error("direction must take part in equality")
	}
	if (SortOrder{Values: []float64{1, 2}}).Equal(SortOrder{Values: []float64{1, 3}}) {
		t.Error("different keys should not be equal")
	}
}

func TestSelectionEndEvent_Cancelled(t *testing.T) {
	cancel := NewSelectionCancelEvent(ChannelSortOrder, "c1", "w1")
	if !cancel.Cancelled() {
		t.Error("cancel event should report Cancelled()")
	}
	accept := NewSelectionEndEvent(ChannelSortOrder, "c1", "w1", "w2", SortOrder{}, "#aa8f66")
	if accept.Cancelled() {
		t.Error("accepting event should not report Cancelled()")
	}
}

func nan() float64 { return math.NaN() }
