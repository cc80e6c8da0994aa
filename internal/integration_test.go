// Package internal contains integration tests that drive the session, its
// widgets and the data watcher together on a real filesystem.
package internal

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/hicognition/hicolink/internal/config"
	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/registry"
	"github.com/hicognition/hicolink/internal/session"
	"github.com/hicognition/hicolink/internal/testutil"
)

func newSession(t *testing.T, dir string, opts ...session.Option) *session.Session {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = dir

	s, err := session.New(cfg, opts...)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	t.Cleanup(s.Close)

	if _, err := s.CreateCollection("c1", nil); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	return s
}

func addDatasets(t *testing.T, s *session.Session, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := s.AddWidget(registry.Widget{CollectionID: "c1", ID: id, Type: "pileup", Dataset: id}); err != nil {
			t.Fatalf("AddWidget(%s) error = %v", id, err)
		}
	}
}

// TestSharingSignalsIntegration records every bus event of one share and
// checks the protocol signals appear in causal order.
func TestSharingSignalsIntegration(t *testing.T) {
	dir := testutil.SetupDataDir(t, map[string]string{
		"a.json": testutil.CenterPileup(9, 8, 7),
		"b.json": testutil.CenterPileup(1, 3, 2),
	})
	s := newSession(t, dir)
	addDatasets(t, s, "a", "b")

	var mu sync.Mutex
	var seen []string
	s.Bus().SubscribeAll(func(e event.Event) {
		mu.Lock()
		seen = append(seen, e.EventType())
		mu.Unlock()
	})

	if err := s.StartShare(event.ChannelSortOrder, "c1", "a"); err != nil {
		t.Fatalf("StartShare() error = %v", err)
	}
	if err := s.Click("c1", "b"); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if err := s.StopShare(event.ChannelSortOrder, "c1", "a"); err != nil {
		t.Fatalf("StopShare() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	order := []string{
		event.ChannelSortOrder.Type(event.ActionSelectionStart),
		event.ChannelSortOrder.Type(event.ActionSelectionEnd),
		event.ChannelSortOrder.Type(event.ActionStopSharing),
	}
	last := -1
	for _, typ := range order {
		i := slices.Index(seen, typ)
		if i < 0 {
			t.Fatalf("event %q never published; saw %v", typ, seen)
		}
		if i < last {
			t.Errorf("event %q out of order; saw %v", typ, seen)
		}
		last = i
	}
	if !slices.Contains(seen, event.TypeDocumentClick) {
		t.Errorf("click should reach document listeners; saw %v", seen)
	}
}

// TestWatcherRefreshesRecipients rewrites a donor's file on disk and waits
// for the new order to reach its recipient.
func TestWatcherRefreshesRecipients(t *testing.T) {
	dir := testutil.SetupDataDir(t, map[string]string{
		"a.json": testutil.CenterPileup(9, 8, 7),
		"b.json": testutil.CenterPileup(1, 3, 2),
	})
	changed := make(chan struct{}, 1)
	s := newSession(t, dir, session.WithChangeHook(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))
	addDatasets(t, s, "a", "b")

	if err := s.StartShare(event.ChannelSortOrder, "c1", "a"); err != nil {
		t.Fatalf("StartShare() error = %v", err)
	}
	if err := s.Click("c1", "b"); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if err := s.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// b's keys descending now put a's last row first.
	testutil.WriteFile(t, dir, "b.json", testutil.CenterPileup(1, 2, 3))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the watcher")
	}

	for _, v := range s.Views() {
		if v.Record.ID != "a" {
			continue
		}
		if got := v.Sorted.At(0, 1); got != 7 {
			t.Errorf("a's first row center = %v, want 7", got)
		}
	}
}

// TestConcurrentSessionUse hammers one session from several goroutines and
// checks that clearing it leaves no color or subscription behind.
func TestConcurrentSessionUse(t *testing.T) {
	dir := testutil.SetupDataDir(t, map[string]string{
		"a.json": testutil.CenterPileup(9, 8, 7),
		"b.json": testutil.CenterPileup(1, 3, 2),
		"c.json": testutil.CenterPileup(5, 6, 4),
	})
	s := newSession(t, dir)
	addDatasets(t, s, "a", "b", "c")

	pairs := [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}
	var wg sync.WaitGroup
	for i, p := range pairs {
		ch := event.ChannelSortOrder
		if i%2 == 1 {
			ch = event.ChannelValueScale
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.StartShare(ch, "c1", p[0])
				_ = s.Click("c1", p[1])
				_ = s.Views()
				_ = s.StopShare(ch, "c1", p[0])
			}
		}()
	}
	wg.Wait()

	s.ClearAll()
	if s.Pools().SortOrder.UsedCount() != 0 || s.Pools().ValueScale.UsedCount() != 0 {
		t.Error("colors left allocated after clear")
	}
	if n := s.Bus().SubscriptionCount(); n != 0 {
		t.Errorf("SubscriptionCount() = %d after clear", n)
	}
}
