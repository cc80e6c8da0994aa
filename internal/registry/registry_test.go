package registry

import (
	"testing"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/event"
)

func newTestRegistry(t *testing.T) (*Registry, *event.Bus, string) {
	t.Helper()
	bus := event.NewBus(nil)
	r := New(bus)
	cid, err := r.CreateCollection("c1", map[string]string{"region": "chr1"})
	if err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	return r, bus, cid
}

func TestCreateCollection(t *testing.T) {
	r := New(nil)

	id, err := r.CreateCollection("", nil)
	if err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if len(id) != 26 {
		t.Errorf("generated id %q should be a 26 character ULID", id)
	}

	_, err = r.CreateCollection(id, nil)
	var exists *errors.AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Errorf("duplicate CreateCollection() error = %v, want AlreadyExistsError", err)
	}

	if got := len(r.Collections()); got != 1 {
		t.Errorf("Collections() len = %d, want 1", got)
	}
}

func TestCollectionConfigIsCopied(t *testing.T) {
	cfg := map[string]string{"region": "chr1"}
	r := New(nil)
	id, _ := r.CreateCollection("c1", cfg)
	cfg["region"] = "chr2"

	c, err := r.Collection(id)
	if err != nil {
		t.Fatalf("Collection() error = %v", err)
	}
	if c.Config["region"] != "chr1" {
		t.Errorf("Config[region] = %q, want chr1", c.Config["region"])
	}
}

func TestAddWidget(t *testing.T) {
	r, _, cid := newTestRegistry(t)

	w, err := r.AddWidget(Widget{CollectionID: cid, Type: "pileup", Dataset: "ctcf"})
	if err != nil {
		t.Fatalf("AddWidget() error = %v", err)
	}
	if w.ID == "" {
		t.Fatal("AddWidget() should generate an id")
	}

	got, err := r.Widget(cid, w.ID)
	if err != nil {
		t.Fatalf("Widget() error = %v", err)
	}
	if got != w {
		t.Errorf("Widget() = %+v, want %+v", got, w)
	}

	if _, err := r.AddWidget(Widget{CollectionID: cid, ID: w.ID}); !errors.Is(err, errors.ErrWidgetExists) {
		t.Errorf("duplicate AddWidget() error = %v, want ErrWidgetExists", err)
	}
	if _, err := r.AddWidget(Widget{CollectionID: "missing"}); !errors.Is(err, errors.ErrCollectionNotFound) {
		t.Errorf("AddWidget() into unknown collection error = %v, want ErrCollectionNotFound", err)
	}
}

func TestWidgetNotFound(t *testing.T) {
	r, _, cid := newTestRegistry(t)

	if _, err := r.Widget(cid, "nope"); !errors.Is(err, errors.ErrWidgetNotFound) {
		t.Errorf("Widget() error = %v, want ErrWidgetNotFound", err)
	}
	if _, err := r.Widget("nope", "w1"); !errors.Is(err, errors.ErrCollectionNotFound) {
		t.Errorf("Widget() error = %v, want ErrCollectionNotFound", err)
	}
	if r.WidgetExists(cid, "nope") {
		t.Error("WidgetExists() = true for unknown widget")
	}
}

func TestWidgetsKeepInsertionOrder(t *testing.T) {
	r, _, cid := newTestRegistry(t)
	for _, id := range []string{"w3", "w1", "w2"} {
		if _, err := r.AddWidget(Widget{CollectionID: cid, ID: id}); err != nil {
			t.Fatalf("AddWidget(%s) error = %v", id, err)
		}
	}

	ws, err := r.Widgets(cid)
	if err != nil {
		t.Fatalf("Widgets() error = %v", err)
	}
	var ids []string
	for _, w := range ws {
		ids = append(ids, w.ID)
	}
	want := []string{"w3", "w1", "w2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Widgets() ids = %v, want %v", ids, want)
		}
	}
}

func TestUpdateWidget(t *testing.T) {
	r, _, cid := newTestRegistry(t)
	r.AddWidget(Widget{CollectionID: cid, ID: "w1", Dataset: "a"})

	got, err := r.UpdateWidget(cid, "w1", func(w *Widget) {
		w.SortOrder.SelectedOrder = "region"
		w.SortOrder.Ascending = true
		w.ID = "hijack"
		w.CollectionID = "other"
	})
	if err != nil {
		t.Fatalf("UpdateWidget() error = %v", err)
	}
	if got.ID != "w1" || got.CollectionID != cid {
		t.Errorf("UpdateWidget() re-keyed the widget to %s/%s", got.CollectionID, got.ID)
	}
	if got.SortOrder.SelectedOrder != "region" || !got.SortOrder.Ascending {
		t.Errorf("UpdateWidget() returned %+v", got.SortOrder)
	}

	stored, _ := r.Widget(cid, "w1")
	if stored != got {
		t.Errorf("stored = %+v, want %+v", stored, got)
	}

	if _, err := r.UpdateWidget(cid, "nope", func(*Widget) {}); !errors.Is(err, errors.ErrWidgetNotFound) {
		t.Errorf("UpdateWidget() error = %v, want ErrWidgetNotFound", err)
	}
}

func TestCopiesAreDetached(t *testing.T) {
	r, _, cid := newTestRegistry(t)
	w, _ := r.AddWidget(Widget{CollectionID: cid, ID: "w1"})
	w.Type = "changed"

	stored, _ := r.Widget(cid, "w1")
	if stored.Type == "changed" {
		t.Error("mutating a returned copy changed the stored widget")
	}
}

func TestDatasetUsage(t *testing.T) {
	r, _, cid := newTestRegistry(t)
	r.AddWidget(Widget{CollectionID: cid, ID: "w1", Dataset: "ctcf"})
	r.AddWidget(Widget{CollectionID: cid, ID: "w2", Dataset: "ctcf"})
	r.AddWidget(Widget{CollectionID: cid, ID: "w3", Dataset: "h3k27ac"})
	r.AddWidget(Widget{CollectionID: cid, ID: "w4"})

	if got := r.DatasetUsage("ctcf"); got != 2 {
		t.Errorf("DatasetUsage(ctcf) = %d, want 2", got)
	}
	if got := len(r.UsedDatasets()); got != 2 {
		t.Errorf("UsedDatasets() has %d entries, want 2", got)
	}

	r.UpdateWidget(cid, "w3", func(w *Widget) { w.Dataset = "ctcf" })
	if got := r.DatasetUsage("ctcf"); got != 3 {
		t.Errorf("after switching dataset DatasetUsage(ctcf) = %d, want 3", got)
	}
	if _, ok := r.UsedDatasets()["h3k27ac"]; ok {
		t.Error("dataset without widgets should be dropped from UsedDatasets()")
	}

	for _, id := range []string{"w1", "w2", "w3"} {
		if err := r.DeleteWidget(cid, id); err != nil {
			t.Fatalf("DeleteWidget(%s) error = %v", id, err)
		}
	}
	if _, ok := r.UsedDatasets()["ctcf"]; ok {
		t.Error("usage entry should be removed when it reaches zero")
	}
}

func TestDeleteWidgetPublishesBeforeRemoval(t *testing.T) {
	r, bus, cid := newTestRegistry(t)
	r.AddWidget(Widget{CollectionID: cid, ID: "w1"})

	var existedDuringSignal bool
	var got event.DeleteWidgetEvent
	bus.Subscribe(event.TypeDeleteWidget, func(e event.Event) {
		got = e.(event.DeleteWidgetEvent)
		existedDuringSignal = r.WidgetExists(cid, "w1")
	})

	if err := r.DeleteWidget(cid, "w1"); err != nil {
		t.Fatalf("DeleteWidget() error = %v", err)
	}
	if got.ID != "w1" || got.CollectionID != cid {
		t.Errorf("delete signal = %+v", got)
	}
	if !existedDuringSignal {
		t.Error("widget should still be registered while delete-widget handlers run")
	}
	if r.WidgetExists(cid, "w1") {
		t.Error("widget should be gone after DeleteWidget()")
	}
	if err := r.DeleteWidget(cid, "w1"); !errors.Is(err, errors.ErrWidgetNotFound) {
		t.Errorf("second DeleteWidget() error = %v, want ErrWidgetNotFound", err)
	}
}

func TestDeleteCollectionCascades(t *testing.T) {
	r, bus, cid := newTestRegistry(t)
	r.AddWidget(Widget{CollectionID: cid, ID: "w1", Dataset: "a"})
	r.AddWidget(Widget{CollectionID: cid, ID: "w2", Dataset: "a"})

	var deleted []string
	bus.Subscribe(event.TypeDeleteWidget, func(e event.Event) {
		deleted = append(deleted, e.(event.DeleteWidgetEvent).ID)
	})

	if err := r.DeleteCollection(cid); err != nil {
		t.Fatalf("DeleteCollection() error = %v", err)
	}
	if len(deleted) != 2 || deleted[0] != "w1" || deleted[1] != "w2" {
		t.Errorf("deleted = %v, want [w1 w2]", deleted)
	}
	if _, err := r.Collection(cid); !errors.Is(err, errors.ErrCollectionNotFound) {
		t.Errorf("Collection() error = %v, want ErrCollectionNotFound", err)
	}
	if r.DatasetUsage("a") != 0 {
		t.Errorf("DatasetUsage(a) = %d after cascade, want 0", r.DatasetUsage("a"))
	}
}

func TestDeleteWidgetHandlerMayCallBack(t *testing.T) {
	r, bus, cid := newTestRegistry(t)
	r.AddWidget(Widget{CollectionID: cid, ID: "w1"})

	bus.Subscribe(event.TypeDeleteWidget, func(e event.Event) {
		r.UpdateWidget(cid, "w1", func(w *Widget) { w.SortOrder.TargetID = "" })
	})

	if err := r.DeleteWidget(cid, "w1"); err != nil {
		t.Fatalf("DeleteWidget() error = %v", err)
	}
}

func TestReassignID(t *testing.T) {
	r, bus, cid := newTestRegistry(t)
	r.AddWidget(Widget{CollectionID: cid, ID: "w1", Type: "pileup"})
	r.AddWidget(Widget{CollectionID: cid, ID: "w2"})

	var got event.WidgetIDChangeEvent
	bus.Subscribe(event.TypeWidgetIDChange, func(e event.Event) {
		got = e.(event.WidgetIDChangeEvent)
	})

	if err := r.ReassignID(cid, "w1", "w9"); err != nil {
		t.Fatalf("ReassignID() error = %v", err)
	}
	if got.OldID != "w1" || got.NewID != "w9" || got.CollectionID != cid {
		t.Errorf("id change signal = %+v", got)
	}
	w, err := r.Widget(cid, "w9")
	if err != nil {
		t.Fatalf("Widget(w9) error = %v", err)
	}
	if w.ID != "w9" || w.Type != "pileup" {
		t.Errorf("reassigned widget = %+v", w)
	}
	if r.WidgetExists(cid, "w1") {
		t.Error("old id should no longer resolve")
	}

	c, _ := r.Collection(cid)
	if c.Widgets[0] != "w9" {
		t.Errorf("collection order = %v, want w9 first", c.Widgets)
	}

	if err := r.ReassignID(cid, "w9", "w2"); !errors.Is(err, errors.ErrWidgetExists) {
		t.Errorf("ReassignID() onto taken id error = %v, want ErrWidgetExists", err)
	}
	if err := r.ReassignID(cid, "w9", ""); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("ReassignID() to empty id error = %v, want ErrInvalidInput", err)
	}
}

func TestClearAllSerializesFirst(t *testing.T) {
	r, bus, cid := newTestRegistry(t)
	r.AddWidget(Widget{CollectionID: cid, ID: "w1", Dataset: "a"})

	var sawWidget bool
	bus.Subscribe(event.TypeSerialize, func(event.Event) {
		sawWidget = r.WidgetExists(cid, "w1")
	})

	r.ClearAll()

	if !sawWidget {
		t.Error("serialize handlers should run while widgets are still registered")
	}
	if len(r.Collections()) != 0 {
		t.Error("ClearAll() should remove every collection")
	}
	if len(r.UsedDatasets()) != 0 {
		t.Error("ClearAll() should reset dataset usage")
	}
}
