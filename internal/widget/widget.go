// Package widget binds one pileup matrix to its sort-order and value-scale
// links and to its registry record.
package widget

import (
	"slices"

	"github.com/hicognition/hicolink/internal/config"
	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/link"
	"github.com/hicognition/hicolink/internal/logging"
	"github.com/hicognition/hicolink/internal/matrixops"
	"github.com/hicognition/hicolink/internal/notify"
	"github.com/hicognition/hicolink/internal/palette"
	"github.com/hicognition/hicolink/internal/pileup"
	"github.com/hicognition/hicolink/internal/registry"
)

// Deps are the session services a widget is mounted on.
type Deps struct {
	Bus      *event.Bus
	Pools    *palette.Pools
	Registry *registry.Registry
	Store    *pileup.Store
	Notifier notify.Sink
	Logger   *logging.Logger
	Config   *config.Config
	// OnClose runs after the widget tore itself down in response to
	// delete-widget.
	OnClose func(key pileup.Key)
}

// Widget is a mounted widget. It is not safe for concurrent use.
type Widget struct {
	deps   Deps
	group  *event.Group
	logger *logging.Logger

	collectionID string
	id           string
	widgetType   string

	sort   *link.SortOrderLink
	scale  *link.ValueScaleLink
	closed bool
}

// Mount creates the controller for a registered widget. The matrix is taken
// from the store; a widget without data mounts with an empty matrix and
// shares nothing until Refresh finds one.
func Mount(rec registry.Widget, deps Deps) *Widget {
	if deps.Logger == nil {
		deps.Logger = logging.NopLogger()
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	cfg := deps.Config

	w := &Widget{
		deps:         deps,
		group:        event.NewGroup(deps.Bus),
		logger:       deps.Logger.WithCollection(rec.CollectionID).WithWidget(rec.ID),
		collectionID: rec.CollectionID,
		id:           rec.ID,
		widgetType:   rec.Type,
	}

	m, _ := deps.Store.Get(w.Key())

	mode, ascending := cfg.Sorting.DefaultMode, cfg.Sorting.Ascending
	if slices.Contains(link.Modes(), rec.SortOrder.SelectedOrder) {
		mode, ascending = rec.SortOrder.SelectedOrder, rec.SortOrder.Ascending
	}
	colormap := rec.ValueScale.Colormap
	if colormap == "" {
		colormap = cfg.ValueScale.Colormap(rec.Type)
	}

	opts := link.Options{
		Bus:          deps.Bus,
		Group:        w.group,
		Notifier:     deps.Notifier,
		Logger:       deps.Logger,
		CollectionID: rec.CollectionID,
		WidgetID:     rec.ID,
		WidgetType:   rec.Type,
	}
	sortOpts := opts
	sortOpts.Pool = deps.Pools.SortOrder
	w.sort = link.NewSortOrderLink(sortOpts, m, mode, ascending)

	scaleOpts := opts
	scaleOpts.Pool = deps.Pools.ValueScale
	w.scale = link.NewValueScaleLink(scaleOpts, m, colormap, cfg.ValueScale.LowerPerMil, cfg.ValueScale.UpperPerMil)

	// Registered after the links so they see lifecycle signals first.
	w.group.Subscribe(event.TypeWidgetIDChange, w.onWidgetIDChange)
	w.group.Subscribe(event.TypeSerialize, w.onSerialize)
	w.group.Subscribe(event.TypeDeleteWidget, w.onDeleteWidget)

	w.logger.Debug("widget mounted", "type", rec.Type, "rows", m.Shape.Rows, "cols", m.Shape.Cols)
	return w
}

// Key returns the widget's current store key.
func (w *Widget) Key() pileup.Key {
	return pileup.Key{CollectionID: w.collectionID, WidgetID: w.id}
}

// ID returns the widget id.
func (w *Widget) ID() string { return w.id }

// CollectionID returns the owning collection.
func (w *Widget) CollectionID() string { return w.collectionID }

// Type returns the widget type.
func (w *Widget) Type() string { return w.widgetType }

// SortOrder returns the sort-order link.
func (w *Widget) SortOrder() *link.SortOrderLink { return w.sort }

// ValueScale returns the value-scale link.
func (w *Widget) ValueScale() *link.ValueScaleLink { return w.scale }

// Closed reports whether the widget was torn down.
func (w *Widget) Closed() bool { return w.closed }

// Refresh re-reads the matrix from the store. Donors pass changed values on
// to their recipients.
func (w *Widget) Refresh() {
	if w.closed {
		return
	}
	m, ok := w.deps.Store.Get(w.Key())
	if !ok {
		return
	}
	w.sort.SetMatrix(m)
	w.scale.SetMatrix(m)
	w.logger.Debug("widget refreshed", "rows", m.Shape.Rows, "cols", m.Shape.Cols)
}

// SortedMatrix returns the matrix rows in displayed order.
func (w *Widget) SortedMatrix() (matrixops.Matrix, bool) {
	return w.sort.SortedMatrix()
}

// Record returns the widget's current visual state as a registry record.
func (w *Widget) Record() registry.Widget {
	rec, err := w.deps.Registry.Widget(w.collectionID, w.id)
	if err != nil {
		rec = registry.Widget{ID: w.id, CollectionID: w.collectionID, Type: w.widgetType}
	}
	w.fill(&rec)
	return rec
}

// Persist writes the widget's visual state into the registry.
func (w *Widget) Persist() error {
	_, err := w.deps.Registry.UpdateWidget(w.collectionID, w.id, w.fill)
	return err
}

func (w *Widget) fill(rec *registry.Widget) {
	rec.SortOrder = registry.SortOrderState{
		SelectedOrder: w.sort.SelectedOrder(),
		Ascending:     w.sort.Ascending(),
		Relationship:  relationship(w.sort.Relationship()),
	}

	scale, _ := w.scale.ValueScale()
	rec.ValueScale = registry.ValueScaleState{
		Min:          scale.Min,
		Max:          scale.Max,
		Colormap:     w.scale.Colormap(),
		Relationship: relationship(w.scale.Relationship()),
	}
}

func relationship(r link.Relationship) registry.Relationship {
	return registry.Relationship{
		TargetID:       r.TargetID,
		TargetColor:    string(r.TargetColor),
		RecipientCount: r.RecipientCount,
		IndicatorColor: string(r.IndicatorColor),
	}
}

// Close tears the widget down: both links end their relationships and every
// subscription is released.
func (w *Widget) Close() {
	if w.closed {
		return
	}
	w.sort.Close()
	w.scale.Close()
	w.group.Close()
	w.closed = true
	w.logger.Debug("widget unmounted")
}

func (w *Widget) onWidgetIDChange(e event.Event) {
	ev, ok := e.(event.WidgetIDChangeEvent)
	if !ok || ev.CollectionID != w.collectionID || ev.OldID != w.id {
		return
	}
	w.deps.Store.Rename(w.collectionID, ev.OldID, ev.NewID)
	w.id = ev.NewID
	w.logger = w.deps.Logger.WithCollection(w.collectionID).WithWidget(ev.NewID)
}

func (w *Widget) onSerialize(event.Event) {
	if err := w.Persist(); err != nil {
		w.logger.Warn("cannot persist widget state", "error", err)
	}
}

func (w *Widget) onDeleteWidget(e event.Event) {
	ev, ok := e.(event.DeleteWidgetEvent)
	if !ok || ev.CollectionID != w.collectionID || ev.ID != w.id {
		return
	}
	key := w.Key()
	w.Close()
	w.deps.Store.Delete(key)
	if w.deps.OnClose != nil {
		w.deps.OnClose(key)
	}
}
