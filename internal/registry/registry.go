// Package registry owns the live collections and widget records and emits
// the lifecycle signals (delete-widget, widget-id-change, serialize) that the
// linking protocol reacts to.
//
// Records are plain values: callers receive copies, and UpdateWidget is the
// only way to change a stored widget.
package registry

import (
	"maps"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/event"
)

// Relationship is the persisted side of one sharing channel.
type Relationship struct {
	TargetID       string `yaml:"target_id,omitempty"`
	TargetColor    string `yaml:"target_color,omitempty"`
	RecipientCount int    `yaml:"recipient_count,omitempty"`
	IndicatorColor string `yaml:"indicator_color,omitempty"`
}

// SortOrderState is a widget's persisted sort-order settings.
type SortOrderState struct {
	SelectedOrder string `yaml:"selected_order"`
	Ascending     bool   `yaml:"ascending"`
	Relationship  `yaml:",inline"`
}

// ValueScaleState is a widget's persisted color-scale settings.
type ValueScaleState struct {
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
	Colormap     string  `yaml:"colormap"`
	Relationship `yaml:",inline"`
}

// Widget is the stored record of one widget.
type Widget struct {
	ID           string          `yaml:"id"`
	CollectionID string          `yaml:"collection_id"`
	Type         string          `yaml:"type"`
	Dataset      string          `yaml:"dataset,omitempty"`
	File         string          `yaml:"file,omitempty"`
	SortOrder    SortOrderState  `yaml:"sort_order"`
	ValueScale   ValueScaleState `yaml:"value_scale"`
}

// Collection is a group of widgets sharing one region and config context.
type Collection struct {
	ID      string            `yaml:"id"`
	Config  map[string]string `yaml:"config,omitempty"`
	Widgets []string          `yaml:"widgets"`
}

type collection struct {
	id      string
	config  map[string]string
	widgets map[string]*Widget
	order   []string
}

func (c *collection) snapshot() Collection {
	return Collection{
		ID:      c.id,
		Config:  maps.Clone(c.config),
		Widgets: slices.Clone(c.order),
	}
}

// Registry is safe for concurrent use. Signals are published after the
// internal lock is released, so handlers may call back into the registry.
type Registry struct {
	mu          sync.RWMutex
	bus         *event.Bus
	collections map[string]*collection
	order       []string
	usage       map[string]int
}

// New creates an empty registry publishing lifecycle signals on bus.
func New(bus *event.Bus) *Registry {
	return &Registry{
		bus:         bus,
		collections: make(map[string]*collection),
		usage:       make(map[string]int),
	}
}

// NewID returns a fresh, lexically sortable identifier.
func NewID() string {
	return ulid.Make().String()
}

// CreateCollection registers an empty collection. An empty id is replaced by
// a generated one. The id actually used is returned.
func (r *Registry) CreateCollection(id string, config map[string]string) (string, error) {
	if id == "" {
		id = NewID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collections[id]; exists {
		return "", errors.NewAlreadyExistsError("collection", id)
	}
	r.collections[id] = &collection{
		id:      id,
		config:  maps.Clone(config),
		widgets: make(map[string]*Widget),
	}
	r.order = append(r.order, id)
	return id, nil
}

// Collection returns a copy of a collection.
func (r *Registry) Collection(id string) (Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[id]
	if !ok {
		return Collection{}, errors.NewNotFoundError("collection", id)
	}
	return c.snapshot(), nil
}

// Collections returns every collection in creation order.
func (r *Registry) Collections() []Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Collection, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.collections[id].snapshot())
	}
	return out
}

// AddWidget stores w in its collection, generating an ID when w.ID is empty,
// and counts one more use of its dataset.
func (r *Registry) AddWidget(w Widget) (Widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[w.CollectionID]
	if !ok {
		return Widget{}, errors.NewRegistryError("cannot add widget", errors.ErrCollectionNotFound).
			WithCollection(w.CollectionID)
	}
	if w.ID == "" {
		w.ID = NewID()
	}
	if _, exists := c.widgets[w.ID]; exists {
		return Widget{}, errors.NewAlreadyExistsError("widget", w.ID)
	}

	stored := w
	c.widgets[w.ID] = &stored
	c.order = append(c.order, w.ID)
	r.incrementUsage(w.Dataset)
	return w, nil
}

// Widget returns a copy of a widget record.
func (r *Registry) Widget(collectionID, id string) (Widget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, err := r.lookup(collectionID, id)
	if err != nil {
		return Widget{}, err
	}
	return *w, nil
}

// WidgetExists reports whether a widget is registered.
func (r *Registry) WidgetExists(collectionID, id string) bool {
	_, err := r.Widget(collectionID, id)
	return err == nil
}

// Widgets returns copies of every widget in a collection, in insertion order.
func (r *Registry) Widgets(collectionID string) ([]Widget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[collectionID]
	if !ok {
		return nil, errors.NewNotFoundError("collection", collectionID)
	}
	out := make([]Widget, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.widgets[id])
	}
	return out, nil
}

// UpdateWidget applies fn to a copy of the stored widget, stores the result
// and returns it. fn cannot move or re-key the widget: ID and CollectionID
// are restored after it runs. A changed Dataset moves the usage count.
func (r *Registry) UpdateWidget(collectionID, id string, fn func(*Widget)) (Widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.lookup(collectionID, id)
	if err != nil {
		return Widget{}, err
	}

	updated := *w
	fn(&updated)
	updated.ID, updated.CollectionID = w.ID, w.CollectionID
	if updated.Dataset != w.Dataset {
		r.decrementUsage(w.Dataset)
		r.incrementUsage(updated.Dataset)
	}
	*w = updated
	return updated, nil
}

// DeleteWidget publishes delete-widget so the widget can tear down its
// relationships, then removes the record and releases its dataset use.
func (r *Registry) DeleteWidget(collectionID, id string) error {
	if _, err := r.Widget(collectionID, id); err != nil {
		return err
	}

	r.publish(event.NewDeleteWidgetEvent(collectionID, id))

	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[collectionID]
	if !ok {
		return nil
	}
	if w, ok := c.widgets[id]; ok {
		r.decrementUsage(w.Dataset)
		delete(c.widgets, id)
		c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	}
	return nil
}

// DeleteCollection deletes every widget of a collection, in insertion order,
// and then the collection itself.
func (r *Registry) DeleteCollection(id string) error {
	c, err := r.Collection(id)
	if err != nil {
		return err
	}
	for _, wid := range c.Widgets {
		if err := r.DeleteWidget(id, wid); err != nil && !errors.Is(err, errors.ErrWidgetNotFound) {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collections, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

// ReassignID re-keys a widget within its collection and publishes
// widget-id-change so references to the old id can follow.
func (r *Registry) ReassignID(collectionID, oldID, newID string) error {
	if newID == "" {
		return errors.NewValidationError("new widget id cannot be empty").WithField("id")
	}

	r.mu.Lock()
	w, err := r.lookup(collectionID, oldID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if oldID == newID {
		r.mu.Unlock()
		return nil
	}
	c := r.collections[collectionID]
	if _, taken := c.widgets[newID]; taken {
		r.mu.Unlock()
		return errors.NewAlreadyExistsError("widget", newID)
	}
	delete(c.widgets, oldID)
	w.ID = newID
	c.widgets[newID] = w
	for i, id := range c.order {
		if id == oldID {
			c.order[i] = newID
		}
	}
	r.mu.Unlock()

	r.publish(event.NewWidgetIDChangeEvent(collectionID, oldID, newID))
	return nil
}

// Serialize asks every mounted widget to persist its state into the registry.
func (r *Registry) Serialize() {
	r.publish(event.NewSerializeEvent())
}

// ClearAll publishes serialize and then forgets every collection, widget and
// dataset use.
func (r *Registry) ClearAll() {
	r.Serialize()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections = make(map[string]*collection)
	r.order = nil
	r.usage = make(map[string]int)
}

// DatasetUsage returns how many widgets display a dataset.
func (r *Registry) DatasetUsage(dataset string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usage[dataset]
}

// UsedDatasets returns a copy of the dataset usage counts. Datasets with no
// widget are absent.
func (r *Registry) UsedDatasets() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.usage)
}

func (r *Registry) lookup(collectionID, id string) (*Widget, error) {
	c, ok := r.collections[collectionID]
	if !ok {
		return nil, errors.NewNotFoundError("collection", collectionID)
	}
	w, ok := c.widgets[id]
	if !ok {
		return nil, errors.NewNotFoundError("widget", id)
	}
	return w, nil
}

func (r *Registry) incrementUsage(dataset string) {
	if dataset != "" {
		r.usage[dataset]++
	}
}

func (r *Registry) decrementUsage(dataset string) {
	n, ok := r.usage[dataset]
	if !ok {
		return
	}
	if n <= 1 {
		delete(r.usage, dataset)
		return
	}
	r.usage[dataset] = n - 1
}

func (r *Registry) publish(e event.Event) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}
