// Package session is the composition root of a running hicolink instance. It
// owns the event bus, both color pools, the widget registry and the matrix
// store, mounts widget controllers and serializes every user action.
//
// Session methods are safe for concurrent use: a single mutex guards the
// whole widget graph, and bus handlers run on the goroutine that holds it.
package session

import (
	"slices"
	"sync"

	"github.com/spf13/afero"

	"github.com/hicognition/hicolink/internal/config"
	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/link"
	"github.com/hicognition/hicolink/internal/logging"
	"github.com/hicognition/hicolink/internal/matrixops"
	"github.com/hicognition/hicolink/internal/notify"
	"github.com/hicognition/hicolink/internal/palette"
	"github.com/hicognition/hicolink/internal/pileup"
	"github.com/hicognition/hicolink/internal/registry"
	"github.com/hicognition/hicolink/internal/widget"
)

// Session holds the live widget graph.
type Session struct {
	mu sync.Mutex

	cfg      *config.Config
	logger   *logging.Logger
	fs       afero.Fs
	bus      *event.Bus
	pools    *palette.Pools
	registry *registry.Registry
	store    *pileup.Store
	loader   *pileup.Loader
	notifier notify.Sink
	userSink notify.Sink
	// capture collects the notices raised during one action so the action
	// can return them
	capture  *notify.Recorder
	onChange func()

	widgets map[pileup.Key]*widget.Widget
	watcher *pileup.Watcher
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithNotifier adds a sink for user-visible notices.
func WithNotifier(n notify.Sink) Option {
	return func(s *Session) { s.userSink = n }
}

// WithFs sets the filesystem pileup and layout files are read from.
func WithFs(fs afero.Fs) Option {
	return func(s *Session) { s.fs = fs }
}

// WithChangeHook registers fn to run after the data watcher changed widgets.
// It runs without the session lock held.
func WithChangeHook(fn func()) Option {
	return func(s *Session) { s.onChange = fn }
}

// New creates an empty session. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Session{
		cfg:     cfg,
		logger:  logging.NopLogger(),
		fs:      afero.NewOsFs(),
		store:   pileup.NewStore(),
		capture: notify.NewRecorder(),
		widgets: make(map[pileup.Key]*widget.Widget),
	}
	for _, opt := range opts {
		opt(s)
	}

	pools, err := palette.NewPools(cfg.Palette.Colors)
	if err != nil {
		return nil, err
	}
	loader, err := pileup.NewLoader(s.fs, cfg.Data.Dir, cfg.Data.Pattern, cfg.Data.Log2)
	if err != nil {
		return nil, err
	}

	sinks := notify.Multi{notify.NewLogSink(s.logger), s.capture}
	if s.userSink != nil {
		sinks = append(sinks, s.userSink)
	}
	s.notifier = sinks
	s.pools = pools
	s.loader = loader
	s.bus = event.NewBus(s.logger)
	s.registry = registry.New(s.bus)
	return s, nil
}

// Bus returns the session's event bus.
func (s *Session) Bus() *event.Bus { return s.bus }

// Registry returns the widget registry.
func (s *Session) Registry() *registry.Registry { return s.registry }

// Pools returns the indicator color pools.
func (s *Session) Pools() *palette.Pools { return s.pools }

// Store returns the matrix store.
func (s *Session) Store() *pileup.Store { return s.store }

// Config returns the configuration the session was created with.
func (s *Session) Config() *config.Config { return s.cfg }

// CreateCollection registers a collection; see registry.CreateCollection.
func (s *Session) CreateCollection(id string, cfg map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.CreateCollection(id, cfg)
}

// AddWidget registers and mounts a widget, reading its matrix from rec.File
// or from the data directory file named after rec.Dataset. A file that
// cannot be read is reported to the notifier and the widget mounts without
// data.
func (s *Session) AddWidget(rec registry.Widget) (registry.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.resolveMatrix(rec)
	if err != nil {
		s.notifier.Notify(notify.FromError(err))
	}
	return s.addWidget(rec, m)
}

// AddWidgetWithMatrix registers and mounts a widget displaying m.
func (s *Session) AddWidgetWithMatrix(rec registry.Widget, m matrixops.Matrix) (registry.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addWidget(rec, m)
}

func (s *Session) addWidget(rec registry.Widget, m matrixops.Matrix) (registry.Widget, error) {
	rec, err := s.registry.AddWidget(rec)
	if err != nil {
		return registry.Widget{}, err
	}
	key := keyFor(rec.CollectionID, rec.ID)
	if m.Valid() {
		s.store.Put(key, m)
	}
	s.widgets[key] = widget.Mount(rec, s.widgetDeps())
	return rec, nil
}

func keyFor(collectionID, id string) pileup.Key {
	return pileup.Key{CollectionID: collectionID, WidgetID: id}
}

func (s *Session) widgetDeps() widget.Deps {
	return widget.Deps{
		Bus:      s.bus,
		Pools:    s.pools,
		Registry: s.registry,
		Store:    s.store,
		Notifier: s.notifier,
		Logger:   s.logger,
		Config:   s.cfg,
		OnClose: func(key pileup.Key) {
			delete(s.widgets, key)
		},
	}
}

// resolveMatrix loads the matrix a record points at. Records without a file
// or dataset get an empty matrix.
func (s *Session) resolveMatrix(rec registry.Widget) (matrixops.Matrix, error) {
	if rec.File != "" {
		return s.loader.Load(rec.File)
	}
	if rec.Dataset == "" || s.loader.Dir() == "" {
		return matrixops.Matrix{}, nil
	}
	files, err := s.loader.Files()
	if err != nil {
		return matrixops.Matrix{}, errors.Wrapf(err, "cannot resolve dataset %s", rec.Dataset)
	}
	for _, path := range files {
		if pileup.DatasetName(path) == rec.Dataset {
			return s.loader.Load(path)
		}
	}
	return matrixops.Matrix{}, errors.NewDataError("no file for dataset", errors.ErrNoData).
		WithDataset(rec.Dataset).WithPath(s.loader.Dir())
}

// Widget returns the live record of a widget.
func (s *Session) Widget(collectionID, id string) (registry.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.widget(collectionID, id)
	if err != nil {
		return registry.Widget{}, err
	}
	return w.Record(), nil
}

func (s *Session) widget(collectionID, id string) (*widget.Widget, error) {
	w, ok := s.widgets[keyFor(collectionID, id)]
	if !ok {
		if _, err := s.registry.Collection(collectionID); err != nil {
			return nil, err
		}
		return nil, errors.NewNotFoundError("widget", id)
	}
	return w, nil
}

// sharer is the part of a link a session action drives.
type sharer interface {
	StartShare() error
	CancelShare() error
	StopShare() error
}

func (s *Session) sharer(ch event.Channel, collectionID, id string) (sharer, error) {
	w, err := s.widget(collectionID, id)
	if err != nil {
		return nil, err
	}
	switch ch {
	case event.ChannelSortOrder:
		return w.SortOrder(), nil
	case event.ChannelValueScale:
		return w.ValueScale(), nil
	default:
		return nil, errors.NewValidationError("unknown channel").WithField("channel").WithValue(string(ch))
	}
}

// StartShare starts a selection on ch for a widget; the next Click decides
// the donor.
func (s *Session) StartShare(ch event.Channel, collectionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.sharer(ch, collectionID, id)
	if err != nil {
		return err
	}
	return l.StartShare()
}

// CancelShare abandons a widget's pending selection on ch.
func (s *Session) CancelShare(ch event.Channel, collectionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.sharer(ch, collectionID, id)
	if err != nil {
		return err
	}
	return l.CancelShare()
}

// StopShare makes a recipient on ch fall back to its own value.
func (s *Session) StopShare(ch event.Channel, collectionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.sharer(ch, collectionID, id)
	if err != nil {
		return err
	}
	return l.StopShare()
}

// Click delivers a click on a widget. A warning or error raised while the
// click was handled, such as an exhausted palette, is returned.
func (s *Session) Click(collectionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.click(collectionID, id)
}

// ClickBackground delivers a click that misses every widget. It only
// cancels pending selections, so no color is allocated, but a warning raised
// while it was handled is still returned.
func (s *Session) ClickBackground() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.click("", "")
}

func (s *Session) click(collectionID, id string) error {
	s.capture.Clear()
	event.PublishClick(s.bus, collectionID, id)
	for _, n := range s.capture.Notices() {
		if n.Err != nil && n.Level >= notify.LevelWarning {
			return n.Err
		}
	}
	return nil
}

// SetSortMode switches a widget's sort mode.
func (s *Session) SetSortMode(collectionID, id, mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.widget(collectionID, id)
	if err != nil {
		return err
	}
	return w.SortOrder().SetMode(mode)
}

// CycleSortMode advances a widget to the next sort mode and returns it.
func (s *Session) CycleSortMode(collectionID, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.widget(collectionID, id)
	if err != nil {
		return "", err
	}
	modes := link.Modes()
	next := modes[(slices.Index(modes, w.SortOrder().Mode())+1)%len(modes)]
	return next, w.SortOrder().SetMode(next)
}

// ToggleAscending flips a widget's sort direction and returns the new one.
func (s *Session) ToggleAscending(collectionID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.widget(collectionID, id)
	if err != nil {
		return false, err
	}
	asc := !w.SortOrder().Ascending()
	w.SortOrder().SetAscending(asc)
	return asc, nil
}

// SetScale fixes a widget's own color scale domain.
func (s *Session) SetScale(collectionID, id string, lo, hi float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.widget(collectionID, id)
	if err != nil {
		return err
	}
	return w.ValueScale().SetScale(lo, hi)
}

// SetColormap switches a widget's colormap.
func (s *Session) SetColormap(collectionID, id, colormap string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.widget(collectionID, id)
	if err != nil {
		return err
	}
	w.ValueScale().SetColormap(colormap)
	return nil
}

// DeleteWidget deletes a widget. Its relationships unwind before the record
// goes away.
func (s *Session) DeleteWidget(collectionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.DeleteWidget(collectionID, id)
}

// DeleteCollection deletes a collection and every widget in it.
func (s *Session) DeleteCollection(collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registry.DeleteCollection(collectionID); err != nil {
		return err
	}
	s.store.DeleteCollection(collectionID)
	return nil
}

// ReassignID re-keys a widget. Recipients referencing the old id follow.
func (s *Session) ReassignID(collectionID, oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldKey := keyFor(collectionID, oldID)
	w := s.widgets[oldKey]
	if err := s.registry.ReassignID(collectionID, oldID, newID); err != nil {
		return err
	}
	if w != nil && oldID != newID {
		delete(s.widgets, oldKey)
		s.widgets[w.Key()] = w
	}
	return nil
}

// ClearAll serializes every widget, unmounts them, drops every subscription,
// releases every indicator color and forgets all data.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearAll()
}

func (s *Session) clearAll() {
	s.registry.ClearAll()
	for _, w := range s.widgets {
		w.Close()
	}
	clear(s.widgets)
	s.bus.Clear()
	s.pools.Reset()
	s.store.Clear()
	s.logger.Info("session cleared")
}

// Close stops the data watcher and clears the session.
func (s *Session) Close() {
	s.StopWatching()
	s.ClearAll()
}
