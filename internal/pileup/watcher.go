package pileup

import (
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hicognition/hicolink/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of events on the
// same files to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports pileup files that were written or created in a directory.
// Editors and pipelines often emit several events per save, so events are
// collected until the directory has been quiet for the debounce interval and
// then delivered as one sorted batch of paths.
type Watcher struct {
	watcher  *fsnotify.Watcher
	match    func(path string) bool
	onChange func(paths []string)
	debounce time.Duration
	logger   *logging.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger that receives watch errors.
func WithLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher watches dir. match filters paths (nil accepts everything) and
// onChange is called from the watcher goroutine with each batch.
func NewWatcher(dir string, match func(string) bool, onChange func([]string), opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if match == nil {
		match = func(string) bool { return true }
	}

	w := &Watcher{
		watcher:  fw,
		match:    match,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logging.NopLogger(),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins delivering change batches.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop ends the watch loop and releases the fsnotify watcher. It is safe to
// call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

// Done is closed once the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-w.stopCh:
			timer.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.match(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			pending = make(map[string]struct{})
			if w.onChange != nil {
				w.onChange(paths)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("pileup watch error", "error", err.Error())
		}
	}
}
