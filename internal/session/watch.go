package session

import (
	"path/filepath"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/notify"
	"github.com/hicognition/hicolink/internal/pileup"
)

// Watch reloads widgets whenever a pileup file in the data directory
// changes. Donors pass the new values on to their recipients.
func (s *Session) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return nil
	}
	if s.loader.Dir() == "" {
		return errors.NewValidationError("watching requires a data directory").WithField("data.dir")
	}
	w, err := pileup.NewWatcher(s.loader.Dir(), s.loader.Match, s.onFilesChanged, pileup.WithLogger(s.logger))
	if err != nil {
		return err
	}
	w.Start()
	s.watcher = w
	s.logger.Info("watching data directory", "dir", s.loader.Dir())
	return nil
}

// StopWatching stops the data watcher, if any, and waits for a reload in
// flight to finish.
func (s *Session) StopWatching() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		w.Stop()
		<-w.Done()
	}
}

func (s *Session) onFilesChanged(paths []string) {
	if n := s.Reload(paths); n > 0 && s.onChange != nil {
		s.onChange()
	}
}

// Reload re-reads the given pileup files and refreshes every widget showing
// one of them. It returns the number of refreshed widgets.
func (s *Session) Reload(paths []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	refreshed := 0
	for _, path := range paths {
		m, err := s.loader.Load(path)
		if err != nil {
			s.notifier.Notify(notify.FromError(err))
			continue
		}
		for _, w := range s.widgets {
			rec, err := s.registry.Widget(w.CollectionID(), w.ID())
			if err != nil || !showsFile(rec.Dataset, rec.File, path) {
				continue
			}
			s.store.Put(w.Key(), m)
			w.Refresh()
			refreshed++
		}
	}
	if refreshed > 0 {
		s.logger.Debug("widgets reloaded", "files", len(paths), "widgets", refreshed)
	}
	return refreshed
}

func showsFile(dataset, file, path string) bool {
	if file != "" {
		return filepath.Base(file) == filepath.Base(path)
	}
	return dataset != "" && dataset == pileup.DatasetName(path)
}
