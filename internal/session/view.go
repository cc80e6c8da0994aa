package session

import (
	"github.com/hicognition/hicolink/internal/link"
	"github.com/hicognition/hicolink/internal/matrixops"
	"github.com/hicognition/hicolink/internal/registry"
)

// View is a read-only picture of one mounted widget, taken under the session
// lock so a renderer never touches live links.
type View struct {
	Record     registry.Widget
	SortState  link.State
	ScaleState link.State
	// Sorted holds the rows in displayed order; it is the zero Matrix when
	// the widget has no data.
	Sorted matrixops.Matrix
}

// HasData reports whether the widget displays a matrix.
func (v View) HasData() bool { return v.Sorted.Valid() }

// Views returns every mounted widget in collection and insertion order.
func (s *Session) Views() []View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var views []View
	for _, c := range s.registry.Collections() {
		for _, id := range c.Widgets {
			w, ok := s.widgets[keyFor(c.ID, id)]
			if !ok {
				continue
			}
			v := View{
				Record:     w.Record(),
				SortState:  w.SortOrder().Relationship().State,
				ScaleState: w.ValueScale().Relationship().State,
			}
			if m, ok := w.SortedMatrix(); ok {
				v.Sorted = m
			}
			views = append(views, v)
		}
	}
	return views
}
