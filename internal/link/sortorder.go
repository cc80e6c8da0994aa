package link

import (
	"slices"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/matrixops"
)

// Sort modes a widget computes its own row order with.
const (
	ModeCenterColumn  = "center column"
	ModeRegion        = "region"
	ModeLeftBoundary  = "left boundary"
	ModeRightBoundary = "right boundary"
)

// Modes returns the sort modes in display order.
func Modes() []string {
	return []string{ModeCenterColumn, ModeRegion, ModeLeftBoundary, ModeRightBoundary}
}

// SortValues computes one sort key per row of m for mode.
//
// The pileup window is padded by half a region on either side, so the
// region covers the middle third of the columns and its boundaries sit at
// cols/3 and cols-1-cols/3.
func SortValues(m matrixops.Matrix, mode string) ([]float64, bool) {
	if !m.Valid() {
		return nil, false
	}
	cols := m.Shape.Cols
	third := cols / 3
	switch mode {
	case ModeCenterColumn:
		return matrixops.SelectColumn(m, matrixops.CenterColumnIndex(m.Shape))
	case ModeRegion:
		region, ok := matrixops.SelectColumns(m, matrixops.ColumnRange(m.Shape, third, cols-third))
		if !ok {
			return nil, false
		}
		return matrixops.MeanAlongColumns(region)
	case ModeLeftBoundary:
		return matrixops.SelectColumn(m, third)
	case ModeRightBoundary:
		return matrixops.SelectColumn(m, cols-1-third)
	default:
		return nil, false
	}
}

// SortOrderLink shares a widget's row ordering.
type SortOrderLink struct {
	*selection

	matrix    matrixops.Matrix
	mode      string
	ascending bool
	shared    *event.SortOrder
}

// NewSortOrderLink mounts a sort-order link for a widget displaying m.
func NewSortOrderLink(opts Options, m matrixops.Matrix, mode string, ascending bool) *SortOrderLink {
	if mode == "" {
		mode = ModeCenterColumn
	}
	l := &SortOrderLink{matrix: m, mode: mode, ascending: ascending}
	l.selection = newSelection(event.ChannelSortOrder, opts, false, l)
	return l
}

// Mode returns the widget's own sort mode, kept while it is a recipient.
func (l *SortOrderLink) Mode() string { return l.mode }

// Ascending returns the widget's own sort direction.
func (l *SortOrderLink) Ascending() bool { return l.ascending }

// SelectedOrder returns the sort mode in effect, or SelectedOrderShared for
// a recipient.
func (l *SortOrderLink) SelectedOrder() string {
	if l.shared != nil {
		return SelectedOrderShared
	}
	return l.mode
}

// Matrix returns the unsorted matrix.
func (l *SortOrderLink) Matrix() matrixops.Matrix { return l.matrix }

// SetMode switches the widget to one of Modes. A recipient stops sharing
// first.
func (l *SortOrderLink) SetMode(mode string) error {
	if !slices.Contains(Modes(), mode) {
		return errors.NewValidationError("unknown sort mode").WithField("mode").WithValue(mode)
	}
	l.takeControl(func() { l.mode = mode })
	return nil
}

// SetAscending sets the widget's own sort direction. A recipient stops
// sharing first.
func (l *SortOrderLink) SetAscending(ascending bool) {
	l.takeControl(func() { l.ascending = ascending })
}

// takeControl applies a local settings change. A recipient's display is
// driven by its donor, so it stops sharing before the change takes effect.
func (l *SortOrderLink) takeControl(fn func()) {
	if l.closed {
		fn()
		return
	}
	if l.rel.IsRecipient() {
		fn()
		l.stop(true)
		return
	}
	l.changed(fn)
}

// SetMatrix replaces the displayed matrix, e.g. after the pileup file was
// reloaded, and passes the new order on to recipients. A recipient whose
// new rows no longer match its donor's order stops sharing.
func (l *SortOrderLink) SetMatrix(m matrixops.Matrix) {
	if l.closed {
		l.matrix = m
		return
	}
	if l.shared != nil && m.Valid() && len(l.shared.Values) != m.Shape.Rows {
		l.matrix = m
		l.report(l.linkError("donor "+l.rel.TargetID+" does not match the reloaded rows", errors.ErrIncompatibleTarget).
			WithSeverity(errors.SeverityInfo))
		l.stop(true)
		return
	}
	l.changed(func() { l.matrix = m })
}

// ConstructSortOrder returns the order the widget displays: the donor's
// order for a recipient, its own otherwise.
func (l *SortOrderLink) ConstructSortOrder() (event.SortOrder, bool) {
	if l.shared != nil {
		return l.shared.Clone(), true
	}
	values, ok := SortValues(l.matrix, l.mode)
	if !ok {
		return event.SortOrder{}, false
	}
	return event.SortOrder{Values: values, Ascending: l.ascending}, true
}

// SortedMatrix returns the matrix with its rows in the displayed order.
func (l *SortOrderLink) SortedMatrix() (matrixops.Matrix, bool) {
	order, ok := l.ConstructSortOrder()
	if !ok {
		return matrixops.Matrix{}, false
	}
	return matrixops.SortMatrixByIndex(l.matrix, order.Values, order.Ascending)
}

func (l *SortOrderLink) current() (event.SharedValue, bool) {
	order, ok := l.ConstructSortOrder()
	if !ok {
		return nil, false
	}
	return order, true
}

// adopt rejects orders that do not cover every row of a loaded matrix.
func (l *SortOrderLink) adopt(v event.SharedValue) bool {
	order, ok := v.(event.SortOrder)
	if !ok {
		return false
	}
	if l.matrix.Valid() && len(order.Values) != l.matrix.Shape.Rows {
		return false
	}
	order = order.Clone()
	l.shared = &order
	return true
}

func (l *SortOrderLink) revert() { l.shared = nil }
