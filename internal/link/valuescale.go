package link

import (
	"math"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/matrixops"
)

// Default per-mil ranks of a widget's own scale bounds.
const (
	DefaultLowerPerMil = 10
	DefaultUpperPerMil = 990
)

// ValueScaleLink shares a widget's color scale domain. Only widgets of the
// same type can be selected, and a recipient only displays a donor's scale
// while both use the same colormap.
type ValueScaleLink struct {
	*selection

	matrix   matrixops.Matrix
	colormap string
	lower    float64
	upper    float64
	// manual is an explicit domain set with SetScale
	manual *[2]float64
	shared *event.ValueScale
}

// NewValueScaleLink mounts a value-scale link for a widget displaying m.
// The widget's own domain spans the lowerPerMil and upperPerMil ranks of
// its finite values.
func NewValueScaleLink(opts Options, m matrixops.Matrix, colormap string, lowerPerMil, upperPerMil float64) *ValueScaleLink {
	l := &ValueScaleLink{
		matrix:   m,
		colormap: colormap,
		lower:    lowerPerMil,
		upper:    upperPerMil,
	}
	l.selection = newSelection(event.ChannelValueScale, opts, true, l)
	return l
}

// Colormap returns the widget's colormap id.
func (l *ValueScaleLink) Colormap() string { return l.colormap }

// Shared reports whether the displayed scale comes from a donor.
func (l *ValueScaleLink) Shared() bool { return l.shared != nil }

// Matrix returns the displayed matrix.
func (l *ValueScaleLink) Matrix() matrixops.Matrix { return l.matrix }

// SetScale fixes the widget's own domain. A recipient stops sharing first.
func (l *ValueScaleLink) SetScale(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
		return errors.NewValidationError("scale bounds must be finite with min <= max").
			WithField("scale").WithValue([2]float64{lo, hi})
	}
	l.takeControl(func() { l.manual = &[2]float64{lo, hi} })
	return nil
}

// ResetScale returns the widget's own domain to the per-mil ranks of its
// data.
func (l *ValueScaleLink) ResetScale() {
	l.takeControl(func() { l.manual = nil })
}

// SetColormap switches the widget's colormap. A recipient stops sharing
// first; recipients of this widget with another colormap stop sharing when
// they receive the update.
func (l *ValueScaleLink) SetColormap(colormap string) {
	l.takeControl(func() { l.colormap = colormap })
}

// SetMatrix replaces the displayed matrix and passes a changed domain on to
// recipients.
func (l *ValueScaleLink) SetMatrix(m matrixops.Matrix) {
	if l.closed {
		l.matrix = m
		return
	}
	l.changed(func() { l.matrix = m })
}

func (l *ValueScaleLink) takeControl(fn func()) {
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

// ConstructValueScale returns the scale the widget displays: the donor's
// for a recipient, its own otherwise.
func (l *ValueScaleLink) ConstructValueScale() (event.ValueScale, bool) {
	if l.shared != nil {
		return *l.shared, true
	}
	if l.manual != nil {
		return event.ValueScale{Min: l.manual[0], Max: l.manual[1], Colormap: l.colormap}, true
	}
	lo, ok := matrixops.PerMilRank(l.matrix.Data, l.lower)
	if !ok {
		return event.ValueScale{}, false
	}
	hi, ok := matrixops.PerMilRank(l.matrix.Data, l.upper)
	if !ok {
		return event.ValueScale{}, false
	}
	return event.ValueScale{Min: lo, Max: hi, Colormap: l.colormap}, true
}

// ValueScale is ConstructValueScale for display code.
func (l *ValueScaleLink) ValueScale() (event.ValueScale, bool) {
	return l.ConstructValueScale()
}

func (l *ValueScaleLink) current() (event.SharedValue, bool) {
	scale, ok := l.ConstructValueScale()
	if !ok {
		return nil, false
	}
	return scale, true
}

func (l *ValueScaleLink) adopt(v event.SharedValue) bool {
	scale, ok := v.(event.ValueScale)
	if !ok || scale.Colormap != l.colormap {
		return false
	}
	l.shared = &scale
	return true
}

func (l *ValueScaleLink) revert() { l.shared = nil }
