package link

import (
	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/palette"
)

// State is the selection state of one widget on one channel.
type State int

const (
	// Idle means no selection involves the widget.
	Idle State = iota
	// SelectingDonor means the widget started a share and waits for a click
	// on the widget it will take the value from.
	SelectingDonor
	// SelectableTarget means another widget is selecting and a click on this
	// widget makes it the donor.
	SelectableTarget
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SelectingDonor:
		return "selecting"
	case SelectableTarget:
		return "selectable"
	default:
		return "unknown"
	}
}

// SelectedOrderShared is reported as the selected order of a sort-order
// recipient.
const SelectedOrderShared = "shared"

// Relationship is a widget's view of its sharing relationships on one
// channel. A widget can be a recipient and a donor at the same time.
type Relationship struct {
	State State
	// TargetID is the donor this widget displays the value of.
	TargetID string
	// TargetColor is the donor's indicator color.
	TargetColor palette.Color
	// RecipientCount is the number of widgets displaying this widget's value.
	RecipientCount int
	// IndicatorColor is owned while RecipientCount > 0.
	IndicatorColor palette.Color
}

// IsRecipient reports whether the widget displays a donor's value.
func (r Relationship) IsRecipient() bool { return r.TargetID != "" }

// IsDonor reports whether any widget displays this widget's value.
func (r Relationship) IsDonor() bool { return r.RecipientCount > 0 }

// sameValue compares two shared values of the same channel.
func sameValue(a, b event.SharedValue) bool {
	switch x := a.(type) {
	case event.SortOrder:
		y, ok := b.(event.SortOrder)
		return ok && x.Equal(y)
	case event.ValueScale:
		y, ok := b.(event.ValueScale)
		return ok && x.Equal(y)
	default:
		return a == nil && b == nil
	}
}
