package event

import (
	"math"
	"slices"
	"time"

	"github.com/hicognition/hicolink/internal/palette"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "sortorder.selection-start").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Channel names one sharing protocol. Each channel has its own set of
// selection and sharing signals.
type Channel string

const (
	ChannelSortOrder  Channel = "sortorder"
	ChannelValueScale Channel = "valuescale"
)

// Channel-scoped actions.
const (
	ActionSelectionStart = "selection-start"
	ActionSelectionEnd   = "selection-end"
	ActionUpdateSharing  = "update-sharing"
	ActionStopSharing    = "stop-sharing"
)

// Type returns the event type for action on this channel.
func (c Channel) Type(action string) string {
	return string(c) + "." + action
}

// Widget and session level event types.
const (
	TypeWidgetIDChange = "widget.id-change"
	TypeSourceDeletion = "widget.source-deletion"
	TypeDeleteWidget   = "widget.delete"
	TypeSerialize      = "session.serialize"
	TypeClick          = "ui.click"
	TypeDocumentClick  = "ui.document-click"
)

// -----------------------------------------------------------------------------
// Shared values
// -----------------------------------------------------------------------------

// SharedValue is the payload a donor shares with its recipients. It is one of
// SortOrder or ValueScale.
type SharedValue interface {
	sharedValue()
}

// SortOrder is a row ordering expressed as one sort key per row plus the
// direction to sort them in.
type SortOrder struct {
	Values    []float64
	Ascending bool
}

func (SortOrder) sharedValue() {}

// Equal reports whether two orders sort identically.
func (s SortOrder) Equal(o SortOrder) bool {
	if s.Ascending != o.Ascending || len(s.Values) != len(o.Values) {
		return false
	}
	for i, v := range s.Values {
		w := o.Values[i]
		if math.IsNaN(v) && math.IsNaN(w) {
			continue
		}
		if v != w {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (s SortOrder) Clone() SortOrder {
	return SortOrder{Values: slices.Clone(s.Values), Ascending: s.Ascending}
}

// ValueScale is a color-scale domain bound to a colormap.
type ValueScale struct {
	Min      float64
	Max      float64
	Colormap string
}

func (ValueScale) sharedValue() {}

// Equal reports whether two scales are identical.
func (v ValueScale) Equal(o ValueScale) bool {
	return v == o
}

// -----------------------------------------------------------------------------
// Selection events
// -----------------------------------------------------------------------------

// SelectionStartEvent is emitted when a widget starts choosing the widget it
// wants to take a sort order or value scale from.
type SelectionStartEvent struct {
	baseEvent
	Channel      Channel
	SourceID     string // Widget that started the selection
	CollectionID string // Collection the selection is confined to
	WidgetType   string // Set on the value-scale channel; targets must match it
}

// NewSelectionStartEvent creates a SelectionStartEvent.
func NewSelectionStartEvent(ch Channel, sourceID, collectionID, widgetType string) SelectionStartEvent {
	return SelectionStartEvent{
		baseEvent:    newBaseEvent(ch.Type(ActionSelectionStart)),
		Channel:      ch,
		SourceID:     sourceID,
		CollectionID: collectionID,
		WidgetType:   widgetType,
	}
}

// SelectionEndEvent ends a selection. A target that accepted the selection
// fills TargetID, Value and Color; a cancellation leaves them empty.
type SelectionEndEvent struct {
	baseEvent
	Channel      Channel
	CollectionID string
	SourceID     string // Widget whose selection ends
	TargetID     string // Widget that was clicked and now donates its value
	Value        SharedValue
	Color        palette.Color
}

// Cancelled reports whether the selection ended without a target.
func (e SelectionEndEvent) Cancelled() bool {
	return e.TargetID == ""
}

// NewSelectionEndEvent creates an accepting SelectionEndEvent.
func NewSelectionEndEvent(ch Channel, collectionID, sourceID, targetID string, value SharedValue, color palette.Color) SelectionEndEvent {
	return SelectionEndEvent{
		baseEvent:    newBaseEvent(ch.Type(ActionSelectionEnd)),
		Channel:      ch,
		CollectionID: collectionID,
		SourceID:     sourceID,
		TargetID:     targetID,
		Value:        value,
		Color:        color,
	}
}

// NewSelectionCancelEvent creates a SelectionEndEvent without a target.
func NewSelectionCancelEvent(ch Channel, collectionID, sourceID string) SelectionEndEvent {
	return SelectionEndEvent{
		baseEvent:    newBaseEvent(ch.Type(ActionSelectionEnd)),
		Channel:      ch,
		CollectionID: collectionID,
		SourceID:     sourceID,
	}
}

// -----------------------------------------------------------------------------
// Sharing events
// -----------------------------------------------------------------------------

// UpdateSharingEvent is emitted by a donor whenever the value it shares changes.
type UpdateSharingEvent struct {
	baseEvent
	Channel      Channel
	CollectionID string
	SourceID     string // Donor widget
	Value        SharedValue
}

// NewUpdateSharingEvent creates an UpdateSharingEvent.
func NewUpdateSharingEvent(ch Channel, collectionID, sourceID string, value SharedValue) UpdateSharingEvent {
	return UpdateSharingEvent{
		baseEvent:    newBaseEvent(ch.Type(ActionUpdateSharing)),
		Channel:      ch,
		CollectionID: collectionID,
		SourceID:     sourceID,
		Value:        value,
	}
}

// StopSharingEvent is emitted by a recipient that stops using a donor's value.
type StopSharingEvent struct {
	baseEvent
	Channel      Channel
	CollectionID string
	TargetID     string // Donor the recipient was referencing
}

// NewStopSharingEvent creates a StopSharingEvent.
func NewStopSharingEvent(ch Channel, collectionID, targetID string) StopSharingEvent {
	return StopSharingEvent{
		baseEvent:    newBaseEvent(ch.Type(ActionStopSharing)),
		Channel:      ch,
		CollectionID: collectionID,
		TargetID:     targetID,
	}
}

// -----------------------------------------------------------------------------
// Widget lifecycle events
// -----------------------------------------------------------------------------

// WidgetIDChangeEvent is emitted when a widget is re-keyed.
type WidgetIDChangeEvent struct {
	baseEvent
	CollectionID string
	OldID        string
	NewID        string
}

// NewWidgetIDChangeEvent creates a WidgetIDChangeEvent.
func NewWidgetIDChangeEvent(collectionID, oldID, newID string) WidgetIDChangeEvent {
	return WidgetIDChangeEvent{
		baseEvent:    newBaseEvent(TypeWidgetIDChange),
		CollectionID: collectionID,
		OldID:        oldID,
		NewID:        newID,
	}
}

// SourceDeletionEvent is emitted when a donor is deleted so its recipients
// drop the reference without notifying it.
type SourceDeletionEvent struct {
	baseEvent
	CollectionID string
	SourceID     string
}

// NewSourceDeletionEvent creates a SourceDeletionEvent.
func NewSourceDeletionEvent(collectionID, sourceID string) SourceDeletionEvent {
	return SourceDeletionEvent{
		baseEvent:    newBaseEvent(TypeSourceDeletion),
		CollectionID: collectionID,
		SourceID:     sourceID,
	}
}

// DeleteWidgetEvent asks a widget to tear itself down.
type DeleteWidgetEvent struct {
	baseEvent
	CollectionID string
	ID           string
}

// NewDeleteWidgetEvent creates a DeleteWidgetEvent.
func NewDeleteWidgetEvent(collectionID, id string) DeleteWidgetEvent {
	return DeleteWidgetEvent{
		baseEvent:    newBaseEvent(TypeDeleteWidget),
		CollectionID: collectionID,
		ID:           id,
	}
}

// SerializeEvent asks every widget to persist its visual state.
type SerializeEvent struct {
	baseEvent
}

// NewSerializeEvent creates a SerializeEvent.
func NewSerializeEvent() SerializeEvent {
	return SerializeEvent{baseEvent: newBaseEvent(TypeSerialize)}
}

// -----------------------------------------------------------------------------
// Pointer events
// -----------------------------------------------------------------------------

// ClickEvent is a click that landed on a widget. CollectionID and WidgetID
// are empty for a click on the background.
type ClickEvent struct {
	baseEvent
	CollectionID string
	WidgetID     string
}

// OnBackground reports whether the click missed every widget.
func (e ClickEvent) OnBackground() bool {
	return e.WidgetID == ""
}

// PublishClick delivers a click the way a browser does: first to the widget
// that was hit (ui.click), then to document level listeners
// (ui.document-click). Pass empty ids for a background click.
func PublishClick(bus *Bus, collectionID, widgetID string) {
	bus.Publish(ClickEvent{
		baseEvent:    newBaseEvent(TypeClick),
		CollectionID: collectionID,
		WidgetID:     widgetID,
	})
	bus.Publish(ClickEvent{
		baseEvent:    newBaseEvent(TypeDocumentClick),
		CollectionID: collectionID,
		WidgetID:     widgetID,
	})
}
