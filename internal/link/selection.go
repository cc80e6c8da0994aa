package link

import (
	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/logging"
	"github.com/hicognition/hicolink/internal/notify"
	"github.com/hicognition/hicolink/internal/palette"
)

// Options identifies the widget a link belongs to and the shared services
// it talks to.
type Options struct {
	Bus *event.Bus
	// Group receives the link's subscriptions. When nil the link uses a
	// private group and releases it on Close.
	Group *event.Group
	// Pool hands out indicator colors for this channel.
	Pool     *palette.Pool
	Notifier notify.Sink
	Logger   *logging.Logger

	CollectionID string
	WidgetID     string
	WidgetType   string
}

// behavior is the channel specific half of a link.
type behavior interface {
	// current returns the value the widget displays and would share.
	current() (event.SharedValue, bool)
	// adopt displays a donor's value. It returns false, leaving the widget
	// unchanged, when the value cannot be used.
	adopt(v event.SharedValue) bool
	// revert drops an adopted value.
	revert()
}

// selection is the state machine both channels share.
type selection struct {
	ch         event.Channel
	bus        *event.Bus
	group      *event.Group
	ownGroup   bool
	pool       *palette.Pool
	notifier   notify.Sink
	baseLogger *logging.Logger
	logger     *logging.Logger

	collectionID string
	widgetID     string
	widgetType   string
	// matchType restricts targets to widgets of the initiator's type
	matchType bool

	rel Relationship
	// pendingSource is the initiator while rel.State is SelectableTarget
	pendingSource string
	click         event.Subscription
	closed        bool

	b behavior
}

func newSelection(ch event.Channel, opts Options, matchType bool, b behavior) *selection {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}
	group := opts.Group
	ownGroup := false
	if group == nil {
		group = event.NewGroup(opts.Bus)
		ownGroup = true
	}

	base := logger.WithCollection(opts.CollectionID).WithChannel(string(ch))
	s := &selection{
		ch:           ch,
		bus:          opts.Bus,
		group:        group,
		ownGroup:     ownGroup,
		pool:         opts.Pool,
		notifier:     notifier,
		baseLogger:   base,
		logger:       base.WithWidget(opts.WidgetID),
		collectionID: opts.CollectionID,
		widgetID:     opts.WidgetID,
		widgetType:   opts.WidgetType,
		matchType:    matchType,
		b:            b,
	}
	s.mount()
	return s
}

func (s *selection) mount() {
	s.group.Subscribe(s.ch.Type(event.ActionSelectionStart), s.onSelectionStart)
	s.group.Subscribe(s.ch.Type(event.ActionSelectionEnd), s.onSelectionEnd)
	s.group.Subscribe(s.ch.Type(event.ActionUpdateSharing), s.onUpdateSharing)
	s.group.Subscribe(s.ch.Type(event.ActionStopSharing), s.onStopSharing)
	s.group.Subscribe(event.TypeWidgetIDChange, s.onWidgetIDChange)
	s.group.Subscribe(event.TypeSourceDeletion, s.onSourceDeletion)
	s.group.Subscribe(event.TypeClick, s.onClick)
}

// Channel returns the channel the link runs on.
func (s *selection) Channel() event.Channel { return s.ch }

// WidgetID returns the id of the widget the link belongs to.
func (s *selection) WidgetID() string { return s.widgetID }

// CollectionID returns the collection of the widget.
func (s *selection) CollectionID() string { return s.collectionID }

// Relationship returns a copy of the widget's relationship state.
func (s *selection) Relationship() Relationship { return s.rel }

// StartShare starts choosing the widget to take the value from. The next
// click either lands on a compatible widget of the same collection, which
// then becomes the donor, or cancels the selection. Starting while already
// selecting does nothing.
func (s *selection) StartShare() error {
	if s.closed {
		return s.linkError("cannot start sharing", errors.ErrLinkClosed)
	}
	if s.rel.State == SelectingDonor {
		return nil
	}

	s.rel.State = SelectingDonor
	s.pendingSource = ""
	s.logger.Debug("selection started")

	widgetType := ""
	if s.matchType {
		widgetType = s.widgetType
	}
	s.bus.Publish(event.NewSelectionStartEvent(s.ch, s.widgetID, s.collectionID, widgetType))

	if s.rel.State == SelectingDonor {
		s.click = s.group.SubscribeOnce(event.TypeDocumentClick, s.onDocumentClick)
	}
	return nil
}

// CancelShare abandons a pending selection.
func (s *selection) CancelShare() error {
	if s.rel.State != SelectingDonor {
		return s.linkError("cannot cancel selection", errors.ErrNotSelecting)
	}
	s.bus.Publish(event.NewSelectionCancelEvent(s.ch, s.collectionID, s.widgetID))
	return nil
}

// StopShare makes a recipient fall back to its own value and tells the
// donor it lost a recipient.
func (s *selection) StopShare() error {
	if s.closed {
		return s.linkError("cannot stop sharing", errors.ErrLinkClosed)
	}
	if !s.rel.IsRecipient() {
		return s.linkError("cannot stop sharing", errors.ErrNotSharing)
	}
	s.stop(true)
	return nil
}

// Close tears the link down: a pending selection is cancelled, a recipient
// stops sharing, and a donor publishes source-deletion and releases its
// indicator color. The link ignores every signal afterwards.
func (s *selection) Close() {
	if s.closed {
		return
	}
	if s.rel.State == SelectingDonor {
		s.bus.Publish(event.NewSelectionCancelEvent(s.ch, s.collectionID, s.widgetID))
	}
	if s.rel.IsRecipient() {
		s.stop(true)
	}
	if s.rel.IsDonor() {
		s.bus.Publish(event.NewSourceDeletionEvent(s.collectionID, s.widgetID))
		s.releaseColor()
		s.rel.RecipientCount = 0
	}
	s.rel.State = Idle
	s.pendingSource = ""
	s.disarm()
	if s.ownGroup {
		s.group.Close()
	}
	s.closed = true
	s.logger.Debug("link closed")
}

// stop drops the donor reference. notifyDonor is false when the donor is
// already gone.
func (s *selection) stop(notifyDonor bool) {
	before, hadBefore := s.b.current()
	target := s.rel.TargetID

	s.rel.TargetID = ""
	s.rel.TargetColor = palette.None
	s.b.revert()
	s.logger.Debug("sharing stopped", "target_id", target, "notify_donor", notifyDonor)

	if notifyDonor {
		s.bus.Publish(event.NewStopSharingEvent(s.ch, s.collectionID, target))
	}
	s.propagate(before, hadBefore)
}

// propagate publishes update-sharing when this widget is a donor and what
// it displays differs from before. Comparing first keeps chains of
// recipients from re-broadcasting unchanged values.
func (s *selection) propagate(before event.SharedValue, hadBefore bool) {
	if s.closed || !s.rel.IsDonor() {
		return
	}
	after, ok := s.b.current()
	if !ok || (hadBefore && sameValue(before, after)) {
		return
	}
	s.logger.Debug("sharing update", "recipients", s.rel.RecipientCount)
	s.bus.Publish(event.NewUpdateSharingEvent(s.ch, s.collectionID, s.widgetID, after))
}

// changed runs fn and propagates the resulting change of the shared value.
func (s *selection) changed(fn func()) {
	before, hadBefore := s.b.current()
	fn()
	s.propagate(before, hadBefore)
}

func (s *selection) disarm() {
	s.click.Unsubscribe()
	s.click = event.Subscription{}
}

func (s *selection) releaseColor() {
	if s.rel.IndicatorColor == palette.None {
		return
	}
	s.pool.Release(s.rel.IndicatorColor)
	s.logger.Debug("indicator color released", "color", string(s.rel.IndicatorColor))
	s.rel.IndicatorColor = palette.None
}

func (s *selection) linkError(msg string, cause error) *errors.LinkError {
	return errors.NewLinkError(msg, cause).
		WithCollection(s.collectionID).
		WithWidget(s.widgetID).
		WithChannel(string(s.ch))
}

func (s *selection) report(err *errors.LinkError) {
	s.logger.Warn(err.Error())
	s.notifier.Notify(notify.FromError(err))
}

// -----------------------------------------------------------------------------
// Signal handlers
// -----------------------------------------------------------------------------

func (s *selection) onSelectionStart(e event.Event) {
	ev, ok := e.(event.SelectionStartEvent)
	if !ok || s.closed || ev.SourceID == s.widgetID && ev.CollectionID == s.collectionID {
		return
	}

	// Only one selection runs at a time on a channel.
	if s.rel.State == SelectingDonor {
		s.logger.Debug("selection superseded", "source_id", ev.SourceID)
		s.bus.Publish(event.NewSelectionCancelEvent(s.ch, s.collectionID, s.widgetID))
	}

	if ev.CollectionID != s.collectionID {
		return
	}
	if s.matchType && ev.WidgetType != s.widgetType {
		return
	}
	s.rel.State = SelectableTarget
	s.pendingSource = ev.SourceID
}

func (s *selection) onClick(e event.Event) {
	ev, ok := e.(event.ClickEvent)
	if !ok || s.closed || ev.OnBackground() {
		return
	}
	if ev.CollectionID != s.collectionID || ev.WidgetID != s.widgetID || s.rel.State != SelectableTarget {
		return
	}
	s.donate(s.pendingSource)
}

// donate accepts the pending selection of source with this widget as donor.
func (s *selection) donate(source string) {
	value, ok := s.b.current()
	if !ok {
		s.report(s.linkError("nothing to share", errors.ErrNoData))
		s.bus.Publish(event.NewSelectionCancelEvent(s.ch, s.collectionID, source))
		return
	}

	if s.rel.IndicatorColor == palette.None {
		color, ok := s.pool.Allocate()
		if !ok {
			s.report(s.linkError("cannot accept selection", errors.ErrPaletteExhausted))
			s.bus.Publish(event.NewSelectionCancelEvent(s.ch, s.collectionID, source))
			return
		}
		s.rel.IndicatorColor = color
	}
	s.rel.RecipientCount++
	s.logger.Debug("recipient added",
		"source_id", source,
		"recipients", s.rel.RecipientCount,
		"color", string(s.rel.IndicatorColor))

	s.bus.Publish(event.NewSelectionEndEvent(s.ch, s.collectionID, source, s.widgetID, value, s.rel.IndicatorColor))
}

func (s *selection) onSelectionEnd(e event.Event) {
	ev, ok := e.(event.SelectionEndEvent)
	if !ok || s.closed || ev.CollectionID != s.collectionID {
		return
	}

	if ev.SourceID != s.widgetID {
		if s.rel.State == SelectableTarget && s.pendingSource == ev.SourceID {
			s.rel.State = Idle
			s.pendingSource = ""
		}
		return
	}

	if s.rel.State != SelectingDonor {
		if !ev.Cancelled() {
			// The donor already counted us; undo that.
			s.logger.Debug("rejecting unexpected selection-end", "target_id", ev.TargetID)
			s.bus.Publish(event.NewStopSharingEvent(s.ch, s.collectionID, ev.TargetID))
		}
		return
	}

	s.rel.State = Idle
	s.disarm()
	if ev.Cancelled() {
		s.logger.Debug("selection cancelled")
		return
	}
	s.receive(ev)
}

// receive makes this widget a recipient of the donor named in ev.
func (s *selection) receive(ev event.SelectionEndEvent) {
	before, hadBefore := s.b.current()

	if old := s.rel.TargetID; old != "" {
		s.rel.TargetID = ""
		s.rel.TargetColor = palette.None
		s.bus.Publish(event.NewStopSharingEvent(s.ch, s.collectionID, old))
	}

	if !s.b.adopt(ev.Value) {
		s.b.revert()
		s.report(s.linkError("cannot share with "+ev.TargetID, errors.ErrIncompatibleTarget).
			WithSeverity(errors.SeverityInfo))
		s.bus.Publish(event.NewStopSharingEvent(s.ch, s.collectionID, ev.TargetID))
		s.propagate(before, hadBefore)
		return
	}

	s.rel.TargetID = ev.TargetID
	s.rel.TargetColor = ev.Color
	s.logger.Debug("selection accepted", "target_id", ev.TargetID, "color", string(ev.Color))
	s.propagate(before, hadBefore)
}

func (s *selection) onDocumentClick(e event.Event) {
	s.click = event.Subscription{}
	if s.closed || s.rel.State != SelectingDonor {
		return
	}
	s.bus.Publish(event.NewSelectionCancelEvent(s.ch, s.collectionID, s.widgetID))
}

func (s *selection) onUpdateSharing(e event.Event) {
	ev, ok := e.(event.UpdateSharingEvent)
	if !ok || s.closed || ev.CollectionID != s.collectionID {
		return
	}
	if !s.rel.IsRecipient() || ev.SourceID != s.rel.TargetID {
		return
	}

	before, hadBefore := s.b.current()
	if !s.b.adopt(ev.Value) {
		s.report(s.linkError("donor "+ev.SourceID+" became incompatible", errors.ErrIncompatibleTarget).
			WithSeverity(errors.SeverityInfo))
		s.stop(true)
		return
	}
	s.propagate(before, hadBefore)
}

func (s *selection) onStopSharing(e event.Event) {
	ev, ok := e.(event.StopSharingEvent)
	if !ok || s.closed || ev.CollectionID != s.collectionID || ev.TargetID != s.widgetID {
		return
	}
	if !s.rel.IsDonor() {
		s.logger.Debug("ignoring stop-sharing without recipients")
		return
	}
	s.rel.RecipientCount--
	s.logger.Debug("recipient removed", "recipients", s.rel.RecipientCount)
	if s.rel.RecipientCount == 0 {
		s.releaseColor()
	}
}

func (s *selection) onWidgetIDChange(e event.Event) {
	ev, ok := e.(event.WidgetIDChangeEvent)
	if !ok || s.closed || ev.CollectionID != s.collectionID {
		return
	}
	if s.widgetID == ev.OldID {
		s.widgetID = ev.NewID
		s.logger = s.baseLogger.WithWidget(ev.NewID)
		s.logger.Debug("widget id changed", "old_id", ev.OldID)
	}
	if s.rel.TargetID == ev.OldID {
		s.rel.TargetID = ev.NewID
	}
	if s.pendingSource == ev.OldID {
		s.pendingSource = ev.NewID
	}
}

func (s *selection) onSourceDeletion(e event.Event) {
	ev, ok := e.(event.SourceDeletionEvent)
	if !ok || s.closed || ev.CollectionID != s.collectionID {
		return
	}
	if s.rel.State == SelectableTarget && s.pendingSource == ev.SourceID {
		s.rel.State = Idle
		s.pendingSource = ""
	}
	if s.rel.IsRecipient() && s.rel.TargetID == ev.SourceID {
		s.stop(false)
	}
}
