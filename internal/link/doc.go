// Package link implements the sharing protocol that lets one widget display
// another widget's row ordering (SortOrderLink) or color scale domain
// (ValueScaleLink).
//
// # Protocol
//
// Both channels run the same selection state machine:
//
//  1. StartShare puts the initiating widget into SelectingDonor and publishes
//     selection-start. Every other compatible widget of the same collection
//     becomes a SelectableTarget. A one-shot document click listener is armed.
//  2. A click on a SelectableTarget makes that widget the donor: it allocates
//     an indicator color when it has none, counts one more recipient and
//     publishes selection-end carrying its current value and color. The
//     initiator adopts the value and records the donor as its TargetID.
//  3. A click that reaches the document without being accepted publishes an
//     empty selection-end, which returns every widget to Idle.
//  4. A donor whose value changes publishes update-sharing. Recipients that
//     reference it re-derive their display and, if they are donors
//     themselves, pass the change on when it altered what they show.
//  5. StopShare drops the donor reference and publishes stop-sharing. The
//     donor decrements its recipient count and releases the indicator color
//     when the count reaches zero.
//
// widget-id-change keeps TargetID references current, and source-deletion
// makes recipients of a deleted donor fall back to their own value without
// notifying it.
//
// # Concurrency
//
// Links are not safe for concurrent use. Handlers run synchronously on the
// publishing goroutine, so callers serialize every operation on the links
// that share a bus.
package link
