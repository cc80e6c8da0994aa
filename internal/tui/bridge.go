package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hicognition/hicolink/internal/notify"
)

// changedMsg tells the model that widgets changed outside a key press, for
// example after the data watcher reloaded a file.
type changedMsg struct{}

// noticeMsg carries a notice raised by the session.
type noticeMsg notify.Notice

// Bridge forwards session callbacks into a running program. It exists
// before the program does, so it can be handed to session.New; messages
// that arrive before Attach are dropped except for the latest notice.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	pending *notify.Notice
}

// NewBridge returns an unattached Bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach starts forwarding to p and replays a notice raised before.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	if pending != nil {
		b.send(noticeMsg(*pending))
	}
}

// Notify implements notify.Sink.
func (b *Bridge) Notify(n notify.Notice) {
	b.mu.Lock()
	if b.program == nil {
		b.pending = &n
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.send(noticeMsg(n))
}

// Changed is the session change hook.
func (b *Bridge) Changed() {
	b.send(changedMsg{})
}

// send never blocks the caller: session callbacks may run inside Update,
// where a synchronous Send would deadlock the event loop.
func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}
