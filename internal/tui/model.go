package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/notify"
	"github.com/hicognition/hicolink/internal/session"
)

// Model holds the console state. Widget state itself lives in the session;
// the model keeps the latest views of it.
type Model struct {
	session      *session.Session
	keys         KeyMap
	help         help.Model
	input        textinput.Model
	snapshotPath string

	// UI state
	views    []session.View
	focus    int
	width    int
	height   int
	renaming bool
	quitting bool
	notice   notify.Notice
	noticed  bool
}

// NewModel creates a model over s.
func NewModel(s *session.Session, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "new id: "
	ti.CharLimit = 64
	ti.Width = 32

	m := Model{
		session:      s,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		input:        ti,
		snapshotPath: opts.SnapshotPath,
		width:        opts.Width,
		height:       opts.Height,
	}
	m.help.Width = opts.Width
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case changedMsg:
		m.refresh()
		return m, nil

	case noticeMsg:
		m.setNotice(notify.Notice(msg))
		return m, nil

	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil

	case key.Matches(msg, m.keys.Background):
		m.report(m.session.ClickBackground(), "")

	case key.Matches(msg, m.keys.ClearAll):
		m.session.ClearAll()
		m.info("cleared every widget")

	case key.Matches(msg, m.keys.Snapshot):
		m.writeSnapshot()

	default:
		v, ok := m.focused()
		if !ok {
			return m, nil
		}
		m.handleWidgetKey(msg, v)
	}
	m.refresh()
	return m, nil
}

// handleWidgetKey runs the actions that target the focused widget.
func (m *Model) handleWidgetKey(msg tea.KeyMsg, v session.View) {
	cid, id := v.Record.CollectionID, v.Record.ID

	switch {
	case key.Matches(msg, m.keys.ShareSort):
		m.report(m.session.StartShare(event.ChannelSortOrder, cid, id), id+": pick a widget to take its sort order from")

	case key.Matches(msg, m.keys.ShareScale):
		m.report(m.session.StartShare(event.ChannelValueScale, cid, id), id+": pick a widget to take its value scale from")

	case key.Matches(msg, m.keys.Click):
		m.report(m.session.Click(cid, id), "")

	case key.Matches(msg, m.keys.StopSort):
		m.report(m.session.StopShare(event.ChannelSortOrder, cid, id), id+": own sort order")

	case key.Matches(msg, m.keys.StopScale):
		m.report(m.session.StopShare(event.ChannelValueScale, cid, id), id+": own value scale")

	case key.Matches(msg, m.keys.CycleMode):
		mode, err := m.session.CycleSortMode(cid, id)
		m.report(err, fmt.Sprintf("%s: sorting by %s", id, mode))

	case key.Matches(msg, m.keys.Reverse):
		asc, err := m.session.ToggleAscending(cid, id)
		m.report(err, fmt.Sprintf("%s: %s", id, direction(asc)))

	case key.Matches(msg, m.keys.Delete):
		m.report(m.session.DeleteWidget(cid, id), id+": deleted")

	case key.Matches(msg, m.keys.Rename):
		m.renaming = true
		m.input.SetValue(id)
		m.input.CursorEnd()
		m.input.Focus()
	}
}

func (m Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.renaming = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		m.renaming = false
		m.input.Blur()
		if v, ok := m.focused(); ok {
			newID := m.input.Value()
			m.report(m.session.ReassignID(v.Record.CollectionID, v.Record.ID, newID), v.Record.ID+" is now "+newID)
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) writeSnapshot() {
	if m.snapshotPath == "" {
		m.info("no snapshot path configured")
		return
	}
	m.report(m.session.WriteSnapshotFile(m.snapshotPath), "snapshot written to "+m.snapshotPath)
}

// refresh re-reads every view and keeps the focus in range.
func (m *Model) refresh() {
	m.views = m.session.Views()
	if m.focus >= len(m.views) {
		m.focus = len(m.views) - 1
	}
	if m.focus < 0 {
		m.focus = 0
	}
}

func (m *Model) moveFocus(delta int) {
	n := len(m.views)
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
}

func (m Model) focused() (session.View, bool) {
	if m.focus < 0 || m.focus >= len(m.views) {
		return session.View{}, false
	}
	return m.views[m.focus], true
}

// report shows err, or ok when err is nil and ok is not empty.
func (m *Model) report(err error, ok string) {
	if err != nil {
		m.setNotice(notify.FromError(err))
		return
	}
	if ok != "" {
		m.info(ok)
	}
}

func (m *Model) info(msg string) {
	m.setNotice(notify.Info(msg))
}

func (m *Model) setNotice(n notify.Notice) {
	m.notice = n
	m.noticed = true
}

func direction(ascending bool) string {
	if ascending {
		return "ascending"
	}
	return "descending"
}
