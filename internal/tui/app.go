// Package tui is an interactive console over a session. Every widget is a
// tile; key presses stand in for the clicks of the linking protocol.
package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hicognition/hicolink/internal/session"
)

// Options configures the console.
type Options struct {
	// SnapshotPath is where the snapshot key writes the layout
	SnapshotPath string
	// Width and Height seed the layout before the first resize message
	Width  int
	Height int
	// AltScreen runs the program in the alternate screen buffer
	AltScreen bool
}

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	bridge  *Bridge
	opts    Options
}

// New creates a console over s. bridge must be the notifier and change hook
// s was created with, or nil.
func New(s *session.Session, bridge *Bridge, opts Options) *App {
	return &App{
		model:  NewModel(s, opts),
		bridge: bridge,
		opts:   opts,
	}
}

// Run starts the console and blocks until it quits.
func (a *App) Run(opts ...tea.ProgramOption) error {
	if a.opts.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	a.program = tea.NewProgram(a.model, opts...)
	if a.bridge != nil {
		a.bridge.Attach(a.program)
	}

	// Quit cleanly on termination so the caller can still write a snapshot
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok && a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	_, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)
	return err
}
