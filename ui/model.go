// Package ui is a thin terminal front end over the playback core. It acts
// as the external render collaborator: it polls the controller's session
// snapshot and latest spectrum frame on a tick, and sends discrete
// transport commands back through the command queue.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flntfnd/auric-tui/player"
)

const (
	tickRate  = 50 * time.Millisecond
	seekStep  = 5 * time.Second
	volStep   = 0.05
	plVisible = 5
)

type tickMsg time.Time

// Model is the Bubbletea model. It holds only presentation state; all
// playback state lives behind the controller.
type Model struct {
	ctrl     *player.Controller
	plCursor int
	plScroll int
	lastIdx  int
	titleOff int
	quitting bool
	width    int
	height   int
}

// NewModel creates a Model wired to the given controller.
func NewModel(ctrl *player.Controller) Model {
	return Model{ctrl: ctrl, lastIdx: -1}
}

// Init starts the poll timer and requests the terminal size.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.WindowSize())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses, ticks, and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.titleOff++
		m.followPlayback()
		return m, tickCmd()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true

	case " ":
		snap := m.ctrl.Snapshot()
		switch snap.State {
		case player.StatePlaying, player.StateBuffering:
			m.ctrl.Do(player.Pause())
		default:
			m.ctrl.Do(player.Resume())
		}

	case "enter":
		m.ctrl.Do(player.Play(m.plCursor))

	case "x":
		m.ctrl.Do(player.Stop())

	case ">", "n":
		m.ctrl.Do(player.Next())

	case "<", "b":
		m.ctrl.Do(player.Prev())

	case "right":
		m.ctrl.Do(player.Seek(m.ctrl.Snapshot().Position + seekStep))

	case "left":
		m.ctrl.Do(player.Seek(m.ctrl.Snapshot().Position - seekStep))

	case "+", "=":
		m.ctrl.Do(player.SetVolume(m.ctrl.Snapshot().Volume + volStep))

	case "-":
		m.ctrl.Do(player.SetVolume(m.ctrl.Snapshot().Volume - volStep))

	case "s":
		m.ctrl.Do(player.ToggleShuffle())

	case "r":
		m.ctrl.Do(player.CycleRepeat())

	case "v":
		m.ctrl.Do(player.ToggleSpectrum())

	case "up", "k":
		if m.plCursor > 0 {
			m.plCursor--
			m.adjustScroll()
		}

	case "down", "j":
		if m.plCursor < m.ctrl.Queue().Len()-1 {
			m.plCursor++
			m.adjustScroll()
		}
	}
}

// followPlayback moves the cursor when playback advances to another track.
func (m *Model) followPlayback() {
	snap := m.ctrl.Snapshot()
	if snap.TrackIndex >= 0 && snap.TrackIndex != m.lastIdx {
		m.lastIdx = snap.TrackIndex
		m.plCursor = snap.TrackIndex
		m.titleOff = 0
		m.adjustScroll()
	}
}

// adjustScroll keeps plCursor visible in the playlist view.
func (m *Model) adjustScroll() {
	if m.plCursor < m.plScroll {
		m.plScroll = m.plCursor
	}
	if m.plCursor >= m.plScroll+plVisible {
		m.plScroll = m.plCursor - plVisible + 1
	}
}
