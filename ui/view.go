package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/flntfnd/auric-tui/player"
)

const panelWidth = 60 // usable inner width (66 frame - 2 border - 4 padding)

// Unicode block elements for bar height (9 levels including space)
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// View renders the full TUI frame from the latest session snapshot.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.ctrl.Snapshot()

	sections := []string{
		titleStyle.Render("A U R I C"),
		m.renderTrackInfo(snap),
		m.renderTimeStatus(snap),
		"",
		m.renderSpectrum(snap),
		m.renderSeekBar(snap),
		"",
		m.renderVolume(snap),
		"",
		m.renderPlaylistHeader(snap),
		m.renderPlaylist(snap),
		"",
		helpStyle.Render("[Spc]Play [Ent]Sel [<>]Trk [←→]Seek [+-]Vol [s]huf [r]pt [v]is [q]uit"),
	}

	if snap.Err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("ERR: %s", snap.Err)))
	}

	return frameStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderTrackInfo(snap *player.Session) string {
	name := snap.Track.DisplayName()
	if name == "" {
		name = "No track loaded"
	}

	prefix := "♫ "
	maxW := panelWidth - len([]rune(prefix))
	runes := []rune(name)
	if len(runes) <= maxW {
		return trackStyle.Render(prefix + name)
	}

	// Cyclic scrolling for long titles
	padded := append(runes, []rune("  ♫  ")...)
	total := len(padded)
	off := m.titleOff % total
	display := make([]rune, maxW)
	for i := range maxW {
		display[i] = padded[(off+i)%total]
	}
	return trackStyle.Render(prefix + string(display))
}

func (m Model) renderTimeStatus(snap *player.Session) string {
	timeStr := fmt.Sprintf("%02d:%02d / %02d:%02d",
		int(snap.Position.Minutes()), int(snap.Position.Seconds())%60,
		int(snap.Duration.Minutes()), int(snap.Duration.Seconds())%60)

	var status string
	switch snap.State {
	case player.StatePlaying:
		status = statusStyle.Render("▶ Playing")
	case player.StatePaused:
		status = statusStyle.Render("⏸ Paused")
	case player.StateBuffering:
		status = statusStyle.Render("◌ Buffering")
	case player.StateSeeking:
		status = statusStyle.Render("↔ Seeking")
	case player.StateErrored:
		status = errorStyle.Render("✗ Error")
	default:
		status = dimStyle.Render("■ Stopped")
	}

	left := timeStyle.Render(timeStr)
	gap := panelWidth - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + status
}

// renderSpectrum draws the latest analyzer frame as a row of block bars,
// sized to fill the panel.
func (m Model) renderSpectrum(snap *player.Session) string {
	if !snap.SpectrumOn {
		return dimStyle.Render("spectrum off")
	}
	bins := m.ctrl.Spectrum().Bins
	if len(bins) == 0 || panelWidth < len(bins) {
		return ""
	}

	bw := (panelWidth - (len(bins) - 1)) / len(bins)
	if bw < 1 {
		bw = 1
	}

	var sb strings.Builder
	for i, level := range bins {
		idx := int(level * float64(len(barBlocks)-1))
		idx = max(0, min(idx, len(barBlocks)-1))
		block := barBlocks[idx]

		var style lipgloss.Style
		switch {
		case level > 0.75:
			style = specHighStyle
		case level > 0.45:
			style = specMidStyle
		default:
			style = specLowStyle
		}

		sb.WriteString(style.Render(strings.Repeat(block, bw)))
		if i < len(bins)-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func (m Model) renderSeekBar(snap *player.Session) string {
	var progress float64
	if snap.Duration > 0 {
		progress = float64(snap.Position) / float64(snap.Duration)
	}
	progress = max(0, min(1, progress))

	filled := int(progress * float64(panelWidth-1))
	return seekFillStyle.Render(strings.Repeat("━", filled)) +
		seekFillStyle.Render("●") +
		seekDimStyle.Render(strings.Repeat("━", max(0, panelWidth-filled-1)))
}

func (m Model) renderVolume(snap *player.Session) string {
	barW := 22
	filled := int(snap.Volume * float64(barW))
	filled = max(0, min(filled, barW))
	bar := volBarStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barW-filled))
	return labelStyle.Render("VOL ") + bar + dimStyle.Render(fmt.Sprintf(" %3.0f%%", snap.Volume*100))
}

func (m Model) renderPlaylistHeader(snap *player.Session) string {
	shuffle := dimStyle.Render("[Shuffle]")
	if snap.Shuffle {
		shuffle = activeToggle.Render("[Shuffle]")
	}

	repeatStr := fmt.Sprintf("[Repeat: %s]", snap.Repeat)
	if snap.Repeat != 0 {
		repeatStr = activeToggle.Render(repeatStr)
	} else {
		repeatStr = dimStyle.Render(repeatStr)
	}

	return dimStyle.Render("── Playlist ── ") + shuffle + " " + repeatStr + " " + dimStyle.Render("──")
}

func (m Model) renderPlaylist(snap *player.Session) string {
	tracks := m.ctrl.Queue().Tracks()
	if len(tracks) == 0 {
		return dimStyle.Render("  No tracks loaded")
	}

	visible := min(plVisible, len(tracks))
	scroll := m.plScroll
	if scroll+visible > len(tracks) {
		scroll = len(tracks) - visible
	}
	scroll = max(0, scroll)

	lines := make([]string, 0, visible)
	for i := scroll; i < scroll+visible && i < len(tracks); i++ {
		prefix := "  "
		style := playlistItemStyle

		if i == snap.TrackIndex && snap.State == player.StatePlaying {
			prefix = "▶ "
			style = playlistActiveStyle
		}
		if i == m.plCursor {
			style = playlistSelectedStyle
		}

		name := tracks[i].DisplayName()
		maxW := panelWidth - 6
		nameRunes := []rune(name)
		if len(nameRunes) > maxW {
			name = string(nameRunes[:maxW-1]) + "…"
		}

		lines = append(lines, style.Render(fmt.Sprintf("%s%d. %s", prefix, i+1, name)))
	}

	return strings.Join(lines, "\n")
}
