// Command auric is a terminal music player front end over the playback
// core in this module. It fills the external-collaborator roles itself:
// file arguments stand in for the track library, and the bubbletea UI
// polls session snapshots and sends transport commands.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flntfnd/auric-tui/config"
	"github.com/flntfnd/auric-tui/decode"
	"github.com/flntfnd/auric-tui/player"
	"github.com/flntfnd/auric-tui/playlist"
	"github.com/flntfnd/auric-tui/sink"
	"github.com/flntfnd/auric-tui/ui"
)

func run() error {
	if len(os.Args) < 2 {
		return errors.New("usage: auric <file> [file ...]")
	}

	// Expand shell globs that may not have been expanded by the shell
	var files []string
	for _, arg := range os.Args[1:] {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			files = append(files, arg)
		} else {
			files = append(files, matches...)
		}
	}

	pl := playlist.New()
	for _, f := range files {
		if !decode.Supported(f) {
			fmt.Fprintf(os.Stderr, "skipping %s: unsupported format\n", f)
			continue
		}
		pl.Add(playlist.TrackFromPath(f))
	}
	if pl.Len() == 0 {
		return errors.New("no playable files")
	}

	cfg, err := config.Load(os.Getenv("AURIC_CONFIG"))
	if err != nil {
		return err
	}

	// Keep diagnostics out of the TUI: log to a file when asked for,
	// discard otherwise.
	logDst := io.Discard
	if path := os.Getenv("AURIC_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logDst = f
	}
	log := slog.New(slog.NewTextHandler(logDst, nil))

	ctrl := player.New(pl, sink.NewOto(), player.Config{
		SampleRate:        cfg.SampleRate,
		RingCapacity:      cfg.RingCapacity,
		LowWater:          cfg.LowWater,
		BatchSize:         cfg.BatchSize,
		ResampleQuality:   cfg.ResampleQuality,
		StallTimeout:      cfg.StallTimeout,
		UnderrunTolerance: cfg.UnderrunTolerance,
		InitialVolume:     cfg.InitialVolume,
		SpectrumFFTSize:   cfg.SpectrumFFTSize,
		SpectrumBands:     cfg.SpectrumBands,
		SpectrumFPS:       cfg.SpectrumFPS,
	}, log)
	ctrl.Start()
	defer ctrl.Close()

	m := ui.NewModel(ctrl)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
