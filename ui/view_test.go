package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flntfnd/auric-tui/player"
	"github.com/flntfnd/auric-tui/playlist"
	"github.com/flntfnd/auric-tui/sink"
)

func testModel() Model {
	q := playlist.New()
	q.Add(playlist.Track{ID: "a", Path: "a.mp3", Title: "A"})
	return NewModel(player.New(q, sink.NewOto(), player.Config{}, nil))
}

func TestRenderSpectrumDisabled(t *testing.T) {
	m := testModel()
	out := m.renderSpectrum(&player.Session{SpectrumOn: false})
	assert.Contains(t, out, "spectrum off")
}

func TestRenderSpectrumEnabled(t *testing.T) {
	m := testModel()
	out := m.renderSpectrum(&player.Session{SpectrumOn: true})
	assert.NotEmpty(t, out, "an enabled spectrum renders the latest frame")
	assert.NotContains(t, out, "spectrum off")
}
