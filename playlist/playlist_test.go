package playlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeTracks() *Playlist {
	p := New()
	p.Add(
		Track{ID: "a", Path: "/music/a.mp3", Title: "A"},
		Track{ID: "b", Path: "/music/b.mp3", Title: "B"},
		Track{ID: "c", Path: "/music/c.mp3", Title: "C"},
	)
	return p
}

func TestTrackFromPath(t *testing.T) {
	tr := TrackFromPath("/music/Boards of Canada - Roygbiv.flac")
	assert.Equal(t, "Boards of Canada", tr.Artist)
	assert.Equal(t, "Roygbiv", tr.Title)
	assert.Equal(t, "flac", tr.FormatTag)
	assert.Equal(t, "Boards of Canada - Roygbiv", tr.DisplayName())

	tr = TrackFromPath("/music/untitled.wav")
	assert.Empty(t, tr.Artist)
	assert.Equal(t, "untitled", tr.Title)
	assert.Equal(t, "untitled", tr.DisplayName())
}

func TestNextRepeatOff(t *testing.T) {
	p := threeTracks()

	tr, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, "b", tr.ID)

	tr, ok = p.Next()
	require.True(t, ok)
	assert.Equal(t, "c", tr.ID)

	_, ok = p.Next()
	assert.False(t, ok, "queue should end after the last track")
}

func TestNextRepeatAllWraps(t *testing.T) {
	p := threeTracks()
	p.CycleRepeat() // All

	seen := []string{}
	for range 6 {
		tr, ok := p.Next()
		require.True(t, ok)
		seen = append(seen, tr.ID)
	}
	assert.Equal(t, []string{"b", "c", "a", "b", "c", "a"}, seen)
}

func TestNextRepeatOneReplays(t *testing.T) {
	p := threeTracks()
	p.CycleRepeat() // All
	p.CycleRepeat() // One

	for range 3 {
		tr, ok := p.Next()
		require.True(t, ok)
		assert.Equal(t, "a", tr.ID)
	}
	_, idx := p.Current()
	assert.Equal(t, 0, idx)
}

func TestSkipIgnoresRepeatOne(t *testing.T) {
	p := threeTracks()
	p.CycleRepeat()
	p.CycleRepeat() // One

	tr, ok := p.Skip()
	require.True(t, ok)
	assert.Equal(t, "b", tr.ID, "Skip must advance even under repeat-one")

	p.Skip()
	_, ok = p.Skip()
	assert.False(t, ok, "repeat-one does not wrap at the end")
}

func TestPrev(t *testing.T) {
	p := threeTracks()
	p.SetIndex(2)

	tr, ok := p.Prev()
	require.True(t, ok)
	assert.Equal(t, "b", tr.ID)

	p.Prev()
	tr, ok = p.Prev()
	require.True(t, ok)
	assert.Equal(t, "a", tr.ID, "Prev at the start stays on the first track")

	p.CycleRepeat() // All
	tr, ok = p.Prev()
	require.True(t, ok)
	assert.Equal(t, "c", tr.ID, "repeat-all wraps Prev to the end")
}

func TestShuffleIsPermutation(t *testing.T) {
	p := New()
	for i := range 20 {
		p.Add(Track{ID: string(rune('a' + i)), Duration: time.Minute})
	}
	p.SetIndex(7)
	p.ToggleShuffle()

	order := p.Order()
	require.Len(t, order, 20)
	assert.Equal(t, 7, order[0], "current track is pinned first")

	seen := make(map[int]bool, len(order))
	for _, idx := range order {
		assert.False(t, seen[idx], "index %d appears twice", idx)
		seen[idx] = true
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 20)
	}
}

func TestShuffleOffRestoresOrder(t *testing.T) {
	p := threeTracks()
	p.ToggleShuffle()
	p.Next() // move off the pinned track (needs repeat-off advance room)

	cur, _ := p.Current()
	p.ToggleShuffle()

	assert.Equal(t, []int{0, 1, 2}, p.Order())
	after, idx := p.Current()
	assert.Equal(t, cur.ID, after.ID, "position stays on the same track")
	assert.Equal(t, idx, p.Index())
}

func TestShuffleRepeatAllReshufflesOnWrap(t *testing.T) {
	p := threeTracks()
	p.CycleRepeat() // All
	p.ToggleShuffle()

	for range 2 {
		_, ok := p.Next()
		require.True(t, ok)
	}
	// The wrap regenerates the permutation with the new current pinned.
	tr, ok := p.Next()
	require.True(t, ok)
	order := p.Order()
	assert.Equal(t, tr.ID, p.Tracks()[order[0]].ID)
	cur, _ := p.Current()
	assert.Equal(t, tr.ID, cur.ID)
}

func TestEmptyPlaylist(t *testing.T) {
	p := New()
	_, idx := p.Current()
	assert.Equal(t, -1, idx)
	_, ok := p.Next()
	assert.False(t, ok)
	_, ok = p.Prev()
	assert.False(t, ok)
	p.ToggleShuffle() // must not panic
}

func TestCycleRepeat(t *testing.T) {
	p := New()
	assert.Equal(t, RepeatOff, p.Repeat())
	p.CycleRepeat()
	assert.Equal(t, RepeatAll, p.Repeat())
	p.CycleRepeat()
	assert.Equal(t, RepeatOne, p.Repeat())
	p.CycleRepeat()
	assert.Equal(t, RepeatOff, p.Repeat())
}
