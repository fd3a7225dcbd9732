// Package playlist manages the playback queue: an ordered list of track
// references with shuffle and repeat support.
package playlist

import (
	"math/rand"
	"path/filepath"
	"strings"
	"time"
)

// RepeatMode controls end-of-track resolution.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (r RepeatMode) String() string {
	switch r {
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Off"
	}
}

// Track is a reference to an indexed audio file. Records are supplied by
// the library collaborator and held immutable here; the file is not probed
// until playback, since it may vanish in between.
type Track struct {
	ID         string
	Path       string
	Title      string
	Artist     string
	Duration   time.Duration
	SampleRate int
	Channels   int
	FormatTag  string
}

// TrackFromPath builds a minimal Track from a bare file path, parsing
// "Artist - Title" filenames when present.
func TrackFromPath(path string) Track {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	t := Track{
		ID:        path,
		Path:      path,
		Title:     name,
		FormatTag: strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), "."),
	}
	if parts := strings.SplitN(name, " - ", 2); len(parts) == 2 {
		t.Artist = strings.TrimSpace(parts[0])
		t.Title = strings.TrimSpace(parts[1])
	}
	return t
}

// DisplayName returns a formatted display string for the track.
func (t Track) DisplayName() string {
	if t.Artist != "" {
		return t.Artist + " - " + t.Title
	}
	return t.Title
}

// Playlist is the queue plus its play order. The order slice is always a
// permutation of the track indices: identity while shuffle is off, a
// Fisher-Yates shuffle with the current track pinned first while on.
type Playlist struct {
	tracks  []Track
	order   []int
	pos     int // current position in order
	shuffle bool
	repeat  RepeatMode
}

// New creates an empty Playlist.
func New() *Playlist {
	return &Playlist{}
}

// Add appends tracks to the queue, extending the current order.
func (p *Playlist) Add(tracks ...Track) {
	start := len(p.tracks)
	p.tracks = append(p.tracks, tracks...)
	for i := start; i < len(p.tracks); i++ {
		p.order = append(p.order, i)
	}
}

// Len returns the number of queued tracks.
func (p *Playlist) Len() int { return len(p.tracks) }

// Current returns the currently selected track and its queue index.
func (p *Playlist) Current() (Track, int) {
	if len(p.tracks) == 0 {
		return Track{}, -1
	}
	idx := p.order[p.pos]
	return p.tracks[idx], idx
}

// Index returns the queue index of the current position.
func (p *Playlist) Index() int {
	if len(p.order) == 0 {
		return -1
	}
	return p.order[p.pos]
}

// Next resolves end-of-track: RepeatOne replays the current track
// regardless of shuffle, RepeatAll wraps past the last entry (reshuffling
// when shuffle is on), RepeatOff reports false at the end.
func (p *Playlist) Next() (Track, bool) {
	if len(p.tracks) == 0 {
		return Track{}, false
	}
	if p.repeat == RepeatOne {
		return p.tracks[p.order[p.pos]], true
	}
	return p.Skip()
}

// Skip advances to the next entry in play order, ignoring RepeatOne. Used
// when the current track failed to decode and replaying it would loop on
// the same failure.
func (p *Playlist) Skip() (Track, bool) {
	if len(p.tracks) == 0 {
		return Track{}, false
	}
	if p.pos+1 < len(p.order) {
		p.pos++
		return p.tracks[p.order[p.pos]], true
	}
	if p.repeat == RepeatAll {
		p.pos = 0
		if p.shuffle {
			p.reshuffle()
		}
		return p.tracks[p.order[p.pos]], true
	}
	return Track{}, false
}

// Prev moves to the previous entry, wrapping under RepeatAll.
func (p *Playlist) Prev() (Track, bool) {
	if len(p.tracks) == 0 {
		return Track{}, false
	}
	if p.pos > 0 {
		p.pos--
		return p.tracks[p.order[p.pos]], true
	}
	if p.repeat == RepeatAll {
		p.pos = len(p.order) - 1
		return p.tracks[p.order[p.pos]], true
	}
	return p.tracks[p.order[p.pos]], true
}

// SetIndex moves the current position to the given queue index.
func (p *Playlist) SetIndex(i int) {
	for pos, idx := range p.order {
		if idx == i {
			p.pos = pos
			return
		}
	}
}

// Tracks returns all queued tracks in queue order.
func (p *Playlist) Tracks() []Track { return p.tracks }

// ToggleShuffle flips shuffle mode. Enabling reshuffles with the current
// track pinned first; disabling restores queue order with the position
// preserved on the same track.
func (p *Playlist) ToggleShuffle() {
	p.shuffle = !p.shuffle
	if len(p.tracks) == 0 {
		return
	}
	if p.shuffle {
		p.reshuffle()
		return
	}
	cur := p.order[p.pos]
	p.order = make([]int, len(p.tracks))
	for i := range p.order {
		p.order[i] = i
	}
	p.pos = cur
}

// reshuffle regenerates the permutation, keeping the current track at
// position 0 so playback continues uninterrupted.
func (p *Playlist) reshuffle() {
	cur := p.order[p.pos]
	others := make([]int, 0, len(p.tracks)-1)
	for i := range len(p.tracks) {
		if i != cur {
			others = append(others, i)
		}
	}
	for i := len(others) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		others[i], others[j] = others[j], others[i]
	}
	p.order = append(make([]int, 0, len(p.tracks)), cur)
	p.order = append(p.order, others...)
	p.pos = 0
}

// CycleRepeat cycles Off -> All -> One.
func (p *Playlist) CycleRepeat() {
	p.repeat = (p.repeat + 1) % 3
}

// Shuffled reports whether shuffle is enabled.
func (p *Playlist) Shuffled() bool { return p.shuffle }

// Repeat returns the current repeat mode.
func (p *Playlist) Repeat() RepeatMode { return p.repeat }

// Order returns a copy of the current play-order permutation.
func (p *Playlist) Order() []int {
	out := make([]int, len(p.order))
	copy(out, p.order)
	return out
}
