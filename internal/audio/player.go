// Package audio models the desktop's background music service: a playlist
// with a play/pause state and observers. It tracks state only; playback
// itself happens in the client.
package audio

import (
	"sync"

	"github.com/drakeos/drakeos/internal/events"
)

// DefaultAssetsPath prefixes track files when a playlist names none.
const DefaultAssetsPath = "assets/"

// DefaultVolume is the starting volume.
const DefaultVolume = 0.3

// Track is one playlist entry.
type Track struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// NowPlaying describes the selected track.
type NowPlaying struct {
	Track
	Index int    `json:"index"`
	Total int    `json:"total"`
	Src   string `json:"src"`
}

// TrackChange is sent to track observers.
type TrackChange struct {
	Track Track
	Index int
}

// Player is the audio service. It is safe for concurrent use.
type Player struct {
	mu         sync.Mutex
	tracks     []Track
	index      int
	assetsPath string
	playing    bool
	volume     float64

	stateListeners events.Listeners[bool]
	trackListeners events.Listeners[TrackChange]
}

// NewPlayer creates a paused player with an empty playlist.
func NewPlayer() *Player {
	return &Player{
		assetsPath: DefaultAssetsPath,
		volume:     DefaultVolume,
	}
}

// SetPlaylist loads tracks. Setting the playlist that is already loaded
// keeps the current position.
func (p *Player) SetPlaylist(tracks []Track, assetsPath string) {
	if assetsPath == "" {
		assetsPath = DefaultAssetsPath
	}

	p.mu.Lock()
	if len(tracks) > 0 && samePlaylist(p.tracks, tracks) {
		p.mu.Unlock()
		return
	}
	p.tracks = append([]Track(nil), tracks...)
	p.assetsPath = assetsPath
	p.index = 0
	var change *TrackChange
	if len(p.tracks) > 0 {
		change = &TrackChange{Track: p.tracks[0], Index: 0}
	}
	p.mu.Unlock()

	if change != nil {
		p.trackListeners.Notify(*change)
	}
}

func samePlaylist(a, b []Track) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].File != b[i].File {
			return false
		}
	}
	return true
}

// Current returns the selected track, or false with an empty playlist.
func (p *Player) Current() (NowPlaying, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tracks) == 0 {
		return NowPlaying{}, false
	}
	t := p.tracks[p.index]
	return NowPlaying{
		Track: t,
		Index: p.index,
		Total: len(p.tracks),
		Src:   p.assetsPath + t.File,
	}, true
}

// Play starts playback.
func (p *Player) Play() {
	p.setPlaying(true)
}

// Pause stops playback.
func (p *Player) Pause() {
	p.setPlaying(false)
}

// Toggle flips between playing and paused.
func (p *Player) Toggle() {
	p.mu.Lock()
	next := !p.playing
	p.mu.Unlock()
	p.setPlaying(next)
}

func (p *Player) setPlaying(playing bool) {
	p.mu.Lock()
	if p.playing == playing {
		p.mu.Unlock()
		return
	}
	p.playing = playing
	p.mu.Unlock()
	p.stateListeners.Notify(playing)
}

// IsPlaying reports whether playback is running.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Next selects the following track, wrapping at the end.
func (p *Player) Next() {
	p.step(1)
}

// Prev selects the preceding track, wrapping at the start.
func (p *Player) Prev() {
	p.step(-1)
}

// Ended is called when the current track finishes; it advances.
func (p *Player) Ended() {
	p.step(1)
}

func (p *Player) step(delta int) {
	p.mu.Lock()
	n := len(p.tracks)
	if n == 0 {
		p.mu.Unlock()
		return
	}
	p.index = ((p.index+delta)%n + n) % n
	change := TrackChange{Track: p.tracks[p.index], Index: p.index}
	p.mu.Unlock()

	p.trackListeners.Notify(change)
}

// SetVolume sets the volume, clamped to [0, 1].
func (p *Player) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	p.mu.Lock()
	p.volume = level
	p.mu.Unlock()
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// OnStateChange registers fn for play/pause changes.
func (p *Player) OnStateChange(fn func(playing bool)) (unsubscribe func()) {
	return p.stateListeners.Subscribe(fn)
}

// OnTrackChange registers fn for track selection changes.
func (p *Player) OnTrackChange(fn func(TrackChange)) (unsubscribe func()) {
	return p.trackListeners.Subscribe(fn)
}
