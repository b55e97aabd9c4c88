package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/drakeos/drakeos/internal/audio"
	"github.com/drakeos/drakeos/internal/vfs"
	"go.uber.org/zap"
)

// Countdown defaults.
const (
	DefaultCountdownTarget  = "December 31, 2025"
	DefaultCountdownTitle   = "Countdown"
	DefaultCountdownMessage = "Time's up!"
)

var targetLayouts = []string{
	"January 2, 2006",
	"January 2, 2006 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Remaining is a countdown reading.
type Remaining struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Days    int    `json:"days"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
	Done    bool   `json:"done"`
}

// String formats the reading like the countdown display, "12d 03:04:05".
func (r Remaining) String() string {
	if r.Done {
		return r.Message
	}
	return fmt.Sprintf("%dd %02d:%02d:%02d", r.Days, r.Hours, r.Minutes, r.Seconds)
}

// AudioStatus is the music player state shown in an audio window.
type AudioStatus struct {
	Tracks   []audio.Track    `json:"tracks"`
	Current  audio.NowPlaying `json:"current"`
	Playing  bool             `json:"playing"`
	Multiple bool             `json:"multiple"`
}

type countdownConfig struct {
	TargetDate string `json:"targetDate"`
	Title      string `json:"title"`
	Message    string `json:"message"`
}

type audioConfig struct {
	Tracks     []audio.Track `json:"tracks"`
	AssetsPath string        `json:"assetsPath"`
}

// AppRenderer renders .app files. Countdown windows own a ticking timer and
// audio windows own player subscriptions; both are released by Cleanup.
type AppRenderer struct {
	player      *audio.Player
	scheduler   Scheduler
	now         func() time.Time
	onCountdown func(string, Remaining)
	onAudio     func(string, AudioStatus)
	logger      *zap.Logger

	mu       sync.Mutex
	nextID   uint64
	cleanups map[string][]cleanup
}

type cleanup struct {
	id uint64
	fn func()
}

// NewAppRenderer creates an app renderer from opts.
func NewAppRenderer(opts Options) *AppRenderer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Player == nil {
		opts.Player = audio.NewPlayer()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AppRenderer{
		player:      opts.Player,
		scheduler:   opts.Scheduler,
		now:         opts.Now,
		onCountdown: opts.OnCountdown,
		onAudio:     opts.OnAudio,
		logger:      opts.Logger,
		cleanups:    make(map[string][]cleanup),
	}
}

func (a *AppRenderer) Render(file *vfs.Node) (*View, error) {
	switch file.AppType {
	case "countdown":
		return a.renderCountdown(file)
	case "audio":
		return a.renderAudio(file)
	}
	appType := orDefault(file.AppType, "none")
	return &View{
		Kind: KindApp,
		App:  "unknown",
		HTML: `<div class="unknown-app"><p>Unknown application type: ` + html.EscapeString(appType) + `</p></div>`,
	}, nil
}

func (a *AppRenderer) renderCountdown(file *vfs.Node) (*View, error) {
	var cfg countdownConfig
	if err := decodeConfig(file.Config, &cfg); err != nil {
		return nil, err
	}
	title := orDefault(cfg.Title, DefaultCountdownTitle)
	message := orDefault(cfg.Message, DefaultCountdownMessage)
	target, err := parseTarget(orDefault(cfg.TargetDate, DefaultCountdownTarget))
	if err != nil {
		return nil, err
	}

	reading := func() Remaining {
		r := remaining(target, a.now())
		r.Title = title
		r.Message = message
		return r
	}
	first := reading()

	if !first.Done {
		path := file.Path
		id := a.reserve()
		cancel := a.scheduler.Every(time.Second, func() {
			// A tick from a window that was closed must not touch the
			// timer of a window reopened at the same path.
			if !a.owns(path, id) {
				return
			}
			r := reading()
			if a.onCountdown != nil {
				a.onCountdown(path, r)
			}
			if r.Done {
				a.releaseOne(path, id)
			}
		})
		a.trackID(path, id, cancel)
	}

	body := `<div class="countdown-display">` +
		`<div class="countdown-title">` + html.EscapeString(title) + `</div>` +
		fmt.Sprintf(`<div class="countdown-timer">`+
			`<span data-unit="days">%d</span>`+
			`<span data-unit="hours">%02d</span>`+
			`<span data-unit="minutes">%02d</span>`+
			`<span data-unit="seconds">%02d</span></div>`,
			first.Days, first.Hours, first.Minutes, first.Seconds) +
		`<div class="countdown-message"` + hiddenUnless(first.Done) + `>` + html.EscapeString(message) + `</div>` +
		`</div>`

	return &View{
		Kind:      KindApp,
		App:       "countdown",
		Title:     title,
		HTML:      body,
		Countdown: &first,
	}, nil
}

func (a *AppRenderer) renderAudio(file *vfs.Node) (*View, error) {
	var cfg audioConfig
	if err := decodeConfig(file.Config, &cfg); err != nil {
		return nil, err
	}
	tracks := cfg.Tracks
	if len(tracks) == 0 {
		tracks = []audio.Track{{Name: "Unknown"}}
	}

	// Reopening with the same playlist keeps the current position.
	a.player.SetPlaylist(tracks, cfg.AssetsPath)
	if !a.player.IsPlaying() {
		a.player.Play()
	}

	path := file.Path
	status := func() AudioStatus {
		cur, _ := a.player.Current()
		return AudioStatus{
			Tracks:   tracks,
			Current:  cur,
			Playing:  a.player.IsPlaying(),
			Multiple: len(tracks) > 1,
		}
	}
	if a.onAudio != nil {
		a.track(path, a.player.OnStateChange(func(bool) { a.onAudio(path, status()) }))
		a.track(path, a.player.OnTrackChange(func(audio.TrackChange) { a.onAudio(path, status()) }))
	}

	st := status()
	count := "Background Music"
	if st.Multiple {
		count = fmt.Sprintf("Track %d of %d", st.Current.Index+1, len(tracks))
	}
	state := "Paused"
	if st.Playing {
		state = "Now playing"
	}
	body := `<div class="audio-player-app">` +
		`<div class="audio-track-name">` + html.EscapeString(st.Current.Name) + `</div>` +
		`<div class="audio-track-count">` + count + `</div>` +
		`<div class="audio-status">` + state + `</div>` +
		`</div>`

	return &View{
		Kind:  KindApp,
		App:   "audio",
		HTML:  body,
		Audio: &st,
	}, nil
}

func (a *AppRenderer) reserve() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	return a.nextID
}

func (a *AppRenderer) track(path string, cancel func()) {
	a.trackID(path, a.reserve(), cancel)
}

func (a *AppRenderer) trackID(path string, id uint64, cancel func()) {
	a.mu.Lock()
	a.cleanups[path] = append(a.cleanups[path], cleanup{id: id, fn: cancel})
	a.mu.Unlock()
}

// owns reports whether the resource id is still tracked for path.
func (a *AppRenderer) owns(path string, id uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.cleanups[path] {
		if c.id == id {
			return true
		}
	}
	return false
}

// releaseOne cancels a single resource, leaving the rest of the window's
// resources in place.
func (a *AppRenderer) releaseOne(path string, id uint64) {
	a.mu.Lock()
	var fn func()
	kept := a.cleanups[path][:0]
	for _, c := range a.cleanups[path] {
		if c.id == id {
			fn = c.fn
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		delete(a.cleanups, path)
	} else {
		a.cleanups[path] = kept
	}
	a.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (a *AppRenderer) release(path string) {
	a.mu.Lock()
	cs := a.cleanups[path]
	delete(a.cleanups, path)
	a.mu.Unlock()

	for _, c := range cs {
		c.fn()
	}
	if len(cs) > 0 {
		a.logger.Debug("app resources released", zap.String("path", path), zap.Int("count", len(cs)))
	}
}

// Cleanup stops the timers and subscriptions owned by the window at path.
func (a *AppRenderer) Cleanup(path string) {
	a.release(path)
}

// Active reports how many windows hold app resources.
func (a *AppRenderer) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cleanups)
}

func decodeConfig(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid app config: %w", err)
	}
	return nil
}

func parseTarget(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range targetLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid countdown target %q", s)
}

func remaining(target, now time.Time) Remaining {
	diff := target.Sub(now)
	if diff <= 0 {
		return Remaining{Done: true}
	}
	total := int(diff / time.Second)
	return Remaining{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

func hiddenUnless(visible bool) string {
	if visible {
		return ""
	}
	return ` style="display: none;"`
}
