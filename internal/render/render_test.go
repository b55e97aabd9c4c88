package render

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/drakeos/drakeos/internal/audio"
	"github.com/drakeos/drakeos/internal/vfs"
)

type fakeTimer struct {
	fn        func()
	cancelled bool
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{fn: fn}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		t.cancelled = true
		s.mu.Unlock()
	}
}

func (s *fakeScheduler) tick() {
	s.mu.Lock()
	var live []*fakeTimer
	for _, t := range s.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.mu.Unlock()
	for _, t := range live {
		t.fn()
	}
}

func (s *fakeScheduler) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func TestSelect(t *testing.T) {
	tests := []struct {
		node vfs.Node
		want Kind
	}{
		{vfs.Node{Name: "About.md"}, KindMarkdown},
		{vfs.Node{Name: "notes", FileType: "markdown"}, KindMarkdown},
		{vfs.Node{Name: "run.sh"}, KindShell},
		{vfs.Node{Name: "run.BASH"}, KindShell},
		{vfs.Node{Name: "x.md", FileType: "shell"}, KindShell},
		{vfs.Node{Name: "notes.txt"}, KindText},
		{vfs.Node{Name: "github.link"}, KindLink},
		{vfs.Node{Name: "timer.app"}, KindApp},
		{vfs.Node{Name: "backup.tar.gz"}, KindArchive},
		{vfs.Node{Name: "site.zip"}, KindArchive},
		{vfs.Node{Name: "photo.png"}, KindUnknown},
		{vfs.Node{Name: "Makefile"}, KindUnknown},
		{vfs.Node{Name: "x", FileType: "hologram"}, KindUnknown},
	}
	for _, tt := range tests {
		if got := Select(&tt.node); got != tt.want {
			t.Errorf("Select(%s/%s) = %s, want %s", tt.node.Name, tt.node.FileType, got, tt.want)
		}
	}
	if Select(nil) != KindUnknown {
		t.Error("expected nil file to be unknown")
	}
}

func newTestRegistry(sched Scheduler, now time.Time) *Registry {
	return NewRegistry(Options{
		Scheduler: sched,
		Now:       func() time.Time { return now },
	})
}

func TestRenderDocuments(t *testing.T) {
	reg := newTestRegistry(&fakeScheduler{}, time.Now())

	tests := []struct {
		file     vfs.Node
		kind     Kind
		contains string
	}{
		{vfs.Node{Path: "/a.md", Name: "a.md", Content: "# Title"}, KindMarkdown, "Title</h1>"},
		{vfs.Node{Path: "/a.sh", Name: "a.sh", Content: "echo hi"}, KindShell, "echo"},
		{vfs.Node{Path: "/e.sh", Name: "e.sh"}, KindShell, "Empty script"},
		{vfs.Node{Path: "/a.txt", Name: "a.txt", Content: "<b>"}, KindText, "&lt;b&gt;"},
		{vfs.Node{Path: "/e.txt", Name: "e.txt"}, KindText, "No content available."},
		{vfs.Node{Path: "/a.bin", Name: "a.bin", Content: "<raw>"}, KindUnknown, "&lt;raw&gt;"},
		{vfs.Node{Path: "/a.zip", Name: "a.zip"}, KindArchive, "cannot be extracted"},
	}
	for _, tt := range tests {
		view, err := reg.Render(&tt.file)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.file.Name, err)
			continue
		}
		if view.Kind != tt.kind {
			t.Errorf("%s: expected kind %s, got %s", tt.file.Name, tt.kind, view.Kind)
		}
		if view.Path != tt.file.Path {
			t.Errorf("%s: expected path %s, got %s", tt.file.Name, tt.file.Path, view.Path)
		}
		if !strings.Contains(view.HTML, tt.contains) {
			t.Errorf("%s: expected HTML to contain %q, got %q", tt.file.Name, tt.contains, view.HTML)
		}
	}
}

func TestRenderMarkdownTitle(t *testing.T) {
	reg := newTestRegistry(&fakeScheduler{}, time.Now())
	view, err := reg.Render(&vfs.Node{Path: "/About.md", Name: "About.md", Content: "# About Me\n\ntext"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Title != "About Me" {
		t.Errorf("expected title About Me, got %s", view.Title)
	}
	if len(view.TOC) != 1 {
		t.Errorf("expected 1 TOC item, got %d", len(view.TOC))
	}
}

func TestRenderLink(t *testing.T) {
	reg := newTestRegistry(&fakeScheduler{}, time.Now())
	view, err := reg.Render(&vfs.Node{Path: "/gh.link", Name: "gh.link", URL: "https://github.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ExternalURL != "https://github.com" {
		t.Errorf("expected external url, got %q", view.ExternalURL)
	}
	if !strings.Contains(view.HTML, "Opening external link...") {
		t.Errorf("expected default description, got %q", view.HTML)
	}
}

func TestRenderRejectsFolders(t *testing.T) {
	reg := newTestRegistry(&fakeScheduler{}, time.Now())
	_, err := reg.Render(&vfs.Node{Path: "/p", Name: "p", Type: vfs.TypeFolder})
	if !errors.Is(err, vfs.ErrIsAFolder) {
		t.Errorf("expected is a folder, got %v", err)
	}
	if _, err := reg.Render(nil); !errors.Is(err, vfs.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func countdownFile(path, target string) *vfs.Node {
	cfg, _ := json.Marshal(map[string]string{"targetDate": target, "title": "Launch"})
	return &vfs.Node{Path: path, Name: "launch.app", AppType: "countdown", Config: cfg}
}

func TestCountdownTimerCancelledOnCleanup(t *testing.T) {
	sched := &fakeScheduler{}
	now := time.Date(2025, 12, 30, 0, 0, 0, 0, time.Local)
	reg := newTestRegistry(sched, now)

	view, err := reg.Render(countdownFile("/launch.app", "December 31, 2025"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.App != "countdown" || view.Countdown == nil {
		t.Fatalf("expected countdown view, got %+v", view)
	}
	if view.Countdown.Days != 1 || view.Countdown.Hours != 0 {
		t.Errorf("expected 1 day left, got %+v", view.Countdown)
	}
	if view.Title != "Launch" {
		t.Errorf("expected title Launch, got %s", view.Title)
	}
	if sched.live() != 1 {
		t.Fatalf("expected 1 live timer, got %d", sched.live())
	}

	reg.Cleanup("/launch.app")
	if sched.live() != 0 {
		t.Errorf("expected timer cancelled, got %d live", sched.live())
	}
	reg.Cleanup("/launch.app")
}

func TestCountdownCleanupIsPerPath(t *testing.T) {
	sched := &fakeScheduler{}
	reg := newTestRegistry(sched, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))

	reg.Render(countdownFile("/a.app", "December 31, 2025"))
	reg.Render(countdownFile("/b.app", "December 31, 2025"))
	reg.Cleanup("/a.app")
	if sched.live() != 1 {
		t.Errorf("expected the other timer to survive, got %d live", sched.live())
	}
}

func TestCountdownTicksAndStopsWhenDone(t *testing.T) {
	sched := &fakeScheduler{}
	now := time.Date(2025, 12, 30, 23, 59, 58, 0, time.Local)
	var ticks []Remaining
	var mu sync.Mutex
	app := NewAppRenderer(Options{
		Scheduler: sched,
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		},
		OnCountdown: func(path string, r Remaining) { ticks = append(ticks, r) },
	})

	if _, err := app.Render(countdownFile("/c.app", "December 31, 2025")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sched.tick()

	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()
	sched.tick()

	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ticks))
	}
	if ticks[0].Done || ticks[0].Seconds != 2 {
		t.Errorf("unexpected first tick %+v", ticks[0])
	}
	if !ticks[1].Done || ticks[1].String() != DefaultCountdownMessage {
		t.Errorf("expected finished tick, got %+v", ticks[1])
	}
	if sched.live() != 0 || app.Active() != 0 {
		t.Errorf("expected finished countdown to release its timer")
	}
}

func TestStaleTickKeepsReopenedTimer(t *testing.T) {
	sched := &fakeScheduler{}
	now := time.Date(2025, 12, 30, 0, 0, 0, 0, time.Local)
	var mu sync.Mutex
	var ticks int
	app := NewAppRenderer(Options{
		Scheduler: sched,
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		},
		OnCountdown: func(string, Remaining) { ticks++ },
	})

	if _, err := app.Render(countdownFile("/c.app", "December 31, 2025")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sched.mu.Lock()
	stale := sched.timers[0].fn
	sched.mu.Unlock()

	app.Cleanup("/c.app")
	if _, err := app.Render(countdownFile("/c.app", "December 31, 2025")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A tick already in flight for the closed window lands after the target.
	mu.Lock()
	now = now.Add(48 * time.Hour)
	mu.Unlock()
	stale()

	if ticks != 0 {
		t.Errorf("expected stale tick to publish nothing, got %d ticks", ticks)
	}
	if sched.live() != 1 || app.Active() != 1 {
		t.Errorf("expected reopened timer to stay live, got %d live and %d active", sched.live(), app.Active())
	}
}

func TestCountdownExpiredStartsNoTimer(t *testing.T) {
	sched := &fakeScheduler{}
	reg := newTestRegistry(sched, time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local))

	view, err := reg.Render(countdownFile("/old.app", "2020-01-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.Countdown.Done {
		t.Error("expected countdown to be done")
	}
	if sched.live() != 0 {
		t.Errorf("expected no timer, got %d", sched.live())
	}
}

func TestCountdownBadTarget(t *testing.T) {
	reg := newTestRegistry(&fakeScheduler{}, time.Now())
	if _, err := reg.Render(countdownFile("/bad.app", "someday")); err == nil {
		t.Error("expected error for bad target date")
	}
}

func TestAudioAppSubscriptionsReleased(t *testing.T) {
	player := audio.NewPlayer()
	var updates []AudioStatus
	reg := NewRegistry(Options{
		Player:    player,
		Scheduler: &fakeScheduler{},
		OnAudio:   func(path string, s AudioStatus) { updates = append(updates, s) },
	})

	cfg, _ := json.Marshal(map[string]interface{}{
		"tracks": []audio.Track{{Name: "One", File: "one.mp3"}, {Name: "Two", File: "two.mp3"}},
	})
	file := &vfs.Node{Path: "/music_player.app", Name: "music_player.app", AppType: "audio", Config: cfg}

	view, err := reg.Render(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Audio == nil || !view.Audio.Playing || !view.Audio.Multiple {
		t.Fatalf("expected playing multi-track view, got %+v", view.Audio)
	}
	if !strings.Contains(view.HTML, "Track 1 of 2") {
		t.Errorf("expected track count, got %q", view.HTML)
	}

	player.Next()
	if len(updates) != 1 || updates[0].Current.Name != "Two" {
		t.Errorf("expected one update for track Two, got %+v", updates)
	}

	reg.Cleanup(file.Path)
	player.Next()
	player.Pause()
	if len(updates) != 1 {
		t.Errorf("expected no updates after cleanup, got %d", len(updates))
	}
}

func TestUnknownApp(t *testing.T) {
	reg := newTestRegistry(&fakeScheduler{}, time.Now())
	view, err := reg.Render(&vfs.Node{Path: "/x.app", Name: "x.app", AppType: "calculator"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.App != "unknown" || !strings.Contains(view.HTML, "Unknown application type: calculator") {
		t.Errorf("unexpected view %+v", view)
	}
}
