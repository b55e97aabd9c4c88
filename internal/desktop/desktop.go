// Package desktop is the navigation controller tying the tree, the window
// manager, the renderers, the shell and the console together. A Desktop is
// not safe for concurrent use; callers serialize access to it.
package desktop

import (
	"time"

	"github.com/drakeos/drakeos/internal/audio"
	"github.com/drakeos/drakeos/internal/events"
	"github.com/drakeos/drakeos/internal/metrics"
	"github.com/drakeos/drakeos/internal/render"
	"github.com/drakeos/drakeos/internal/shell"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/vpath"
	"github.com/drakeos/drakeos/internal/window"
	"go.uber.org/zap"
)

// Version is shown in the boot banner.
const Version = "2.0"

// Config holds the desktop identity and layout.
type Config struct {
	Home     string
	User     string
	Hostname string
	Viewport window.Viewport
	Window   window.Options
	Now      func() time.Time

	// MusicPlayer is the path of the audio app; defaults to
	// <home>/Applications/music_player.app.
	MusicPlayer  string
	ConsoleLines int
}

func (c *Config) setDefaults() {
	if c.Home == "" {
		c.Home = "/home/drake"
	}
	c.Home = vpath.Normalize(c.Home)
	if c.Window == (window.Options{}) {
		c.Window = window.DefaultOptions()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.MusicPlayer == "" {
		c.MusicPlayer = vpath.Join(c.Home, "Applications/music_player.app")
	}
}

// Deps are the services a desktop is built from. Any may be nil.
type Deps struct {
	Broadcaster *events.Broadcaster
	Player      *audio.Player
	Scheduler   render.Scheduler
	Logger      *zap.Logger
}

// Desktop is the top-level controller.
type Desktop struct {
	cfg        Config
	tree       *vfs.Tree
	current    string
	showHidden bool

	windows  *window.Manager
	registry *render.Registry
	console  *Console
	shell    *shell.Interpreter
	player   *audio.Player
	bus      *events.Broadcaster
	views    map[string]*render.View
	logger   *zap.Logger
}

// New creates a desktop over tree. Call Boot to log the banner and
// navigate home.
func New(tree *vfs.Tree, cfg Config, deps Deps) *Desktop {
	cfg.setDefaults()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Player == nil {
		deps.Player = audio.NewPlayer()
	}

	d := &Desktop{
		cfg:     cfg,
		tree:    tree,
		current: cfg.Home,
		console: NewConsole(cfg.ConsoleLines, cfg.Now),
		player:  deps.Player,
		bus:     deps.Broadcaster,
		views:   make(map[string]*render.View),
		logger:  deps.Logger,
	}

	d.windows = window.NewManager(cfg.Window, deps.Logger.Named("window"))
	d.windows.SetViewport(cfg.Viewport)
	d.windows.OnClose(d.teardown)
	d.windows.OnChange(d.publishChange)

	d.registry = render.NewRegistry(render.Options{
		Player:    deps.Player,
		Scheduler: deps.Scheduler,
		Now:       cfg.Now,
		OnCountdown: func(path string, r render.Remaining) {
			d.bus.Publish(events.Event{Type: events.TypeCountdown, Path: path, Payload: r})
		},
		OnAudio: func(path string, s render.AudioStatus) {
			d.bus.Publish(events.Event{Type: events.TypeAudio, Path: path, Payload: s})
		},
		Logger: deps.Logger.Named("render"),
	})

	d.shell = shell.New(tree, d, shell.Config{
		Home:     cfg.Home,
		User:     cfg.User,
		Hostname: cfg.Hostname,
		Now:      cfg.Now,
	}, deps.Logger.Named("shell"))

	d.console.OnLine(func(l Line) {
		d.bus.Publish(events.Event{Type: events.TypeConsole, Payload: l})
	})
	d.console.OnClear(func() {
		d.bus.Publish(events.Event{Type: events.TypeConsoleClear})
	})

	return d
}

// Boot logs the startup banner and navigates to the home folder.
func (d *Desktop) Boot() {
	d.console.System("Drake OS v" + Version + " initialized")
	d.console.Log("Loading filesystem...")
	if err := d.Navigate(d.cfg.Home); err != nil {
		d.logger.Warn("home folder unavailable", zap.String("home", d.cfg.Home), zap.Error(err))
	}
	d.console.Success("System ready")
	d.console.System("Welcome to Drake OS!")
}

// Tree returns the tree in use.
func (d *Desktop) Tree() *vfs.Tree { return d.tree }

// Console returns the activity log.
func (d *Desktop) Console() *Console { return d.console }

// Shell returns the command interpreter.
func (d *Desktop) Shell() *shell.Interpreter { return d.shell }

// Player returns the audio service.
func (d *Desktop) Player() *audio.Player { return d.player }

// Windows returns the window manager.
func (d *Desktop) Windows() *window.Manager { return d.windows }

// Registry returns the renderer registry.
func (d *Desktop) Registry() *render.Registry { return d.registry }

// Home returns the home folder path.
func (d *Desktop) Home() string { return d.cfg.Home }

// CurrentPath returns the folder shown on the desktop.
func (d *Desktop) CurrentPath() string { return d.current }

// ShowHidden reports whether hidden entries are listed.
func (d *Desktop) ShowHidden() bool { return d.showHidden }

// Title returns the window title for the current folder.
func (d *Desktop) Title() string {
	return "Drake OS ~ " + d.current
}

// Replace adopts a freshly loaded tree. Every window is closed through the
// normal teardown and the desktop returns home.
func (d *Desktop) Replace(tree *vfs.Tree) {
	d.windows.CloseAll()
	d.tree = tree
	d.shell.SetTree(tree)
	d.bus.Publish(events.Event{Type: events.TypeTreeReload, Payload: map[string]int{"nodes": tree.Count()}})
	d.console.System("Filesystem reloaded")

	if err := d.Navigate(d.cfg.Home); err != nil {
		d.current = vpath.Root
	}
}

func (d *Desktop) publishChange(c window.Change) {
	var typ string
	switch c.Type {
	case window.ChangeOpen:
		typ = events.TypeWindowOpen
	case window.ChangeFocus:
		typ = events.TypeWindowFocus
	case window.ChangeGeometry:
		typ = events.TypeWindowGeometry
	case window.ChangeClose:
		typ = events.TypeWindowClose
	default:
		return
	}
	d.bus.Publish(events.Event{Type: typ, Path: c.Session.Path, Payload: c.Session})
}

// teardown runs once for every closed window.
func (d *Desktop) teardown(file *vfs.Node) {
	d.console.Log("close " + file.Name)
	d.registry.Cleanup(file.Path)
	delete(d.views, file.Path)
	metrics.SetWindowsOpen(d.windows.Len())
}
