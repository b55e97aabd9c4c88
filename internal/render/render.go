// Package render turns file nodes into window views. Each file maps to one
// closed Kind; files that fit none get KindUnknown rather than a guess.
package render

import (
	"fmt"
	"time"

	"github.com/drakeos/drakeos/internal/audio"
	"github.com/drakeos/drakeos/internal/markdown"
	"github.com/drakeos/drakeos/internal/vfs"
	"go.uber.org/zap"
)

// Kind is the renderer variant for a file.
type Kind string

// Renderer kinds.
const (
	KindMarkdown Kind = "markdown"
	KindShell    Kind = "shell"
	KindText     Kind = "text"
	KindLink     Kind = "link"
	KindApp      Kind = "app"
	KindArchive  Kind = "archive"
	KindUnknown  Kind = "unknown"
)

// Select picks the kind for file: by fileType first, then by extension.
func Select(file *vfs.Node) Kind {
	if file == nil {
		return KindUnknown
	}
	switch file.FileType {
	case "markdown":
		return KindMarkdown
	case "link":
		return KindLink
	case "shell":
		return KindShell
	case "app":
		return KindApp
	case "text":
		return KindText
	case "archive":
		return KindArchive
	}

	switch vfs.ExtensionOf(file.Name) {
	case "md":
		return KindMarkdown
	case "sh", "bash":
		return KindShell
	case "txt":
		return KindText
	case "link":
		return KindLink
	case "app":
		return KindApp
	case "tar", "gz", "zip":
		return KindArchive
	}
	return KindUnknown
}

// View is the rendered content of one window.
type View struct {
	Kind  Kind   `json:"kind"`
	Path  string `json:"path"`
	Title string `json:"title"`
	HTML  string `json:"html"`

	TOC      []markdown.TOCItem `json:"toc,omitempty"`
	Language string             `json:"language,omitempty"`

	// ExternalURL is set for link files; the client opens it.
	ExternalURL string `json:"externalUrl,omitempty"`

	App       string       `json:"app,omitempty"`
	Countdown *Remaining   `json:"countdown,omitempty"`
	Audio     *AudioStatus `json:"audio,omitempty"`
}

// Renderer fills a view for a file.
type Renderer interface {
	Render(file *vfs.Node) (*View, error)
}

// Cleaner is implemented by renderers that hold per-window resources.
type Cleaner interface {
	Cleanup(path string)
}

// Options wires the renderers to their collaborators.
type Options struct {
	Markdown  *markdown.Parser
	Player    *audio.Player
	Scheduler Scheduler
	Now       func() time.Time

	// OnCountdown receives every countdown tick.
	OnCountdown func(path string, r Remaining)
	// OnAudio receives player changes while an audio window is open.
	OnAudio func(path string, s AudioStatus)

	Logger *zap.Logger
}

// Registry dispatches files to the renderer of their kind.
type Registry struct {
	renderers map[Kind]Renderer
	logger    *zap.Logger
}

// NewRegistry creates a registry with every built-in renderer.
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Markdown == nil {
		opts.Markdown = markdown.NewParser()
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

	r := &Registry{
		renderers: make(map[Kind]Renderer),
		logger:    opts.Logger,
	}
	r.Register(KindMarkdown, &MarkdownRenderer{parser: opts.Markdown})
	r.Register(KindShell, ShellRenderer{})
	r.Register(KindText, TextRenderer{})
	r.Register(KindLink, LinkRenderer{})
	r.Register(KindArchive, ArchiveRenderer{})
	r.Register(KindApp, NewAppRenderer(opts))
	r.Register(KindUnknown, UnknownRenderer{})
	return r
}

// Register installs rr for kind, replacing any previous renderer.
func (r *Registry) Register(kind Kind, rr Renderer) {
	r.renderers[kind] = rr
}

// Render produces the view for file.
func (r *Registry) Render(file *vfs.Node) (*View, error) {
	if file == nil {
		return nil, vfs.ErrNotFound
	}
	if file.IsFolder() {
		return nil, vfs.PathError("render", file.Path, vfs.ErrIsAFolder)
	}

	kind := Select(file)
	rr, ok := r.renderers[kind]
	if !ok {
		rr, ok = r.renderers[KindUnknown]
		if !ok {
			return nil, fmt.Errorf("render %s: no renderer for kind %s", file.Path, kind)
		}
	}

	view, err := rr.Render(file)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", file.Path, err)
	}
	view.Path = file.Path
	if view.Title == "" {
		view.Title = file.Name
	}
	r.logger.Debug("rendered", zap.String("path", file.Path), zap.String("kind", string(view.Kind)))
	return view, nil
}

// Cleanup releases whatever any renderer holds for path.
func (r *Registry) Cleanup(path string) {
	for _, rr := range r.renderers {
		if c, ok := rr.(Cleaner); ok {
			c.Cleanup(path)
		}
	}
}
