// Package main is the entry point for the Drake OS desktop server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/drakeos/drakeos/internal/audio"
	"github.com/drakeos/drakeos/internal/config"
	"github.com/drakeos/drakeos/internal/desktop"
	"github.com/drakeos/drakeos/internal/events"
	drakefs "github.com/drakeos/drakeos/internal/fs"
	"github.com/drakeos/drakeos/internal/handler"
	"github.com/drakeos/drakeos/internal/logging"
	"github.com/drakeos/drakeos/internal/metrics"
	"github.com/drakeos/drakeos/internal/render"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/watcher"
	"github.com/drakeos/drakeos/internal/window"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Sync() }()
	log := logging.Named("server")

	log.Info("Drake OS desktop server",
		zap.String("version", desktop.Version),
		zap.String("config", cfg.GetConfigFilePath()),
		zap.String("source", cfg.Source),
		zap.Int("port", cfg.Port),
	)

	bus := events.NewBroadcaster()
	player := audio.NewPlayer()
	state := handler.NewState()
	opts := vfs.Options{Language: language.Make(cfg.Locale)}

	build := func(tree *vfs.Tree) *desktop.Desktop {
		d := desktop.New(tree, desktop.Config{
			Home:     cfg.Home,
			User:     cfg.User,
			Hostname: cfg.Hostname,
			Viewport: window.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height},
		}, desktop.Deps{
			Broadcaster: bus,
			Player:      player,
			Scheduler:   render.TickerScheduler{},
			Logger:      logging.Named("desktop"),
		})
		d.Boot()
		return d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A failed initial load still serves; the API answers 503 until a
	// watched source produces a valid tree.
	loadCtx, cancelLoad := context.WithTimeout(ctx, time.Minute)
	tree, src, err := drakefs.LoadTree(loadCtx, cfg.Source, opts, logging.Named("fs"))
	cancelLoad()
	if err != nil {
		log.Error("Initial tree load failed; serving without a filesystem", zap.Error(err))
	} else {
		state.Replace(tree, build)
	}

	// Setup source watcher if enabled
	if local, ok := src.(*drakefs.LocalSource); ok && cfg.Watch {
		w, err := watcher.New(local.Path(), logging.Named("watcher"))
		if err != nil {
			log.Warn("Failed to create source watcher", zap.Error(err))
		} else {
			w.OnChange(func(e watcher.Event) {
				if e.Type == watcher.EventRemove {
					return
				}
				tree, _, err := drakefs.LoadTree(ctx, cfg.Source, opts, logging.Named("fs"))
				if err != nil {
					// Keep serving the last good tree.
					return
				}
				state.Replace(tree, build)
			})
			if err := w.Start(); err != nil {
				log.Warn("Failed to start source watcher", zap.Error(err))
			}
			defer func() { _ = w.Stop() }()
			log.Info("Source watcher enabled", zap.String("path", w.Path()))
		}
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(corsMiddleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	handler.Register(r, state, bus, logging.Named("handler"))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	// Open browser if requested
	if cfg.Open {
		go openBrowser(fmt.Sprintf("http://localhost:%d/api/desktop", cfg.Port))
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = state.Do(func(d *desktop.Desktop) { d.CloseAll() })
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Server starting", zap.String("addr", "http://localhost"+srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default: // linux, etc.
		cmd = "xdg-open"
		args = []string{url}
	}

	_ = exec.Command(cmd, args...).Start()
}
