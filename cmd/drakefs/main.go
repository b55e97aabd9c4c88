// Package main mounts a Drake OS tree as a read-only FUSE filesystem.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	bazilfs "bazil.org/fuse/fs"
	"github.com/drakeos/drakeos/internal/config"
	drakefs "github.com/drakeos/drakeos/internal/fs"
	"github.com/drakeos/drakeos/internal/fusefs"
	"github.com/drakeos/drakeos/internal/logging"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/watcher"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func main() {
	flags := flag.NewFlagSet("drakefs", flag.ExitOnError)
	mountPoint := flags.String("mount", "", "Mount point for the tree")
	cfg, err := config.LoadArgs(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Sync() }()
	log := logging.Named("drakefs")

	if *mountPoint == "" {
		log.Fatal("Mount point is required (-mount)")
	}
	cleanMount := filepath.Clean(*mountPoint)
	opts := vfs.Options{Language: language.Make(cfg.Locale)}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	tree, src, err := drakefs.LoadTree(ctx, cfg.Source, opts, logging.Named("fs"))
	cancel()
	if err != nil {
		log.Fatal("Failed to load tree", zap.Error(err))
	}
	filesystem := fusefs.New(tree, logging.Named("fuse"))

	if local, ok := src.(*drakefs.LocalSource); ok && cfg.Watch {
		w, err := watcher.New(local.Path(), logging.Named("watcher"))
		if err == nil {
			w.OnChange(func(watcher.Event) {
				tree, _, err := drakefs.LoadTree(context.Background(), cfg.Source, opts, logging.Named("fs"))
				if err == nil {
					filesystem.SetTree(tree)
				}
			})
			if err := w.Start(); err != nil {
				log.Warn("Failed to start source watcher", zap.Error(err))
			}
			defer func() { _ = w.Stop() }()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Mounting filesystem", zap.String("mount", cleanMount), zap.Int("nodes", tree.Count()))
	c, err := fuse.Mount(cleanMount,
		fuse.FSName("drakeos"),
		fuse.Subtype("drakefs"),
		fuse.ReadOnly(),
	)
	if err != nil {
		log.Fatal("Mount failed", zap.Error(err))
	}
	defer c.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bazilfs.Serve(c, filesystem); err != nil {
			log.Error("FUSE server error", zap.Error(err))
		}
	}()

	go func() {
		sig := <-sigChan
		log.Info("Received signal", zap.Stringer("signal", sig))
		if err := fuse.Unmount(cleanMount); err != nil {
			log.Error("Unmount error", zap.Error(err))
		}
	}()

	wg.Wait()
	log.Info("Clean shutdown complete")
}
