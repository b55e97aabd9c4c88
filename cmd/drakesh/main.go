// Package main is an interactive Drake OS shell over a tree description.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/drakeos/drakeos/internal/config"
	"github.com/drakeos/drakeos/internal/desktop"
	drakefs "github.com/drakeos/drakeos/internal/fs"
	"github.com/drakeos/drakeos/internal/logging"
	"github.com/drakeos/drakeos/internal/vfs"
	"go.uber.org/zap"
	"golang.org/x/term"
	"golang.org/x/text/language"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Operator logs would interleave with the prompt.
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.OutputPath == "" {
		cfg.Log.OutputPath = "stderr"
	}
	if err := logging.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	tree, _, err := drakefs.LoadTree(ctx, cfg.Source, vfs.Options{Language: language.Make(cfg.Locale)}, logging.Named("fs"))
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "drakesh: %v\n", err)
		os.Exit(1)
	}

	d := desktop.New(tree, desktop.Config{
		Home:     cfg.Home,
		User:     cfg.User,
		Hostname: cfg.Hostname,
	}, desktop.Deps{Logger: logging.Named("desktop")})
	d.Boot()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if err := repl(d, os.Stdin, os.Stdout, interactive); err != nil {
		logging.L().Error("read failed", zap.Error(err))
		os.Exit(1)
	}
	d.CloseAll()
}

// repl reads lines from in until EOF or "exit". The prompt is only printed
// for a terminal so piped scripts produce clean output.
func repl(d *desktop.Desktop, in io.Reader, out io.Writer, interactive bool) error {
	if interactive {
		fmt.Fprintf(out, "Drake OS v%s. Type 'help' for commands.\n", desktop.Version)
	}
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, d.Shell().Prompt())
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if cmd := strings.TrimSpace(line); cmd == "exit" || cmd == "logout" {
			break
		}

		res := d.Run(line)
		if res.Clear && interactive {
			fmt.Fprint(out, "\033[H\033[2J")
			continue
		}
		for _, l := range res.Lines {
			fmt.Fprintln(out, l)
		}
		if res.Err != nil {
			fmt.Fprintln(out, res.Err.Error())
		}
	}
	if interactive {
		fmt.Fprintln(out)
	}
	return scanner.Err()
}
