package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-koopa/internal/config"
	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/savegame"
	"github.com/vovakirdan/tui-koopa/internal/storage"
)

// runtimeConfig sizes the game to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// fileLogger logs to ~/.koopa/koopa.log; the terminal belongs to the game.
// It falls back to a discarding logger when the file cannot be opened.
func fileLogger() (*log.Logger, io.Closer) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: unknown log level %q, using info\n", flagLogLevel)
		level = log.InfoLevel
	}

	path := filepath.Join(config.HomeDir(), "koopa.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(io.Discard), io.NopCloser(nil)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return log.New(io.Discard), io.NopCloser(nil)
	}
	return log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "koopa",
	}), f
}

// stderrLogger is used by commands that do not own the terminal.
func stderrLogger() *log.Logger {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "koopa",
	})
}

// openStore opens the sqlite store, or returns nil with a warning.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		return nil
	}
	return store
}

// saveStore picks the campaign save backend: "sqlite" keeps slots next to
// the scores, "gdata" keeps them in the per-user data directory.
func saveStore(backend string, store *storage.Store) (core.SaveStore, error) {
	switch backend {
	case "", "sqlite":
		if store == nil {
			return nil, nil
		}
		return store, nil
	case "gdata":
		saves, err := savegame.Open("koopa")
		if err != nil {
			return nil, err
		}
		return saves, nil
	default:
		return nil, fmt.Errorf("unknown saves backend %q (want sqlite or gdata)", backend)
	}
}
