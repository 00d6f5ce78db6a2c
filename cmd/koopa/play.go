package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-koopa/internal/config"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/platform/tui"
	"github.com/vovakirdan/tui-koopa/internal/registry"
)

var (
	flagConfig     string
	flagDifficulty string
	flagWorld      int
	flagLevel      int
	flagLevelFile  string
	flagLevelDir   string
	flagWatch      bool
	flagSlot       string
	flagSaves      string
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play the campaign or a custom level",
	Long: `Start playing. Without a game id the campaign ("koopa") starts.

Controls:
  Left/Right, A/D    - Walk
  J/X, Shift+Arrow   - Run (and throw fireballs)
  Space/K/Z          - Jump
  P/Esc              - Pause
  Enter              - Confirm
  Ctrl+S             - Screenshot
  Q/Ctrl+C           - Quit

Difficulty options:
  easy   - Slower enemies, more time
  normal - Default tuning
  hard   - Faster enemies, less time
  fixed  - No progression between levels

Progress is saved to a slot after every cleared level and lost life.

Examples:
  koopa play
  koopa play --world 3 --slot speedrun
  koopa play --difficulty hard
  koopa play koopa_custom --level-file ./my-level.yaml --watch
  koopa play --saves gdata`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom koopa config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().IntVar(&flagWorld, "world", 0, "Start at an unlocked world")
	playCmd.Flags().IntVar(&flagLevel, "level", 0, "Start level within the world")
	playCmd.Flags().StringVar(&flagLevelFile, "level-file", "", "Play a single YAML or TMX level file")
	playCmd.Flags().StringVar(&flagLevelDir, "level-dir", "", "Directory of user levels (default ~/.koopa/levels)")
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the level when its file changes")
	playCmd.Flags().StringVar(&flagSlot, "slot", koopa.DefaultSlot, "Save slot name")
	playCmd.Flags().StringVar(&flagSaves, "saves", "sqlite", "Save backend: sqlite or gdata")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := koopa.IDCampaign
	if len(args) > 0 {
		gameID = args[0]
	}

	// Check if game exists
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'koopa list' to see available games.")
		os.Exit(1)
	}

	if err := playGame(gameID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// playGame runs one game to completion. Deferred cleanup runs before the
// caller exits.
func playGame(gameID string) error {
	logger, logFile := fileLogger()
	defer logFile.Close()

	store := openStore()
	if store != nil {
		defer store.Close()
	}
	saves, err := saveStore(flagSaves, store)
	if err != nil {
		return err
	}

	opts := registry.Options{
		ConfigPath: flagConfig,
		Difficulty: flagDifficulty,
		LevelDir:   flagLevelDir,
		LevelFile:  flagLevelFile,
		World:      flagWorld,
		Level:      flagLevel,
		Slot:       flagSlot,
		Saves:      saves,
		Logger:     logger,
	}
	runOpts := tui.Options{Logger: logger}
	if store != nil {
		opts.Records = store
		runOpts.Scores = store
	}

	game, err := registry.CreateWith(gameID, opts)
	if err != nil {
		return err
	}

	if flagWatch {
		watcher, watchErr := levelWatcher()
		if watchErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: level watching disabled: %v\n", watchErr)
		} else {
			defer watcher.Close()
			runOpts.Watcher = watcher
		}
	}

	logger.Info("starting game", "game", gameID, "slot", flagSlot, "world", flagWorld)
	if err := tui.Run(game, runtimeConfig(), runOpts); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}

// levelWatcher watches the played level file, or the user level directory.
func levelWatcher() (*levels.Watcher, error) {
	if flagLevelFile != "" {
		return levels.WatchFile(flagLevelFile)
	}
	dir := flagLevelDir
	if dir == "" {
		dir = filepath.Join(config.HomeDir(), "levels")
	}
	return levels.NewWatcher(dir)
}
