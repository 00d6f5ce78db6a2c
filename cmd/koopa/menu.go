package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-koopa/internal/platform/tui"
	"github.com/vovakirdan/tui-koopa/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a game and save slot interactively",
	Long: `Start in interactive menu mode.

Pick a game, then a save slot (or "+ new slot"). After the game ends you
return to the menu.

Controls:
  Up/Down/j/k  - Navigate
  Enter/Space  - Select
  X            - Delete the highlighted slot
  Tab          - Scoreboard
  Esc          - Back
  Q            - Quit

Examples:
  koopa menu
  koopa menu --fps 30
  koopa menu --saves gdata`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom koopa config YAML")
	menuCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	menuCmd.Flags().StringVar(&flagLevelDir, "level-dir", "", "Directory of user levels (default ~/.koopa/levels)")
	menuCmd.Flags().StringVar(&flagSaves, "saves", "sqlite", "Save backend: sqlite or gdata")
}

func runMenu(_ *cobra.Command, _ []string) {
	if err := menuLoop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func menuLoop() error {
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

	var scores tui.ScoreSource
	if store != nil {
		scores = store
	}

	cfg := runtimeConfig()

	for {
		menuResult, err := tui.RunMenu(saves, cfg)
		if err != nil {
			return err
		}

		// Update config with any size changes
		cfg = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(scores, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue
			}
			return nil
		}

		if menuResult.GameID == "" {
			return nil
		}

		opts := registry.Options{
			ConfigPath: flagConfig,
			Difficulty: flagDifficulty,
			LevelDir:   flagLevelDir,
			Slot:       menuResult.Slot,
			Saves:      saves,
			Logger:     logger,
		}
		runOpts := tui.Options{Logger: logger}
		if store != nil {
			opts.Records = store
			runOpts.Scores = store
		}

		game, err := registry.CreateWith(menuResult.GameID, opts)
		if err != nil {
			// A bad --difficulty fails every game alike.
			return err
		}

		cfg.Seed = time.Now().UnixNano()
		logger.Info("starting game", "game", menuResult.GameID, "slot", menuResult.Slot)
		if err := tui.Run(game, cfg, runOpts); err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
	}
}
