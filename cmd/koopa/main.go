// koopa is a side-scrolling platformer for the terminal.
//
// Usage:
//
//	koopa list                 - List available games
//	koopa play [game]          - Play the campaign or a custom level
//	koopa menu                 - Pick a game and save slot interactively
//	koopa serve                - Start SSH server for remote play
//	koopa scores [game]        - Show high scores and level records
//	koopa levels <cmd>         - List, validate, export and import levels
//	koopa saves <cmd>          - List and delete save slots
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--db <path>         - Set database path (default: ~/.koopa/koopa.db)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/tui-koopa/internal/games/koopa"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "koopa",
	Short: "Koopa - a platformer in your terminal",
	Long: `Koopa is a tile-based platformer played in the terminal: run, jump,
stomp enemies and reach the flagpole of every level in the campaign.

Available commands:
  list     - Show all available games
  play     - Play the campaign or a single level file
  menu     - Interactive game and save slot picker
  serve    - Start SSH server for remote play
  scores   - View high scores and level records
  levels   - Manage level files
  saves    - Manage save slots

Examples:
  koopa play
  koopa play --world 2
  koopa play koopa_custom --level-file ./my-level.yaml --watch
  koopa menu
  koopa serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.koopa/koopa.db", "Path to scores and saves database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(savesCmd)
}
