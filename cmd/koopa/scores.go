package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa"
	"github.com/vovakirdan/tui-koopa/internal/registry"
	"github.com/vovakirdan/tui-koopa/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show high scores and level records",
	Long: `Display the top 10 final scores, aggregate stats and the best
clear of every level for a game (default "koopa").

Examples:
  koopa scores
  koopa scores koopa_custom`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func runScores(cmd *cobra.Command, args []string) {
	gameID := koopa.IDCampaign
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'koopa list' to see available games.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := printScores(store, gameID, game.Title()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func printScores(store *storage.Store, gameID, title string) error {
	scores, err := store.TopScores(gameID, 10)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'koopa play %s' to set the first high score!\n", gameID)
	} else {
		fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
		fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
		for i, entry := range scores {
			fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
		}

		stats, err := store.GetGameStats(gameID)
		if err == nil {
			fmt.Println()
			fmt.Printf("Best: %d  Games: %d  Average: %.0f\n", stats.HighScore, stats.GamesCount, stats.AvgScore)
		}
	}

	records, err := store.LevelRecords(gameID)
	if err != nil {
		return fmt.Errorf("retrieving level records: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	fmt.Println()
	fmt.Println("Level Records")
	fmt.Println()
	fmt.Printf("  %-5s  %-10s  %-6s  %s\n", "Level", "Best", "Time", "Clears")
	fmt.Printf("  %-5s  %-10s  %-6s  %s\n", "-----", "----", "----", "------")
	for _, r := range records {
		fmt.Printf("  %-5s  %-10d  %-6d  %d\n", fmt.Sprintf("%d-%d", r.World, r.Level), r.BestScore, r.BestTime, r.Clears)
	}
	return nil
}
