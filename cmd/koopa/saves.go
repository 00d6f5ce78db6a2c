package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa"
	"github.com/vovakirdan/tui-koopa/internal/storage"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List and delete save slots",
}

var savesListCmd = &cobra.Command{
	Use:   "list [game]",
	Short: "List the save slots of a game",
	Args:  cobra.MaximumNArgs(1),
	Run:   runSavesList,
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete <slot> [game]",
	Short: "Delete a save slot",
	Args:  cobra.RangeArgs(1, 2),
	Run:   runSavesDelete,
}

func init() {
	savesCmd.PersistentFlags().StringVar(&flagSaves, "saves", "sqlite", "Save backend: sqlite or gdata")
	savesCmd.AddCommand(savesListCmd, savesDeleteCmd)
}

// withSaves opens the selected backend for the duration of fn.
func withSaves(fn func(core.SaveStore) error) {
	var store *storage.Store
	if flagSaves == "" || flagSaves == "sqlite" {
		var err error
		store, err = storage.Open(flagDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
	}
	saves, err := saveStore(flagSaves, store)
	if err == nil {
		err = fn(saves)
	}
	if store != nil {
		store.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSavesList(_ *cobra.Command, args []string) {
	gameID := koopa.IDCampaign
	if len(args) > 0 {
		gameID = args[0]
	}
	withSaves(func(saves core.SaveStore) error {
		slots, err := saves.ListSlots(gameID)
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			fmt.Printf("No save slots for %s.\n", gameID)
			return nil
		}
		fmt.Printf("  %-16s  %-30s  %s\n", "Slot", "Progress", "Saved")
		fmt.Printf("  %-16s  %-30s  %s\n", "----", "--------", "-----")
		for _, s := range slots {
			fmt.Printf("  %-16s  %-30s  %s\n", s.Name, s.Summary, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	})
}

func runSavesDelete(_ *cobra.Command, args []string) {
	slot := args[0]
	gameID := koopa.IDCampaign
	if len(args) > 1 {
		gameID = args[1]
	}
	withSaves(func(saves core.SaveStore) error {
		if err := saves.DeleteSlot(gameID, slot); err != nil {
			return err
		}
		fmt.Printf("Deleted slot %s of %s.\n", slot, gameID)
		return nil
	})
}
