package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-koopa/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, score := range []int{100, 50, 200} {
		if _, err := store.SaveScore("koopa", score); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("koopa_custom", 500); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores("koopa", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	if scores[0].Score != 200 || scores[1].Score != 100 || scores[2].Score != 50 {
		t.Errorf("Scores not in expected order: %v", scores)
	}

	custom, err := store.TopScores("koopa_custom", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(custom) != 1 {
		t.Errorf("Expected 1 custom score, got %d", len(custom))
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveScore("test", (i+1)*100)
	}

	scores, err := store.TopScores("test", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}

	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("koopa")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	store.SaveScore("koopa", 100)
	store.SaveScore("koopa", 300)
	store.SaveScore("koopa", 200)

	high, err = store.HighScore("koopa")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetGameStats("koopa")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if empty.GamesCount != 0 || empty.HighScore != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("stats of an unplayed game = %+v, want zero", *empty)
	}

	for _, score := range []int{100, 300, 200} {
		if _, err := store.SaveScore("koopa", score); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("koopa_custom", 900); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	stats, err := store.GetGameStats("koopa")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if stats.GamesCount != 3 {
		t.Errorf("GamesCount = %d, expected 3", stats.GamesCount)
	}
	if stats.HighScore != 300 {
		t.Errorf("HighScore = %d, expected 300", stats.HighScore)
	}
	if stats.AvgScore != 200 {
		t.Errorf("AvgScore = %v, expected 200", stats.AvgScore)
	}
	if stats.TotalScore != 600 {
		t.Errorf("TotalScore = %d, expected 600", stats.TotalScore)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("koopa", 100)
	store.SaveScore("koopa", 200)
	store.SaveScore("koopa_custom", 300)

	if err := store.ClearScores("koopa"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	scores, _ := store.TopScores("koopa", 10)
	if len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}

	custom, _ := store.TopScores("koopa_custom", 10)
	if len(custom) != 1 {
		t.Errorf("Custom scores should not be affected by clearing koopa")
	}
}

func TestStoreSlots(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LoadSlot("koopa", "alice"); !errors.Is(err, core.ErrSlotNotFound) {
		t.Fatalf("LoadSlot() on empty store: got %v, want ErrSlotNotFound", err)
	}

	if err := store.SaveSlot("koopa", "alice", "W1-1 x3", []byte(`{"world":1}`)); err != nil {
		t.Fatalf("SaveSlot() failed: %v", err)
	}
	if err := store.SaveSlot("koopa", "alice", "W1-2 x3", []byte(`{"world":1,"level":2}`)); err != nil {
		t.Fatalf("SaveSlot() overwrite failed: %v", err)
	}
	if err := store.SaveSlot("koopa", "bob", "W2-1 x5", []byte(`{"world":2}`)); err != nil {
		t.Fatalf("SaveSlot() failed: %v", err)
	}

	payload, err := store.LoadSlot("koopa", "alice")
	if err != nil {
		t.Fatalf("LoadSlot() failed: %v", err)
	}
	if !bytes.Equal(payload, []byte(`{"world":1,"level":2}`)) {
		t.Errorf("LoadSlot() returned stale payload %s", payload)
	}

	slots, err := store.ListSlots("koopa")
	if err != nil {
		t.Fatalf("ListSlots() failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("Expected 2 slots, got %d", len(slots))
	}
	summaries := map[string]string{}
	for _, s := range slots {
		summaries[s.Name] = s.Summary
		if s.Game != "koopa" {
			t.Errorf("slot %q has game %q", s.Name, s.Game)
		}
	}
	if summaries["alice"] != "W1-2 x3" || summaries["bob"] != "W2-1 x5" {
		t.Errorf("unexpected summaries: %v", summaries)
	}

	other, _ := store.ListSlots("koopa_custom")
	if len(other) != 0 {
		t.Errorf("slots leaked across games: %v", other)
	}

	if err := store.DeleteSlot("koopa", "alice"); err != nil {
		t.Fatalf("DeleteSlot() failed: %v", err)
	}
	if err := store.DeleteSlot("koopa", "alice"); err != nil {
		t.Fatalf("DeleteSlot() of missing slot failed: %v", err)
	}
	if _, err := store.LoadSlot("koopa", "alice"); !errors.Is(err, core.ErrSlotNotFound) {
		t.Errorf("deleted slot still loads: %v", err)
	}
}

func TestStoreLevelRecords(t *testing.T) {
	store := openTestStore(t)

	clears := []struct {
		world, level, score, timeLeft int
	}{
		{1, 2, 3000, 120},
		{1, 1, 1500, 200},
		{1, 1, 2500, 150},
	}
	for _, c := range clears {
		if err := store.RecordClear("koopa", c.world, c.level, c.score, c.timeLeft); err != nil {
			t.Fatalf("RecordClear() failed: %v", err)
		}
	}

	records, err := store.LevelRecords("koopa")
	if err != nil {
		t.Fatalf("LevelRecords() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.World != 1 || first.Level != 1 {
		t.Fatalf("records not in world-level order: %+v", records)
	}
	if first.BestScore != 2500 || first.BestTime != 200 || first.Clears != 2 {
		t.Errorf("1-1 record = %+v, want best score 2500, best time 200, 2 clears", first)
	}
	if records[1].Clears != 1 {
		t.Errorf("1-2 record = %+v, want 1 clear", records[1])
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
