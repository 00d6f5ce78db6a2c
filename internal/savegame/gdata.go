// Package savegame stores campaign slots through quasilyte/gdata, the
// per-user application data directory. It is the file-based alternative
// to the sqlite store.
package savegame

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/quasilyte/gdata"

	"github.com/vovakirdan/tui-koopa/internal/core"
)

// items is the subset of *gdata.Manager the store uses.
type items interface {
	SaveItem(key string, data []byte) error
	LoadItem(key string) ([]byte, error)
	ItemExists(key string) bool
	DeleteItem(key string) error
}

// Store implements core.SaveStore on top of gdata items. Each slot is one
// item; a per-game index item keeps the slot summaries for listing.
type Store struct {
	items items
	now   func() time.Time
}

// Open opens the gdata directory of appName.
func Open(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("savegame: open %s: %w", appName, err)
	}
	return newStore(m), nil
}

func newStore(it items) *Store {
	return &Store{items: it, now: time.Now}
}

type indexEntry struct {
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slot names come from user input (SSH user names included), so they are
// hex-encoded into item keys.
func slotKey(game, slot string) string {
	return game + "_slot_" + hex.EncodeToString([]byte(slot))
}

func indexKey(game string) string {
	return game + "_slots"
}

func (s *Store) loadIndex(game string) (map[string]indexEntry, error) {
	index := map[string]indexEntry{}
	if !s.items.ItemExists(indexKey(game)) {
		return index, nil
	}
	data, err := s.items.LoadItem(indexKey(game))
	if err != nil {
		return nil, fmt.Errorf("savegame: load index: %w", err)
	}
	if len(data) == 0 {
		return index, nil
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("savegame: parse index: %w", err)
	}
	return index, nil
}

func (s *Store) saveIndex(game string, index map[string]indexEntry) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("savegame: encode index: %w", err)
	}
	if err := s.items.SaveItem(indexKey(game), data); err != nil {
		return fmt.Errorf("savegame: save index: %w", err)
	}
	return nil
}

// SaveSlot writes the payload and updates the index.
func (s *Store) SaveSlot(game, slot, summary string, payload []byte) error {
	index, err := s.loadIndex(game)
	if err != nil {
		return err
	}
	if err := s.items.SaveItem(slotKey(game, slot), payload); err != nil {
		return fmt.Errorf("savegame: save slot %q: %w", slot, err)
	}
	index[slot] = indexEntry{Summary: summary, UpdatedAt: s.now()}
	return s.saveIndex(game, index)
}

// LoadSlot returns the payload of slot or core.ErrSlotNotFound.
func (s *Store) LoadSlot(game, slot string) ([]byte, error) {
	key := slotKey(game, slot)
	if !s.items.ItemExists(key) {
		return nil, fmt.Errorf("savegame: slot %q: %w", slot, core.ErrSlotNotFound)
	}
	data, err := s.items.LoadItem(key)
	if err != nil {
		return nil, fmt.Errorf("savegame: load slot %q: %w", slot, err)
	}
	return data, nil
}

// ListSlots returns the indexed slots, most recently saved first.
func (s *Store) ListSlots(game string) ([]core.SlotInfo, error) {
	index, err := s.loadIndex(game)
	if err != nil {
		return nil, err
	}
	out := make([]core.SlotInfo, 0, len(index))
	for name, e := range index {
		out = append(out, core.SlotInfo{Name: name, Game: game, Summary: e.Summary, UpdatedAt: e.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// DeleteSlot removes the slot item and its index entry. A missing slot is
// not an error.
func (s *Store) DeleteSlot(game, slot string) error {
	index, err := s.loadIndex(game)
	if err != nil {
		return err
	}
	if key := slotKey(game, slot); s.items.ItemExists(key) {
		if err := s.items.DeleteItem(key); err != nil {
			return fmt.Errorf("savegame: delete slot %q: %w", slot, err)
		}
	}
	if _, ok := index[slot]; !ok {
		return nil
	}
	delete(index, slot)
	return s.saveIndex(game, index)
}

var _ core.SaveStore = (*Store)(nil)
