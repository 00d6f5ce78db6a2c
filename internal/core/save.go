package core

import (
	"errors"
	"time"
)

// ErrSlotNotFound is returned by SaveStore.LoadSlot for an unknown slot.
var ErrSlotNotFound = errors.New("save slot not found")

// SlotInfo describes one persisted campaign slot.
type SlotInfo struct {
	Name      string
	Game      string
	Summary   string // short human-readable progress line, e.g. "W3-2 x4"
	UpdatedAt time.Time
}

// SaveStore persists opaque campaign payloads by slot name.
// Implementations must be safe to call from the UI goroutine only;
// games never call them from inside a simulation tick.
type SaveStore interface {
	SaveSlot(game, slot, summary string, payload []byte) error
	LoadSlot(game, slot string) ([]byte, error)
	ListSlots(game string) ([]SlotInfo, error)
	DeleteSlot(game, slot string) error
}

// LevelRecorder keeps per-level bests. Like SaveStore it is only called at
// level boundaries.
type LevelRecorder interface {
	RecordClear(game string, world, level, score, timeLeft int) error
}
