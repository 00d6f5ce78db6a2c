// Package campaign tracks progression across levels: which level is next,
// which worlds are unlocked, and the player stats that survive a level.
package campaign

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

const (
	// LevelsPerWorld is the number of levels in every world; the last one
	// is the castle.
	LevelsPerWorld = 4
	// DefaultWorlds is the campaign length.
	DefaultWorlds = 8
	// DefaultLives is the starting life count.
	DefaultLives = 3
)

// ErrLocked is returned when selecting a world that is not unlocked yet.
var ErrLocked = errors.New("campaign: world locked")

// Size is the player's power tier.
type Size uint8

const (
	Small Size = iota
	Big
	Fire
)

// String returns the tier name.
func (s Size) String() string {
	switch s {
	case Small:
		return "small"
	case Big:
		return "big"
	case Fire:
		return "fire"
	default:
		return "unknown"
	}
}

// Carry is the player state handed between a level and the campaign.
type Carry struct {
	Lives int
	Score int
	Coins int
	Size  Size
}

// State is the only game state that crosses level and save boundaries.
type State struct {
	World    int   `json:"world"`
	Level    int   `json:"level"`
	Unlocked []int `json:"unlocked"`
	Lives    int   `json:"lives"`
	Score    int   `json:"score"`
	Coins    int   `json:"coins"`
	Size     Size  `json:"size"`
	Worlds   int   `json:"worlds"`
	Complete bool  `json:"complete,omitempty"`
}

// New starts a campaign at 1-1 with world 1 unlocked.
func New(lives, worlds int) State {
	if lives <= 0 {
		lives = DefaultLives
	}
	if worlds <= 0 {
		worlds = DefaultWorlds
	}
	return State{
		World:    1,
		Level:    1,
		Unlocked: []int{1},
		Lives:    lives,
		Worlds:   worlds,
	}
}

// Carry returns the stats a new level starts from.
func (s State) Carry() Carry {
	return Carry{Lives: s.Lives, Score: s.Score, Coins: s.Coins, Size: s.Size}
}

// Absorb records the stats a level ended with.
func (s State) Absorb(c Carry) State {
	s.Lives = c.Lives
	s.Score = c.Score
	s.Coins = c.Coins
	s.Size = c.Size
	return s
}

// AfterDeath prepares a retry of the same level: the player restarts small.
func (s State) AfterDeath() State {
	s.Size = Small
	return s
}

// Advance moves past the current level. Clearing the last level of a
// world unlocks the next one; clearing the final castle completes the
// campaign and the second result is true.
func (s State) Advance() (State, bool) {
	s.Unlocked = slices.Clone(s.Unlocked)
	if s.Level < LevelsPerWorld {
		s.Level++
		return s, false
	}
	if s.World >= s.Worlds {
		s.Complete = true
		return s, true
	}
	s.World++
	s.Level = 1
	s.unlock(s.World)
	return s, false
}

// Reset starts over after a game over. Unlocked worlds are kept.
func (s State) Reset(lives int) State {
	fresh := New(lives, s.Worlds)
	fresh.Unlocked = slices.Clone(s.Unlocked)
	if len(fresh.Unlocked) == 0 {
		fresh.Unlocked = []int{1}
	}
	return fresh
}

// Select jumps to the first level of an unlocked world.
func (s State) Select(world int) (State, error) {
	if !s.IsUnlocked(world) {
		return s, fmt.Errorf("%w: %d", ErrLocked, world)
	}
	s.World = world
	s.Level = 1
	s.Complete = false
	return s, nil
}

// IsUnlocked reports whether a world may be selected.
func (s State) IsUnlocked(world int) bool {
	return slices.Contains(s.Unlocked, world)
}

func (s *State) unlock(world int) {
	if s.IsUnlocked(world) {
		return
	}
	s.Unlocked = append(s.Unlocked, world)
	slices.Sort(s.Unlocked)
}

// Summary is a short progress line for save-slot listings.
func (s State) Summary() string {
	if s.Complete {
		return fmt.Sprintf("complete  score %d", s.Score)
	}
	return fmt.Sprintf("W%d-%d  x%d  score %d", s.World, s.Level, s.Lives, s.Score)
}

// Encode serializes the state for a save slot.
func (s State) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("campaign: encode: %w", err)
	}
	return data, nil
}

// Decode parses a save-slot payload and repairs out-of-range fields.
func Decode(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("campaign: decode: %w", err)
	}
	if s.Worlds <= 0 {
		s.Worlds = DefaultWorlds
	}
	s.World = min(max(s.World, 1), s.Worlds)
	s.Level = min(max(s.Level, 1), LevelsPerWorld)
	if s.Size > Fire {
		s.Size = Small
	}
	if s.Lives <= 0 {
		s.Lives = DefaultLives
	}
	s.unlock(1)
	s.unlock(s.World)
	return s, nil
}
