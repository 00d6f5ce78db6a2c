package sim

import (
	"math"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// EntityState is the public, render-facing state of one entity.
// Fire bars report one EntityState per segment, all sharing the bar's ID.
type EntityState struct {
	ID     int
	Kind   string
	X, Y   float64
	W, H   float64
	Facing Facing
	Anim   int
	Value  int    // points of a score pop-up
	Label  string // defeated enemy kind, or "1UP"
}

// Entities returns the active entities in draw order: effects behind,
// then items, enemies, fireballs and the player on top.
func (l *Level) Entities() []EntityState {
	out := make([]EntityState, 0, 1+len(l.enemies)+len(l.items)+len(l.fireballs)+len(l.effects))
	for _, fx := range l.effects {
		if !fx.Active {
			continue
		}
		out = append(out, EntityState{
			ID: fx.ID, Kind: fx.Kind.String(),
			X: fx.X, Y: fx.Y, W: fx.W, H: fx.H,
			Facing: Right, Value: fx.Value, Label: fx.Label,
		})
	}
	for _, it := range l.items {
		if !it.Active {
			continue
		}
		out = append(out, EntityState{
			ID: it.ID, Kind: it.Kind.String(),
			X: it.X, Y: it.Y, W: it.W, H: it.H,
			Facing: it.Facing, Anim: it.Anim,
		})
	}
	for _, e := range l.enemies {
		if !e.Active {
			continue
		}
		for _, seg := range e.Segments() {
			facing := e.Facing
			if facing == 0 {
				facing = Left
			}
			out = append(out, EntityState{
				ID: e.ID, Kind: e.Kind.String(),
				X: seg.X, Y: seg.Y, W: seg.W, H: seg.H,
				Facing: facing, Anim: e.Anim,
			})
		}
	}
	for _, f := range l.fireballs {
		if !f.Active {
			continue
		}
		out = append(out, EntityState{
			ID: f.ID, Kind: "fireball",
			X: f.X, Y: f.Y, W: f.W, H: f.H,
			Facing: f.Facing, Anim: f.Anim,
		})
	}
	p := l.player
	out = append(out, EntityState{
		ID: 0, Kind: "player",
		X: p.X, Y: p.Y, W: p.W, H: p.H,
		Facing: p.Facing, Anim: p.Anim,
	})
	return out
}

// Snapshot is the complete observable state of an attempt, used for
// determinism checks.
type Snapshot struct {
	Tick       uint64
	Completion Completion
	TimeLeft   float64
	Score      int
	Lives      int
	Coins      int
	Size       int
	Star       float64
	Invincible float64
	Tiles      tile.View
	Entities   []EntityState
}

// Snapshot captures the current state.
func (l *Level) Snapshot() Snapshot {
	p := l.player
	return Snapshot{
		Tick:       uint64(l.ticks), //#nosec G115 -- tick count is always positive
		Completion: l.completion,
		TimeLeft:   l.timeLeft,
		Score:      p.Score,
		Lives:      p.Lives,
		Coins:      p.Coins,
		Size:       int(p.Size),
		Star:       p.Star,
		Invincible: p.Invincible,
		Tiles:      l.grid.Snapshot(),
		Entities:   l.Entities(),
	}
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	h = h*31 + uint64(snap.Completion)
	h = h*31 + math.Float64bits(snap.TimeLeft)
	h = h*31 + uint64(snap.Score) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Lives) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Coins) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Size)  //#nosec G115 -- hash computation
	h = h*31 + math.Float64bits(snap.Star)
	h = h*31 + math.Float64bits(snap.Invincible)

	for row := 0; row < snap.Tiles.Rows(); row++ {
		for col := 0; col < snap.Tiles.Cols(); col++ {
			h = h*31 + uint64(snap.Tiles.KindAt(col, row))
		}
	}

	for _, e := range snap.Entities {
		h = h*31 + uint64(e.ID) //#nosec G115 -- hash computation
		for _, c := range e.Kind {
			h = h*31 + uint64(c) //#nosec G115 -- hash computation
		}
		h = h*31 + math.Float64bits(e.X)
		h = h*31 + math.Float64bits(e.Y)
		h = h*31 + uint64(e.Anim) //#nosec G115 -- hash computation
	}

	return h
}
