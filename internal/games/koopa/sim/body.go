// Package sim is the deterministic koopa simulation: body integration,
// axis-separated tile collision, entity state machines and the level
// completion state machine. It performs no I/O on the tick path.
package sim

import (
	"math"

	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// Facing is a horizontal direction, -1 for left and +1 for right.
type Facing int

const (
	Left  Facing = -1
	Right Facing = 1
)

// Body is the physical part of every entity. Positions are the top-left
// corner in world pixels.
type Body struct {
	X, Y     float64
	VX, VY   float64
	W, H     float64
	Facing   Facing
	OnGround bool
	Active   bool
}

// Collision reports what a Move ran into.
type Collision struct {
	Left, Right bool
	Top, Bottom bool
	// Bonked is set when a rising body hit a solid tile; BonkCell is the
	// tile above the body's centre, or the nearest one it touched.
	Bonked   bool
	BonkCell tile.Cell
}

// Rect returns the body's bounding box.
func (b *Body) Rect() core.RectF {
	return core.RectF{X: b.X, Y: b.Y, W: b.W, H: b.H}
}

// Bottom returns the y-coordinate of the feet.
func (b *Body) Bottom() float64 { return b.Y + b.H }

// CenterX returns the horizontal midpoint.
func (b *Body) CenterX() float64 { return b.X + b.W/2 }

// Finite reports whether position and velocity are finite numbers.
func (b *Body) Finite() bool {
	for _, v := range [...]float64{b.X, b.Y, b.VX, b.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ApplyGravity accelerates the body downwards, clamped to maxFall.
// scale is dt*60 because rates are tuned per 60 Hz frame.
func (b *Body) ApplyGravity(g, maxFall, scale float64) {
	b.VY += g * scale
	if b.VY > maxFall {
		b.VY = maxFall
	}
}

// Move integrates velocity and resolves tile collisions, vertical axis
// first. Each axis snaps to the tile boundary and zeroes its velocity
// before the other axis is evaluated. Only tiles the moving edge entered
// this step count, so a body already overlapping a tile is never
// teleported through it. X is clamped at the left edge of the level;
// there is no right clamp.
func (b *Body) Move(g *tile.Grid, scale float64) Collision {
	const eps = 1e-6
	var c Collision

	b.OnGround = false
	if b.VY != 0 {
		oldTop, oldBottom := b.Y, b.Bottom()
		b.Y += b.VY * scale
		cells := solidCells(g, b.Rect())
		if b.VY > 0 {
			hit, top := false, 0
			for _, cell := range cells {
				if float64(cell.Row*tile.Size) >= oldBottom-eps && (!hit || cell.Row < top) {
					hit, top = true, cell.Row
				}
			}
			if hit {
				b.Y = float64(top*tile.Size) - b.H
				b.VY = 0
				b.OnGround = true
				c.Bottom = true
			}
		} else {
			hit, bottom := false, 0
			for _, cell := range cells {
				if float64((cell.Row+1)*tile.Size) <= oldTop+eps && (!hit || cell.Row > bottom) {
					hit, bottom = true, cell.Row
				}
			}
			if hit {
				b.Y = float64((bottom + 1) * tile.Size)
				b.VY = 0
				c.Top = true
				c.Bonked = true
				c.BonkCell = b.bonkTarget(cells, bottom)
			}
		}
	}

	if b.VX != 0 {
		oldLeft, oldRight := b.X, b.X+b.W
		b.X += b.VX * scale
		cells := solidCells(g, b.Rect())
		if b.VX > 0 {
			hit, left := false, 0
			for _, cell := range cells {
				if float64(cell.Col*tile.Size) >= oldRight-eps && (!hit || cell.Col < left) {
					hit, left = true, cell.Col
				}
			}
			if hit {
				b.X = float64(left*tile.Size) - b.W
				b.VX = 0
				c.Right = true
			}
		} else {
			hit, right := false, 0
			for _, cell := range cells {
				if float64((cell.Col+1)*tile.Size) <= oldLeft+eps && (!hit || cell.Col > right) {
					hit, right = true, cell.Col
				}
			}
			if hit {
				b.X = float64((right + 1) * tile.Size)
				b.VX = 0
				c.Left = true
			}
		}
	}

	if b.X < 0 {
		b.X = 0
		if b.VX < 0 {
			b.VX = 0
		}
		c.Left = true
	}
	return c
}

// bonkTarget picks the tile a rising body hit: the one above its centre
// if solid, otherwise the touched tile closest to the centre.
func (b *Body) bonkTarget(cells []tile.Cell, row int) tile.Cell {
	cx := b.CenterX()
	best := tile.Cell{Col: -1}
	bestDist := math.Inf(1)
	for _, cell := range cells {
		if cell.Row != row {
			continue
		}
		mid := float64(cell.Col*tile.Size) + tile.Size/2
		if d := math.Abs(mid - cx); d < bestDist {
			best, bestDist = cell, d
		}
	}
	return best
}

// Resize sets the hitbox height, keeping the feet in place. Growing fails
// and leaves the body unchanged when the taller box would reach into a
// solid tile. A nil grid skips the check.
func (b *Body) Resize(g *tile.Grid, h float64) bool {
	if g != nil && h > b.H {
		grown := core.RectF{X: b.X, Y: b.Bottom() - h, W: b.W, H: h - b.H}
		if len(solidCells(g, grown)) > 0 {
			return false
		}
	}
	b.Y = b.Bottom() - h
	b.H = h
	return true
}

// StandingOn reports whether a solid tile lies directly below x at the
// body's feet. Used for ledge probes.
func (b *Body) StandingOn(g *tile.Grid, x float64) bool {
	col := int(math.Floor(x / tile.Size))
	row := int(math.Floor((b.Bottom() + 1) / tile.Size))
	return g.Solid(col, row)
}

func solidCells(g *tile.Grid, r core.RectF) []tile.Cell {
	var out []tile.Cell
	for _, cell := range g.Overlapping(r) {
		if cell.Kind.Solid() {
			out = append(out, cell)
		}
	}
	return out
}
