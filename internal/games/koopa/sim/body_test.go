package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

func TestGravityIncreasesUpToTerminalSpeed(t *testing.T) {
	g := tile.NewGrid(4, 200)
	b := &Body{X: 10, W: 12, H: 16, Active: true}

	prev := b.VY
	for i := 0; i < 40; i++ {
		b.ApplyGravity(0.4375, 4.5, 1)
		b.Move(g, 1)
		assert.LessOrEqual(t, b.VY, 4.5)
		if prev < 4.5 {
			assert.Greater(t, b.VY, prev)
		} else {
			assert.Equal(t, 4.5, b.VY)
		}
		prev = b.VY
	}
}

func TestLandingSnapsToTileTop(t *testing.T) {
	g := tile.NewGrid(4, 8)
	for col := 0; col < 4; col++ {
		g.SetKind(col, 7, tile.Ground)
	}
	b := &Body{X: 18, Y: 94, W: 12, H: 16, VY: 4, Active: true}

	c := b.Move(g, 1)

	assert.True(t, c.Bottom)
	assert.True(t, b.OnGround)
	assert.Equal(t, 0.0, b.VY)
	assert.Equal(t, 112.0, b.Bottom())
}

func TestCeilingBonkIsReportedOnce(t *testing.T) {
	g := tile.NewGrid(6, 6)
	g.SetKind(2, 2, tile.Question)
	b := &Body{X: 34, Y: 49, W: 12, H: 16, VY: -4, Active: true}

	c := b.Move(g, 1)
	require.True(t, c.Bonked)
	assert.True(t, c.Top)
	assert.Equal(t, tile.Cell{Col: 2, Row: 2, Kind: tile.Question}, c.BonkCell)
	assert.Equal(t, 48.0, b.Y)
	assert.Equal(t, 0.0, b.VY)

	b.ApplyGravity(0.4375, 4.5, 1)
	c = b.Move(g, 1)
	assert.False(t, c.Bonked)
}

func TestBonkPicksTileAboveCentre(t *testing.T) {
	g := tile.NewGrid(6, 6)
	g.SetKind(1, 2, tile.Brick)
	g.SetKind(2, 2, tile.Question)
	// Straddles columns 1 and 2 with its centre in column 2.
	b := &Body{X: 28, Y: 49, W: 12, H: 16, VY: -4, Active: true}

	c := b.Move(g, 1)

	require.True(t, c.Bonked)
	assert.Equal(t, 2, c.BonkCell.Col)
}

func TestWallStopsHorizontalMotion(t *testing.T) {
	g := tile.NewGrid(8, 6)
	g.SetKind(5, 2, tile.Hard)
	b := &Body{X: 66, Y: 32, W: 12, H: 16, VX: 3, Active: true}

	c := b.Move(g, 1)

	assert.True(t, c.Right)
	assert.Equal(t, 68.0, b.X)
	assert.Equal(t, 0.0, b.VX)
}

func TestLeftBoundaryClamps(t *testing.T) {
	g := tile.NewGrid(8, 6)
	b := &Body{X: 1, Y: 32, W: 12, H: 16, VX: -3, Active: true}

	c := b.Move(g, 1)

	assert.True(t, c.Left)
	assert.Equal(t, 0.0, b.X)
	assert.Equal(t, 0.0, b.VX)
}

func TestNoRightBoundaryClamp(t *testing.T) {
	g := tile.NewGrid(4, 4)
	b := &Body{X: 60, Y: 0, W: 12, H: 16, VX: 3, Active: true}

	c := b.Move(g, 1)

	assert.False(t, c.Right)
	assert.Equal(t, 63.0, b.X)
}

func TestDiagonalApproachNeverEmbeds(t *testing.T) {
	g := tile.NewGrid(12, 12)
	for col := 5; col <= 6; col++ {
		for row := 5; row <= 6; row++ {
			g.SetKind(col, row, tile.Hard)
		}
	}

	tests := []struct {
		name         string
		x, y, vx, vy float64
	}{
		{"down-right", 0, 0, 3, 3},
		{"down-left", 150, 0, -3, 3},
		{"up-right", 0, 150, 3, -3},
		{"steep", 40, 30, 4, 4.5},
		{"up-left", 130, 130, -4, -4},
		{"full tile", 20, 20, 15.9, 15.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Body{X: tt.x, Y: tt.y, W: 12, H: 16, VX: tt.vx, VY: tt.vy, Active: true}
			for step := 0; step < 40; step++ {
				// Keep pushing so the body keeps grinding into the block.
				if b.VX == 0 {
					b.VX = tt.vx
				}
				if b.VY == 0 {
					b.VY = tt.vy
				}
				b.Move(g, 1)
				for _, c := range g.Overlapping(b.Rect()) {
					require.False(t, c.Kind.Solid(), "step %d: embedded in %d,%d at %.2f,%.2f", step, c.Col, c.Row, b.X, b.Y)
				}
			}
		})
	}
}

func TestResizeNeedsHeadroom(t *testing.T) {
	g := tile.NewGrid(6, 8)
	for col := 0; col < 6; col++ {
		g.SetKind(col, 7, tile.Ground)
		g.SetKind(col, 5, tile.Hard)
	}
	b := &Body{X: 34, Y: 96, W: 12, H: 16, Active: true}

	assert.False(t, b.Resize(g, 32), "a solid row sits right above the head")
	assert.Equal(t, 96.0, b.Y)
	assert.Equal(t, 16.0, b.H)

	// Shrinking never needs room.
	assert.True(t, b.Resize(g, 8))
	assert.Equal(t, 112.0, b.Bottom())
	require.True(t, b.Resize(g, 16))

	// A rising body under the ceiling stays out of it.
	for step := 0; step < 20; step++ {
		b.VY = -4
		b.Move(g, 1)
		for _, c := range g.Overlapping(b.Rect()) {
			require.False(t, c.Kind.Solid(), "step %d: embedded in %d,%d", step, c.Col, c.Row)
		}
		assert.GreaterOrEqual(t, b.Y, 96.0)
	}

	g.SetKind(2, 5, tile.Empty)
	b.Y, b.VY = 96, 0
	assert.True(t, b.Resize(g, 32))
	assert.Equal(t, 80.0, b.Y)
	assert.Equal(t, 112.0, b.Bottom())
}

func TestStandingOnProbe(t *testing.T) {
	g := tile.NewGrid(8, 4)
	g.SetKind(2, 3, tile.Ground)
	b := &Body{X: 32, Y: 32, W: 16, H: 16}

	assert.True(t, b.StandingOn(g, 40))
	assert.False(t, b.StandingOn(g, 50))
}

func TestFinite(t *testing.T) {
	b := &Body{X: 1, Y: 2}
	assert.True(t, b.Finite())
	b.VX = math.Inf(1)
	assert.False(t, b.Finite())
}
