package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// grounded returns a flat level whose player has already landed.
func grounded(t *testing.T) *Level {
	t.Helper()
	l := testLevel(t, testData(t, flatRows), campaign.Carry{})
	run(l, Input{}, 2)
	require.True(t, l.player.OnGround)
	return l
}

func TestPlayerLandsOnStartCell(t *testing.T) {
	l := testLevel(t, testData(t, flatRows), campaign.Carry{})

	l.Tick(Input{}, frame)

	p := l.Player()
	assert.True(t, p.OnGround)
	assert.Equal(t, 112.0, p.Bottom())
	assert.Equal(t, float64(PlayerSmall), p.H)
}

func TestJumpFromGround(t *testing.T) {
	l := grounded(t)

	l.Tick(Input{Jump: true}, frame)

	assert.Less(t, l.player.VY, 0.0)
	assert.False(t, l.player.OnGround)
}

func TestCoyoteTime(t *testing.T) {
	t.Run("within window", func(t *testing.T) {
		l := grounded(t)
		l.player.Y -= 40 // walked off a ledge
		l.Tick(Input{}, frame)
		require.False(t, l.player.OnGround)

		l.Tick(Input{Jump: true}, frame)
		assert.Less(t, l.player.VY, 0.0)
	})

	t.Run("expired", func(t *testing.T) {
		l := grounded(t)
		l.player.Y -= 40
		run(l, Input{}, 10)
		require.False(t, l.player.OnGround)

		l.Tick(Input{Jump: true}, frame)
		assert.Greater(t, l.player.VY, 0.0)
	})
}

func TestJumpBuffer(t *testing.T) {
	airborne := func(t *testing.T, height float64) *Level {
		l := grounded(t)
		p := l.player
		p.Y -= height
		p.VY = 0
		p.OnGround = false
		p.coyote = 0
		return l
	}

	t.Run("pressed just before landing", func(t *testing.T) {
		l := airborne(t, 3)
		jumped := false
		for i := 0; i < 6 && !jumped; i++ {
			l.Tick(Input{Jump: true}, frame)
			jumped = l.player.VY < 0
		}
		assert.True(t, jumped)
	})

	t.Run("pressed too early", func(t *testing.T) {
		l := airborne(t, 40)
		for i := 0; i < 30; i++ {
			l.Tick(Input{Jump: true}, frame)
			require.GreaterOrEqual(t, l.player.VY, 0.0, "tick %d", i)
		}
		assert.True(t, l.player.OnGround)
	})
}

func TestHoldingJumpGoesHigher(t *testing.T) {
	apex := func(hold bool) float64 {
		l := grounded(t)
		top := l.player.Y
		for i := 0; i < 60; i++ {
			l.Tick(Input{Jump: i == 0 || hold}, frame)
			top = min(top, l.player.Y)
		}
		return top
	}

	assert.Less(t, apex(true), apex(false))
}

func TestRunningJumpIsStronger(t *testing.T) {
	walk := grounded(t)
	walk.Tick(Input{Jump: true}, frame)

	running := grounded(t)
	running.player.VX = running.cfg.Player.RunSpeed
	running.Tick(Input{Right: true, Run: true, Jump: true}, frame)

	assert.Less(t, running.player.VY, walk.player.VY)
}

func TestSkidDeceleratesFasterThanRelease(t *testing.T) {
	skid := grounded(t)
	skid.player.VX = 2
	skid.Tick(Input{Left: true}, frame)

	release := grounded(t)
	release.player.VX = 2
	release.Tick(Input{}, frame)

	assert.Greater(t, skid.player.VX, 0.0)
	assert.Less(t, skid.player.VX, release.player.VX)
	assert.Equal(t, AnimSkid, skid.player.Anim)
	assert.Equal(t, Left, skid.player.Facing)
}

func TestAirControlIsWeaker(t *testing.T) {
	ground := grounded(t)
	ground.Tick(Input{Right: true}, frame)

	air := grounded(t)
	air.player.Y -= 40
	air.player.OnGround = false
	air.Tick(Input{Right: true}, frame)

	assert.Greater(t, ground.player.VX, air.player.VX)
	assert.Greater(t, air.player.VX, 0.0)
}

func TestDamageTiers(t *testing.T) {
	p := newPlayer(tile.Pos{Col: 3, Row: 6}, campaign.Carry{Lives: 3, Size: campaign.Fire}, nil)
	require.Equal(t, float64(PlayerBig), p.H)
	feet := p.Bottom()

	assert.False(t, p.hurt(2))
	assert.Equal(t, campaign.Big, p.Size)
	assert.Equal(t, 2.0, p.Invincible)

	// Invincibility swallows further hits.
	assert.False(t, p.hurt(2))
	assert.Equal(t, campaign.Big, p.Size)

	p.Invincible = 0
	assert.False(t, p.hurt(2))
	assert.Equal(t, campaign.Small, p.Size)
	assert.Equal(t, float64(PlayerSmall), p.H)
	assert.Equal(t, feet, p.Bottom())

	p.Invincible = 0
	assert.True(t, p.hurt(2), "a hit at the lowest tier is lethal")
}

func TestStarIgnoresDamage(t *testing.T) {
	p := newPlayer(tile.Pos{Col: 3, Row: 6}, campaign.Carry{Lives: 3}, nil)
	p.Star = 5

	assert.False(t, p.Vulnerable())
	assert.False(t, p.hurt(2))
	assert.Equal(t, campaign.Small, p.Size)
}

func TestDieSpendsOneLife(t *testing.T) {
	p := newPlayer(tile.Pos{Col: 3, Row: 6}, campaign.Carry{Lives: 3}, nil)

	p.die(3)
	p.die(3)

	assert.True(t, p.Dead)
	assert.Equal(t, ModeDead, p.Mode)
	assert.Equal(t, 2, p.Lives)
}

func TestPowerupUnderLowCeiling(t *testing.T) {
	rows := withRows(flatRows, map[[2]int]byte{
		{1, 5}: 'H', {2, 5}: 'H', {3, 5}: 'H', {4, 5}: 'H', {5, 5}: 'H', {6, 5}: 'H',
	})
	l := testLevel(t, testData(t, rows), campaign.Carry{})
	run(l, Input{}, 2)
	p := l.player

	p.setSize(campaign.Big, l.grid)
	assert.Equal(t, campaign.Big, p.Size)
	assert.Equal(t, float64(PlayerSmall), p.H, "no room to grow yet")

	embedded := func() bool {
		for _, c := range l.grid.Overlapping(p.Rect()) {
			if c.Kind.Solid() {
				return true
			}
		}
		return false
	}
	for i := 0; i < 20; i++ {
		l.Tick(Input{Jump: true}, frame)
		require.False(t, embedded(), "tick %d at %.1f,%.1f", i, p.X, p.Y)
		assert.GreaterOrEqual(t, p.Y, 96.0, "the ceiling holds")
	}

	grew := runUntil(l, Input{Right: true, Run: true}, 200, func() bool { return p.H == PlayerBig })
	require.True(t, grew, "grows once clear of the ceiling")
	assert.False(t, embedded())
	assert.Equal(t, 112.0, p.Bottom())
	assert.GreaterOrEqual(t, p.X, 112.0)
}
