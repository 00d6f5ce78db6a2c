package sim

import (
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

func withEnemy(t *testing.T, rows []string, kind levels.EnemyKind, col, row int) *levels.Data {
	t.Helper()
	d := testData(t, rows)
	d.Enemies = append(d.Enemies, levels.Spawn{Col: col, Row: row, Kind: kind})
	return d
}

func TestGoombaTurnsAtLedge(t *testing.T) {
	rows := withRows(flatRows, map[[2]int]byte{
		{4, 4}: 'H', {5, 4}: 'H', {6, 4}: 'H', {7, 4}: 'H',
	})
	l := testLevel(t, withEnemy(t, rows, levels.Goomba, 5, 3), campaign.Carry{})
	g := findEnemy(l, levels.Goomba)
	require.NotNil(t, g)

	turned := 0
	facing := g.Facing
	for i := 0; i < 600; i++ {
		l.Tick(Input{}, frame)
		require.True(t, g.Active)
		assert.GreaterOrEqual(t, g.X, 64.0)
		assert.LessOrEqual(t, g.X+g.W, 128.0)
		if g.Facing != facing {
			turned++
			facing = g.Facing
		}
	}
	assert.Equal(t, 64.0, g.Bottom())
	assert.Greater(t, turned, 2)
}

func TestStompSquishesGoomba(t *testing.T) {
	d := withEnemy(t, flatRows, levels.Goomba, 6, 6)
	d.PlayerStart = tile.Pos{Col: 6, Row: 3}
	l := testLevel(t, d, campaign.Carry{})
	g := findEnemy(l, levels.Goomba)
	require.NotNil(t, g)

	squished := runUntil(l, Input{}, 60, func() bool { return g.walker.squished })
	require.True(t, squished)
	assert.Equal(t, Playing, l.Completion())
	assert.Equal(t, campaign.Small, l.player.Size)
	assert.Equal(t, l.cfg.Scoring.Stomp, l.player.Score)
	assert.Less(t, l.player.VY, 0.0, "stomp bounces the player")
	assert.False(t, g.Touchable())

	// The flattened body lingers briefly, then disappears.
	run(l, Input{}, 40)
	assert.Nil(t, findEnemy(l, levels.Goomba))
	assert.Equal(t, Playing, l.Completion())
}

func TestStompAtLowTickRates(t *testing.T) {
	// Walls on both sides pin the goomba to column 6.
	rows := withRows(flatRows, map[[2]int]byte{{5, 6}: 'H', {7, 6}: 'H'})

	for _, fps := range []float64{60, 30, 20} {
		t.Run(fmt.Sprintf("%.0f fps", fps), func(t *testing.T) {
			for drop := 8.0; drop < 72; drop += 2 {
				l := testLevel(t, withEnemy(t, rows, levels.Goomba, 6, 6), campaign.Carry{Size: campaign.Big})
				g := findEnemy(l, levels.Goomba)
				require.NotNil(t, g)
				p := l.player
				p.X, p.Y = 98, 96-drop-p.H
				p.VX, p.VY = 0, 0
				p.OnGround = false

				for i := 0; i < 120 && !g.walker.squished && p.Size == campaign.Big; i++ {
					l.Tick(Input{}, 1/fps)
				}
				assert.True(t, g.walker.squished, "drop %.0f", drop)
				assert.Equal(t, campaign.Big, p.Size, "drop %.0f", drop)
			}
		})
	}
}

func TestGoombaContactHurts(t *testing.T) {
	t.Run("small player dies", func(t *testing.T) {
		l := testLevel(t, withEnemy(t, flatRows, levels.Goomba, 6, 6), campaign.Carry{})
		died := runUntil(l, Input{}, 200, func() bool { return l.Completion() == Dying })
		require.True(t, died)
		assert.Equal(t, 2, l.player.Lives)
	})

	t.Run("big player shrinks", func(t *testing.T) {
		l := testLevel(t, withEnemy(t, flatRows, levels.Goomba, 6, 6), campaign.Carry{Size: campaign.Big})
		hit := runUntil(l, Input{}, 200, func() bool { return l.player.Size == campaign.Small })
		require.True(t, hit)
		assert.Equal(t, Playing, l.Completion())
		assert.Greater(t, l.player.Invincible, 0.0)
		assert.Equal(t, 112.0, l.player.Bottom())

		// Invincibility frames let the goomba walk through.
		run(l, Input{}, 60)
		assert.Equal(t, Playing, l.Completion())
	})
}

func TestStarDefeatsOnContact(t *testing.T) {
	l := testLevel(t, withEnemy(t, flatRows, levels.Goomba, 6, 6), campaign.Carry{})
	l.player.Star = l.cfg.Player.StarTime

	gone := runUntil(l, Input{}, 200, func() bool { return findEnemy(l, levels.Goomba) == nil })
	require.True(t, gone)
	assert.Equal(t, Playing, l.Completion())
	assert.Equal(t, l.cfg.Scoring.Stomp, l.player.Score)
}

func TestKnockEnemyOffBumpedBlock(t *testing.T) {
	rows := withRows(flatRows, map[[2]int]byte{{8, 4}: 'B'})
	l := testLevel(t, withEnemy(t, rows, levels.Goomba, 8, 3), campaign.Carry{})
	run(l, Input{}, 1)
	g := findEnemy(l, levels.Goomba)
	require.NotNil(t, g)
	require.True(t, g.OnGround)

	l.bonk(tile.Cell{Col: 8, Row: 4, Kind: tile.Brick})

	assert.False(t, g.Active)
	assert.Equal(t, tile.Brick, l.Grid().KindAt(8, 4), "small player only bumps")
	assert.Equal(t, l.cfg.Scoring.Stomp, l.player.Score)
}

func TestKoopaShellCycle(t *testing.T) {
	rows := withRows(flatRows, map[[2]int]byte{{15, 6}: 'H'})
	l := testLevel(t, withEnemy(t, rows, levels.Koopa, 10, 6), campaign.Carry{})
	k := findEnemy(l, levels.Koopa)
	require.NotNil(t, k)
	assert.Equal(t, float64(koopaWalkH), k.H)

	require.True(t, k.stomp(l))
	assert.Equal(t, ShellStill, k.Shell())
	assert.Equal(t, float64(tile.Size), k.H)
	assert.Equal(t, 112.0, k.Bottom())

	// Lingering overlap right after the stomp does not kick.
	assert.False(t, k.contact(l))
	assert.Equal(t, ShellStill, k.Shell())

	k.shell.grace = 0
	assert.False(t, k.contact(l), "kicking a still shell never hurts")
	assert.Equal(t, ShellSliding, k.Shell())
	assert.Equal(t, Right, k.Facing, "kicked away from the player")
	assert.False(t, k.contact(l), "fresh kick is harmless")
	assert.Equal(t, l.cfg.Scoring.Stomp+l.cfg.Scoring.ShellKick, l.player.Score)

	bounced := runUntil(l, Input{}, 30, func() bool { return k.Facing == Left })
	require.True(t, bounced, "sliding shell reverses on the wall")
	assert.LessOrEqual(t, k.X+k.W, 240.0)
	assert.True(t, k.contact(l), "sliding shell hurts once the grace ends")

	require.True(t, k.stomp(l))
	assert.Equal(t, ShellStill, k.Shell())
	assert.Equal(t, 0.0, k.VX)
}

func TestShellRevertsToWalker(t *testing.T) {
	l := testLevel(t, withEnemy(t, flatRows, levels.Koopa, 12, 6), campaign.Carry{})
	k := findEnemy(l, levels.Koopa)
	require.NotNil(t, k)
	require.True(t, k.stomp(l))

	run(l, Input{}, 200)
	assert.Equal(t, ShellStill, k.Shell())

	run(l, Input{}, 120)
	assert.Equal(t, ShellNone, k.Shell())
	assert.Equal(t, float64(koopaWalkH), k.H)
	assert.Equal(t, 112.0, k.Bottom())
}

func TestShellWaitsForHeadroom(t *testing.T) {
	rows := withRows(flatRows, map[[2]int]byte{{11, 5}: 'H', {12, 5}: 'H', {13, 5}: 'H'})
	l := testLevel(t, withEnemy(t, rows, levels.Koopa, 12, 6), campaign.Carry{})
	k := findEnemy(l, levels.Koopa)
	require.NotNil(t, k)
	require.True(t, k.stomp(l))

	run(l, Input{}, 400)
	assert.Equal(t, ShellStill, k.Shell(), "a low ceiling keeps it in the shell")
	assert.Equal(t, float64(tile.Size), k.H)

	l.Grid().SetKind(12, 5, tile.Empty)
	l.Grid().SetKind(13, 5, tile.Empty)
	run(l, Input{}, 1)
	assert.Equal(t, ShellNone, k.Shell())
	assert.Equal(t, float64(koopaWalkH), k.H)
	assert.Equal(t, 112.0, k.Bottom())
}

func TestParatroopaLosesWings(t *testing.T) {
	l := testLevel(t, withEnemy(t, flatRows, levels.Paratroopa, 10, 3), campaign.Carry{})
	e := findEnemy(l, levels.Paratroopa)
	require.NotNil(t, e)

	require.True(t, e.stomp(l))
	assert.Equal(t, levels.Koopa, e.Kind)
	assert.Equal(t, ShellNone, e.Shell())
	assert.Equal(t, levels.ClassShell, e.Kind.Class())
}

func TestFlyerStaysInItsBand(t *testing.T) {
	l := testLevel(t, withEnemy(t, flatRows, levels.Paratroopa, 10, 3), campaign.Carry{})
	e := findEnemy(l, levels.Paratroopa)
	require.NotNil(t, e)
	baseY, originX := e.flyer.baseY, e.flyer.originX
	amp := l.cfg.Enemies.FlyerAmplitude
	reach := float64(l.cfg.Enemies.FlyerRange*tile.Size) + 1

	for i := 0; i < 600; i++ {
		l.Tick(Input{}, frame)
		require.True(t, e.Active)
		assert.InDelta(t, baseY, e.Y, amp+1e-9)
		assert.InDelta(t, originX, e.X, reach)
	}
	assert.Equal(t, Playing, l.Completion())
}

func TestPiranhaCycle(t *testing.T) {
	rows := withRows(flatRows, map[[2]int]byte{
		{8, 5}: 'T', {9, 5}: 'T', {8, 6}: 'T', {9, 6}: 'T',
	})

	t.Run("rises when the player is away", func(t *testing.T) {
		l := testLevel(t, withEnemy(t, rows, levels.Piranha, 8, 4), campaign.Carry{})
		e := findEnemy(l, levels.Piranha)
		require.NotNil(t, e)
		assert.Equal(t, 144.0, e.CenterX())
		assert.False(t, e.Touchable())

		run(l, Input{}, 100)
		assert.Equal(t, PiranhaHidden, e.piranha.phase)

		shown := runUntil(l, Input{}, 200, func() bool { return e.piranha.phase == PiranhaShown })
		require.True(t, shown)
		assert.Equal(t, e.piranha.shownY, e.Y)
		assert.Equal(t, 80.0, e.Bottom())
		assert.True(t, e.Touchable())

		lowered := runUntil(l, Input{}, 200, func() bool { return e.piranha.phase == PiranhaHidden })
		require.True(t, lowered)
		assert.Equal(t, e.piranha.hiddenY, e.Y)
	})

	t.Run("stays hidden under a nearby player", func(t *testing.T) {
		d := withEnemy(t, rows, levels.Piranha, 8, 4)
		d.PlayerStart = tile.Pos{Col: 9, Row: 4}
		l := testLevel(t, d, campaign.Carry{})
		e := findEnemy(l, levels.Piranha)
		require.NotNil(t, e)

		run(l, Input{}, 400)
		assert.Equal(t, PiranhaHidden, e.piranha.phase)
		assert.Equal(t, Playing, l.Completion())
	})
}

func TestFireballs(t *testing.T) {
	t.Run("defeats a goomba", func(t *testing.T) {
		l := testLevel(t, withEnemy(t, flatRows, levels.Goomba, 8, 6), campaign.Carry{Size: campaign.Fire})
		l.Tick(Input{Run: true}, frame)
		require.Len(t, l.fireballs, 1)

		gone := runUntil(l, Input{}, 60, func() bool { return findEnemy(l, levels.Goomba) == nil })
		require.True(t, gone)
		assert.Empty(t, l.fireballs)
		assert.Equal(t, l.cfg.Scoring.FireballKill, l.player.Score)
	})

	t.Run("beetle is fireproof", func(t *testing.T) {
		l := testLevel(t, withEnemy(t, flatRows, levels.Beetle, 8, 6), campaign.Carry{Size: campaign.Fire})
		l.Tick(Input{Run: true}, frame)
		require.Len(t, l.fireballs, 1)

		spent := runUntil(l, Input{}, 60, func() bool { return len(l.fireballs) == 0 })
		require.True(t, spent, "fireball is consumed on impact")
		b := findEnemy(l, levels.Beetle)
		require.NotNil(t, b)
		assert.True(t, b.Active)
		assert.Zero(t, l.player.Score)
	})

	t.Run("limited to two at once", func(t *testing.T) {
		l := testLevel(t, testData(t, flatRows), campaign.Carry{Size: campaign.Fire})
		for i := 0; i < 3; i++ {
			l.Tick(Input{Run: true}, frame)
			l.Tick(Input{}, frame)
		}
		assert.Len(t, l.fireballs, l.cfg.Player.MaxFireballs)
	})

	t.Run("needs the fire tier", func(t *testing.T) {
		l := testLevel(t, testData(t, flatRows), campaign.Carry{Size: campaign.Big})
		l.Tick(Input{Run: true}, frame)
		assert.Empty(t, l.fireballs)
	})
}

func TestNonFiniteEnemyIsRemoved(t *testing.T) {
	l := testLevel(t, withEnemy(t, flatRows, levels.Goomba, 10, 6), campaign.Carry{})
	g := findEnemy(l, levels.Goomba)
	require.NotNil(t, g)
	g.VX = math.NaN()

	l.Tick(Input{}, frame)

	assert.Nil(t, findEnemy(l, levels.Goomba))
	assert.Equal(t, Playing, l.Completion())
}

func TestFirebarSegments(t *testing.T) {
	l := testLevel(t, withEnemy(t, flatRows, levels.Firebar, 10, 3), campaign.Carry{})
	e := findEnemy(l, levels.Firebar)
	require.NotNil(t, e)
	assert.False(t, e.Stompable())
	assert.True(t, e.Fireproof())

	segs := e.Segments()
	require.Len(t, segs, l.cfg.Enemies.FirebarLength)
	assert.InDelta(t, 168.0, segs[0].CenterX(), 1e-9)
	assert.InDelta(t, 168.0+32, segs[4].CenterX(), 1e-9)

	e.firebar.angle = math.Pi / 2
	segs = e.Segments()
	assert.InDelta(t, 168.0, segs[4].CenterX(), 1e-9)
	assert.InDelta(t, 56.0+32, segs[4].Y+segs[4].H/2, 1e-9)

	before := e.firebar.angle
	l.Tick(Input{}, frame)
	assert.InDelta(t, before+l.cfg.Enemies.FirebarSpeed*frame, e.firebar.angle, 1e-9)
}

func TestCollectItems(t *testing.T) {
	tests := []struct {
		name      string
		kind      ItemKind
		size      campaign.Size
		wantSize  campaign.Size
		wantLives int
		wantScore bool
	}{
		{"mushroom grows", ItemMushroom, campaign.Small, campaign.Big, 3, true},
		{"mushroom keeps fire", ItemMushroom, campaign.Fire, campaign.Fire, 3, true},
		{"flower on small", ItemFlower, campaign.Small, campaign.Big, 3, true},
		{"flower on big", ItemFlower, campaign.Big, campaign.Fire, 3, true},
		{"one up", ItemLife, campaign.Small, campaign.Small, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := testLevel(t, testData(t, flatRows), campaign.Carry{Size: tt.size})
			it := newItem(l.newID(), tt.kind, tile.Pos{Col: 10, Row: 6})
			it.Emerging = false

			it.collect(l)

			assert.False(t, it.Active)
			assert.Equal(t, tt.wantSize, l.player.Size)
			assert.Equal(t, tt.wantLives, l.player.Lives)
			if tt.wantScore {
				assert.Equal(t, l.cfg.Scoring.Powerup, l.player.Score)
			} else {
				assert.Zero(t, l.player.Score)
			}
		})
	}

	t.Run("star", func(t *testing.T) {
		l := testLevel(t, testData(t, flatRows), campaign.Carry{})
		newItem(l.newID(), ItemStar, tile.Pos{Col: 10, Row: 6}).collect(l)
		assert.Equal(t, l.cfg.Player.StarTime, l.player.Star)
		assert.False(t, l.player.Vulnerable())
	})
}

func bossLevel(t *testing.T, script string) (*Level, *Enemy) {
	t.Helper()
	opts := testOptions()
	opts.BossScript = []byte(script)
	l, err := New(withEnemy(t, flatRows, levels.Bowser, 12, 6), campaign.Carry{Lives: 3}, opts)
	require.NoError(t, err)
	boss := findEnemy(l, levels.Bowser)
	require.NotNil(t, boss)
	require.NotNil(t, l.brain)
	return l, boss
}

func TestBossBrain(t *testing.T) {
	t.Run("default script compiles", func(t *testing.T) {
		b, err := newBossBrain(nil, log.New(io.Discard))
		require.NoError(t, err)
		assert.False(t, b.broken)
	})

	t.Run("compile error", func(t *testing.T) {
		_, err := newBossBrain([]byte("vx := ("), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compile boss script")
	})

	t.Run("default paces within limits", func(t *testing.T) {
		l, boss := bossLevel(t, "")
		limit := 3 * l.cfg.Enemies.BossSpeed
		for i := 0; i < 240; i++ {
			l.Tick(Input{}, frame)
			require.True(t, boss.Active)
			assert.LessOrEqual(t, math.Abs(boss.VX), limit+1e-9)
		}
		assert.False(t, l.brain.broken)
		assert.Equal(t, Left, boss.Facing, "boss watches the player")
	})

	t.Run("velocity is clamped", func(t *testing.T) {
		l, boss := bossLevel(t, "vx := 100.0\njump := true")
		vx, jump := l.brain.decide(l, boss)
		assert.InDelta(t, 3*l.cfg.Enemies.BossSpeed, vx, 1e-9)
		assert.True(t, jump)
	})

	t.Run("runtime error falls back", func(t *testing.T) {
		l, boss := bossLevel(t, "vx := speed()")
		vx, jump := l.brain.decide(l, boss)
		assert.True(t, l.brain.broken)
		assert.InDelta(t, -l.cfg.Enemies.BossSpeed, vx, 1e-9, "walks toward the player")
		assert.False(t, jump)

		run(l, Input{}, 30)
		assert.True(t, boss.Active)
	})

	t.Run("fireballs wear the boss down", func(t *testing.T) {
		l, boss := bossLevel(t, "")
		hp := boss.HP()
		for i := 0; i < hp-1; i++ {
			boss.hitByFireball(l)
		}
		assert.Equal(t, 1, boss.HP())
		assert.True(t, boss.Active)

		boss.hitByFireball(l)
		assert.False(t, boss.Active)
		assert.Equal(t, l.cfg.Scoring.BossDefeat, l.player.Score)
	})
}
