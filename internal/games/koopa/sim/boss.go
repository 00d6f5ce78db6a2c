package sim

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

//go:embed boss.tengo
var defaultBossScript []byte

// bossPatrol is how far from its spawn the boss paces.
const bossPatrol = 3 * tile.Size

// bossBrain runs a tengo script that picks the boss velocity each tick.
// A script that fails at runtime is disabled and the boss falls back to
// walking toward the player.
type bossBrain struct {
	compiled *tengo.Compiled
	logger   *log.Logger
	broken   bool
}

var bossFloatInputs = []string{"boss_x", "boss_y", "player_x", "player_y", "home_x", "patrol", "speed"}

func newBossBrain(src []byte, logger *log.Logger) (*bossBrain, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		src = defaultBossScript
	}
	script := tengo.NewScript(src)
	for _, name := range bossFloatInputs {
		_ = script.Add(name, 0.0)
	}
	_ = script.Add("on_ground", false)
	_ = script.Add("hp", 0)
	_ = script.Add("tick", 0)
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("sim: compile boss script: %w", err)
	}
	return &bossBrain{compiled: compiled, logger: logger}, nil
}

func (b *bossBrain) decide(l *Level, e *Enemy) (vx float64, jump bool) {
	speed := l.cfg.Enemies.BossSpeed * l.speedScale
	fallback := speed
	if l.player.CenterX() < e.CenterX() {
		fallback = -speed
	}
	if b.broken {
		return fallback, false
	}

	inputs := []struct {
		name  string
		value any
	}{
		{"boss_x", e.X},
		{"boss_y", e.Y},
		{"player_x", l.player.X},
		{"player_y", l.player.Y},
		{"home_x", e.boss.homeX},
		{"patrol", float64(bossPatrol)},
		{"speed", speed},
		{"on_ground", e.OnGround},
		{"hp", e.boss.hp},
		{"tick", l.ticks},
	}
	for _, in := range inputs {
		if err := b.compiled.Set(in.name, in.value); err != nil {
			return b.fail(err, fallback)
		}
	}
	if err := b.compiled.Run(); err != nil {
		return b.fail(err, fallback)
	}

	vx = b.compiled.Get("vx").Float()
	if math.IsNaN(vx) || math.IsInf(vx, 0) {
		return fallback, false
	}
	limit := 3 * speed
	vx = math.Max(-limit, math.Min(limit, vx))
	return vx, b.compiled.Get("jump").Bool()
}

func (b *bossBrain) fail(err error, fallback float64) (float64, bool) {
	b.broken = true
	if b.logger != nil {
		b.logger.Warn("boss script disabled", "error", err)
	}
	return fallback, false
}
