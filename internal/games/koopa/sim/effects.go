package sim

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// EffectKind is a purely visual, non-interacting entity.
type EffectKind uint8

const (
	EffectCoin   EffectKind = iota // coin popping out of a block
	EffectDebris                   // brick fragment
	EffectScore                    // floating points
	EffectBump                     // block nudged from below
	EffectDefeat                   // enemy knocked off the screen
	EffectPuff                     // fireball burst
)

func (k EffectKind) String() string {
	switch k {
	case EffectCoin:
		return "coin_fx"
	case EffectDebris:
		return "debris"
	case EffectScore:
		return "score"
	case EffectBump:
		return "bump"
	case EffectDefeat:
		return "defeat"
	case EffectPuff:
		return "puff"
	default:
		return "effect"
	}
}

var effectLife = [...]float64{
	EffectCoin:   0.5,
	EffectDebris: 1.0,
	EffectScore:  0.8,
	EffectBump:   0.2,
	EffectDefeat: 1.5,
	EffectPuff:   0.15,
}

// Effect is a short-lived visual. Value carries the points of a score
// pop-up, and Label names the defeated enemy.
type Effect struct {
	ID     int
	Kind   EffectKind
	X, Y   float64
	VX, VY float64
	W, H   float64
	Value  int
	Label  string
	Active bool

	timer  float64
	baseY  float64
	bounce *gween.Tween
}

func newEffect(id int, kind EffectKind, x, y float64, value int) *Effect {
	fx := &Effect{ID: id, Kind: kind, X: x, Y: y, W: 8, H: 8, Value: value, Active: true}
	fx.timer = effectLife[kind]
	fx.baseY = y
	switch kind {
	case EffectCoin:
		fx.VY = -5
	case EffectScore:
		fx.VY = -0.5
	case EffectDefeat:
		fx.VY = -3
	case EffectBump:
		fx.W, fx.H = tile.Size, tile.Size
		fx.bounce = gween.New(0, 1, float32(fx.timer), ease.Linear)
	}
	return fx
}

// debris returns the four fragments of a broken brick.
func debris(l *Level, cell tile.Pos) []*Effect {
	x := float64(cell.Col * tile.Size)
	y := float64(cell.Row * tile.Size)
	out := make([]*Effect, 0, 4)
	for i, v := range [4][2]float64{{-1, -5}, {1, -5}, {-1, -3}, {1, -3}} {
		fx := newEffect(l.newID(), EffectDebris, x+float64(i%2)*8, y+float64(i/2)*8, 0)
		fx.VX, fx.VY = v[0], v[1]
		out = append(out, fx)
	}
	return out
}

func (fx *Effect) update(l *Level, dt, scale float64) {
	fx.timer -= dt
	switch fx.Kind {
	case EffectBump:
		t, done := fx.bounce.Update(float32(dt))
		fx.Y = fx.baseY - 4*math.Sin(math.Pi*float64(t))
		if done {
			fx.Active = false
		}
		return
	case EffectScore, EffectPuff:
	default:
		fx.VY += l.cfg.Physics.Gravity * scale
	}
	fx.X += fx.VX * scale
	fx.Y += fx.VY * scale
	if fx.timer <= 0 {
		fx.Active = false
	}
}
