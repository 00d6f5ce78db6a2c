package sim

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// Player hitbox sizes in pixels.
const (
	PlayerW     = 12
	PlayerSmall = 16
	PlayerBig   = 32
)

// Input is the held-key set for one tick.
type Input struct {
	Left, Right bool
	Up, Down    bool
	Jump        bool
	Run         bool
}

// PlayerMode is the player's top-level state.
type PlayerMode uint8

const (
	ModeNormal PlayerMode = iota
	ModeDead
	ModeFlagSlide
	ModeWalkOff
	ModeCastle
)

// Animation frames reported in EntityState.Anim.
const (
	AnimIdle = iota
	AnimWalk1
	AnimWalk2
	AnimWalk3
	AnimJump
	AnimSkid
	AnimDead
	AnimSlide
)

// Player is the controllable character. Exactly one exists per level.
type Player struct {
	Body
	Size       campaign.Size
	Lives      int
	Score      int
	Coins      int
	Invincible float64
	Star       float64
	Dead       bool
	Mode       PlayerMode
	Anim       int

	coyote     float64
	jumpBuffer float64
	jumpHold   float64
	prevJump   bool
	prevRun    bool
	skidding   bool
	stride     float64
	deathTimer float64
	slide      *gween.Tween
	walkOff    float64
	prevBottom float64 // feet at the start of the tick
}

func newPlayer(start tile.Pos, carry campaign.Carry, g *tile.Grid) *Player {
	p := &Player{
		Body: Body{
			W:      PlayerW,
			H:      PlayerSmall,
			Facing: Right,
			Active: true,
		},
		Lives: carry.Lives,
		Score: carry.Score,
		Coins: carry.Coins,
	}
	p.X = float64(start.Col*tile.Size) + (tile.Size-PlayerW)/2
	p.Y = float64((start.Row+1)*tile.Size) - p.H
	p.setSize(carry.Size, g)
	return p
}

// setSize changes the tier and hitbox height, keeping the feet in place.
// A powered-up player under a low ceiling keeps the small hitbox until
// there is headroom; control retries the growth every tick.
func (p *Player) setSize(s campaign.Size, g *tile.Grid) {
	p.Size = s
	p.Resize(g, p.hitboxH())
}

func (p *Player) hitboxH() float64 {
	if p.Size > campaign.Small {
		return PlayerBig
	}
	return PlayerSmall
}

// Carry returns the stats the campaign absorbs at a level boundary.
func (p *Player) Carry() campaign.Carry {
	return campaign.Carry{Lives: p.Lives, Score: p.Score, Coins: p.Coins, Size: p.Size}
}

// Vulnerable reports whether enemy contact can hurt the player.
func (p *Player) Vulnerable() bool {
	return p.Mode == ModeNormal && p.Invincible <= 0 && p.Star <= 0
}

// control applies horizontal input, jump logic and gravity, then moves the
// player through the grid.
func (p *Player) control(in Input, l *Level, dt, scale float64) Collision {
	cfg := l.cfg.Player
	phys := l.cfg.Physics

	p.Invincible = max(p.Invincible-dt, 0)
	p.Star = max(p.Star-dt, 0)
	if p.H < p.hitboxH() {
		p.Resize(l.grid, p.hitboxH())
	}

	// Horizontal
	maxSpeed, accel := cfg.WalkSpeed, cfg.WalkAccel
	if in.Run {
		maxSpeed, accel = cfg.RunSpeed, cfg.RunAccel
	}
	if !p.OnGround {
		accel = cfg.AirAccel
	}
	dir := 0.0
	if in.Left && !in.Right {
		dir = -1
	} else if in.Right && !in.Left {
		dir = 1
	}
	p.skidding = false
	switch {
	case dir != 0:
		if p.VX != 0 && math.Signbit(p.VX) != math.Signbit(dir) && p.OnGround {
			p.VX += dir * cfg.SkidDecel * scale
			p.skidding = true
		} else {
			p.VX += dir * accel * scale
		}
		p.Facing = Facing(dir)
		if math.Abs(p.VX) > maxSpeed {
			// Releasing run bleeds speed at the ground deceleration rate.
			target := math.Copysign(maxSpeed, p.VX)
			p.VX = approach(p.VX, target, cfg.Decel*scale)
		}
	case p.OnGround:
		p.VX = approach(p.VX, 0, cfg.Decel*scale)
	}

	// Jump: coyote time after leaving ground and a short press buffer.
	if p.OnGround {
		p.coyote = cfg.CoyoteTime
	} else {
		p.coyote -= dt
	}
	if in.Jump && !p.prevJump {
		p.jumpBuffer = cfg.JumpBuffer
	} else {
		p.jumpBuffer -= dt
	}
	p.prevJump = in.Jump
	if p.jumpBuffer > 0 && (p.OnGround || p.coyote > 0) {
		p.VY = cfg.JumpWalk
		if math.Abs(p.VX) > cfg.WalkSpeed*0.8 {
			p.VY = cfg.JumpRun
		}
		p.jumpHold = cfg.JumpHoldTime
		p.jumpBuffer = 0
		p.coyote = 0
		p.OnGround = false
	}

	g := phys.Gravity
	if in.Jump && p.jumpHold > 0 && p.VY < 0 {
		g = phys.GravityHold
		p.jumpHold -= dt
	} else {
		p.jumpHold = 0
	}
	p.ApplyGravity(g, phys.MaxFall, scale)

	// Fireballs on the run edge at the fire tier.
	if in.Run && !p.prevRun && p.Size == campaign.Fire {
		l.throwFireball()
	}
	p.prevRun = in.Run

	col := p.Move(l.grid, scale)
	p.animate(scale)
	return col
}

func (p *Player) animate(scale float64) {
	switch {
	case p.Mode == ModeDead:
		p.Anim = AnimDead
	case p.Mode == ModeFlagSlide:
		p.Anim = AnimSlide
	case !p.OnGround:
		p.Anim = AnimJump
	case p.skidding:
		p.Anim = AnimSkid
	case p.VX == 0:
		p.Anim = AnimIdle
		p.stride = 0
	default:
		p.stride += math.Abs(p.VX) * scale
		p.Anim = AnimWalk1 + int(p.stride/6)%3
	}
}

// hurt applies one hit. It returns true if the hit was lethal.
func (p *Player) hurt(invincible float64) bool {
	if !p.Vulnerable() {
		return false
	}
	switch p.Size {
	case campaign.Fire:
		p.setSize(campaign.Big, nil)
	case campaign.Big:
		p.setSize(campaign.Small, nil)
	default:
		return true
	}
	p.Invincible = invincible
	return false
}

// die starts the death animation. Lives are spent immediately.
func (p *Player) die(deathTime float64) {
	if p.Dead {
		return
	}
	p.Dead = true
	p.Mode = ModeDead
	p.Lives--
	p.Star = 0
	p.Invincible = 0
	p.VX = 0
	p.VY = -4
	p.deathTimer = deathTime
	p.Anim = AnimDead
}

// fallDead runs the death hop: gravity only, no tiles.
func (p *Player) fallDead(l *Level, dt, scale float64) bool {
	p.ApplyGravity(l.cfg.Physics.Gravity, l.cfg.Physics.MaxFall, scale)
	p.Y += p.VY * scale
	p.deathTimer -= dt
	return p.deathTimer <= 0
}

// startSlide snaps the player to the pole and tweens them down to its base.
func (p *Player) startSlide(pole tile.Pos, slideSpeed float64) {
	p.Mode = ModeFlagSlide
	p.VX, p.VY = 0, 0
	p.Star = 0
	p.X = float64(pole.Col*tile.Size) + tile.Size/2 - p.W
	p.Facing = Right
	base := float64((pole.Row+1)*tile.Size) - p.H
	if p.Y > base {
		p.Y = base
	}
	dist := base - p.Y
	duration := dist / (slideSpeed * 60)
	if duration <= 0 {
		duration = 1.0 / 60
	}
	p.slide = gween.New(float32(p.Y), float32(base), float32(duration), ease.Linear)
	p.Anim = AnimSlide
}

// slideDown advances the pole slide and reports when it finished.
func (p *Player) slideDown(dt float64) bool {
	if p.slide == nil {
		return true
	}
	y, done := p.slide.Update(float32(dt))
	p.Y = float64(y)
	return done
}

func approach(v, target, step float64) float64 {
	if v < target {
		return math.Min(v+step, target)
	}
	return math.Max(v-step, target)
}
