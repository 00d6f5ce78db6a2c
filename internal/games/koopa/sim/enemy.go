package sim

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// ShellMode is the sub-state of a shell-capable walker.
type ShellMode uint8

const (
	ShellNone ShellMode = iota // walking
	ShellStill
	ShellSliding
)

// PiranhaPhase is the hide/rise/show/lower cycle of a pipe plant.
type PiranhaPhase uint8

const (
	PiranhaHidden PiranhaPhase = iota
	PiranhaRising
	PiranhaShown
	PiranhaLowering
)

// Enemy animation frames.
const (
	AnimEnemyA = iota
	AnimEnemyB
	AnimSquished
	AnimShell
	AnimShellSpin
	AnimHidden
	AnimHurt
)

// Per-variant state. Only the struct matching Enemy.Kind is meaningful.
type (
	walkerState struct {
		squished bool
		timer    float64
	}
	shellState struct {
		mode   ShellMode
		revert float64
		grace  float64
	}
	flyerState struct {
		baseY   float64
		originX float64
		phase   float64
	}
	piranhaState struct {
		phase   PiranhaPhase
		timer   float64
		shownY  float64
		hiddenY float64
		tween   *gween.Tween
	}
	firebarState struct {
		pivotX, pivotY float64
		angle          float64
		length         int
	}
	bossState struct {
		hp      int
		homeX   float64
		hurt    float64
		falling bool
	}
)

// Enemy is a tagged variant: Kind selects which state struct is live.
type Enemy struct {
	Body
	ID   int
	Kind levels.EnemyKind
	Anim int

	walker  walkerState
	shell   shellState
	flyer   flyerState
	piranha piranhaState
	firebar firebarState
	boss    bossState

	clock float64
}

const (
	koopaWalkH      = 24
	firebarSegment  = 8
	piranhaKeepAway = 2 * tile.Size
)

func newEnemy(id int, s levels.Spawn, l *Level) *Enemy {
	e := &Enemy{ID: id, Kind: s.Kind}
	e.Active = true
	e.Facing = Left
	e.W, e.H = tile.Size, tile.Size
	cellX := float64(s.Col * tile.Size)
	floor := float64((s.Row + 1) * tile.Size)

	switch s.Kind {
	case levels.Koopa, levels.Paratroopa:
		e.H = koopaWalkH
	case levels.Piranha:
		e.H = 24
	case levels.Bowser:
		e.W, e.H = 32, 32
	case levels.Firebar:
		e.W, e.H = firebarSegment, firebarSegment
	}
	e.X = cellX + (tile.Size-e.W)/2
	e.Y = floor - e.H

	cfg := l.cfg.Enemies
	switch s.Kind.Class() {
	case levels.ClassFlyer:
		e.flyer = flyerState{baseY: e.Y, originX: e.X}
	case levels.ClassHazard:
		switch s.Kind {
		case levels.Piranha:
			// Centred on a two-tile pipe whose left column is the spawn column.
			e.X = cellX + tile.Size - e.W/2
			e.piranha = piranhaState{
				phase:   PiranhaHidden,
				timer:   cfg.PiranhaHide,
				shownY:  floor - e.H,
				hiddenY: floor,
			}
			e.Y = floor
		case levels.Firebar:
			e.firebar = firebarState{
				pivotX: cellX + tile.Size/2,
				pivotY: floor - tile.Size/2,
				length: cfg.FirebarLength,
			}
		}
	case levels.ClassBoss:
		e.boss = bossState{hp: cfg.BossHP, homeX: e.X}
	}
	return e
}

// Touchable reports whether the enemy can currently be touched at all.
func (e *Enemy) Touchable() bool {
	if !e.Active {
		return false
	}
	if e.Kind == levels.Piranha && e.piranha.phase == PiranhaHidden {
		return false
	}
	if e.Kind.Class() == levels.ClassWalker && e.walker.squished {
		return false
	}
	return true
}

// Stompable reports whether landing on the enemy defeats or shells it.
func (e *Enemy) Stompable() bool {
	switch e.Kind.Class() {
	case levels.ClassHazard, levels.ClassBoss:
		return false
	}
	return true
}

// Fireproof reports whether fireballs bounce off the enemy.
func (e *Enemy) Fireproof() bool {
	switch e.Kind {
	case levels.Beetle, levels.Spike, levels.Firebar:
		return true
	}
	return false
}

// Shell returns the shell sub-state, ShellNone for non-shell kinds.
func (e *Enemy) Shell() ShellMode { return e.shell.mode }

// HP returns the boss hit points, 0 for other kinds.
func (e *Enemy) HP() int { return e.boss.hp }

// Segments returns the hitboxes of the enemy. Only fire bars have more
// than one.
func (e *Enemy) Segments() []Body {
	if e.Kind != levels.Firebar {
		return []Body{e.Body}
	}
	n := max(e.firebar.length, 1)
	out := make([]Body, 0, n)
	for i := 0; i < n; i++ {
		d := float64(i * firebarSegment)
		cx := e.firebar.pivotX + math.Cos(e.firebar.angle)*d
		cy := e.firebar.pivotY + math.Sin(e.firebar.angle)*d
		out = append(out, Body{
			X: cx - firebarSegment/2, Y: cy - firebarSegment/2,
			W: firebarSegment, H: firebarSegment, Active: true,
		})
	}
	return out
}

// updateEnemy advances one enemy by a tick. It is the single dispatch
// point for enemy behaviour.
func updateEnemy(e *Enemy, l *Level, dt, scale float64) {
	e.clock += dt
	cfg := l.cfg.Enemies
	phys := l.cfg.Physics

	switch e.Kind.Class() {
	case levels.ClassWalker:
		if e.walker.squished {
			e.walker.timer -= dt
			if e.walker.timer <= 0 {
				e.Active = false
			}
			e.Anim = AnimSquished
			return
		}
		e.walk(l, cfg.WalkerSpeed*l.speedScale, scale, true)

	case levels.ClassShell:
		switch e.shell.mode {
		case ShellNone:
			e.walk(l, cfg.WalkerSpeed*l.speedScale, scale, true)
		case ShellStill:
			e.shell.grace = max(e.shell.grace-dt, 0)
			e.VX = 0
			e.ApplyGravity(phys.Gravity, phys.MaxFall, scale)
			e.Move(l.grid, scale)
			e.shell.revert -= dt
			if e.shell.revert <= 0 && !e.unshell(l.grid) {
				e.shell.revert = 0
			}
			e.Anim = AnimShell
		case ShellSliding:
			e.shell.grace = max(e.shell.grace-dt, 0)
			e.walk(l, cfg.ShellSpeed, scale, false)
			e.Anim = AnimShellSpin
		}

	case levels.ClassFlyer:
		e.fly(l, dt, scale)

	case levels.ClassHazard:
		switch e.Kind {
		case levels.Piranha:
			e.cyclePiranha(l, dt)
		case levels.Firebar:
			e.firebar.angle = math.Mod(e.firebar.angle+cfg.FirebarSpeed*dt, 2*math.Pi)
		}

	case levels.ClassBoss:
		e.updateBoss(l, dt, scale)
	}

	if e.Y > l.grid.HeightPx()+tile.Size {
		e.Active = false
	}
}

// walk moves a ground-bound enemy at constant speed, reversing on walls
// and, when probeLedges is set, at the edge of the floor it stands on.
func (e *Enemy) walk(l *Level, speed, scale float64, probeLedges bool) {
	phys := l.cfg.Physics
	if probeLedges && e.OnGround {
		probe := e.X - 1
		if e.Facing == Right {
			probe = e.X + e.W + 1
		}
		if !e.StandingOn(l.grid, probe) {
			e.Facing = -e.Facing
		}
	}
	e.VX = float64(e.Facing) * speed
	e.ApplyGravity(phys.Gravity, phys.MaxFall, scale)
	col := e.Move(l.grid, scale)
	if col.Left && e.Facing == Left || col.Right && e.Facing == Right {
		e.Facing = -e.Facing
	}
	e.Anim = AnimEnemyA + int(e.clock*4)%2
}

// fly drifts horizontally and bobs on a sine wave about the spawn height.
// Flyers ignore gravity and tiles.
func (e *Enemy) fly(l *Level, dt, scale float64) {
	cfg := l.cfg.Enemies
	e.flyer.phase += dt
	e.VX = float64(e.Facing) * cfg.FlyerSpeed * l.speedScale
	e.X += e.VX * scale
	if r := float64(cfg.FlyerRange * tile.Size); r > 0 {
		if e.X < e.flyer.originX-r && e.Facing == Left || e.X > e.flyer.originX+r && e.Facing == Right {
			e.Facing = -e.Facing
		}
	}
	if e.X < 0 {
		e.X = 0
		e.Facing = Right
	}
	period := cfg.FlyerPeriod
	if period <= 0 {
		period = 1
	}
	e.Y = e.flyer.baseY + cfg.FlyerAmplitude*math.Sin(2*math.Pi*e.flyer.phase/period)
	e.Anim = AnimEnemyA + int(e.clock*6)%2
}

// cyclePiranha runs hide → rise → show → lower. Rising and lowering are
// tweened over the plant's height.
func (e *Enemy) cyclePiranha(l *Level, dt float64) {
	cfg := l.cfg.Enemies
	p := &e.piranha
	travel := p.hiddenY - p.shownY
	duration := float32(1)
	if cfg.PiranhaRise > 0 {
		duration = float32(travel / cfg.PiranhaRise)
	}

	switch p.phase {
	case PiranhaHidden:
		e.Y = p.hiddenY
		e.Anim = AnimHidden
		p.timer -= dt
		if p.timer > 0 {
			return
		}
		if math.Abs(l.player.CenterX()-e.CenterX()) < piranhaKeepAway {
			return
		}
		p.phase = PiranhaRising
		p.tween = gween.New(float32(p.hiddenY), float32(p.shownY), duration, ease.Linear)
	case PiranhaRising, PiranhaLowering:
		y, done := p.tween.Update(float32(dt))
		e.Y = float64(y)
		e.Anim = AnimEnemyA
		if !done {
			return
		}
		if p.phase == PiranhaRising {
			p.phase = PiranhaShown
			p.timer = cfg.PiranhaShow
		} else {
			p.phase = PiranhaHidden
			p.timer = cfg.PiranhaHide
		}
		p.tween = nil
	case PiranhaShown:
		e.Y = p.shownY
		e.Anim = AnimEnemyA + int(e.clock*4)%2
		p.timer -= dt
		if p.timer <= 0 {
			p.phase = PiranhaLowering
			p.tween = gween.New(float32(p.shownY), float32(p.hiddenY), duration, ease.Linear)
		}
	}
}

func (e *Enemy) updateBoss(l *Level, dt, scale float64) {
	phys := l.cfg.Physics
	e.boss.hurt = max(e.boss.hurt-dt, 0)
	if e.boss.falling {
		e.VX = 0
		e.ApplyGravity(phys.Gravity, phys.MaxFall, scale)
		e.Y += e.VY * scale
		e.Anim = AnimHurt
		return
	}
	if l.brain != nil {
		vx, jump := l.brain.decide(l, e)
		e.VX = vx
		if jump && e.OnGround {
			e.VY = l.cfg.Player.JumpWalk
		}
	}
	// The boss always looks at the player.
	if l.player.CenterX() < e.CenterX() {
		e.Facing = Left
	} else {
		e.Facing = Right
	}
	e.ApplyGravity(phys.Gravity, phys.MaxFall, scale)
	e.Move(l.grid, scale)
	e.Anim = AnimEnemyA + int(e.clock*2)%2
	if e.boss.hurt > 0 {
		e.Anim = AnimHurt
	}
}

// stomp handles the player landing on the enemy from above. It reports
// whether the player should bounce.
func (e *Enemy) stomp(l *Level) bool {
	p := l.player
	switch e.Kind {
	case levels.Goomba, levels.Beetle:
		e.walker = walkerState{squished: true, timer: l.cfg.Enemies.SquishTime}
		e.VX = 0
		e.Anim = AnimSquished
		l.addScore(l.cfg.Scoring.Stomp, e.CenterX(), e.Y)
	case levels.Paratroopa:
		// Losing the wings leaves a walking koopa.
		e.Kind = levels.Koopa
		e.VY = 0
		l.addScore(l.cfg.Scoring.Stomp, e.CenterX(), e.Y)
	case levels.Koopa:
		switch e.shell.mode {
		case ShellNone:
			e.enterShell(l)
			l.addScore(l.cfg.Scoring.Stomp, e.CenterX(), e.Y)
		case ShellStill:
			e.kick(l, p)
		case ShellSliding:
			e.shell.mode = ShellStill
			e.shell.revert = l.cfg.Enemies.ShellRevert
			e.shell.grace = l.cfg.Enemies.KickGrace
			e.VX = 0
			l.addScore(l.cfg.Scoring.Stomp, e.CenterX(), e.Y)
		}
	case levels.Cheep:
		l.defeat(e, l.cfg.Scoring.Stomp)
	default:
		return false
	}
	return true
}

// contact handles non-stomp contact with the player and reports whether
// the player takes a hit.
func (e *Enemy) contact(l *Level) bool {
	if e.Kind == levels.Koopa {
		switch e.shell.mode {
		case ShellStill:
			if e.shell.grace <= 0 {
				e.kick(l, l.player)
			}
			return false
		case ShellSliding:
			return e.shell.grace <= 0
		}
	}
	return true
}

func (e *Enemy) enterShell(l *Level) {
	e.Resize(nil, tile.Size)
	e.VX = 0
	e.shell = shellState{
		mode:   ShellStill,
		revert: l.cfg.Enemies.ShellRevert,
		grace:  l.cfg.Enemies.KickGrace,
	}
	e.Anim = AnimShell
}

// unshell stands the koopa back up. It stays in its shell while a solid
// tile blocks the taller hitbox.
func (e *Enemy) unshell(g *tile.Grid) bool {
	if !e.Resize(g, koopaWalkH) {
		return false
	}
	e.shell = shellState{}
	return true
}

// kick sends a still shell sliding away from the player's side.
func (e *Enemy) kick(l *Level, p *Player) {
	e.Facing = Right
	if p.CenterX() > e.CenterX() {
		e.Facing = Left
	}
	e.shell = shellState{mode: ShellSliding, grace: l.cfg.Enemies.KickGrace}
	e.VX = float64(e.Facing) * l.cfg.Enemies.ShellSpeed
	l.addScore(l.cfg.Scoring.ShellKick, e.CenterX(), e.Y)
}

// hitByFireball applies a fireball hit. Fireproof enemies shrug it off.
func (e *Enemy) hitByFireball(l *Level) {
	if e.Fireproof() {
		return
	}
	if e.Kind == levels.Bowser {
		e.boss.hp--
		e.boss.hurt = 0.3
		if e.boss.hp <= 0 {
			l.defeat(e, l.cfg.Scoring.BossDefeat)
		}
		return
	}
	l.defeat(e, l.cfg.Scoring.FireballKill)
}
