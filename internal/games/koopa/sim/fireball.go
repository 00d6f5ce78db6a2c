package sim

import "github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"

const (
	fireballSize   = 8
	fireballLife   = 3.0
	fireballBounce = -3.0
)

// Fireball is a bouncing projectile thrown at the fire tier.
type Fireball struct {
	Body
	ID   int
	Anim int

	life float64
}

// throwFireball spawns a fireball in front of the player unless the
// active limit is reached.
func (l *Level) throwFireball() {
	active := 0
	for _, f := range l.fireballs {
		if f.Active {
			active++
		}
	}
	if active >= l.cfg.Player.MaxFireballs {
		return
	}
	p := l.player
	f := &Fireball{ID: l.newID(), life: fireballLife}
	f.Active = true
	f.W, f.H = fireballSize, fireballSize
	f.Facing = p.Facing
	f.X = p.X + p.W
	if p.Facing == Left {
		f.X = p.X - fireballSize
	}
	f.Y = p.Y + 4
	f.VX = float64(p.Facing) * l.cfg.Player.FireballSpeed
	f.VY = 1
	l.fireballs = append(l.fireballs, f)
	l.contacts.track(f, tagFireball)
}

func (f *Fireball) update(l *Level, dt, scale float64) {
	phys := l.cfg.Physics
	f.life -= dt
	f.ApplyGravity(phys.Gravity, phys.MaxFall, scale)
	col := f.Move(l.grid, scale)
	if col.Bottom {
		f.VY = fireballBounce
	}
	f.Anim = int(f.life*8) % 4
	if col.Left || col.Right || f.life <= 0 || f.Y > l.grid.HeightPx()+tile.Size {
		f.explode(l)
	}
}

func (f *Fireball) explode(l *Level) {
	if !f.Active {
		return
	}
	f.Active = false
	l.effects = append(l.effects, newEffect(l.newID(), EffectPuff, f.CenterX(), f.Y+f.H/2, 0))
}
