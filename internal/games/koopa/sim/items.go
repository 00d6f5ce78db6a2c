package sim

import (
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// ItemKind is the kind of a collectible released from a block.
type ItemKind uint8

const (
	ItemMushroom ItemKind = iota
	ItemFlower
	ItemStar
	ItemLife
)

func (k ItemKind) String() string {
	switch k {
	case ItemMushroom:
		return "mushroom"
	case ItemFlower:
		return "flower"
	case ItemStar:
		return "star"
	case ItemLife:
		return "1up"
	default:
		return "item"
	}
}

const (
	itemSpeed      = 1.0
	itemEmerge     = 0.5 // pixels per frame while rising out of the block
	starBounce     = -4.0
	itemEmergeAnim = 1
)

// Item is a powerup entity. It rises out of its block before it moves or
// can be collected.
type Item struct {
	Body
	ID       int
	Kind     ItemKind
	Emerging bool
	Anim     int

	rise float64
}

func newItem(id int, kind ItemKind, block tile.Pos) *Item {
	it := &Item{ID: id, Kind: kind, Emerging: true, rise: tile.Size}
	it.Active = true
	it.Facing = Right
	it.W, it.H = tile.Size, tile.Size
	it.X = float64(block.Col * tile.Size)
	it.Y = float64(block.Row * tile.Size)
	return it
}

func (it *Item) update(l *Level, scale float64) {
	if it.Emerging {
		step := itemEmerge * scale
		if step > it.rise {
			step = it.rise
		}
		it.Y -= step
		it.rise -= step
		it.Anim = itemEmergeAnim
		if it.rise <= 0 {
			it.Emerging = false
			it.Anim = 0
		}
		return
	}

	phys := l.cfg.Physics
	switch it.Kind {
	case ItemFlower:
		it.VX = 0
	default:
		it.VX = float64(it.Facing) * itemSpeed
	}
	it.ApplyGravity(phys.Gravity, phys.MaxFall, scale)
	col := it.Move(l.grid, scale)
	if col.Left && it.Facing == Left || col.Right && it.Facing == Right {
		it.Facing = -it.Facing
	}
	if it.Kind == ItemStar && col.Bottom {
		it.VY = starBounce
	}
	if it.Y > l.grid.HeightPx()+tile.Size {
		it.Active = false
	}
}

// collect applies the item to the player.
func (it *Item) collect(l *Level) {
	p := l.player
	it.Active = false
	switch it.Kind {
	case ItemMushroom:
		if p.Size == campaign.Small {
			p.setSize(campaign.Big, l.grid)
		}
	case ItemFlower:
		switch p.Size {
		case campaign.Small:
			p.setSize(campaign.Big, l.grid)
		default:
			p.setSize(campaign.Fire, l.grid)
		}
	case ItemStar:
		p.Star = l.cfg.Player.StarTime
	case ItemLife:
		l.addLife(it.CenterX(), it.Y)
		return
	}
	l.addScore(l.cfg.Scoring.Powerup, it.CenterX(), it.Y)
}
