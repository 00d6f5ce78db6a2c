package sim

import (
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// bonk applies a block hit from below at cell. Only question blocks and
// bricks react; everything else is a plain ceiling.
func (l *Level) bonk(cell tile.Cell) {
	pos := tile.Pos{Col: cell.Col, Row: cell.Row}
	x := float64(cell.Col*tile.Size) + tile.Size/2
	y := float64(cell.Row * tile.Size)

	switch l.grid.KindAt(cell.Col, cell.Row) {
	case tile.Question:
		content, ok := l.grid.UseBlock(cell.Col, cell.Row)
		if !ok {
			return
		}
		l.bump(pos)
		switch content {
		case tile.ContentCoin:
			l.effects = append(l.effects, newEffect(l.newID(), EffectCoin, x-4, y-tile.Size, 0))
			l.addCoin(x, y-tile.Size)
		case tile.ContentPowerup:
			kind := ItemFlower
			if l.player.Size == campaign.Small {
				kind = ItemMushroom
			}
			l.spawnItem(kind, pos)
		case tile.ContentStar:
			l.spawnItem(ItemStar, pos)
		case tile.ContentLife:
			l.spawnItem(ItemLife, pos)
		}
	case tile.Brick:
		if l.player.Size == campaign.Small {
			l.bump(pos)
			return
		}
		l.knockEnemiesAbove(pos)
		if l.grid.BreakBrick(cell.Col, cell.Row) {
			l.addScore(l.cfg.Scoring.Brick, x, y)
			l.effects = append(l.effects, debris(l, pos)...)
		}
	}
}

// bump nudges the block and knocks out enemies standing on it.
func (l *Level) bump(pos tile.Pos) {
	l.effects = append(l.effects, newEffect(l.newID(), EffectBump,
		float64(pos.Col*tile.Size), float64(pos.Row*tile.Size), 0))
	l.knockEnemiesAbove(pos)
}

func (l *Level) knockEnemiesAbove(pos tile.Pos) {
	top := float64(pos.Row * tile.Size)
	left := float64(pos.Col * tile.Size)
	for _, e := range l.enemies {
		if !e.Touchable() || !e.Stompable() || !e.OnGround {
			continue
		}
		if e.Bottom() != top || e.X+e.W <= left || e.X >= left+tile.Size {
			continue
		}
		l.defeat(e, l.cfg.Scoring.Stomp)
	}
}

func (l *Level) spawnItem(kind ItemKind, pos tile.Pos) {
	it := newItem(l.newID(), kind, pos)
	l.items = append(l.items, it)
	l.contacts.track(it, tagItem)
}
