package sim

import (
	"math"
	"sort"

	"github.com/solarlune/resolv"

	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// Tags of objects in the contact space.
const (
	tagPlayer   = "player"
	tagEnemy    = "enemy"
	tagItem     = "item"
	tagFireball = "fireball"
)

// contactMargin keeps bodies slightly outside the level (above the top
// row, left of column 0 while clamping) inside the space's cell grid.
const contactMargin = 4 * tile.Size

// tracked is an entity registered in the contact space.
type tracked interface {
	body() *Body
	id() int
	hitbox() core.RectF
}

func (p *Player) body() *Body { return &p.Body }
func (p *Player) id() int { return 0 }
func (p *Player) hitbox() core.RectF { return p.Rect() }
func (e *Enemy) body() *Body { return &e.Body }
func (e *Enemy) id() int { return e.ID }
func (it *Item) body() *Body { return &it.Body }
func (it *Item) id() int { return it.ID }
func (it *Item) hitbox() core.RectF { return it.Rect() }
func (f *Fireball) body() *Body { return &f.Body }
func (f *Fireball) id() int { return f.ID }
func (f *Fireball) hitbox() core.RectF { return f.Rect() }

// hitbox of a fire bar is the square swept by its rotation.
func (e *Enemy) hitbox() core.RectF {
	if e.Kind != levels.Firebar {
		return e.Rect()
	}
	reach := float64(max(e.firebar.length, 1)*firebarSegment) + firebarSegment/2
	return core.RectF{
		X: e.firebar.pivotX - reach,
		Y: e.firebar.pivotY - reach,
		W: 2 * reach,
		H: 2 * reach,
	}
}

// contactSpace is the entity-vs-entity broad phase. Tile collision never
// goes through it; the grid handles that directly.
type contactSpace struct {
	space *resolv.Space
	objs  map[tracked]*resolv.Object
}

func newContactSpace(widthPx, heightPx float64) *contactSpace {
	w := int(math.Ceil(widthPx)) + 2*contactMargin
	h := int(math.Ceil(heightPx)) + 2*contactMargin
	return &contactSpace{
		space: resolv.NewSpace(w, h, 2*tile.Size, 2*tile.Size),
		objs:  make(map[tracked]*resolv.Object),
	}
}

func (cs *contactSpace) track(t tracked, tag string) {
	r := t.hitbox()
	obj := resolv.NewObject(r.X+contactMargin, r.Y+contactMargin, r.W, r.H, tag)
	obj.Data = t
	cs.space.Add(obj)
	cs.objs[t] = obj
}

func (cs *contactSpace) untrack(t tracked) {
	if obj, ok := cs.objs[t]; ok {
		cs.space.Remove(obj)
		delete(cs.objs, t)
	}
}

// sync moves the object of t to the entity's current hitbox.
func (cs *contactSpace) sync(t tracked) {
	obj, ok := cs.objs[t]
	if !ok {
		return
	}
	r := t.hitbox()
	if !r.Finite() {
		return
	}
	obj.X, obj.Y = r.X+contactMargin, r.Y+contactMargin
	obj.W, obj.H = r.W, r.H
	obj.Update()
}

// touching returns the active entities with the given tag whose hitbox
// overlaps t, ordered by ID. resolv only narrows candidates to shared
// cells, so the exact box test is done here.
func (cs *contactSpace) touching(t tracked, tag string) []tracked {
	obj, ok := cs.objs[t]
	if !ok {
		return nil
	}
	check := obj.Check(0, 0, tag)
	if check == nil {
		return nil
	}
	self := t.hitbox()
	var out []tracked
	for _, o := range check.ObjectsByTags(tag) {
		other, ok := o.Data.(tracked)
		if !ok || !other.body().Active {
			continue
		}
		if self.Intersects(other.hitbox()) {
			out = append(out, other)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id() < out[j].id() })
	return out
}

// touchesEnemy refines a broad-phase hit against the enemy's real
// segments.
func touchesEnemy(r core.RectF, e *Enemy) bool {
	if !e.Touchable() {
		return false
	}
	for _, seg := range e.Segments() {
		if r.Intersects(seg.Rect()) {
			return true
		}
	}
	return false
}
