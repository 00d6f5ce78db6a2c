package levels

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// Generated level geometry.
const (
	GenRows      = 15
	groundRow    = GenRows - 2
	startCol     = 3
	maxPipeTall  = 3 // tallest pipe a walking jump clears
	castleLevel  = 4
	underLevel   = 2
	castleTime   = 300
	stairsOffset = 25
	flagOffset   = 12
)

// DefaultSeed is the generator seed used when none is given.
func DefaultSeed(world, level int) int64 {
	return int64(world*100 + level)
}

// Generate builds a level procedurally. The same (world, level, seed)
// always yields the same level; seed 0 selects DefaultSeed.
func Generate(world, level int, seed int64) *Data {
	if seed == 0 {
		seed = DefaultSeed(world, level)
	}
	g := &generator{
		rng:   rand.New(rand.NewSource(seed)), //#nosec G404 -- deterministic level layout
		world: world,
		level: level,
		cols:  150 + 20*world,
	}
	if level == castleLevel {
		return g.castle()
	}
	return g.overworld()
}

type generator struct {
	rng   *rand.Rand
	world int
	level int
	cols  int
	tiles [][]tile.Kind
	// reserved marks columns where enemies must not spawn.
	reserved map[int]bool
	blocks   map[tile.Pos]tile.Content
	// fixed holds spawns tied to geometry, such as piranhas in pipes.
	fixed []Spawn
}

func (g *generator) init(fill tile.Kind) {
	g.tiles = make([][]tile.Kind, GenRows)
	for row := range g.tiles {
		g.tiles[row] = make([]tile.Kind, g.cols)
	}
	for col := 0; col < g.cols; col++ {
		g.tiles[groundRow][col] = fill
		g.tiles[groundRow+1][col] = fill
		if fill == tile.Ground {
			g.tiles[groundRow+1][col] = tile.Dirt
		}
	}
	g.reserved = make(map[int]bool)
	g.blocks = make(map[tile.Pos]tile.Content)
	for col := 0; col <= startCol+3; col++ {
		g.reserved[col] = true
	}
}

func (g *generator) set(col, row int, k tile.Kind) {
	if row < 0 || row >= GenRows || col < 0 || col >= g.cols {
		return
	}
	g.tiles[row][col] = k
}

func (g *generator) at(col, row int) tile.Kind {
	if row < 0 || row >= GenRows || col < 0 || col >= g.cols {
		return tile.Empty
	}
	return g.tiles[row][col]
}

func (g *generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *generator) hasGround(col int) bool {
	return g.at(col, groundRow).Solid()
}

func (g *generator) clearAbove(col, fromRow, toRow int) bool {
	for row := fromRow; row <= toRow; row++ {
		if g.at(col, row) != tile.Empty {
			return false
		}
	}
	return true
}

func (g *generator) overworld() *Data {
	g.init(tile.Ground)
	underground := g.level == underLevel
	if underground {
		for col := 0; col < g.cols; col++ {
			g.set(col, 0, tile.Hard)
			g.set(col, 1, tile.Brick)
		}
	}

	g.gaps(tile.Empty)
	g.platforms()
	g.questionBlocks()
	g.bricks()
	g.coins()
	g.pipes()
	g.stairs()
	flag := g.flagpole()
	enemies := g.enemies(g.overworldPool())

	theme := g.world
	if underground {
		theme += undergroundOffset
	}
	return g.finish(theme, DefaultTime, flag, enemies)
}

// gaps cuts pits into the floor. Pits are at most three tiles wide and
// separated by solid runs so every pit can be cleared with a running jump.
func (g *generator) gaps(fill tile.Kind) {
	for col := 20; col < g.cols-stairsOffset-10; col++ {
		if g.rng.Float64() >= 0.02*float64(g.world) {
			continue
		}
		width := g.between(2, 3)
		for i := 0; i < width; i++ {
			g.set(col+i, groundRow, tile.Empty)
			g.set(col+i, groundRow+1, fill)
			g.reserved[col+i] = true
		}
		col += width + 6
	}
}

func (g *generator) platforms() {
	for n := 0; n < g.cols/15; n++ {
		col := g.between(10, g.cols-stairsOffset-6)
		row := groundRow - 4
		width := g.between(3, 6)
		for i := 0; i < width; i++ {
			if g.at(col+i, row) == tile.Empty {
				g.set(col+i, row, tile.Platform)
			}
		}
	}
}

func (g *generator) questionBlocks() {
	for n := 0; n < g.cols/12; n++ {
		col := g.between(10, g.cols-stairsOffset-6)
		row := groundRow - 4
		if g.rng.Float64() < 0.3 {
			row = groundRow - 8
		}
		if g.at(col, row) != tile.Empty {
			continue
		}
		g.set(col, row, tile.Question)
		g.blocks[tile.Pos{Col: col, Row: row}] = g.content()
	}
}

// content decides what a question block holds. It is drawn from the same
// stream as the layout so it is fixed by the seed.
func (g *generator) content() tile.Content {
	r := g.rng.Float64()
	switch {
	case r < 0.25:
		return tile.ContentPowerup
	case r < 0.29:
		return tile.ContentStar
	case r < 0.32:
		return tile.ContentLife
	default:
		return tile.ContentCoin
	}
}

func (g *generator) bricks() {
	for n := 0; n < g.cols/8; n++ {
		col := g.between(10, g.cols-stairsOffset-6)
		row := groundRow - 4
		length := g.between(1, 4)
		for i := 0; i < length; i++ {
			if g.at(col+i, row) == tile.Empty {
				g.set(col+i, row, tile.Brick)
			}
		}
	}
}

func (g *generator) coins() {
	for n := 0; n < g.cols/20; n++ {
		col := g.between(10, g.cols-stairsOffset-6)
		row := groundRow - 2
		length := g.between(3, 5)
		for i := 0; i < length; i++ {
			if g.at(col+i, row) == tile.Empty && g.hasGround(col+i) {
				g.set(col+i, row, tile.Coin)
			}
		}
	}
}

func (g *generator) pipes() {
	for n := 0; n < g.cols/25; n++ {
		col := g.between(15, g.cols-stairsOffset-8)
		tall := g.between(2, maxPipeTall)
		if !g.hasGround(col) || !g.hasGround(col+1) {
			continue
		}
		top := groundRow - tall
		if !g.clearAbove(col, groundRow-6, groundRow-1) || !g.clearAbove(col+1, groundRow-6, groundRow-1) {
			continue
		}
		for row := top; row < groundRow; row++ {
			g.set(col, row, tile.Pipe)
			g.set(col+1, row, tile.Pipe)
		}
		g.reserved[col] = true
		g.reserved[col+1] = true
		if g.rng.Float64() < 0.5 {
			g.fixed = append(g.fixed, Spawn{Col: col, Row: top - 1, Kind: Piranha})
		}
	}
}

func (g *generator) stairs() {
	for i := 0; i < 8; i++ {
		col := g.cols - stairsOffset + i
		for j := 0; j <= i; j++ {
			g.set(col, groundRow-1-j, tile.Hard)
		}
		g.reserved[col] = true
	}
	// Solid floor under the staircase and flag.
	for col := g.cols - stairsOffset - 2; col < g.cols; col++ {
		g.set(col, groundRow, tile.Ground)
		g.set(col, groundRow+1, tile.Dirt)
	}
}

func (g *generator) flagpole() tile.Pos {
	col := g.cols - flagOffset
	for row := groundRow - 9; row < groundRow; row++ {
		g.set(col, row, tile.Pole)
	}
	g.set(col, groundRow-10, tile.FlagTop)
	for c := col - 2; c < g.cols; c++ {
		g.reserved[c] = true
	}
	for c := g.cols - 6; c < g.cols-2; c++ {
		for row := groundRow - 3; row < groundRow; row++ {
			g.set(c, row, tile.Castle)
		}
	}
	return tile.Pos{Col: col, Row: groundRow - 1}
}

func (g *generator) overworldPool() []EnemyKind {
	pool := []EnemyKind{Goomba, Goomba, Koopa}
	if g.world >= 3 {
		pool = append(pool, Paratroopa)
	}
	if g.world >= 5 {
		pool = append(pool, Beetle, Spike)
	}
	return pool
}

func (g *generator) enemies(pool []EnemyKind) []Spawn {
	out := append([]Spawn(nil), g.fixed...)
	count := 8 + 2*g.world
	for n := 0; n < count; n++ {
		col := g.between(20, g.cols-stairsOffset-2)
		kind := pool[g.rng.Intn(len(pool))]
		if g.reserved[col] || !g.hasGround(col) {
			continue
		}
		row := groundRow - 1
		if kind.Class() == ClassFlyer {
			row = groundRow - 5
		}
		if g.at(col, row) != tile.Empty {
			continue
		}
		out = append(out, Spawn{Col: col, Row: row, Kind: kind})
	}
	return out
}

func (g *generator) castle() *Data {
	g.init(tile.Castle)
	for col := 0; col < g.cols; col++ {
		g.set(col, 0, tile.Castle)
		g.set(col, 1, tile.Castle)
	}

	bridgeStart := g.cols - 30
	bridgeEnd := g.cols - 16
	axeCol := bridgeEnd + 1

	// Lava pits along the approach.
	for col := 20; col < bridgeStart-10; col++ {
		if g.rng.Float64() >= 0.03+0.005*float64(g.world) {
			continue
		}
		width := g.between(2, 3)
		for i := 0; i < width; i++ {
			g.set(col+i, groundRow, tile.Empty)
			g.set(col+i, groundRow+1, tile.Lava)
			g.reserved[col+i] = true
		}
		col += width + 7
	}

	var spawns []Spawn
	for n := 0; n < 1+g.world/3; n++ {
		col := g.between(25, bridgeStart-12)
		row := groundRow - 4
		g.set(col, row, tile.Hard)
		spawns = append(spawns, Spawn{Col: col, Row: row, Kind: Firebar})
		g.reserved[col] = true
	}

	for col := bridgeStart; col <= bridgeEnd; col++ {
		g.set(col, groundRow, tile.Bridge)
		g.set(col, groundRow+1, tile.Lava)
		g.reserved[col] = true
	}
	g.set(axeCol, groundRow-1, tile.Axe)
	for col := axeCol - 3; col < g.cols; col++ {
		g.reserved[col] = true
	}
	spawns = append(spawns, Spawn{Col: bridgeEnd - 4, Row: groundRow - 2, Kind: Bowser})

	pool := []EnemyKind{Goomba, Koopa}
	if g.world >= 5 {
		pool = append(pool, Beetle, Spike)
	}
	g.fixed = spawns
	enemies := g.enemies(pool)
	return g.finish(g.world, castleTime, tile.Pos{Col: axeCol, Row: groundRow - 1}, enemies)
}

func (g *generator) finish(theme, timeBudget int, flag tile.Pos, enemies []Spawn) *Data {
	return &Data{
		ID:          fmt.Sprintf("%d-%d", g.world, g.level),
		Name:        fmt.Sprintf("%s %d-%d", ThemeByID(theme).Name, g.world, g.level),
		World:       g.world,
		Level:       g.level,
		Theme:       theme,
		Time:        timeBudget,
		Tiles:       g.tiles,
		PlayerStart: tile.Pos{Col: startCol, Row: groundRow - 1},
		Flag:        flag,
		Enemies:     enemies,
		Blocks:      g.blocks,
	}
}
