package koopa

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/sim"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// A tile is drawn as two columns and one row.
const (
	hudRows = 2
	cellW   = tile.Size / 2
	cellH   = tile.Size
)

type glyph struct {
	left, right rune
	color       core.Color
}

var tileGlyphs = map[tile.Kind]glyph{
	tile.Ground:   {'█', '█', core.ColorBrown},
	tile.Dirt:     {'▓', '▓', core.ColorBrown},
	tile.Platform: {'▀', '▀', core.ColorGreen},
	tile.Pipe:     {'▐', '▌', core.ColorBrightGreen},
	tile.Brick:    {'▒', '▒', core.ColorBrown},
	tile.Question: {'[', ']', core.ColorBrightYellow},
	tile.Hard:     {'■', '■', core.ColorGray},
	tile.Castle:   {'▓', '▓', core.ColorDarkGray},
	tile.Used:     {'□', '□', core.ColorBrown},
	tile.Coin:     {'(', ')', core.ColorBrightYellow},
	tile.Lava:     {'~', '~', core.ColorBrightRed},
	tile.Pole:     {' ', '│', core.ColorGreen},
	tile.FlagTop:  {' ', '●', core.ColorBrightGreen},
	tile.Bridge:   {'=', '=', core.ColorBrown},
	tile.Axe:      {'A', 'x', core.ColorBrightCyan},
}

// Underground levels swap the earthy colours for blue.
var undergroundColors = map[tile.Kind]core.Color{
	tile.Ground: core.ColorBlue,
	tile.Dirt:   core.ColorBlue,
	tile.Brick:  core.ColorCyan,
	tile.Used:   core.ColorBlue,
}

var questionMark = glyph{'?', '?', core.ColorBrightYellow}

type entityGlyph struct {
	r     rune
	color core.Color
}

var entityGlyphs = map[string]entityGlyph{
	"goomba":     {'G', core.ColorOrange},
	"beetle":     {'B', core.ColorBlue},
	"koopa":      {'K', core.ColorGreen},
	"paratroopa": {'W', core.ColorBrightGreen},
	"cheep":      {'F', core.ColorRed},
	"spike":      {'S', core.ColorGray},
	"piranha":    {'P', core.ColorBrightGreen},
	"firebar":    {'o', core.ColorBrightRed},
	"bowser":     {'&', core.ColorBrightRed},
	"mushroom":   {'m', core.ColorBrightRed},
	"flower":     {'f', core.ColorBrightMagenta},
	"star":       {'*', core.ColorBrightYellow},
	"1up":        {'m', core.ColorBrightGreen},
	"fireball":   {'o', core.ColorBrightYellow},
	"coin_fx":    {'$', core.ColorBrightYellow},
	"debris":     {'.', core.ColorBrown},
	"defeat":     {'x', core.ColorGray},
	"puff":       {'*', core.ColorGray},
}

// camera is the top-left corner of the view, in pixels.
type camera struct {
	x, y float64
}

// follow centres the player, clamped to the level bounds.
func (c *camera) follow(lvl *sim.Level, dst *core.Screen) {
	g := lvl.Grid()
	p := lvl.Player()
	viewW := float64(dst.Width() * cellW)
	viewH := float64((dst.Height() - hudRows) * cellH)

	c.x = clampView(p.X+p.W/2-viewW/2, g.WidthPx()-viewW)
	c.y = clampView(p.Y+p.H/2-viewH/2, g.HeightPx()-viewH)
}

func clampView(v, limit float64) float64 {
	return core.ClampF(v, 0, max(limit, 0))
}

// screenPos maps a pixel position to a screen cell.
func (c camera) screenPos(x, y float64) (int, int) {
	return int((x - c.x) / cellW), int((y-c.y)/cellH) + hudRows
}

func renderLevel(dst *core.Screen, lvl *sim.Level, cam camera) {
	view := lvl.Grid().Snapshot()
	under := levels.ThemeByID(lvl.Data().Theme).Underground
	for sy := hudRows; sy < dst.Height(); sy++ {
		py := int(cam.y) + (sy-hudRows)*cellH
		row := py / tile.Size
		for sx := range dst.Width() {
			px := int(cam.x) + sx*cellW
			col := px / tile.Size
			k := view.KindAt(col, row)
			if k == tile.Empty {
				continue
			}
			gl, ok := tileGlyphs[k]
			if !ok {
				continue
			}
			if k == tile.Question && lvl.Ticks()/20%2 == 1 {
				gl = questionMark
			}
			if c, ok := undergroundColors[k]; ok && under {
				gl.color = c
			}
			r := gl.left
			if px%tile.Size >= cellW {
				r = gl.right
			}
			dst.SetColored(sx, sy, r, gl.color)
		}
	}

	for _, e := range lvl.Entities() {
		renderEntity(dst, lvl, cam, e)
	}
}

func renderEntity(dst *core.Screen, lvl *sim.Level, cam camera, e sim.EntityState) {
	sx, sy := cam.screenPos(e.X, e.Y)
	switch e.Kind {
	case "bump":
		return
	case "score":
		text := strconv.Itoa(e.Value)
		if e.Label != "" {
			text = e.Label
		}
		dst.DrawTextColored(sx, sy, text, core.ColorBrightWhite)
		return
	case "player":
		renderPlayer(dst, lvl, sx, sy, e)
		return
	}
	gl, ok := entityGlyphs[e.Kind]
	if !ok {
		gl = entityGlyph{'?', core.ColorWhite}
	}
	fillCells(dst, sx, sy, e, gl.r, gl.color)
}

func renderPlayer(dst *core.Screen, lvl *sim.Level, sx, sy int, e sim.EntityState) {
	p := lvl.Player()
	color := core.ColorBrightRed
	if p.Size == campaign.Fire {
		color = core.ColorBrightWhite
	}
	if p.Star > 0 {
		starColors := []core.Color{core.ColorBrightYellow, core.ColorBrightCyan, core.ColorBrightMagenta}
		color = starColors[lvl.Ticks()/4%len(starColors)]
	}
	// Flicker while invincible after a hit.
	if p.Invincible > 0 && lvl.Ticks()/3%2 == 0 {
		return
	}
	r := 'M'
	if e.Anim == sim.AnimDead {
		r = 'X'
	}
	fillCells(dst, sx, sy, e, r, color)
	face := '>'
	if e.Facing == sim.Left {
		face = '<'
	}
	cols := max(int(e.W+cellW/2)/cellW, 1)
	if e.Facing == sim.Left {
		dst.SetColored(sx, sy, face, color)
	} else {
		dst.SetColored(sx+cols-1, sy, face, color)
	}
}

func fillCells(dst *core.Screen, sx, sy int, e sim.EntityState, r rune, c core.Color) {
	cols := max(int(e.W+cellW/2)/cellW, 1)
	rows := max(int(e.H+cellH/2)/cellH, 1)
	for dy := range rows {
		if sy+dy < hudRows {
			continue
		}
		for dx := range cols {
			dst.SetColored(sx+dx, sy+dy, r, c)
		}
	}
}

// renderHUD draws the two status rows.
func renderHUD(dst *core.Screen, g *Game, lvl *sim.Level) {
	carry := lvl.Carry()
	d := lvl.Data()
	world := fmt.Sprintf("%d-%d", d.World, d.Level)
	if g.single {
		world = "CUSTOM"
	}

	dst.DrawTextColored(1, 0, fmt.Sprintf("%-8s %-6s %-6s %-5s %s", "SCORE", "COINS", "WORLD", "TIME", "LIVES"), core.ColorGray)
	dst.DrawText(1, 1, fmt.Sprintf("%06d   x%02d    %-6s %-5d x%d",
		carry.Score, carry.Coins, world, lvl.TimeRemaining(), carry.Lives))

	theme := levels.ThemeByID(d.Theme).Name
	if x := dst.Width() - len(theme) - 1; x > 40 {
		dst.DrawTextColored(x, 0, theme, core.ColorGray)
	}
	status := carry.Size.String()
	if lvl.Player().Star > 0 {
		status = "star"
	}
	if x := dst.Width() - len(status) - 1; x > 40 {
		dst.DrawTextColored(x, 1, status, core.ColorBrightYellow)
	}
}
