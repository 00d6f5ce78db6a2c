package tile

import (
	"math"

	"github.com/vovakirdan/tui-koopa/internal/core"
)

// Cell is a grid position together with the kind found there.
type Cell struct {
	Col, Row int
	Kind     Kind
}

// Grid is the mutable tile map of one level attempt.
// Dimensions are fixed at construction; out-of-bounds reads are Empty.
type Grid struct {
	cols, rows int
	kinds      []Kind
	contents   map[Pos]Content
}

// NewGrid creates an empty grid.
func NewGrid(cols, rows int) *Grid {
	return &Grid{
		cols:     cols,
		rows:     rows,
		kinds:    make([]Kind, cols*rows),
		contents: make(map[Pos]Content),
	}
}

// Cols returns the grid width in tiles.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height in tiles.
func (g *Grid) Rows() int { return g.rows }

// WidthPx returns the grid width in world pixels.
func (g *Grid) WidthPx() float64 { return float64(g.cols * Size) }

// HeightPx returns the grid height in world pixels.
func (g *Grid) HeightPx() float64 { return float64(g.rows * Size) }

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// KindAt returns the kind at (col, row), or Empty outside the grid.
func (g *Grid) KindAt(col, row int) Kind {
	if !g.inBounds(col, row) {
		return Empty
	}
	return g.kinds[row*g.cols+col]
}

// Solid reports whether (col, row) blocks movement.
func (g *Grid) Solid(col, row int) bool {
	return g.KindAt(col, row).Solid()
}

// SetKind overwrites a cell. Out-of-bounds writes are ignored.
func (g *Grid) SetKind(col, row int, k Kind) {
	if !g.inBounds(col, row) {
		return
	}
	g.kinds[row*g.cols+col] = k
}

// SetContent assigns the content a question block will release.
func (g *Grid) SetContent(p Pos, c Content) {
	g.contents[p] = c
}

// ContentAt returns the configured content for a question block.
// Blocks without an entry hold a coin.
func (g *Grid) ContentAt(p Pos) Content {
	if c, ok := g.contents[p]; ok {
		return c
	}
	return ContentCoin
}

// Overlapping returns every non-empty cell touched by r, row-major.
func (g *Grid) Overlapping(r core.RectF) []Cell {
	c0, r0, c1, r1 := Span(r)
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, g.cols-1), min(r1, g.rows-1)
	var out []Cell
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if k := g.KindAt(col, row); k != Empty {
				out = append(out, Cell{Col: col, Row: row, Kind: k})
			}
		}
	}
	return out
}

// BreakBrick turns a brick into empty space. It reports whether a brick
// was removed; calling it on anything else is a no-op.
func (g *Grid) BreakBrick(col, row int) bool {
	if g.KindAt(col, row) != Brick {
		return false
	}
	g.SetKind(col, row, Empty)
	return true
}

// UseBlock marks a question block used and returns its content.
// The second result is false when the cell is not an unused question block,
// so each block yields its content at most once.
func (g *Grid) UseBlock(col, row int) (Content, bool) {
	if g.KindAt(col, row) != Question {
		return ContentNone, false
	}
	p := Pos{Col: col, Row: row}
	c := g.ContentAt(p)
	delete(g.contents, p)
	g.SetKind(col, row, Used)
	return c, true
}

// CollectCoin removes a coin tile and reports whether one was there.
func (g *Grid) CollectCoin(col, row int) bool {
	if g.KindAt(col, row) != Coin {
		return false
	}
	g.SetKind(col, row, Empty)
	return true
}

// CollapseBridge removes every bridge tile and returns how many fell.
func (g *Grid) CollapseBridge() int {
	n := 0
	for i, k := range g.kinds {
		if k == Bridge {
			g.kinds[i] = Empty
			n++
		}
	}
	return n
}

// Snapshot returns a read-only copy of the current tiles.
func (g *Grid) Snapshot() View {
	kinds := make([]Kind, len(g.kinds))
	copy(kinds, g.kinds)
	return View{cols: g.cols, rows: g.rows, kinds: kinds}
}

// Span returns the inclusive tile range covered by r. The right and bottom
// edges are exclusive, so a box ending exactly on a boundary does not
// reach into the next tile.
func Span(r core.RectF) (col0, row0, col1, row1 int) {
	col0 = int(math.Floor(r.X / Size))
	row0 = int(math.Floor(r.Y / Size))
	col1 = int(math.Ceil(r.Right()/Size)) - 1
	row1 = int(math.Ceil(r.Bottom()/Size)) - 1
	return col0, row0, col1, row1
}

// View is an immutable copy of a grid for presentation.
type View struct {
	cols, rows int
	kinds      []Kind
}

// Cols returns the view width in tiles.
func (v View) Cols() int { return v.cols }

// Rows returns the view height in tiles.
func (v View) Rows() int { return v.rows }

// KindAt returns the kind at (col, row), or Empty outside the view.
func (v View) KindAt(col, row int) Kind {
	if col < 0 || col >= v.cols || row < 0 || row >= v.rows {
		return Empty
	}
	return v.kinds[row*v.cols+col]
}
