// Package levels defines the koopa level format, its validation, and the
// sources levels come from: authored YAML files, Tiled maps and the seeded
// generator.
package levels

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// DefaultTime is the time budget, in seconds, when a level sets none.
const DefaultTime = 400

// ValidationError describes malformed level data.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func invalid(code, format string, args ...any) error {
	return ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Spawn places one enemy at a tile cell.
type Spawn struct {
	Col, Row int
	Kind     EnemyKind
}

// Data is a fully parsed level. It is immutable once validated; the
// simulation builds a fresh tile.Grid from it for every attempt.
type Data struct {
	ID          string
	Name        string
	World       int
	Level       int
	Theme       int
	Time        int
	Tiles       [][]tile.Kind // [row][col]
	PlayerStart tile.Pos
	Flag        tile.Pos
	Enemies     []Spawn
	Blocks      map[tile.Pos]tile.Content
	FilePath    string
}

// Cols returns the level width in tiles.
func (d *Data) Cols() int {
	if len(d.Tiles) == 0 {
		return 0
	}
	return len(d.Tiles[0])
}

// Rows returns the level height in tiles.
func (d *Data) Rows() int {
	return len(d.Tiles)
}

// Castle reports whether the level ends at an axe rather than a flagpole.
func (d *Data) Castle() bool {
	return d.KindAt(d.Flag.Col, d.Flag.Row) == tile.Axe
}

// KindAt returns the authored kind at (col, row), Empty outside the level.
func (d *Data) KindAt(col, row int) tile.Kind {
	if row < 0 || row >= len(d.Tiles) || col < 0 || col >= len(d.Tiles[row]) {
		return tile.Empty
	}
	return d.Tiles[row][col]
}

// Grid builds a fresh mutable grid with block contents applied.
func (d *Data) Grid() *tile.Grid {
	g := tile.NewGrid(d.Cols(), d.Rows())
	for row, line := range d.Tiles {
		for col, k := range line {
			g.SetKind(col, row, k)
		}
	}
	for p, c := range d.Blocks {
		g.SetContent(p, c)
	}
	return g
}

// BlockKeys returns the block positions in row-major order.
func (d *Data) BlockKeys() []tile.Pos {
	keys := make([]tile.Pos, 0, len(d.Blocks))
	for p := range d.Blocks {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Row != keys[j].Row {
			return keys[i].Row < keys[j].Row
		}
		return keys[i].Col < keys[j].Col
	})
	return keys
}

// Validate checks the structural invariants of the level.
func (d *Data) Validate() error {
	if len(d.Tiles) == 0 || len(d.Tiles[0]) == 0 {
		return invalid("EMPTY_GRID", "level %q has no tiles", d.ID)
	}
	cols := len(d.Tiles[0])
	for row, line := range d.Tiles {
		if len(line) != cols {
			return invalid("RAGGED_ROW", "row %d has %d columns, expected %d", row, len(line), cols)
		}
	}
	if d.Time <= 0 {
		return invalid("BAD_TIME", "time budget must be positive, got %d", d.Time)
	}
	if !d.inBounds(d.PlayerStart) {
		return invalid("START_OUT_OF_BOUNDS", "player start %s outside %dx%d", d.PlayerStart.Key(), cols, d.Rows())
	}
	if d.KindAt(d.PlayerStart.Col, d.PlayerStart.Row).Solid() {
		return invalid("START_BLOCKED", "player start %s is inside a solid tile", d.PlayerStart.Key())
	}
	if !d.inBounds(d.Flag) {
		return invalid("FLAG_OUT_OF_BOUNDS", "flag %s outside %dx%d", d.Flag.Key(), cols, d.Rows())
	}
	if k := d.KindAt(d.Flag.Col, d.Flag.Row); k != tile.Pole && k != tile.FlagTop && k != tile.Axe {
		return invalid("FLAG_MISSING", "flag cell %s holds %s, expected pole or axe", d.Flag.Key(), k)
	}
	for i, s := range d.Enemies {
		if !d.inBounds(tile.Pos{Col: s.Col, Row: s.Row}) {
			return invalid("ENEMY_OUT_OF_BOUNDS", "enemy %d (%s) at %d,%d outside level", i, s.Kind, s.Col, s.Row)
		}
	}
	for _, p := range d.BlockKeys() {
		if k := d.KindAt(p.Col, p.Row); k != tile.Question {
			return invalid("CONTENT_NOT_BLOCK", "block content at %s targets %s, not a question block", p.Key(), k)
		}
	}
	return nil
}

func (d *Data) inBounds(p tile.Pos) bool {
	return p.Row >= 0 && p.Row < d.Rows() && p.Col >= 0 && p.Col < d.Cols()
}
