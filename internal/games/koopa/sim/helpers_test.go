package sim

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-koopa/internal/config"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

const frame = 1.0 / 60

// flatRows is a 20x8 field: ground on the last row and a flagpole at
// column 18. The player starts at (3,6).
var flatRows = []string{
	"....................",
	"....................",
	"..................F.",
	"..................|.",
	"..................|.",
	"..................|.",
	"..................|.",
	"GGGGGGGGGGGGGGGGGGGG",
}

func testData(t *testing.T, rows []string) *levels.Data {
	t.Helper()
	tiles := make([][]tile.Kind, len(rows))
	for r, line := range rows {
		for _, ch := range line {
			k, ok := tile.FromSymbol(ch)
			require.True(t, ok, "symbol %q", ch)
			tiles[r] = append(tiles[r], k)
		}
	}
	return &levels.Data{
		ID:          "test",
		Name:        "TEST",
		World:       1,
		Level:       1,
		Theme:       1,
		Time:        300,
		Tiles:       tiles,
		PlayerStart: tile.Pos{Col: 3, Row: 6},
		Flag:        tile.Pos{Col: 18, Row: 6},
		Blocks:      map[tile.Pos]tile.Content{},
	}
}

func testOptions() Options {
	return Options{
		Config: config.DefaultKoopaConfig(),
		Logger: log.New(io.Discard),
	}
}

func testLevel(t *testing.T, d *levels.Data, carry campaign.Carry) *Level {
	t.Helper()
	if carry.Lives == 0 {
		carry.Lives = 3
	}
	l, err := New(d, carry, testOptions())
	require.NoError(t, err)
	return l
}

// run ticks the level n times with the same input, summing the deltas.
// It stops early once the level reaches a terminal state.
func run(l *Level, in Input, n int) TickResult {
	var total TickResult
	for i := 0; i < n; i++ {
		r := l.Tick(in, frame)
		total.ScoreDelta += r.ScoreDelta
		total.CoinDelta += r.CoinDelta
		total.LifeDelta += r.LifeDelta
		total.Completion = r.Completion
		if r.Completion.Terminal() {
			break
		}
	}
	return total
}

// runUntil ticks until done reports true or n ticks pass.
func runUntil(l *Level, in Input, n int, done func() bool) bool {
	for i := 0; i < n; i++ {
		l.Tick(in, frame)
		if done() {
			return true
		}
	}
	return false
}

func findEnemy(l *Level, kind levels.EnemyKind) *Enemy {
	for _, e := range l.enemies {
		if e.Kind == kind {
			return e
		}
	}
	return nil
}
