package levels

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

const smallLevel = `
id: test
name: Test Level
world: 1
level: 1
time: 120
tiles:
  - ".....F"
  - "..?..|"
  - ".....|"
  - "GGGGGG"
player_start: {x: 0, y: 2}
flag: {x: 5, y: 2}
enemies:
  - {x: 3, y: 2, kind: goomba}
blocks:
  "2,1": star
`

func TestParseYAML(t *testing.T) {
	d, err := ParseYAML([]byte(smallLevel))
	require.NoError(t, err)

	assert.Equal(t, "test", d.ID)
	assert.Equal(t, 6, d.Cols())
	assert.Equal(t, 4, d.Rows())
	assert.Equal(t, 120, d.Time)
	assert.Equal(t, 1, d.Theme, "theme defaults to the world")
	assert.Equal(t, tile.Question, d.KindAt(2, 1))
	assert.Equal(t, []Spawn{{Col: 3, Row: 2, Kind: Goomba}}, d.Enemies)
	assert.Equal(t, tile.ContentStar, d.Blocks[tile.Pos{Col: 2, Row: 1}])
	assert.False(t, d.Castle())

	g := d.Grid()
	c, ok := g.UseBlock(2, 1)
	require.True(t, ok)
	assert.Equal(t, tile.ContentStar, c)
}

func TestParseYAMLRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
		code string
	}{
		{"unknown symbol", func(s string) string { return strings.Replace(s, `"GGGGGG"`, `"GGZGGG"`, 1) }, "UNKNOWN_SYMBOL"},
		{"ragged row", func(s string) string { return strings.Replace(s, `"GGGGGG"`, `"GGGGG"`, 1) }, "RAGGED_ROW"},
		{"start out of bounds", func(s string) string { return strings.Replace(s, "{x: 0, y: 2}", "{x: 9, y: 2}", 1) }, "START_OUT_OF_BOUNDS"},
		{"start in solid", func(s string) string { return strings.Replace(s, "{x: 0, y: 2}", "{x: 0, y: 3}", 1) }, "START_BLOCKED"},
		{"flag out of bounds", func(s string) string { return strings.Replace(s, "{x: 5, y: 2}", "{x: 5, y: 20}", 1) }, "FLAG_OUT_OF_BOUNDS"},
		{"flag not on pole", func(s string) string { return strings.Replace(s, "{x: 5, y: 2}", "{x: 4, y: 2}", 1) }, "FLAG_MISSING"},
		{"unknown enemy", func(s string) string { return strings.Replace(s, "kind: goomba", "kind: dragon", 1) }, "UNKNOWN_ENEMY"},
		{"enemy out of bounds", func(s string) string { return strings.Replace(s, "{x: 3, y: 2, kind", "{x: 30, y: 2, kind", 1) }, "ENEMY_OUT_OF_BOUNDS"},
		{"bad block key", func(s string) string { return strings.Replace(s, `"2,1": star`, `"2;1": star`, 1) }, "BAD_CELL_KEY"},
		{"unknown content", func(s string) string { return strings.Replace(s, `"2,1": star`, `"2,1": banana`, 1) }, "UNKNOWN_CONTENT"},
		{"content on non-block", func(s string) string { return strings.Replace(s, `"2,1": star`, `"1,1": star`, 1) }, "CONTENT_NOT_BLOCK"},
		{"negative time", func(s string) string { return strings.Replace(s, "time: 120", "time: -5", 1) }, "BAD_TIME"},
		{"no tiles", func(s string) string {
			return strings.Replace(s, "tiles:\n  - \".....F\"\n  - \"..?..|\"\n  - \".....|\"\n  - \"GGGGGG\"", "tiles: []", 1)
		}, "EMPTY_GRID"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseYAML([]byte(tc.edit(smallLevel)))
			require.Error(t, err)
			assert.Nil(t, d, "no partially built level on error")

			var verr ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tc.code, verr.Code)
			assert.Contains(t, err.Error(), "["+tc.code+"]")
		})
	}
}

func TestParseYAMLSyntaxError(t *testing.T) {
	_, err := ParseYAML([]byte("tiles: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml unmarshal")
}

func TestMarshalYAMLPreservesLevel(t *testing.T) {
	orig := Generate(2, 1, 0)
	raw, err := MarshalYAML(orig)
	require.NoError(t, err)

	back, err := ParseYAML(raw)
	require.NoError(t, err)
	assert.Equal(t, orig.Tiles, back.Tiles)
	assert.Equal(t, orig.Enemies, back.Enemies)
	assert.Equal(t, orig.Blocks, back.Blocks)
	assert.Equal(t, orig.PlayerStart, back.PlayerStart)
	assert.Equal(t, orig.Flag, back.Flag)
}
