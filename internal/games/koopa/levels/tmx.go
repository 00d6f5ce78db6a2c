package levels

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/lafriks/go-tiled"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// Tiled map conventions.
const (
	tmxTileLayer    = "tiles"
	tmxEnemyGroup   = "enemies"
	tmxMarkerGroup  = "markers"
	tmxBlockGroup   = "blocks"
	tmxKindProperty = "kind"
)

// TMXOptions supplies level metadata a Tiled map does not carry.
type TMXOptions struct {
	FS    fs.FS // nil reads from the OS filesystem
	ID    string
	Name  string
	World int
	Level int
	Theme int
	Time  int
}

// ImportTMX converts a Tiled map into level data.
//
// Tiles come from the layer named "tiles"; each tileset tile carries a
// "kind" property naming a tile kind ("ground", "brick", ...). Object
// groups "enemies" (object name = enemy kind), "markers" (objects named
// player_start and flag) and "blocks" (a "content" property) place the
// rest. The result is validated like a YAML level.
func ImportTMX(path string, opts TMXOptions) (*Data, error) {
	var loadOpts []tiled.LoaderOption
	if opts.FS != nil {
		loadOpts = append(loadOpts, tiled.WithFileSystem(opts.FS))
	}
	m, err := tiled.LoadFile(path, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", path, err)
	}

	yl := YAMLLevel{
		ID:     opts.ID,
		Name:   opts.Name,
		World:  max(opts.World, 1),
		Level:  max(opts.Level, 1),
		Theme:  opts.Theme,
		Time:   opts.Time,
		Blocks: make(map[string]string),
	}
	if yl.Name == "" {
		yl.Name = strings.TrimSuffix(path, ".tmx")
	}

	rows, err := tmxTiles(m)
	if err != nil {
		return nil, err
	}
	yl.Tiles = rows

	cell := func(o *tiled.Object) (int, int) {
		return int(o.X) / m.TileWidth, int(o.Y) / m.TileHeight
	}
	for _, og := range m.ObjectGroups {
		switch og.Name {
		case tmxEnemyGroup:
			for _, o := range og.Objects {
				x, y := cell(o)
				yl.Enemies = append(yl.Enemies, YAMLEnemy{X: x, Y: y, Kind: o.Name})
			}
		case tmxMarkerGroup:
			for _, o := range og.Objects {
				x, y := cell(o)
				switch o.Name {
				case "player_start":
					yl.PlayerStart = YAMLPoint{X: x, Y: y}
				case "flag":
					yl.Flag = YAMLPoint{X: x, Y: y}
				}
			}
		case tmxBlockGroup:
			for _, o := range og.Objects {
				x, y := cell(o)
				content := o.Properties.GetString("content")
				if content == "" {
					content = o.Name
				}
				yl.Blocks[tile.Pos{Col: x, Row: y}.Key()] = content
			}
		}
	}

	d, err := yl.toData()
	if err != nil {
		return nil, fmt.Errorf("import TMX %s: %w", path, err)
	}
	return d, nil
}

func tmxTiles(m *tiled.Map) ([]string, error) {
	var layer *tiled.Layer
	for _, l := range m.Layers {
		if l.Name == tmxTileLayer {
			layer = l
			break
		}
	}
	if layer == nil && len(m.Layers) > 0 {
		layer = m.Layers[0]
	}
	if layer == nil {
		return nil, invalid("EMPTY_GRID", "map has no tile layer")
	}

	rows := make([]string, m.Height)
	for y := 0; y < m.Height; y++ {
		var sb strings.Builder
		for x := 0; x < m.Width; x++ {
			t := layer.Tiles[y*m.Width+x]
			if t.IsNil() {
				sb.WriteRune(tile.Empty.Symbol())
				continue
			}
			name := ""
			if tsTile, err := t.Tileset.GetTilesetTile(t.ID); err == nil {
				name = tsTile.Properties.GetString(tmxKindProperty)
			}
			k, ok := tile.FromName(name)
			if !ok {
				return nil, invalid("UNKNOWN_SYMBOL", "tile %d,%d: tileset tile %d has kind %q", x, y, t.ID, name)
			}
			sb.WriteRune(k.Symbol())
		}
		rows[y] = sb.String()
	}
	return rows, nil
}
