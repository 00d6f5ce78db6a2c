package levels

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// YAMLLevel is the on-disk shape of a level file.
type YAMLLevel struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	World       int               `yaml:"world"`
	Level       int               `yaml:"level"`
	Theme       int               `yaml:"theme,omitempty"`
	Time        int               `yaml:"time,omitempty"`
	Tiles       []string          `yaml:"tiles"`
	PlayerStart YAMLPoint         `yaml:"player_start"`
	Flag        YAMLPoint         `yaml:"flag"`
	Enemies     []YAMLEnemy       `yaml:"enemies,omitempty"`
	Blocks      map[string]string `yaml:"blocks,omitempty"`
}

// YAMLPoint is a tile cell.
type YAMLPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// YAMLEnemy is one enemy spawn.
type YAMLEnemy struct {
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Kind string `yaml:"kind"`
}

// ParseYAML parses and validates a level file. Any error leaves no
// partially built level behind.
func ParseYAML(data []byte) (*Data, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return yl.toData()
}

func (yl YAMLLevel) toData() (*Data, error) {
	d := &Data{
		ID:          yl.ID,
		Name:        yl.Name,
		World:       yl.World,
		Level:       yl.Level,
		Theme:       yl.Theme,
		Time:        yl.Time,
		PlayerStart: tile.Pos{Col: yl.PlayerStart.X, Row: yl.PlayerStart.Y},
		Flag:        tile.Pos{Col: yl.Flag.X, Row: yl.Flag.Y},
		Blocks:      make(map[tile.Pos]tile.Content, len(yl.Blocks)),
	}
	if d.Theme == 0 {
		d.Theme = max(d.World, 1)
	}
	if d.Time == 0 {
		d.Time = DefaultTime
	}
	if d.ID == "" && d.World > 0 && d.Level > 0 {
		d.ID = fmt.Sprintf("%d-%d", d.World, d.Level)
	}

	d.Tiles = make([][]tile.Kind, len(yl.Tiles))
	for row, line := range yl.Tiles {
		kinds := make([]tile.Kind, 0, len(line))
		for col, r := range []rune(line) {
			k, ok := tile.FromSymbol(r)
			if !ok {
				return nil, invalid("UNKNOWN_SYMBOL", "row %d col %d: unknown tile symbol %q", row, col, r)
			}
			kinds = append(kinds, k)
		}
		d.Tiles[row] = kinds
	}

	for i, e := range yl.Enemies {
		kind, ok := ParseEnemyKind(e.Kind)
		if !ok {
			return nil, invalid("UNKNOWN_ENEMY", "enemy %d: unknown kind %q", i, e.Kind)
		}
		d.Enemies = append(d.Enemies, Spawn{Col: e.X, Row: e.Y, Kind: kind})
	}

	keys := make([]string, 0, len(yl.Blocks))
	for key := range yl.Blocks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		name := yl.Blocks[key]
		p, err := tile.ParsePos(key)
		if err != nil {
			return nil, invalid("BAD_CELL_KEY", "block key %q: %v", key, err)
		}
		c, ok := tile.ParseContent(name)
		if !ok {
			return nil, invalid("UNKNOWN_CONTENT", "block %s: unknown content %q", key, name)
		}
		d.Blocks[p] = c
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// MarshalYAML renders a level in the file format ParseYAML reads.
func MarshalYAML(d *Data) ([]byte, error) {
	yl := YAMLLevel{
		ID:          d.ID,
		Name:        d.Name,
		World:       d.World,
		Level:       d.Level,
		Theme:       d.Theme,
		Time:        d.Time,
		PlayerStart: YAMLPoint{X: d.PlayerStart.Col, Y: d.PlayerStart.Row},
		Flag:        YAMLPoint{X: d.Flag.Col, Y: d.Flag.Row},
	}
	for _, line := range d.Tiles {
		var sb strings.Builder
		for _, k := range line {
			sb.WriteRune(k.Symbol())
		}
		yl.Tiles = append(yl.Tiles, sb.String())
	}
	for _, s := range d.Enemies {
		yl.Enemies = append(yl.Enemies, YAMLEnemy{X: s.Col, Y: s.Row, Kind: s.Kind.String()})
	}
	if len(d.Blocks) > 0 {
		yl.Blocks = make(map[string]string, len(d.Blocks))
		for p, c := range d.Blocks {
			yl.Blocks[p.Key()] = c.String()
		}
	}
	out, err := yaml.Marshal(yl)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return out, nil
}

// FormatExtensions returns supported level file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
