package tile

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos addresses a grid cell by column and row.
type Pos struct {
	Col, Row int
}

// Key renders the position as "col,row", the level-file block key.
func (p Pos) Key() string {
	return strconv.Itoa(p.Col) + "," + strconv.Itoa(p.Row)
}

// ParsePos parses a "col,row" key.
func ParsePos(key string) (Pos, error) {
	a, b, ok := strings.Cut(key, ",")
	if !ok {
		return Pos{}, fmt.Errorf("tile: position %q: missing comma", key)
	}
	col, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return Pos{}, fmt.Errorf("tile: position %q: %w", key, err)
	}
	row, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return Pos{}, fmt.Errorf("tile: position %q: %w", key, err)
	}
	return Pos{Col: col, Row: row}, nil
}

// Content is what a question block releases when bonked.
type Content uint8

const (
	ContentNone Content = iota
	ContentCoin
	ContentPowerup
	ContentStar
	ContentLife
)

// String returns the level-file name of the content.
func (c Content) String() string {
	switch c {
	case ContentNone:
		return "none"
	case ContentCoin:
		return "coin"
	case ContentPowerup:
		return "powerup"
	case ContentStar:
		return "star"
	case ContentLife:
		return "life"
	default:
		return "unknown"
	}
}

// ParseContent maps a level-file name to a Content. "mushroom" is
// accepted as an alias for powerup.
func ParseContent(name string) (Content, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "empty":
		return ContentNone, true
	case "coin":
		return ContentCoin, true
	case "powerup", "mushroom":
		return ContentPowerup, true
	case "star":
		return ContentStar, true
	case "life", "1up", "oneup":
		return ContentLife, true
	}
	return ContentNone, false
}
