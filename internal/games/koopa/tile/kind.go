// Package tile holds the koopa level grid: tile kinds, their solidity and
// the per-cell runtime state (bricks, question blocks, coins).
package tile

// Size is the edge length of one tile in world pixels.
const Size = 16

// Kind identifies what occupies a grid cell.
type Kind uint8

const (
	Empty Kind = iota
	Ground
	Dirt
	Platform
	Pipe
	Brick
	Question
	Hard
	Castle
	Used
	Coin
	Lava
	Pole
	FlagTop
	Bridge
	Axe
)

var kindInfo = [...]struct {
	name   string
	symbol rune
	solid  bool
}{
	Empty:    {"empty", '.', false},
	Ground:   {"ground", 'G', true},
	Dirt:     {"dirt", 'D', true},
	Platform: {"platform", 'P', true},
	Pipe:     {"pipe", 'T', true},
	Brick:    {"brick", 'B', true},
	Question: {"question", '?', true},
	Hard:     {"hard", 'H', true},
	Castle:   {"castle", 'C', true},
	Used:     {"used", 'U', true},
	Coin:     {"coin", 'o', false},
	Lava:     {"lava", 'L', false},
	Pole:     {"pole", '|', false},
	FlagTop:  {"flag_top", 'F', false},
	Bridge:   {"bridge", '=', true},
	Axe:      {"axe", 'A', false},
}

var symbolKinds = func() map[rune]Kind {
	m := make(map[rune]Kind, len(kindInfo)+1)
	for k, info := range kindInfo {
		m[info.symbol] = Kind(k)
	}
	m[' '] = Empty
	return m
}()

// String returns the lowercase kind name.
func (k Kind) String() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].name
	}
	return "unknown"
}

// Symbol returns the level-file character for the kind.
func (k Kind) Symbol() rune {
	if int(k) < len(kindInfo) {
		return kindInfo[k].symbol
	}
	return '.'
}

// Solid reports whether bodies collide with the kind.
func (k Kind) Solid() bool {
	return int(k) < len(kindInfo) && kindInfo[k].solid
}

// Hazard reports whether touching the kind kills outright.
func (k Kind) Hazard() bool {
	return k == Lava
}

// FromSymbol maps a level-file character to its kind.
func FromSymbol(r rune) (Kind, bool) {
	k, ok := symbolKinds[r]
	return k, ok
}

// FromName maps a kind name such as "brick" to its kind.
func FromName(name string) (Kind, bool) {
	for k, info := range kindInfo {
		if info.name == name {
			return Kind(k), true
		}
	}
	return Empty, false
}
