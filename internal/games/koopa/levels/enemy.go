package levels

import "strings"

// EnemyKind names a concrete enemy species in a level file.
type EnemyKind uint8

const (
	Goomba EnemyKind = iota
	Beetle
	Koopa
	Paratroopa
	Cheep
	Spike
	Piranha
	Firebar
	Bowser
)

// Class groups enemy kinds that share one behaviour.
type Class uint8

const (
	ClassWalker Class = iota
	ClassShell
	ClassFlyer
	ClassHazard
	ClassBoss
)

var enemyNames = [...]string{
	Goomba:     "goomba",
	Beetle:     "beetle",
	Koopa:      "koopa",
	Paratroopa: "paratroopa",
	Cheep:      "cheep",
	Spike:      "spike",
	Piranha:    "piranha",
	Firebar:    "firebar",
	Bowser:     "bowser",
}

// String returns the level-file name of the kind.
func (k EnemyKind) String() string {
	if int(k) < len(enemyNames) {
		return enemyNames[k]
	}
	return "unknown"
}

// Class returns the behaviour group of the kind.
func (k EnemyKind) Class() Class {
	switch k {
	case Goomba, Beetle:
		return ClassWalker
	case Koopa:
		return ClassShell
	case Paratroopa, Cheep:
		return ClassFlyer
	case Spike, Piranha, Firebar:
		return ClassHazard
	case Bowser:
		return ClassBoss
	}
	return ClassWalker
}

// ParseEnemyKind maps a level-file name to a kind.
func ParseEnemyKind(name string) (EnemyKind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range enemyNames {
		if n == name {
			return EnemyKind(k), true
		}
	}
	return 0, false
}
