// Package scene is a push/pop/replace stack of game screens.
//
// Only the top scene is updated. A scene never switches screens itself:
// it returns ops and the stack applies them after the update, so a scene
// is never mutated while it is running.
package scene

import "github.com/vovakirdan/tui-koopa/internal/core"

// Scene is one game screen (title, world select, level, pause, ...).
type Scene interface {
	// Update advances the scene by dt seconds and returns the stack
	// operations to apply afterwards. nil stays on the current scene.
	Update(in core.InputFrame, dt float64) []Op

	// Render draws the scene into a pre-cleared screen.
	Render(dst *core.Screen)
}

// Enterer is implemented by scenes that reset state each time they become
// the top of the stack, including when the scene above is popped.
type Enterer interface {
	Enter()
}

// Exiter is implemented by scenes that release or save state when they
// leave the stack.
type Exiter interface {
	Exit()
}

// Overlay is implemented by scenes drawn on top of the scene below them.
type Overlay interface {
	Overlay() bool
}

// OpKind selects a stack operation.
type OpKind uint8

const (
	OpPush OpKind = iota
	OpPop
	OpReplace
	OpQuit
)

func (k OpKind) String() string {
	switch k {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	case OpReplace:
		return "replace"
	case OpQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Op is a stack operation returned by Scene.Update.
type Op struct {
	Kind  OpKind
	Scene Scene
}

// Push puts s on top of the current scene.
func Push(s Scene) Op { return Op{Kind: OpPush, Scene: s} }

// Pop removes the current scene.
func Pop() Op { return Op{Kind: OpPop} }

// Replace swaps the current scene for s.
func Replace(s Scene) Op { return Op{Kind: OpReplace, Scene: s} }

// Quit empties the stack.
func Quit() Op { return Op{Kind: OpQuit} }

// Ops is shorthand for returning several operations.
func Ops(ops ...Op) []Op { return ops }
