package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-koopa/internal/core"
)

// GameKeyMap holds the in-game key bindings.
type GameKeyMap struct {
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	Jump       key.Binding
	Run        key.Binding
	Confirm    key.Binding
	Back       key.Binding
	Pause      key.Binding
	Restart    key.Binding
	Quit       key.Binding
	Screenshot key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Jump, k.Run, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Jump, k.Run, k.Confirm, k.Back},
		{k.Pause, k.Restart, k.Screenshot, k.Quit},
	}
}

// DefaultGameKeyMap returns the default bindings. Shift+arrow moves and
// runs at once, since terminals do not report a lone shift.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a", "shift+left"),
			key.WithHelp("left/a", "walk left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "shift+right"),
			key.WithHelp("right/d", "walk right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "w"),
			key.WithHelp("up/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("down/s", "crouch"),
		),
		Jump: key.NewBinding(
			key.WithKeys(" ", "k", "z"),
			key.WithHelp("space/k", "jump"),
		),
		Run: key.NewBinding(
			key.WithKeys("j", "x", "shift+left", "shift+right"),
			key.WithHelp("j/x", "run, fire"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys GameKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultGameKeyMap()}
}

// Keys returns the bindings, for help views.
func (km *KeyMapper) Keys() GameKeyMap { return km.keys }

// MapKey translates a key message to the actions it triggers. One key may
// trigger several actions (shift+right is Right and Run).
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (actions []core.Action, isQuit bool) {
	k := km.keys
	if key.Matches(msg, k.Quit) {
		return []core.Action{core.ActionQuit}, true
	}
	bindings := []struct {
		b key.Binding
		a core.Action
	}{
		{k.Left, core.ActionLeft},
		{k.Right, core.ActionRight},
		{k.Up, core.ActionUp},
		{k.Down, core.ActionDown},
		{k.Jump, core.ActionJump},
		{k.Run, core.ActionRun},
		{k.Confirm, core.ActionConfirm},
		{k.Back, core.ActionBack},
		{k.Pause, core.ActionPause},
		{k.Restart, core.ActionRestart},
	}
	for _, e := range bindings {
		if key.Matches(msg, e.b) {
			actions = append(actions, e.a)
		}
	}
	return actions, false
}

// Terminals send no key-up events. A pressed movement action stays held
// for holdFirst, long enough to bridge the OS key-repeat delay, and each
// repeat extends it by holdRepeat. Other actions are taps that last one
// frame.
const (
	holdFirst  = 550 * time.Millisecond
	holdRepeat = 120 * time.Millisecond
)

func holdable(a core.Action) bool {
	switch a {
	case core.ActionLeft, core.ActionRight, core.ActionUp, core.ActionDown, core.ActionJump, core.ActionRun:
		return true
	}
	return false
}

// HoldTracker turns key presses into held actions.
type HoldTracker struct {
	until map[core.Action]time.Time
	taps  map[core.Action]bool
}

// NewHoldTracker creates an empty tracker.
func NewHoldTracker() *HoldTracker {
	return &HoldTracker{
		until: make(map[core.Action]time.Time),
		taps:  make(map[core.Action]bool),
	}
}

// Press records a key press at now.
func (h *HoldTracker) Press(a core.Action, now time.Time) {
	if !holdable(a) {
		h.taps[a] = true
		return
	}
	if t, held := h.until[a]; held && now.Before(t) {
		h.until[a] = maxTime(t, now.Add(holdRepeat))
	} else {
		h.until[a] = now.Add(holdFirst)
	}
	// Pressing one direction releases the other.
	switch a {
	case core.ActionLeft:
		delete(h.until, core.ActionRight)
	case core.ActionRight:
		delete(h.until, core.ActionLeft)
	}
}

// Frame fills dst with the actions held at now, then forgets expired
// holds and consumed taps.
func (h *HoldTracker) Frame(now time.Time, dst *core.InputFrame) {
	for a, t := range h.until {
		if now.Before(t) {
			dst.Set(a)
		} else {
			delete(h.until, a)
		}
	}
	for a := range h.taps {
		dst.Set(a)
	}
	clear(h.taps)
}

// Release drops every held action.
func (h *HoldTracker) Release() {
	clear(h.until)
	clear(h.taps)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionScoreboard
	MenuActionDelete
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	case "x", "delete":
		return MenuActionDelete
	}
	return MenuActionNone
}
