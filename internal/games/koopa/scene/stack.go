package scene

import "github.com/vovakirdan/tui-koopa/internal/core"

// Stack holds the active scenes, top last.
type Stack struct {
	scenes []Scene
}

// NewStack returns a stack with root as its only scene.
func NewStack(root Scene) *Stack {
	s := &Stack{}
	if root != nil {
		s.Push(root)
	}
	return s
}

// Len returns the number of scenes on the stack.
func (s *Stack) Len() int { return len(s.scenes) }

// Empty reports whether the last scene has been popped.
func (s *Stack) Empty() bool { return len(s.scenes) == 0 }

// Peek returns the top scene or nil.
func (s *Stack) Peek() Scene {
	if len(s.scenes) == 0 {
		return nil
	}
	return s.scenes[len(s.scenes)-1]
}

// Push puts sc on top and enters it.
func (s *Stack) Push(sc Scene) {
	s.scenes = append(s.scenes, sc)
	enter(sc)
}

// Pop removes and returns the top scene. The scene below, if any, is
// entered again.
func (s *Stack) Pop() Scene {
	top := s.pop()
	if top != nil {
		enter(s.Peek())
	}
	return top
}

// Replace swaps the top scene for sc and returns the old one. On an empty
// stack it pushes.
func (s *Stack) Replace(sc Scene) Scene {
	old := s.pop()
	s.Push(sc)
	return old
}

// Clear exits every scene, top first.
func (s *Stack) Clear() {
	for len(s.scenes) > 0 {
		s.pop()
	}
}

func (s *Stack) pop() Scene {
	if len(s.scenes) == 0 {
		return nil
	}
	top := s.scenes[len(s.scenes)-1]
	s.scenes[len(s.scenes)-1] = nil
	s.scenes = s.scenes[:len(s.scenes)-1]
	if x, ok := top.(Exiter); ok {
		x.Exit()
	}
	return top
}

// Apply runs ops in order. Pops below an empty stack are ignored.
func (s *Stack) Apply(ops []Op) {
	for _, op := range ops {
		switch op.Kind {
		case OpPush:
			if op.Scene != nil {
				s.Push(op.Scene)
			}
		case OpPop:
			s.Pop()
		case OpReplace:
			if op.Scene != nil {
				s.Replace(op.Scene)
			}
		case OpQuit:
			s.Clear()
		}
	}
}

// Update advances the top scene and applies the ops it returns.
func (s *Stack) Update(in core.InputFrame, dt float64) {
	top := s.Peek()
	if top == nil {
		return
	}
	s.Apply(top.Update(in, dt))
}

// Render draws the top scene, preceded by the scenes it overlays.
func (s *Stack) Render(dst *core.Screen) {
	if len(s.scenes) == 0 {
		return
	}
	base := len(s.scenes) - 1
	for base > 0 {
		o, ok := s.scenes[base].(Overlay)
		if !ok || !o.Overlay() {
			break
		}
		base--
	}
	for _, sc := range s.scenes[base:] {
		sc.Render(dst)
	}
}

func enter(sc Scene) {
	if e, ok := sc.(Enterer); ok {
		e.Enter()
	}
}
