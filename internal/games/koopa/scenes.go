package koopa

import (
	"fmt"

	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/scene"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/sim"
)

const introTime = 2.0

// edges turns held actions into presses. Actions already held when a
// scene is entered do not count as presses.
type edges struct {
	prev   core.InputFrame
	primed bool
}

func (e *edges) reset() { e.primed = false }

func (e *edges) next(in core.InputFrame) core.InputFrame {
	out := core.NewInputFrame()
	if e.primed {
		for a, held := range in.Actions {
			if held && !e.prev.Has(a) {
				out.Set(a)
			}
		}
	}
	e.prev = in.Clone()
	e.primed = true
	return out
}

// popToTitle pops everything above the title scene.
func (g *Game) popToTitle() []scene.Op {
	ops := make([]scene.Op, 0, g.stack.Len())
	for range g.stack.Len() - 1 {
		ops = append(ops, scene.Pop())
	}
	return ops
}

// titleScene is the root of the stack.
type titleScene struct {
	g     *Game
	input edges
}

func newTitle(g *Game) *titleScene { return &titleScene{g: g} }

func (s *titleScene) Enter() {
	s.input.reset()
	s.g.gameOver = false
}

func (s *titleScene) Update(in core.InputFrame, _ float64) []scene.Op {
	pressed := s.input.next(in)
	switch {
	case pressed.Has(core.ActionConfirm), pressed.Has(core.ActionJump):
		if s.g.single {
			s.g.state = campaign.New(s.g.cfg.Campaign.Lives, 1)
			return scene.Ops(scene.Push(newIntro(s.g)))
		}
		return scene.Ops(scene.Push(newWorldSelect(s.g)))
	case pressed.Has(core.ActionBack), pressed.Has(core.ActionQuit):
		return scene.Ops(scene.Quit())
	}
	return nil
}

func (s *titleScene) Render(dst *core.Screen) {
	h := dst.Height()
	top := max(h/2-5, 1)
	for i, line := range titleArt {
		dst.DrawTextCenteredColored(top+i, line, core.ColorBrightRed)
	}
	y := top + len(titleArt) + 1
	dst.DrawTextCentered(y, s.g.Title())
	if !s.g.single {
		dst.DrawTextCenteredColored(y+1, fmt.Sprintf("slot %s: %s", s.g.opts.Slot, s.g.state.Summary()), core.ColorGray)
	}
	dst.DrawTextCenteredColored(y+3, "Press ENTER to start", core.ColorBrightWhite)
	dst.DrawTextCenteredColored(y+4, "ESC to quit", core.ColorGray)
}

var titleArt = []string{
	"K  K  OOO   OOO  PPPP   AAA ",
	"K K  O   O O   O P   P A   A",
	"KK   O   O O   O PPPP  AAAAA",
	"K K  O   O O   O P     A   A",
	"K  K  OOO   OOO  P     A   A",
}

// worldSelectScene picks an unlocked world.
type worldSelectScene struct {
	g      *Game
	input  edges
	cursor int // 0-based world index
}

func newWorldSelect(g *Game) *worldSelectScene {
	return &worldSelectScene{g: g, cursor: max(g.state.World-1, 0)}
}

func (s *worldSelectScene) Enter() {
	s.input.reset()
	s.cursor = min(max(s.g.state.World-1, 0), s.worlds()-1)
}

func (s *worldSelectScene) worlds() int {
	return max(s.g.state.Worlds, 1)
}

func (s *worldSelectScene) Update(in core.InputFrame, _ float64) []scene.Op {
	pressed := s.input.next(in)
	n := s.worlds()
	switch {
	case pressed.Has(core.ActionLeft), pressed.Has(core.ActionUp):
		s.cursor = (s.cursor - 1 + n) % n
	case pressed.Has(core.ActionRight), pressed.Has(core.ActionDown):
		s.cursor = (s.cursor + 1) % n
	case pressed.Has(core.ActionBack):
		return scene.Ops(scene.Pop())
	case pressed.Has(core.ActionConfirm), pressed.Has(core.ActionJump):
		return s.choose()
	}
	return nil
}

func (s *worldSelectScene) choose() []scene.Op {
	g := s.g
	world := s.cursor + 1
	// The current world resumes at its current level.
	if world == g.state.World && !g.state.Complete {
		return scene.Ops(scene.Push(newIntro(g)))
	}
	st, err := g.state.Select(world)
	if err != nil {
		g.setNotice(fmt.Sprintf("World %d is locked", world))
		return nil
	}
	g.state = st
	return scene.Ops(scene.Push(newIntro(g)))
}

func (s *worldSelectScene) Render(dst *core.Screen) {
	g := s.g
	dst.DrawTextCenteredColored(1, "SELECT WORLD", core.ColorBrightWhite)
	n := s.worlds()
	top := max((dst.Height()-n)/2, 3)
	for i := range n {
		world := i + 1
		theme := levels.ThemeByID(world)
		color := core.ColorWhite
		label := fmt.Sprintf("WORLD %d  %-12s", world, theme.Name)
		if !g.state.IsUnlocked(world) {
			label = fmt.Sprintf("WORLD %d  %-12s", world, "LOCKED")
			color = core.ColorGray
		} else if world == g.state.World && !g.state.Complete {
			label += fmt.Sprintf(" %d-%d", world, g.state.Level)
		}
		prefix := "  "
		if i == s.cursor {
			prefix = "> "
			if color != core.ColorGray {
				color = core.ColorBrightYellow
			}
		}
		dst.DrawTextCenteredColored(top+i, prefix+label, color)
	}
	dst.DrawTextCenteredColored(dst.Height()-2, "arrows choose  ENTER play  ESC back", core.ColorGray)
}

// introScene shows the level card, then replaces itself with play.
type introScene struct {
	g     *Game
	input edges
	left  float64
	world int
	level int
}

func newIntro(g *Game) *introScene {
	return &introScene{g: g, left: introTime, world: g.state.World, level: g.state.Level}
}

func (s *introScene) Enter() { s.input.reset() }

func (s *introScene) Update(in core.InputFrame, dt float64) []scene.Op {
	pressed := s.input.next(in)
	if pressed.Has(core.ActionBack) {
		return scene.Ops(scene.Pop())
	}
	s.left -= dt
	if s.left > 0 && !pressed.Has(core.ActionConfirm) {
		return nil
	}
	lvl, err := s.g.startLevel()
	if err != nil {
		s.g.setNotice(fmt.Sprintf("Level %d-%d failed to load", s.world, s.level))
		return scene.Ops(scene.Pop())
	}
	return scene.Ops(scene.Replace(newPlay(s.g, lvl)))
}

func (s *introScene) Render(dst *core.Screen) {
	g := s.g
	mid := dst.Height() / 2
	if g.single {
		dst.DrawTextCenteredColored(mid-2, "CUSTOM COURSE", core.ColorBrightWhite)
	} else {
		theme := levels.ThemeByID(s.world)
		dst.DrawTextCenteredColored(mid-3, theme.Name, core.ColorGray)
		dst.DrawTextCenteredColored(mid-1, fmt.Sprintf("WORLD %d-%d", s.world, s.level), core.ColorBrightWhite)
	}
	dst.DrawTextCentered(mid+1, fmt.Sprintf("x %d", g.state.Lives))
	dst.DrawTextCenteredColored(mid+3, fmt.Sprintf("SCORE %06d", g.state.Score), core.ColorGray)
}

// playScene runs one level attempt.
type playScene struct {
	g      *Game
	input  edges
	lvl    *sim.Level
	camera camera
}

func newPlay(g *Game, lvl *sim.Level) *playScene {
	return &playScene{g: g, lvl: lvl}
}

func (s *playScene) Enter() { s.input.reset() }

func (s *playScene) Update(in core.InputFrame, dt float64) []scene.Op {
	pressed := s.input.next(in)
	if pressed.Has(core.ActionPause) || pressed.Has(core.ActionBack) {
		return scene.Ops(scene.Push(newPause(s.g)))
	}
	res := s.lvl.Tick(simInput(in), dt)
	switch res.Completion {
	case sim.LevelAdvance:
		return s.g.levelCleared(s.lvl)
	case sim.Respawn:
		return s.g.lifeLost(s.lvl)
	case sim.GameOver:
		return s.g.campaignOver(s.lvl)
	}
	return nil
}

func (s *playScene) Render(dst *core.Screen) {
	s.camera.follow(s.lvl, dst)
	renderLevel(dst, s.lvl, s.camera)
	renderHUD(dst, s.g, s.lvl)
}

func simInput(in core.InputFrame) sim.Input {
	return sim.Input{
		Left:  in.Has(core.ActionLeft),
		Right: in.Has(core.ActionRight),
		Up:    in.Has(core.ActionUp),
		Down:  in.Has(core.ActionDown),
		Jump:  in.Has(core.ActionJump),
		Run:   in.Has(core.ActionRun),
	}
}

var pauseOptions = []string{"Resume", "Quit to map"}

// pauseScene overlays play and freezes it.
type pauseScene struct {
	g      *Game
	input  edges
	cursor int
}

func newPause(g *Game) *pauseScene { return &pauseScene{g: g} }

func (s *pauseScene) Enter() { s.input.reset() }

func (s *pauseScene) Overlay() bool { return true }

func (s *pauseScene) Update(in core.InputFrame, _ float64) []scene.Op {
	pressed := s.input.next(in)
	switch {
	case pressed.Has(core.ActionPause), pressed.Has(core.ActionBack):
		return scene.Ops(scene.Pop())
	case pressed.Has(core.ActionUp), pressed.Has(core.ActionDown):
		s.cursor = 1 - s.cursor
	case pressed.Has(core.ActionConfirm), pressed.Has(core.ActionJump):
		if s.cursor == 0 {
			return scene.Ops(scene.Pop())
		}
		return scene.Ops(scene.Pop(), scene.Pop())
	}
	return nil
}

func (s *pauseScene) Render(dst *core.Screen) {
	lines := make([]string, len(pauseOptions))
	for i, opt := range pauseOptions {
		if i == s.cursor {
			lines[i] = "> " + opt
		} else {
			lines[i] = "  " + opt
		}
	}
	drawCenteredBox(dst, "PAUSED", lines...)
}

// gameOverScene is shown after the last life. Confirming returns to the
// title.
type gameOverScene struct {
	g     *Game
	input edges
}

func newGameOver(g *Game) *gameOverScene { return &gameOverScene{g: g} }

func (s *gameOverScene) Enter() { s.input.reset() }

func (s *gameOverScene) Update(in core.InputFrame, _ float64) []scene.Op {
	pressed := s.input.next(in)
	if pressed.Has(core.ActionConfirm) || pressed.Has(core.ActionBack) || pressed.Has(core.ActionRestart) {
		return s.g.popToTitle()
	}
	return nil
}

func (s *gameOverScene) Render(dst *core.Screen) {
	drawCenteredBox(dst, "GAME OVER",
		fmt.Sprintf("Score: %d", s.g.finalScore),
		"Press ENTER")
}

// winScene ends a campaign or a single custom course.
type winScene struct {
	g       *Game
	input   edges
	message string
}

func newWin(g *Game, message string) *winScene { return &winScene{g: g, message: message} }

func (s *winScene) Enter() { s.input.reset() }

func (s *winScene) Update(in core.InputFrame, _ float64) []scene.Op {
	pressed := s.input.next(in)
	if pressed.Has(core.ActionConfirm) || pressed.Has(core.ActionBack) || pressed.Has(core.ActionRestart) {
		return s.g.popToTitle()
	}
	return nil
}

func (s *winScene) Render(dst *core.Screen) {
	drawCenteredBox(dst, s.message,
		fmt.Sprintf("Final Score: %d", s.g.finalScore),
		"Press ENTER")
}

// drawCenteredBox draws a centered message box.
func drawCenteredBox(dst *core.Screen, title string, lines ...string) {
	w := dst.Width()
	h := dst.Height()

	boxW := len([]rune(title))
	for _, l := range lines {
		boxW = max(boxW, len([]rune(l)))
	}
	boxW += 4
	boxH := len(lines) + 4
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))

	dst.DrawTextColored(boxX+(boxW-len([]rune(title)))/2, boxY+1, title, core.ColorBrightWhite)
	for i, l := range lines {
		dst.DrawText(boxX+(boxW-len([]rune(l)))/2, boxY+3+i, l)
	}
}
