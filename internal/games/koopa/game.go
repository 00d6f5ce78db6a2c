// Package koopa is the platformer game registered with the game
// registry. It owns the campaign state and a scene stack; the simulation
// itself lives in the sim package.
package koopa

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-koopa/internal/config"
	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/scene"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/sim"
	"github.com/vovakirdan/tui-koopa/internal/registry"
)

// Game IDs.
const (
	IDCampaign = "koopa"
	IDCustom   = "koopa_custom"
)

// DefaultSlot is used when no slot name is configured.
const DefaultSlot = "default"

const (
	minScreenW = 40
	minScreenH = 12
	noticeTime = 4.0
)

// Game implements registry.Game for the platformer.
type Game struct {
	id      string
	opts    registry.Options
	runtime core.RuntimeConfig
	log     *log.Logger

	cfg        config.KoopaConfig
	difficulty *config.DifficultyManager
	src        levels.Source
	single     bool // one level file, no campaign map
	configured bool

	state      campaign.State
	stack      *scene.Stack
	finalScore int
	gameOver   bool

	notice     string
	noticeLeft float64

	screenTooSmall bool
}

// New creates the campaign game: authored levels from ~/.koopa/levels
// and the built-in set, generated levels everywhere else.
func New() *Game {
	return &Game{id: IDCampaign}
}

// NewCustom creates the custom-level game. It plays only user level
// files and never generates levels.
func NewCustom() *Game {
	return &Game{id: IDCustom}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string { return g.id }

// Title returns the display name for this game.
func (g *Game) Title() string {
	if g.id == IDCustom {
		return "Koopa (Custom Levels)"
	}
	return "Koopa"
}

// Configure applies session options. It fails when no level source can
// produce the first level.
func (g *Game) Configure(opts registry.Options) error {
	g.opts = opts
	g.log = opts.Logger
	if g.log == nil {
		g.log = log.Default()
	}
	if opts.Slot == "" {
		g.opts.Slot = DefaultSlot
	}

	cfg, err := config.LoadKoopa(opts.ConfigPath)
	if err != nil {
		g.log.Warn("config load failed, using defaults", "path", opts.ConfigPath, "error", err)
		cfg = config.DefaultKoopaConfig()
	}
	preset, ok := config.ParsePreset(opts.Difficulty)
	if !ok {
		return fmt.Errorf("koopa: unknown difficulty %q", opts.Difficulty)
	}
	config.ApplyKoopaPreset(&cfg, preset)
	g.cfg = cfg
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)

	g.src, g.single = g.levelSource()
	if _, err := g.src.Level(1, 1, levels.DefaultSeed(1, 1)); err != nil {
		return fmt.Errorf("koopa: no playable first level: %w", err)
	}
	g.configured = true
	return nil
}

func (g *Game) levelSource() (levels.Source, bool) {
	if g.opts.LevelFile != "" {
		return levels.FileSource{Path: g.opts.LevelFile}, true
	}
	dir := g.opts.LevelDir
	if dir == "" {
		dir = filepath.Join(config.HomeDir(), "levels")
	}
	cat := levels.NewCatalog(dir)
	if g.id == IDCustom {
		cat.Generate = false
	}
	return cat, false
}

// Reset starts a session: the campaign is restored from the save slot and
// the title screen is shown.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	if !g.configured {
		if err := g.Configure(registry.Options{Logger: g.log}); err != nil {
			g.log.Error("koopa: configure", "error", err)
			g.src = &levels.Catalog{Generate: true}
			g.cfg = config.DefaultKoopaConfig()
			g.difficulty = config.NewDifficultyManager(g.cfg.Difficulty)
			g.configured = true
		}
	}
	g.runtime = runtime
	g.Resize(runtime.ScreenW, runtime.ScreenH)
	g.gameOver = false
	g.finalScore = 0
	g.notice, g.noticeLeft = "", 0

	g.state = g.loadCampaign()
	g.stack = scene.NewStack(newTitle(g))

	switch {
	case g.single:
		g.state.World, g.state.Level = 1, 1
		g.stack.Push(newIntro(g))
	case g.opts.World > 0:
		st, err := g.state.Select(g.opts.World)
		if err != nil {
			g.setNotice(fmt.Sprintf("World %d is locked", g.opts.World))
			break
		}
		if g.opts.Level > 0 {
			st.Level = min(g.opts.Level, campaign.LevelsPerWorld)
		}
		g.state = st
		g.stack.Push(newWorldSelect(g))
		g.stack.Push(newIntro(g))
	}
}

// Resize updates the screen dimensions without restarting the session.
func (g *Game) Resize(w, h int) {
	g.runtime.ScreenW, g.runtime.ScreenH = w, h
	g.screenTooSmall = w < minScreenW || h < minScreenH
}

func (g *Game) loadCampaign() campaign.State {
	fresh := campaign.New(g.cfg.Campaign.Lives, g.cfg.Campaign.Worlds)
	if g.opts.Saves == nil || g.single {
		return fresh
	}
	data, err := g.opts.Saves.LoadSlot(g.id, g.opts.Slot)
	if errors.Is(err, core.ErrSlotNotFound) {
		return fresh
	}
	if err != nil {
		g.log.Warn("load save slot failed", "slot", g.opts.Slot, "error", err)
		g.setNotice("Save could not be loaded")
		return fresh
	}
	st, err := campaign.Decode(data)
	if err != nil {
		g.log.Warn("decode save slot failed", "slot", g.opts.Slot, "error", err)
		g.setNotice("Save is damaged, starting fresh")
		return fresh
	}
	return st
}

// autosave writes the campaign to the active slot. Failures become a HUD
// notice; play continues.
func (g *Game) autosave() {
	if g.opts.Saves == nil || g.single {
		return
	}
	data, err := g.state.Encode()
	if err == nil {
		err = g.opts.Saves.SaveSlot(g.id, g.opts.Slot, g.state.Summary(), data)
	}
	if err != nil {
		g.log.Warn("autosave failed", "slot", g.opts.Slot, "error", err)
		g.setNotice("Autosave failed")
	}
}

func (g *Game) recordClear(lvl *sim.Level) {
	if g.opts.Records == nil {
		return
	}
	d := lvl.Data()
	err := g.opts.Records.RecordClear(g.id, d.World, d.Level, lvl.Carry().Score, lvl.TimeRemaining())
	if err != nil {
		g.log.Warn("record clear failed", "level", d.ID, "error", err)
		g.setNotice("Level record not saved")
	}
}

func (g *Game) setNotice(msg string) {
	g.notice = msg
	g.noticeLeft = noticeTime
}

// startLevel builds a fresh attempt at the campaign's current level.
func (g *Game) startLevel() (*sim.Level, error) {
	opts := sim.Options{
		Config:     g.cfg,
		Difficulty: g.difficulty,
		Logger:     g.log,
	}
	lvl, err := sim.Load(g.src, g.state.World, g.state.Level, 0, g.state, opts)
	if err != nil {
		g.log.Error("level load failed", "world", g.state.World, "level", g.state.Level, "error", err)
		return nil, err
	}
	g.log.Info("level start", "level", lvl.Data().ID, "lives", g.state.Lives, "score", g.state.Score)
	return lvl, nil
}

// levelCleared advances the campaign after a victory and picks the next
// scene.
func (g *Game) levelCleared(lvl *sim.Level) []scene.Op {
	g.state = g.state.Absorb(lvl.Carry())
	g.recordClear(lvl)
	if g.single {
		g.finalScore = g.state.Score
		g.gameOver = true
		return scene.Ops(scene.Replace(newWin(g, "COURSE CLEAR!")))
	}
	next, done := g.state.Advance()
	g.state = next
	g.autosave()
	if done {
		g.finalScore = g.state.Score
		g.gameOver = true
		g.log.Info("campaign complete", "score", g.state.Score)
		return scene.Ops(scene.Replace(newWin(g, "THANK YOU! THE QUEST IS OVER")))
	}
	return scene.Ops(scene.Replace(newIntro(g)))
}

// lifeLost retries the current level.
func (g *Game) lifeLost(lvl *sim.Level) []scene.Op {
	g.state = g.state.Absorb(lvl.Carry()).AfterDeath()
	g.autosave()
	return scene.Ops(scene.Replace(newIntro(g)))
}

// campaignOver resets the campaign, keeping unlocked worlds.
func (g *Game) campaignOver(lvl *sim.Level) []scene.Op {
	g.state = g.state.Absorb(lvl.Carry())
	g.finalScore = g.state.Score
	g.gameOver = true
	g.log.Info("game over", "score", g.finalScore, "world", g.state.World, "level", g.state.Level)
	g.state = g.state.Reset(g.cfg.Campaign.Lives)
	g.autosave()
	return scene.Ops(scene.Replace(newGameOver(g)))
}

// Step advances the session by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.screenTooSmall || g.stack == nil || g.stack.Empty() {
		return core.StepResult{State: g.State()}
	}
	dt := 1.0 / float64(max(g.runtime.TickRate, 1))
	g.stack.Update(in, dt)

	if g.noticeLeft > 0 {
		g.noticeLeft -= dt
		if g.noticeLeft <= 0 {
			g.notice = ""
		}
	}
	return core.StepResult{State: g.State(), Notice: g.notice}
}

// Reload rebuilds the running level from its source. Called when a
// watched level file changes on disk.
func (g *Game) Reload() error {
	if g.stack == nil {
		return nil
	}
	if _, err := g.src.Level(g.state.World, g.state.Level, levels.DefaultSeed(g.state.World, g.state.Level)); err != nil {
		g.setNotice("Reload failed, see log")
		return fmt.Errorf("koopa: reload: %w", err)
	}
	if p, ok := g.stack.Peek().(*playScene); ok {
		g.stack.Replace(newIntro(g))
		g.log.Info("level reloaded", "level", p.lvl.Data().ID)
	}
	g.setNotice("Level reloaded")
	return nil
}

// Render draws the top scene and any overlays.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.screenTooSmall {
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small")
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("Need %dx%d", minScreenW, minScreenH))
		return
	}
	if g.stack == nil {
		return
	}
	g.stack.Render(dst)
	if g.notice != "" {
		dst.DrawTextCenteredColored(dst.Height()-1, g.notice, core.ColorBrightYellow)
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	score := g.state.Score
	if g.gameOver {
		score = g.finalScore
	}
	if p, ok := g.top().(*playScene); ok && p.lvl != nil {
		score = p.lvl.Carry().Score
	}
	_, paused := g.top().(*pauseScene)
	return core.GameState{
		Score:    score,
		GameOver: g.gameOver,
		Paused:   paused,
		Quit:     g.stack != nil && g.stack.Empty(),
	}
}

func (g *Game) top() scene.Scene {
	if g.stack == nil {
		return nil
	}
	return g.stack.Peek()
}

// Campaign returns the current campaign state.
func (g *Game) Campaign() campaign.State { return g.state }

func init() {
	registry.Register(IDCampaign, func() registry.Game {
		return New()
	})
	registry.Register(IDCustom, func() registry.Game {
		return NewCustom()
	})
}
