package koopa

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/registry"
)

var testRuntime = core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}

// flatRows is a flat course with the flagpole at column 18.
var flatRows = []string{
	"....................",
	"....................",
	"..................F.",
	"..................|.",
	"..................|.",
	"..................|.",
	"..................|.",
	"GGGGGGGGGGGGGGGGGGGG",
}

// pitRows starts the player over a gap.
var pitRows = []string{
	"....................",
	"....................",
	"..................F.",
	"..................|.",
	"..................|.",
	"..................|.",
	"..................|.",
	"GG.......GGGGGGGGGGG",
}

func writeLevel(t *testing.T, dir, file, id string, rows []string) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "id: %q\nname: TEST\nworld: 1\nlevel: 1\ntheme: 1\ntime: 300\ntiles:\n", id)
	for _, r := range rows {
		fmt.Fprintf(&b, "  - %q\n", r)
	}
	b.WriteString("player_start: {x: 3, y: 6}\nflag: {x: 18, y: 6}\n")
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

type memSaves struct {
	data    map[string][]byte
	failing error
}

func newMemSaves() *memSaves { return &memSaves{data: map[string][]byte{}} }

func (m *memSaves) SaveSlot(game, slot, _ string, payload []byte) error {
	if m.failing != nil {
		return m.failing
	}
	m.data[game+"/"+slot] = append([]byte(nil), payload...)
	return nil
}

func (m *memSaves) LoadSlot(game, slot string) ([]byte, error) {
	data, ok := m.data[game+"/"+slot]
	if !ok {
		return nil, core.ErrSlotNotFound
	}
	return data, nil
}

func (m *memSaves) ListSlots(string) ([]core.SlotInfo, error) { return nil, nil }

func (m *memSaves) DeleteSlot(game, slot string) error {
	delete(m.data, game+"/"+slot)
	return nil
}

func (m *memSaves) state(t *testing.T, game string) campaign.State {
	t.Helper()
	data, ok := m.data[game+"/"+DefaultSlot]
	require.True(t, ok, "slot not saved")
	st, err := campaign.Decode(data)
	require.NoError(t, err)
	return st
}

type levelClear struct{ world, level, score, timeLeft int }

type recorder struct{ clears []levelClear }

func (r *recorder) RecordClear(_ string, world, level, score, timeLeft int) error {
	r.clears = append(r.clears, levelClear{world, level, score, timeLeft})
	return nil
}

func quiet() *log.Logger { return log.New(io.Discard) }

func frame(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

// press releases every key for one tick, then holds a for one tick.
func press(g *Game, a core.Action) core.StepResult {
	g.Step(frame())
	return g.Step(frame(a))
}

func runUntil(g *Game, limit int, in core.InputFrame, done func() bool) bool {
	for range limit {
		g.Step(in)
		if done() {
			return true
		}
	}
	return false
}

func isPlaying(g *Game) func() bool {
	return func() bool {
		_, ok := g.top().(*playScene)
		return ok
	}
}

func newCampaign(t *testing.T, saves *memSaves, opts registry.Options) *Game {
	t.Helper()
	dir := t.TempDir()
	writeLevel(t, dir, "1-1.yaml", "1-1", pitRows)
	opts.LevelDir = dir
	opts.Logger = quiet()
	if saves != nil {
		opts.Saves = saves
	}
	g := New()
	require.NoError(t, g.Configure(opts))
	g.Reset(testRuntime)
	return g
}

func TestRegistered(t *testing.T) {
	assert.True(t, registry.Exists(IDCampaign))
	assert.True(t, registry.Exists(IDCustom))

	g, err := registry.CreateWith(IDCustom, registry.Options{Logger: quiet()})
	require.NoError(t, err)
	assert.Equal(t, "Koopa (Custom Levels)", g.Title())
}

func TestConfigureRejectsBadOptions(t *testing.T) {
	err := New().Configure(registry.Options{Difficulty: "brutal", Logger: quiet()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown difficulty")

	err = NewCustom().Configure(registry.Options{LevelFile: filepath.Join(t.TempDir(), "missing.yaml"), Logger: quiet()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no playable first level")

	// An empty level directory still has the builtin 1-1.
	err = NewCustom().Configure(registry.Options{LevelDir: t.TempDir(), Logger: quiet()})
	require.NoError(t, err)
}

func TestCustomCourseClear(t *testing.T) {
	path := writeLevel(t, t.TempDir(), "course.yaml", "course", flatRows)
	rec := &recorder{}
	g := NewCustom()
	require.NoError(t, g.Configure(registry.Options{LevelFile: path, Records: rec, Logger: quiet()}))
	g.Reset(testRuntime)
	require.IsType(t, &introScene{}, g.top())

	right := frame(core.ActionRight)
	require.True(t, runUntil(g, 200, right, isPlaying(g)), "intro never ended")
	require.True(t, runUntil(g, 3000, right, func() bool { return g.State().GameOver }), "course never cleared")

	assert.IsType(t, &winScene{}, g.top())
	assert.Positive(t, g.State().Score, "flag bonus is paid")
	require.Len(t, rec.clears, 1)
	assert.Equal(t, 1, rec.clears[0].world)
	assert.Equal(t, 1, rec.clears[0].level)

	press(g, core.ActionConfirm)
	assert.IsType(t, &titleScene{}, g.top())
	assert.Equal(t, 1, g.stack.Len())
	assert.False(t, g.State().GameOver)
}

func TestDeathAutosavesAndRetries(t *testing.T) {
	saves := newMemSaves()
	g := newCampaign(t, saves, registry.Options{World: 1, Level: 1})
	require.IsType(t, &introScene{}, g.top())
	require.True(t, runUntil(g, 200, frame(), isPlaying(g)))

	saved := func() bool { return len(saves.data) > 0 }
	require.True(t, runUntil(g, 2000, frame(), saved), "death never autosaved")

	st := saves.state(t, IDCampaign)
	assert.Equal(t, campaign.DefaultLives-1, st.Lives)
	assert.Equal(t, 1, st.World)
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, campaign.Small, st.Size)
	assert.IsType(t, &introScene{}, g.top(), "the level is retried")
	assert.Equal(t, st.Lives, g.Campaign().Lives)
}

func TestLastLifeEndsCampaign(t *testing.T) {
	saves := newMemSaves()
	st := campaign.New(1, campaign.DefaultWorlds)
	st, _ = st.Advance()
	st.Unlocked = []int{1, 2}
	st.Score = 5000
	data, err := st.Encode()
	require.NoError(t, err)
	require.NoError(t, saves.SaveSlot(IDCampaign, DefaultSlot, st.Summary(), data))

	g := newCampaign(t, saves, registry.Options{World: 1, Level: 1})
	require.Equal(t, 1, g.Campaign().Lives)
	require.True(t, runUntil(g, 200, frame(), isPlaying(g)))
	require.True(t, runUntil(g, 2000, frame(), func() bool { return g.State().GameOver }))

	assert.IsType(t, &gameOverScene{}, g.top())
	assert.Equal(t, 5000, g.State().Score)

	after := saves.state(t, IDCampaign)
	assert.Equal(t, 0, after.Score)
	assert.Equal(t, 1, after.World)
	assert.Equal(t, 1, after.Level)
	assert.True(t, after.IsUnlocked(2), "unlocked worlds survive a game over")

	press(g, core.ActionConfirm)
	assert.IsType(t, &titleScene{}, g.top())
	assert.False(t, g.State().GameOver)
}

func TestAutosaveFailureShowsNotice(t *testing.T) {
	saves := newMemSaves()
	saves.failing = errors.New("disk full")
	g := newCampaign(t, saves, registry.Options{World: 1, Level: 1})
	require.True(t, runUntil(g, 200, frame(), isPlaying(g)))

	retried := func() bool {
		_, ok := g.top().(*introScene)
		return ok
	}
	require.True(t, runUntil(g, 2000, frame(), retried))
	res := g.Step(frame())
	assert.Equal(t, "Autosave failed", res.Notice)
	assert.Equal(t, campaign.DefaultLives-1, g.Campaign().Lives, "play continues")
}

func TestDamagedSaveStartsFresh(t *testing.T) {
	saves := newMemSaves()
	saves.data[IDCampaign+"/"+DefaultSlot] = []byte("{not json")
	g := newCampaign(t, saves, registry.Options{})
	assert.Equal(t, campaign.New(0, 0).Lives, g.Campaign().Lives)
	assert.Equal(t, "Save is damaged, starting fresh", g.notice)
}

func TestWorldSelectRefusesLockedWorld(t *testing.T) {
	g := newCampaign(t, nil, registry.Options{})
	require.IsType(t, &titleScene{}, g.top())

	press(g, core.ActionConfirm)
	require.IsType(t, &worldSelectScene{}, g.top())

	press(g, core.ActionRight)
	res := press(g, core.ActionConfirm)
	assert.IsType(t, &worldSelectScene{}, g.top())
	assert.Equal(t, "World 2 is locked", res.Notice)

	press(g, core.ActionLeft)
	press(g, core.ActionConfirm)
	assert.IsType(t, &introScene{}, g.top())

	// Back leaves the intro and the map.
	press(g, core.ActionBack)
	press(g, core.ActionBack)
	assert.IsType(t, &titleScene{}, g.top())

	press(g, core.ActionBack)
	assert.True(t, g.State().Quit)
}

func TestLockedStartWorldFallsBackToTitle(t *testing.T) {
	g := newCampaign(t, nil, registry.Options{World: 3})
	assert.IsType(t, &titleScene{}, g.top())
	assert.Equal(t, "World 3 is locked", g.notice)
}

func TestPauseFreezesPlay(t *testing.T) {
	path := writeLevel(t, t.TempDir(), "course.yaml", "course", flatRows)
	g := NewCustom()
	require.NoError(t, g.Configure(registry.Options{LevelFile: path, Logger: quiet()}))
	g.Reset(testRuntime)
	require.True(t, runUntil(g, 200, frame(), isPlaying(g)))
	play := g.top().(*playScene)

	press(g, core.ActionPause)
	require.IsType(t, &pauseScene{}, g.top())
	assert.True(t, g.State().Paused)

	ticks := play.lvl.Ticks()
	for range 30 {
		g.Step(frame(core.ActionRight))
	}
	assert.Equal(t, ticks, play.lvl.Ticks())

	// The overlay draws over the frozen level.
	screen := core.NewScreen(testRuntime.ScreenW, testRuntime.ScreenH)
	g.Render(screen)
	out := screen.String()
	assert.Contains(t, out, "PAUSED")
	assert.Contains(t, out, "SCORE")

	press(g, core.ActionPause)
	assert.Same(t, play, g.top())

	press(g, core.ActionPause)
	press(g, core.ActionDown)
	press(g, core.ActionConfirm)
	assert.IsType(t, &titleScene{}, g.top(), "quit pops pause and play")
}

func TestRenderPlay(t *testing.T) {
	path := writeLevel(t, t.TempDir(), "course.yaml", "course", flatRows)
	g := NewCustom()
	require.NoError(t, g.Configure(registry.Options{LevelFile: path, Logger: quiet()}))
	g.Reset(testRuntime)
	require.True(t, runUntil(g, 200, frame(), isPlaying(g)))

	screen := core.NewScreen(testRuntime.ScreenW, testRuntime.ScreenH)
	g.Render(screen)

	assert.Contains(t, screen.Row(0), "SCORE")
	assert.Contains(t, screen.Row(1), "CUSTOM")

	// The player starts on row 6 and the ground is row 7, below the HUD.
	assert.Contains(t, screen.Row(8), "M")
	assert.Contains(t, screen.Row(9), "█")
}

func TestRenderTooSmall(t *testing.T) {
	g := newCampaign(t, nil, registry.Options{})
	g.Resize(20, 8)
	screen := core.NewScreen(20, 8)
	g.Render(screen)
	assert.Contains(t, screen.String(), "Window too small")
	assert.Equal(t, core.StepResult{State: g.State()}, g.Step(frame()))
}

func TestEdgesIgnoreKeysHeldOnEntry(t *testing.T) {
	var e edges
	assert.False(t, e.next(frame(core.ActionConfirm)).Has(core.ActionConfirm), "held on entry")
	assert.False(t, e.next(frame(core.ActionConfirm)).Has(core.ActionConfirm), "still held")
	assert.False(t, e.next(frame()).Has(core.ActionConfirm))
	assert.True(t, e.next(frame(core.ActionConfirm)).Has(core.ActionConfirm))

	e.reset()
	assert.False(t, e.next(frame(core.ActionJump)).Has(core.ActionJump))
}
